package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/powergrid/internal/config"
	"github.com/vovakirdan/powergrid/internal/eventlog"
	"github.com/vovakirdan/powergrid/internal/game"
	"github.com/vovakirdan/powergrid/internal/levels"
	"github.com/vovakirdan/powergrid/internal/scheduler"
	"github.com/vovakirdan/powergrid/internal/storage"
)

var (
	flagDays     int
	flagAutowire bool
	flagRealtime bool
	flagEvents   string
	flagJSON     bool
	flagNoSave   bool
)

var runCmd = &cobra.Command{
	Use:   "run <level>",
	Short: "Simulate a level without a UI",
	Long: `Simulate a level day by day without a terminal UI and print the final
statistics. With --autowire, every unpowered house is wired to the cheapest
source before the first day and again after each day.

With --realtime, days advance on the configured day length and Ctrl+C
stops the run early. --events writes every game event to a
zstd-compressed JSON lines file.

Examples:
  powergrid run level01 --autowire
  powergrid run level04 --autowire --days 60 --seed 7 --json
  powergrid run level03 --realtime --events run.jsonl.zst`,
	Args: cobra.ExactArgs(1),
	Run:  runRun,
}

func init() {
	runCmd.Flags().IntVar(&flagDays, "days", 100, "Maximum number of days to simulate")
	runCmd.Flags().BoolVar(&flagAutowire, "autowire", false, "Wire unpowered houses automatically")
	runCmd.Flags().BoolVar(&flagRealtime, "realtime", false, "Advance one day per configured day length")
	runCmd.Flags().StringVar(&flagEvents, "events", "", "Write game events to this "+eventlog.Ext+" file")
	runCmd.Flags().BoolVar(&flagJSON, "json", false, "Print final statistics as JSON")
	runCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not record the run in the database")
}

// simulation is one headless game.
type simulation struct {
	ctrl     *game.Controller
	seed     int64
	days     int
	autowire bool
}

func newSimulation(level levels.Descriptor, rules config.Config, diff config.Difficulty, seed int64, l *log.Logger) (*simulation, error) {
	ctrl, err := game.NewFromLevel(level,
		game.WithDifficulty(diff),
		game.WithSimulation(rules.Simulation),
		game.WithSeed(seed),
		game.WithLogger(l),
	)
	if err != nil {
		return nil, err
	}
	return &simulation{ctrl: ctrl, seed: seed}, nil
}

// step runs the player's side of a day: rewiring whatever lost power.
func (s *simulation) step() {
	if !s.autowire {
		return
	}
	if laid := s.ctrl.ConnectAll(); laid > 0 {
		logger.Debug("autowire", "wires", laid)
	}
}

// finished reports whether the run should stop after r.
func (s *simulation) finished(r game.TickResult) bool {
	return r.Refused || r.Outcome != game.Running || r.Day >= s.days
}

// runHeadless ticks as fast as possible. It stops early when ctx is done.
func (s *simulation) runHeadless(ctx context.Context) game.Stats {
	s.step()
	for ctx.Err() == nil {
		r := s.ctrl.Tick()
		s.step()
		if s.finished(r) {
			break
		}
	}
	return s.ctrl.Stats()
}

// runRealtime ticks on the wall clock until the run finishes or ctx is done.
func (s *simulation) runRealtime(ctx context.Context, interval time.Duration) (game.Stats, error) {
	s.step()

	var ticker *scheduler.DayTicker
	ticker = scheduler.NewDayTicker(s.ctrl, interval,
		scheduler.WithLogger(logger),
		scheduler.OnTick(func(r game.TickResult) {
			s.step()
			logger.Info("day", "day", r.Day, "outcome", r.Outcome)
			if s.finished(r) {
				ticker.Stop()
			}
		}),
	)
	err := ticker.Run(ctx)
	return s.ctrl.Stats(), err
}

func runRun(_ *cobra.Command, args []string) {
	rules, diff := loadRules()
	level := lookupLevel(args[0])

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	sim, err := newSimulation(level, rules, diff, seed, logger)
	if err != nil {
		fatalf("cannot start level %s: %v", level.ID, err)
	}
	sim.days = flagDays
	sim.autowire = flagAutowire

	sim.ctrl.Subscribe(func(ev game.Event) {
		switch e := ev.(type) {
		case game.DisasterWarning:
			logger.Info("disaster", "kind", e.Disaster, "severity", e.Severity)
		case game.EarthquakeReport:
			logger.Info("earthquake", "epicenter", e.Epicenter, "magnitude", e.Magnitude, "damaged", e.Damaged)
		case game.Notice:
			logger.Info(e.Text)
		case game.GameOver:
			logger.Info("game over", "win", e.Win, "message", e.Message)
		}
	})

	var events *eventlog.Writer
	if flagEvents != "" {
		events, err = eventlog.Create(flagEvents)
		if err != nil {
			fatalf("%v", err)
		}
		events.Attach(sim.ctrl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	logger.Info("simulating", "level", level.ID, "difficulty", diff.Name, "seed", seed, "days", flagDays)

	var st game.Stats
	if flagRealtime {
		st, err = sim.runRealtime(ctx, rules.Simulation.Clock.DayLength)
		if err != nil && !errors.Is(err, context.Canceled) {
			fatalf("%v", err)
		}
	} else {
		st = sim.runHeadless(ctx)
	}

	if events != nil {
		if err := events.Close(); err != nil {
			logger.Error("event log", "error", err)
		} else {
			logger.Info("events written", "path", flagEvents, "count", events.Count())
		}
	}

	if !flagNoSave {
		saveRun(storage.RecordFromStats(st, diff.Name, seed, "", time.Since(started)))
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(st); err != nil {
			fatalf("%v", err)
		}
		return
	}
	printStats(level, st)
}

// saveRun records a finished run, warning instead of failing.
func saveRun(rec storage.RunRecord) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open runs database", "error", err)
		return
	}
	defer store.Close()

	id, err := store.SaveRun(rec)
	if err != nil {
		logger.Warn("could not save run", "error", err)
		return
	}
	logger.Debug("run saved", "run_id", id)
}

func printStats(level levels.Descriptor, st game.Stats) {
	fmt.Printf("%s - %s\n", level.Title(), st.Outcome)
	if st.Message != "" {
		fmt.Printf("  %s\n", st.Message)
	}
	fmt.Println()
	fmt.Printf("  %-18s %d\n", "Day", st.Day)
	fmt.Printf("  %-18s %d\n", "Score", st.Score)
	fmt.Printf("  %-18s $%d\n", "Money", st.Money)
	fmt.Printf("  %-18s %d/%d\n", "Houses powered", st.SatisfiedHouses, st.TotalHouses)
	fmt.Printf("  %-18s %d / %d (%.0f%%)\n", "Supply / demand", st.PowerSupply, st.PowerDemand, st.PowerEfficiency*100)
	fmt.Printf("  %-18s %d\n", "Repair crews", st.RepairCrews)
	fmt.Printf("  %-18s %d\n", "Earthquakes", st.EarthquakesTriggered)
	fmt.Printf("  %-18s $%d\n", "Damage cost", st.TotalDamageCost)
	fmt.Printf("  %-18s %d\n", "Repairs", st.RepairsCompleted)
	fmt.Printf("  %-18s %d\n", "Damaged cells", st.DamagedCells)
}
