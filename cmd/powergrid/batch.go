package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/powergrid/internal/game"
	"github.com/vovakirdan/powergrid/internal/storage"
)

var (
	flagRuns     int
	flagParallel int
)

var batchCmd = &cobra.Command{
	Use:   "batch <level>",
	Short: "Simulate many seeds of a level concurrently",
	Long: `Run the same level headless under many seeds and summarise the
outcomes. Seeds are --seed, --seed+1, ... so a batch is reproducible. Every
run is auto-wired; results are stored unless --no-save is given.

Examples:
  powergrid batch level01 --runs 50
  powergrid batch level04 --runs 200 --parallel 8 --difficulty hard --seed 1000`,
	Args: cobra.ExactArgs(1),
	Run:  runBatch,
}

func init() {
	batchCmd.Flags().IntVar(&flagRuns, "runs", 20, "Number of runs")
	batchCmd.Flags().IntVar(&flagParallel, "parallel", runtime.NumCPU(), "Runs simulated at once")
	batchCmd.Flags().IntVar(&flagDays, "days", 100, "Maximum number of days per run")
	batchCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not record runs in the database")
}

// batchResult is the outcome of one seed.
type batchResult struct {
	Seed    int64
	Stats   game.Stats
	Elapsed time.Duration
}

func runBatch(_ *cobra.Command, args []string) {
	rules, diff := loadRules()
	level := lookupLevel(args[0])

	if flagRuns <= 0 {
		fatalf("--runs must be positive")
	}
	base := flagSeed
	if base == 0 {
		base = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results := make([]batchResult, flagRuns)
	quiet := log.New(io.Discard)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, flagParallel))

	logger.Info("batch started", "level", level.ID, "runs", flagRuns, "parallel", flagParallel, "seed", base)
	started := time.Now()

	for i := range flagRuns {
		seed := base + int64(i)
		g.Go(func() error {
			sim, err := newSimulation(level, rules, diff, seed, quiet)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			sim.days = flagDays
			sim.autowire = true

			t0 := time.Now()
			st := sim.runHeadless(gctx)
			results[i] = batchResult{Seed: seed, Stats: st, Elapsed: time.Since(t0)}
			logger.Debug("run finished", "seed", seed, "outcome", st.Outcome, "score", st.Score, "day", st.Day)
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		fatalf("%v", err)
	}
	logger.Info("batch finished", "elapsed", time.Since(started).Round(time.Millisecond))

	if !flagNoSave {
		saveBatch(results, diff.Name)
	}
	printBatch(level.Title(), diff.Name, results)
}

func saveBatch(results []batchResult, difficulty string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open runs database", "error", err)
		return
	}
	defer store.Close()

	for _, r := range results {
		rec := storage.RecordFromStats(r.Stats, difficulty, r.Seed, "", r.Elapsed)
		if _, err := store.SaveRun(rec); err != nil {
			logger.Warn("could not save run", "seed", r.Seed, "error", err)
			return
		}
	}
}

func printBatch(title, difficulty string, results []batchResult) {
	var won, lost, running, totalScore, totalDays int
	for _, r := range results {
		switch r.Stats.Outcome {
		case game.Won:
			won++
		case game.Lost:
			lost++
		default:
			running++
		}
		totalScore += r.Stats.Score
		totalDays += r.Stats.Day
	}
	n := len(results)

	fmt.Printf("%s [%s] - %d runs\n", title, difficulty, n)
	fmt.Println()
	fmt.Printf("  %-12s %d (%.0f%%)\n", "Won", won, 100*float64(won)/float64(n))
	fmt.Printf("  %-12s %d (%.0f%%)\n", "Lost", lost, 100*float64(lost)/float64(n))
	fmt.Printf("  %-12s %d\n", "Unfinished", running)
	fmt.Printf("  %-12s %.1f\n", "Avg score", float64(totalScore)/float64(n))
	fmt.Printf("  %-12s %.1f\n", "Avg days", float64(totalDays)/float64(n))

	sort.Slice(results, func(i, j int) bool {
		return results[i].Stats.Score > results[j].Stats.Score
	})
	fmt.Println()
	fmt.Printf("  %-4s  %-20s  %-8s  %-8s  %s\n", "Rank", "Seed", "Outcome", "Score", "Day")
	fmt.Printf("  %-4s  %-20s  %-8s  %-8s  %s\n", "----", "----", "-------", "-----", "---")
	for i, r := range results[:min(5, n)] {
		fmt.Printf("  %-4d  %-20d  %-8s  %-8d  %d\n", i+1, r.Seed, r.Stats.Outcome, r.Stats.Score, r.Stats.Day)
	}
}
