package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/powergrid/internal/config"
	"github.com/vovakirdan/powergrid/internal/core"
	"github.com/vovakirdan/powergrid/internal/platform/tui"
	"github.com/vovakirdan/powergrid/internal/storage"
)

var playCmd = &cobra.Command{
	Use:   "play [level]",
	Short: "Play a level",
	Long: `Play a level in the terminal. Without a level, a menu lets you pick
one and browse the run history.

Controls:
  Arrows/WASD  - Move the cursor
  Space        - Lay a wire
  T            - Build a transformer
  R            - Repair the cell under the cursor
  E            - Trigger an earthquake under the cursor
  C            - Hire a repair crew
  L            - Advance to the next level once every house is powered
  P            - Pause, N steps one day while paused
  Enter        - Play again after game over
  B/Esc        - Back to the menu (paused or game over)
  Ctrl+S       - Save a screenshot to ~/.powergrid/screenshots
  Q/Ctrl+C     - Quit

Examples:
  powergrid play
  powergrid play level02
  powergrid play level05 --difficulty hard
  powergrid play custom08 --seed 42`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func runPlay(_ *cobra.Command, args []string) {
	rules, diff := loadRules()

	// Open run storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open runs database: %v\n", err)
		// Continue without storage - the game still works
		store = nil
	}
	defer func() {
		if store != nil {
			store.Close()
		}
	}()

	// Get terminal size
	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	cfg := core.DefaultConfig()
	cfg.ScreenW = width
	cfg.ScreenH = height
	cfg.Seed = flagSeed
	cfg.DayInterval = rules.Simulation.Clock.DayLength

	playLogger, closeLog := tuiLogger()
	defer closeLog()

	if len(args) == 1 {
		launch := tui.Launch{
			Level:      lookupLevel(args[0]),
			Difficulty: diff,
			Simulation: rules.Simulation,
			Logger:     playLogger,
		}
		back, runErr := tui.Run(launch, store, cfg)
		if runErr != nil {
			fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
			os.Exit(1)
		}
		if !back {
			return
		}
	}

	menuLoop(rules, diff.Name, store, cfg, playLogger)
}

// menuLoop alternates between the level menu, the play screen and the run
// history board until the player quits.
func menuLoop(rules config.Config, difficulty string, store *storage.Store, cfg core.RuntimeConfig, playLogger *log.Logger) {
	for {
		menuResult, err := tui.RunMenu(rules.Difficulties.Names(), difficulty, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}

		// Update config with any size changes
		cfg = menuResult.Config
		difficulty = menuResult.Difficulty

		if menuResult.Quit {
			return
		}

		if menuResult.WantsScoreboard {
			goBack, sbErr := tui.RunScoreboard(store, cfg.ScreenW, cfg.ScreenH)
			if sbErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", sbErr)
			}
			if goBack {
				continue // Back to menu
			}
			return // User quit from scoreboard
		}

		diff, err := rules.Difficulties.Profile(difficulty)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		launch := tui.Launch{
			Level:      lookupLevel(menuResult.LevelID),
			Difficulty: diff,
			Simulation: rules.Simulation,
			Logger:     playLogger,
		}

		// Fresh seed for each game unless one was pinned
		cfg.Seed = flagSeed

		back, runErr := tui.Run(launch, store, cfg)
		if runErr != nil {
			fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
			return
		}
		if !back {
			return
		}
	}
}

// tuiLogger returns the logger handed to interactive games. The terminal
// belongs to the UI, so logs go to ~/.powergrid/play.log with --verbose and
// nowhere otherwise.
func tuiLogger() (*log.Logger, func()) {
	if !flagVerbose {
		return log.New(io.Discard), func() {}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return log.New(io.Discard), func() {}
	}
	path := filepath.Join(home, ".powergrid", "play.log")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(filepath.Dir(path), 0o755)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		logger.Warn("cannot open play log", "path", path, "error", err)
		return log.New(io.Discard), func() {}
	}

	l := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          "powergrid",
		Level:           log.DebugLevel,
	})
	return l, func() { f.Close() }
}
