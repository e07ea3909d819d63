// powergrid is a terminal power grid simulation: lay wires from power
// sources to houses, keep the lights on through earthquakes and storms, and
// keep the network within budget.
//
// Usage:
//
//	powergrid levels             - List available levels
//	powergrid play [level]       - Play a level (menu when omitted)
//	powergrid run <level>        - Simulate a level headless
//	powergrid batch <level>      - Simulate many seeds concurrently
//	powergrid analyze <level>    - Print a network diagnostics report
//	powergrid serve              - Start SSH server for remote play
//	powergrid scores [level]     - Show run history
//
// Global flags:
//
//	--seed <value>        - Set RNG seed for reproducible runs
//	--db <path>           - Set database path (default: ~/.powergrid/runs.db)
//	--config <dir>        - Directory holding difficulty.yaml and simulation.yaml
//	--difficulty <name>   - Difficulty profile: easy, medium, hard
//	--levels <dir>        - Extra level files to register
//	--verbose             - Debug logging
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/powergrid/internal/registry"
)

var (
	// Global flags
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagDifficulty string
	flagLevelsDir  string
	flagVerbose    bool

	logger *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "powergrid",
	Short: "Power Grid - keep a city's lights on in your terminal",
	Long: `Power Grid is a grid-based electrical network simulation.

Lay wires and transformers from power sources to houses, survive
earthquakes and storms, repair the damage and keep supply above demand.

Available commands:
  levels   - Show all available levels
  play     - Play a level interactively
  run      - Simulate a level without a UI
  batch    - Simulate many seeds of a level concurrently
  analyze  - Report on a level's network
  serve    - Start SSH server for remote play
  scores   - View run history

Examples:
  powergrid levels
  powergrid play level01
  powergrid run level03 --autowire --days 60
  powergrid batch level04 --runs 100 --difficulty hard
  powergrid serve --ssh :2222
  powergrid scores level01`,
	PersistentPreRun: setup,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.powergrid/runs.db", "Path to run history database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Directory with difficulty.yaml and simulation.yaml")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, medium, hard")
	rootCmd.PersistentFlags().StringVar(&flagLevelsDir, "levels", "", "Directory of extra level files")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
}

// setup builds the logger and registers the built-in and extra levels.
func setup(_ *cobra.Command, _ []string) {
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "powergrid",
	})
	if flagVerbose {
		logger.SetLevel(log.DebugLevel)
	}

	if err := registry.RegisterBuiltin(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot load built-in levels: %v\n", err)
		os.Exit(1)
	}
	if flagLevelsDir != "" {
		skipped, err := registry.RegisterDir(flagLevelsDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot load levels from %s: %v\n", flagLevelsDir, err)
			os.Exit(1)
		}
		for _, id := range skipped {
			logger.Warn("level id already registered, skipping", "level", id)
		}
	}
}
