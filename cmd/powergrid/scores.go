package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/powergrid/internal/storage"
)

var flagLimit int

var scoresCmd = &cobra.Command{
	Use:   "scores [level]",
	Short: "Show run history",
	Long: `Display the best runs for a level, or a per-level summary of every level
that has been played when no level is given.

Examples:
  powergrid scores
  powergrid scores level01
  powergrid scores level04 --limit 25`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of runs to show")
}

func runScores(_ *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fatalf("cannot open runs database: %v", err)
	}
	defer store.Close()

	if len(args) == 0 {
		printLevelSummary(store)
		return
	}

	level := lookupLevel(args[0])
	runs, err := store.TopRuns(level.ID, flagLimit)
	if err != nil {
		fatalf("cannot retrieve runs: %v", err)
	}

	fmt.Printf("Best Runs - %s\n", level.Title())
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'powergrid play %s' to record the first run!\n", level.ID)
		return
	}

	fmt.Printf("  %-4s  %-8s  %-7s  %-4s  %-10s  %-10s  %s\n", "Rank", "Score", "Outcome", "Day", "Difficulty", "Player", "Date")
	fmt.Printf("  %-4s  %-8s  %-7s  %-4s  %-10s  %-10s  %s\n", "----", "-----", "-------", "---", "----------", "------", "----")
	for i, r := range runs {
		player := r.Player
		if player == "" {
			player = "-"
		}
		fmt.Printf("  %-4d  %-8d  %-7s  %-4d  %-10s  %-10s  %s\n",
			i+1, r.Score, r.Outcome, r.Day, r.Difficulty, player, r.CreatedAt.Format("2006-01-02 15:04"))
	}

	if stats, err := store.GetLevelStats(level.ID); err == nil && stats.Runs > 0 {
		fmt.Println()
		fmt.Printf("Runs: %d  Won: %.0f%%  Best: %d  Avg score: %.0f  Avg days: %.1f\n",
			stats.Runs, stats.WinRate()*100, stats.BestScore, stats.AvgScore, stats.AvgDays)
	}
}

func printLevelSummary(store *storage.Store) {
	all, err := store.GetAllLevelStats()
	if err != nil {
		fatalf("cannot retrieve level stats: %v", err)
	}
	if len(all) == 0 {
		fmt.Println("No runs recorded yet.")
		return
	}

	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Printf("  %-12s  %-5s  %-6s  %-8s  %-9s  %s\n", "Level", "Runs", "Won", "Best", "Avg", "Last played")
	fmt.Printf("  %-12s  %-5s  %-6s  %-8s  %-9s  %s\n", "-----", "----", "---", "----", "---", "-----------")
	for _, id := range ids {
		s := all[id]
		fmt.Printf("  %-12s  %-5d  %-5.0f%%  %-8d  %-9.1f  %s\n",
			id, s.Runs, s.WinRate()*100, s.BestScore, s.AvgScore, s.LastPlayed.Format("2006-01-02 15:04"))
	}
}
