package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/powergrid/internal/levels"
	"github.com/vovakirdan/powergrid/internal/registry"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List all available levels",
	Long: `Shows the built-in campaign and any levels registered with --levels.

Generated levels are available as customNN (for example custom07), with
min(2*NN, 20) randomly placed houses.`,
	Run: runLevels,
}

var levelsShowCmd = &cobra.Command{
	Use:   "show <level>",
	Short: "Print a level in the level file format",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		data, err := levels.MarshalYAML(lookupLevel(args[0]))
		if err != nil {
			fatalf("%v", err)
		}
		//nolint:errcheck // Stdout write failures are not actionable
		os.Stdout.Write(data)
	},
}

var levelsValidateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check level files against the level schema",
	Args:  cobra.MinimumNArgs(1),
	Run:   runLevelsValidate,
}

func init() {
	levelsCmd.AddCommand(levelsShowCmd)
	levelsCmd.AddCommand(levelsValidateCmd)
}

func runLevels(_ *cobra.Command, _ []string) {
	infos := registry.List()

	if len(infos) == 0 {
		fmt.Println("No levels available.")
		return
	}

	fmt.Println("Available levels:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, l := range infos {
		if len(l.ID) > maxIDLen {
			maxIDLen = len(l.ID)
		}
	}

	fmt.Printf("  %-*s  %-24s  %s\n", maxIDLen, "ID", "Title", "Source")
	fmt.Printf("  %-*s  %-24s  %s\n", maxIDLen, "--", "-----", "------")

	for _, l := range infos {
		fmt.Printf("  %-*s  %-24s  %s\n", maxIDLen, l.ID, l.Title, l.Source)
	}

	fmt.Println()
	fmt.Println("Run 'powergrid play <id>' to play a level.")
}

func runLevelsValidate(_ *cobra.Command, args []string) {
	loader := levels.NewLoader(".")
	failed := 0
	for _, path := range args {
		d, err := loader.LoadFile(path)
		if err != nil {
			fmt.Printf("FAIL  %s\n      %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("ok    %s  (%s, %dx%d, %d houses)\n", path, d.ID, d.Size.W, d.Size.H, d.HouseCount())
	}
	if failed > 0 {
		fatalf("%d of %d level files failed validation", failed, len(args))
	}
}
