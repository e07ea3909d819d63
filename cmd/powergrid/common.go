package main

import (
	"fmt"
	"os"

	"github.com/vovakirdan/powergrid/internal/config"
	"github.com/vovakirdan/powergrid/internal/levels"
	"github.com/vovakirdan/powergrid/internal/registry"
)

// fatalf prints an error and exits.
func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// loadRules loads the difficulty profiles and simulation tunables and
// resolves the --difficulty flag against them.
func loadRules() (config.Config, config.Difficulty) {
	rules, err := config.Load(flagConfig)
	if err != nil {
		fatalf("cannot load configuration: %v", err)
	}
	diff, err := rules.Difficulties.Profile(flagDifficulty)
	if err != nil {
		fatalf("%v", err)
	}
	logger.Debug("rules loaded", "difficulty", diff.Name, "money", diff.StartingMoney,
		"disaster_chance", diff.DisasterChance, "crews", diff.RepairCrews)
	return rules, diff
}

// lookupLevel resolves a registered level ID or a "customNN" generated level.
func lookupLevel(id string) levels.Descriptor {
	if d, err := registry.Get(id); err == nil {
		return d
	}

	var n int
	if _, err := fmt.Sscanf(id, "custom%d", &n); err == nil && n > 0 {
		return levels.Custom(n)
	}

	fmt.Fprintf(os.Stderr, "Error: unknown level %q\n", id)
	fmt.Fprintln(os.Stderr, "Run 'powergrid levels' to see available levels.")
	os.Exit(1)
	return levels.Descriptor{}
}
