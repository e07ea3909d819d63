package config

import (
	"fmt"
	"sort"
	"strings"
)

// DifficultyPreset names a difficulty profile.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyMedium DifficultyPreset = "medium"
	DifficultyHard   DifficultyPreset = "hard"
)

// Profile returns the named profile. An empty name selects the file's
// default profile, and "normal" is accepted as an alias for medium.
func (f DifficultyFile) Profile(name string) (Difficulty, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = f.Default
	}
	if name == "normal" {
		name = string(DifficultyMedium)
	}

	d, ok := f.Profiles[name]
	if !ok {
		return Difficulty{}, fmt.Errorf("unknown difficulty %q (available: %s)", name, strings.Join(f.Names(), ", "))
	}
	d.Name = name
	return d, nil
}

// Names returns the profile names in sorted order.
func (f DifficultyFile) Names() []string {
	names := make([]string, 0, len(f.Profiles))
	for name := range f.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks every profile for out-of-range values.
func (f DifficultyFile) Validate() error {
	if len(f.Profiles) == 0 {
		return fmt.Errorf("no difficulty profiles defined")
	}
	if _, ok := f.Profiles[f.Default]; f.Default != "" && !ok {
		return fmt.Errorf("default difficulty %q is not defined", f.Default)
	}
	for _, name := range f.Names() {
		d := f.Profiles[name]
		if d.StartingMoney < 0 {
			return fmt.Errorf("difficulty %s: starting_money must not be negative", name)
		}
		if d.DisasterChance < 0 || d.DisasterChance > 1 {
			return fmt.Errorf("difficulty %s: disaster_chance must be within [0, 1]", name)
		}
		if d.RepairCrews < 0 {
			return fmt.Errorf("difficulty %s: repair_crews must not be negative", name)
		}
	}
	return nil
}
