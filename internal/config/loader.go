package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	difficultyFile = "difficulty.yaml"
	simulationFile = "simulation.yaml"
)

// Config bundles everything loaded from the config directory.
type Config struct {
	Difficulties DifficultyFile
	Simulation   SimulationConfig
}

// Load reads both configuration files.
// Search order per file: dir -> ~/.powergrid/configs -> ./configs -> embedded default.
func Load(dir string) (Config, error) {
	diff, err := LoadDifficulties(dir)
	if err != nil {
		return Config{}, err
	}
	sim, err := LoadSimulation(dir)
	if err != nil {
		return Config{}, err
	}
	return Config{Difficulties: diff, Simulation: sim}, nil
}

// LoadDifficulties loads the difficulty profiles.
func LoadDifficulties(dir string) (DifficultyFile, error) {
	cfg := DifficultyFile{Profiles: map[string]Difficulty{}}
	found, err := loadFile(dir, difficultyFile, &cfg)
	if err != nil {
		return cfg, err
	}
	if !found {
		cfg = DifficultyFile{Profiles: map[string]Difficulty{}}
		if err := yaml.Unmarshal(defaultDifficultyYAML, &cfg); err != nil {
			return DefaultDifficulties(), nil // Fallback to hardcoded if embed fails
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", difficultyFile, err)
	}
	return cfg, nil
}

// LoadSimulation loads the simulation tunables. Values missing from the
// file keep their defaults.
func LoadSimulation(dir string) (SimulationConfig, error) {
	cfg := DefaultSimulationConfig()
	found, err := loadFile(dir, simulationFile, &cfg)
	if err != nil {
		return cfg, err
	}
	if !found {
		cfg = DefaultSimulationConfig()
		if err := yaml.Unmarshal(defaultSimulationYAML, &cfg); err != nil {
			return DefaultSimulationConfig(), nil
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", simulationFile, err)
	}
	return cfg, nil
}

// loadFile decodes the first readable copy of name into out. Files in an
// explicit dir must parse; user and local copies that fail to parse are
// skipped.
func loadFile(dir, name string, out any) (bool, error) {
	// Try custom directory first
	if dir != "" {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, out); err != nil {
				return false, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
			return true, nil
		case !errors.Is(err, fs.ErrNotExist):
			return false, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	// Try user config directory
	if userCfgPath := userConfigPath(name); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, out); err == nil {
				return true, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", name)); err == nil {
		if err := yaml.Unmarshal(data, out); err == nil {
			return true, nil
		}
	}
	return false, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".powergrid", "configs", filename)
}

// Validate checks the tunables for values the simulation cannot run with.
func (c SimulationConfig) Validate() error {
	switch {
	case c.Clock.DayLength < 0:
		return fmt.Errorf("clock.day_length must not be negative")
	case c.Costs.Wire < 0 || c.Costs.Transformer < 0 || c.Costs.ManualRepair < 0 ||
		c.Costs.RepairPerLevel < 0 || c.Costs.RepairCrew < 0:
		return fmt.Errorf("costs must not be negative")
	case c.Events.PositiveChance < 0 || c.Events.PositiveChance > 1:
		return fmt.Errorf("events.positive_chance must be within [0, 1]")
	case c.Events.BonusMin < 0 || c.Events.BonusMax < c.Events.BonusMin:
		return fmt.Errorf("events bonus range [%d, %d] is invalid", c.Events.BonusMin, c.Events.BonusMax)
	case c.Progression.MaxLevel < 1:
		return fmt.Errorf("progression.max_level must be at least 1")
	}
	return nil
}
