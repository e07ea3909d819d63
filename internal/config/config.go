// Package config provides YAML-based configuration loading for the
// simulation: difficulty profiles and the simulation tunables.
package config

import "time"

// Difficulty is a named difficulty profile.
type Difficulty struct {
	Name           string  `yaml:"-"`
	StartingMoney  int     `yaml:"starting_money"`
	DisasterChance float64 `yaml:"disaster_chance"` // per-day probability, 0..1
	RepairCrews    int     `yaml:"repair_crews"`
}

// DifficultyFile is the layout of difficulty.yaml.
type DifficultyFile struct {
	Default  string                `yaml:"default"`
	Profiles map[string]Difficulty `yaml:"profiles"`
}

// SimulationConfig contains every simulation tunable.
type SimulationConfig struct {
	Clock       ClockConfig       `yaml:"clock"`
	Costs       CostConfig        `yaml:"costs"`
	Events      EventConfig       `yaml:"events"`
	Rules       RulesConfig       `yaml:"rules"`
	Progression ProgressionConfig `yaml:"progression"`
}

// ClockConfig sets how much simulated effect time one day represents.
type ClockConfig struct {
	DayLength time.Duration `yaml:"day_length"`
}

// CostConfig prices player actions.
type CostConfig struct {
	Wire           int `yaml:"wire"`
	Transformer    int `yaml:"transformer"`
	ManualRepair   int `yaml:"manual_repair"`
	RepairPerLevel int `yaml:"repair_per_level"` // auto-repair funds check per damage level
	RepairCrew     int `yaml:"repair_crew"`
}

// EventConfig tunes the random daily events.
type EventConfig struct {
	PositiveChance float64 `yaml:"positive_chance"`
	BonusMin       int     `yaml:"bonus_min"`
	BonusMax       int     `yaml:"bonus_max"`
	StormSeverity  int     `yaml:"storm_severity"`
	FloodSeverity  int     `yaml:"flood_severity"`
	FireSeverity   int     `yaml:"fire_severity"`
}

// RulesConfig holds the win and lose thresholds.
type RulesConfig struct {
	WinDay              int     `yaml:"win_day"`
	WinSatisfaction     float64 `yaml:"win_satisfaction"`
	WinScore            int     `yaml:"win_score"`
	LoseDamagedCells    int     `yaml:"lose_damaged_cells"`
	LoseSatisfactionDay int     `yaml:"lose_satisfaction_day"`
	LoseSatisfaction    float64 `yaml:"lose_satisfaction"`
	LoseSupplyDay       int     `yaml:"lose_supply_day"`
	LoseSupplyRatio     float64 `yaml:"lose_supply_ratio"`
}

// ProgressionConfig sets the level-completion rewards.
type ProgressionConfig struct {
	LevelMoney int `yaml:"level_money"`
	LevelScore int `yaml:"level_score"`
	MaxLevel   int `yaml:"max_level"`
}
