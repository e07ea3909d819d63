package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/difficulty.yaml
var defaultDifficultyYAML []byte

//go:embed defaults/simulation.yaml
var defaultSimulationYAML []byte

// DefaultDifficulties returns the built-in difficulty profiles.
func DefaultDifficulties() DifficultyFile {
	return DifficultyFile{
		Default: string(DifficultyMedium),
		Profiles: map[string]Difficulty{
			string(DifficultyEasy):   {StartingMoney: 10000, DisasterChance: 0.01, RepairCrews: 5},
			string(DifficultyMedium): {StartingMoney: 5000, DisasterChance: 0.03, RepairCrews: 3},
			string(DifficultyHard):   {StartingMoney: 2000, DisasterChance: 0.05, RepairCrews: 2},
		},
	}
}

// DefaultSimulationConfig returns the built-in simulation tunables.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		Clock: ClockConfig{
			DayLength: time.Second,
		},
		Costs: CostConfig{
			Wire:           10,
			Transformer:    100,
			ManualRepair:   500,
			RepairPerLevel: 100,
			RepairCrew:     1000,
		},
		Events: EventConfig{
			PositiveChance: 0.05,
			BonusMin:       500,
			BonusMax:       999,
			StormSeverity:  4,
			FloodSeverity:  5,
			FireSeverity:   6,
		},
		Rules: RulesConfig{
			WinDay:              30,
			WinSatisfaction:     0.8,
			WinScore:            10000,
			LoseDamagedCells:    10,
			LoseSatisfactionDay: 10,
			LoseSatisfaction:    0.2,
			LoseSupplyDay:       15,
			LoseSupplyRatio:     0.3,
		},
		Progression: ProgressionConfig{
			LevelMoney: 300,
			LevelScore: 500,
			MaxLevel:   5,
		},
	}
}
