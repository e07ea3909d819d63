package core

import "time"

// RuntimeConfig carries host-side runtime settings: screen size, real-time
// pacing of simulated days and the RNG seed.
type RuntimeConfig struct {
	ScreenW     int           // Screen width in characters
	ScreenH     int           // Screen height in characters
	FrameRate   int           // UI redraws per second
	DayInterval time.Duration // Real time per simulated day
	Seed        int64         // RNG seed for deterministic runs
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:     80,
		ScreenH:     24,
		FrameRate:   30,
		DayInterval: time.Second,
		Seed:        0, // 0 means use current time in platform layer
	}
}

// ResolveSeed returns the configured seed, or a time-based one when unset.
func (c RuntimeConfig) ResolveSeed() int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return time.Now().UnixNano()
}
