// Package tui provides the Bubble Tea integration for the power grid
// simulation: the play screen, the level menu, the run history board and
// SSH hosting of all three.
package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// clocks hands out a distinct id to every play model so ticks scheduled by
// a model that has since been replaced are ignored.
var clocks atomic.Uint64

// DayMsg is sent when a simulated day has elapsed in real time.
type DayMsg struct {
	Clock uint64
	At    time.Time
}

// dayCmd returns a Bubble Tea command that sends a DayMsg after interval.
func dayCmd(clock uint64, interval time.Duration) tea.Cmd {
	if interval <= 0 {
		interval = time.Second
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return DayMsg{Clock: clock, At: t}
	})
}
