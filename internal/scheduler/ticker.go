// Package scheduler advances a game on a real-time clock, one simulated
// day per interval.
package scheduler

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/powergrid/internal/game"
)

// Stepper is the part of the game controller the ticker drives.
type Stepper interface {
	Tick() game.TickResult
}

// DayTicker calls Tick on its target once per interval until the game
// ends, the context is cancelled or Stop is called.
type DayTicker struct {
	target   Stepper
	interval time.Duration
	logger   *log.Logger
	onTick   func(game.TickResult)

	mu     sync.Mutex
	paused bool
	stop   chan struct{}
	once   sync.Once
}

// Option configures a DayTicker.
type Option func(*DayTicker)

// WithLogger routes ticker logs to l.
func WithLogger(l *log.Logger) Option {
	return func(t *DayTicker) {
		if l != nil {
			t.logger = l
		}
	}
}

// OnTick registers fn to receive every tick result.
func OnTick(fn func(game.TickResult)) Option {
	return func(t *DayTicker) { t.onTick = fn }
}

// NewDayTicker creates a ticker. A non-positive interval falls back to one
// second.
func NewDayTicker(target Stepper, interval time.Duration, opts ...Option) *DayTicker {
	if interval <= 0 {
		interval = time.Second
	}
	t := &DayTicker{
		target:   target,
		interval: interval,
		logger:   log.New(io.Discard),
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run blocks driving the target. It returns nil when the game is over or
// the ticker was stopped, and the context error on cancellation.
func (t *DayTicker) Run(ctx context.Context) error {
	t.logger.Debug("day ticker started", "interval", t.interval)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Debug("day ticker cancelled")
			return ctx.Err()
		case <-t.stop:
			t.logger.Debug("day ticker stopped")
			return nil
		case <-ticker.C:
			if t.Paused() || t.stopped() {
				continue
			}
			res := t.target.Tick()
			if t.onTick != nil {
				t.onTick(res)
			}
			if res.Refused || res.Outcome != game.Running {
				t.logger.Debug("day ticker finished", "day", res.Day, "outcome", res.Outcome)
				return nil
			}
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (t *DayTicker) Stop() {
	t.once.Do(func() { close(t.stop) })
}

func (t *DayTicker) stopped() bool {
	select {
	case <-t.stop:
		return true
	default:
		return false
	}
}

// Pause suspends ticking without stopping the clock.
func (t *DayTicker) Pause() {
	t.mu.Lock()
	t.paused = true
	t.mu.Unlock()
}

// Resume continues after Pause.
func (t *DayTicker) Resume() {
	t.mu.Lock()
	t.paused = false
	t.mu.Unlock()
}

// Paused reports whether ticking is suspended.
func (t *DayTicker) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}
