package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/powergrid/internal/game"
)

// countdown ends the game after a fixed number of ticks.
type countdown struct {
	ticks atomic.Int32
	last  int32
}

func (c *countdown) Tick() game.TickResult {
	n := c.ticks.Add(1)
	if n > c.last {
		return game.TickResult{Day: int(c.last), Refused: true, Outcome: game.Lost}
	}
	res := game.TickResult{Day: int(n), Outcome: game.Running}
	if n == c.last {
		res.Outcome = game.Lost
	}
	return res
}

func TestRunUntilGameOver(t *testing.T) {
	target := &countdown{last: 3}
	var days []int
	ticker := NewDayTicker(target, time.Millisecond, OnTick(func(r game.TickResult) {
		days = append(days, r.Day)
	}))

	require.NoError(t, ticker.Run(context.Background()))
	assert.Equal(t, []int{1, 2, 3}, days)
	assert.EqualValues(t, 3, target.ticks.Load())
}

func TestRunCancelled(t *testing.T) {
	target := &countdown{last: 1 << 30}
	ticker := NewDayTicker(target, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := ticker.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStopWhilePaused(t *testing.T) {
	target := &countdown{last: 1 << 30}
	ticker := NewDayTicker(target, time.Millisecond)
	ticker.Pause()
	require.True(t, ticker.Paused())

	done := make(chan error, 1)
	go func() { done <- ticker.Run(context.Background()) }()

	time.Sleep(10 * time.Millisecond)
	ticker.Stop()
	ticker.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
	assert.Zero(t, target.ticks.Load())

	ticker.Resume()
	assert.False(t, ticker.Paused())
}

func TestDefaultInterval(t *testing.T) {
	ticker := NewDayTicker(&countdown{}, 0)
	assert.Equal(t, time.Second, ticker.interval)
}
