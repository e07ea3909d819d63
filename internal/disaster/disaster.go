// Package disaster creates and advances timed disaster effects that damage
// the grid, and reports what happened to subscribed listeners.
package disaster

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/vovakirdan/powergrid/internal/grid"
)

// Kind names a disaster category.
type Kind string

const (
	KindEarthquake Kind = "earthquake"
	KindStorm      Kind = "storm"
	KindFlood      Kind = "flood"
	KindFire       Kind = "fire"
)

// Kinds lists every disaster category in draw order.
var Kinds = [...]Kind{KindEarthquake, KindStorm, KindFlood, KindFire}

// Earthquake tuning.
const (
	MinMagnitude           = 1
	MaxMagnitude           = 10
	RandomMinMagnitude     = 3
	RandomMaxMagnitude     = 7
	EarthquakeBaseDuration = 3 * time.Second
	durationPerMagnitude   = 300 * time.Millisecond

	crackSeverity    = 6
	rockFallSeverity = 7
	floodSeverity    = 8
	quakeEffectDays  = 2
)

// Event is something the engine reports. The set of events is closed.
type Event interface {
	disasterEvent()
}

// EarthquakeStarted fires when an earthquake is triggered.
type EarthquakeStarted struct {
	ID        int
	Epicenter grid.Coord
	Magnitude int
	Affected  int
}

// DamageReported fires for each infrastructure cell an earthquake damages.
type DamageReported struct {
	ID       int
	Cell     grid.Coord
	Severity int
	Type     grid.CellType // type after the damage was applied
}

// EarthquakeEnded fires when an earthquake's timer runs out.
type EarthquakeEnded struct {
	ID        int
	Epicenter grid.Coord
	Magnitude int
}

func (EarthquakeStarted) disasterEvent() {}
func (DamageReported) disasterEvent()    {}
func (EarthquakeEnded) disasterEvent()   {}

// Earthquake is a timed effect centred on an epicenter.
type Earthquake struct {
	ID        int
	Epicenter grid.Coord
	Magnitude int
	Affected  []grid.Coord
	Duration  time.Duration
	Elapsed   time.Duration
}

// NewEarthquake builds an earthquake on g and computes the cells it hits:
// every cell within the Chebyshev radius, in row order.
func NewEarthquake(g *grid.Grid, epicenter grid.Coord, magnitude int) *Earthquake {
	magnitude = min(MaxMagnitude, max(MinMagnitude, magnitude))
	e := &Earthquake{
		Epicenter: epicenter,
		Magnitude: magnitude,
		Duration:  EarthquakeBaseDuration + time.Duration(magnitude)*durationPerMagnitude,
	}
	r := e.Radius()
	for y := epicenter.Y - r; y <= epicenter.Y+r; y++ {
		for x := epicenter.X - r; x <= epicenter.X+r; x++ {
			if c := grid.C(x, y); g.InBounds(c) {
				e.Affected = append(e.Affected, c)
			}
		}
	}
	return e
}

// Radius is the reach of the quake in cells.
func (e *Earthquake) Radius() int {
	return (e.Magnitude + 1) / 2
}

// SeverityAt is the damage dealt at c: the magnitude, falling off by two
// per ring, never below one inside the radius.
func (e *Earthquake) SeverityAt(c grid.Coord) int {
	d := e.Epicenter.Chebyshev(c)
	if d > e.Radius() {
		return 0
	}
	return max(1, e.Magnitude-2*d)
}

// Apply damages the affected cells and reshapes terrain. Damaged
// infrastructure is added to the grid's damaged set and passed to report.
func (e *Earthquake) Apply(g *grid.Grid, report func(DamageReported)) {
	for _, pos := range e.Affected {
		cell, ok := g.At(pos)
		if !ok {
			continue
		}
		sev := e.SeverityAt(pos)
		switch t := cell.Type(); {
		case t.Infrastructure():
			cell.ApplyDamage(sev)
			cell.SetEffect("quake", quakeEffectDays)
			g.MarkDamaged(pos)
			if report != nil {
				report(DamageReported{ID: e.ID, Cell: pos, Severity: sev, Type: cell.Type()})
			}
		case t == grid.Empty && sev >= crackSeverity:
			g.PlaceCell(pos.X, pos.Y, grid.Crack)
		case t == grid.Mountain && sev >= rockFallSeverity:
			g.PlaceCell(pos.X, pos.Y, grid.RockFall)
		case t == grid.Water && sev >= floodSeverity:
			g.PlaceCell(pos.X, pos.Y, grid.Flooded)
		}
	}
}

// Advance moves the effect's timer forward and reports whether it expired.
func (e *Earthquake) Advance(dt time.Duration) bool {
	e.Elapsed += dt
	return !e.Active()
}

// Active reports whether the effect is still running.
func (e *Earthquake) Active() bool {
	return e.Elapsed < e.Duration
}

// Listener receives engine events.
type Listener func(Event)

// Engine tracks the active effects on one grid.
// It is not safe for concurrent use; the owner serialises access.
type Engine struct {
	g         *grid.Grid
	effects   []*Earthquake
	listeners []Listener
	nextID    int
}

// NewEngine creates an engine acting on g.
func NewEngine(g *grid.Grid) *Engine {
	return &Engine{g: g}
}

// Subscribe registers a listener. Listeners run synchronously in
// registration order.
func (e *Engine) Subscribe(l Listener) {
	if l != nil {
		e.listeners = append(e.listeners, l)
	}
}

func (e *Engine) emit(ev Event) {
	for _, l := range e.listeners {
		l(ev)
	}
}

// Trigger starts an earthquake at (x, y). Off-board epicenters are refused.
func (e *Engine) Trigger(x, y, magnitude int) (*Earthquake, bool) {
	epicenter := grid.C(x, y)
	if !e.g.InBounds(epicenter) {
		return nil, false
	}

	e.nextID++
	q := NewEarthquake(e.g, epicenter, magnitude)
	q.ID = e.nextID
	e.effects = append(e.effects, q)

	e.emit(EarthquakeStarted{ID: q.ID, Epicenter: epicenter, Magnitude: q.Magnitude, Affected: len(q.Affected)})
	q.Apply(e.g, func(d DamageReported) { e.emit(d) })
	return q, true
}

// TriggerRandom starts a magnitude 3-7 earthquake at a random epicenter.
func (e *Engine) TriggerRandom(rng *rand.Rand) (*Earthquake, bool) {
	if e.g.W == 0 || e.g.H == 0 {
		return nil, false
	}
	x, y := rng.IntN(e.g.W), rng.IntN(e.g.H)
	mag := RandomMinMagnitude + rng.IntN(RandomMaxMagnitude-RandomMinMagnitude+1)
	return e.Trigger(x, y, mag)
}

// Update advances every active effect by dt and retires the expired ones.
// Effects are advanced from a snapshot so listeners may trigger new ones.
func (e *Engine) Update(dt time.Duration) {
	snapshot := slices.Clone(e.effects)

	var expired []*Earthquake
	for _, q := range snapshot {
		if q.Advance(dt) {
			expired = append(expired, q)
		}
	}
	if len(expired) == 0 {
		return
	}

	e.effects = slices.DeleteFunc(e.effects, func(q *Earthquake) bool {
		return slices.Contains(expired, q)
	})
	for _, q := range expired {
		e.emit(EarthquakeEnded{ID: q.ID, Epicenter: q.Epicenter, Magnitude: q.Magnitude})
	}
}

// Active returns copies of the running effects.
func (e *Engine) Active() []Earthquake {
	out := make([]Earthquake, 0, len(e.effects))
	for _, q := range e.effects {
		cp := *q
		cp.Affected = slices.Clone(q.Affected)
		out = append(out, cp)
	}
	return out
}

// Clear drops every active effect without notifying listeners.
func (e *Engine) Clear() {
	e.effects = nil
}
