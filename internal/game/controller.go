// Package game runs one simulation session. The Controller owns the grid,
// advances it one simulated day per Tick, applies player actions and
// reports what happened as events.
package game

import (
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/powergrid/internal/config"
	"github.com/vovakirdan/powergrid/internal/disaster"
	"github.com/vovakirdan/powergrid/internal/grid"
	"github.com/vovakirdan/powergrid/internal/levels"
	"github.com/vovakirdan/powergrid/internal/pathfind"
	"github.com/vovakirdan/powergrid/internal/power"
)

// Earthquake bookkeeping.
const (
	damageCostPerSeverity = 100 // added to the total damage cost per severity point
	severeDamage          = 7   // severities above this also cost money
	severeDamageFine      = 50  // per severity point
	severeQuake           = 7   // magnitudes above this cost score
	severeQuakePenalty    = 50
)

// maxQueued bounds the poll queue; the oldest events are dropped first.
const maxQueued = 4096

// Outcome is the game's terminal state.
type Outcome int

const (
	Running Outcome = iota
	Won
	Lost
)

func (o Outcome) String() string {
	switch o {
	case Running:
		return "running"
	case Won:
		return "won"
	case Lost:
		return "lost"
	}
	return "unknown"
}

// Context is the explicit simulation context threaded through every tick:
// the seeded RNG and the number of ticks taken.
type Context struct {
	Rand *rand.Rand
	Tick int
}

// NewContext creates a context with a PCG generator seeded from seed.
func NewContext(seed int64) Context {
	return Context{Rand: rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))}
}

// TickResult describes one call to Tick.
type TickResult struct {
	Day     int
	Refused bool // the game was already over; nothing changed
	Outcome Outcome
}

// Stats is a snapshot of the aggregate counters.
type Stats struct {
	Level                string  `json:"level"`
	Score                int     `json:"score"`
	Money                int     `json:"money"`
	Day                  int     `json:"day"`
	PowerDemand          int     `json:"power_demand"`
	PowerSupply          int     `json:"power_supply"`
	SatisfiedHouses      int     `json:"satisfied_houses"`
	TotalHouses          int     `json:"total_houses"`
	FactoriesPowered     int     `json:"factories_powered"`
	RepairCrews          int     `json:"repair_crews"`
	EarthquakesTriggered int     `json:"earthquakes_triggered"`
	TotalDamageCost      int     `json:"total_damage_cost"`
	RepairsCompleted     int     `json:"repairs_completed"`
	DamagedCells         int     `json:"damaged_cells"`
	ActiveDisasters      int     `json:"active_disasters"`
	PowerEfficiency      float64 `json:"power_efficiency"`
	Outcome              Outcome `json:"outcome"`
	Message              string  `json:"message,omitempty"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithDifficulty sets the difficulty profile.
func WithDifficulty(d config.Difficulty) Option {
	return func(c *Controller) { c.diff = d }
}

// WithSimulation sets the simulation tunables.
func WithSimulation(s config.SimulationConfig) Option {
	return func(c *Controller) { c.sim = s }
}

// WithSeed seeds the simulation RNG.
func WithSeed(seed int64) Option {
	return func(c *Controller) { c.ctx = NewContext(seed) }
}

// WithContext installs an existing simulation context.
func WithContext(ctx Context) Option {
	return func(c *Controller) { c.ctx = ctx }
}

// WithLogger routes controller logs to l.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLevel records the level the grid was built from, enabling campaign
// progression.
func WithLevel(d levels.Descriptor) Option {
	return func(c *Controller) { c.level = d }
}

type subscriber struct {
	id int
	fn func(Event)
}

// Controller is the authoritative state of one game. All methods are safe
// for concurrent use. Events raised by a method are delivered to
// subscribers after the controller's lock is released, so subscribers may
// call back into the controller.
type Controller struct {
	mu sync.Mutex

	g      *grid.Grid
	quakes *disaster.Engine
	ctx    Context
	diff   config.Difficulty
	sim    config.SimulationConfig
	level  levels.Descriptor
	logger *log.Logger

	score            int
	money            int
	day              int
	demand           int
	supply           int
	satisfied        int
	totalHouses      int
	factoriesPowered int
	repairCrews      int
	earthquakes      int
	damageCost       int
	repairs          int
	quakeDamaged     int
	outcome          Outcome
	message          string

	pending []Event
	queue   []Event
	subs    []subscriber
	nextSub int
}

func newController(opts []Option) *Controller {
	diff, _ := config.DefaultDifficulties().Profile("")
	c := &Controller{
		diff:   diff,
		sim:    config.DefaultSimulationConfig(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.ctx.Rand == nil {
		c.ctx = NewContext(time.Now().UnixNano())
	}
	return c
}

// New creates a controller for a prepared grid.
func New(g *grid.Grid, opts ...Option) *Controller {
	c := newController(opts)
	c.start(g)
	return c
}

// NewFromLevel builds the level's grid with the controller's RNG and
// creates a controller for it.
func NewFromLevel(d levels.Descriptor, opts ...Option) (*Controller, error) {
	c := newController(append(opts, WithLevel(d)))
	g, err := d.Build(c.ctx.Rand)
	if err != nil {
		return nil, err
	}
	c.start(g)
	return c, nil
}

func (c *Controller) start(g *grid.Grid) {
	c.money = max(0, c.diff.StartingMoney)
	c.repairCrews = max(0, c.diff.RepairCrews)
	c.attach(g)
	c.refresh()

	c.emit(
		NewObjective{Text: "Power at least 5 houses"},
		NewObjective{Text: "Save $2000 for emergency repairs"},
		NewObjective{Text: "Keep at least 3 repair crews"},
	)
	c.takePending()

	c.logger.Debug("game started", "level", c.level.ID, "difficulty", c.diff.Name,
		"money", c.money, "crews", c.repairCrews)
}

func (c *Controller) attach(g *grid.Grid) {
	c.g = g
	c.quakes = disaster.NewEngine(g)
	c.quakes.Subscribe(c.onDisaster)
}

// do runs fn under the lock, then delivers the events it raised.
func (c *Controller) do(fn func()) {
	c.mu.Lock()
	fn()
	events := c.takePending()
	subs := slices.Clone(c.subs)
	c.mu.Unlock()

	for _, ev := range events {
		for _, s := range subs {
			s.fn(ev)
		}
	}
}

func (c *Controller) emit(events ...Event) {
	c.pending = append(c.pending, events...)
}

// takePending moves raised events onto the poll queue and returns them.
func (c *Controller) takePending() []Event {
	events := c.pending
	c.pending = nil
	c.queue = append(c.queue, events...)
	if over := len(c.queue) - maxQueued; over > 0 {
		c.queue = slices.Delete(c.queue, 0, over)
	}
	return events
}

// Subscribe registers fn for every future event and returns a function
// that removes it.
func (c *Controller) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subs = append(c.subs, subscriber{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.subs = slices.DeleteFunc(c.subs, func(s subscriber) bool { return s.id == id })
	}
}

// Drain returns and clears the events queued since the last call.
func (c *Controller) Drain() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.queue
	c.queue = nil
	return out
}

// Tick advances the simulation by one day. Once the game is over every
// call is refused and changes nothing.
func (c *Controller) Tick() TickResult {
	var res TickResult
	c.do(func() { res = c.tick() })
	return res
}

func (c *Controller) tick() TickResult {
	if c.outcome != Running {
		return TickResult{Day: c.day, Refused: true, Outcome: c.outcome}
	}

	c.ctx.Tick++
	c.day++

	c.demand = power.Demand(c.g)
	c.supply = power.Supply(c.g)
	c.countHouses()
	c.score = c.computeScore()

	c.rollDisaster()
	c.rollPositiveEvent()
	c.quakes.Update(c.sim.Clock.DayLength)
	c.g.UpdateEffects()
	c.autoRepair()
	power.Distribute(c.g)

	c.checkTerminal()

	c.emit(
		DayChanged{Day: c.day},
		ScoreChanged{Score: c.score},
		MoneyChanged{Money: c.money},
		PowerUpdate{Demand: c.demand, Supply: c.supply},
	)
	c.logger.Debug("day advanced", "day", c.day, "score", c.score, "money", c.money,
		"demand", c.demand, "supply", c.supply, "satisfied", c.satisfied, "houses", c.totalHouses)

	return TickResult{Day: c.day, Outcome: c.outcome}
}

// countHouses counts the level's registered houses and how many of them,
// and of the factories, are powered and intact. Houses reduced to rubble
// stay in the total.
func (c *Controller) countHouses() {
	houses := c.g.Houses()
	c.totalHouses, c.satisfied, c.factoriesPowered = len(houses), 0, 0
	for _, h := range houses {
		if cell, ok := c.g.At(h.Pos); ok && cell.Type() == grid.House && cell.IsPowered() {
			c.satisfied++
		}
	}
	c.g.Each(func(cell *grid.Cell) {
		if cell.Type() == grid.Factory && cell.IsPowered() {
			c.factoriesPowered++
		}
	})
}

func (c *Controller) computeScore() int {
	s := c.satisfied*10 +
		c.factoriesPowered*25 +
		c.money/100 +
		c.repairs*50 -
		c.damageCost/10 +
		c.day*5
	if c.supply >= c.demand && c.demand > 0 {
		s += 100
	}
	return max(0, s)
}

// refresh re-runs propagation and remeasures the network after a mutation.
func (c *Controller) refresh() {
	power.Distribute(c.g)
	c.demand = power.Demand(c.g)
	c.supply = power.Supply(c.g)
	c.countHouses()
	c.emit(PowerUpdate{Demand: c.demand, Supply: c.supply})
}

func (c *Controller) rollDisaster() {
	rng := c.ctx.Rand
	if rng.Float64() >= c.diff.DisasterChance {
		return
	}

	kind := disaster.Kinds[rng.IntN(len(disaster.Kinds))]
	switch kind {
	case disaster.KindEarthquake:
		c.quakeDamaged = 0
		if q, ok := c.quakes.TriggerRandom(rng); ok {
			c.reportQuake(q)
		}
	case disaster.KindStorm:
		c.warn(kind, c.sim.Events.StormSeverity)
	case disaster.KindFlood:
		c.warn(kind, c.sim.Events.FloodSeverity)
	case disaster.KindFire:
		c.warn(kind, c.sim.Events.FireSeverity)
	}
}

func (c *Controller) warn(kind disaster.Kind, severity int) {
	c.emit(DisasterWarning{Disaster: string(kind), Severity: severity})
	c.logger.Info("disaster", "kind", kind, "severity", severity, "day", c.day)
}

func (c *Controller) rollPositiveEvent() {
	rng := c.ctx.Rand
	ev := c.sim.Events
	if rng.Float64() >= ev.PositiveChance {
		return
	}

	switch rng.IntN(3) {
	case 0:
		bonus := ev.BonusMin + rng.IntN(ev.BonusMax-ev.BonusMin+1)
		c.money += bonus
		c.emit(Notice{Text: fmt.Sprintf("Donation of $%d received", bonus)})
	case 1:
		c.repairCrews++
		c.emit(Notice{Text: "A volunteer repair crew joined"})
	default:
		c.emit(Notice{Text: "Free repair equipment arrived"})
	}
}

// autoRepair gives each repair crew one damaged cell, lowest coordinate
// first. A crew heals one damage level when the funds cover the cell's
// full repair price, and charges one level's worth. A cell leaves the
// damaged set only when fully healed.
func (c *Controller) autoRepair() {
	damaged := c.g.DamagedCells()
	n := min(c.repairCrews, len(damaged))
	perLevel := c.sim.Costs.RepairPerLevel

	for _, pos := range damaged[:n] {
		cell, ok := c.g.At(pos)
		if !ok || !cell.Damaged() {
			c.g.Unmark(pos)
			continue
		}
		if c.money < cell.DamageLevel()*perLevel {
			continue
		}
		c.repairStep(pos, cell, perLevel, false)
	}
}

func (c *Controller) repairStep(pos grid.Coord, cell *grid.Cell, cost int, manual bool) {
	cell.Repair()
	c.money = max(0, c.money-cost)
	c.repairs++
	if !cell.Damaged() {
		c.g.Unmark(pos)
	}
	c.emit(RepairDone{Cell: pos, Remaining: cell.DamageLevel(), Cost: cost, Manual: manual})
	c.logger.Debug("repair", "cell", pos, "remaining", cell.DamageLevel(), "manual", manual)
}

func (c *Controller) onDisaster(ev disaster.Event) {
	switch e := ev.(type) {
	case disaster.EarthquakeStarted:
		c.earthquakes++
		c.emit(DisasterWarning{Disaster: string(disaster.KindEarthquake), Severity: e.Magnitude})
		if e.Magnitude > severeQuake {
			c.score = max(0, c.score-severeQuakePenalty)
		}
		c.logger.Info("earthquake", "id", e.ID, "epicenter", e.Epicenter,
			"magnitude", e.Magnitude, "affected", e.Affected)
	case disaster.DamageReported:
		c.quakeDamaged++
		c.damageCost += e.Severity * damageCostPerSeverity
		if e.Severity > severeDamage {
			c.money = max(0, c.money-e.Severity*severeDamageFine)
		}
	case disaster.EarthquakeEnded:
		c.emit(Notice{Text: fmt.Sprintf("Earthquake #%d (magnitude %d) has ended", e.ID, e.Magnitude)})
	}
}

func (c *Controller) reportQuake(q *disaster.Earthquake) {
	c.emit(EarthquakeReport{
		ID:        q.ID,
		Epicenter: q.Epicenter,
		Magnitude: q.Magnitude,
		Affected:  len(q.Affected),
		Damaged:   c.quakeDamaged,
	})
	c.quakeDamaged = 0
}

func (c *Controller) checkTerminal() {
	r := c.sim.Rules
	total := float64(c.totalHouses)
	sat := float64(c.satisfied)

	switch {
	case c.day >= r.WinDay && sat >= total*r.WinSatisfaction:
		c.end(Won, fmt.Sprintf("Powered %d of %d houses for %d days", c.satisfied, c.totalHouses, c.day))
	case c.score >= r.WinScore:
		c.end(Won, fmt.Sprintf("Reached %d points", c.score))
	case c.money <= 0 && c.g.DamagedCount() > r.LoseDamagedCells:
		c.end(Lost, "Bankrupt: no money left for repairs")
	case sat < total*r.LoseSatisfaction && c.day > r.LoseSatisfactionDay:
		c.end(Lost, fmt.Sprintf("Fewer than %.0f%% of houses have power", r.LoseSatisfaction*100))
	case float64(c.supply) < float64(c.demand)*r.LoseSupplyRatio && c.day > r.LoseSupplyDay:
		c.end(Lost, "Widespread blackout: supply cannot meet demand")
	}
}

func (c *Controller) end(o Outcome, msg string) {
	c.outcome = o
	c.message = msg
	c.emit(GameOver{Win: o == Won, Message: msg})
	c.logger.Info("game over", "outcome", o, "message", msg, "day", c.day, "score", c.score)
}

// emitDeltas reports score and money changes since the given values.
func (c *Controller) emitDeltas(score, money int) {
	if c.score != score {
		c.emit(ScoreChanged{Score: c.score})
	}
	if c.money != money {
		c.emit(MoneyChanged{Money: c.money})
	}
}

// PlaceWire lays a wire on an empty cell. The cost is deducted and power
// redistributed only on success.
func (c *Controller) PlaceWire(x, y int) bool {
	return c.place(x, y, grid.Wire, c.sim.Costs.Wire)
}

// PlaceTransformer builds a transformer on an empty cell.
func (c *Controller) PlaceTransformer(x, y int) bool {
	return c.place(x, y, grid.Transformer, c.sim.Costs.Transformer)
}

func (c *Controller) place(x, y int, t grid.CellType, cost int) bool {
	placed := false
	c.do(func() {
		if c.outcome != Running {
			return
		}
		cell, ok := c.g.Cell(x, y)
		if !ok || cell.Type() != grid.Empty || c.money < cost {
			return
		}
		c.g.PlaceCell(x, y, t)
		c.money -= cost
		c.refresh()
		c.emit(MoneyChanged{Money: c.money})
		placed = true
	})
	return placed
}

// TriggerEarthquake starts an earthquake at (x, y). Off-board epicenters
// and finished games are refused.
func (c *Controller) TriggerEarthquake(x, y, magnitude int) bool {
	triggered := false
	c.do(func() {
		if c.outcome != Running {
			return
		}
		score, money := c.score, c.money
		c.quakeDamaged = 0
		q, ok := c.quakes.Trigger(x, y, magnitude)
		if !ok {
			return
		}
		c.reportQuake(q)
		c.refresh()
		c.emitDeltas(score, money)
		triggered = true
	})
	return triggered
}

// TriggerRandomEarthquake starts a magnitude 3-7 earthquake at a random
// epicenter drawn from the simulation RNG.
func (c *Controller) TriggerRandomEarthquake() bool {
	triggered := false
	c.do(func() {
		if c.outcome != Running {
			return
		}
		score, money := c.score, c.money
		c.quakeDamaged = 0
		q, ok := c.quakes.TriggerRandom(c.ctx.Rand)
		if !ok {
			return
		}
		c.reportQuake(q)
		c.refresh()
		c.emitDeltas(score, money)
		triggered = true
	})
	return triggered
}

// ManualRepair spends the manual repair price to heal one damage level at
// (x, y).
func (c *Controller) ManualRepair(x, y int) bool {
	repaired := false
	c.do(func() {
		if c.outcome != Running {
			return
		}
		cell, ok := c.g.Cell(x, y)
		cost := c.sim.Costs.ManualRepair
		if !ok || !cell.Damaged() || c.money < cost {
			return
		}
		c.repairStep(grid.C(x, y), cell, cost, true)
		c.refresh()
		c.emit(MoneyChanged{Money: c.money})
		repaired = true
	})
	return repaired
}

// PurchaseRepairCrew hires one more crew at the configured price.
func (c *Controller) PurchaseRepairCrew() bool {
	hired := false
	c.do(func() {
		cost := c.sim.Costs.RepairCrew
		if c.outcome != Running || c.money < cost {
			return
		}
		c.repairCrews++
		c.money -= cost
		c.emit(MoneyChanged{Money: c.money}, Notice{Text: "Hired a new repair crew"})
		hired = true
	})
	return hired
}

// LevelComplete reports whether every registered house is powered.
func (c *Controller) LevelComplete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.levelComplete()
}

func (c *Controller) levelComplete() bool {
	houses := len(c.g.Houses())
	return houses > 0 && c.g.CountPoweredHouses() == houses
}

// AdvanceLevel moves a completed campaign level on to the next one,
// rewarding the player. It reports whether a new level was loaded.
func (c *Controller) AdvanceLevel() bool {
	advanced := false
	c.do(func() {
		if c.outcome != Running || !c.levelComplete() || c.level.Number == 0 {
			return
		}
		if c.level.Number >= c.sim.Progression.MaxLevel {
			c.emit(Notice{Text: "Campaign complete"})
			return
		}

		next, err := levels.Campaign(c.level.Number + 1)
		if err != nil {
			c.logger.Error("load next level", "err", err)
			return
		}
		g, err := next.Build(c.ctx.Rand)
		if err != nil {
			c.logger.Error("build next level", "level", next.ID, "err", err)
			return
		}

		c.level = next
		c.attach(g)
		c.money += c.sim.Progression.LevelMoney
		c.score += c.sim.Progression.LevelScore
		c.refresh()
		c.emit(
			MoneyChanged{Money: c.money},
			ScoreChanged{Score: c.score},
			NewObjective{Text: fmt.Sprintf("%s: connect all %d houses", next.Title(), next.HouseCount())},
		)
		c.logger.Info("level advanced", "level", next.ID)
		advanced = true
	})
	return advanced
}

// Cell returns a snapshot of the cell at (x, y).
func (c *Controller) Cell(x, y int) (grid.CellView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.g.View(x, y)
}

// Snapshot returns a deep copy of the grid for read-only collaborators.
func (c *Controller) Snapshot() *grid.Grid {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.g.Clone()
}

// Level returns the level being played.
func (c *Controller) Level() levels.Descriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.level
}

// Outcome returns the terminal state, Running while the game goes on.
func (c *Controller) Outcome() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcome
}

// Stats returns the aggregate counters.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Level:                c.level.ID,
		Score:                c.score,
		Money:                c.money,
		Day:                  c.day,
		PowerDemand:          c.demand,
		PowerSupply:          c.supply,
		SatisfiedHouses:      c.satisfied,
		TotalHouses:          c.totalHouses,
		FactoriesPowered:     c.factoriesPowered,
		RepairCrews:          c.repairCrews,
		EarthquakesTriggered: c.earthquakes,
		TotalDamageCost:      c.damageCost,
		RepairsCompleted:     c.repairs,
		DamagedCells:         c.g.DamagedCount(),
		ActiveDisasters:      len(c.quakes.Active()),
		PowerEfficiency:      power.Efficiency(c.supply, c.demand),
		Outcome:              c.outcome,
		Message:              c.message,
	}
}

// ConnectionQuote prices wiring (x, y) to the nearest source by the
// cheapest quote over all sources. ok is false when no source can reach it.
func (c *Controller) ConnectionQuote(x, y int) (cost int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	target := grid.C(x, y)
	if !c.g.InBounds(target) {
		return 0, false
	}
	f := pathfind.New(c.g)
	best := pathfind.NoPath
	for _, s := range c.g.Sources() {
		best = min(best, f.ConnectionCost(s.Pos, target))
	}
	if best == pathfind.NoPath {
		return 0, false
	}
	return best, true
}

// IsolatedHouses lists houses no source can reach by any passable path.
func (c *Controller) IsolatedHouses() []grid.Coord {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := pathfind.New(c.g)
	var out []grid.Coord
	for _, h := range c.g.Houses() {
		if f.IsHouseIsolated(h.Pos) {
			out = append(out, h.Pos)
		}
	}
	return out
}
