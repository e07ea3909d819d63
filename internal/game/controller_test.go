package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/powergrid/internal/config"
	"github.com/vovakirdan/powergrid/internal/grid"
	"github.com/vovakirdan/powergrid/internal/levels"
)

// calm returns options that switch every random event off.
func calm(money, crews int) []Option {
	sim := config.DefaultSimulationConfig()
	sim.Events.PositiveChance = 0
	return []Option{
		WithDifficulty(config.Difficulty{Name: "test", StartingMoney: money, RepairCrews: crews}),
		WithSimulation(sim),
		WithSeed(1),
	}
}

func eventsOf[T Event](events []Event) []T {
	var out []T
	for _, ev := range events {
		if e, ok := ev.(T); ok {
			out = append(out, e)
		}
	}
	return out
}

func TestNewQueuesObjectives(t *testing.T) {
	c := New(grid.New(3, 3), calm(5000, 3)...)

	objectives := eventsOf[NewObjective](c.Drain())
	require.Len(t, objectives, 3)
	assert.Equal(t, "Power at least 5 houses", objectives[0].Text)
	assert.Empty(t, c.Drain())

	st := c.Stats()
	assert.Equal(t, 5000, st.Money)
	assert.Equal(t, 3, st.RepairCrews)
	assert.Equal(t, Running, st.Outcome)
}

func TestPlaceWire(t *testing.T) {
	g := grid.New(5, 1)
	g.AddPowerSource(0, 0, 1000, grid.SourceCoal)
	g.AddHouse(2, 0)
	c := New(g, calm(5000, 0)...)
	c.Drain()

	assert.False(t, c.PlaceWire(0, 0), "occupied cell")
	assert.False(t, c.PlaceWire(9, 9), "off board")
	assert.Equal(t, 5000, c.Stats().Money)
	assert.Empty(t, eventsOf[MoneyChanged](c.Drain()))

	require.True(t, c.PlaceWire(1, 0))
	st := c.Stats()
	assert.Equal(t, 4990, st.Money)
	assert.Equal(t, 1, st.SatisfiedHouses)
	assert.Equal(t, 1000, st.PowerSupply)
	assert.Equal(t, 10, st.PowerDemand)

	v, ok := c.Cell(2, 0)
	require.True(t, ok)
	assert.True(t, v.Powered)

	money := eventsOf[MoneyChanged](c.Drain())
	require.Len(t, money, 1)
	assert.Equal(t, 4990, money[0].Money)
}

func TestPlaceTransformerNeedsFunds(t *testing.T) {
	c := New(grid.New(3, 3), calm(50, 0)...)

	assert.False(t, c.PlaceTransformer(1, 1))
	assert.True(t, c.PlaceWire(1, 1))
	assert.Equal(t, 40, c.Stats().Money)
}

func TestTickScore(t *testing.T) {
	g := grid.New(3, 1)
	g.AddPowerSource(0, 0, 1000, grid.SourceCoal)
	g.AddHouse(1, 0)
	g.PlaceCell(2, 0, grid.Factory)
	c := New(g, calm(5000, 0)...)
	c.Drain()

	res := c.Tick()
	assert.Equal(t, 1, res.Day)
	assert.False(t, res.Refused)
	assert.Equal(t, Running, res.Outcome)

	st := c.Stats()
	assert.Equal(t, 1, st.FactoriesPowered)
	assert.Equal(t, 60, st.PowerDemand)
	// house 10 + factory 25 + money 50 + supply bonus 100 + day 5
	assert.Equal(t, 190, st.Score)

	events := c.Drain()
	require.Len(t, events, 4)
	assert.Equal(t, DayChanged{Day: 1}, events[0])
	assert.Equal(t, ScoreChanged{Score: 190}, events[1])
	assert.Equal(t, MoneyChanged{Money: 5000}, events[2])
	assert.Equal(t, PowerUpdate{Demand: 60, Supply: 1000}, events[3])
}

func TestLoseOnBlackout(t *testing.T) {
	g := grid.New(2, 1)
	g.AddPowerSource(0, 0, 1, grid.SourceSolar)
	g.AddHouse(1, 0)
	c := New(g, calm(5000, 0)...)

	for day := 1; day <= 15; day++ {
		res := c.Tick()
		require.Equal(t, Running, res.Outcome, "day %d", day)
	}

	res := c.Tick()
	assert.Equal(t, 16, res.Day)
	assert.Equal(t, Lost, res.Outcome)

	again := c.Tick()
	assert.True(t, again.Refused)
	assert.Equal(t, 16, again.Day)
	assert.False(t, c.PlaceWire(0, 0))

	over := eventsOf[GameOver](c.Drain())
	require.Len(t, over, 1)
	assert.False(t, over[0].Win)
	assert.Equal(t, Lost, c.Outcome())
	assert.NotEmpty(t, c.Stats().Message)
}

func TestWinOnScore(t *testing.T) {
	g := grid.New(2, 1)
	g.AddPowerSource(0, 0, 1000, grid.SourceCoal)
	g.AddHouse(1, 0)

	opts := calm(5000, 0)
	sim := config.DefaultSimulationConfig()
	sim.Events.PositiveChance = 0
	sim.Rules.WinScore = 50
	opts = append(opts, WithSimulation(sim))

	c := New(g, opts...)
	res := c.Tick()
	assert.Equal(t, Won, res.Outcome)

	over := eventsOf[GameOver](c.Drain())
	require.Len(t, over, 1)
	assert.True(t, over[0].Win)
	assert.False(t, c.TriggerEarthquake(0, 0, 5))
}

// withRules returns calm options with the win and lose thresholds adjusted.
func withRules(money int, adjust func(*config.RulesConfig)) []Option {
	sim := config.DefaultSimulationConfig()
	sim.Events.PositiveChance = 0
	adjust(&sim.Rules)
	return append(calm(money, 0), WithSimulation(sim))
}

// litStreet builds a width x 3 grid with a source at (0,0) feeding a house
// at (1,0), plus unconnected houses along row 0 from x = 3 onwards.
func litStreet(width, dark int) *grid.Grid {
	g := grid.New(width, 3)
	g.AddPowerSource(0, 0, 1000, grid.SourceCoal)
	g.AddHouse(1, 0)
	for x := 3; x < 3+dark; x++ {
		g.AddHouse(x, 0)
	}
	return g
}

// damageRow lays n lightly damaged wires along row 2.
func damageRow(g *grid.Grid, n int) {
	for x := range n {
		g.PlaceCell(x, 2, grid.Wire)
		cell, _ := g.Cell(x, 2)
		cell.ApplyDamage(1)
		g.MarkDamaged(cell.Pos())
	}
}

func TestWinOnSatisfaction(t *testing.T) {
	c := New(litStreet(3, 0), calm(5000, 0)...)

	for day := 1; day < 30; day++ {
		require.Equal(t, Running, c.Tick().Outcome, "day %d", day)
	}
	res := c.Tick()
	assert.Equal(t, 30, res.Day)
	assert.Equal(t, Won, res.Outcome)
	assert.Equal(t, "Powered 1 of 1 houses for 30 days", c.Stats().Message)
}

func TestRubbleStaysInHouseTotal(t *testing.T) {
	g := litStreet(6, 3)
	for x := 3; x < 6; x++ {
		cell, _ := g.Cell(x, 0)
		cell.ApplyDamage(grid.MaxDamage)
		g.MarkDamaged(cell.Pos())
	}
	rubble, _ := g.Cell(3, 0)
	require.Equal(t, grid.Rubble, rubble.Type())

	c := New(g, calm(5000, 0)...)
	for day := 1; day <= 30; day++ {
		require.Equal(t, Running, c.Tick().Outcome, "day %d", day)
	}

	st := c.Stats()
	assert.Equal(t, 4, st.TotalHouses)
	assert.Equal(t, 1, st.SatisfiedHouses)
}

func TestLoseOnBankruptcy(t *testing.T) {
	t.Run("more than ten damaged cells", func(t *testing.T) {
		g := litStreet(12, 0)
		damageRow(g, 11)
		c := New(g, calm(0, 0)...)

		res := c.Tick()
		assert.Equal(t, 1, res.Day)
		assert.Equal(t, Lost, res.Outcome)
		assert.Contains(t, c.Stats().Message, "Bankrupt")
	})

	t.Run("ten damaged cells are tolerated", func(t *testing.T) {
		g := litStreet(12, 0)
		damageRow(g, 10)
		c := New(g, calm(0, 0)...)

		assert.Equal(t, Running, c.Tick().Outcome)
	})

	t.Run("money left", func(t *testing.T) {
		g := litStreet(12, 0)
		damageRow(g, 11)
		c := New(g, calm(100, 0)...)

		assert.Equal(t, Running, c.Tick().Outcome)
	})
}

func TestLoseOnLowSatisfaction(t *testing.T) {
	// One of six houses lit is below a fifth.
	c := New(litStreet(8, 5), calm(5000, 0)...)

	for day := 1; day <= 10; day++ {
		require.Equal(t, Running, c.Tick().Outcome, "day %d", day)
	}
	res := c.Tick()
	assert.Equal(t, 11, res.Day)
	assert.Equal(t, Lost, res.Outcome)
	assert.Contains(t, c.Stats().Message, "Fewer than 20%")
}

func TestTerminalPriority(t *testing.T) {
	t.Run("score win beats bankruptcy", func(t *testing.T) {
		g := litStreet(12, 0)
		damageRow(g, 11)
		c := New(g, withRules(0, func(r *config.RulesConfig) { r.WinScore = 50 })...)

		assert.Equal(t, Won, c.Tick().Outcome)
		assert.Contains(t, c.Stats().Message, "points")
	})

	t.Run("bankruptcy beats low satisfaction", func(t *testing.T) {
		g := litStreet(12, 5)
		damageRow(g, 11)
		c := New(g, withRules(0, func(r *config.RulesConfig) { r.LoseSatisfactionDay = 0 })...)

		assert.Equal(t, Lost, c.Tick().Outcome)
		assert.Contains(t, c.Stats().Message, "Bankrupt")
	})

	t.Run("low satisfaction beats blackout", func(t *testing.T) {
		g := grid.New(8, 1)
		g.AddPowerSource(0, 0, 1, grid.SourceSolar)
		g.AddHouse(1, 0)
		for x := 3; x < 8; x++ {
			g.AddHouse(x, 0)
		}
		c := New(g, withRules(5000, func(r *config.RulesConfig) {
			r.LoseSatisfactionDay = 0
			r.LoseSupplyDay = 0
		})...)

		assert.Equal(t, Lost, c.Tick().Outcome)
		assert.Contains(t, c.Stats().Message, "Fewer than 20%")
	})
}

func TestAutoRepairIsStepwise(t *testing.T) {
	g := grid.New(3, 1)
	g.AddPowerSource(0, 0, 1000, grid.SourceCoal)
	g.PlaceCell(1, 0, grid.Wire)
	cell, _ := g.Cell(1, 0)
	cell.ApplyDamage(3)
	g.MarkDamaged(cell.Pos())

	c := New(g, calm(5000, 1)...)

	c.Tick()
	st := c.Stats()
	assert.Equal(t, 4900, st.Money)
	assert.Equal(t, 1, st.RepairsCompleted)
	assert.Equal(t, 1, st.DamagedCells)
	v, _ := c.Cell(1, 0)
	assert.Equal(t, 2, v.DamageLevel)

	c.Tick()
	c.Tick()
	st = c.Stats()
	assert.Equal(t, 4700, st.Money)
	assert.Equal(t, 3, st.RepairsCompleted)
	assert.Zero(t, st.DamagedCells)

	repairs := eventsOf[RepairDone](c.Drain())
	require.Len(t, repairs, 3)
	assert.Equal(t, 0, repairs[2].Remaining)
	assert.False(t, repairs[2].Manual)
}

func TestAutoRepairNeedsFullPrice(t *testing.T) {
	g := grid.New(2, 1)
	g.PlaceCell(1, 0, grid.Wire)
	cell, _ := g.Cell(1, 0)
	cell.ApplyDamage(3)
	g.MarkDamaged(cell.Pos())

	c := New(g, calm(250, 2)...)
	c.Tick()

	st := c.Stats()
	assert.Equal(t, 250, st.Money)
	assert.Zero(t, st.RepairsCompleted)
	assert.Equal(t, 1, st.DamagedCells)
}

func TestManualRepair(t *testing.T) {
	g := grid.New(2, 1)
	g.PlaceCell(1, 0, grid.Wire)
	cell, _ := g.Cell(1, 0)
	cell.ApplyDamage(1)
	g.MarkDamaged(cell.Pos())

	c := New(g, calm(600, 0)...)

	assert.False(t, c.ManualRepair(0, 0), "nothing to repair")
	require.True(t, c.ManualRepair(1, 0))
	assert.Equal(t, 100, c.Stats().Money)
	assert.Zero(t, c.Stats().DamagedCells)
	assert.False(t, c.ManualRepair(1, 0))
}

func TestPurchaseRepairCrew(t *testing.T) {
	c := New(grid.New(2, 2), calm(1500, 1)...)

	require.True(t, c.PurchaseRepairCrew())
	assert.False(t, c.PurchaseRepairCrew())

	st := c.Stats()
	assert.Equal(t, 2, st.RepairCrews)
	assert.Equal(t, 500, st.Money)
}

func TestEarthquakeBookkeeping(t *testing.T) {
	g := grid.New(9, 9)
	g.PlaceCell(4, 4, grid.Wire)
	c := New(g, calm(5000, 0)...)
	c.Drain()

	assert.False(t, c.TriggerEarthquake(20, 20, 5))
	require.True(t, c.TriggerEarthquake(4, 4, 8))

	st := c.Stats()
	assert.Equal(t, 1, st.EarthquakesTriggered)
	assert.Equal(t, 800, st.TotalDamageCost)
	assert.Equal(t, 4600, st.Money)
	assert.Equal(t, 1, st.DamagedCells)
	assert.Equal(t, 1, st.ActiveDisasters)

	v, _ := c.Cell(4, 4)
	assert.Equal(t, grid.BrokenWire, v.Type)

	events := c.Drain()
	warnings := eventsOf[DisasterWarning](events)
	require.Len(t, warnings, 1)
	assert.Equal(t, DisasterWarning{Disaster: "earthquake", Severity: 8}, warnings[0])

	reports := eventsOf[EarthquakeReport](events)
	require.Len(t, reports, 1)
	assert.Equal(t, 81, reports[0].Affected)
	assert.Equal(t, 1, reports[0].Damaged)
	assert.Equal(t, grid.C(4, 4), reports[0].Epicenter)
}

func TestSubscribers(t *testing.T) {
	c := New(grid.New(3, 3), calm(5000, 0)...)

	var got []Event
	var stats Stats
	unsubscribe := c.Subscribe(func(ev Event) {
		got = append(got, ev)
		stats = c.Stats()
	})

	require.True(t, c.PlaceWire(0, 0))
	assert.Contains(t, got, Event(MoneyChanged{Money: 4990}))
	assert.Equal(t, 4990, stats.Money)

	unsubscribe()
	n := len(got)
	c.PlaceWire(1, 0)
	assert.Len(t, got, n)
}

func TestAdvanceLevel(t *testing.T) {
	d, err := levels.Campaign(1)
	require.NoError(t, err)

	c, err := NewFromLevel(d, calm(5000, 0)...)
	require.NoError(t, err)
	assert.False(t, c.LevelComplete())
	assert.False(t, c.AdvanceLevel())

	wires := []grid.Coord{
		{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}, {X: 4, Y: 0},
		{X: 4, Y: 1}, {X: 4, Y: 2}, {X: 4, Y: 3},
		{X: 5, Y: 4}, {X: 6, Y: 4}, {X: 7, Y: 4}, {X: 8, Y: 4},
		{X: 8, Y: 5}, {X: 8, Y: 6}, {X: 8, Y: 7},
		{X: 9, Y: 8}, {X: 10, Y: 8}, {X: 11, Y: 8}, {X: 12, Y: 8},
		{X: 12, Y: 9}, {X: 12, Y: 10}, {X: 12, Y: 11},
	}
	for _, w := range wires {
		require.True(t, c.PlaceWire(w.X, w.Y), "wire at %v", w)
	}
	require.True(t, c.LevelComplete())
	assert.Empty(t, c.IsolatedHouses())

	require.True(t, c.AdvanceLevel())
	assert.Equal(t, 2, c.Level().Number)

	st := c.Stats()
	assert.Equal(t, 5000-len(wires)*10+300, st.Money)
	assert.Equal(t, 500, st.Score)
	assert.Equal(t, 4, st.TotalHouses)
	assert.False(t, c.LevelComplete())
}

func TestConnectionQuote(t *testing.T) {
	g := grid.New(5, 1)
	g.AddPowerSource(0, 0, 1000, grid.SourceCoal)
	c := New(g, calm(5000, 0)...)

	cost, ok := c.ConnectionQuote(3, 0)
	require.True(t, ok)
	assert.Positive(t, cost)

	_, ok = c.ConnectionQuote(7, 0)
	assert.False(t, ok)
}

func TestSameSeedSameGame(t *testing.T) {
	d, err := levels.Campaign(4)
	require.NoError(t, err)

	run := func() Stats {
		c, err := NewFromLevel(d, WithSeed(99))
		require.NoError(t, err)
		for range 40 {
			c.Tick()
		}
		return c.Stats()
	}

	assert.Equal(t, run(), run())
}
