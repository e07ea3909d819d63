package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/powergrid/internal/config"
	"github.com/vovakirdan/powergrid/internal/grid"
)

func TestNetworkEfficiency(t *testing.T) {
	assert.Zero(t, NetworkEfficiency(0, 0, 5, 50))
	assert.InDelta(t, 100, NetworkEfficiency(2, 2, 0, 0), 1e-9)
	assert.InDelta(t, 35, NetworkEfficiency(1, 4, 200, 2000), 1e-9)
}

func TestAnalyze(t *testing.T) {
	g := grid.New(5, 1)
	g.AddPowerSource(0, 0, 1000, grid.SourceCoal)
	g.PlaceCell(1, 0, grid.Wire)
	g.AddHouse(2, 0)
	g.AddHouse(4, 0)

	r := Analyze(g, config.DefaultSimulationConfig().Costs)

	assert.Equal(t, 2, r.Houses)
	assert.Equal(t, 1, r.PoweredHouses)
	assert.Equal(t, 1, r.Wires)
	assert.Equal(t, 10, r.BudgetUsed)
	assert.Equal(t, 10, r.Demand)
	assert.Equal(t, 1000, r.Supply)
	assert.True(t, r.Connected)
	assert.Equal(t, []grid.Coord{grid.C(4, 0)}, r.IsolatedHouses)
	assert.Empty(t, r.Unreachable)
	assert.Empty(t, r.ShortCircuits)
	assert.InDelta(t, NetworkEfficiency(1, 2, 1, 10), r.NetworkEfficiency, 1e-9)

	require.Len(t, r.Connections, 2)
	assert.Equal(t, grid.C(2, 0), r.Connections[0].House)
	assert.True(t, r.Connections[0].Powered)
	assert.True(t, r.Connections[1].Reachable)
	assert.False(t, r.Connections[1].Powered)
	assert.Positive(t, r.Connections[1].Cost)
	assert.Equal(t, 4, r.Connections[1].Steps)

	// The analysed grid is a copy.
	cell, _ := g.Cell(2, 0)
	assert.False(t, cell.IsPowered())
}

func TestAnalyzeWalledHouse(t *testing.T) {
	g := grid.New(3, 3)
	g.AddPowerSource(0, 0, 1000, grid.SourceCoal)
	g.AddHouse(2, 2)
	for _, c := range []grid.Coord{grid.C(1, 1), grid.C(1, 2), grid.C(2, 1)} {
		g.PlaceCell(c.X, c.Y, grid.Obstacle)
	}

	r := Analyze(g, config.DefaultSimulationConfig().Costs)
	assert.Equal(t, []grid.Coord{grid.C(2, 2)}, r.Unreachable)
	require.Len(t, r.Connections, 1)
	assert.False(t, r.Connections[0].Reachable)

	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))
	assert.Contains(t, buf.String(), "Network efficiency")
	assert.Contains(t, buf.String(), "Grid 3x3")
}

func TestAnalyzeCostAndStepsShareARoute(t *testing.T) {
	// The shortest route crosses the water. The way round it is longer.
	g := grid.New(4, 2)
	g.AddPowerSource(0, 0, 1000, grid.SourceCoal)
	g.PlaceCell(1, 0, grid.Water)
	g.PlaceCell(2, 0, grid.Water)
	g.AddHouse(3, 0)

	r := Analyze(g, config.DefaultSimulationConfig().Costs)
	require.Len(t, r.Connections, 1)
	conn := r.Connections[0]
	assert.True(t, conn.Reachable)
	assert.Equal(t, 70, conn.Cost)
	assert.Equal(t, 3, conn.Steps)
}
