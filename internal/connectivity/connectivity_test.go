package connectivity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/powergrid/internal/grid"
)

func singlePath(t *testing.T) *grid.Grid {
	t.Helper()
	g := grid.New(6, 3)
	_, ok := g.AddPowerSource(0, 1, 0, "")
	require.True(t, ok)
	for x := 1; x <= 4; x++ {
		g.PlaceCell(x, 1, grid.Wire)
	}
	g.AddHouse(5, 1)
	return g
}

func TestIsGridConnected(t *testing.T) {
	t.Run("single source single path", func(t *testing.T) {
		g := singlePath(t)
		assert.True(t, IsGridConnected(g))
		comps := Components(g)
		require.Len(t, comps, 1)
		assert.Len(t, comps[0], 6)
	})

	t.Run("second isolated source disconnects", func(t *testing.T) {
		g := singlePath(t)
		g.AddPowerSource(2, 2, 0, "")
		assert.True(t, IsGridConnected(g), "(2,2) borders the wire at (2,1)")

		g.PlaceCell(2, 1, grid.Empty)
		assert.False(t, IsGridConnected(g))
		assert.Len(t, Components(g), 2)
	})

	t.Run("no sources counts as connected", func(t *testing.T) {
		assert.True(t, IsGridConnected(grid.New(3, 3)))
	})

	t.Run("two sources on one network", func(t *testing.T) {
		g := singlePath(t)
		g.AddPowerSource(5, 0, 0, "")
		assert.True(t, IsGridConnected(g))
		assert.Len(t, Components(g), 1)
	})

	t.Run("far source with no path", func(t *testing.T) {
		g := grid.New(7, 7)
		g.AddPowerSource(0, 0, 0, "")
		g.PlaceCell(1, 0, grid.Wire)
		g.AddPowerSource(6, 6, 0, "")
		assert.False(t, IsGridConnected(g))
		assert.Len(t, Components(g), 2)
	})
}

func TestIsolatedHouses(t *testing.T) {
	g := singlePath(t)
	g.AddHouse(0, 0)
	g.AddHouse(3, 2)
	g.PlaceCell(3, 1, grid.Water)

	isolated := IsolatedHouses(g)
	assert.ElementsMatch(t, []grid.Coord{grid.C(5, 1), grid.C(3, 2)}, isolated)
}

func TestDetectShortCircuits(t *testing.T) {
	// source at (0,1) with wires forming a U; a broken wire closes the U
	g := grid.New(3, 3)
	g.AddPowerSource(0, 1, 0, "")
	g.PlaceCell(0, 0, grid.Wire)
	g.PlaceCell(0, 2, grid.Wire)
	g.PlaceCell(1, 0, grid.Wire)
	g.PlaceCell(1, 2, grid.Wire)
	g.PlaceCell(1, 1, grid.BrokenWire)

	assert.Equal(t, []grid.Coord{grid.C(1, 1)}, DetectShortCircuits(g))

	g.PlaceCell(1, 2, grid.Empty)
	g.PlaceCell(0, 2, grid.Empty)
	assert.Equal(t, []grid.Coord{grid.C(1, 1)}, DetectShortCircuits(g), "source and wire above still flank it")

	g.PlaceCell(1, 0, grid.Empty)
	assert.Empty(t, DetectShortCircuits(g))
}
