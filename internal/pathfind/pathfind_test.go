package pathfind

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/powergrid/internal/grid"
)

func scenarioGrid(t *testing.T) *grid.Grid {
	t.Helper()
	g := grid.New(5, 5)
	_, ok := g.AddPowerSource(0, 0, 0, "")
	require.True(t, ok)
	g.AddHouse(4, 4)
	for x := 1; x <= 4; x++ {
		g.PlaceCell(x, 0, grid.Wire)
	}
	for y := 1; y <= 3; y++ {
		g.PlaceCell(4, y, grid.Wire)
	}
	return g
}

func walled(t *testing.T) *grid.Grid {
	t.Helper()
	g := grid.New(5, 5)
	for y := 0; y < 5; y++ {
		g.PlaceCell(2, y, grid.Obstacle)
	}
	return g
}

func TestShortestPathBFS(t *testing.T) {
	f := New(scenarioGrid(t))

	t.Run("scenario path length", func(t *testing.T) {
		path := f.ShortestPathBFS(grid.C(0, 0), grid.C(4, 4))
		require.Len(t, path, 8)
		assert.Equal(t, grid.C(4, 4), path[len(path)-1])
		assert.NotContains(t, path, grid.C(0, 0), "start is excluded")
	})

	t.Run("start equals goal", func(t *testing.T) {
		assert.Equal(t, []grid.Coord{grid.C(2, 2)}, f.ShortestPathBFS(grid.C(2, 2), grid.C(2, 2)))
	})

	t.Run("out of bounds", func(t *testing.T) {
		assert.Empty(t, f.ShortestPathBFS(grid.C(-1, 0), grid.C(4, 4)))
		assert.Empty(t, f.ShortestPathBFS(grid.C(0, 0), grid.C(5, 5)))
	})

	t.Run("steps are orthogonal and contiguous", func(t *testing.T) {
		path := f.ShortestPathBFS(grid.C(0, 4), grid.C(3, 1))
		prev := grid.C(0, 4)
		for _, c := range path {
			assert.Equal(t, 1, prev.Manhattan(c))
			prev = c
		}
	})
}

func TestUnreachable(t *testing.T) {
	f := New(walled(t))
	from, to := grid.C(0, 2), grid.C(4, 2)

	assert.Empty(t, f.ShortestPathBFS(from, to))
	assert.Empty(t, f.CheapestPathUCS(from, to))
	assert.Empty(t, f.PathAStar(from, to))
}

func TestHeavilyDamagedCellsBlock(t *testing.T) {
	g := grid.New(3, 1)
	g.PlaceCell(1, 0, grid.Wire)
	c, _ := g.Cell(1, 0)
	c.ApplyDamage(7)
	f := New(g)
	assert.Len(t, f.ShortestPathBFS(grid.C(0, 0), grid.C(2, 0)), 2)

	c.ApplyDamage(1)
	assert.Empty(t, f.ShortestPathBFS(grid.C(0, 0), grid.C(2, 0)))
}

func TestCheapestPathPrefersWire(t *testing.T) {
	g := grid.New(5, 3)
	for x := 0; x < 5; x++ {
		g.PlaceCell(x, 0, grid.Wire)
	}
	f := New(g)
	from, to := grid.C(0, 1), grid.C(4, 1)

	bfs := f.ShortestPathBFS(from, to)
	assert.Len(t, bfs, 4)
	assert.Equal(t, 40, f.PathCost(bfs))

	ucs := f.CheapestPathUCS(from, to)
	assert.Len(t, ucs, 6)
	assert.Equal(t, 35, f.PathCost(ucs))
}

func TestCheapestPathAvoidsWater(t *testing.T) {
	g := grid.New(3, 3)
	g.PlaceCell(1, 1, grid.Water)
	for x := 0; x < 3; x++ {
		g.PlaceCell(x, 0, grid.Wire)
	}
	f := New(g)

	// across the water: 30 + 10; around it on wire: 5 + 5 + 5 + 10
	path := f.CheapestPathUCS(grid.C(0, 1), grid.C(2, 1))
	assert.NotContains(t, path, grid.C(1, 1))
	assert.Equal(t, 25, f.PathCost(path))
	assert.Equal(t, []grid.Coord{grid.C(1, 1), grid.C(2, 1)}, f.ShortestPathBFS(grid.C(0, 1), grid.C(2, 1)))
}

func TestAStarDiagonals(t *testing.T) {
	t.Run("cuts between impassable flanks", func(t *testing.T) {
		g := grid.New(3, 3)
		g.PlaceCell(1, 0, grid.Obstacle)
		g.PlaceCell(0, 1, grid.Obstacle)
		f := New(g)

		assert.Equal(t, []grid.Coord{grid.C(1, 1)}, f.PathAStar(grid.C(0, 0), grid.C(1, 1)))
		assert.Empty(t, f.CheapestPathUCS(grid.C(0, 0), grid.C(1, 1)))
	})

	t.Run("diagonal route is shorter", func(t *testing.T) {
		f := New(grid.New(6, 6))
		path := f.PathAStar(grid.C(0, 0), grid.C(5, 5))
		assert.Len(t, path, 5)
		assert.Equal(t, grid.C(5, 5), path[len(path)-1])
	})

	t.Run("orthogonal only", func(t *testing.T) {
		f := New(grid.New(6, 6), WithoutDiagonals())
		assert.Len(t, f.PathAStar(grid.C(0, 0), grid.C(5, 5)), 10)
	})
}

func randomGrid(seed uint64) *grid.Grid {
	rng := rand.New(rand.NewPCG(seed, 99))
	types := []grid.CellType{grid.Empty, grid.Empty, grid.Wire, grid.Water, grid.Mountain, grid.Obstacle}
	g := grid.New(10, 10)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			g.PlaceCell(x, y, types[rng.IntN(len(types))])
		}
	}
	g.PlaceCell(0, 0, grid.Empty)
	g.PlaceCell(9, 9, grid.Empty)
	return g
}

func TestCostProperties(t *testing.T) {
	from, to := grid.C(0, 0), grid.C(9, 9)
	checked := 0

	for seed := uint64(1); seed <= 60; seed++ {
		g := randomGrid(seed)
		f := New(g)
		orth := New(g, WithoutDiagonals())
		tight := New(g, WithHeuristic(Chebyshev))

		bfs := f.ShortestPathBFS(from, to)
		ucs := f.CheapestPathUCS(from, to)
		astar4 := orth.PathAStar(from, to)

		if len(bfs) == 0 {
			assert.Empty(t, ucs, "seed %d", seed)
			assert.Empty(t, astar4, "seed %d", seed)
			continue
		}
		checked++
		require.NotEmpty(t, ucs, "seed %d", seed)
		require.NotEmpty(t, astar4, "seed %d", seed)

		ucsCost := f.PathCost(ucs)
		assert.LessOrEqual(t, ucsCost, len(bfs)*MoveCost(grid.Water), "seed %d", seed)
		assert.LessOrEqual(t, ucsCost, f.PathCost(astar4), "seed %d", seed)
		assert.LessOrEqual(t, len(bfs), len(ucs), "seed %d", seed)

		// eight-way search can only do better than four-way
		astar8 := f.PathAStar(from, to)
		assert.LessOrEqual(t, f.PathCost(astar8), ucsCost, "seed %d", seed)
		assert.Equal(t, f.PathCost(astar8), f.PathCost(tight.PathAStar(from, to)), "seed %d", seed)
	}
	assert.Positive(t, checked, "no seed produced a reachable goal")
}

func TestReachableHouses(t *testing.T) {
	g := grid.New(6, 3)
	g.AddPowerSource(0, 1, 0, "")
	g.AddHouse(2, 0)
	g.AddHouse(5, 1)
	for y := 0; y < 3; y++ {
		g.PlaceCell(4, y, grid.Water)
	}
	f := New(g)

	assert.Equal(t, []grid.Coord{grid.C(2, 0)}, f.ReachableHouses(grid.C(0, 1)))
	assert.Nil(t, f.ReachableHouses(grid.C(7, 7)))

	g.PlaceCell(4, 1, grid.Wire)
	assert.ElementsMatch(t, []grid.Coord{grid.C(2, 0), grid.C(5, 1)}, f.ReachableHouses(grid.C(0, 1)))
}

func TestIsHouseIsolated(t *testing.T) {
	g := walled(t)
	g.AddPowerSource(0, 0, 0, "")
	g.AddHouse(1, 4)
	g.AddHouse(4, 4)
	f := New(g)

	assert.False(t, f.IsHouseIsolated(grid.C(1, 4)))
	assert.True(t, f.IsHouseIsolated(grid.C(4, 4)))

	assert.True(t, New(grid.New(2, 2)).IsHouseIsolated(grid.C(1, 1)), "no sources")
}

func TestConnectionCost(t *testing.T) {
	g := grid.New(3, 1)
	g.PlaceCell(1, 0, grid.Water)
	f := New(g)

	assert.Equal(t, 40, f.ConnectionCost(grid.C(0, 0), grid.C(2, 0)))
	assert.Equal(t, 0, f.ConnectionCost(grid.C(1, 0), grid.C(1, 0)))
	assert.Equal(t, 40, f.WiringCost([]grid.Coord{grid.C(1, 0), grid.C(2, 0)}))
	assert.Equal(t, 10, f.WiringCost([]grid.Coord{grid.C(2, 0), grid.C(7, 7)}), "off-board cells are free")

	blocked := New(walled(t))
	assert.Equal(t, NoPath, blocked.ConnectionCost(grid.C(0, 0), grid.C(4, 0)))
}
