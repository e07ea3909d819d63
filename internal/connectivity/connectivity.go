// Package connectivity answers structural questions about the conductive
// network: is it one piece, which houses are cut off, where it is broken.
package connectivity

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/vovakirdan/powergrid/internal/grid"
)

// traversable is the conductive graph used for component analysis:
// the propagation whitelist plus power-source cells.
func traversable(c *grid.Cell) bool {
	return c.Conducts() || c.Type() == grid.PowerSource
}

// Components returns the conductive components rooted at power sources,
// one per source not already swallowed by an earlier component.
func Components(g *grid.Grid) [][]grid.Coord {
	visited := mapset.New[grid.Coord]()
	var comps [][]grid.Coord

	for _, s := range g.Sources() {
		if visited.Has(s.Pos) {
			continue
		}
		comps = append(comps, walk(g, s.Pos, visited))
	}
	return comps
}

// walk is an iterative depth-first traversal from start.
func walk(g *grid.Grid, start grid.Coord, visited mapset.Set[grid.Coord]) []grid.Coord {
	var comp []grid.Coord
	stack := []grid.Coord{start}
	visited.Put(start)

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		comp = append(comp, cur)

		for _, n := range g.Neighbors4(cur) {
			if visited.Has(n) {
				continue
			}
			if c, _ := g.At(n); traversable(c) {
				visited.Put(n)
				stack = append(stack, n)
			}
		}
	}
	return comp
}

// IsGridConnected reports whether all power sources share one conductive
// component. A grid without sources counts as connected.
func IsGridConnected(g *grid.Grid) bool {
	return len(Components(g)) <= 1
}

// IsolatedHouses returns the houses outside every source component.
func IsolatedHouses(g *grid.Grid) []grid.Coord {
	reached := mapset.New[grid.Coord]()
	for _, comp := range Components(g) {
		for _, c := range comp {
			reached.Put(c)
		}
	}

	var out []grid.Coord
	for _, h := range g.Houses() {
		if !reached.Has(h.Pos) {
			out = append(out, h.Pos)
		}
	}
	return out
}

// DetectShortCircuits finds broken-wire cells that touch conductive cells
// of a single component on two or more sides: spots where one repair would
// close a loop inside an already connected network.
func DetectShortCircuits(g *grid.Grid) []grid.Coord {
	owner := map[grid.Coord]int{}
	for i, comp := range Components(g) {
		for _, c := range comp {
			owner[c] = i
		}
	}

	var out []grid.Coord
	g.Each(func(c *grid.Cell) {
		if c.Type() != grid.BrokenWire {
			return
		}
		touches := map[int]int{}
		for _, n := range g.Neighbors4(c.Pos()) {
			if id, ok := owner[n]; ok {
				touches[id]++
			}
		}
		for _, count := range touches {
			if count >= 2 {
				out = append(out, c.Pos())
				return
			}
		}
	})
	return out
}
