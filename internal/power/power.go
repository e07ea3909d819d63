// Package power distributes electricity over a grid by flood fill and
// computes the network's demand and supply.
package power

import (
	"github.com/zyedidia/generic/queue"

	"github.com/vovakirdan/powergrid/internal/grid"
)

// Per-cell demand of powered consumers.
const (
	HouseDemand       = 10
	FactoryDemand     = 50
	TransformerDemand = 5
)

// Reset clears the powered flag on every cell and switches every house off.
// Spread never clears stale state, so callers reset before re-running it.
func Reset(g *grid.Grid) {
	g.Each(func(c *grid.Cell) {
		c.SetPowered(false)
	})
	for _, h := range g.Houses() {
		h.SetPowered(false)
	}
}

// Spread floods power outward from (x, y) over orthogonal neighbours,
// traversing wires, transformers and houses. Every visited cell is powered
// and houses on visited cells are switched on. Factories bordering the
// flooded network are powered as end consumers but never traversed.
func Spread(g *grid.Grid, x, y int) {
	start, ok := g.Cell(x, y)
	if !ok {
		return
	}

	visited := make([]bool, g.W*g.H)
	visited[y*g.W+x] = true

	q := queue.New[*grid.Cell]()
	q.Enqueue(start)

	for !q.Empty() {
		cur := q.Dequeue()
		cur.SetPowered(true)
		if cur.Type() == grid.House {
			if h, ok := g.HouseAt(cur.Pos()); ok {
				h.SetPowered(true)
			}
		}

		for _, n := range g.Neighbors4(cur.Pos()) {
			idx := n.Y*g.W + n.X
			if visited[idx] {
				continue
			}
			next, _ := g.At(n)
			switch {
			case next.Conducts():
				visited[idx] = true
				q.Enqueue(next)
			case next.Type() == grid.Factory:
				visited[idx] = true
				next.SetPowered(true)
			}
		}
	}
}

// Distribute resets the grid and spreads power from every active, intact
// source. It returns the number of powered houses afterwards.
func Distribute(g *grid.Grid) int {
	Reset(g)
	for _, s := range g.Sources() {
		if !sourceOnline(g, s) {
			continue
		}
		Spread(g, s.Pos.X, s.Pos.Y)
	}
	return g.CountPoweredHouses()
}

func sourceOnline(g *grid.Grid, s *grid.Generator) bool {
	if !s.Active() {
		return false
	}
	c, ok := g.At(s.Pos)
	return ok && c.Type() == grid.PowerSource && !c.Damaged()
}

// Demand sums the consumption of powered houses, factories and transformers.
func Demand(g *grid.Grid) int {
	total := 0
	g.Each(func(c *grid.Cell) {
		if !c.IsPowered() {
			return
		}
		switch c.Type() {
		case grid.House:
			total += HouseDemand
		case grid.Factory:
			total += FactoryDemand
		case grid.Transformer:
			total += TransformerDemand
		}
	})
	return total
}

// Supply sums the output of active, intact sources.
func Supply(g *grid.Grid) int {
	total := 0
	for _, s := range g.Sources() {
		if sourceOnline(g, s) {
			total += s.Output()
		}
	}
	return total
}

// Efficiency is supply divided by demand, 0 when there is no demand.
func Efficiency(supply, demand int) float64 {
	if demand == 0 {
		return 0
	}
	return float64(supply) / float64(demand)
}

// BalanceLoad spreads demand over the online sources in registration order,
// filling each before moving on. Offline sources carry no load. It returns
// the demand no source could take.
func BalanceLoad(g *grid.Grid, demand int) int {
	remaining := max(0, demand)
	for _, s := range g.Sources() {
		s.RemoveLoad(s.Load())
		if !sourceOnline(g, s) || remaining == 0 {
			continue
		}
		take := min(remaining, s.Available())
		if s.AddLoad(take) {
			remaining -= take
		}
	}
	return remaining
}
