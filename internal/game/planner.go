package game

import (
	"github.com/vovakirdan/powergrid/internal/grid"
	"github.com/vovakirdan/powergrid/internal/pathfind"
)

// wireable reports whether a wiring route may run through the cell: either
// the cell is intact infrastructure that already conducts, or it is empty
// ground a wire can be laid on.
func wireable(c *grid.Cell) bool {
	if c.Damaged() {
		return false
	}
	switch c.Type() {
	case grid.Empty, grid.Wire, grid.Transformer, grid.House, grid.PowerSource:
		return true
	}
	return false
}

// wiringPlan returns the empty cells to wire so that house joins the network
// of the source with the cheapest route. Water, mountains, factories and
// damaged cells are walked around. ok is false when no source can reach it.
func (c *Controller) wiringPlan(house grid.Coord) (cells []grid.Coord, ok bool) {
	plan := c.g.Clone()
	plan.Each(func(cell *grid.Cell) {
		if !wireable(cell) {
			p := cell.Pos()
			plan.PlaceCell(p.X, p.Y, grid.Obstacle)
		}
	})

	f := pathfind.New(plan)
	best := pathfind.NoPath
	for _, s := range c.g.Sources() {
		path := f.CheapestPathUCS(s.Pos, house)
		if len(path) == 0 {
			continue
		}
		if cost := f.PathCost(path); cost < best {
			best = cost
			cells = cells[:0]
			for _, p := range path {
				if cell, _ := plan.At(p); cell.Type() == grid.Empty {
					cells = append(cells, p)
				}
			}
			ok = true
		}
	}
	return cells, ok
}

// ConnectHouse lays wire along the cheapest buildable route from a source
// to the house at h. The whole route is paid for up front; nothing is built
// when the player cannot afford all of it. It returns the number of wires
// laid and whether the house is now on a route to a source.
func (c *Controller) ConnectHouse(h grid.Coord) (laid int, ok bool) {
	c.do(func() {
		if c.outcome != Running {
			return
		}
		if _, isHouse := c.g.HouseAt(h); !isHouse {
			return
		}
		cells, found := c.wiringPlan(h)
		if !found {
			return
		}
		cost := len(cells) * c.sim.Costs.Wire
		if c.money < cost {
			return
		}
		ok = true
		if len(cells) == 0 {
			return
		}
		for _, p := range cells {
			c.g.PlaceCell(p.X, p.Y, grid.Wire)
		}
		laid = len(cells)
		c.money -= cost
		c.refresh()
		c.emit(MoneyChanged{Money: c.money})
		c.logger.Debug("house connected", "house", h, "wires", laid, "cost", cost)
	})
	return laid, ok
}

// ConnectAll connects every unpowered house in registration order. Houses
// the player cannot afford are skipped. It returns the total wires laid.
func (c *Controller) ConnectAll() int {
	total := 0
	for _, h := range c.Snapshot().Houses() {
		if h.Powered() {
			continue
		}
		laid, _ := c.ConnectHouse(h.Pos)
		total += laid
	}
	return total
}
