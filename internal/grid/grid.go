// Package grid holds the power network board: a fixed matrix of cells with
// their damage state machine, plus the house and power-source registries.
package grid

import (
	"slices"

	"github.com/zyedidia/generic/mapset"
)

// Grid is the board for one level session.
// Cells are stored in row-major order: index = y*W + x.
type Grid struct {
	W int
	H int

	cells   []Cell
	houses  []*Household
	sources []*Generator
	damaged mapset.Set[Coord]
}

// New allocates a w*h grid of empty cells.
func New(w, h int) *Grid {
	g := &Grid{
		W:     max(0, w),
		H:     max(0, h),
		cells: make([]Cell, max(0, w)*max(0, h)),
	}
	g.Clear()
	return g
}

func (g *Grid) index(x, y int) int {
	return y*g.W + x
}

// InBounds returns true if the coordinate is on the board.
func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.W && c.Y >= 0 && c.Y < g.H
}

// Cell returns the cell at (x, y). The second result is false when the
// coordinate is off the board.
func (g *Grid) Cell(x, y int) (*Cell, bool) {
	if !g.InBounds(C(x, y)) {
		return nil, false
	}
	return &g.cells[g.index(x, y)], true
}

// At is Cell for a Coord.
func (g *Grid) At(c Coord) (*Cell, bool) {
	return g.Cell(c.X, c.Y)
}

// View returns a snapshot of the cell at (x, y).
func (g *Grid) View(x, y int) (CellView, bool) {
	c, ok := g.Cell(x, y)
	if !ok {
		return CellView{}, false
	}
	return c.View(), true
}

// Each calls fn for every cell, row by row.
func (g *Grid) Each(fn func(c *Cell)) {
	for i := range g.cells {
		fn(&g.cells[i])
	}
}

// PlaceCell replaces the cell at (x, y) with a pristine cell of type t.
// Houses and power sources are registered; whatever entity stood there
// before is dropped.
func (g *Grid) PlaceCell(x, y int, t CellType) bool {
	switch t {
	case House:
		_, ok := g.AddHouse(x, y)
		return ok
	case PowerSource:
		_, ok := g.AddPowerSource(x, y, DefaultOutputPower, SourceGeneral)
		return ok
	}
	return g.place(x, y, t)
}

func (g *Grid) place(x, y int, t CellType) bool {
	c, ok := g.Cell(x, y)
	if !ok || !t.Valid() {
		return false
	}
	pos := C(x, y)
	g.unregister(pos)
	g.damaged.Remove(pos)
	c.reset(t)
	return true
}

func (g *Grid) unregister(pos Coord) {
	g.houses = slices.DeleteFunc(g.houses, func(h *Household) bool { return h.Pos == pos })
	g.sources = slices.DeleteFunc(g.sources, func(s *Generator) bool { return s.Pos == pos })
}

// AddHouse places a house cell and registers its Household.
func (g *Grid) AddHouse(x, y int) (*Household, bool) {
	if !g.place(x, y, House) {
		return nil, false
	}
	h := NewHousehold(C(x, y))
	g.houses = append(g.houses, h)
	return h, true
}

// AddPowerSource places a source cell and registers its PowerSource entity.
func (g *Grid) AddPowerSource(x, y, output int, kind SourceKind) (*Generator, bool) {
	if !g.place(x, y, PowerSource) {
		return nil, false
	}
	s := NewGenerator(C(x, y), output, kind)
	c, _ := g.Cell(x, y)
	c.SetOutputPower(s.Output())
	g.sources = append(g.sources, s)
	return s, true
}

// HouseAt returns the house registered at c.
func (g *Grid) HouseAt(c Coord) (*Household, bool) {
	for _, h := range g.houses {
		if h.Pos == c {
			return h, true
		}
	}
	return nil, false
}

// SourceAt returns the power source registered at c.
func (g *Grid) SourceAt(c Coord) (*Generator, bool) {
	for _, s := range g.sources {
		if s.Pos == c {
			return s, true
		}
	}
	return nil, false
}

// Houses returns the registered houses in registration order.
func (g *Grid) Houses() []*Household {
	return slices.Clone(g.houses)
}

// Sources returns the registered power sources in registration order.
func (g *Grid) Sources() []*Generator {
	return slices.Clone(g.sources)
}

// Clear resets every cell to empty and empties the registries.
func (g *Grid) Clear() {
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			g.cells[g.index(x, y)] = newCell(x, y, Empty)
		}
	}
	g.houses = nil
	g.sources = nil
	g.damaged = mapset.New[Coord]()
}

// CountPoweredHouses counts houses whose cell is powered and undamaged.
func (g *Grid) CountPoweredHouses() int {
	n := 0
	for _, h := range g.houses {
		if c, ok := g.At(h.Pos); ok && c.IsPowered() {
			n++
		}
	}
	return n
}

// CountType counts cells of type t.
func (g *Grid) CountType(t CellType) int {
	n := 0
	for i := range g.cells {
		if g.cells[i].kind == t {
			n++
		}
	}
	return n
}

// MarkDamaged adds c to the damaged-cell set.
func (g *Grid) MarkDamaged(c Coord) {
	if g.InBounds(c) {
		g.damaged.Put(c)
	}
}

// Unmark removes c from the damaged-cell set.
func (g *Grid) Unmark(c Coord) {
	g.damaged.Remove(c)
}

// IsMarkedDamaged reports whether c is in the damaged-cell set.
func (g *Grid) IsMarkedDamaged(c Coord) bool {
	return g.damaged.Has(c)
}

// DamagedCount returns the size of the damaged-cell set.
func (g *Grid) DamagedCount() int {
	return g.damaged.Size()
}

// DamagedCells returns a row-ordered snapshot of the damaged-cell set.
func (g *Grid) DamagedCells() []Coord {
	out := make([]Coord, 0, g.damaged.Size())
	g.damaged.Each(func(c Coord) {
		out = append(out, c)
	})
	slices.SortFunc(out, func(a, b Coord) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	return out
}

// DamageRepairCost prices a full repair of every damaged cell at 100 per level.
func (g *Grid) DamageRepairCost() int {
	total := 0
	g.damaged.Each(func(c Coord) {
		if cell, ok := g.At(c); ok {
			total += cell.DamageLevel() * 100
		}
	})
	return total
}

// UpdateEffects advances every cell's special-effect timer by one day.
func (g *Grid) UpdateEffects() {
	for i := range g.cells {
		g.cells[i].tickEffect()
	}
}

// Neighbors4 returns the in-bounds orthogonal neighbours of c in
// propagation order.
func (g *Grid) Neighbors4(c Coord) []Coord {
	out := make([]Coord, 0, 4)
	for _, d := range Orthogonal {
		if n := c.Add(d[0], d[1]); g.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// Neighbors8 returns the in-bounds orthogonal and diagonal neighbours of c.
func (g *Grid) Neighbors8(c Coord) []Coord {
	out := g.Neighbors4(c)
	for _, d := range Diagonal {
		if n := c.Add(d[0], d[1]); g.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	out := &Grid{
		W:       g.W,
		H:       g.H,
		cells:   slices.Clone(g.cells),
		damaged: mapset.New[Coord](),
	}
	for _, h := range g.houses {
		hc := *h
		out.houses = append(out.houses, &hc)
	}
	for _, s := range g.sources {
		sc := *s
		out.sources = append(out.sources, &sc)
	}
	g.damaged.Each(func(c Coord) {
		out.damaged.Put(c)
	})
	return out
}
