// Package pathfind searches the grid graph: unweighted BFS, uniform-cost
// search over terrain costs, and A* with diagonal moves. It also answers
// the derived questions the game asks: which houses a source can reach,
// whether a house is isolated, and what a connection would cost.
package pathfind

import (
	"math"

	"github.com/zyedidia/generic/heap"
	"github.com/zyedidia/generic/mapset"
	"github.com/zyedidia/generic/queue"

	"github.com/vovakirdan/powergrid/internal/grid"
)

// NoPath is the connection cost reported when no route exists.
const NoPath = math.MaxInt

// WireCost is the price of laying one wire segment on plain ground.
const WireCost = 10

// MinMoveCost is the cheapest terrain cost in the move table.
const MinMoveCost = 5

// MoveCost is the cost of stepping onto a cell of type t.
func MoveCost(t grid.CellType) int {
	switch t {
	case grid.Empty:
		return 10
	case grid.Wire:
		return 5
	case grid.Water:
		return 30
	case grid.Mountain:
		return 20
	}
	return 10
}

// Heuristic estimates the remaining cost between two coordinates.
type Heuristic func(a, b grid.Coord) int

// Manhattan is the default A* heuristic: the Manhattan distance in cells.
// Every step costs at least MinMoveCost, so it never overestimates, even
// with diagonal moves, but it is loose and makes A* expand many nodes.
func Manhattan(a, b grid.Coord) int {
	return a.Manhattan(b)
}

// Chebyshev is the tight admissible heuristic for eight-way movement where
// a diagonal step costs the same as an orthogonal one.
func Chebyshev(a, b grid.Coord) int {
	return a.Chebyshev(b) * MinMoveCost
}

// Finder runs searches over one grid.
type Finder struct {
	g         *grid.Grid
	heuristic Heuristic
	diagonals bool
}

// Option configures a Finder.
type Option func(*Finder)

// WithHeuristic replaces the A* heuristic.
func WithHeuristic(h Heuristic) Option {
	return func(f *Finder) {
		if h != nil {
			f.heuristic = h
		}
	}
}

// WithoutDiagonals restricts A* to orthogonal moves.
func WithoutDiagonals() Option {
	return func(f *Finder) {
		f.diagonals = false
	}
}

// New creates a Finder for g.
func New(g *grid.Grid, opts ...Option) *Finder {
	f := &Finder{g: g, heuristic: Manhattan, diagonals: true}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// trivial handles the cases every search shares. It returns the answer and
// true when the search need not run.
func (f *Finder) trivial(start, goal grid.Coord) ([]grid.Coord, bool) {
	if !f.g.InBounds(start) || !f.g.InBounds(goal) {
		return nil, true
	}
	if start == goal {
		return []grid.Coord{start}, true
	}
	return nil, false
}

func (f *Finder) passable(c grid.Coord) bool {
	cell, ok := f.g.At(c)
	return ok && cell.Passable()
}

func (f *Finder) moveCost(c grid.Coord) int {
	cell, _ := f.g.At(c)
	return MoveCost(cell.Type())
}

// ShortestPathBFS finds a path with the fewest steps over passable cells.
// The result runs from just after start to goal inclusive; it is empty
// when goal is unreachable and holds only start when start equals goal.
func (f *Finder) ShortestPathBFS(start, goal grid.Coord) []grid.Coord {
	if path, done := f.trivial(start, goal); done {
		return path
	}

	parent := map[grid.Coord]grid.Coord{}
	visited := mapset.New[grid.Coord]()
	visited.Put(start)

	q := queue.New[grid.Coord]()
	q.Enqueue(start)

	for !q.Empty() {
		cur := q.Dequeue()
		if cur == goal {
			return reconstruct(parent, start, goal)
		}
		for _, n := range f.g.Neighbors4(cur) {
			if visited.Has(n) || !f.passable(n) {
				continue
			}
			visited.Put(n)
			parent[n] = cur
			q.Enqueue(n)
		}
	}
	return nil
}

type frontierItem struct {
	pos  grid.Coord
	cost int // accumulated cost
	prio int // cost plus heuristic
	seq  int // insertion order, breaks ties deterministically
}

func newFrontier() *heap.Heap[frontierItem] {
	return heap.New[frontierItem](func(a, b frontierItem) bool {
		if a.prio != b.prio {
			return a.prio < b.prio
		}
		return a.seq < b.seq
	})
}

// CheapestPathUCS finds the minimum-cost orthogonal path using the terrain
// move costs. Stale frontier entries are skipped when popped.
func (f *Finder) CheapestPathUCS(start, goal grid.Coord) []grid.Coord {
	return f.search(start, goal, false, func(grid.Coord, grid.Coord) int { return 0 })
}

// PathAStar finds a path with A*, using diagonal moves unless disabled.
// A diagonal is refused only when both orthogonal cells flanking it lie
// off the board; impassable flanks do not block the cut.
func (f *Finder) PathAStar(start, goal grid.Coord) []grid.Coord {
	return f.search(start, goal, f.diagonals, f.heuristic)
}

func (f *Finder) search(start, goal grid.Coord, diagonals bool, h Heuristic) []grid.Coord {
	if path, done := f.trivial(start, goal); done {
		return path
	}

	parent := map[grid.Coord]grid.Coord{}
	best := map[grid.Coord]int{start: 0}
	closed := mapset.New[grid.Coord]()

	seq := 0
	frontier := newFrontier()
	frontier.Push(frontierItem{pos: start, prio: h(start, goal), seq: seq})

	for frontier.Size() > 0 {
		cur, _ := frontier.Pop()
		if closed.Has(cur.pos) {
			continue
		}
		if cur.pos == goal {
			return reconstruct(parent, start, goal)
		}
		closed.Put(cur.pos)

		for _, n := range f.neighbors(cur.pos, diagonals) {
			if closed.Has(n) || !f.passable(n) {
				continue
			}
			cost := cur.cost + f.moveCost(n)
			if old, seen := best[n]; seen && old <= cost {
				continue
			}
			best[n] = cost
			parent[n] = cur.pos
			seq++
			frontier.Push(frontierItem{pos: n, cost: cost, prio: cost + h(n, goal), seq: seq})
		}
	}
	return nil
}

func (f *Finder) neighbors(c grid.Coord, diagonals bool) []grid.Coord {
	out := f.g.Neighbors4(c)
	if !diagonals {
		return out
	}
	for _, d := range grid.Diagonal {
		n := c.Add(d[0], d[1])
		if !f.g.InBounds(n) {
			continue
		}
		if !f.g.InBounds(c.Add(d[0], 0)) && !f.g.InBounds(c.Add(0, d[1])) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func reconstruct(parent map[grid.Coord]grid.Coord, start, goal grid.Coord) []grid.Coord {
	var path []grid.Coord
	for cur := goal; cur != start; cur = parent[cur] {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// PathCost sums the terrain move costs along a path.
func (f *Finder) PathCost(path []grid.Coord) int {
	total := 0
	for _, c := range path {
		if f.g.InBounds(c) {
			total += f.moveCost(c)
		}
	}
	return total
}

// ReachableHouses floods from `from` over cells that can carry power
// (wire, transformer, house, empty ground, sources) and returns every house
// cell it touches, in discovery order.
func (f *Finder) ReachableHouses(from grid.Coord) []grid.Coord {
	start, ok := f.g.At(from)
	if !ok {
		return nil
	}

	var houses []grid.Coord
	visited := mapset.New[grid.Coord]()
	visited.Put(from)
	q := queue.New[*grid.Cell]()
	q.Enqueue(start)

	for !q.Empty() {
		cur := q.Dequeue()
		if cur.Type() == grid.House {
			houses = append(houses, cur.Pos())
		}
		for _, n := range f.g.Neighbors4(cur.Pos()) {
			if visited.Has(n) {
				continue
			}
			next, _ := f.g.At(n)
			if !next.Transmits() {
				continue
			}
			visited.Put(n)
			q.Enqueue(next)
		}
	}
	return houses
}

// IsHouseIsolated reports whether no power source has a BFS path to house.
func (f *Finder) IsHouseIsolated(house grid.Coord) bool {
	for _, s := range f.g.Sources() {
		if len(f.ShortestPathBFS(s.Pos, house)) > 0 {
			return false
		}
	}
	return true
}

// ConnectionCost prices wiring the BFS route from `from` to `to` with
// WiringCost. It returns NoPath when there is no route and 0 when the
// endpoints coincide.
func (f *Finder) ConnectionCost(from, to grid.Coord) int {
	if from == to && f.g.InBounds(from) {
		return 0
	}
	path := f.ShortestPathBFS(from, to)
	if len(path) == 0 {
		return NoPath
	}
	return f.WiringCost(path)
}

// WiringCost prices laying wire along path: WireCost per cell, tripled
// across water and doubled across mountains.
func (f *Finder) WiringCost(path []grid.Coord) int {
	total := 0
	for _, c := range path {
		cell, ok := f.g.At(c)
		if !ok {
			continue
		}
		switch cell.Type() {
		case grid.Water:
			total += WireCost * 3
		case grid.Mountain:
			total += WireCost * 2
		default:
			total += WireCost
		}
	}
	return total
}
