package grid

import "fmt"

// Coord is a cell position. X grows to the right, Y grows downward.
type Coord struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// C is a convenience constructor for Coord.
func C(x, y int) Coord {
	return Coord{X: x, Y: y}
}

// String returns a string representation of the coordinate.
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Add returns a new Coord offset by (dx, dy).
func (c Coord) Add(dx, dy int) Coord {
	return Coord{X: c.X + dx, Y: c.Y + dy}
}

// Manhattan returns the Manhattan distance to another coordinate.
func (c Coord) Manhattan(other Coord) int {
	return abs(c.X-other.X) + abs(c.Y-other.Y)
}

// Chebyshev returns the king-move distance to another coordinate.
func (c Coord) Chebyshev(other Coord) int {
	return max(abs(c.X-other.X), abs(c.Y-other.Y))
}

// Less orders coordinates row by row.
func (c Coord) Less(other Coord) bool {
	if c.Y != other.Y {
		return c.Y < other.Y
	}
	return c.X < other.X
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Orthogonal holds the four orthogonal offsets in propagation order:
// down, right, up, left.
var Orthogonal = [4][2]int{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}

// Diagonal holds the four diagonal offsets.
var Diagonal = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
