package grid

import "fmt"

// CellType is the terrain or infrastructure occupying a cell.
type CellType uint8

const (
	Empty CellType = iota
	Wire
	Transformer
	House
	PowerSource
	Factory
	Water
	Mountain
	Obstacle
	Rubble
	RockFall
	Flooded
	Crack
	BrokenWire

	numCellTypes
)

var cellTypeNames = [numCellTypes]string{
	Empty:       "empty",
	Wire:        "wire",
	Transformer: "transformer",
	House:       "house",
	PowerSource: "source",
	Factory:     "factory",
	Water:       "water",
	Mountain:    "mountain",
	Obstacle:    "obstacle",
	Rubble:      "rubble",
	RockFall:    "rockfall",
	Flooded:     "flooded",
	Crack:       "crack",
	BrokenWire:  "brokenwire",
}

// Valid reports whether t is one of the defined cell types.
func (t CellType) Valid() bool {
	return t < numCellTypes
}

// String returns the stable lowercase name used in level files and reports.
func (t CellType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("celltype(%d)", uint8(t))
	}
	return cellTypeNames[t]
}

// ParseCellType resolves a name produced by String.
func ParseCellType(s string) (CellType, error) {
	for i, name := range cellTypeNames {
		if name == s {
			return CellType(i), nil
		}
	}
	return Empty, fmt.Errorf("unknown cell type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t CellType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid cell type %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *CellType) UnmarshalText(b []byte) error {
	parsed, err := ParseCellType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// AllCellTypes returns every defined cell type in declaration order.
func AllCellTypes() []CellType {
	out := make([]CellType, 0, numCellTypes)
	for t := Empty; t < numCellTypes; t++ {
		out = append(out, t)
	}
	return out
}

// BaseResistance is the resistance a pristine cell of this type starts with.
func (t CellType) BaseResistance() int {
	switch t {
	case Water:
		return 2
	case Mountain:
		return 3
	case Obstacle:
		return 100
	case Rubble:
		return 50
	case RockFall:
		return 40
	case Flooded:
		return 5
	case Crack:
		return 10
	case Empty, Wire, Transformer, House, PowerSource, Factory, BrokenWire:
		return 1
	}
	return 1
}

// Conductive reports whether power flood fill traverses this type.
func (t CellType) Conductive() bool {
	switch t {
	case Wire, Transformer, House:
		return true
	}
	return false
}

// Infrastructure reports whether the type is a built structure that
// disasters damage and crews repair.
func (t CellType) Infrastructure() bool {
	switch t {
	case Wire, Transformer, House, PowerSource, Factory:
		return true
	}
	return false
}

// Blocking reports whether the terrain itself stops movement.
func (t CellType) Blocking() bool {
	switch t {
	case Obstacle, Mountain, Rubble, RockFall:
		return true
	}
	return false
}
