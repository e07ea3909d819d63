package grid

import "fmt"

// SourceKind categorises a power source.
type SourceKind string

const (
	SourceGeneral SourceKind = "general"
	SourceSolar   SourceKind = "solar"
	SourceWind    SourceKind = "wind"
	SourceHydro   SourceKind = "hydro"
	SourceCoal    SourceKind = "coal"
	SourceNuclear SourceKind = "nuclear"
)

// ParseSourceKind validates a kind name; empty means general.
func ParseSourceKind(s string) (SourceKind, error) {
	switch k := SourceKind(s); k {
	case "":
		return SourceGeneral, nil
	case SourceGeneral, SourceSolar, SourceWind, SourceHydro, SourceCoal, SourceNuclear:
		return k, nil
	}
	return SourceGeneral, fmt.Errorf("unknown source kind %q", s)
}

// Generator is a power plant registered at a source cell. Its load
// bookkeeping is independent of grid propagation, which only looks at
// Active and the cell's damage.
type Generator struct {
	Pos      Coord
	Kind     SourceKind
	output   int
	capacity int
	load     int
	active   bool
}

// NewGenerator creates an active source; output <= 0 selects DefaultOutputPower.
func NewGenerator(pos Coord, output int, kind SourceKind) *Generator {
	if output <= 0 {
		output = DefaultOutputPower
	}
	if kind == "" {
		kind = SourceGeneral
	}
	return &Generator{
		Pos:      pos,
		Kind:     kind,
		output:   output,
		capacity: output,
		active:   true,
	}
}

// Output returns the rated output power.
func (s *Generator) Output() int { return s.output }

// Capacity returns the maximum load.
func (s *Generator) Capacity() int { return s.capacity }

// Load returns the current load.
func (s *Generator) Load() int { return s.load }

// Active reports whether the source is generating.
func (s *Generator) Active() bool { return s.active }

// Available returns the unused capacity.
func (s *Generator) Available() int { return s.capacity - s.load }

// SetActive switches the source on or off; switching off sheds all load.
func (s *Generator) SetActive(active bool) {
	s.active = active
	if !active {
		s.load = 0
	}
}

// AddLoad reserves n units and reports whether the reservation fit.
func (s *Generator) AddLoad(n int) bool {
	if !s.active || n < 0 || s.load+n > s.capacity {
		return false
	}
	s.load += n
	return true
}

// RemoveLoad releases n units, flooring at zero.
func (s *Generator) RemoveLoad(n int) {
	s.load = max(0, s.load-n)
}

// Upgrade raises capacity by n; output follows capacity.
func (s *Generator) Upgrade(n int) {
	if n <= 0 {
		return
	}
	s.capacity += n
	s.output = s.capacity
}

// Maintain clears the load and reactivates the source.
func (s *Generator) Maintain() {
	s.load = 0
	s.active = true
}

// Utilization returns the load as a percentage of capacity.
func (s *Generator) Utilization() float64 {
	if s.capacity == 0 {
		return 0
	}
	return float64(s.load) / float64(s.capacity) * 100
}

// CanProvide reports whether the source can take on n more units.
func (s *Generator) CanProvide(n int) bool {
	return s.active && s.Available() >= n
}
