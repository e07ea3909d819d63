// Package levels describes level layouts, loads them from YAML files and
// builds grids from them. This package depends on grid but grid does not
// depend on levels.
package levels

import (
	"fmt"
	"math/rand/v2"

	"github.com/vovakirdan/powergrid/internal/core"
	"github.com/vovakirdan/powergrid/internal/grid"
)

// Descriptor is a complete level definition.
type Descriptor struct {
	ID          string       `yaml:"id"`
	Number      int          `yaml:"number,omitempty"` // position in the campaign, 0 for free-standing levels
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	Size        Size         `yaml:"size"`
	Sources     []SourceSpec `yaml:"sources,omitempty"`
	Houses      []grid.Coord `yaml:"houses,omitempty"`
	Regions     []Region     `yaml:"regions,omitempty"`
	Cells       []CellSpec   `yaml:"cells,omitempty"`
	Random      *RandomSpec  `yaml:"random,omitempty"`

	FilePath string `yaml:"-"`
}

// Size is the board size.
type Size struct {
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// SourceSpec places a power source. Output 0 selects the default output.
type SourceSpec struct {
	X      int             `yaml:"x"`
	Y      int             `yaml:"y"`
	Output int             `yaml:"output,omitempty"`
	Kind   grid.SourceKind `yaml:"kind,omitempty"`
}

// Region fills a rectangle with one terrain type. Step > 1 fills only every
// step-th column and row, starting at the top-left corner.
type Region struct {
	Type grid.CellType `yaml:"type"`
	X    int           `yaml:"x"`
	Y    int           `yaml:"y"`
	W    int           `yaml:"w"`
	H    int           `yaml:"h"`
	Step int           `yaml:"step,omitempty"`
}

// Rect returns the region's rectangle.
func (r Region) Rect() core.Rect {
	return core.NewRect(r.X, r.Y, r.W, r.H)
}

// CellSpec places a single cell.
type CellSpec struct {
	X    int           `yaml:"x"`
	Y    int           `yaml:"y"`
	Type grid.CellType `yaml:"type"`
}

// RandomSpec scatters houses and terrain with the level's RNG.
type RandomSpec struct {
	Houses       int             `yaml:"houses,omitempty"`
	HouseArea    *Area           `yaml:"house_area,omitempty"` // nil means the whole board
	Terrain      int             `yaml:"terrain,omitempty"`
	TerrainTypes []grid.CellType `yaml:"terrain_types,omitempty"`
}

// Area is a rectangle in level files.
type Area struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// Title returns "N. Name" for campaign levels and the name otherwise.
func (d Descriptor) Title() string {
	if d.Number > 0 {
		return fmt.Sprintf("%d. %s", d.Number, d.Name)
	}
	return d.Name
}

// Validate checks what the schema cannot: every coordinate must lie on the
// board and placed cells must be terrain or infrastructure without a
// registry entity.
func (d Descriptor) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("level has no id")
	}
	if d.Size.W <= 0 || d.Size.H <= 0 {
		return fmt.Errorf("level %s: size must be positive, got %dx%d", d.ID, d.Size.W, d.Size.H)
	}

	bounds := core.NewRect(0, 0, d.Size.W, d.Size.H)
	check := func(what string, x, y int) error {
		if !bounds.Contains(x, y) {
			return fmt.Errorf("level %s: %s at (%d,%d) is outside the %dx%d board", d.ID, what, x, y, d.Size.W, d.Size.H)
		}
		return nil
	}

	for _, s := range d.Sources {
		if err := check("source", s.X, s.Y); err != nil {
			return err
		}
		if _, err := grid.ParseSourceKind(string(s.Kind)); err != nil {
			return fmt.Errorf("level %s: %w", d.ID, err)
		}
	}
	for _, h := range d.Houses {
		if err := check("house", h.X, h.Y); err != nil {
			return err
		}
	}
	for _, r := range d.Regions {
		if err := placeable(d.ID, r.Type); err != nil {
			return err
		}
		if err := check("region", r.X, r.Y); err != nil {
			return err
		}
		if err := check("region", r.X+r.W-1, r.Y+r.H-1); err != nil {
			return err
		}
	}
	for _, c := range d.Cells {
		if err := placeable(d.ID, c.Type); err != nil {
			return err
		}
		if err := check("cell", c.X, c.Y); err != nil {
			return err
		}
	}
	if r := d.Random; r != nil {
		if a := r.HouseArea; a != nil {
			if err := check("house area", a.X, a.Y); err != nil {
				return err
			}
			if err := check("house area", a.X+a.W-1, a.Y+a.H-1); err != nil {
				return err
			}
		}
		if r.Terrain > 0 && len(r.TerrainTypes) == 0 {
			return fmt.Errorf("level %s: random terrain needs terrain_types", d.ID)
		}
		for _, t := range r.TerrainTypes {
			if err := placeable(d.ID, t); err != nil {
				return err
			}
		}
	}
	return nil
}

func placeable(id string, t grid.CellType) error {
	switch t {
	case grid.House, grid.PowerSource:
		return fmt.Errorf("level %s: %s cells must be listed under houses or sources", id, t)
	}
	if !t.Valid() {
		return fmt.Errorf("level %s: invalid cell type %d", id, uint8(t))
	}
	return nil
}

// Build creates a fresh grid for the level. Layers are applied in order:
// regions, single cells, sources, houses, then the random scatter, which
// only ever lands on empty cells. rng may be nil when the level has no
// random section.
func (d Descriptor) Build(rng *rand.Rand) (*grid.Grid, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	g := grid.New(d.Size.W, d.Size.H)
	d.BuildInto(g, rng)
	return g, nil
}

// BuildInto clears g and lays the level out on it. The descriptor must be
// valid and sized to g.
func (d Descriptor) BuildInto(g *grid.Grid, rng *rand.Rand) {
	g.Clear()

	for _, r := range d.Regions {
		step := max(1, r.Step)
		r.Rect().Clip(g.W, g.H).Each(func(x, y int) {
			if (x-r.X)%step == 0 && (y-r.Y)%step == 0 {
				g.PlaceCell(x, y, r.Type)
			}
		})
	}
	for _, c := range d.Cells {
		g.PlaceCell(c.X, c.Y, c.Type)
	}
	for _, s := range d.Sources {
		g.AddPowerSource(s.X, s.Y, s.Output, s.Kind)
	}
	for _, h := range d.Houses {
		g.AddHouse(h.X, h.Y)
	}

	if d.Random != nil && rng != nil {
		d.Random.scatter(g, rng)
	}
}

func (r *RandomSpec) scatter(g *grid.Grid, rng *rand.Rand) {
	area := core.NewRect(0, 0, g.W, g.H)
	if r.HouseArea != nil {
		area = core.NewRect(r.HouseArea.X, r.HouseArea.Y, r.HouseArea.W, r.HouseArea.H).Clip(g.W, g.H)
	}

	for i := 0; i < r.Houses; i++ {
		if c, ok := randomEmpty(g, area, rng); ok {
			g.AddHouse(c.X, c.Y)
		}
	}

	if len(r.TerrainTypes) == 0 {
		return
	}
	full := core.NewRect(0, 0, g.W, g.H)
	for i := 0; i < r.Terrain; i++ {
		c, ok := randomEmpty(g, full, rng)
		if !ok {
			break
		}
		g.PlaceCell(c.X, c.Y, r.TerrainTypes[rng.IntN(len(r.TerrainTypes))])
	}
}

// randomEmpty draws cells inside area until it finds an empty one, giving
// up after a bounded number of attempts.
func randomEmpty(g *grid.Grid, area core.Rect, rng *rand.Rand) (grid.Coord, bool) {
	if area.Empty() {
		return grid.Coord{}, false
	}
	for attempt := 0; attempt < area.W*area.H*4; attempt++ {
		x := area.X + rng.IntN(area.W)
		y := area.Y + rng.IntN(area.H)
		if cell, ok := g.Cell(x, y); ok && cell.Type() == grid.Empty {
			return grid.C(x, y), true
		}
	}
	return grid.Coord{}, false
}
