package levels

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"

	"github.com/vovakirdan/powergrid/internal/grid"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// CampaignLength is the number of built-in campaign levels.
const CampaignLength = 5

const maxCustomHouses = 20

var (
	builtinOnce sync.Once
	builtin     []Descriptor
	builtinErr  error
)

// Builtin returns the campaign levels ordered by number.
func Builtin() ([]Descriptor, error) {
	builtinOnce.Do(func() {
		builtin, builtinErr = loadFS(builtinFS, "builtin")
		sort.Slice(builtin, func(i, j int) bool {
			return builtin[i].Number < builtin[j].Number
		})
	})
	return builtin, builtinErr
}

func loadFS(fsys fs.FS, dir string) ([]Descriptor, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("levels: read %s: %w", dir, err)
	}

	var out []Descriptor
	for _, e := range entries {
		if e.IsDir() || !isSupportedExtension(path.Ext(e.Name())) {
			continue
		}
		p := path.Join(dir, e.Name())
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("levels: read %s: %w", p, err)
		}
		d, err := ParseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("levels: parse %s: %w", p, err)
		}
		d.FilePath = p
		out = append(out, d)
	}
	return out, nil
}

// Campaign returns campaign level n. Numbers past the built-in campaign
// produce a custom level.
func Campaign(n int) (Descriptor, error) {
	if n < 1 {
		return Descriptor{}, fmt.Errorf("levels: level number must be positive, got %d", n)
	}
	all, err := Builtin()
	if err != nil {
		return Descriptor{}, err
	}
	for _, d := range all {
		if d.Number == n {
			return d, nil
		}
	}
	return Custom(n), nil
}

// DefaultSize is the board size of campaign and custom levels.
var DefaultSize = Size{W: 15, H: 15}

// Custom describes an open level with one source in the corner and
// min(2n, 20) houses scattered at random.
func Custom(n int) Descriptor {
	return Descriptor{
		ID:          fmt.Sprintf("custom%02d", n),
		Number:      n,
		Name:        fmt.Sprintf("Custom %d", n),
		Description: "Randomly scattered houses.",
		Size:        DefaultSize,
		Sources:     []SourceSpec{{X: 0, Y: 0}},
		Random:      &RandomSpec{Houses: min(2*n, maxCustomHouses)},
	}
}

// HouseCount returns the number of houses a built grid will carry, counting
// random houses as placed.
func (d Descriptor) HouseCount() int {
	n := len(d.Houses)
	if d.Random != nil {
		n += d.Random.Houses
	}
	return n
}

// TerrainTypes lists the cell types a level may place directly.
func TerrainTypes() []grid.CellType {
	var out []grid.CellType
	for _, t := range grid.AllCellTypes() {
		if placeable("", t) == nil {
			out = append(out, t)
		}
	}
	return out
}
