package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/powergrid/internal/core"
	"github.com/vovakirdan/powergrid/internal/grid"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:      lipgloss.NewStyle(),
	core.ColorRed:          lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:        lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:       lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:         lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta:      lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:         lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:        lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorBrightRed:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorBrightGreen:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorBrightYellow: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorBrightCyan:   lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	core.ColorOrange:       lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorBrown:        lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
	core.ColorGray:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	core.ColorDarkGray:     lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			startColor := cell.Color

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

var cellRunes = map[grid.CellType]rune{
	grid.Empty:       '.',
	grid.Wire:        '-',
	grid.Transformer: 'T',
	grid.House:       'H',
	grid.PowerSource: 'S',
	grid.Factory:     'F',
	grid.Water:       '~',
	grid.Mountain:    '^',
	grid.Obstacle:    '#',
	grid.Rubble:      '%',
	grid.RockFall:    '*',
	grid.Flooded:     '=',
	grid.Crack:       'x',
	grid.BrokenWire:  '/',
}

// cellGlyph picks the rune and colour of a grid cell. Powered
// infrastructure is bright, damaged infrastructure is red.
func cellGlyph(v grid.CellView) (rune, core.Color) {
	r, ok := cellRunes[v.Type]
	if !ok {
		r = '?'
	}

	if v.Type.Infrastructure() && v.DamageLevel > 0 {
		return r, core.ColorBrightRed
	}

	switch v.Type {
	case grid.Empty:
		return r, core.ColorDarkGray
	case grid.Wire, grid.Transformer:
		if v.Powered {
			return r, core.ColorBrightYellow
		}
		return r, core.ColorGray
	case grid.House:
		if v.Powered {
			return r, core.ColorBrightGreen
		}
		return r, core.ColorRed
	case grid.Factory:
		if v.Powered {
			return r, core.ColorOrange
		}
		return r, core.ColorGray
	case grid.PowerSource:
		return r, core.ColorBrightCyan
	case grid.Water, grid.Flooded:
		return r, core.ColorBlue
	case grid.Mountain, grid.RockFall:
		return r, core.ColorBrown
	case grid.Rubble, grid.BrokenWire:
		return r, core.ColorRed
	}
	return r, core.ColorGray
}
