package core

// Color is a foreground colour for a screen cell.
// Values map to ANSI 256-colour codes in the platform layer.
type Color uint8

// Palette used by the grid renderer and HUD.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightCyan
	ColorOrange
	ColorBrown
	ColorGray
	ColorDarkGray
)
