package grid

// Damage thresholds of the cell state machine.
const (
	MaxDamage         = 10
	SevereDamage      = 5 // at or above: the cell cannot hold power
	TerminalDamage    = 8 // at or above: infrastructure turns into wreckage
	ImpassableDamage  = 7 // above: the cell blocks movement
	NoTransmitDamage  = 5 // above: the cell no longer transmits power
	ReenableThreshold = 2 // at or below after a repair: power is re-enabled
)

// Initial attributes of freshly placed cells.
const (
	DefaultPopulation  = 100
	DefaultProduction  = 50
	DefaultOutputPower = 1000

	rubblePopulationLoss = 70
)

// Effect is a named, timed tag on a cell (for example "aftershock").
type Effect struct {
	Name      string `json:"name"`
	Remaining int    `json:"remaining"`
}

// Cell is a single grid position and its damage/power state machine.
// The zero value is not usable; cells are created by the Grid.
type Cell struct {
	pos        Coord
	kind       CellType
	powered    bool
	damage     int
	resistance int
	population int
	production int
	output     int
	effect     Effect
}

func newCell(x, y int, t CellType) Cell {
	c := Cell{pos: C(x, y)}
	c.reset(t)
	return c
}

// reset turns the cell into a pristine cell of type t.
func (c *Cell) reset(t CellType) {
	pos := c.pos
	*c = Cell{pos: pos, kind: t, resistance: t.BaseResistance()}
	switch t {
	case House:
		c.population = DefaultPopulation
	case Factory:
		c.production = DefaultProduction
	case PowerSource:
		c.output = DefaultOutputPower
	}
}

// Pos returns the cell coordinate.
func (c *Cell) Pos() Coord { return c.pos }

// Type returns the current cell type.
func (c *Cell) Type() CellType { return c.kind }

// DamageLevel returns the damage level in [0, MaxDamage].
func (c *Cell) DamageLevel() int { return c.damage }

// Damaged reports whether the cell carries any damage.
func (c *Cell) Damaged() bool { return c.damage > 0 }

// Population returns the number of residents (houses only).
func (c *Cell) Population() int { return c.population }

// Production returns factory output units (factories only).
func (c *Cell) Production() int { return c.production }

// OutputPower returns generated power (sources only).
func (c *Cell) OutputPower() int { return c.output }

// SetOutputPower overrides the generated power of a source cell.
func (c *Cell) SetOutputPower(v int) {
	if c.kind == PowerSource {
		c.output = max(0, v)
	}
}

// IsPowered reports whether the cell is energised and intact.
func (c *Cell) IsPowered() bool {
	return c.powered && c.damage == 0
}

// PoweredFlag returns the raw powered flag, ignoring damage.
func (c *Cell) PoweredFlag() bool { return c.powered }

// SetPowered updates the powered flag. Powering a severely damaged cell is
// ignored; clearing the flag always succeeds.
func (c *Cell) SetPowered(p bool) {
	if p && c.damage >= SevereDamage {
		return
	}
	c.powered = p
}

// Resistance returns the effective resistance: doubled while damaged.
func (c *Cell) Resistance() int {
	if c.Damaged() {
		return c.resistance * 2
	}
	return c.resistance
}

// ApplyDamage adds n damage levels. Reaching TerminalDamage turns wires and
// transformers into broken wire and houses into rubble. n <= 0 is a no-op.
func (c *Cell) ApplyDamage(n int) {
	if n <= 0 {
		return
	}
	c.damage = min(MaxDamage, c.damage+n)
	c.resistance += 2 * n

	if c.damage >= TerminalDamage {
		switch c.kind {
		case Wire, Transformer:
			c.kind = BrokenWire
		case House:
			c.kind = Rubble
			c.population = max(0, c.population-rubblePopulationLoss)
		}
	}
	if c.damage >= SevereDamage {
		c.powered = false
	}
}

// Repair heals one damage level and reports whether there was anything to
// heal. Once damage drops to ReenableThreshold the cell may hold power again.
func (c *Cell) Repair() bool {
	if c.damage == 0 {
		return false
	}
	c.damage--
	c.resistance = c.kind.BaseResistance()
	if c.damage <= ReenableThreshold {
		c.powered = true
	}
	return true
}

// DamageDescription classifies the damage level.
func (c *Cell) DamageDescription() string {
	switch {
	case c.damage == 0:
		return "none"
	case c.damage <= 3:
		return "minor"
	case c.damage <= 6:
		return "moderate"
	case c.damage <= 9:
		return "severe"
	default:
		return "destroyed"
	}
}

// Passable reports whether a path may cross the cell.
func (c *Cell) Passable() bool {
	if c.damage > ImpassableDamage {
		return false
	}
	return !c.kind.Blocking()
}

// Transmits reports whether power can be routed across the cell when
// searching for reachable houses.
func (c *Cell) Transmits() bool {
	if c.damage > NoTransmitDamage {
		return false
	}
	switch c.kind {
	case Wire, Transformer, House, Empty, PowerSource:
		return true
	}
	return false
}

// Conducts reports whether the power flood fill traverses the cell.
func (c *Cell) Conducts() bool {
	return c.kind.Conductive()
}

// SetEffect tags the cell with a named effect lasting the given number of days.
func (c *Cell) SetEffect(name string, days int) {
	if days <= 0 {
		c.effect = Effect{}
		return
	}
	c.effect = Effect{Name: name, Remaining: days}
}

// Effect returns the active effect, if any.
func (c *Cell) Effect() (Effect, bool) {
	return c.effect, c.effect.Remaining > 0
}

func (c *Cell) tickEffect() {
	if c.effect.Remaining == 0 {
		return
	}
	c.effect.Remaining--
	if c.effect.Remaining == 0 {
		c.effect = Effect{}
	}
}

// CellView is a read-only snapshot of a cell for collaborators.
type CellView struct {
	X           int      `json:"x"`
	Y           int      `json:"y"`
	Type        CellType `json:"type"`
	Powered     bool     `json:"powered"`
	DamageLevel int      `json:"damage_level"`
	Resistance  int      `json:"resistance"`
	Effect      string   `json:"effect,omitempty"`
}

// View returns a snapshot of the cell.
func (c *Cell) View() CellView {
	v := CellView{
		X:           c.pos.X,
		Y:           c.pos.Y,
		Type:        c.kind,
		Powered:     c.IsPowered(),
		DamageLevel: c.damage,
		Resistance:  c.Resistance(),
	}
	if e, ok := c.Effect(); ok {
		v.Effect = e.Name
	}
	return v
}
