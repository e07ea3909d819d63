package grid

// DefaultOwner labels houses created without an explicit owner.
const DefaultOwner = "resident"

// Household is a consumer registered at a house cell.
type Household struct {
	Pos        Coord
	Owner      string
	powered    bool
	powerLevel int
	connected  bool
}

// NewHousehold creates an unpowered house owned by DefaultOwner.
func NewHousehold(pos Coord) *Household {
	return &Household{Pos: pos, Owner: DefaultOwner}
}

// Powered reports whether the house receives power.
func (h *Household) Powered() bool { return h.powered }

// PowerLevel returns the supply level in [0, 100].
func (h *Household) PowerLevel() int { return h.powerLevel }

// Connected reports whether the house has been hooked up to the network.
func (h *Household) Connected() bool { return h.connected }

// SetPowered switches the house on or off. A house switched on from level 0
// starts at full power; switching off drops the level to 0.
func (h *Household) SetPowered(p bool) {
	h.powered = p
	switch {
	case p && h.powerLevel == 0:
		h.powerLevel = 100
	case !p:
		h.powerLevel = 0
	}
}

// SetPowerLevel sets the level, clamped to [0, 100]. Any positive level
// counts as powered.
func (h *Household) SetPowerLevel(level int) {
	h.powerLevel = min(100, max(0, level))
	h.powered = h.powerLevel > 0
}

// ReducePower lowers the level by n.
func (h *Household) ReducePower(n int) {
	h.SetPowerLevel(h.powerLevel - n)
}

// IncreasePower raises the level by n.
func (h *Household) IncreasePower(n int) {
	h.SetPowerLevel(h.powerLevel + n)
}

// Connect marks the house as connected.
func (h *Household) Connect() { h.connected = true }

// Disconnect marks the house as disconnected and cuts its power.
func (h *Household) Disconnect() {
	h.connected = false
	h.SetPowered(false)
}
