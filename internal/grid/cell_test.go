package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cellOf(t *testing.T, typ CellType) *Cell {
	t.Helper()
	g := New(3, 3)
	require.True(t, g.PlaceCell(1, 1, typ))
	c, ok := g.Cell(1, 1)
	require.True(t, ok)
	return c
}

func TestNewCellAttributes(t *testing.T) {
	t.Run("house starts with residents", func(t *testing.T) {
		c := cellOf(t, House)
		assert.Equal(t, DefaultPopulation, c.Population())
	})

	t.Run("factory starts producing", func(t *testing.T) {
		c := cellOf(t, Factory)
		assert.Equal(t, DefaultProduction, c.Production())
	})

	t.Run("source starts with default output", func(t *testing.T) {
		c := cellOf(t, PowerSource)
		assert.Equal(t, DefaultOutputPower, c.OutputPower())
	})

	t.Run("resistance follows type", func(t *testing.T) {
		assert.Equal(t, 2, cellOf(t, Water).Resistance())
		assert.Equal(t, 100, cellOf(t, Obstacle).Resistance())
		assert.Equal(t, 1, cellOf(t, Wire).Resistance())
	})
}

func TestApplyDamage(t *testing.T) {
	t.Run("non-positive damage is ignored", func(t *testing.T) {
		c := cellOf(t, Wire)
		c.ApplyDamage(0)
		c.ApplyDamage(-3)
		assert.Equal(t, 0, c.DamageLevel())
		assert.False(t, c.Damaged())
	})

	t.Run("damage is capped", func(t *testing.T) {
		c := cellOf(t, PowerSource)
		c.ApplyDamage(7)
		c.ApplyDamage(7)
		assert.Equal(t, MaxDamage, c.DamageLevel())
	})

	t.Run("resistance grows and doubles while damaged", func(t *testing.T) {
		c := cellOf(t, Wire)
		c.ApplyDamage(2)
		// base 1 + 2*2, doubled
		assert.Equal(t, 10, c.Resistance())
	})

	t.Run("severe damage cuts power", func(t *testing.T) {
		c := cellOf(t, Transformer)
		c.SetPowered(true)
		c.ApplyDamage(5)
		assert.False(t, c.PoweredFlag())
		assert.Equal(t, Transformer, c.Type())
	})

	t.Run("eight on a wire breaks it", func(t *testing.T) {
		c := cellOf(t, Wire)
		c.SetPowered(true)
		c.ApplyDamage(8)
		assert.Equal(t, BrokenWire, c.Type())
		assert.False(t, c.PoweredFlag())
	})

	t.Run("terminal damage turns a house into rubble", func(t *testing.T) {
		c := cellOf(t, House)
		c.ApplyDamage(9)
		assert.Equal(t, Rubble, c.Type())
		assert.Equal(t, DefaultPopulation-70, c.Population())

		c.ApplyDamage(1)
		assert.Equal(t, DefaultPopulation-70, c.Population(), "population loss applies once per conversion")
	})

	t.Run("powering a severely damaged cell is ignored", func(t *testing.T) {
		c := cellOf(t, Wire)
		c.ApplyDamage(6)
		c.SetPowered(true)
		assert.False(t, c.PoweredFlag())
	})

	t.Run("damaged cells never report powered", func(t *testing.T) {
		c := cellOf(t, Wire)
		c.SetPowered(true)
		c.ApplyDamage(1)
		assert.True(t, c.PoweredFlag())
		assert.False(t, c.IsPowered())
	})
}

func TestRepair(t *testing.T) {
	t.Run("repairing damage level times heals fully", func(t *testing.T) {
		for level := 1; level <= MaxDamage; level++ {
			c := cellOf(t, Transformer)
			c.ApplyDamage(level)
			for i := 0; i < level; i++ {
				require.True(t, c.Repair())
			}
			assert.Equal(t, 0, c.DamageLevel(), "level %d", level)
			assert.False(t, c.Damaged(), "level %d", level)
			assert.False(t, c.Repair(), "nothing left to repair at level %d", level)
		}
	})

	t.Run("broken wire regains power flag below threshold", func(t *testing.T) {
		c := cellOf(t, Wire)
		c.ApplyDamage(8)
		for c.DamageLevel() > 3 {
			c.Repair()
			assert.False(t, c.PoweredFlag(), "damage %d", c.DamageLevel())
		}
		c.Repair()
		assert.Equal(t, 2, c.DamageLevel())
		assert.True(t, c.PoweredFlag())
		assert.Equal(t, BrokenWire, c.Type(), "wreckage stays wreckage")
	})

	t.Run("repair recomputes resistance from type", func(t *testing.T) {
		c := cellOf(t, Wire)
		c.ApplyDamage(3)
		c.Repair()
		assert.Equal(t, 2, c.Resistance())
	})
}

func TestDamageDescription(t *testing.T) {
	cases := map[int]string{0: "none", 1: "minor", 3: "minor", 4: "moderate", 6: "moderate", 7: "severe", 9: "severe", 10: "destroyed"}
	for level, want := range cases {
		c := cellOf(t, PowerSource)
		c.ApplyDamage(level)
		assert.Equal(t, want, c.DamageDescription(), "level %d", level)
	}
}

func TestPredicates(t *testing.T) {
	t.Run("passable", func(t *testing.T) {
		assert.True(t, cellOf(t, Empty).Passable())
		assert.True(t, cellOf(t, Water).Passable())
		assert.True(t, cellOf(t, House).Passable())
		assert.False(t, cellOf(t, Mountain).Passable())
		assert.False(t, cellOf(t, Obstacle).Passable())
		assert.False(t, cellOf(t, RockFall).Passable())

		c := cellOf(t, PowerSource)
		c.ApplyDamage(7)
		assert.True(t, c.Passable())
		c.ApplyDamage(1)
		assert.False(t, c.Passable())
	})

	t.Run("transmits", func(t *testing.T) {
		assert.True(t, cellOf(t, Empty).Transmits())
		assert.True(t, cellOf(t, PowerSource).Transmits())
		assert.False(t, cellOf(t, Water).Transmits())
		assert.False(t, cellOf(t, Factory).Transmits())

		c := cellOf(t, Transformer)
		c.ApplyDamage(6)
		assert.False(t, c.Transmits())
	})

	t.Run("conducts", func(t *testing.T) {
		assert.True(t, cellOf(t, Wire).Conducts())
		assert.True(t, cellOf(t, House).Conducts())
		assert.False(t, cellOf(t, PowerSource).Conducts())
		assert.False(t, cellOf(t, Empty).Conducts())
	})
}

func TestEffects(t *testing.T) {
	g := New(2, 2)
	c, _ := g.Cell(0, 0)
	c.SetEffect("aftershock", 2)

	e, ok := c.Effect()
	require.True(t, ok)
	assert.Equal(t, "aftershock", e.Name)

	g.UpdateEffects()
	_, ok = c.Effect()
	assert.True(t, ok)

	g.UpdateEffects()
	_, ok = c.Effect()
	assert.False(t, ok)
}

func TestCellTypeNames(t *testing.T) {
	for _, typ := range AllCellTypes() {
		parsed, err := ParseCellType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}

	_, err := ParseCellType("lava")
	assert.Error(t, err)
	assert.False(t, CellType(200).Valid())
}
