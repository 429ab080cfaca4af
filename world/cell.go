// Package world implements the sparse chunked cell grid: cells holding
// per-material mass and thermal energy, fixed-size chunks created on demand,
// and the world container with its active-chunk tracking and tool APIs.
package world

import (
	"math"
	"math/bits"

	"github.com/prizos/thermovox/material"
)

// PresenceEpsilon is the mole threshold below which a material entry is
// considered absent. Entries crossing it have their presence bit cleared
// and their scalars zeroed.
const PresenceEpsilon = 1e-12

// Entry holds one material's state within a cell.
type Entry struct {
	Moles  float64
	Energy float64 // joules

	temp      float64
	tempValid bool
}

// Temperature returns the entry's temperature E/(n·Cp), clamped at 0 K.
// The result is cached until the entry is mutated.
func (e *Entry) Temperature(id material.ID) float64 {
	if e.tempValid {
		return e.temp
	}
	e.temp = entryTemperature(id, e.Moles, e.Energy)
	e.tempValid = true
	return e.temp
}

func entryTemperature(id material.ID, moles, energy float64) float64 {
	if moles <= PresenceEpsilon {
		return 0
	}
	cap := moles * material.Get(id).HeatCapacity
	if cap <= 0 {
		return 0
	}
	t := energy / cap
	if t < 0 {
		return 0
	}
	return t
}

// Cell is a fixed-capacity bag of material entries addressed by material ID.
// The presence bitmask gives O(popcount) traversal of live entries. A cell
// with present == 0 is vacuum: it has no temperature and takes no part in
// conduction. The zero value is vacuum.
type Cell struct {
	entries [material.MaxMaterials]Entry
	present uint16

	temp      float64
	tempValid bool
}

// Present returns the presence bitmask.
func (c *Cell) Present() uint16 { return c.present }

// Empty reports whether the cell is vacuum.
func (c *Cell) Empty() bool { return c.present == 0 }

// Has reports whether material id is present.
func (c *Cell) Has(id material.ID) bool {
	return c.present&(1<<id) != 0
}

// Moles returns the moles of material id, 0 when absent.
func (c *Cell) Moles(id material.ID) float64 {
	if !c.Has(id) {
		return 0
	}
	return c.entries[id].Moles
}

// Energy returns the thermal energy of material id in joules, 0 when absent.
func (c *Cell) Energy(id material.ID) float64 {
	if !c.Has(id) {
		return 0
	}
	return c.entries[id].Energy
}

// MaterialCount returns the number of present materials.
func (c *Cell) MaterialCount() int {
	return bits.OnesCount16(c.present)
}

// ForEach calls fn for every present material in ascending ID order.
func (c *Cell) ForEach(fn func(id material.ID, moles, energy float64)) {
	for m := c.present; m != 0; m &= m - 1 {
		id := material.ID(bits.TrailingZeros16(m))
		e := &c.entries[id]
		fn(id, e.Moles, e.Energy)
	}
}

// AddMaterial accumulates moles and energy into the entry for id. Repeated
// adds sum. Both scalars must be finite and non-negative; violations are
// rejected without mutating the cell.
func (c *Cell) AddMaterial(id material.ID, moles, energy float64) error {
	if !material.Valid(id) {
		return ErrInvalidMaterial
	}
	if !isFiniteNonNegative(moles) || !isFiniteNonNegative(energy) {
		return ErrDomain
	}
	c.Mutate(id, moles, energy)
	return nil
}

// RemoveMaterial clears the presence bit for id and zeroes its entry.
// Removing an absent material is a no-op.
func (c *Cell) RemoveMaterial(id material.ID) {
	if id >= material.MaxMaterials || !c.Has(id) {
		return
	}
	c.entries[id] = Entry{}
	c.present &^= 1 << id
	c.tempValid = false
}

// Mutate applies signed mole and energy deltas to the entry for id,
// clamping both scalars at zero and maintaining the presence bit against
// PresenceEpsilon. All physics-side mutation funnels through here so the
// cached temperatures can never go stale.
func (c *Cell) Mutate(id material.ID, dMoles, dEnergy float64) {
	if !material.Valid(id) {
		return
	}
	e := &c.entries[id]
	e.Moles += dMoles
	e.Energy += dEnergy
	if e.Moles < 0 {
		e.Moles = 0
	}
	if e.Energy < 0 {
		e.Energy = 0
	}
	if e.Moles > PresenceEpsilon {
		c.present |= 1 << id
	} else {
		*e = Entry{}
		c.present &^= 1 << id
	}
	e.tempValid = false
	c.tempValid = false
}

// AddEnergy applies a signed energy delta to a present material, clamping
// at zero. Energy added to an absent material is dropped: vacuum rejects
// heat.
func (c *Cell) AddEnergy(id material.ID, delta float64) {
	if !c.Has(id) {
		return
	}
	c.Mutate(id, 0, delta)
}

// SetEnergy overwrites the energy of a present material. Used by the
// intra-cell equilibration, which redistributes a conserved total.
func (c *Cell) SetEnergy(id material.ID, energy float64) {
	if !c.Has(id) {
		return
	}
	if energy < 0 {
		energy = 0
	}
	e := &c.entries[id]
	e.Energy = energy
	e.tempValid = false
	c.tempValid = false
}

// AddEnergyProportional applies a signed energy delta distributed across
// present materials in proportion to each material's heat capacity n·Cp,
// clamping every entry at zero. Returns the amount actually applied, which
// can be smaller in magnitude than delta when a removal clamps.
func (c *Cell) AddEnergyProportional(delta float64) float64 {
	total := c.TotalHeatCapacity()
	if total <= 0 {
		return 0
	}
	var applied float64
	for m := c.present; m != 0; m &= m - 1 {
		id := material.ID(bits.TrailingZeros16(m))
		e := &c.entries[id]
		share := delta * e.Moles * material.Get(id).HeatCapacity / total
		if share < -e.Energy {
			share = -e.Energy
		}
		e.Energy += share
		e.tempValid = false
		applied += share
	}
	c.tempValid = false
	return applied
}

// EntryTemperature returns the temperature of one material entry, 0 when
// the material is absent.
func (c *Cell) EntryTemperature(id material.ID) float64 {
	if !c.Has(id) {
		return 0
	}
	return c.entries[id].Temperature(id)
}

// Temperature returns the heat-capacity-weighted average temperature across
// all present materials, caching the result. Vacuum has temperature 0; the
// sentinel must be honored by callers.
func (c *Cell) Temperature() float64 {
	if c.tempValid {
		return c.temp
	}
	var energy, capacity float64
	for m := c.present; m != 0; m &= m - 1 {
		id := material.ID(bits.TrailingZeros16(m))
		e := &c.entries[id]
		energy += e.Energy
		capacity += e.Moles * material.Get(id).HeatCapacity
	}
	t := 0.0
	if capacity > 0 {
		t = energy / capacity
		if t < 0 {
			t = 0
		}
	}
	c.temp = t
	c.tempValid = true
	return t
}

// HeatCapacity returns n·Cp for material id, 0 when absent.
func (c *Cell) HeatCapacity(id material.ID) float64 {
	if !c.Has(id) {
		return 0
	}
	return c.entries[id].Moles * material.Get(id).HeatCapacity
}

// TotalHeatCapacity returns Σ n·Cp over all present materials.
func (c *Cell) TotalHeatCapacity() float64 {
	var capacity float64
	for m := c.present; m != 0; m &= m - 1 {
		id := material.ID(bits.TrailingZeros16(m))
		capacity += c.entries[id].Moles * material.Get(id).HeatCapacity
	}
	return capacity
}

// TotalEnergy returns Σ energy over all present materials.
func (c *Cell) TotalEnergy() float64 {
	var energy float64
	for m := c.present; m != 0; m &= m - 1 {
		id := material.ID(bits.TrailingZeros16(m))
		energy += c.entries[id].Energy
	}
	return energy
}

// TotalMoles returns Σ moles over all present materials.
func (c *Cell) TotalMoles() float64 {
	var moles float64
	for m := c.present; m != 0; m &= m - 1 {
		id := material.ID(bits.TrailingZeros16(m))
		moles += c.entries[id].Moles
	}
	return moles
}

// MolesOfPhase returns Σ moles over present materials of the given phase.
func (c *Cell) MolesOfPhase(phase material.Phase) float64 {
	var moles float64
	for m := c.present; m != 0; m &= m - 1 {
		id := material.ID(bits.TrailingZeros16(m))
		if material.Get(id).Phase == phase {
			moles += c.entries[id].Moles
		}
	}
	return moles
}

// HasPhase reports whether any present material has the given phase.
func (c *Cell) HasPhase(phase material.Phase) bool {
	for m := c.present; m != 0; m &= m - 1 {
		id := material.ID(bits.TrailingZeros16(m))
		if material.Get(id).Phase == phase {
			return true
		}
	}
	return false
}

// Primary returns the present material with the most moles, or None for
// vacuum.
func (c *Cell) Primary() material.ID {
	best := material.None
	bestMoles := 0.0
	for m := c.present; m != 0; m &= m - 1 {
		id := material.ID(bits.TrailingZeros16(m))
		if n := c.entries[id].Moles; n > bestMoles {
			bestMoles = n
			best = id
		}
	}
	return best
}

func isFiniteNonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1) && !math.IsNaN(v)
}
