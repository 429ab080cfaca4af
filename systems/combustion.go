package systems

import (
	"math/bits"

	"github.com/prizos/thermovox/config"
	"github.com/prizos/thermovox/material"
	"github.com/prizos/thermovox/world"
)

// combustionRate is the fraction of the limiting reactant consumed per
// substep once a cell ignites.
const combustionRate = 0.1

// CombustionSystem implements the reserved fuel/oxidizer bookkeeping: a
// cell holding both a fuel and an oxidizer above the fuel's ignition
// temperature consumes them in molar proportion, produces carbon dioxide
// and an ash remainder, and releases the fuel's combustion enthalpy. Moles
// are conserved at the identifier level only; the model is coarse by
// design. Flag-gated, off by default. No material in the current registry
// carries the fuel flag, so the stage is dormant until one does.
type CombustionSystem struct {
	w   *world.World
	cfg *config.Config
}

// NewCombustionSystem creates the combustion stage for the world.
func NewCombustionSystem(w *world.World) *CombustionSystem {
	return &CombustionSystem{w: w, cfg: w.Config()}
}

// Process runs combustion over one chunk's dirty region.
func (c *CombustionSystem) Process(ch *world.Chunk, box world.Box) {
	forEachCell(box, func(lx, ly, lz int) {
		cell := ch.Cell(lx, ly, lz)
		if cell.MaterialCount() < 2 {
			return
		}
		if c.burn(cell) {
			ch.MarkDirty(lx, ly, lz)
			c.w.ActivateChunk(ch)
		}
	})
}

// burn consumes one fuel/oxidizer pairing in the cell, returning whether
// anything reacted.
func (c *CombustionSystem) burn(cell *world.Cell) bool {
	var fuelID, oxidizerID material.ID
	for m := cell.Present(); m != 0; m &= m - 1 {
		id := material.ID(bits.TrailingZeros16(m))
		props := material.Get(id)
		if props.Fuel && fuelID == material.None {
			fuelID = id
		}
		if props.Oxidizer && oxidizerID == material.None {
			oxidizerID = id
		}
	}
	if fuelID == material.None || oxidizerID == material.None {
		return false
	}

	fuel := material.Get(fuelID)
	if cell.Temperature() < fuel.IgnitionTemp {
		return false
	}

	burned := combustionRate * cell.Moles(fuelID)
	if ox := cell.Moles(oxidizerID); burned > ox {
		burned = ox
	}
	if burned <= c.cfg.Physics.MinFlowMoles {
		return false
	}

	// Fuel and oxidizer leave; the same aggregate moles come back as
	// carbon dioxide plus ash-like dirt, carrying the reactants' thermal
	// energy plus the released combustion enthalpy.
	fuelEnergy := cell.Energy(fuelID) * burned / cell.Moles(fuelID)
	oxEnergy := cell.Energy(oxidizerID) * burned / cell.Moles(oxidizerID)
	released := burned * fuel.CombustionHeat

	cell.Mutate(fuelID, -burned, -fuelEnergy)
	cell.Mutate(oxidizerID, -burned, -oxEnergy)

	carried := fuelEnergy + oxEnergy + released
	cell.Mutate(material.CarbonDioxide, burned, carried*0.5)
	cell.Mutate(material.Dirt, burned, carried*0.5)
	return true
}
