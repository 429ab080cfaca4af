package systems

import (
	"math/bits"

	"github.com/prizos/thermovox/config"
	"github.com/prizos/thermovox/material"
	"github.com/prizos/thermovox/world"
)

// PhaseSystem converts liquids past their boiling point into their vapor
// identifier and vapor below it back, with latent-heat bookkeeping: boiling
// debits the enthalpy of vaporization from thermal energy, condensation
// credits it back. The stage is flag-gated and off by default; the
// absorbed/released totals are exposed so audits can close the energy
// ledger when it runs.
type PhaseSystem struct {
	w   *world.World
	cfg *config.Config

	// LatentAbsorbed and LatentReleased accumulate the joules moved out of
	// and back into thermal energy by conversions since creation.
	LatentAbsorbed float64
	LatentReleased float64
}

// NewPhaseSystem creates the phase-change stage for the world.
func NewPhaseSystem(w *world.World) *PhaseSystem {
	return &PhaseSystem{w: w, cfg: w.Config()}
}

// Process runs phase conversion over one chunk's dirty region.
func (p *PhaseSystem) Process(ch *world.Chunk, box world.Box) {
	forEachCell(box, func(lx, ly, lz int) {
		cell := ch.Cell(lx, ly, lz)
		changed := false
		for m := cell.Present(); m != 0; m &= m - 1 {
			id := material.ID(bits.TrailingZeros16(m))
			switch {
			case material.IsLiquid(id) && material.VaporOf(id) != material.None:
				changed = p.boil(cell, id) || changed
			case material.IsGas(id) && material.CondensateOf(id) != material.None:
				changed = p.condense(cell, id) || changed
			}
		}
		if changed {
			ch.MarkDirty(lx, ly, lz)
			p.w.ActivateChunk(ch)
		}
	})
}

// boil converts part of a liquid entry above its boiling point to vapor.
// Conversion is limited by the energy available above the boiling point,
// so the remaining liquid asymptotically cools to the boil line instead of
// overshooting.
func (p *PhaseSystem) boil(cell *world.Cell, id material.ID) bool {
	props := material.Get(id)
	vaporID := material.VaporOf(id)
	vapor := material.Get(vaporID)

	moles := cell.Moles(id)
	energy := cell.Energy(id)
	boil := props.BoilingPoint + p.cfg.Physics.BoilMargin
	if moles <= world.PresenceEpsilon || cell.EntryTemperature(id) <= boil {
		return false
	}

	excess := energy - moles*props.HeatCapacity*boil
	if excess <= 0 {
		return false
	}
	converted := p.cfg.Physics.PhaseRate * moles
	if limit := excess / props.VaporHeat; converted > limit {
		converted = limit
	}
	if converted <= p.cfg.Physics.MinFlowMoles {
		return false
	}

	latent := converted * props.VaporHeat
	vaporSensible := converted * vapor.HeatCapacity * boil

	cell.Mutate(id, -converted, -(latent + vaporSensible))
	cell.Mutate(vaporID, converted, vaporSensible)
	p.LatentAbsorbed += latent
	return true
}

// condense converts part of a vapor entry below the boiling point back to
// its liquid, releasing the stored latent heat into the condensate.
func (p *PhaseSystem) condense(cell *world.Cell, id material.ID) bool {
	props := material.Get(id)
	liquidID := material.CondensateOf(id)

	moles := cell.Moles(id)
	if moles <= world.PresenceEpsilon {
		return false
	}
	t := cell.EntryTemperature(id)
	boil := props.BoilingPoint - p.cfg.Physics.BoilMargin
	if t >= boil {
		return false
	}

	converted := p.cfg.Physics.PhaseRate * moles
	if converted <= p.cfg.Physics.MinFlowMoles {
		return false
	}

	share := cell.Energy(id) * converted / moles
	latent := converted * props.VaporHeat

	cell.Mutate(id, -converted, -share)
	cell.Mutate(liquidID, converted, share+latent)
	p.LatentReleased += latent
	return true
}
