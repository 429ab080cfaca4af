package systems

import (
	"math/bits"

	"github.com/prizos/thermovox/config"
	"github.com/prizos/thermovox/material"
	"github.com/prizos/thermovox/world"
)

// minTempDiff is the temperature gradient below which conduction stops.
// Without a floor the geometric relaxation never reaches zero and chunks
// never reach equilibrium.
const minTempDiff = 1e-6

// equilibTol is the absolute energy delta below which intra-cell
// rebalancing is treated as already settled.
const equilibTol = 1e-9

// HeatSystem performs intra-cell thermal equilibration and inter-cell
// Fourier conduction. Heat never flows into vacuum; both sides of a face
// must hold matter.
type HeatSystem struct {
	w   *world.World
	cfg *config.Config
}

// NewHeatSystem creates the heat stage for the world.
func NewHeatSystem(w *world.World) *HeatSystem {
	return &HeatSystem{w: w, cfg: w.Config()}
}

// Equilibrate redistributes each cell's total energy across its present
// materials in proportion to n·Cp, so all materials in a cell share one
// temperature. The total is preserved exactly; this is a rebalance, not a
// loss.
func (h *HeatSystem) Equilibrate(ch *world.Chunk, box world.Box) {
	forEachCell(box, func(lx, ly, lz int) {
		cell := ch.Cell(lx, ly, lz)
		if cell.MaterialCount() < 2 {
			return
		}
		total := cell.TotalEnergy()
		capacity := cell.TotalHeatCapacity()
		if capacity <= 0 {
			return
		}
		changed := false
		cell.ForEach(func(id material.ID, moles, energy float64) {
			target := total * moles * material.Get(id).HeatCapacity / capacity
			if delta := target - energy; delta > equilibTol || delta < -equilibTol {
				cell.SetEnergy(id, target)
				changed = true
			}
		})
		if changed {
			ch.MarkDirty(lx, ly, lz)
			h.w.ActivateChunk(ch)
		}
	})
}

// Conduct runs Fourier conduction between face-adjacent cells. Each cell
// processes its +x/+y/+z neighbors so every face is touched once per pass;
// pairs reaching backwards across a chunk boundary are handled locally only
// when the neighboring chunk will not process them itself.
func (h *HeatSystem) Conduct(ch *world.Chunk, box world.Box) {
	forEachCell(box, func(lx, ly, lz int) {
		cell := ch.Cell(lx, ly, lz)
		if cell.Empty() {
			return
		}
		for _, d := range [3][3]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
			ref, ok := h.w.NeighborRef(ch, lx, ly, lz, d[0], d[1], d[2])
			if !ok {
				continue // unrepresented space is vacuum: no conduction
			}
			h.conductPair(ch, lx, ly, lz, cell, ref)
		}
		// Backwards faces crossing into another chunk, when that chunk's
		// own scan will not reach the pair this tick.
		for _, d := range [3][3]int{{-1, 0, 0}, {0, -1, 0}, {0, 0, -1}} {
			ref, ok := h.w.NeighborRef(ch, lx, ly, lz, d[0], d[1], d[2])
			if !ok || ref.Chunk == ch || pairOwnedElsewhere(ref) {
				continue
			}
			h.conductPair(ch, lx, ly, lz, cell, ref)
		}
	})
}

// conductPair moves energy between two matter-holding cells along their
// shared face, clamped so neither side goes negative and no more than the
// configured fraction of the donor's energy moves per substep.
func (h *HeatSystem) conductPair(ch *world.Chunk, lx, ly, lz int, cell *world.Cell, ref world.CellRef) {
	other := ref.Cell
	if other.Empty() {
		return
	}
	ta := cell.Temperature()
	tb := other.Temperature()
	dt := ta - tb
	if dt < minTempDiff && dt > -minTempDiff {
		return
	}

	ca := cell.TotalHeatCapacity()
	cb := other.TotalHeatCapacity()
	if ca <= 0 || cb <= 0 {
		return
	}

	p := &h.cfg.Physics
	rate := p.ConductionRate * h.pairConductivity(cell, other)
	if dt > p.BoostThreshold || dt < -p.BoostThreshold {
		rate *= p.ConductionBoost
	}
	// Series capacity keeps the pair relaxation symmetric in both cells.
	blend := ca * cb / (ca + cb)
	transfer := rate * blend * dt

	donor, receiver := cell, other
	if transfer < 0 {
		donor, receiver = other, cell
		transfer = -transfer
	}
	if cap := p.MaxTransferFrac * donor.TotalEnergy(); transfer > cap {
		transfer = cap
	}
	if transfer <= 0 {
		return
	}

	moved := -donor.AddEnergyProportional(-transfer)
	if moved <= 0 {
		return
	}
	receiver.AddEnergyProportional(moved)

	ch.MarkDirty(lx, ly, lz)
	h.w.ActivateChunk(ch)
	h.w.Touch(ref)
}

// pairConductivity blends the two cells' capacity-weighted conductivities
// into a dimensionless rate factor, clamped to keep the pair relaxation
// stable under the boost.
func (h *HeatSystem) pairConductivity(a, b *world.Cell) float64 {
	ka := cellConductivity(a)
	kb := cellConductivity(b)
	if ka <= 0 || kb <= 0 {
		return 0
	}
	k := 2 * ka * kb / (ka + kb) / h.cfg.Physics.RefConductivity
	if k < 0.1 {
		k = 0.1
	}
	if k > 2 {
		k = 2
	}
	return k
}

// cellConductivity is the heat-capacity-weighted average of the present
// materials' thermal conductivities.
func cellConductivity(c *world.Cell) float64 {
	var sum, capacity float64
	for m := c.Present(); m != 0; m &= m - 1 {
		id := material.ID(bits.TrailingZeros16(m))
		props := material.Get(id)
		cap := c.Moles(id) * props.HeatCapacity
		sum += props.Conductivity * cap
		capacity += cap
	}
	if capacity <= 0 {
		return 0
	}
	return sum / capacity
}

// Radiate bleeds energy from cells above ambient temperature into the
// environment, capped per substep. The loss is intentionally open-system;
// the stage is off by default.
func (h *HeatSystem) Radiate(ch *world.Chunk, box world.Box) {
	p := &h.cfg.Physics
	ambient := h.cfg.World.AmbientTemp
	forEachCell(box, func(lx, ly, lz int) {
		cell := ch.Cell(lx, ly, lz)
		if cell.Empty() {
			return
		}
		t := cell.Temperature()
		if t <= ambient {
			return
		}
		loss := p.RadiationRate * cell.TotalHeatCapacity() * (t - ambient)
		if cap := p.RadiationCap * cell.TotalEnergy(); loss > cap {
			loss = cap
		}
		if loss <= equilibTol {
			return
		}
		cell.AddEnergyProportional(-loss)
		ch.MarkDirty(lx, ly, lz)
		h.w.ActivateChunk(ch)
	})
}
