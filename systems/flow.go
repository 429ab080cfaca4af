package systems

import (
	"math/bits"

	"github.com/prizos/thermovox/config"
	"github.com/prizos/thermovox/material"
	"github.com/prizos/thermovox/world"
)

// lateralDirs are the four horizontal unit offsets used for spreading.
var lateralDirs = [4][3]int{{1, 0, 0}, {-1, 0, 0}, {0, 0, 1}, {0, 0, -1}}

// FlowSystem moves liquids: gravity transfer into the cell below, then
// pressure-equalizing spread across the four lateral neighbors when the
// downward path is blocked or saturated. Solids block flow; a face whose
// chunk does not exist reads as a wall, so liquid piles up at chunk-floor
// edges instead of leaking into unrepresented space. Total moles and total
// energy of every material are conserved across a pass.
type FlowSystem struct {
	w   *world.World
	cfg *config.Config
}

// NewFlowSystem creates the liquid flow stage for the world.
func NewFlowSystem(w *world.World) *FlowSystem {
	return &FlowSystem{w: w, cfg: w.Config()}
}

// Process runs the flow stage over one chunk's dirty region.
func (f *FlowSystem) Process(ch *world.Chunk, box world.Box) {
	forEachCell(box, func(lx, ly, lz int) {
		cell := ch.Cell(lx, ly, lz)
		if !cell.HasPhase(material.PhaseLiquid) {
			return
		}
		for m := cell.Present(); m != 0; m &= m - 1 {
			id := material.ID(bits.TrailingZeros16(m))
			if material.IsLiquid(id) {
				f.moveLiquid(ch, lx, ly, lz, cell, id)
			}
		}
	})
}

// moveLiquid drops one liquid material toward the cell below, or spreads it
// laterally when falling is blocked.
func (f *FlowSystem) moveLiquid(ch *world.Chunk, lx, ly, lz int, cell *world.Cell, id material.ID) {
	p := &f.cfg.Physics
	moles := cell.Moles(id)
	if moles <= p.MinFlowMoles {
		return
	}

	below, ok := f.w.NeighborRef(ch, lx, ly, lz, 0, -1, 0)
	if ok && !below.Cell.HasPhase(material.PhaseSolid) {
		room := p.LiquidCellCapacity - below.Cell.MolesOfPhase(material.PhaseLiquid)
		amount := p.FallFraction * moles
		if amount > room {
			amount = room
		}
		if amount > p.MinFlowMoles {
			f.transfer(cell, below.Cell, id, amount)
			f.displaceGas(below.Cell, cell, amount)
			ch.MarkDirty(lx, ly, lz)
			f.w.ActivateChunk(ch)
			f.w.Touch(below)
			return
		}
	}

	// Downward path blocked or saturated: equalize against lateral
	// neighbors that hold less and can support a column of their own.
	for _, d := range lateralDirs {
		ref, ok := f.w.NeighborRef(ch, lx, ly, lz, d[0], d[1], d[2])
		if !ok {
			continue // wall
		}
		if ref.Cell.HasPhase(material.PhaseSolid) {
			continue
		}
		if !f.supported(ref) {
			continue
		}
		diff := cell.Moles(id) - ref.Cell.Moles(id)
		if diff <= 0 {
			continue
		}
		amount := p.SpreadFraction * diff / 4
		if amount <= p.MinFlowMoles {
			continue
		}
		f.transfer(cell, ref.Cell, id, amount)
		ch.MarkDirty(lx, ly, lz)
		f.w.ActivateChunk(ch)
		f.w.Touch(ref)
	}
}

// supported reports whether the referenced cell can hold liquid without it
// immediately falling: its own floor is a wall, a solid, or a saturated
// liquid column. Spreading only between supported columns keeps water
// piling at ledges instead of bleeding off them sideways.
func (f *FlowSystem) supported(ref world.CellRef) bool {
	below, ok := f.w.NeighborRef(ref.Chunk, ref.LX, ref.LY, ref.LZ, 0, -1, 0)
	if !ok {
		return true
	}
	if below.Cell.HasPhase(material.PhaseSolid) {
		return true
	}
	room := f.cfg.Physics.LiquidCellCapacity - below.Cell.MolesOfPhase(material.PhaseLiquid)
	return room <= f.cfg.Physics.MinFlowMoles
}

// transfer moves moles of one material together with the proportional share
// of its thermal energy, so moved energy equals moved moles times the
// per-mole energy at the source.
func (f *FlowSystem) transfer(src, dst *world.Cell, id material.ID, amount float64) {
	srcMoles := src.Moles(id)
	if amount > srcMoles {
		amount = srcMoles
	}
	if amount <= 0 {
		return
	}
	energy := src.Energy(id) * amount / srcMoles
	src.Mutate(id, -amount, -energy)
	dst.Mutate(id, amount, energy)
}

// displaceGas pushes gas out of a cell that liquid just entered, up into
// the source cell directly above, matching the incoming molar volume. This
// keeps per-material totals intact and stops liquid from vanishing into
// gas.
func (f *FlowSystem) displaceGas(recipient, above *world.Cell, liquidMoles float64) {
	gas := recipient.MolesOfPhase(material.PhaseGas)
	if gas <= 0 {
		return
	}
	displace := liquidMoles
	if displace > gas {
		displace = gas
	}
	for m := recipient.Present(); m != 0; m &= m - 1 {
		id := material.ID(bits.TrailingZeros16(m))
		if !material.IsGas(id) {
			continue
		}
		share := displace * recipient.Moles(id) / gas
		f.transfer(recipient, above, id, share)
	}
}
