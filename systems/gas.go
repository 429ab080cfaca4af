package systems

import (
	"math/bits"

	"github.com/prizos/thermovox/config"
	"github.com/prizos/thermovox/material"
	"github.com/prizos/thermovox/world"
)

// GasSystem diffuses gas-phase materials isotropically toward
// lower-density neighbors, with an upward bias proportional to temperature
// above ambient so hot gas plausibly rises. Missing chunks read as walls;
// cells holding solids accept no gas.
type GasSystem struct {
	w   *world.World
	cfg *config.Config
}

// NewGasSystem creates the gas diffusion stage for the world.
func NewGasSystem(w *world.World) *GasSystem {
	return &GasSystem{w: w, cfg: w.Config()}
}

// Process runs gas diffusion over one chunk's dirty region. Each cell
// handles its +x/+y/+z pairs; backward pairs crossing into another chunk
// are handled locally only when that chunk will not process them this
// tick.
func (g *GasSystem) Process(ch *world.Chunk, box world.Box) {
	forEachCell(box, func(lx, ly, lz int) {
		cell := ch.Cell(lx, ly, lz)
		for _, d := range [3][3]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
			ref, ok := g.w.NeighborRef(ch, lx, ly, lz, d[0], d[1], d[2])
			if !ok {
				continue
			}
			// Self is the lower cell of a vertical pair.
			g.diffusePair(ch, lx, ly, lz, cell, ref, d[1] == 1, false)
		}
		for _, d := range [3][3]int{{-1, 0, 0}, {0, -1, 0}, {0, 0, -1}} {
			ref, ok := g.w.NeighborRef(ch, lx, ly, lz, d[0], d[1], d[2])
			if !ok || ref.Chunk == ch || pairOwnedElsewhere(ref) {
				continue
			}
			// The neighbor is the lower cell of a vertical pair.
			g.diffusePair(ch, lx, ly, lz, cell, ref, d[1] == -1, true)
		}
	})
}

// diffusePair exchanges every gas material between a cell and one
// neighbor. vertical marks a y-axis pair; refIsLower says the referenced
// cell is the lower one. The diffusion term and the thermal rise bias are
// combined into a single net transfer so a balanced column settles to a
// fixed point instead of trading opposing flows forever.
func (g *GasSystem) diffusePair(ch *world.Chunk, lx, ly, lz int, cell *world.Cell, ref world.CellRef, vertical, refIsLower bool) {
	other := ref.Cell

	mask := gasMask(cell) | gasMask(other)
	if mask == 0 {
		return
	}

	p := &g.cfg.Physics
	ambient := g.cfg.World.AmbientTemp
	moved := false

	for m := mask; m != 0; m &= m - 1 {
		id := material.ID(bits.TrailingZeros16(m))

		na := cell.Moles(id)
		nb := other.Moles(id)

		// Positive net moves cell -> neighbor.
		net := p.GasDiffusionRate * (na - nb) / 6

		if vertical {
			// Upward bias from the lower cell of the pair.
			if refIsLower {
				net -= g.riseBias(other, id, ambient)
			} else {
				net += g.riseBias(cell, id, ambient)
			}
		}

		src, dst := cell, other
		if net < 0 {
			src, dst = other, cell
			net = -net
		}
		if net <= p.MinFlowMoles {
			continue
		}
		if dst.HasPhase(material.PhaseSolid) {
			continue
		}
		if avail := src.Moles(id); net > avail {
			net = avail
		}
		if net <= 0 {
			continue
		}
		energy := src.Energy(id) * net / src.Moles(id)
		src.Mutate(id, -net, -energy)
		dst.Mutate(id, net, energy)
		moved = true
	}

	if moved {
		ch.MarkDirty(lx, ly, lz)
		g.w.ActivateChunk(ch)
		g.w.Touch(ref)
	}
}

// riseBias returns the extra upward moles for one gas material in the
// lower cell, proportional to its temperature above ambient and capped.
func (g *GasSystem) riseBias(lower *world.Cell, id material.ID, ambient float64) float64 {
	n := lower.Moles(id)
	if n <= 0 {
		return 0
	}
	t := lower.Temperature()
	if t <= ambient {
		return 0
	}
	p := &g.cfg.Physics
	frac := p.GasRiseRate * (t - ambient)
	if frac > p.GasRiseCap {
		frac = p.GasRiseCap
	}
	return frac * n
}

// gasMask returns the presence bits of the cell's gas-phase materials.
func gasMask(c *world.Cell) uint16 {
	var mask uint16
	for m := c.Present(); m != 0; m &= m - 1 {
		id := material.ID(bits.TrailingZeros16(m))
		if material.IsGas(id) {
			mask |= 1 << id
		}
	}
	return mask
}
