// Package telemetry provides conservation audits, window statistics, CSV
// output, and per-stage performance tracking for the engine. Audits are
// meant to run between steps; the stepper itself never reports drift.
package telemetry

import (
	"math/bits"

	"gonum.org/v1/gonum/floats"

	"github.com/prizos/thermovox/material"
	"github.com/prizos/thermovox/world"
)

// TotalMoles returns Σ moles of one material across the world. Chunks are
// visited in deterministic bucket order, so the per-chunk partial sums are
// added in the same order on every call and audits stay reproducible.
func TotalMoles(w *world.World, id material.ID) float64 {
	var partials []float64
	w.ForEachChunk(func(ch *world.Chunk) {
		var sum float64
		forEachChunkCell(ch, func(c *world.Cell) {
			sum += c.Moles(id)
		})
		partials = append(partials, sum)
	})
	return floats.Sum(partials)
}

// TotalEnergy returns Σ thermal energy across every material of every cell.
func TotalEnergy(w *world.World) float64 {
	var partials []float64
	w.ForEachChunk(func(ch *world.Chunk) {
		var sum float64
		forEachChunkCell(ch, func(c *world.Cell) {
			sum += c.TotalEnergy()
		})
		partials = append(partials, sum)
	})
	return floats.Sum(partials)
}

// MaterialTotals returns per-identifier mole totals across the world.
func MaterialTotals(w *world.World) [material.Count]float64 {
	var totals [material.Count]float64
	w.ForEachChunk(func(ch *world.Chunk) {
		forEachChunkCell(ch, func(c *world.Cell) {
			for m := c.Present(); m != 0; m &= m - 1 {
				id := material.ID(bits.TrailingZeros16(m))
				totals[id] += c.Moles(id)
			}
		})
	})
	return totals
}

// Ledger tracks matter and energy injected or removed through tool APIs so
// closed-system invariants can be checked: world totals should change by at
// most what the ledger recorded between two audits.
type Ledger struct {
	MolesIn  [material.Count]float64
	MolesOut [material.Count]float64
	EnergyIn float64
	// EnergyOut is an upper bound: RemoveHeatAt clamps at zero per entry,
	// so the energy actually removed can be less than requested.
	EnergyOut float64
}

// RecordAddMaterial notes a tool-API material injection.
func (l *Ledger) RecordAddMaterial(id material.ID, moles, energy float64) {
	if id < material.Count {
		l.MolesIn[id] += moles
	}
	l.EnergyIn += energy
}

// RecordAddHeat notes a tool-API heat injection.
func (l *Ledger) RecordAddHeat(joules float64) { l.EnergyIn += joules }

// RecordRemoveHeat notes a tool-API heat removal request.
func (l *Ledger) RecordRemoveHeat(joules float64) { l.EnergyOut += joules }

// NetMoles returns injected minus removed moles for one material.
func (l *Ledger) NetMoles(id material.ID) float64 {
	if id >= material.Count {
		return 0
	}
	return l.MolesIn[id] - l.MolesOut[id]
}

// Reset zeroes the ledger.
func (l *Ledger) Reset() {
	*l = Ledger{}
}

// forEachChunkCell visits every cell of a chunk.
func forEachChunkCell(ch *world.Chunk, fn func(*world.Cell)) {
	for lz := 0; lz < world.Size; lz++ {
		for ly := 0; ly < world.Size; ly++ {
			for lx := 0; lx < world.Size; lx++ {
				fn(ch.Cell(lx, ly, lz))
			}
		}
	}
}
