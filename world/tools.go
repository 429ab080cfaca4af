package world

import (
	"math"

	"github.com/prizos/thermovox/material"
)

// CellInfo is the read-only summary returned for UI overlays.
type CellInfo struct {
	Valid         bool
	MaterialCount int
	Primary       material.ID
	Temperature   float64
	Phase         material.Phase
}

// AddHeatAt injects thermal energy at a world-space position. The energy is
// distributed across present materials in proportion to each material's
// heat capacity n·Cp. Vacuum rejects heat: the owning chunk is created but
// nothing lands and the chunk is not activated.
func (w *World) AddHeatAt(wx, wy, wz, joules float64) error {
	if !isFiniteNonNegative(joules) {
		return ErrDomain
	}
	cx, cy, cz := w.WorldToCell(wx, wy, wz)
	if !InCellRange(cx, cy, cz) {
		return ErrOutOfRange
	}
	cell := w.CellForWrite(cx, cy, cz)
	total := cell.TotalHeatCapacity()
	if total <= 0 {
		return nil
	}
	cell.ForEach(func(id material.ID, moles, energy float64) {
		share := moles * material.Get(id).HeatCapacity / total
		cell.AddEnergy(id, joules*share)
	})
	w.MarkCellActive(cx, cy, cz)
	return nil
}

// RemoveHeatAt extracts thermal energy at a world-space position,
// distributed like AddHeatAt but clamping each entry's energy at zero.
// Cold injection past 0 K is simply absorbed by the clamp.
func (w *World) RemoveHeatAt(wx, wy, wz, joules float64) error {
	if !isFiniteNonNegative(joules) {
		return ErrDomain
	}
	cx, cy, cz := w.WorldToCell(wx, wy, wz)
	if !InCellRange(cx, cy, cz) {
		return ErrOutOfRange
	}
	cell := w.CellForWrite(cx, cy, cz)
	total := cell.TotalHeatCapacity()
	if total <= 0 {
		return nil
	}
	cell.ForEach(func(id material.ID, moles, energy float64) {
		share := moles * material.Get(id).HeatCapacity / total
		cell.AddEnergy(id, -joules*share)
	})
	w.MarkCellActive(cx, cy, cz)
	return nil
}

// AddWaterAt injects liquid water at ambient temperature at a world-space
// position. Injection past the per-cell liquid capacity clamps at the cap;
// the overflow is discarded rather than rerouted.
func (w *World) AddWaterAt(wx, wy, wz, moles float64) error {
	if !isFiniteNonNegative(moles) {
		return ErrDomain
	}
	cx, cy, cz := w.WorldToCell(wx, wy, wz)
	if !InCellRange(cx, cy, cz) {
		return ErrOutOfRange
	}
	if moles == 0 {
		return nil
	}
	cell := w.CellForWrite(cx, cy, cz)

	cap := w.cfg.Physics.LiquidCellCapacity
	room := cap - cell.MolesOfPhase(material.PhaseLiquid)
	if room <= 0 {
		return nil
	}
	if moles > room {
		moles = room
	}
	energy := moles * material.Get(material.Water).HeatCapacity * w.cfg.World.AmbientTemp
	if err := cell.AddMaterial(material.Water, moles, energy); err != nil {
		return err
	}
	w.MarkCellActive(cx, cy, cz)
	return nil
}

// CellInfoAt returns a read-only summary of the cell at a world-space
// position. It never creates chunks; positions in unrepresented space
// return Valid == false.
func (w *World) CellInfoAt(wx, wy, wz float64) CellInfo {
	if math.IsNaN(wx) || math.IsNaN(wy) || math.IsNaN(wz) {
		return CellInfo{}
	}
	cx, cy, cz := w.WorldToCell(wx, wy, wz)
	if !InCellRange(cx, cy, cz) {
		return CellInfo{}
	}
	c, lx, ly, lz := CellToChunk(cx, cy, cz)
	ch := w.ChunkAt(c)
	if ch == nil {
		return CellInfo{}
	}
	cell := ch.Cell(lx, ly, lz)
	primary := cell.Primary()
	return CellInfo{
		Valid:         true,
		MaterialCount: cell.MaterialCount(),
		Primary:       primary,
		Temperature:   cell.Temperature(),
		Phase:         material.Get(primary).Phase,
	}
}

// CellRef identifies a cell together with its owning chunk and local
// coordinates, so physics can mark the right dirty region after a write.
type CellRef struct {
	Chunk      *Chunk
	LX, LY, LZ int
	Cell       *Cell
}

// NeighborRef resolves the cell one step along a unit axis offset from the
// given local position, following the cached neighbor handle across a chunk
// face. ok is false when the neighboring chunk does not exist; the caller
// decides whether that reads as vacuum (conduction) or as a wall (flow).
func (w *World) NeighborRef(ch *Chunk, lx, ly, lz, dx, dy, dz int) (ref CellRef, ok bool) {
	nx, ny, nz := lx+dx, ly+dy, lz+dz
	target := ch
	if nx < 0 {
		target, nx = ch.neighbors[FaceXNeg], nx+Size
	} else if nx >= Size {
		target, nx = ch.neighbors[FaceXPos], nx-Size
	}
	if target != nil {
		if ny < 0 {
			target, ny = target.neighbors[FaceYNeg], ny+Size
		} else if ny >= Size {
			target, ny = target.neighbors[FaceYPos], ny-Size
		}
	}
	if target != nil {
		if nz < 0 {
			target, nz = target.neighbors[FaceZNeg], nz+Size
		} else if nz >= Size {
			target, nz = target.neighbors[FaceZPos], nz-Size
		}
	}
	if target == nil {
		return CellRef{}, false
	}
	return CellRef{Chunk: target, LX: nx, LY: ny, LZ: nz, Cell: target.Cell(nx, ny, nz)}, true
}

// Touch marks the referenced cell dirty and keeps its chunk on the active
// list. Physics calls it after every write so neighbor-originated changes
// wake stable chunks.
func (w *World) Touch(ref CellRef) {
	ref.Chunk.MarkDirty(ref.LX, ref.LY, ref.LZ)
	w.ActivateChunk(ref.Chunk)
}
