package world

import (
	"github.com/prizos/thermovox/material"
)

// InitTerrain fills the world from a 2D integer height map H[x][z]: cells
// with y below H[x][z] become rock, with a thin dirt topsoil layer at the
// top of each column, all at ambient temperature. Cells above remain
// vacuum. This is the only path by which the world acquires matter at
// startup; it is deterministic for identical height maps.
//
// Filled chunks are left off the active list: uniform ambient terrain has
// no gradients to simulate, and the first tool write or inflow activates
// whatever it disturbs.
func (w *World) InitTerrain(h [][]int) error {
	width := len(h)
	if width == 0 {
		return ErrBadHeightMap
	}
	for _, col := range h {
		if len(col) != width {
			return ErrBadHeightMap
		}
	}

	tc := &w.cfg.Terrain
	ambient := w.cfg.World.AmbientTemp
	rockCp := material.Get(material.Rock).HeatCapacity
	dirtCp := material.Get(material.Dirt).HeatCapacity

	for x := 0; x < width; x++ {
		for z := 0; z < width; z++ {
			height := h[x][z]
			if height <= 0 {
				continue
			}
			topsoil := height - tc.TopsoilDepth
			for y := 0; y < height; y++ {
				cell := w.CellForWrite(x, y, z)
				if cell == nil {
					return ErrOutOfRange
				}
				if y >= topsoil {
					cell.Mutate(material.Dirt, tc.DirtMoles, tc.DirtMoles*dirtCp*ambient)
				} else {
					cell.Mutate(material.Rock, tc.RockMoles, tc.RockMoles*rockCp*ambient)
				}
			}
		}
	}
	return nil
}
