package systems

import (
	"testing"

	"github.com/prizos/thermovox/config"
	"github.com/prizos/thermovox/material"
	"github.com/prizos/thermovox/world"
)

func init() {
	// Initialize config for tests
	config.MustInit("")
}

// newTestWorld builds a fresh world on its own config copy so tests can
// tune thresholds without leaking into each other.
func newTestWorld(t testing.TB) *world.World {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	return world.New(cfg)
}

// addWaterCell places liquid water at the given temperature and marks the
// cell active.
func addWaterCell(t testing.TB, w *world.World, x, y, z int, moles, kelvin float64) {
	t.Helper()
	cell := w.CellForWrite(x, y, z)
	if cell == nil {
		t.Fatalf("cell (%d,%d,%d) out of range", x, y, z)
	}
	cp := material.Get(material.Water).HeatCapacity
	if err := cell.AddMaterial(material.Water, moles, moles*cp*kelvin); err != nil {
		t.Fatalf("adding water: %v", err)
	}
	w.MarkCellActive(x, y, z)
}

// addRockCell places solid rock at ambient temperature.
func addRockCell(t testing.TB, w *world.World, x, y, z int, moles float64) {
	t.Helper()
	cell := w.CellForWrite(x, y, z)
	if cell == nil {
		t.Fatalf("cell (%d,%d,%d) out of range", x, y, z)
	}
	cp := material.Get(material.Rock).HeatCapacity
	ambient := w.Config().World.AmbientTemp
	if err := cell.AddMaterial(material.Rock, moles, moles*cp*ambient); err != nil {
		t.Fatalf("adding rock: %v", err)
	}
}

// rockFloor lays a solid floor at y for x,z in [0, extent).
func rockFloor(t testing.TB, w *world.World, y, extent int) {
	t.Helper()
	for x := 0; x < extent; x++ {
		for z := 0; z < extent; z++ {
			addRockCell(t, w, x, y, z, 40)
		}
	}
}

// stepTicks runs exactly n pipeline passes with the given flags.
func stepTicks(s *Stepper, n int, flags Flags) {
	sub := s.cfg.Physics.SubstepDT
	for i := 0; i < n; i++ {
		s.StepFlags(sub, flags)
	}
}
