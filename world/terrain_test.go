package world

import (
	"testing"

	"github.com/prizos/thermovox/material"
)

func flatHeightMap(w, h int) [][]int {
	m := make([][]int, w)
	for x := range m {
		m[x] = make([]int, w)
		for z := range m[x] {
			m[x][z] = h
		}
	}
	return m
}

func TestInitTerrainFillsColumns(t *testing.T) {
	w := newTestWorld(t)
	depth := w.cfg.Terrain.TopsoilDepth

	h := flatHeightMap(4, 6)
	h[2][3] = 2
	if err := w.InitTerrain(h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Below the surface minus topsoil: rock.
	c := w.Cell(0, 0, 0)
	if !c.Has(material.Rock) || c.Has(material.Dirt) {
		t.Error("expected rock at column base")
	}

	// Topsoil layer: dirt.
	c = w.Cell(0, 6-depth, 0)
	if !c.Has(material.Dirt) || c.Has(material.Rock) {
		t.Error("expected dirt in topsoil layer")
	}

	// Above the surface: vacuum.
	if !w.Cell(0, 6, 0).Empty() {
		t.Error("expected vacuum above the surface")
	}

	// Short column respects its own height.
	if !w.Cell(2, 2, 3).Empty() {
		t.Error("expected vacuum above short column")
	}
	if w.Cell(2, 1, 3).Empty() {
		t.Error("expected matter inside short column")
	}
}

func TestInitTerrainAmbientTemperature(t *testing.T) {
	w := newTestWorld(t)
	ambient := w.cfg.World.AmbientTemp

	if err := w.InitTerrain(flatHeightMap(2, 4)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for y := 0; y < 4; y++ {
		got := w.Cell(0, y, 0).Temperature()
		if diff := got - ambient; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("y=%d: expected ambient %f, got %f", y, ambient, got)
		}
	}
}

func TestInitTerrainDeterministic(t *testing.T) {
	h := flatHeightMap(8, 5)
	h[1][1] = 9
	h[6][2] = 1

	w1 := newTestWorld(t)
	w2 := newTestWorld(t)
	if err := w1.InitTerrain(h); err != nil {
		t.Fatal(err)
	}
	if err := w2.InitTerrain(h); err != nil {
		t.Fatal(err)
	}

	if w1.ChunkCount() != w2.ChunkCount() {
		t.Fatalf("chunk counts differ: %d vs %d", w1.ChunkCount(), w2.ChunkCount())
	}
	for x := 0; x < 8; x++ {
		for z := 0; z < 8; z++ {
			for y := 0; y < 10; y++ {
				a, b := w1.Cell(x, y, z), w2.Cell(x, y, z)
				if a.Present() != b.Present() {
					t.Fatalf("presence differs at (%d,%d,%d)", x, y, z)
				}
				if a.TotalMoles() != b.TotalMoles() || a.TotalEnergy() != b.TotalEnergy() {
					t.Fatalf("content differs at (%d,%d,%d)", x, y, z)
				}
			}
		}
	}
}

func TestInitTerrainRejectsRaggedMap(t *testing.T) {
	w := newTestWorld(t)

	if err := w.InitTerrain(nil); err != ErrBadHeightMap {
		t.Errorf("expected ErrBadHeightMap for nil, got %v", err)
	}

	ragged := [][]int{{1, 2}, {3}}
	if err := w.InitTerrain(ragged); err != ErrBadHeightMap {
		t.Errorf("expected ErrBadHeightMap for ragged map, got %v", err)
	}
}

func TestInitTerrainLeavesChunksInactive(t *testing.T) {
	w := newTestWorld(t)
	if err := w.InitTerrain(flatHeightMap(4, 4)); err != nil {
		t.Fatal(err)
	}
	if w.ActiveCount() != 0 {
		t.Errorf("expected bulk terrain load to leave chunks inactive, got %d active", w.ActiveCount())
	}
}
