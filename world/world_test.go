package world

import (
	"testing"

	"github.com/prizos/thermovox/config"
	"github.com/prizos/thermovox/material"
)

func newTestWorld(t testing.TB) *World {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	return New(cfg)
}

func TestLazyChunkCreation(t *testing.T) {
	w := newTestWorld(t)

	if w.ChunkCount() != 0 {
		t.Fatal("expected empty world")
	}

	// Reads never allocate.
	c := w.Cell(5, 5, 5)
	if !IsSentinel(c) {
		t.Error("expected sentinel for unrepresented cell")
	}
	if w.ChunkCount() != 0 {
		t.Error("expected read not to create chunks")
	}

	// Writes allocate the owning chunk.
	cw := w.CellForWrite(5, 5, 5)
	if cw == nil || IsSentinel(cw) {
		t.Fatal("expected real cell from write accessor")
	}
	if w.ChunkCount() != 1 {
		t.Errorf("expected 1 chunk, got %d", w.ChunkCount())
	}

	// Same cell both ways afterwards.
	cw.AddMaterial(material.Water, 1, 10)
	if got := w.Cell(5, 5, 5).Moles(material.Water); got != 1 {
		t.Errorf("expected read to observe write, got %f moles", got)
	}
}

func TestSentinelIsVacuum(t *testing.T) {
	w := newTestWorld(t)
	c := w.Cell(1000, 1000, 1000)
	if !c.Empty() || c.Temperature() != 0 {
		t.Error("expected sentinel to read as vacuum with temperature 0")
	}
}

func TestNeighborLinkSymmetry(t *testing.T) {
	w := newTestWorld(t)

	a := w.EnsureChunk(Coord{0, 0, 0})
	b := w.EnsureChunk(Coord{1, 0, 0})
	c := w.EnsureChunk(Coord{0, 1, 0})

	if a.Neighbor(FaceXPos) != b || b.Neighbor(FaceXNeg) != a {
		t.Error("expected symmetric x links")
	}
	if a.Neighbor(FaceYPos) != c || c.Neighbor(FaceYNeg) != a {
		t.Error("expected symmetric y links")
	}
	if a.Neighbor(FaceZPos) != nil {
		t.Error("expected missing neighbor to be nil")
	}

	// A chunk created later between existing ones links to all of them.
	d := w.EnsureChunk(Coord{1, 1, 0})
	if d.Neighbor(FaceXNeg) != c || d.Neighbor(FaceYNeg) != b {
		t.Error("expected new chunk to link to existing diagonal-fill neighbors")
	}
	if c.Neighbor(FaceXPos) != d || b.Neighbor(FaceYPos) != d {
		t.Error("expected existing chunks to link back")
	}
}

func TestRemoveChunkClearsLinks(t *testing.T) {
	w := newTestWorld(t)
	a := w.EnsureChunk(Coord{0, 0, 0})
	b := w.EnsureChunk(Coord{1, 0, 0})

	w.removeChunk(b)

	if a.Neighbor(FaceXPos) != nil {
		t.Error("expected reciprocal link cleared")
	}
	if w.ChunkAt(Coord{1, 0, 0}) != nil {
		t.Error("expected chunk removed from hash table")
	}
	if w.ChunkCount() != 1 {
		t.Errorf("expected 1 chunk, got %d", w.ChunkCount())
	}
}

func TestHashTableChurn(t *testing.T) {
	w := newTestWorld(t)

	// Insert an 8x8x8 grid of chunks; the coordinate mix puts several of
	// them in the same bucket, so lookups have to walk chains.
	coords := make([]Coord, 0, 8*8*8)
	for x := -4; x < 4; x++ {
		for y := -4; y < 4; y++ {
			for z := -4; z < 4; z++ {
				c := Coord{x, y, z}
				coords = append(coords, c)
				w.EnsureChunk(c)
			}
		}
	}
	if w.ChunkCount() != len(coords) {
		t.Fatalf("expected %d chunks, got %d", len(coords), w.ChunkCount())
	}

	// Every chunk must be findable and unique.
	for _, c := range coords {
		ch := w.ChunkAt(c)
		if ch == nil {
			t.Fatalf("lost chunk %+v", c)
		}
		if ch.Coord != c {
			t.Fatalf("hash collision returned wrong chunk: want %+v got %+v", c, ch.Coord)
		}
	}

	// EnsureChunk must be idempotent.
	before := w.ChunkCount()
	w.EnsureChunk(coords[17])
	if w.ChunkCount() != before {
		t.Error("expected EnsureChunk to be idempotent")
	}
}

func TestActiveListBackIndexInvariant(t *testing.T) {
	w := newTestWorld(t)

	chunks := make([]*Chunk, 0, 10)
	for i := 0; i < 10; i++ {
		ch := w.EnsureChunk(Coord{i, 0, 0})
		w.ActivateChunk(ch)
		chunks = append(chunks, ch)
	}

	checkInvariant := func() {
		t.Helper()
		for i, ch := range w.ActiveChunks() {
			if ch.activeIdx != i {
				t.Fatalf("active list slot %d holds chunk with back index %d", i, ch.activeIdx)
			}
			if !ch.active {
				t.Fatalf("chunk on active list not flagged active")
			}
		}
	}
	checkInvariant()

	// Remove from the middle, the front, and the back.
	w.DeactivateChunk(chunks[4])
	checkInvariant()
	w.DeactivateChunk(chunks[0])
	checkInvariant()
	last := w.ActiveChunks()[w.ActiveCount()-1]
	w.DeactivateChunk(last)
	checkInvariant()

	if w.ActiveCount() != 7 {
		t.Errorf("expected 7 active chunks, got %d", w.ActiveCount())
	}

	// Deactivated chunks carry the sentinel index and re-activate cleanly.
	if chunks[4].activeIdx != noActiveIndex {
		t.Error("expected sentinel back index after removal")
	}
	w.ActivateChunk(chunks[4])
	checkInvariant()

	// Double activation must not duplicate.
	before := w.ActiveCount()
	w.ActivateChunk(chunks[4])
	if w.ActiveCount() != before {
		t.Error("expected idempotent activation")
	}
}

func TestActivateClearsStability(t *testing.T) {
	w := newTestWorld(t)
	ch := w.EnsureChunk(Coord{0, 0, 0})
	ch.stable = true
	ch.stableFrames = 42

	w.ActivateChunk(ch)

	if ch.Stable() || ch.StableFrames() != 0 {
		t.Error("expected activation to clear stable state")
	}
}

func TestMarkCellActive(t *testing.T) {
	w := newTestWorld(t)

	w.MarkCellActive(40, 3, -5)

	c, lx, ly, lz := CellToChunk(40, 3, -5)
	ch := w.ChunkAt(c)
	if ch == nil {
		t.Fatal("expected chunk created")
	}
	if !ch.Active() {
		t.Error("expected chunk on active list")
	}
	if !ch.PendingDirty() {
		t.Error("expected pending dirty region")
	}
	ch.BeginTick()
	b := ch.DirtyRegion()
	if b.MinX != lx || b.MinY != ly || b.MinZ != lz || b.MaxX != lx {
		t.Errorf("expected dirty box at local (%d,%d,%d), got %+v", lx, ly, lz, b)
	}
}

func TestNeighborRefCrossesChunks(t *testing.T) {
	w := newTestWorld(t)
	a := w.EnsureChunk(Coord{0, 0, 0})
	b := w.EnsureChunk(Coord{1, 0, 0})

	ref, ok := w.NeighborRef(a, Size-1, 5, 5, 1, 0, 0)
	if !ok {
		t.Fatal("expected neighbor across face")
	}
	if ref.Chunk != b || ref.LX != 0 || ref.LY != 5 || ref.LZ != 5 {
		t.Errorf("unexpected ref %+v", ref)
	}

	// Interior offsets stay in the same chunk.
	ref, ok = w.NeighborRef(a, 5, 5, 5, 0, 1, 0)
	if !ok || ref.Chunk != a || ref.LY != 6 {
		t.Errorf("unexpected interior ref %+v ok=%v", ref, ok)
	}

	// Missing chunks report !ok.
	if _, ok := w.NeighborRef(a, 5, 0, 5, 0, -1, 0); ok {
		t.Error("expected missing chunk to report !ok")
	}
}

func TestTouchWakesStableChunk(t *testing.T) {
	w := newTestWorld(t)
	a := w.EnsureChunk(Coord{0, 0, 0})
	a.stable = true
	a.stableFrames = 10

	ref, ok := w.NeighborRef(a, 3, 3, 3, 1, 0, 0)
	if !ok {
		t.Fatal("expected interior neighbor")
	}
	w.Touch(ref)

	if a.Stable() || !a.Active() {
		t.Error("expected touch to reactivate the chunk")
	}
}

func TestAccumulator(t *testing.T) {
	w := newTestWorld(t)
	sub := 1.0 / 60.0

	w.AddTime(sub * 2.5)

	steps := 0
	for w.ConsumeSubstep(sub) {
		steps++
	}
	if steps != 2 {
		t.Errorf("expected 2 substeps, got %d", steps)
	}
	if w.Accumulated() < sub*0.49 || w.Accumulated() > sub*0.51 {
		t.Errorf("expected ~half a substep left, got %f", w.Accumulated())
	}

	// Negative dt is ignored.
	w.AddTime(-1)
	if w.Accumulated() < 0 {
		t.Error("expected accumulator to stay non-negative")
	}
}

func TestCleanup(t *testing.T) {
	w := newTestWorld(t)
	for i := 0; i < 5; i++ {
		ch := w.EnsureChunk(Coord{i, 0, 0})
		w.ActivateChunk(ch)
	}
	w.AdvanceTick()
	w.AddTime(1)

	w.Cleanup()

	if w.ChunkCount() != 0 || w.ActiveCount() != 0 {
		t.Error("expected all chunks released")
	}
	if w.Tick() != 0 || w.Accumulated() != 0 {
		t.Error("expected tick state reset")
	}

	// World remains usable.
	if w.CellForWrite(0, 0, 0) == nil {
		t.Error("expected world usable after cleanup")
	}
}
