package world

import "testing"

func TestChunkIndexing(t *testing.T) {
	ch := newChunk(Coord{0, 0, 0})

	// Distinct local coordinates must address distinct cells.
	a := ch.Cell(0, 0, 0)
	b := ch.Cell(Size-1, Size-1, Size-1)
	c := ch.Cell(3, 7, 11)
	if a == b || a == c || b == c {
		t.Fatal("expected distinct cells for distinct coordinates")
	}

	// Flattened layout is (z*Size + y)*Size + x.
	if got := index(1, 2, 3); got != (3*Size+2)*Size+1 {
		t.Errorf("unexpected flat index %d", got)
	}
}

func TestDirtyRegionGrowth(t *testing.T) {
	ch := newChunk(Coord{0, 0, 0})

	if !ch.pending.Empty() {
		t.Fatal("expected fresh chunk to have empty pending region")
	}

	ch.MarkDirty(5, 6, 7)
	ch.MarkDirty(2, 9, 3)
	ch.BeginTick()

	b := ch.DirtyRegion()
	if b.MinX != 2 || b.MinY != 6 || b.MinZ != 3 {
		t.Errorf("unexpected min corner: %+v", b)
	}
	if b.MaxX != 5 || b.MaxY != 9 || b.MaxZ != 7 {
		t.Errorf("unexpected max corner: %+v", b)
	}

	ch.ResetDirty()
	if !ch.DirtyRegion().Empty() {
		t.Error("expected reset to collapse the box")
	}
}

func TestBoxInflatedClamps(t *testing.T) {
	b := emptyBox()
	b.Add(0, 15, 31)

	in := b.Inflated(1)
	if in.MinX != 0 {
		t.Errorf("expected MinX clamped at 0, got %d", in.MinX)
	}
	if in.MaxZ != Size-1 {
		t.Errorf("expected MaxZ clamped at %d, got %d", Size-1, in.MaxZ)
	}
	if in.MinY != 14 || in.MaxY != 16 {
		t.Errorf("expected Y range [14,16], got [%d,%d]", in.MinY, in.MaxY)
	}

	if !emptyBox().Inflated(1).Empty() {
		t.Error("expected inflating an empty box to stay empty")
	}
}

func TestMarkDirtyResetsStability(t *testing.T) {
	ch := newChunk(Coord{0, 0, 0})
	ch.stable = true
	ch.stableFrames = 99

	ch.MarkDirty(1, 1, 1)

	if ch.Stable() {
		t.Error("expected dirty write to clear stable flag")
	}
	if ch.StableFrames() != 0 {
		t.Error("expected dirty write to reset stable counter")
	}
}

func TestStablePromotion(t *testing.T) {
	ch := newChunk(Coord{0, 0, 0})

	for i := 0; i < 4; i++ {
		if ch.MarkStableTick(5) {
			t.Fatalf("premature promotion after %d ticks", i+1)
		}
	}
	if !ch.MarkStableTick(5) {
		t.Fatal("expected promotion on the fifth quiescent tick")
	}
	if !ch.Stable() {
		t.Error("expected chunk marked stable")
	}
	// Further quiescent ticks keep counting without re-reporting promotion.
	if ch.MarkStableTick(5) {
		t.Error("expected no repeat promotion")
	}
}

func TestFaceOpposite(t *testing.T) {
	pairs := [][2]Face{
		{FaceXNeg, FaceXPos},
		{FaceYNeg, FaceYPos},
		{FaceZNeg, FaceZPos},
	}
	for _, p := range pairs {
		if p[0].Opposite() != p[1] || p[1].Opposite() != p[0] {
			t.Errorf("faces %v and %v are not opposites", p[0], p[1])
		}
	}
}
