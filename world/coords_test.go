package world

import "testing"

func TestWorldCellRoundTrip(t *testing.T) {
	w := newTestWorld(t)

	// world_to_cell ∘ cell_to_world is the identity on cell coordinates.
	coords := [][3]int{
		{0, 0, 0}, {1, 2, 3}, {-1, -2, -3},
		{31, 31, 31}, {32, 0, -32}, {-100, 50, 999},
	}
	for _, c := range coords {
		wx, wy, wz := w.CellToWorld(c[0], c[1], c[2])
		cx, cy, cz := w.WorldToCell(wx, wy, wz)
		if cx != c[0] || cy != c[1] || cz != c[2] {
			t.Errorf("round trip of %v gave (%d,%d,%d)", c, cx, cy, cz)
		}
	}
}

func TestCellToWorldIsCellCenter(t *testing.T) {
	w := newTestWorld(t)
	s := w.cfg.World.CellSize

	wx, wy, wz := w.CellToWorld(0, 0, 0)
	if wx != s/2 || wy != s/2 || wz != s/2 {
		t.Errorf("expected center of cell 0, got (%f,%f,%f)", wx, wy, wz)
	}
}

func TestCellToChunk(t *testing.T) {
	tests := []struct {
		cell  [3]int
		chunk Coord
		local [3]int
	}{
		{[3]int{0, 0, 0}, Coord{0, 0, 0}, [3]int{0, 0, 0}},
		{[3]int{31, 31, 31}, Coord{0, 0, 0}, [3]int{31, 31, 31}},
		{[3]int{32, 0, 0}, Coord{1, 0, 0}, [3]int{0, 0, 0}},
		{[3]int{-1, 0, 0}, Coord{-1, 0, 0}, [3]int{31, 0, 0}},
		{[3]int{-32, -33, 64}, Coord{-1, -2, 2}, [3]int{0, 31, 0}},
	}
	for _, tt := range tests {
		c, lx, ly, lz := CellToChunk(tt.cell[0], tt.cell[1], tt.cell[2])
		if c != tt.chunk {
			t.Errorf("cell %v: expected chunk %+v, got %+v", tt.cell, tt.chunk, c)
		}
		if lx != tt.local[0] || ly != tt.local[1] || lz != tt.local[2] {
			t.Errorf("cell %v: expected local %v, got (%d,%d,%d)", tt.cell, tt.local, lx, ly, lz)
		}
		// Locals always land in [0, Size).
		if lx < 0 || lx >= Size || ly < 0 || ly >= Size || lz < 0 || lz >= Size {
			t.Errorf("cell %v: local out of range", tt.cell)
		}
	}
}

func TestChunkToCellInverse(t *testing.T) {
	for _, c := range []Coord{{0, 0, 0}, {1, -2, 3}, {-7, 0, 7}} {
		cx, cy, cz := ChunkToCell(c)
		got, lx, ly, lz := CellToChunk(cx, cy, cz)
		if got != c || lx != 0 || ly != 0 || lz != 0 {
			t.Errorf("chunk %+v: round trip gave %+v local (%d,%d,%d)", c, got, lx, ly, lz)
		}
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{0, 32, 0}, {31, 32, 0}, {32, 32, 1},
		{-1, 32, -1}, {-32, 32, -1}, {-33, 32, -2},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("floorDiv(%d,%d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestInCellRange(t *testing.T) {
	if !InCellRange(0, 0, 0) || !InCellRange(-1000, 1000, 0) {
		t.Error("expected ordinary coordinates in range")
	}
	if InCellRange(MaxCellCoord, 0, 0) || InCellRange(0, -MaxCellCoord, 0) {
		t.Error("expected boundary coordinates out of range")
	}
}
