package world

// Size is the chunk edge length in cells. Chunks own Size³ cells in a flat
// array indexed (z·Size + y)·Size + x.
const (
	Size  = 32
	Size3 = Size * Size * Size
)

// Face names one of the six chunk faces. The order pairs opposites so
// Opposite is a XOR with 1.
type Face int

const (
	FaceXNeg Face = iota
	FaceXPos
	FaceYNeg
	FaceYPos
	FaceZNeg
	FaceZPos
	FaceCount
)

// Opposite returns the face on the other side of the shared boundary.
func (f Face) Opposite() Face { return f ^ 1 }

// faceOffsets maps each face to its chunk-coordinate delta.
var faceOffsets = [FaceCount][3]int{
	{-1, 0, 0}, {1, 0, 0},
	{0, -1, 0}, {0, 1, 0},
	{0, 0, -1}, {0, 0, 1},
}

// Coord addresses a chunk in the sparse grid.
type Coord struct {
	X, Y, Z int
}

// Shifted returns the coordinate of the chunk across the given face.
func (c Coord) Shifted(f Face) Coord {
	d := faceOffsets[f]
	return Coord{c.X + d[0], c.Y + d[1], c.Z + d[2]}
}

// Box is an axis-aligned region in local chunk coordinates, inclusive on
// both ends. The zero-extent empty box has Min > Max.
type Box struct {
	MinX, MinY, MinZ int
	MaxX, MaxY, MaxZ int
}

// emptyBox collapses to no cells.
func emptyBox() Box {
	return Box{MinX: Size, MinY: Size, MinZ: Size, MaxX: -1, MaxY: -1, MaxZ: -1}
}

// Empty reports whether the box covers no cells.
func (b Box) Empty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY || b.MinZ > b.MaxZ
}

// Add expands the box to include the local point.
func (b *Box) Add(x, y, z int) {
	if x < b.MinX {
		b.MinX = x
	}
	if y < b.MinY {
		b.MinY = y
	}
	if z < b.MinZ {
		b.MinZ = z
	}
	if x > b.MaxX {
		b.MaxX = x
	}
	if y > b.MaxY {
		b.MaxY = y
	}
	if z > b.MaxZ {
		b.MaxZ = z
	}
}

// Inflated grows the box by n cells in every direction, clamped to the
// chunk bounds. Subsystems scan the inflated box so that cells adjacent to
// a dirty cell get processed too.
func (b Box) Inflated(n int) Box {
	if b.Empty() {
		return b
	}
	grow := func(v, d, lo, hi int) int {
		v += d
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
	return Box{
		MinX: grow(b.MinX, -n, 0, Size-1),
		MinY: grow(b.MinY, -n, 0, Size-1),
		MinZ: grow(b.MinZ, -n, 0, Size-1),
		MaxX: grow(b.MaxX, n, 0, Size-1),
		MaxY: grow(b.MaxY, n, 0, Size-1),
		MaxZ: grow(b.MaxZ, n, 0, Size-1),
	}
}

// noActiveIndex marks a chunk that is not on the active list.
const noActiveIndex = -1

// Chunk is a dense Size³ block of cells plus activity metadata. Chunks are
// created by the world on first write and linked to their six face
// neighbors; neighbor handles are non-owning and maintained by the world
// across every chunk lifecycle event.
type Chunk struct {
	Coord Coord

	cells     [Size3]Cell
	neighbors [FaceCount]*Chunk

	// dirty is the region consumed by subsystems this tick; pending
	// accumulates writes for the next tick.
	dirty   Box
	pending Box

	active       bool
	stable       bool
	stableFrames int
	activeIdx    int

	hashNext *Chunk
}

func newChunk(c Coord) *Chunk {
	return &Chunk{
		Coord:     c,
		dirty:     emptyBox(),
		pending:   emptyBox(),
		activeIdx: noActiveIndex,
	}
}

// index flattens local coordinates.
func index(lx, ly, lz int) int {
	return (lz*Size+ly)*Size + lx
}

// Cell returns the cell at local coordinates in [0, Size)³.
func (ch *Chunk) Cell(lx, ly, lz int) *Cell {
	return &ch.cells[index(lx, ly, lz)]
}

// Neighbor returns the cached chunk across the given face, or nil.
func (ch *Chunk) Neighbor(f Face) *Chunk {
	return ch.neighbors[f]
}

// MarkDirty expands the pending dirty region to include the local point and
// resets equilibrium progress. The world promotes the chunk onto the active
// list separately.
func (ch *Chunk) MarkDirty(lx, ly, lz int) {
	ch.pending.Add(lx, ly, lz)
	ch.stable = false
	ch.stableFrames = 0
}

// DirtyRegion returns the region to process this tick.
func (ch *Chunk) DirtyRegion() Box { return ch.dirty }

// PendingDirty reports whether any cell was written during the current tick.
func (ch *Chunk) PendingDirty() bool { return !ch.pending.Empty() }

// BeginTick rotates the pending region into the consumable dirty region.
// Called by the stepper before subsystems run.
func (ch *Chunk) BeginTick() {
	ch.dirty = ch.pending
	ch.pending = emptyBox()
}

// ResetDirty collapses the consumed dirty region. Called at tick end after
// the subsystems have consumed it.
func (ch *Chunk) ResetDirty() {
	ch.dirty = emptyBox()
}

// Active reports whether the chunk is on the world's active list.
func (ch *Chunk) Active() bool { return ch.active }

// Stable reports whether the chunk is currently skipped by subsystems.
func (ch *Chunk) Stable() bool { return ch.stable }

// StableFrames returns the count of consecutive quiescent ticks.
func (ch *Chunk) StableFrames() int { return ch.stableFrames }

// MarkStableTick records a quiescent tick and promotes the chunk to stable
// once the threshold is reached. Returns true when the chunk newly became
// stable.
func (ch *Chunk) MarkStableTick(stableAfter int) bool {
	ch.stableFrames++
	if !ch.stable && ch.stableFrames >= stableAfter {
		ch.stable = true
		return true
	}
	return false
}
