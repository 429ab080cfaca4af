package world

import (
	"github.com/prizos/thermovox/config"
)

// hashBuckets sizes the chunk hash table. Power of two so the bucket index
// is a mask; 1024 buckets keep chains short for a several-hundred-chunk
// working set.
const hashBuckets = 1024

// World is the sparse chunk container: a separate-chaining hash table keyed
// by chunk coordinate, a dense active-chunk list with back indices for O(1)
// removal, and the global tick state. All mutation happens on the caller's
// goroutine; a step is a single sequential pass and there is no lock.
type World struct {
	cfg *config.Config

	buckets    [hashBuckets]*Chunk
	chunkCount int

	active []*Chunk

	tick        uint64
	accumulator float64
}

// emptyCell is the immutable sentinel returned for reads of cells whose
// chunk does not exist. Callers must not mutate it.
var emptyCell Cell

// New creates an empty world using the given configuration.
func New(cfg *config.Config) *World {
	return &World{cfg: cfg}
}

// Config returns the world's configuration.
func (w *World) Config() *config.Config { return w.cfg }

// hashCoord mixes the three chunk coordinates into a bucket index.
func hashCoord(c Coord) uint32 {
	h := uint32(c.X)*73856093 ^ uint32(c.Y)*19349663 ^ uint32(c.Z)*83492791
	return h & (hashBuckets - 1)
}

// ChunkAt returns the chunk at the given chunk coordinate, or nil.
func (w *World) ChunkAt(c Coord) *Chunk {
	for ch := w.buckets[hashCoord(c)]; ch != nil; ch = ch.hashNext {
		if ch.Coord == c {
			return ch
		}
	}
	return nil
}

// EnsureChunk returns the chunk at c, creating it and wiring the six
// neighbor links when absent. Chunk lifecycle is centralized here so the
// cached handles can never go stale.
func (w *World) EnsureChunk(c Coord) *Chunk {
	if ch := w.ChunkAt(c); ch != nil {
		return ch
	}
	ch := newChunk(c)
	b := hashCoord(c)
	ch.hashNext = w.buckets[b]
	w.buckets[b] = ch
	w.chunkCount++

	for f := Face(0); f < FaceCount; f++ {
		n := w.ChunkAt(c.Shifted(f))
		if n == nil {
			continue
		}
		ch.neighbors[f] = n
		n.neighbors[f.Opposite()] = ch
	}
	return ch
}

// removeChunk unlinks a chunk from the hash table, the active list, and its
// neighbors' cached handles. Cleanup does not go through it: it releases
// every chunk at once.
func (w *World) removeChunk(ch *Chunk) {
	b := hashCoord(ch.Coord)
	for p := &w.buckets[b]; *p != nil; p = &(*p).hashNext {
		if *p == ch {
			*p = ch.hashNext
			ch.hashNext = nil
			w.chunkCount--
			break
		}
	}
	for f := Face(0); f < FaceCount; f++ {
		if n := ch.neighbors[f]; n != nil {
			n.neighbors[f.Opposite()] = nil
			ch.neighbors[f] = nil
		}
	}
	w.deactivateChunk(ch)
}

// ChunkCount returns the number of allocated chunks.
func (w *World) ChunkCount() int { return w.chunkCount }

// ForEachChunk visits every chunk in deterministic bucket order.
func (w *World) ForEachChunk(fn func(*Chunk)) {
	for i := range w.buckets {
		for ch := w.buckets[i]; ch != nil; ch = ch.hashNext {
			fn(ch)
		}
	}
}

// --- Cell access ---

// Cell returns the cell at world cell coordinates for reading. Cells in
// chunks that do not exist read as the immutable vacuum sentinel.
func (w *World) Cell(cx, cy, cz int) *Cell {
	c, lx, ly, lz := CellToChunk(cx, cy, cz)
	ch := w.ChunkAt(c)
	if ch == nil {
		return &emptyCell
	}
	return ch.Cell(lx, ly, lz)
}

// CellForWrite returns the cell at world cell coordinates, creating the
// owning chunk if needed. Out-of-range coordinates return nil.
func (w *World) CellForWrite(cx, cy, cz int) *Cell {
	if !InCellRange(cx, cy, cz) {
		return nil
	}
	c, lx, ly, lz := CellToChunk(cx, cy, cz)
	return w.EnsureChunk(c).Cell(lx, ly, lz)
}

// IsSentinel reports whether a cell pointer is the shared vacuum sentinel.
func IsSentinel(c *Cell) bool { return c == &emptyCell }

// MarkCellActive marks the cell dirty and promotes its chunk onto the
// active list, creating the chunk if needed. This is the activity hint used
// by tool APIs and external collaborators.
func (w *World) MarkCellActive(cx, cy, cz int) {
	if !InCellRange(cx, cy, cz) {
		return
	}
	c, lx, ly, lz := CellToChunk(cx, cy, cz)
	ch := w.EnsureChunk(c)
	ch.MarkDirty(lx, ly, lz)
	w.ActivateChunk(ch)
}

// --- Active list ---

// ActivateChunk appends the chunk to the active list if it is not already
// on it, storing the back index for O(1) removal, and clears any stable
// state.
func (w *World) ActivateChunk(ch *Chunk) {
	ch.stable = false
	ch.stableFrames = 0
	if ch.active {
		return
	}
	ch.active = true
	ch.activeIdx = len(w.active)
	w.active = append(w.active, ch)
}

// deactivateChunk removes the chunk from the active list by swapping the
// last element into its slot and patching that element's back index.
func (w *World) deactivateChunk(ch *Chunk) {
	if !ch.active {
		return
	}
	i := ch.activeIdx
	last := len(w.active) - 1
	moved := w.active[last]
	w.active[i] = moved
	moved.activeIdx = i
	w.active[last] = nil
	w.active = w.active[:last]
	ch.active = false
	ch.activeIdx = noActiveIndex
}

// DeactivateChunk removes the chunk from the active list. The chunk stays
// in the hash table and is reinstated by any tool API or neighbor write.
func (w *World) DeactivateChunk(ch *Chunk) { w.deactivateChunk(ch) }

// ActiveChunks returns the live active list. The stepper iterates it by
// index so that swap-removals during the pass stay coherent; other callers
// must treat it as read-only.
func (w *World) ActiveChunks() []*Chunk { return w.active }

// ActiveCount returns the number of chunks on the active list.
func (w *World) ActiveCount() int { return len(w.active) }

// --- Tick state ---

// Tick returns the global tick counter.
func (w *World) Tick() uint64 { return w.tick }

// AdvanceTick increments the global tick counter.
func (w *World) AdvanceTick() { w.tick++ }

// AddTime adds caller time to the substep accumulator.
func (w *World) AddTime(dt float64) {
	if dt > 0 {
		w.accumulator += dt
	}
}

// ConsumeSubstep subtracts one substep from the accumulator if enough time
// has accrued, reporting whether a pipeline pass should run.
func (w *World) ConsumeSubstep(substep float64) bool {
	if w.accumulator < substep {
		return false
	}
	w.accumulator -= substep
	return true
}

// Accumulated returns the leftover subtick time.
func (w *World) Accumulated() float64 { return w.accumulator }

// Cleanup releases every chunk and resets tick state. The world is usable
// again afterwards.
func (w *World) Cleanup() {
	for i := range w.buckets {
		for ch := w.buckets[i]; ch != nil; {
			next := ch.hashNext
			for f := Face(0); f < FaceCount; f++ {
				ch.neighbors[f] = nil
			}
			ch.hashNext = nil
			ch.active = false
			ch.activeIdx = noActiveIndex
			ch = next
		}
		w.buckets[i] = nil
	}
	w.active = w.active[:0]
	w.chunkCount = 0
	w.tick = 0
	w.accumulator = 0
}
