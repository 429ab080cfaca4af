package systems

import (
	"time"

	"github.com/prizos/thermovox/config"
	"github.com/prizos/thermovox/world"
)

// Flags selects which pipeline stages run. Stages keep their fixed order
// regardless of which bits are set; a cleared bit is a silent no-op.
type Flags uint32

const (
	FlagEquilibrate Flags = 1 << iota
	FlagConduction
	FlagRadiation
	FlagFlow
	FlagGas
	FlagPhase
	FlagCombustion

	// FlagsDefault is the standard pipeline: equilibration, conduction,
	// liquid flow, gas diffusion. Radiation, phase change, and combustion
	// are opt-in.
	FlagsDefault = FlagEquilibrate | FlagConduction | FlagFlow | FlagGas

	// FlagsAll enables every stage.
	FlagsAll = FlagEquilibrate | FlagConduction | FlagRadiation | FlagFlow |
		FlagGas | FlagPhase | FlagCombustion
)

// PerfRecorder receives per-stage step timings. Satisfied by
// telemetry.PerfStats; nil disables timing entirely.
type PerfRecorder interface {
	Record(id string, d time.Duration)
}

// Stepper advances the world by fixed substeps. Callers pass arbitrary
// delta times; the stepper accumulates them on the world and runs one
// pipeline pass per elapsed substep, so simulation rate is decoupled from
// caller rate. A step runs to completion and is infallible: all stage
// arithmetic clamps internally.
type Stepper struct {
	w   *world.World
	cfg *config.Config

	heat       *HeatSystem
	flow       *FlowSystem
	gas        *GasSystem
	phase      *PhaseSystem
	combustion *CombustionSystem

	// Perf, when set, receives per-stage durations once per tick.
	Perf PerfRecorder
}

// NewStepper creates a stepper and its pipeline stages for the world.
func NewStepper(w *world.World) *Stepper {
	cfg := w.Config()
	return &Stepper{
		w:          w,
		cfg:        cfg,
		heat:       NewHeatSystem(w),
		flow:       NewFlowSystem(w),
		gas:        NewGasSystem(w),
		phase:      NewPhaseSystem(w),
		combustion: NewCombustionSystem(w),
	}
}

// Phase returns the phase-change stage, exposing its latent-heat counters.
func (s *Stepper) Phase() *PhaseSystem { return s.phase }

// Step advances the simulation by dt seconds with the default pipeline.
func (s *Stepper) Step(dt float64) {
	s.StepFlags(dt, FlagsDefault)
}

// StepFlags advances the simulation by dt seconds running only the stages
// selected by flags. Leftover subtick time stays in the accumulator for the
// next call.
func (s *Stepper) StepFlags(dt float64, flags Flags) {
	s.w.AddTime(dt)
	sub := s.cfg.Physics.SubstepDT
	for s.w.ConsumeSubstep(sub) {
		s.tick(flags)
	}
}

// stage pairs a gate bit with the chunk processor it enables.
type stage struct {
	id   string
	flag Flags
	run  func(ch *world.Chunk, box world.Box)
}

// tick runs one pipeline pass over the active chunk list.
func (s *Stepper) tick(flags Flags) {
	// Rotate each chunk's pending writes into the consumable dirty region
	// before any stage runs, so cross-chunk ownership checks see a stable
	// view of what every chunk will process this tick.
	active := s.w.ActiveChunks()
	passLen := len(active)
	for i := 0; i < passLen; i++ {
		if ch := active[i]; !ch.Stable() {
			ch.BeginTick()
		}
	}

	stages := [...]stage{
		{"equilibrate", FlagEquilibrate, s.heat.Equilibrate},
		{"conduction", FlagConduction, s.heat.Conduct},
		{"radiation", FlagRadiation, s.heat.Radiate},
		{"flow", FlagFlow, s.flow.Process},
		{"gas", FlagGas, s.gas.Process},
		{"phase", FlagPhase, s.phase.Process},
		{"combustion", FlagCombustion, s.combustion.Process},
	}

	var timings [len(stages)]time.Duration

	// The active list may grow while stages run (writes into neighboring
	// chunks activate them); chunks appended mid-pass are picked up next
	// tick. Nothing is removed until the equilibrium phase below, so the
	// snapshot stays coherent.
	for i := 0; i < passLen; i++ {
		ch := active[i]
		if ch.Stable() {
			continue
		}
		box := ch.DirtyRegion().Inflated(1)
		if box.Empty() {
			continue
		}
		for si := range stages {
			st := &stages[si]
			if flags&st.flag == 0 {
				continue
			}
			if s.Perf != nil {
				start := time.Now()
				st.run(ch, box)
				timings[si] += time.Since(start)
			} else {
				st.run(ch, box)
			}
		}
	}

	if s.Perf != nil {
		for si := range stages {
			if flags&stages[si].flag != 0 {
				s.Perf.Record(stages[si].id, timings[si])
			}
		}
	}

	// Equilibrium phase: quiescent chunks count toward stability and are
	// eventually removed from the active list. Iterate backwards so the
	// swap-removal cannot skip entries.
	stableAfter := s.cfg.Stability.StableTicks
	dormantAfter := s.cfg.Stability.DormantTicks
	list := s.w.ActiveChunks()
	for i := len(list) - 1; i >= 0; i-- {
		ch := list[i]
		ch.ResetDirty()
		if ch.PendingDirty() {
			continue
		}
		ch.MarkStableTick(stableAfter)
		if ch.StableFrames() >= dormantAfter {
			s.w.DeactivateChunk(ch)
		}
	}

	s.w.AdvanceTick()
}

// processesThisTick reports whether the chunk runs stages during the
// current pass: it is on the active list, not stable, and had dirty cells
// rotated in at tick start.
func processesThisTick(ch *world.Chunk) bool {
	return ch != nil && ch.Active() && !ch.Stable() && !ch.DirtyRegion().Empty()
}

// inProcessingBox reports whether the local coordinate falls inside the
// region the chunk scans this tick.
func inProcessingBox(ch *world.Chunk, lx, ly, lz int) bool {
	b := ch.DirtyRegion().Inflated(1)
	return lx >= b.MinX && lx <= b.MaxX &&
		ly >= b.MinY && ly <= b.MaxY &&
		lz >= b.MinZ && lz <= b.MaxZ
}

// pairOwnedElsewhere reports whether the face pair between a cell in ch and
// the referenced neighbor in another chunk will be handled by that chunk's
// own +axis scan this tick. Stages process the +x/+y/+z neighbor from each
// cell so every face is touched once per pass; a pair reaching backwards
// across a chunk boundary is handled locally only when the neighboring
// chunk will not process it.
func pairOwnedElsewhere(ref world.CellRef) bool {
	return processesThisTick(ref.Chunk) && inProcessingBox(ref.Chunk, ref.LX, ref.LY, ref.LZ)
}

// forEachCell visits every local coordinate of the box in x-fastest order.
func forEachCell(box world.Box, fn func(lx, ly, lz int)) {
	for lz := box.MinZ; lz <= box.MaxZ; lz++ {
		for ly := box.MinY; ly <= box.MaxY; ly++ {
			for lx := box.MinX; lx <= box.MaxX; lx++ {
				fn(lx, ly, lz)
			}
		}
	}
}
