// Package systems implements the physics pipeline: intra-cell thermal
// equilibration, Fourier conduction, gravity-driven liquid flow, gas
// diffusion, and the flag-gated phase-change and combustion stages, driven
// over the world's active chunk set by the fixed-substep stepper.
package systems

// SystemInfo describes a pipeline stage for UI display and perf tracking.
type SystemInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this stage does
	Flag        Flags  // Gate bit in the stepper flags mask
	Default     bool   // Part of the default pipeline
}

// SystemRegistry holds metadata about all pipeline stages. This centralizes
// stage naming so telemetry, flag handling, and any embedding UI stay in
// sync.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// NewSystemRegistry creates a registry with all known stages.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds all known stages in pipeline order.
// Update this when adding new stages.
func (r *SystemRegistry) registerDefaults() {
	r.Register(SystemInfo{ID: "equilibrate", Name: "Equilibrate", Description: "Redistributes energy among a cell's materials", Flag: FlagEquilibrate, Default: true})
	r.Register(SystemInfo{ID: "conduction", Name: "Conduction", Description: "Fourier heat conduction between neighboring cells", Flag: FlagConduction, Default: true})
	r.Register(SystemInfo{ID: "radiation", Name: "Radiation", Description: "Heat loss to the ambient environment", Flag: FlagRadiation})
	r.Register(SystemInfo{ID: "flow", Name: "Flow", Description: "Gravity-driven liquid transfer and spreading", Flag: FlagFlow, Default: true})
	r.Register(SystemInfo{ID: "gas", Name: "Gas", Description: "Isotropic gas diffusion with thermal rise", Flag: FlagGas, Default: true})
	r.Register(SystemInfo{ID: "phase", Name: "Phase", Description: "Boiling and condensation with latent heat", Flag: FlagPhase})
	r.Register(SystemInfo{ID: "combustion", Name: "Combustion", Description: "Fuel/oxidizer bookkeeping", Flag: FlagCombustion})
}

// Register adds a stage to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
	r.byID[info.ID] = info
}

// Get returns stage info by ID.
func (r *SystemRegistry) Get(id string) (SystemInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a stage ID.
// Falls back to the ID itself if not found.
func (r *SystemRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered stages in pipeline order.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// IDs returns all stage IDs in pipeline order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
