// Package material defines the closed set of simulated materials and their
// physical constants. The registry is an immutable process-lifetime table
// indexed by ID; operations that vary per material consult it instead of
// switching on the identifier.
package material

// ID identifies a material. The set is closed: IDs index dense per-cell
// arrays and the presence bitmask, so Count must stay <= MaxMaterials.
type ID uint8

const (
	None ID = iota
	Air
	Water
	Rock
	Dirt
	Nitrogen
	Oxygen
	CarbonDioxide
	Steam

	// Count is the number of valid material IDs, including None.
	Count

	// MaxMaterials bounds the per-cell entry array and presence bitmask width.
	MaxMaterials = 16
)

// Phase is the intrinsic state of matter of a material. Phase never depends
// on temperature; cross-phase transitions convert one ID to another.
type Phase uint8

const (
	PhaseNone Phase = iota
	PhaseSolid
	PhaseLiquid
	PhaseGas
)

// Color is an RGBA render color for UI overlays.
type Color struct {
	R, G, B, A uint8
}

// Properties holds the physical constants of one material.
type Properties struct {
	Name      string
	MolarMass float64 // kg/mol
	Phase     Phase

	HeatCapacity float64 // J/(mol·K), molar, single value (phase is intrinsic)

	MeltingPoint float64 // K, informational
	BoilingPoint float64 // K, informational
	FusionHeat   float64 // J/mol, enthalpy of fusion, informational
	VaporHeat    float64 // J/mol, enthalpy of vaporization

	Conductivity float64 // W/(m·K)
	Viscosity    float64 // Pa·s

	Oxidizer       bool
	Fuel           bool
	IgnitionTemp   float64 // K, 0 when not a fuel
	CombustionHeat float64 // J/mol released when burned

	RenderColor Color
}

// registry is the const lookup table. Values are standard-conditions
// constants; rock and dirt use silicate bulk approximations.
var registry = [Count]Properties{
	None: {
		Name: "none",
	},
	Air: {
		Name:         "air",
		MolarMass:    0.02897,
		Phase:        PhaseGas,
		HeatCapacity: 29.1,
		BoilingPoint: 78.8,
		Conductivity: 0.024,
		Viscosity:    1.8e-5,
		Oxidizer:     true,
		RenderColor:  Color{200, 220, 255, 40},
	},
	Water: {
		Name:         "water",
		MolarMass:    0.01802,
		Phase:        PhaseLiquid,
		HeatCapacity: 75.3,
		MeltingPoint: 273.15,
		BoilingPoint: 373.15,
		FusionHeat:   6010,
		VaporHeat:    40650,
		Conductivity: 0.6,
		Viscosity:    1.0e-3,
		RenderColor:  Color{40, 90, 220, 180},
	},
	Rock: {
		Name:         "rock",
		MolarMass:    0.060,
		Phase:        PhaseSolid,
		HeatCapacity: 50.4,
		MeltingPoint: 1473,
		BoilingPoint: 3200,
		FusionHeat:   25500,
		VaporHeat:    470000,
		Conductivity: 2.5,
		Viscosity:    1e20,
		RenderColor:  Color{120, 115, 110, 255},
	},
	Dirt: {
		Name:         "dirt",
		MolarMass:    0.058,
		Phase:        PhaseSolid,
		HeatCapacity: 46.4,
		MeltingPoint: 1373,
		BoilingPoint: 3000,
		FusionHeat:   21000,
		VaporHeat:    420000,
		Conductivity: 1.5,
		Viscosity:    1e18,
		RenderColor:  Color{110, 80, 50, 255},
	},
	Nitrogen: {
		Name:         "nitrogen",
		MolarMass:    0.02801,
		Phase:        PhaseGas,
		HeatCapacity: 29.1,
		MeltingPoint: 63.2,
		BoilingPoint: 77.4,
		FusionHeat:   720,
		VaporHeat:    5560,
		Conductivity: 0.026,
		Viscosity:    1.8e-5,
		RenderColor:  Color{180, 190, 230, 30},
	},
	Oxygen: {
		Name:         "oxygen",
		MolarMass:    0.032,
		Phase:        PhaseGas,
		HeatCapacity: 29.4,
		MeltingPoint: 54.4,
		BoilingPoint: 90.2,
		FusionHeat:   440,
		VaporHeat:    6820,
		Conductivity: 0.026,
		Viscosity:    2.0e-5,
		Oxidizer:     true,
		RenderColor:  Color{160, 210, 255, 30},
	},
	CarbonDioxide: {
		Name:         "carbon_dioxide",
		MolarMass:    0.04401,
		Phase:        PhaseGas,
		HeatCapacity: 37.1,
		MeltingPoint: 216.6,
		BoilingPoint: 194.7, // sublimation point at 1 atm
		FusionHeat:   9020,
		VaporHeat:    16700,
		Conductivity: 0.016,
		Viscosity:    1.5e-5,
		RenderColor:  Color{150, 150, 160, 50},
	},
	Steam: {
		Name:         "steam",
		MolarMass:    0.01802,
		Phase:        PhaseGas,
		HeatCapacity: 36.0,
		MeltingPoint: 273.15,
		BoilingPoint: 373.15,
		FusionHeat:   6010,
		VaporHeat:    40650,
		Conductivity: 0.02,
		Viscosity:    1.3e-5,
		RenderColor:  Color{230, 230, 240, 90},
	},
}

// Get returns the properties of id. Invalid IDs return the None entry.
func Get(id ID) *Properties {
	if id >= Count {
		return &registry[None]
	}
	return &registry[id]
}

// Valid reports whether id names a real material (not None, in range).
func Valid(id ID) bool {
	return id > None && id < Count
}

// IsSolid reports whether id's intrinsic phase is solid.
func IsSolid(id ID) bool { return Get(id).Phase == PhaseSolid }

// IsLiquid reports whether id's intrinsic phase is liquid.
func IsLiquid(id ID) bool { return Get(id).Phase == PhaseLiquid }

// IsGas reports whether id's intrinsic phase is gas.
func IsGas(id ID) bool { return Get(id).Phase == PhaseGas }

// VaporOf returns the gas-phase counterpart of a liquid, or None when the
// material has no modeled vapor.
func VaporOf(id ID) ID {
	if id == Water {
		return Steam
	}
	return None
}

// CondensateOf returns the liquid-phase counterpart of a gas, or None.
func CondensateOf(id ID) ID {
	if id == Steam {
		return Water
	}
	return None
}

// String returns the registry name of id.
func (id ID) String() string {
	return Get(id).Name
}
