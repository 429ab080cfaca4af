package systems

import (
	"testing"

	"github.com/prizos/thermovox/material"
)

func TestCombustionNoOpWithoutFuel(t *testing.T) {
	w := newTestWorld(t)
	s := NewStepper(w)

	// Oxidizer plus hot non-fuel: nothing in the registry burns, so the
	// stage must leave the cell untouched.
	cell := w.CellForWrite(0, 0, 0)
	oxCp := material.Get(material.Oxygen).HeatCapacity
	cell.AddMaterial(material.Oxygen, 3, 3*oxCp*900)
	waterCp := material.Get(material.Water).HeatCapacity
	cell.AddMaterial(material.Water, 2, 2*waterCp*900)
	w.MarkCellActive(0, 0, 0)

	stepTicks(s, 50, FlagCombustion)

	got := w.Cell(0, 0, 0)
	if got.Moles(material.Oxygen) != 3 || got.Moles(material.Water) != 2 {
		t.Error("expected reactants untouched without a fuel")
	}
	if got.Moles(material.CarbonDioxide) != 0 {
		t.Error("expected no combustion products")
	}
}

func TestCombustionGatedOffByDefault(t *testing.T) {
	if FlagsDefault&FlagCombustion != 0 {
		t.Error("expected combustion outside the default pipeline")
	}
	if FlagsAll&FlagCombustion == 0 {
		t.Error("expected combustion reachable via FlagsAll")
	}
}
