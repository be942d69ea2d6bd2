package cloth

import (
	"errors"
	"testing"

	"github.com/Faultbox/clothsim/pkg/math"
)

func TestAssignMasses_PinnedInverseMassIsZero(t *testing.T) {
	mesh, topRow, err := NewGrid(5, 5, 0.5)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	pinned, err := PinIndices(len(mesh.Positions), topRow)
	if err != nil {
		t.Fatalf("PinIndices failed: %v", err)
	}

	policies := []MassPolicy{
		DefaultMassPolicy(),
		{Mode: MassUniform, Mass: 0.25},
	}

	for _, policy := range policies {
		t.Run(policy.Mode.String(), func(t *testing.T) {
			masses, inv, err := AssignMasses(mesh.Positions, pinned, policy)
			if err != nil {
				t.Fatalf("AssignMasses failed: %v", err)
			}
			for i := range mesh.Positions {
				if pinned[i] {
					if inv[i] != 0 {
						t.Errorf("pinned vertex %d: inverse mass = %v, want exactly 0", i, inv[i])
					}
					if masses[i] != 0 {
						t.Errorf("pinned vertex %d: mass = %v, want 0", i, masses[i])
					}
					continue
				}
				if !(inv[i] > 0) {
					t.Errorf("free vertex %d: inverse mass = %v, want > 0", i, inv[i])
				}
			}
		})
	}
}

func TestAssignMasses_DistanceGraded(t *testing.T) {
	positions := []math.Vec3{
		{X: 0, Y: 0},
		{X: 0, Y: -2},
		{X: 4, Y: 0},
		{X: 0, Y: 0}, // coincides with the pin but is free
	}
	pinned := []bool{true, false, false, false}

	masses, inv, err := AssignMasses(positions, pinned, DefaultMassPolicy())
	if err != nil {
		t.Fatalf("AssignMasses failed: %v", err)
	}

	if got, want := masses[1], float32(25); !approx(got, want, 1e-5) {
		t.Errorf("masses[1] = %v, want %v", got, want)
	}
	if got, want := inv[1], float32(0.04); !approx(got, want, 1e-6) {
		t.Errorf("inv[1] = %v, want %v", got, want)
	}
	if got, want := inv[2], float32(4.0/50.0); !approx(got, want, 1e-6) {
		t.Errorf("inv[2] = %v, want %v", got, want)
	}
	if !(inv[3] > 0) || !math.IsFinite(masses[3]) {
		t.Errorf("coincident free vertex: mass = %v inv = %v, want finite mass and inv > 0", masses[3], inv[3])
	}
}

func TestAssignMasses_Uniform(t *testing.T) {
	positions := []math.Vec3{{}, {Y: -1}, {Y: -2}}
	pinned := []bool{true, false, false}

	masses, inv, err := AssignMasses(positions, pinned, MassPolicy{Mode: MassUniform, Mass: 2})
	if err != nil {
		t.Fatalf("AssignMasses failed: %v", err)
	}
	for i := 1; i < 3; i++ {
		if masses[i] != 2 || inv[i] != 0.5 {
			t.Errorf("vertex %d: mass=%v inv=%v, want 2 and 0.5", i, masses[i], inv[i])
		}
	}
}

func TestAssignMasses_Errors(t *testing.T) {
	positions := []math.Vec3{{}, {Y: -1}}

	tests := []struct {
		name    string
		pinned  []bool
		policy  MassPolicy
		wantErr error
	}{
		{"no pins for distance", []bool{false, false}, DefaultMassPolicy(), ErrNoPinnedVertices},
		{"zero uniform mass", []bool{true, false}, MassPolicy{Mode: MassUniform}, ErrInvalidMass},
		{"zero k", []bool{true, false}, MassPolicy{Mode: MassDistanceGraded, MinDistance: 1}, ErrInvalidMass},
		{"mask length", []bool{true}, DefaultMassPolicy(), ErrPinMaskLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := AssignMasses(positions, tt.pinned, tt.policy)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AssignMasses() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAssignMasses_Empty(t *testing.T) {
	for _, policy := range []MassPolicy{DefaultMassPolicy(), {Mode: MassUniform, Mass: 1}} {
		masses, inv, err := AssignMasses(nil, nil, policy)
		if err != nil {
			t.Errorf("%v: AssignMasses(empty) error = %v", policy.Mode, err)
		}
		if len(masses) != 0 || len(inv) != 0 {
			t.Errorf("%v: got %d masses, %d inverse masses, want none", policy.Mode, len(masses), len(inv))
		}
	}
}

func TestParseMassMode(t *testing.T) {
	tests := []struct {
		in      string
		want    MassMode
		wantErr bool
	}{
		{"distance", MassDistanceGraded, false},
		{"Uniform", MassUniform, false},
		{"", MassDistanceGraded, false},
		{"heavy", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMassMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMassMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseMassMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func approx(a, b, eps float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}
