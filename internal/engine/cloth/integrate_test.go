package cloth

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/clothsim/pkg/math"
)

func TestIntegrate(t *testing.T) {
	positions := []math.Vec3{{X: 1}, {Y: 2}}
	velocities := []math.Vec3{{X: 5}, {X: 1}}
	tentative := make([]math.Vec3, 2)
	invMasses := []float32{0, 0.5}

	Integrate(positions, velocities, tentative, invMasses, math.Vec3{Y: -10}, 0.5)

	// pinned: copied, velocity untouched
	if tentative[0] != positions[0] {
		t.Errorf("tentative[0] = %v, want %v", tentative[0], positions[0])
	}
	if want := (math.Vec3{X: 5}); velocities[0] != want {
		t.Errorf("velocities[0] = %v, want %v", velocities[0], want)
	}

	// v = (1,0,0) + 0.5*(0,-10,0)*0.5 = (1,-2.5,0); p' = (0,2,0) + v*0.5
	if want := (math.Vec3{X: 1, Y: -2.5}); velocities[1] != want {
		t.Errorf("velocities[1] = %v, want %v", velocities[1], want)
	}
	if want := (math.Vec3{X: 0.5, Y: 0.75}); tentative[1] != want {
		t.Errorf("tentative[1] = %v, want %v", tentative[1], want)
	}
}

func TestReconcile(t *testing.T) {
	inf := float32(gomath.Inf(1))
	nan := float32(gomath.NaN())

	tests := []struct {
		name      string
		tentative math.Vec3
		invMass   float32
		wantPos   math.Vec3
		wantVel   math.Vec3
		rejected  int
	}{
		{"commit", math.Vec3{X: 1, Y: 0.5}, 1, math.Vec3{X: 1, Y: 0.5}, math.Vec3{X: 2, Y: 1}, 0},
		{"pinned", math.Vec3{X: 1}, 0, math.Vec3{}, math.Vec3{Z: 3}, 0},
		{"infinite", math.Vec3{X: inf}, 1, math.Vec3{}, math.Vec3{}, 1},
		{"nan", math.Vec3{Y: nan}, 1, math.Vec3{}, math.Vec3{}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			positions := []math.Vec3{{}}
			velocities := []math.Vec3{{Z: 3}}
			tentative := []math.Vec3{tt.tentative}

			got := Reconcile(positions, velocities, tentative, []float32{tt.invMass}, 0.5)
			if got != tt.rejected {
				t.Errorf("Reconcile() = %d, want %d", got, tt.rejected)
			}
			if positions[0] != tt.wantPos {
				t.Errorf("position = %v, want %v", positions[0], tt.wantPos)
			}
			if velocities[0] != tt.wantVel {
				t.Errorf("velocity = %v, want %v", velocities[0], tt.wantVel)
			}
		})
	}
}
