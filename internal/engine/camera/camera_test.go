package camera

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestPosition(t *testing.T) {
	tests := []struct {
		name       string
		pitch, yaw float32
		want       mgl32.Vec3
	}{
		{"front", 0, 0, mgl32.Vec3{0, 0, 2}},
		{"side", 0, gomath.Pi / 2, mgl32.Vec3{2, 0, 0}},
		{"above", gomath.Pi / 2, 0, mgl32.Vec3{0, 2, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewOrbitCamera()
			c.Center = mgl32.Vec3{0, 0, 0}
			c.Distance = 2
			c.Pitch = tt.pitch
			c.Yaw = tt.yaw

			got := c.Position()
			if !vecNear(got, tt.want, 1e-5) {
				t.Errorf("Position() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestViewMatrix_CenterInFront(t *testing.T) {
	c := NewOrbitCamera()
	c.Center = mgl32.Vec3{1, -2, 0}
	c.Distance = 5
	c.Yaw = 0.7
	c.Pitch = 0.3

	// The center lands on the -Z axis in view space at the orbit distance
	v := c.ViewMatrix().Mul4x1(c.Center.Vec4(1))
	if !vecNear(v.Vec3(), mgl32.Vec3{0, 0, -5}, 1e-4) {
		t.Errorf("view-space center = %v, want (0, 0, -5)", v.Vec3())
	}
}

func TestHandleDrag_ClampsPitch(t *testing.T) {
	c := NewOrbitCamera()
	c.HandleDrag(0, 10000)
	if c.Pitch != c.MaxPitch {
		t.Errorf("Pitch = %v, want %v", c.Pitch, c.MaxPitch)
	}
	c.HandleDrag(0, -20000)
	if c.Pitch != c.MinPitch {
		t.Errorf("Pitch = %v, want %v", c.Pitch, c.MinPitch)
	}

	yaw := c.Yaw
	c.HandleDrag(100, 0)
	if want := yaw - 100*c.DragSensitivity; c.Yaw != want {
		t.Errorf("Yaw = %v, want %v", c.Yaw, want)
	}
}

func TestHandleZoom(t *testing.T) {
	c := NewOrbitCamera()
	c.Distance = 10

	c.HandleZoom(1)
	if !mgl32.FloatEqualThreshold(c.Distance, 9, 1e-5) {
		t.Errorf("Distance = %v, want 9", c.Distance)
	}

	c.HandleZoom(1000)
	if c.Distance != c.MinDistance {
		t.Errorf("Distance = %v, want min %v", c.Distance, c.MinDistance)
	}
	c.Distance = c.MaxDistance
	c.HandleZoom(-5)
	if c.Distance != c.MaxDistance {
		t.Errorf("Distance = %v, want max %v", c.Distance, c.MaxDistance)
	}
}

func TestFitToBounds(t *testing.T) {
	c := NewOrbitCamera()
	c.FitToBounds(mgl32.Vec3{-1, -2, 0}, mgl32.Vec3{1, 0, 0})

	if !vecNear(c.Center, mgl32.Vec3{0, -1, 0}, 1e-5) {
		t.Errorf("Center = %v, want (0, -1, 0)", c.Center)
	}
	// The bounding sphere must fit inside the vertical field of view
	radius := float32(gomath.Sqrt2)
	if c.Distance*float32(gomath.Sin(float64(c.FovY/2))) < radius {
		t.Errorf("Distance %v too close for radius %v", c.Distance, radius)
	}
}

func TestProjectionMatrix_ZeroHeight(t *testing.T) {
	c := NewOrbitCamera()
	m := c.ProjectionMatrix(800, 0)
	for i, v := range m {
		if gomath.IsNaN(float64(v)) || gomath.IsInf(float64(v), 0) {
			t.Fatalf("ProjectionMatrix()[%d] = %v", i, v)
		}
	}
}

// vecNear compares component-wise against an absolute tolerance.
func vecNear(got, want mgl32.Vec3, eps float64) bool {
	for i := range got {
		if gomath.Abs(float64(got[i]-want[i])) >= eps {
			return false
		}
	}
	return true
}
