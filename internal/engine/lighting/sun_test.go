package lighting

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSunDirection_HorizonHasNoVerticalComponent(t *testing.T) {
	for _, az := range []float32{0, 90, 180, 270} {
		got := SunDirection(az, 0)
		if gomath.Abs(float64(got.Y())) > 1e-6 {
			t.Errorf("SunDirection(%v, 0).Y = %v, want 0", az, got.Y())
		}
	}
}

func TestSunDirection(t *testing.T) {
	tests := []struct {
		azimuth, elevation float32
		want               mgl32.Vec3
	}{
		{0, 0, mgl32.Vec3{0, 0, 1}},
		{90, 0, mgl32.Vec3{1, 0, 0}},
		{0, 90, mgl32.Vec3{0, 1, 0}},
		{180, 45, mgl32.Vec3{0, 0.70710677, -0.70710677}},
	}

	for _, tt := range tests {
		got := SunDirection(tt.azimuth, tt.elevation)
		if !vecNear(got, tt.want, 1e-5) {
			t.Errorf("SunDirection(%v, %v) = %v, want %v", tt.azimuth, tt.elevation, got, tt.want)
		}
		if l := got.Len(); !mgl32.FloatEqualThreshold(l, 1, 1e-5) {
			t.Errorf("SunDirection(%v, %v) length = %v, want 1", tt.azimuth, tt.elevation, l)
		}
	}
}

func vecNear(got, want mgl32.Vec3, eps float64) bool {
	for i := range got {
		if gomath.Abs(float64(got[i]-want[i])) >= eps {
			return false
		}
	}
	return true
}
