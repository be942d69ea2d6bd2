package cloth

import (
	"testing"

	"github.com/Faultbox/clothsim/pkg/math"
)

func recalc(positions []math.Vec3, tris []Triangle, normals []math.Vec3) []math.Vec3 {
	s := newNormalScratch(len(positions), len(tris))
	RecalculateNormals(positions, tris, s.faces, normals, s.sums, s.counts)
	return s.faces
}

func TestRecalculateNormals_FlatGrid(t *testing.T) {
	mesh, _, err := NewGrid(3, 4, 1)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	normals := make([]math.Vec3, len(mesh.Positions))
	faces := recalc(mesh.Positions, mesh.Triangles, normals)

	want := math.Vec3{Z: 1}
	for i, n := range faces {
		if !vecApprox(n, want, 1e-6) {
			t.Errorf("face %d normal = %v, want %v", i, n, want)
		}
	}
	for i, n := range normals {
		if !vecApprox(n, want, 1e-6) {
			t.Errorf("vertex %d normal = %v, want %v", i, n, want)
		}
	}
}

func TestRecalculateNormals_AveragesIncidentFaces(t *testing.T) {
	// Two faces folded 90 degrees along the shared edge 0-1
	positions := []math.Vec3{
		{X: 0}, {X: 1},
		{Y: 1},
		{Z: 1},
	}
	tris := []Triangle{
		{0, 1, 2}, // normal +Z
		{1, 0, 3}, // normal +Y
	}
	normals := make([]math.Vec3, 4)
	recalc(positions, tris, normals)

	want := math.Vec3{Y: 1, Z: 1}.Normalize()
	for _, i := range []int{0, 1} {
		if !vecApprox(normals[i], want, 1e-6) {
			t.Errorf("shared vertex %d normal = %v, want %v", i, normals[i], want)
		}
	}
	if !vecApprox(normals[2], math.Vec3{Z: 1}, 1e-6) {
		t.Errorf("normals[2] = %v, want +Z", normals[2])
	}
	if !vecApprox(normals[3], math.Vec3{Y: 1}, 1e-6) {
		t.Errorf("normals[3] = %v, want +Y", normals[3])
	}
}

func TestRecalculateNormals_KeepsPreviousWhenUndefined(t *testing.T) {
	previous := math.Vec3{X: 1}
	positions := []math.Vec3{
		{}, {X: 1}, {Y: 1}, // proper triangle
		{X: 5}, {X: 6}, {X: 7}, // collinear triangle
		{Z: 9}, // isolated
	}
	tris := []Triangle{{0, 1, 2}, {3, 4, 5}}
	normals := make([]math.Vec3, len(positions))
	for i := range normals {
		normals[i] = previous
	}

	faces := recalc(positions, tris, normals)

	if faces[1] != (math.Vec3{}) {
		t.Errorf("degenerate face normal = %v, want zero", faces[1])
	}
	for _, i := range []int{3, 4, 5, 6} {
		if normals[i] != previous {
			t.Errorf("normals[%d] = %v, want previous %v", i, normals[i], previous)
		}
	}
	if !vecApprox(normals[0], math.Vec3{Z: 1}, 1e-6) {
		t.Errorf("normals[0] = %v, want +Z", normals[0])
	}
}

func vecApprox(a, b math.Vec3, eps float32) bool {
	return approx(a.X, b.X, eps) && approx(a.Y, b.Y, eps) && approx(a.Z, b.Z, eps)
}
