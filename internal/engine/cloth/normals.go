package cloth

import "github.com/Faultbox/clothsim/pkg/math"

// normalScratch holds the buffers RecalculateNormals works in.
type normalScratch struct {
	faces  []math.Vec3
	sums   []math.Vec3
	counts []int32
}

func newNormalScratch(vertexCount, triangleCount int) normalScratch {
	return normalScratch{
		faces:  make([]math.Vec3, triangleCount),
		sums:   make([]math.Vec3, vertexCount),
		counts: make([]int32, vertexCount),
	}
}

// RecalculateNormals writes one flat normal per triangle into faceNormals and
// the averaged, normalized normal of the incident triangles into normals.
// sums and counts are per-vertex scratch. A vertex touched by no triangle, or
// only by degenerate ones, keeps its previous normal.
func RecalculateNormals(positions []math.Vec3, triangles []Triangle, faceNormals, normals, sums []math.Vec3, counts []int32) {
	clear(sums)
	clear(counts)

	for t, tri := range triangles {
		p0 := positions[tri[0]]
		e1 := positions[tri[1]].Sub(p0)
		e2 := positions[tri[2]].Sub(p0)

		// Degenerate faces normalize to zero and add nothing
		n := e1.Cross(e2).Normalize()
		if !n.IsFinite() {
			n = math.Vec3{}
		}
		faceNormals[t] = n

		for _, idx := range tri {
			sums[idx] = sums[idx].Add(n)
			counts[idx]++
		}
	}

	for i, count := range counts {
		if count == 0 {
			continue
		}
		n := sums[i].Scale(1 / float32(count)).Normalize()
		if n == (math.Vec3{}) || !n.IsFinite() {
			continue
		}
		normals[i] = n
	}
}
