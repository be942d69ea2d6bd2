// Package cloth implements position-based dynamics for triangle-mesh cloth.
//
// A Cloth is built once from a Mesh: the triangle list yields a symmetric
// neighbor topology, every discovered edge becomes a distance constraint with
// its rest length frozen at construction, and every vertex gets an inverse
// mass (exactly 0 when pinned). Step then runs integrate, Jacobi constraint
// relaxation, velocity reconciliation and normal recomputation once per frame.
package cloth

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/clothsim/pkg/math"
)

// Cloth construction errors.
var (
	ErrIndexOutOfRange   = errors.New("triangle index out of range")
	ErrRepeatedVertex    = errors.New("triangle repeats a vertex")
	ErrNonFinitePosition = errors.New("vertex position is not finite")
	ErrNoPinnedVertices  = errors.New("distance-graded masses need at least one pinned vertex")
	ErrInvalidMass       = errors.New("mass parameters must be positive")
	ErrPinMaskLength     = errors.New("pin mask length does not match vertex count")
	ErrGridSize          = errors.New("grid needs at least 2 rows and 2 columns")
	ErrBufferTooSmall    = errors.New("vertex buffer too small")
	ErrInvalidLayout     = errors.New("invalid vertex layout")
)

// maxReportedProblems caps how many per-element problems Validate collects.
const maxReportedProblems = 32

// Triangle holds three vertex indices, counter-clockwise when seen from the front.
type Triangle [3]int32

// valid reports whether all indices are in range and distinct.
func (t Triangle) valid(vertexCount int) bool {
	n := int32(vertexCount)
	for _, idx := range t {
		if idx < 0 || idx >= n {
			return false
		}
	}
	return t[0] != t[1] && t[1] != t[2] && t[0] != t[2]
}

// Mesh is the imported rest-pose geometry a Cloth is built from.
type Mesh struct {
	Positions []math.Vec3
	Triangles []Triangle
}

// Validate checks triangle indices and vertex positions.
// All problems found (up to a cap) are combined into the returned error.
func (m *Mesh) Validate() error {
	var err error
	problems := 0
	add := func(e error) {
		if problems < maxReportedProblems {
			err = multierr.Append(err, e)
		}
		problems++
	}

	for i, p := range m.Positions {
		if !p.IsFinite() {
			add(fmt.Errorf("vertex %d: %w", i, ErrNonFinitePosition))
		}
	}

	n := int32(len(m.Positions))
	for t, tri := range m.Triangles {
		inRange := true
		for _, idx := range tri {
			if idx < 0 || idx >= n {
				add(fmt.Errorf("triangle %d: index %d: %w", t, idx, ErrIndexOutOfRange))
				inRange = false
			}
		}
		if inRange && (tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2]) {
			add(fmt.Errorf("triangle %d: %w", t, ErrRepeatedVertex))
		}
	}

	if problems > maxReportedProblems {
		err = multierr.Append(err, fmt.Errorf("%d more problems not shown", problems-maxReportedProblems))
	}
	return err
}

// Bounds returns the axis-aligned bounding box of the positions.
// An empty mesh returns two zero vectors.
func Bounds(positions []math.Vec3) (lo, hi math.Vec3) {
	if len(positions) == 0 {
		return math.Vec3{}, math.Vec3{}
	}
	lo, hi = positions[0], positions[0]
	for _, p := range positions[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return lo, hi
}
