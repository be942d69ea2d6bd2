package cloth

import (
	"fmt"

	"github.com/Faultbox/clothsim/pkg/math"
)

// PinTopRow pins every vertex whose Y lies within tolerance of the highest Y.
func PinTopRow(positions []math.Vec3, tolerance float32) []bool {
	pinned := make([]bool, len(positions))
	if len(positions) == 0 {
		return pinned
	}

	top := positions[0].Y
	for _, p := range positions[1:] {
		top = max(top, p.Y)
	}
	for i, p := range positions {
		if top-p.Y <= tolerance {
			pinned[i] = true
		}
	}
	return pinned
}

// PinIndices builds a pin mask for vertexCount vertices from explicit indices.
func PinIndices(vertexCount int, indices []int32) ([]bool, error) {
	pinned := make([]bool, vertexCount)
	for _, idx := range indices {
		if idx < 0 || int(idx) >= vertexCount {
			return nil, fmt.Errorf("pin %d: %w", idx, ErrIndexOutOfRange)
		}
		pinned[idx] = true
	}
	return pinned, nil
}

// PinnedCount returns the number of set entries in a pin mask.
func PinnedCount(pinned []bool) int {
	n := 0
	for _, p := range pinned {
		if p {
			n++
		}
	}
	return n
}
