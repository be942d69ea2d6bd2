package cloth

import (
	"fmt"

	"github.com/Faultbox/clothsim/pkg/math"
)

// NewGrid builds a rows x cols sheet in the XY plane hanging down from y=0,
// centered on x=0 and facing +Z. It also returns the indices of the top row.
// Vertex (r, c) has index r*cols + c.
func NewGrid(rows, cols int, spacing float32) (Mesh, []int32, error) {
	if rows < 2 || cols < 2 {
		return Mesh{}, nil, fmt.Errorf("%w: %dx%d", ErrGridSize, rows, cols)
	}
	if spacing <= 0 {
		return Mesh{}, nil, fmt.Errorf("grid spacing must be positive, got %v", spacing)
	}

	halfWidth := float32(cols-1) * spacing / 2
	mesh := Mesh{
		Positions: make([]math.Vec3, 0, rows*cols),
		Triangles: make([]Triangle, 0, (rows-1)*(cols-1)*2),
	}

	for r := range rows {
		for c := range cols {
			mesh.Positions = append(mesh.Positions, math.Vec3{
				X: float32(c)*spacing - halfWidth,
				Y: float32(-r) * spacing,
			})
		}
	}

	for r := range rows - 1 {
		for c := range cols - 1 {
			topLeft := int32(r*cols + c)
			topRight := topLeft + 1
			bottomLeft := int32((r+1)*cols + c)
			bottomRight := bottomLeft + 1

			mesh.Triangles = append(mesh.Triangles,
				Triangle{topLeft, bottomLeft, topRight},
				Triangle{topRight, bottomLeft, bottomRight},
			)
		}
	}

	topRow := make([]int32, cols)
	for c := range cols {
		topRow[c] = int32(c)
	}
	return mesh, topRow, nil
}
