package cloth

import "fmt"

// VertexLayout describes where positions and normals live in an interleaved
// float32 vertex buffer. All values count float32 elements, not bytes.
type VertexLayout struct {
	Stride         int
	PositionOffset int

	// NormalOffset < 0 skips normals.
	NormalOffset int
}

// PositionNormalLayout is position (3) followed by normal (3).
var PositionNormalLayout = VertexLayout{Stride: 6, PositionOffset: 0, NormalOffset: 3}

func (l VertexLayout) validate() error {
	if l.Stride < 3 || l.PositionOffset < 0 || l.PositionOffset+3 > l.Stride {
		return fmt.Errorf("%w: %+v", ErrInvalidLayout, l)
	}
	if l.NormalOffset >= 0 && l.NormalOffset+3 > l.Stride {
		return fmt.Errorf("%w: %+v", ErrInvalidLayout, l)
	}
	return nil
}

// WriteVertices copies positions and normals into dst using layout.
// Elements of dst not covered by the layout are left untouched.
func (c *Cloth) WriteVertices(dst []float32, layout VertexLayout) error {
	if err := layout.validate(); err != nil {
		return err
	}
	need := len(c.positions) * layout.Stride
	if len(dst) < need {
		return fmt.Errorf("%w: have %d floats, need %d", ErrBufferTooSmall, len(dst), need)
	}

	for i, p := range c.positions {
		base := i * layout.Stride
		o := base + layout.PositionOffset
		dst[o], dst[o+1], dst[o+2] = p.X, p.Y, p.Z

		if layout.NormalOffset >= 0 {
			n := c.normals[i]
			o = base + layout.NormalOffset
			dst[o], dst[o+1], dst[o+2] = n.X, n.Y, n.Z
		}
	}
	return nil
}

// Indices flattens the triangle list into a uint32 index buffer.
func (c *Cloth) Indices() []uint32 {
	indices := make([]uint32, 0, len(c.triangles)*3)
	for _, tri := range c.triangles {
		indices = append(indices, uint32(tri[0]), uint32(tri[1]), uint32(tri[2]))
	}
	return indices
}
