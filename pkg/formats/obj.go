package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/clothsim/pkg/math"
)

// OBJ format errors.
var (
	ErrInvalidOBJVertex = errors.New("invalid OBJ vertex")
	ErrInvalidOBJFace   = errors.New("invalid OBJ face")
	ErrOBJIndexRange    = errors.New("OBJ face index out of range")
)

// OBJ is the geometry of a Wavefront OBJ file: positions and triangles.
// Polygons are fan-triangulated and indices are zero-based.
// Texture coordinates, normals, groups and materials are ignored.
type OBJ struct {
	Positions []math.Vec3
	Faces     [][3]int32
}

// ParseOBJ parses a Wavefront OBJ file from raw bytes.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			v, err := parseOBJVertex(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			obj.Positions = append(obj.Positions, v)

		case "f":
			if err := obj.parseFace(fields[1:]); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	return obj, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data)
}

func parseOBJVertex(fields []string) (math.Vec3, error) {
	// An optional fourth w component is allowed and ignored
	if len(fields) < 3 {
		return math.Vec3{}, fmt.Errorf("%w: need 3 coordinates, got %d", ErrInvalidOBJVertex, len(fields))
	}
	var xyz [3]float32
	for i := range 3 {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return math.Vec3{}, fmt.Errorf("%w: %v", ErrInvalidOBJVertex, err)
		}
		xyz[i] = float32(f)
	}
	return math.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

// parseFace resolves a face's vertex references against the positions read
// so far and appends its fan triangulation.
func (o *OBJ) parseFace(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("%w: need 3 vertices, got %d", ErrInvalidOBJFace, len(fields))
	}

	indices := make([]int32, len(fields))
	for i, ref := range fields {
		// v, v/vt, v//vn, v/vt/vn: only the position index matters
		vStr, _, _ := strings.Cut(ref, "/")
		idx, err := strconv.Atoi(vStr)
		if err != nil || idx == 0 {
			return fmt.Errorf("%w: bad vertex reference %q", ErrInvalidOBJFace, ref)
		}

		count := len(o.Positions)
		switch {
		case idx > 0:
			idx--
		default:
			idx += count
		}
		if idx < 0 || idx >= count {
			return fmt.Errorf("%w: %q with %d vertices", ErrOBJIndexRange, ref, count)
		}
		indices[i] = int32(idx)
	}

	for i := 1; i+1 < len(indices); i++ {
		o.Faces = append(o.Faces, [3]int32{indices[0], indices[i], indices[i+1]})
	}
	return nil
}

// WriteOBJ writes positions and triangles as OBJ text. When normals is not
// nil it must match positions and is written as per-vertex normals.
func WriteOBJ(w io.Writer, positions, normals []math.Vec3, faces [][3]int32) error {
	if normals != nil && len(normals) != len(positions) {
		return fmt.Errorf("normals: have %d, want %d", len(normals), len(positions))
	}

	bw := bufio.NewWriter(w)
	for _, p := range positions {
		fmt.Fprintf(bw, "v %s %s %s\n", formatOBJFloat(p.X), formatOBJFloat(p.Y), formatOBJFloat(p.Z))
	}
	for _, n := range normals {
		fmt.Fprintf(bw, "vn %s %s %s\n", formatOBJFloat(n.X), formatOBJFloat(n.Y), formatOBJFloat(n.Z))
	}
	for _, f := range faces {
		if normals != nil {
			fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", f[0]+1, f[0]+1, f[1]+1, f[1]+1, f[2]+1, f[2]+1)
		} else {
			fmt.Fprintf(bw, "f %d %d %d\n", f[0]+1, f[1]+1, f[2]+1)
		}
	}
	return bw.Flush()
}

func formatOBJFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
