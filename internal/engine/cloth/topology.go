package cloth

import "slices"

// Edge is an unordered vertex pair stored with A < B.
type Edge struct {
	A, B int32
}

func makeEdge(a, b int32) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

// Topology is the symmetric neighbor relation of a triangle mesh in CSR form.
// The neighbors of vertex i are Neighbors[Offsets[i]:Offsets[i+1]], sorted ascending.
type Topology struct {
	Offsets   []int32
	Neighbors []int32

	// Edges lists every linked pair once, in discovery order.
	Edges []Edge
}

// BuildTopology links each triangle vertex to the other two.
// Triangles with out-of-range or repeated indices are ignored.
func BuildTopology(vertexCount int, triangles []Triangle) *Topology {
	topo := &Topology{
		Offsets: make([]int32, vertexCount+1),
	}
	if vertexCount == 0 {
		return topo
	}

	// Per-vertex sorted sets while building; cloth vertices have a handful of neighbors
	sets := make([][]int32, vertexCount)
	link := func(a, b int32) bool {
		pos, found := slices.BinarySearch(sets[a], b)
		if found {
			return false
		}
		sets[a] = slices.Insert(sets[a], pos, b)
		return true
	}

	for _, tri := range triangles {
		if !tri.valid(vertexCount) {
			continue
		}
		for k := 0; k < 3; k++ {
			a, b := tri[k], tri[(k+1)%3]
			if link(a, b) {
				link(b, a)
				topo.Edges = append(topo.Edges, makeEdge(a, b))
			}
		}
	}

	total := 0
	for i, set := range sets {
		topo.Offsets[i] = int32(total)
		total += len(set)
	}
	topo.Offsets[vertexCount] = int32(total)

	topo.Neighbors = make([]int32, 0, total)
	for _, set := range sets {
		topo.Neighbors = append(topo.Neighbors, set...)
	}
	return topo
}

// VertexCount returns the number of vertices the topology was built for.
func (t *Topology) VertexCount() int {
	return len(t.Offsets) - 1
}

// NeighborsOf returns the sorted neighbor indices of vertex i.
// The returned slice aliases topology storage and must not be modified.
func (t *Topology) NeighborsOf(i int) []int32 {
	return t.Neighbors[t.Offsets[i]:t.Offsets[i+1]]
}

// Degree returns the number of neighbors of vertex i.
func (t *Topology) Degree(i int) int {
	return int(t.Offsets[i+1] - t.Offsets[i])
}

// IsNeighbor reports whether j is linked to i.
func (t *Topology) IsNeighbor(i, j int) bool {
	_, found := slices.BinarySearch(t.NeighborsOf(i), int32(j))
	return found
}
