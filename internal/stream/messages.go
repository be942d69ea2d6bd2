package stream

import (
	"github.com/Faultbox/clothsim/internal/engine/cloth"
	"github.com/Faultbox/clothsim/pkg/math"
)

// Message types sent to clients.
const (
	TypeMesh  = "mesh"
	TypeFrame = "frame"
	TypeError = "error"
)

// MeshMessage is sent once per connection before any frame.
type MeshMessage struct {
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	VertexCount int      `json:"vertex_count"`
	Indices     []uint32 `json:"indices"`
	Pinned      []int32  `json:"pinned"`
}

// FrameMessage carries the vertex state after one simulation tick.
// Positions and Normals are flattened xyz triples.
type FrameMessage struct {
	Type          string    `json:"type"`
	Frame         uint64    `json:"frame"`
	Running       bool      `json:"running"`
	Positions     []float32 `json:"positions"`
	Normals       []float32 `json:"normals"`
	MeanViolation float32   `json:"mean_violation"`
}

// ErrorMessage reports a rejected client command.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// CommandMessage is what clients send: {"command": "toggle"}.
type CommandMessage struct {
	Command string `json:"command"`
}

func newMeshMessage(name string, c *cloth.Cloth) MeshMessage {
	msg := MeshMessage{
		Type:        TypeMesh,
		Name:        name,
		VertexCount: c.VertexCount(),
		Indices:     c.Indices(),
		Pinned:      []int32{},
	}
	for i, p := range c.Pinned() {
		if p {
			msg.Pinned = append(msg.Pinned, int32(i))
		}
	}
	return msg
}

// fill rewrites m from the cloth, reusing its slices.
func (m *FrameMessage) fill(c *cloth.Cloth, state cloth.RunState, stats cloth.StepStats) {
	m.Type = TypeFrame
	m.Frame = c.Frame()
	m.Running = state == cloth.Running
	m.MeanViolation = stats.MeanViolation
	m.Positions = flatten(m.Positions[:0], c.Positions())
	m.Normals = flatten(m.Normals[:0], c.Normals())
}

func flatten(dst []float32, vs []math.Vec3) []float32 {
	for _, v := range vs {
		dst = append(dst, v.X, v.Y, v.Z)
	}
	return dst
}
