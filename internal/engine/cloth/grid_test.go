package cloth

import (
	"errors"
	"testing"

	"github.com/Faultbox/clothsim/pkg/math"
)

func TestNewGrid(t *testing.T) {
	mesh, topRow, err := NewGrid(3, 4, 0.5)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}

	if got := len(mesh.Positions); got != 12 {
		t.Errorf("vertices = %d, want 12", got)
	}
	if got := len(mesh.Triangles); got != 12 {
		t.Errorf("triangles = %d, want 12", got)
	}
	if err := mesh.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	if len(topRow) != 4 {
		t.Fatalf("top row = %v, want 4 indices", topRow)
	}
	for _, idx := range topRow {
		if mesh.Positions[idx].Y != 0 {
			t.Errorf("top row vertex %d at Y=%v, want 0", idx, mesh.Positions[idx].Y)
		}
	}

	lo, hi := Bounds(mesh.Positions)
	wantLo := math.Vec3{X: -0.75, Y: -1}
	wantHi := math.Vec3{X: 0.75, Y: 0}
	if lo != wantLo || hi != wantHi {
		t.Errorf("Bounds() = (%v, %v), want (%v, %v)", lo, hi, wantLo, wantHi)
	}
}

func TestNewGrid_Invalid(t *testing.T) {
	if _, _, err := NewGrid(1, 5, 1); !errors.Is(err, ErrGridSize) {
		t.Errorf("NewGrid(1, 5) error = %v, want ErrGridSize", err)
	}
	if _, _, err := NewGrid(3, 3, 0); err == nil {
		t.Error("NewGrid with zero spacing succeeded")
	}
}

func TestPinTopRow(t *testing.T) {
	mesh, topRow, err := NewGrid(4, 3, 1)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	pinned := PinTopRow(mesh.Positions, 1e-4)

	if got := PinnedCount(pinned); got != len(topRow) {
		t.Errorf("PinnedCount() = %d, want %d", got, len(topRow))
	}
	for _, idx := range topRow {
		if !pinned[idx] {
			t.Errorf("top row vertex %d not pinned", idx)
		}
	}
}

func TestPinIndices_OutOfRange(t *testing.T) {
	if _, err := PinIndices(3, []int32{0, 3}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("PinIndices() error = %v, want ErrIndexOutOfRange", err)
	}
}
