package cloth

import (
	"fmt"
	"strings"

	"github.com/Faultbox/clothsim/pkg/math"
)

// MassMode selects how per-vertex masses are assigned.
type MassMode int

const (
	// MassDistanceGraded makes vertices heavier the closer they hang to a pin.
	MassDistanceGraded MassMode = iota
	// MassUniform gives every free vertex the same mass.
	MassUniform
)

// String returns the config name of the mode.
func (m MassMode) String() string {
	switch m {
	case MassDistanceGraded:
		return "distance"
	case MassUniform:
		return "uniform"
	default:
		return fmt.Sprintf("MassMode(%d)", int(m))
	}
}

// ParseMassMode converts a config name into a MassMode.
func ParseMassMode(s string) (MassMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "distance", "distance_graded", "":
		return MassDistanceGraded, nil
	case "uniform":
		return MassUniform, nil
	default:
		return 0, fmt.Errorf("unknown mass policy %q", s)
	}
}

// MassPolicy configures AssignMasses.
type MassPolicy struct {
	Mode MassMode

	// K is the distance-graded constant: mass = K / distance to the nearest pin.
	K float32

	// Mass is the uniform per-vertex mass.
	Mass float32

	// MinDistance floors the pin distance of free vertices that coincide with a pin.
	MinDistance float32
}

// DefaultMassPolicy returns the distance-graded policy with K = 50.
func DefaultMassPolicy() MassPolicy {
	return MassPolicy{
		Mode:        MassDistanceGraded,
		K:           50,
		Mass:        1,
		MinDistance: 1e-4,
	}
}

// AssignMasses computes masses and inverse masses.
// Pinned vertices get inverse mass exactly 0 and a reported mass of 0;
// every free vertex gets a strictly positive inverse mass.
func AssignMasses(positions []math.Vec3, pinned []bool, policy MassPolicy) (masses, invMasses []float32, err error) {
	if len(pinned) != len(positions) {
		return nil, nil, fmt.Errorf("%w: %d pins for %d vertices", ErrPinMaskLength, len(pinned), len(positions))
	}

	masses = make([]float32, len(positions))
	invMasses = make([]float32, len(positions))

	switch policy.Mode {
	case MassUniform:
		if policy.Mass <= 0 {
			return nil, nil, fmt.Errorf("%w: uniform mass %v", ErrInvalidMass, policy.Mass)
		}
		for i := range positions {
			if pinned[i] {
				continue
			}
			masses[i] = policy.Mass
			invMasses[i] = 1 / policy.Mass
		}

	case MassDistanceGraded:
		if policy.K <= 0 || policy.MinDistance <= 0 {
			return nil, nil, fmt.Errorf("%w: k=%v min_distance=%v", ErrInvalidMass, policy.K, policy.MinDistance)
		}
		if len(positions) == 0 {
			return masses, invMasses, nil
		}

		var anchors []math.Vec3
		for i, p := range positions {
			if pinned[i] {
				anchors = append(anchors, p)
			}
		}
		if len(anchors) == 0 {
			return nil, nil, ErrNoPinnedVertices
		}

		for i, p := range positions {
			if pinned[i] {
				continue
			}
			minDist := p.Distance(anchors[0])
			for _, a := range anchors[1:] {
				minDist = min(minDist, p.Distance(a))
			}
			minDist = max(minDist, policy.MinDistance)

			masses[i] = policy.K / minDist
			invMasses[i] = minDist / policy.K
		}

	default:
		return nil, nil, fmt.Errorf("unknown mass mode %v", policy.Mode)
	}

	return masses, invMasses, nil
}
