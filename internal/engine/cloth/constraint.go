package cloth

import (
	gomath "math"

	"github.com/Faultbox/clothsim/pkg/math"
)

// DistanceConstraint keeps two vertices at their construction-time distance.
type DistanceConstraint struct {
	I, J       int32
	RestLength float32
}

// ConstraintSet holds one constraint per topology edge and the per-vertex
// incidence counts used as the Jacobi averaging divisor.
type ConstraintSet struct {
	Constraints []DistanceConstraint
	Counts      []int32
}

// NewConstraintSet builds a constraint for every edge of topo, measuring
// rest lengths from positions.
func NewConstraintSet(topo *Topology, positions []math.Vec3) *ConstraintSet {
	set := &ConstraintSet{
		Constraints: make([]DistanceConstraint, 0, len(topo.Edges)),
		Counts:      make([]int32, len(positions)),
	}
	for _, e := range topo.Edges {
		set.Constraints = append(set.Constraints, DistanceConstraint{
			I:          e.A,
			J:          e.B,
			RestLength: positions[e.A].Sub(positions[e.B]).Length(),
		})
		set.Counts[e.A]++
		set.Counts[e.B]++
	}
	return set
}

// Len returns the number of constraints.
func (s *ConstraintSet) Len() int {
	return len(s.Constraints)
}

// MeanViolation returns the mean of |d - restLength| over all constraints.
func (s *ConstraintSet) MeanViolation(positions []math.Vec3) float32 {
	if len(s.Constraints) == 0 {
		return 0
	}
	var sum float64
	for _, c := range s.Constraints {
		d := positions[c.I].Sub(positions[c.J]).Length()
		sum += gomath.Abs(float64(d - c.RestLength))
	}
	return float32(sum / float64(len(s.Constraints)))
}

// MaxViolation returns the largest |d - restLength| over all constraints.
func (s *ConstraintSet) MaxViolation(positions []math.Vec3) float32 {
	var worst float32
	for _, c := range s.Constraints {
		d := positions[c.I].Sub(positions[c.J]).Length()
		v := d - c.RestLength
		if v < 0 {
			v = -v
		}
		worst = max(worst, v)
	}
	return worst
}

// RestLengthRange returns the shortest and longest rest lengths.
func (s *ConstraintSet) RestLengthRange() (lo, hi float32) {
	if len(s.Constraints) == 0 {
		return 0, 0
	}
	lo, hi = s.Constraints[0].RestLength, s.Constraints[0].RestLength
	for _, c := range s.Constraints[1:] {
		lo = min(lo, c.RestLength)
		hi = max(hi, c.RestLength)
	}
	return lo, hi
}
