package cloth

import "github.com/Faultbox/clothsim/pkg/math"

// degenerateEpsilon is the edge length below which a constraint has no usable direction.
const degenerateEpsilon = 1e-7

// Solver relaxes tentative positions toward constraint satisfaction with
// Jacobi iterations: corrections are accumulated for all constraints, then
// each vertex moves by the average of its corrections.
type Solver struct {
	// Iterations trades cost for stiffness: more iterations give stiffer cloth.
	Iterations int

	// StretchStiffness scales the correction when an edge is longer than rest.
	StretchStiffness float32

	// CompressStiffness scales the correction when an edge is shorter than rest.
	// Zero lets the cloth fold freely, which suppresses jitter.
	CompressStiffness float32
}

// DefaultSolver returns 5 iterations resisting stretch only.
func DefaultSolver() Solver {
	return Solver{
		Iterations:        5,
		StretchStiffness:  1,
		CompressStiffness: 0,
	}
}

// Solve runs s.Iterations Jacobi passes over set, moving tentative in place.
// accum is scratch space with one entry per vertex.
// Returns the number of vertex updates dropped because they were not finite.
func (s Solver) Solve(set *ConstraintSet, tentative []math.Vec3, invMasses []float32, accum []math.Vec3) int {
	if len(set.Constraints) == 0 {
		return 0
	}

	dropped := 0
	for range s.Iterations {
		clear(accum)

		for _, c := range set.Constraints {
			w1 := invMasses[c.I]
			w2 := invMasses[c.J]
			wSum := w1 + w2
			if wSum == 0 {
				continue
			}

			delta := tentative[c.I].Sub(tentative[c.J])
			d := delta.Length()
			if d < degenerateEpsilon {
				continue
			}

			stiffness := s.StretchStiffness
			if d < c.RestLength {
				stiffness = s.CompressStiffness
			}
			if stiffness == 0 {
				continue
			}

			magnitude := (d - c.RestLength) / wSum * stiffness
			dir := delta.Scale(1 / d)

			accum[c.I] = accum[c.I].AddScaled(dir, -w1*magnitude)
			accum[c.J] = accum[c.J].AddScaled(dir, w2*magnitude)
		}

		for i, count := range set.Counts {
			if count == 0 || invMasses[i] == 0 {
				continue
			}
			next := tentative[i].AddScaled(accum[i], 1/float32(count))
			if !next.IsFinite() {
				dropped++
				continue
			}
			tentative[i] = next
		}
	}
	return dropped
}
