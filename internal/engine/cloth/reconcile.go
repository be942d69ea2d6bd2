package cloth

import "github.com/Faultbox/clothsim/pkg/math"

// Reconcile derives velocities from the tentative displacement and commits
// tentative positions for every free vertex. A vertex whose new position or
// velocity is not finite keeps its position and has its velocity zeroed.
// Returns the number of rejected vertices.
func Reconcile(positions, velocities, tentative []math.Vec3, invMasses []float32, dt float32) int {
	invDT := 1 / dt
	rejected := 0
	for i := range positions {
		if invMasses[i] == 0 {
			continue
		}
		next := tentative[i]
		vel := next.Sub(positions[i]).Scale(invDT)
		if !next.IsFinite() || !vel.IsFinite() {
			velocities[i] = math.Vec3{}
			rejected++
			continue
		}
		velocities[i] = vel
		positions[i] = next
	}
	return rejected
}
