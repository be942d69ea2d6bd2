package cloth

import "github.com/Faultbox/clothsim/pkg/math"

// Integrate advances free vertices one semi-implicit Euler step under accel
// and writes the result into tentative. Velocities of free vertices are
// updated in place. Vertices with zero inverse mass are copied unchanged.
func Integrate(positions, velocities, tentative []math.Vec3, invMasses []float32, accel math.Vec3, dt float32) {
	for i := range positions {
		w := invMasses[i]
		if w == 0 {
			tentative[i] = positions[i]
			continue
		}
		velocities[i] = velocities[i].AddScaled(accel, w*dt)
		tentative[i] = positions[i].AddScaled(velocities[i], dt)
	}
}
