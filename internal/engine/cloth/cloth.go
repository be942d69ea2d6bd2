package cloth

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/clothsim/pkg/math"
)

// DefaultMaxTimeStep caps the delta time fed to the integrator (a 30 FPS frame).
const DefaultMaxTimeStep float32 = 1.0 / 30.0

// Options configures a Cloth.
type Options struct {
	Solver  Solver
	Mass    MassPolicy
	Gravity math.Vec3

	// MaxTimeStep clamps the per-frame delta time; zero disables clamping.
	MaxTimeStep float32

	// Pinned marks vertices that never move. Nil pins nothing.
	Pinned []bool

	// Logger receives recovery and clamp notices. Nil discards them.
	Logger *zap.Logger
}

// DefaultOptions returns the solver, mass policy and gravity used by the viewer.
func DefaultOptions() Options {
	return Options{
		Solver:      DefaultSolver(),
		Mass:        DefaultMassPolicy(),
		Gravity:     math.Vec3{Y: -9.8},
		MaxTimeStep: DefaultMaxTimeStep,
	}
}

// StepStats describes one call to Step.
type StepStats struct {
	Frame   uint64
	DT      float32
	Clamped bool

	// Skipped is set when the cloth was stopped or dt was unusable.
	Skipped bool

	// Rejected counts vertex updates dropped for non-finite values.
	Rejected int

	MeanViolation float32
}

// Cloth owns the simulated vertex state of one mesh.
type Cloth struct {
	opts Options
	log  *zap.Logger

	triangles   []Triangle
	topology    *Topology
	constraints *ConstraintSet

	rest       []math.Vec3
	positions  []math.Vec3
	velocities []math.Vec3
	normals    []math.Vec3
	masses     []float32
	invMasses  []float32
	pinned     []bool

	// Per-step scratch, allocated once
	tentative []math.Vec3
	accum     []math.Vec3
	scratch   normalScratch

	frame uint64
}

// New builds topology, constraints and masses for mesh.
// The mesh slices are copied; the caller may reuse them.
func New(mesh Mesh, opts Options) (*Cloth, error) {
	if err := mesh.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mesh: %w", err)
	}

	n := len(mesh.Positions)
	pinned := opts.Pinned
	if pinned == nil {
		pinned = make([]bool, n)
	}
	if len(pinned) != n {
		return nil, fmt.Errorf("%w: %d pins for %d vertices", ErrPinMaskLength, len(pinned), n)
	}

	masses, invMasses, err := AssignMasses(mesh.Positions, pinned, opts.Mass)
	if err != nil {
		return nil, fmt.Errorf("assigning masses: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	c := &Cloth{
		opts:       opts,
		log:        log,
		triangles:  append([]Triangle(nil), mesh.Triangles...),
		rest:       append([]math.Vec3(nil), mesh.Positions...),
		positions:  append([]math.Vec3(nil), mesh.Positions...),
		velocities: make([]math.Vec3, n),
		normals:    make([]math.Vec3, n),
		masses:     masses,
		invMasses:  invMasses,
		pinned:     append([]bool(nil), pinned...),
		tentative:  make([]math.Vec3, n),
		accum:      make([]math.Vec3, n),
		scratch:    newNormalScratch(n, len(mesh.Triangles)),
	}
	c.topology = BuildTopology(n, c.triangles)
	c.constraints = NewConstraintSet(c.topology, c.positions)
	c.recalculateNormals()

	lo, hi := c.constraints.RestLengthRange()
	c.log.Info("cloth built",
		zap.Int("vertices", n),
		zap.Int("triangles", len(c.triangles)),
		zap.Int("constraints", c.constraints.Len()),
		zap.Int("pinned", PinnedCount(c.pinned)),
		zap.Stringer("mass_policy", opts.Mass.Mode),
		zap.Float32("rest_min", lo),
		zap.Float32("rest_max", hi),
	)
	return c, nil
}

// Step advances the simulation by dt seconds when state is Running:
// integrate, relax constraints, reconcile velocities, then refresh normals.
// dt is clamped to MaxTimeStep; a non-positive or non-finite dt skips the frame.
func (c *Cloth) Step(state RunState, dt float32) StepStats {
	stats := StepStats{Frame: c.frame, DT: dt}
	if state != Running {
		stats.Skipped = true
		return stats
	}
	if !math.IsFinite(dt) || dt <= 0 {
		c.log.Debug("skipping step with unusable dt", zap.Float32("dt", dt))
		stats.Skipped = true
		return stats
	}
	if c.opts.MaxTimeStep > 0 && dt > c.opts.MaxTimeStep {
		c.log.Debug("clamping dt",
			zap.Float32("dt", dt),
			zap.Float32("max", c.opts.MaxTimeStep),
		)
		dt = c.opts.MaxTimeStep
		stats.DT = dt
		stats.Clamped = true
	}

	Integrate(c.positions, c.velocities, c.tentative, c.invMasses, c.opts.Gravity, dt)
	stats.Rejected += c.opts.Solver.Solve(c.constraints, c.tentative, c.invMasses, c.accum)
	stats.Rejected += Reconcile(c.positions, c.velocities, c.tentative, c.invMasses, dt)
	c.recalculateNormals()

	if stats.Rejected > 0 {
		c.log.Warn("rejected non-finite vertex updates",
			zap.Uint64("frame", c.frame),
			zap.Int("count", stats.Rejected),
		)
	}

	stats.MeanViolation = c.constraints.MeanViolation(c.positions)
	c.frame++
	return stats
}

// Reset restores the rest pose and zeroes all velocities.
func (c *Cloth) Reset() {
	copy(c.positions, c.rest)
	clear(c.velocities)
	c.frame = 0
	c.recalculateNormals()
	c.log.Debug("cloth reset")
}

func (c *Cloth) recalculateNormals() {
	RecalculateNormals(c.positions, c.triangles, c.scratch.faces, c.normals, c.scratch.sums, c.scratch.counts)
}

// The accessors below return slices owned by the cloth. Callers must treat
// them as read-only; they are rewritten by Step and Reset.

// Positions returns the committed vertex positions.
func (c *Cloth) Positions() []math.Vec3 { return c.positions }

// Velocities returns the vertex velocities.
func (c *Cloth) Velocities() []math.Vec3 { return c.velocities }

// Normals returns the smooth vertex normals.
func (c *Cloth) Normals() []math.Vec3 { return c.normals }

// FaceNormals returns one flat normal per triangle.
func (c *Cloth) FaceNormals() []math.Vec3 { return c.scratch.faces }

// RestPositions returns the positions the cloth was built from.
func (c *Cloth) RestPositions() []math.Vec3 { return c.rest }

// Masses returns per-vertex masses; pinned vertices report 0.
func (c *Cloth) Masses() []float32 { return c.masses }

// InvMasses returns per-vertex inverse masses; pinned vertices are exactly 0.
func (c *Cloth) InvMasses() []float32 { return c.invMasses }

// Pinned returns the pin mask.
func (c *Cloth) Pinned() []bool { return c.pinned }

// Triangles returns the triangle list.
func (c *Cloth) Triangles() []Triangle { return c.triangles }

// Topology returns the neighbor relation.
func (c *Cloth) Topology() *Topology { return c.topology }

// Constraints returns the distance constraints.
func (c *Cloth) Constraints() *ConstraintSet { return c.constraints }

// VertexCount returns the number of vertices.
func (c *Cloth) VertexCount() int { return len(c.positions) }

// Frame returns the number of steps run since construction or the last Reset.
func (c *Cloth) Frame() uint64 { return c.frame }
