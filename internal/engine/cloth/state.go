package cloth

// RunState says whether Step advances the simulation.
type RunState int

const (
	// Stopped leaves positions and velocities untouched.
	Stopped RunState = iota
	// Running integrates, relaxes and reconciles once per Step.
	Running
)

// Toggle flips between Stopped and Running.
func (s RunState) Toggle() RunState {
	if s == Running {
		return Stopped
	}
	return Running
}

// String returns a human-readable state name.
func (s RunState) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}
