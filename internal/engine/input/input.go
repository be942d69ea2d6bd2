// Package input turns raw window events into viewer actions.
package input

import "slices"

// EventType identifies a window event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

// Key identifies a keyboard key independently of the windowing backend.
type Key int

const (
	KeyUnknown Key = iota
	KeySpace
	KeyR
	KeyF
	KeyEscape
	KeyF12
)

// Mouse buttons.
const (
	ButtonLeft  uint8 = 1
	ButtonRight uint8 = 3
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    Key
	Repeat bool // key auto-repeat

	Width  int
	Height int

	MouseX int
	MouseY int
	RelX   int
	RelY   int
	Button uint8

	Wheel float32
}

// Action is a viewer command bound to a key.
type Action int

const (
	ActionNone Action = iota
	ActionToggleRun
	ActionReset
	ActionToggleWireframe
	ActionQuit
	ActionScreenshot
)

func (a Action) String() string {
	switch a {
	case ActionToggleRun:
		return "toggle_run"
	case ActionReset:
		return "reset"
	case ActionToggleWireframe:
		return "toggle_wireframe"
	case ActionQuit:
		return "quit"
	case ActionScreenshot:
		return "screenshot"
	default:
		return "none"
	}
}

// Bindings maps keys to actions.
type Bindings map[Key]Action

// DefaultBindings returns the viewer's default key map.
func DefaultBindings() Bindings {
	return Bindings{
		KeySpace:  ActionToggleRun,
		KeyR:      ActionReset,
		KeyF:      ActionToggleWireframe,
		KeyEscape: ActionQuit,
		KeyF12:    ActionScreenshot,
	}
}

// Frame is the result of processing one frame's events.
type Frame struct {
	Actions []Action
	Quit    bool

	// Orbit is the drag delta in pixels while the left button is held.
	OrbitX, OrbitY float32
	Zoom           float32

	Resized       bool
	Width, Height int
}

// Has reports whether the frame contains action a.
func (f *Frame) Has(a Action) bool {
	return slices.Contains(f.Actions, a)
}

// Input tracks held keys and mouse buttons across frames.
// Actions fire on the press edge only: holding a key or OS auto-repeat
// does not retrigger them.
type Input struct {
	bindings Bindings
	held     map[Key]bool
	dragging bool
	frame    Frame
}

// New creates a new input handler. Nil bindings use DefaultBindings.
func New(bindings Bindings) *Input {
	if bindings == nil {
		bindings = DefaultBindings()
	}
	return &Input{
		bindings: bindings,
		held:     make(map[Key]bool),
	}
}

// Process consumes one frame of events. The returned Frame is reused by the
// next call.
func (i *Input) Process(events []Event) *Frame {
	i.frame = Frame{Actions: i.frame.Actions[:0]}
	f := &i.frame

	for _, e := range events {
		switch e.Type {
		case EventQuit:
			f.Quit = true

		case EventWindowResize:
			f.Resized = true
			f.Width, f.Height = e.Width, e.Height

		case EventKeyDown:
			if e.Repeat || i.held[e.Key] {
				continue
			}
			i.held[e.Key] = true
			if a, ok := i.bindings[e.Key]; ok && a != ActionNone {
				f.Actions = append(f.Actions, a)
				if a == ActionQuit {
					f.Quit = true
				}
			}

		case EventKeyUp:
			delete(i.held, e.Key)

		case EventMouseDown:
			if e.Button == ButtonLeft {
				i.dragging = true
			}

		case EventMouseUp:
			if e.Button == ButtonLeft {
				i.dragging = false
			}

		case EventMouseMove:
			if i.dragging {
				f.OrbitX += float32(e.RelX)
				f.OrbitY += float32(e.RelY)
			}

		case EventMouseWheel:
			f.Zoom += e.Wheel
		}
	}
	return f
}

// Held reports whether key is currently down.
func (i *Input) Held(key Key) bool {
	return i.held[key]
}

// Dragging reports whether an orbit drag is in progress.
func (i *Input) Dragging() bool {
	return i.dragging
}
