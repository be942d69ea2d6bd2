package input

import "testing"

func keyDown(k Key) Event { return Event{Type: EventKeyDown, Key: k} }
func keyUp(k Key) Event   { return Event{Type: EventKeyUp, Key: k} }

func TestProcess_EdgeTriggered(t *testing.T) {
	in := New(nil)

	f := in.Process([]Event{keyDown(KeySpace)})
	if !f.Has(ActionToggleRun) {
		t.Fatal("first press should toggle")
	}

	// Held across frames, with OS auto-repeat
	f = in.Process(nil)
	if len(f.Actions) != 0 {
		t.Errorf("held key fired %v", f.Actions)
	}
	f = in.Process([]Event{{Type: EventKeyDown, Key: KeySpace, Repeat: true}})
	if len(f.Actions) != 0 {
		t.Errorf("auto-repeat fired %v", f.Actions)
	}
	f = in.Process([]Event{keyDown(KeySpace)})
	if len(f.Actions) != 0 {
		t.Errorf("duplicate down without up fired %v", f.Actions)
	}

	// Release and press again in one frame
	f = in.Process([]Event{keyUp(KeySpace), keyDown(KeySpace)})
	if !f.Has(ActionToggleRun) {
		t.Error("press after release should toggle")
	}
}

func TestProcess_Bindings(t *testing.T) {
	tests := []struct {
		key  Key
		want Action
	}{
		{KeySpace, ActionToggleRun},
		{KeyR, ActionReset},
		{KeyF, ActionToggleWireframe},
		{KeyEscape, ActionQuit},
		{KeyF12, ActionScreenshot},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			in := New(nil)
			f := in.Process([]Event{keyDown(tt.key)})
			if len(f.Actions) != 1 || f.Actions[0] != tt.want {
				t.Errorf("Process(%v) = %v, want [%v]", tt.key, f.Actions, tt.want)
			}
		})
	}

	in := New(nil)
	if f := in.Process([]Event{keyDown(KeyUnknown)}); len(f.Actions) != 0 {
		t.Errorf("unbound key fired %v", f.Actions)
	}
}

func TestProcess_CustomBindings(t *testing.T) {
	in := New(Bindings{KeyR: ActionToggleRun})
	f := in.Process([]Event{keyDown(KeyR), keyDown(KeySpace)})
	if len(f.Actions) != 1 || f.Actions[0] != ActionToggleRun {
		t.Errorf("Process() = %v, want [toggle_run]", f.Actions)
	}
}

func TestProcess_Quit(t *testing.T) {
	in := New(nil)
	if f := in.Process([]Event{{Type: EventQuit}}); !f.Quit {
		t.Error("quit event should set Quit")
	}
	if f := in.Process(nil); f.Quit {
		t.Error("Quit should not persist across frames")
	}
	if f := in.Process([]Event{keyDown(KeyEscape)}); !f.Quit {
		t.Error("Escape should set Quit")
	}
}

func TestProcess_Orbit(t *testing.T) {
	in := New(nil)

	f := in.Process([]Event{{Type: EventMouseMove, RelX: 5, RelY: 5}})
	if f.OrbitX != 0 || f.OrbitY != 0 {
		t.Errorf("move without drag orbited by %v, %v", f.OrbitX, f.OrbitY)
	}

	f = in.Process([]Event{
		{Type: EventMouseDown, Button: ButtonLeft},
		{Type: EventMouseMove, RelX: 3, RelY: -2},
		{Type: EventMouseMove, RelX: 4, RelY: 1},
	})
	if f.OrbitX != 7 || f.OrbitY != -1 {
		t.Errorf("orbit = %v, %v, want 7, -1", f.OrbitX, f.OrbitY)
	}
	if !in.Dragging() {
		t.Error("Dragging() = false while button held")
	}

	f = in.Process([]Event{
		{Type: EventMouseUp, Button: ButtonLeft},
		{Type: EventMouseMove, RelX: 9, RelY: 9},
	})
	if f.OrbitX != 0 || f.OrbitY != 0 {
		t.Errorf("move after release orbited by %v, %v", f.OrbitX, f.OrbitY)
	}
}

func TestProcess_WheelAndResize(t *testing.T) {
	in := New(nil)
	f := in.Process([]Event{
		{Type: EventMouseWheel, Wheel: 1},
		{Type: EventMouseWheel, Wheel: 0.5},
		{Type: EventWindowResize, Width: 800, Height: 600},
	})
	if f.Zoom != 1.5 {
		t.Errorf("Zoom = %v, want 1.5", f.Zoom)
	}
	if !f.Resized || f.Width != 800 || f.Height != 600 {
		t.Errorf("resize = %v %dx%d, want 800x600", f.Resized, f.Width, f.Height)
	}
}

func TestHeld(t *testing.T) {
	in := New(nil)
	in.Process([]Event{keyDown(KeyF)})
	if !in.Held(KeyF) {
		t.Error("Held(F) = false after press")
	}
	in.Process([]Event{keyUp(KeyF)})
	if in.Held(KeyF) {
		t.Error("Held(F) = true after release")
	}
}
