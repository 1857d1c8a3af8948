package core

// Action is a logical camera control, independent of the physical key.
type Action int

const (
	ActionToggleMode Action = iota
	ActionPanLeft
	ActionPanRight
	ActionPanUp
	ActionPanDown
	ActionZoomIn
	ActionZoomOut
	ActionReset
	actionCount
)

var actionNames = [actionCount]string{
	"toggle-mode",
	"pan-left",
	"pan-right",
	"pan-up",
	"pan-down",
	"zoom-in",
	"zoom-out",
	"reset",
}

func (a Action) String() string {
	if a < 0 || a >= actionCount {
		return "unknown"
	}
	return actionNames[a]
}

// Actions lists every action in declaration order.
func Actions() []Action {
	out := make([]Action, actionCount)
	for i := range out {
		out[i] = Action(i)
	}
	return out
}

// InputState is the per-frame key state. It is owned by the frame loop and
// handed to the camera controller by reference.
type InputState struct {
	Pressed      [actionCount]bool
	JustPressed  [actionCount]bool
	JustReleased [actionCount]bool
}

// Set records the current state of an action. Edges are derived against the
// previous call, so every action should be set once per frame.
func (in *InputState) Set(a Action, down bool) {
	if a < 0 || a >= actionCount {
		return
	}
	in.JustPressed[a] = down && !in.Pressed[a]
	in.JustReleased[a] = !down && in.Pressed[a]
	in.Pressed[a] = down
}

func (in *InputState) Held(a Action) bool {
	return a >= 0 && a < actionCount && in.Pressed[a]
}

func (in *InputState) Triggered(a Action) bool {
	return a >= 0 && a < actionCount && in.JustPressed[a]
}
