package platform

import (
	"github.com/gekko3d/orrery/rt/core"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
)

// Window is a fixed-size GLFW window without a client API; WebGPU draws
// into it through a surface.
type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string

	bindings map[glfw.Key]core.Action
}

// DefaultBindings maps keys to camera actions.
var DefaultBindings = map[glfw.Key]core.Action{
	glfw.KeySpace: core.ActionToggleMode,
	glfw.KeyLeft:  core.ActionPanLeft,
	glfw.KeyRight: core.ActionPanRight,
	glfw.KeyUp:    core.ActionPanUp,
	glfw.KeyDown:  core.ActionPanDown,
	glfw.KeyZ:     core.ActionZoomIn,
	glfw.KeyS:     core.ActionZoomOut,
	glfw.KeyR:     core.ActionReset,
}

// NewWindow initializes GLFW and opens the window. It must run on the main
// OS thread.
func NewWindow(width, height int, title string) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "init glfw")
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "create window")
	}

	return &Window{
		Handle:   win,
		Width:    width,
		Height:   height,
		Title:    title,
		bindings: DefaultBindings,
	}, nil
}

// FramebufferSize is the drawable size in pixels, which may differ from the
// window size on high-DPI displays.
func (w *Window) FramebufferSize() (int, int) {
	fw, fh := w.Handle.GetFramebufferSize()
	if fw <= 0 || fh <= 0 {
		return w.Width, w.Height
	}
	return fw, fh
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

// PollInput samples every bound key into the input state.
func (w *Window) PollInput(in *core.InputState) {
	down := make(map[core.Action]bool, len(w.bindings))
	for key, action := range w.bindings {
		if w.Handle.GetKey(key) == glfw.Press {
			down[action] = true
		}
	}
	for _, action := range core.Actions() {
		in.Set(action, down[action])
	}
}

// Destroy closes the window and shuts GLFW down.
func (w *Window) Destroy() {
	if w.Handle != nil {
		w.Handle.Destroy()
		w.Handle = nil
	}
	glfw.Terminate()
}
