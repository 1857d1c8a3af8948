package app

import (
	"os"

	"github.com/gekko3d/orrery/rt/core"
	"github.com/gekko3d/orrery/rt/gpu"
	"github.com/gekko3d/orrery/rt/logging"
	"github.com/gekko3d/orrery/rt/platform"
	"github.com/gekko3d/orrery/rt/render"
	"github.com/gekko3d/orrery/rt/solar"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// App is the running solar system: window, device, scene and camera. It
// implements loop.Frame.
type App struct {
	Config Config

	Window   *platform.Window
	State    *gpu.State
	Binder   *gpu.Binder
	Context  *gpu.RenderContext
	Renderer *render.Renderer

	Def        *solar.SystemDef
	Scene      *core.Scene
	Animator   *core.Animator
	Camera     *core.CameraState
	Controller *core.CameraController
	Input      core.InputState

	light      core.Light
	projection mgl32.Mat4
	frameErr   bool

	log logging.Logger
}

func NewApp(cfg Config, log logging.Logger) *App {
	return &App{
		Config: cfg,
		log:    logging.OrNop(log),
	}
}

// Init runs every startup stage in order. Any failure is a *StartupError
// and leaves the app safe to Close.
func (a *App) Init() error {
	if err := a.Config.Validate(); err != nil {
		return fail(StageConfig, err)
	}

	prepared, err := Prepare(a.Config, os.DirFS(a.Config.TextureDir), a.log)
	if err != nil {
		return err
	}
	a.Def = prepared.Def

	a.Window, err = platform.NewWindow(a.Config.Width, a.Config.Height, a.Config.Title)
	if err != nil {
		return fail(StageWindow, err)
	}

	width, height := a.Window.FramebufferSize()
	a.State, err = gpu.NewState(a.Window.Handle, width, height, a.log.With("gpu"))
	if err != nil {
		return fail(StageGpu, err)
	}
	a.Binder, err = gpu.NewBinder(a.State, a.log.With("gpu"))
	if err != nil {
		return fail(StageGpu, err)
	}

	a.Context, err = gpu.NewRenderContext(a.State, a.Binder, prepared.VertexSource, prepared.FragmentSource, prepared.Layout, a.Config.MaxDraws, a.log.With("gpu"))
	if err != nil {
		return fail(StageShader, err)
	}

	geom, err := a.Binder.UploadGeometry(prepared.Mesh)
	if err != nil {
		return fail(StageGeometry, err)
	}
	mesh := core.MeshRef{Geometry: geom, First: 0, Count: uint32(prepared.Mesh.VertexCount())}

	handles := map[string]core.TextureHandle{}
	for _, t := range prepared.Textures {
		asset, ok := prepared.Assets.Texture(t.Asset)
		if !ok {
			return fail(StageTexture, errors.Errorf("texture asset %s missing", t.Asset))
		}
		h, err := a.Binder.UploadTexture(asset.Image, t.Wrap)
		if err != nil {
			return fail(StageTexture, errors.Wrap(err, asset.Name))
		}
		prepared.Assets.ReleaseTexture(t.Asset)
		for _, body := range t.Bodies {
			handles[body] = h
		}
	}

	a.Scene, a.Animator, err = solar.Build(a.Def, mesh, handles)
	if err != nil {
		return fail(StageScene, err)
	}

	a.light = a.Def.LightSource()
	a.projection = a.Def.ProjectionMatrix()
	settings := a.Def.CameraSettings()
	a.Camera = core.NewCameraState(settings)
	a.Controller = core.NewCameraController(settings)
	a.Renderer = render.NewRenderer(a.log.With("render"))
	a.Renderer.Validate = a.Config.Debug

	a.log.Infof("scene ready: %d nodes, %d spins", a.Scene.Len(), a.Animator.Len())
	return nil
}

func (a *App) PollEvents() {
	a.Window.PollEvents()
}

func (a *App) ShouldClose() bool {
	return a.Window.ShouldClose()
}

// Update reads input, moves the camera, then advances every spin by one
// frame.
func (a *App) Update() {
	a.Window.PollInput(&a.Input)
	if a.Input.Triggered(core.ActionToggleMode) {
		a.log.Debugf("camera mode toggled")
	}
	a.Controller.Step(a.Camera, &a.Input)
	a.Animator.Step(a.Scene)
}

func (a *App) Render() {
	if err := a.Context.BeginFrame(); err != nil {
		a.frameWarn(err)
		return
	}
	stats := a.Renderer.Render(a.Context, a.Scene, a.Camera.ViewMatrix(), a.projection, a.light)
	if err := a.Context.EndFrame(); err != nil {
		a.frameWarn(err)
		return
	}
	a.frameErr = false
	if a.log.DebugEnabled() {
		a.log.Debugf("frame: %d nodes, %d draws", stats.Visited, stats.Draws)
	}
}

// frameWarn logs the first failure of a run of failed frames.
func (a *App) frameWarn(err error) {
	if !a.frameErr {
		a.log.Warnf("frame skipped: %v", err)
	}
	a.frameErr = true
}

func (a *App) Present() {
	if a.frameErr {
		return
	}
	a.Context.Present()
}

// Close releases GPU resources before the window and GLFW go away.
func (a *App) Close() {
	if a.Context != nil {
		a.Context.Release()
		a.Context = nil
	}
	if a.Binder != nil {
		a.Binder.Release()
		a.Binder = nil
	}
	if a.State != nil {
		a.State.Release()
		a.State = nil
	}
	if a.Window != nil {
		a.Window.Destroy()
		a.Window = nil
	}
}
