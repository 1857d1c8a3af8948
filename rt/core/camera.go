package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

type CameraMode uint8

const (
	ModeTopDown CameraMode = iota
	ModeTilted
)

func (m CameraMode) String() string {
	if m == ModeTilted {
		return "tilted"
	}
	return "top-down"
}

type CameraSettings struct {
	DefaultZ    float32 `yaml:"default_z"`
	PanStep     float32 `yaml:"pan_step"`
	ZoomStep    float32 `yaml:"zoom_step"`
	TiltStep    float32 `yaml:"tilt_step"`
	TiltedAngle float32 `yaml:"tilted_angle"`
}

func DefaultCameraSettings() CameraSettings {
	return CameraSettings{
		DefaultZ:    30,
		PanStep:     0.03,
		ZoomStep:    0.3,
		TiltStep:    0.5,
		TiltedAngle: 90,
	}
}

// Target returns the tilt angle, in degrees, the mode eases toward.
func (s CameraSettings) Target(m CameraMode) float32 {
	if m == ModeTilted {
		return s.TiltedAngle
	}
	return 0
}

// CameraState is the persistent scalar camera state. Tilt is in degrees.
type CameraState struct {
	Offset mgl32.Vec3
	Tilt   float32
	Mode   CameraMode
}

func NewCameraState(s CameraSettings) *CameraState {
	return &CameraState{
		Offset: mgl32.Vec3{0, 0, s.DefaultZ},
		Mode:   ModeTopDown,
	}
}

// ViewMatrix rebuilds the camera placement from the scalar state:
// rotateX(tilt) × translate(offset). Renderers invert it to get the view.
func (c *CameraState) ViewMatrix() mgl32.Mat4 {
	rot := mgl32.HomogRotate3DX(mgl32.DegToRad(c.Tilt))
	return rot.Mul4(mgl32.Translate3D(c.Offset.X(), c.Offset.Y(), c.Offset.Z()))
}

type CameraController struct {
	Settings CameraSettings
}

func NewCameraController(s CameraSettings) *CameraController {
	return &CameraController{Settings: s}
}

// Step integrates one frame of input into the camera state.
func (c *CameraController) Step(cam *CameraState, in *InputState) {
	s := c.Settings

	if in.Triggered(ActionToggleMode) {
		if cam.Mode == ModeTilted {
			cam.Mode = ModeTopDown
		} else {
			cam.Mode = ModeTilted
		}
	}

	target := s.Target(cam.Mode)
	switch {
	case cam.Tilt < target:
		cam.Tilt += s.TiltStep
		if cam.Tilt > target {
			cam.Tilt = target
		}
	case cam.Tilt > target:
		cam.Tilt -= s.TiltStep
		if cam.Tilt < target {
			cam.Tilt = target
		}
	}

	if in.Held(ActionPanLeft) {
		cam.Offset[0] -= s.PanStep
	}
	if in.Held(ActionPanRight) {
		cam.Offset[0] += s.PanStep
	}
	if in.Held(ActionPanUp) {
		cam.Offset[1] += s.PanStep
	}
	if in.Held(ActionPanDown) {
		cam.Offset[1] -= s.PanStep
	}
	if in.Held(ActionZoomIn) {
		cam.Offset[2] -= s.ZoomStep
	}
	if in.Held(ActionZoomOut) {
		cam.Offset[2] += s.ZoomStep
	}

	// applied last so the result is exactly the default
	if in.Held(ActionReset) {
		cam.Offset = mgl32.Vec3{0, 0, s.DefaultZ}
	}
}
