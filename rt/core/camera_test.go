package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func exactSettings() CameraSettings {
	// binary-exact steps so accumulation can be compared with ==
	return CameraSettings{
		DefaultZ:    5,
		PanStep:     0.25,
		ZoomStep:    0.5,
		TiltStep:    0.5,
		TiltedAngle: 90,
	}
}

func press(in *InputState, a Action) {
	in.Set(a, true)
}

func releaseAll(in *InputState) {
	for _, a := range Actions() {
		in.Set(a, false)
	}
}

func TestTiltEasesAndClamps(t *testing.T) {
	s := exactSettings()
	ctl := NewCameraController(s)

	for _, n := range []int{1, 10, 179, 180, 181, 400} {
		cam := NewCameraState(s)
		in := &InputState{}

		press(in, ActionToggleMode)
		ctl.Step(cam, in)
		releaseAll(in)
		for i := 1; i < n; i++ {
			ctl.Step(cam, in)
		}

		want := float32(n) * s.TiltStep
		if want > 90 {
			want = 90
		}
		assert.Equal(t, ModeTilted, cam.Mode)
		assert.Equal(t, want, cam.Tilt, "after %d steps", n)
	}
}

func TestTiltReturnsSymmetrically(t *testing.T) {
	s := exactSettings()
	ctl := NewCameraController(s)
	cam := NewCameraState(s)
	in := &InputState{}

	press(in, ActionToggleMode)
	ctl.Step(cam, in)
	releaseAll(in)
	for i := 0; i < 300; i++ {
		ctl.Step(cam, in)
	}
	assert.Equal(t, float32(90), cam.Tilt)

	press(in, ActionToggleMode)
	ctl.Step(cam, in)
	assert.Equal(t, ModeTopDown, cam.Mode)
	assert.Equal(t, float32(89.5), cam.Tilt)

	releaseAll(in)
	for i := 0; i < 10; i++ {
		ctl.Step(cam, in)
	}
	assert.Equal(t, float32(84.5), cam.Tilt)

	for i := 0; i < 500; i++ {
		ctl.Step(cam, in)
	}
	assert.Equal(t, float32(0), cam.Tilt)
}

func TestHeldToggleFlipsOnce(t *testing.T) {
	s := exactSettings()
	ctl := NewCameraController(s)
	cam := NewCameraState(s)
	in := &InputState{}

	for i := 0; i < 5; i++ {
		press(in, ActionToggleMode)
		ctl.Step(cam, in)
	}
	assert.Equal(t, ModeTilted, cam.Mode)
	assert.Equal(t, float32(2.5), cam.Tilt)
}

func TestPanAccumulatesAndFreezes(t *testing.T) {
	s := exactSettings()
	ctl := NewCameraController(s)
	cam := NewCameraState(s)
	in := &InputState{}

	const n = 13
	for i := 0; i < n; i++ {
		press(in, ActionPanRight)
		ctl.Step(cam, in)
	}
	assert.Equal(t, float32(n)*s.PanStep, cam.Offset.X())

	releaseAll(in)
	for i := 0; i < 20; i++ {
		ctl.Step(cam, in)
	}
	assert.Equal(t, float32(n)*s.PanStep, cam.Offset.X())
	assert.Equal(t, float32(0), cam.Offset.Y())
	assert.Equal(t, s.DefaultZ, cam.Offset.Z())
}

func TestPanAndZoomDirections(t *testing.T) {
	s := exactSettings()
	ctl := NewCameraController(s)

	cases := []struct {
		action Action
		want   mgl32.Vec3
	}{
		{ActionPanLeft, mgl32.Vec3{-0.25, 0, 5}},
		{ActionPanRight, mgl32.Vec3{0.25, 0, 5}},
		{ActionPanUp, mgl32.Vec3{0, 0.25, 5}},
		{ActionPanDown, mgl32.Vec3{0, -0.25, 5}},
		{ActionZoomIn, mgl32.Vec3{0, 0, 4.5}},
		{ActionZoomOut, mgl32.Vec3{0, 0, 5.5}},
	}
	for _, c := range cases {
		cam := NewCameraState(s)
		in := &InputState{}
		press(in, c.action)
		ctl.Step(cam, in)
		assert.Equal(t, c.want, cam.Offset, c.action.String())
	}
}

func TestDefaultStepsAccumulate(t *testing.T) {
	s := DefaultCameraSettings()
	ctl := NewCameraController(s)
	cam := NewCameraState(s)
	in := &InputState{}

	for i := 0; i < 100; i++ {
		press(in, ActionPanUp)
		ctl.Step(cam, in)
	}
	assert.InDelta(t, 100*s.PanStep, cam.Offset.Y(), 1e-4)
}

func TestResetRestoresDefault(t *testing.T) {
	s := exactSettings()
	ctl := NewCameraController(s)
	cam := NewCameraState(s)
	in := &InputState{}

	for i := 0; i < 37; i++ {
		press(in, ActionPanLeft)
		press(in, ActionPanUp)
		press(in, ActionZoomOut)
		ctl.Step(cam, in)
	}
	assert.NotEqual(t, mgl32.Vec3{0, 0, s.DefaultZ}, cam.Offset)

	press(in, ActionReset)
	ctl.Step(cam, in)
	assert.Equal(t, mgl32.Vec3{0, 0, s.DefaultZ}, cam.Offset)
}

func TestViewMatrixIsRotationThenTranslation(t *testing.T) {
	cam := &CameraState{Offset: mgl32.Vec3{1, 2, 3}, Tilt: 90}
	want := mgl32.HomogRotate3DX(mgl32.DegToRad(90)).Mul4(mgl32.Translate3D(1, 2, 3))
	assert.True(t, cam.ViewMatrix().ApproxEqualThreshold(want, 1e-6))

	// camera placed at (0,0,z) rotated about X
	pos := cam.ViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	if pos.Sub(mgl32.Vec3{1, -3, 2}).Len() > 1e-4 {
		t.Errorf("camera position = %v, want (1,-3,2)", pos)
	}

	// rebuilding twice gives the same matrix
	assert.Equal(t, cam.ViewMatrix(), cam.ViewMatrix())
}
