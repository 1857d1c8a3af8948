package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestInputEdges(t *testing.T) {
	in := &InputState{}

	in.Set(ActionReset, true)
	assert.True(t, in.Held(ActionReset))
	assert.True(t, in.Triggered(ActionReset))

	in.Set(ActionReset, true)
	assert.True(t, in.Held(ActionReset))
	assert.False(t, in.Triggered(ActionReset))

	in.Set(ActionReset, false)
	assert.False(t, in.Held(ActionReset))
	assert.True(t, in.JustReleased[ActionReset])

	in.Set(ActionReset, false)
	assert.False(t, in.JustReleased[ActionReset])
}

func TestInputIgnoresUnknownAction(t *testing.T) {
	in := &InputState{}
	in.Set(Action(99), true)
	in.Set(Action(-1), true)
	assert.False(t, in.Held(Action(99)))
	assert.Equal(t, "unknown", Action(99).String())
	assert.Len(t, Actions(), int(actionCount))
}

func TestAnimatorPostMultiplies(t *testing.T) {
	s := NewScene()
	n := NewNode("earth")
	n.Propagated = mgl32.Scale3D(0.9, 0.9, 0.9).Mul4(mgl32.Translate3D(3.5, 0, 0))
	id := s.AddRoot(n)

	anim := NewAnimator()
	anim.Add(Spin{Node: id, Target: SpinPropagated, Axis: mgl32.Vec3{0, 1, 0}, Degrees: 1.62})
	anim.Add(Spin{Node: id, Target: SpinLocal, Axis: mgl32.Vec3{1, 1, 1}, Degrees: 0.041})
	assert.Equal(t, 2, anim.Len())

	const frames = 3
	for i := 0; i < frames; i++ {
		anim.Step(s)
	}

	orbit := mgl32.HomogRotate3D(mgl32.DegToRad(1.62), mgl32.Vec3{0, 1, 0})
	spin := mgl32.HomogRotate3D(mgl32.DegToRad(0.041), mgl32.Vec3{1, 1, 1}.Normalize())
	wantProp := n.Propagated
	wantLocal := mgl32.Ident4()
	for i := 0; i < frames; i++ {
		wantProp = wantProp.Mul4(orbit)
		wantLocal = wantLocal.Mul4(spin)
	}

	got := s.Node(id)
	assert.True(t, got.Propagated.ApproxEqualThreshold(wantProp, 1e-5))
	assert.True(t, got.Local.ApproxEqualThreshold(wantLocal, 1e-5))

	// post-multiplication keeps the translation scaled by the setup scale
	p := got.Propagated.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	assert.InDelta(t, 3.15, p.X(), 1e-4)
}

func TestAnimatorSkipsMissingNode(t *testing.T) {
	s := NewScene()
	anim := NewAnimator()
	anim.Add(Spin{Node: 5, Degrees: 10})
	assert.NotPanics(t, func() { anim.Step(s) })
}
