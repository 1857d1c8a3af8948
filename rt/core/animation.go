package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// SpinTarget selects which of a node's matrices a Spin rotates.
type SpinTarget uint8

const (
	SpinPropagated SpinTarget = iota
	SpinLocal
)

// Spin is a constant per-frame rotation, in degrees about Axis.
type Spin struct {
	Node    NodeID
	Target  SpinTarget
	Axis    mgl32.Vec3
	Degrees float32

	step mgl32.Mat4
}

// Animator post-multiplies node matrices by fixed increments once per frame.
// Drift from accumulated float error is left uncorrected.
type Animator struct {
	spins []Spin
}

func NewAnimator() *Animator {
	return &Animator{}
}

func (a *Animator) Add(s Spin) {
	axis := s.Axis
	if axis.Len() == 0 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	s.step = mgl32.HomogRotate3D(mgl32.DegToRad(s.Degrees), axis.Normalize())
	a.spins = append(a.spins, s)
}

func (a *Animator) Len() int {
	return len(a.spins)
}

func (a *Animator) Spins() []Spin {
	return a.spins
}

func (a *Animator) Step(scene *Scene) {
	for i := range a.spins {
		s := &a.spins[i]
		n := scene.Node(s.Node)
		if n == nil {
			continue
		}
		if s.Target == SpinLocal {
			n.Local = n.Local.Mul4(s.step)
		} else {
			n.Propagated = n.Propagated.Mul4(s.step)
		}
	}
}
