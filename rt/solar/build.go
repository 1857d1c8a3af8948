package solar

import (
	"github.com/gekko3d/orrery/rt/core"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// PivotName is the name of the transform node a body with an orbit hangs from.
func PivotName(body string) string {
	return body + "-orbit"
}

type builder struct {
	def       *SystemDef
	mesh      core.MeshRef
	textures  map[string]core.TextureHandle
	scene     *core.Scene
	animator  *core.Animator
	orbitAxis mgl32.Vec3
	spinAxis  mgl32.Vec3
}

// Build turns a definition into a scene tree and its per-frame animation.
// Every body draws mesh; textures maps body names to uploaded textures.
func Build(def *SystemDef, mesh core.MeshRef, textures map[string]core.TextureHandle) (*core.Scene, *core.Animator, error) {
	b := &builder{
		def:      def,
		mesh:     mesh,
		textures: textures,
		scene:    core.NewScene(),
		animator: core.NewAnimator(),
	}
	b.orbitAxis, _ = vec3("", def.OrbitAxis, mgl32.Vec3{0, 1, 0})
	b.spinAxis, _ = vec3("", def.SpinAxis, mgl32.Vec3{1, 1, 1})

	for i := range def.Bodies {
		if err := b.add(&def.Bodies[i], core.NoNode); err != nil {
			return nil, nil, err
		}
	}
	return b.scene, b.animator, nil
}

func (b *builder) attach(parent core.NodeID, n core.Node) (core.NodeID, error) {
	if parent == core.NoNode {
		return b.scene.AddRoot(n), nil
	}
	return b.scene.AddChild(parent, n)
}

func (b *builder) add(body *BodyDef, parent core.NodeID) error {
	tex, ok := b.textures[body.Name]
	if !ok {
		return errors.Errorf("body %s: no texture uploaded", body.Name)
	}

	if body.Orbit != nil {
		pivot := core.NewNode(PivotName(body.Name))
		s := body.Orbit.Scale
		pivot.Propagated = mgl32.Scale3D(s, s, s)
		id, err := b.attach(parent, pivot)
		if err != nil {
			return err
		}
		if body.Orbit.Speed != 0 {
			b.animator.Add(core.Spin{Node: id, Target: core.SpinPropagated, Axis: b.orbitAxis, Degrees: body.Orbit.Speed})
		}
		parent = id
	}

	n := core.NewNode(body.Name)
	s := body.Scale
	n.Propagated = mgl32.Scale3D(s, s, s).Mul4(mgl32.Translate3D(body.Distance, 0, 0))
	n.Mesh = b.mesh
	n.Texture = tex
	n.Material = b.def.BodyMaterial(body)
	id, err := b.attach(parent, n)
	if err != nil {
		return err
	}

	if body.Revolve != 0 {
		b.animator.Add(core.Spin{Node: id, Target: core.SpinPropagated, Axis: b.orbitAxis, Degrees: body.Revolve})
	}
	if body.Spin != 0 {
		b.animator.Add(core.Spin{Node: id, Target: core.SpinLocal, Axis: b.spinAxis, Degrees: body.Spin})
	}

	for i := range body.Satellites {
		if err := b.add(&body.Satellites[i], id); err != nil {
			return err
		}
	}
	return nil
}
