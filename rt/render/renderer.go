package render

import (
	"github.com/gekko3d/orrery/rt/core"
	"github.com/gekko3d/orrery/rt/logging"

	"github.com/go-gl/mathgl/mgl32"
)

// Uniforms is everything one draw call needs from the traversal.
type Uniforms struct {
	MVP            mgl32.Mat4
	Model          mgl32.Mat4
	InverseModel   mgl32.Mat3
	Color          mgl32.Vec3
	Constants      mgl32.Vec3
	Shininess      float32
	LightPosition  mgl32.Vec3
	LightColor     mgl32.Vec3
	CameraPosition mgl32.Vec3
}

// Context is the active program the traversal draws through. Calls arrive
// in order SetUniforms, BindTexture, Draw for every drawable node.
type Context interface {
	SetUniforms(u *Uniforms)
	BindTexture(tex core.TextureHandle)
	Draw(mesh core.MeshRef)
}

type Stats struct {
	Visited  int
	Draws    int
	MaxDepth int
}

// Renderer walks a scene depth-first with an explicit transform stack.
type Renderer struct {
	// Validate checks the stack is balanced after every root.
	Validate bool

	stack    []mgl32.Mat4
	uniforms Uniforms
	log      logging.Logger
}

func NewRenderer(log logging.Logger) *Renderer {
	return &Renderer{
		stack: make([]mgl32.Mat4, 0, 8),
		log:   logging.OrNop(log),
	}
}

// CameraPosition unprojects the canonical forward point (0,0,-1,1) through
// inverse(projection × inverse(view)).
func CameraPosition(view, projection mgl32.Mat4) mgl32.Vec3 {
	p := projection.Mul4(view.Inv()).Inv().Mul4x1(mgl32.Vec4{0, 0, -1, 1})
	if p.W() == 0 {
		return p.Vec3()
	}
	return p.Vec3().Mul(1 / p.W())
}

// Render draws every root in order. view is a camera placement transform;
// it is inverted here to obtain the actual view matrix.
func (r *Renderer) Render(ctx Context, scene *core.Scene, view, projection mgl32.Mat4, light core.Light) Stats {
	var stats Stats
	viewProj := projection.Mul4(view.Inv())

	r.uniforms.LightPosition = light.Position
	r.uniforms.LightColor = light.Color
	r.uniforms.CameraPosition = CameraPosition(view, projection)

	r.stack = append(r.stack[:0], mgl32.Ident4())
	for _, root := range scene.Roots {
		r.visit(ctx, scene, root, 0, viewProj, &stats)
		if r.Validate && len(r.stack) != 1 {
			r.log.Errorf("transform stack depth %d after root %d, want 1", len(r.stack), root)
			r.stack = r.stack[:1]
		}
	}
	return stats
}

func (r *Renderer) visit(ctx Context, scene *core.Scene, id core.NodeID, depth int, viewProj mgl32.Mat4, stats *Stats) {
	n := scene.Node(id)
	if n == nil {
		r.log.Warnf("skipping unknown node %d", id)
		return
	}
	stats.Visited++
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}

	top := r.stack[len(r.stack)-1].Mul4(n.Propagated)
	r.stack = append(r.stack, top)

	if n.Mesh.Drawable() {
		model := top.Mul4(n.Local)
		u := &r.uniforms
		u.Model = model
		u.InverseModel = model.Mat3().Inv()
		u.MVP = viewProj.Mul4(model)
		u.Color = n.Material.Color
		u.Constants = n.Material.Constants
		u.Shininess = n.Material.Shininess

		ctx.SetUniforms(u)
		ctx.BindTexture(n.Texture)
		ctx.Draw(n.Mesh)
		stats.Draws++
	}

	for _, child := range n.Children {
		r.visit(ctx, scene, child, depth+1, viewProj, stats)
	}

	r.stack = r.stack[:len(r.stack)-1]
}
