package gpu

import (
	"github.com/gekko3d/orrery/rt/core"
	"github.com/gekko3d/orrery/rt/logging"
	"github.com/gekko3d/orrery/rt/render"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// uniformAlignment is the minimum dynamic offset alignment WebGPU guarantees.
const uniformAlignment = 256

// clipCorrection maps OpenGL clip depth [-1,1] onto WebGPU's [0,1].
var clipCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

var ClearColor = wgpu.Color{R: 0, G: 0, B: 0, A: 1}

// RenderContext is the planet pipeline plus the per-frame pass the scene
// traversal draws into. It implements render.Context.
type RenderContext struct {
	state  *State
	binder *Binder
	layout *render.UniformLayout

	vertexModule   *wgpu.ShaderModule
	fragmentModule *wgpu.ShaderModule
	uniformLayout  *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	pipeline       *wgpu.RenderPipeline

	uniformBuffer *wgpu.Buffer
	uniformGroup  *wgpu.BindGroup
	staging       []byte
	stride        uint32
	capacity      int

	// per frame
	surfaceTexture *wgpu.Texture
	surfaceView    *wgpu.TextureView
	encoder        *wgpu.CommandEncoder
	pass           *wgpu.RenderPassEncoder
	slot           int
	current        *geometryEntry
	overflowed     bool

	log logging.Logger
}

func NewRenderContext(state *State, binder *Binder, vertexSrc, fragmentSrc string, layout *render.UniformLayout, capacity int, log logging.Logger) (*RenderContext, error) {
	if capacity <= 0 {
		capacity = 64
	}
	stride := (layout.Size() + uniformAlignment - 1) / uniformAlignment * uniformAlignment
	c := &RenderContext{
		state:    state,
		binder:   binder,
		layout:   layout,
		stride:   stride,
		capacity: capacity,
		staging:  make([]byte, int(stride)*capacity),
		log:      logging.OrNop(log),
	}
	if err := c.build(vertexSrc, fragmentSrc); err != nil {
		c.Release()
		return nil, err
	}
	return c, nil
}

func (c *RenderContext) build(vertexSrc, fragmentSrc string) error {
	device := c.state.Device
	var err error

	c.vertexModule, err = device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "PlanetVertex",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: vertexSrc},
	})
	if err != nil {
		return errors.Wrap(err, "vertex shader")
	}
	c.fragmentModule, err = device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "PlanetFragment",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: fragmentSrc},
	})
	if err != nil {
		return errors.Wrap(err, "fragment shader")
	}

	c.uniformLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "NodeUniformsBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   uint64(c.layout.Size()),
				},
			},
		},
	})
	if err != nil {
		return errors.Wrap(err, "uniform bind group layout")
	}

	c.pipelineLayout, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label: "PlanetPipelineLayout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{
			c.uniformLayout,
			c.binder.TextureLayout(),
		},
	})
	if err != nil {
		return errors.Wrap(err, "pipeline layout")
	}

	c.pipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "PlanetPipeline",
		Layout: c.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     c.vertexModule,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: 12,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
					},
				},
				{
					ArrayStride: 12,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 1},
					},
				},
				{
					ArrayStride: 8,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 2},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     c.fragmentModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    c.state.Config.Format,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return errors.Wrap(err, "render pipeline")
	}

	c.uniformBuffer, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "NodeUniforms",
		Size:  uint64(len(c.staging)),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return errors.Wrap(err, "uniform buffer")
	}

	c.uniformGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "NodeUniformsBG",
		Layout: c.uniformLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: c.uniformBuffer, Offset: 0, Size: uint64(c.layout.Size())},
		},
	})
	if err != nil {
		return errors.Wrap(err, "uniform bind group")
	}
	return nil
}

// BeginFrame acquires the next surface texture and opens the render pass
// with cleared color and depth.
func (c *RenderContext) BeginFrame() error {
	var err error
	c.surfaceTexture, err = c.state.Surface.GetCurrentTexture()
	if err != nil {
		return errors.Wrap(err, "get current texture")
	}
	c.surfaceView, err = c.surfaceTexture.CreateView(nil)
	if err != nil {
		c.endFrameResources()
		return errors.Wrap(err, "create surface view")
	}
	c.encoder, err = c.state.Device.CreateCommandEncoder(nil)
	if err != nil {
		c.endFrameResources()
		return errors.Wrap(err, "create command encoder")
	}

	c.pass = c.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       c.surfaceView,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: ClearColor,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            c.state.DepthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	c.pass.SetPipeline(c.pipeline)
	c.slot = -1
	c.current = nil
	return nil
}

// SetUniforms encodes u into the next slot of the staging buffer and binds
// it. Draws past capacity are dropped.
func (c *RenderContext) SetUniforms(u *render.Uniforms) {
	if c.pass == nil {
		return
	}
	if c.slot+1 >= c.capacity {
		if !c.overflowed {
			c.log.Warnf("more than %d draws in one frame, extra nodes are skipped", c.capacity)
			c.overflowed = true
		}
		c.slot = c.capacity
		return
	}
	c.slot++

	corrected := *u
	corrected.MVP = clipCorrection.Mul4(u.MVP)

	offset := uint32(c.slot) * c.stride
	c.layout.Encode(c.staging[offset:offset+c.stride], &corrected)
	c.pass.SetBindGroup(0, c.uniformGroup, []uint32{offset})
}

func (c *RenderContext) BindTexture(tex core.TextureHandle) {
	if c.pass == nil {
		return
	}
	t, ok := c.binder.texture(tex)
	if !ok {
		c.log.Warnf("unknown texture %d, using white", tex)
		t, _ = c.binder.texture(core.WhiteTexture)
	}
	c.pass.SetBindGroup(1, t.bindGroup, nil)
}

func (c *RenderContext) Draw(mesh core.MeshRef) {
	if c.pass == nil || c.slot >= c.capacity {
		return
	}
	g, ok := c.binder.geometry(mesh.Geometry)
	if !ok {
		c.log.Warnf("unknown geometry %d", mesh.Geometry)
		return
	}
	if g != c.current {
		p := g.packed
		c.pass.SetVertexBuffer(0, g.buffer, p.Positions.Offset, p.Positions.Size)
		c.pass.SetVertexBuffer(1, g.buffer, p.Normals.Offset, p.Normals.Size)
		c.pass.SetVertexBuffer(2, g.buffer, p.UVs.Offset, p.UVs.Size)
		c.current = g
	}
	c.pass.Draw(mesh.Count, 1, mesh.First, 0)
}

// EndFrame closes the pass, uploads this frame's uniforms and submits.
func (c *RenderContext) EndFrame() error {
	if c.pass == nil {
		return errors.New("no frame in progress")
	}
	defer c.endFrameResources()

	err := c.pass.End()
	c.pass.Release()
	c.pass = nil
	if err != nil {
		return errors.Wrap(err, "end render pass")
	}

	if used := c.slot + 1; used > 0 {
		if used > c.capacity {
			used = c.capacity
		}
		err = c.state.Queue.WriteBuffer(c.uniformBuffer, 0, c.staging[:used*int(c.stride)])
		if err != nil {
			return errors.Wrap(err, "write uniforms")
		}
	}

	cmd, err := c.encoder.Finish(nil)
	if err != nil {
		return errors.Wrap(err, "finish encoder")
	}
	defer cmd.Release()
	c.state.Queue.Submit(cmd)
	return nil
}

func (c *RenderContext) Present() {
	c.state.Surface.Present()
}

func (c *RenderContext) endFrameResources() {
	if c.pass != nil {
		c.pass.Release()
		c.pass = nil
	}
	if c.encoder != nil {
		c.encoder.Release()
		c.encoder = nil
	}
	if c.surfaceView != nil {
		c.surfaceView.Release()
		c.surfaceView = nil
	}
	if c.surfaceTexture != nil {
		c.surfaceTexture.Release()
		c.surfaceTexture = nil
	}
}

func (c *RenderContext) Release() {
	c.endFrameResources()
	if c.uniformGroup != nil {
		c.uniformGroup.Release()
		c.uniformGroup = nil
	}
	if c.uniformBuffer != nil {
		c.uniformBuffer.Release()
		c.uniformBuffer = nil
	}
	if c.pipeline != nil {
		c.pipeline.Release()
		c.pipeline = nil
	}
	if c.pipelineLayout != nil {
		c.pipelineLayout.Release()
		c.pipelineLayout = nil
	}
	if c.uniformLayout != nil {
		c.uniformLayout.Release()
		c.uniformLayout = nil
	}
	if c.fragmentModule != nil {
		c.fragmentModule.Release()
		c.fragmentModule = nil
	}
	if c.vertexModule != nil {
		c.vertexModule.Release()
		c.vertexModule = nil
	}
}
