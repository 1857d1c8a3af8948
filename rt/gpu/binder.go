package gpu

import (
	"image"

	"github.com/gekko3d/orrery/rt/assets"
	"github.com/gekko3d/orrery/rt/core"
	"github.com/gekko3d/orrery/rt/geometry"
	"github.com/gekko3d/orrery/rt/logging"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

type geometryEntry struct {
	buffer *wgpu.Buffer
	packed geometry.Packed
}

type textureEntry struct {
	texture   *wgpu.Texture
	view      *wgpu.TextureView
	sampler   *wgpu.Sampler
	bindGroup *wgpu.BindGroup
}

// Binder owns the GPU copies of meshes and textures and hands out the
// handles the scene refers to them by. Texture handle 0 is always a 1x1
// white texture.
type Binder struct {
	state         *State
	textureLayout *wgpu.BindGroupLayout
	geometries    []geometryEntry
	textures      []textureEntry
	log           logging.Logger
}

func NewBinder(state *State, log logging.Logger) (*Binder, error) {
	layout, err := state.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "TextureBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
					Multisampled:  false,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create texture bind group layout")
	}

	b := &Binder{
		state:         state,
		textureLayout: layout,
		log:           logging.OrNop(log),
	}

	white := image.NewRGBA(image.Rect(0, 0, 1, 1))
	copy(white.Pix, []byte{0xff, 0xff, 0xff, 0xff})
	handle, err := b.UploadTexture(white, core.WrapRepeat)
	if err != nil {
		b.Release()
		return nil, errors.Wrap(err, "upload white texture")
	}
	if handle != core.WhiteTexture {
		b.Release()
		return nil, errors.Errorf("white texture got handle %d", handle)
	}
	return b, nil
}

func (b *Binder) TextureLayout() *wgpu.BindGroupLayout {
	return b.textureLayout
}

// UploadGeometry packs the mesh into one vertex buffer. Handles start at 1
// so the zero MeshRef never resolves.
func (b *Binder) UploadGeometry(m *geometry.Mesh) (core.GeometryHandle, error) {
	packed := geometry.Pack(m)
	if packed.VertexCount == 0 {
		return 0, errors.New("empty mesh")
	}
	buf, err := b.state.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Mesh Buffer",
		Contents: packed.Data,
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return 0, errors.Wrap(err, "create mesh buffer")
	}
	b.geometries = append(b.geometries, geometryEntry{buffer: buf, packed: packed})
	b.log.Debugf("geometry %d: %d vertices, %d bytes", len(b.geometries), packed.VertexCount, len(packed.Data))
	return core.GeometryHandle(len(b.geometries)), nil
}

func (b *Binder) geometry(h core.GeometryHandle) (*geometryEntry, bool) {
	i := int(h) - 1
	if i < 0 || i >= len(b.geometries) {
		return nil, false
	}
	return &b.geometries[i], true
}

func (b *Binder) texture(h core.TextureHandle) (*textureEntry, bool) {
	i := int(h)
	if i < 0 || i >= len(b.textures) {
		return nil, false
	}
	return &b.textures[i], true
}

func addressMode(w core.WrapMode) wgpu.AddressMode {
	if w == core.WrapClamp {
		return wgpu.AddressModeClampToEdge
	}
	return wgpu.AddressModeRepeat
}

// UploadTexture converts img to RGBA8, writes its full mip chain and builds
// a linear sampler with the requested wrap mode.
func (b *Binder) UploadTexture(img image.Image, wrap core.WrapMode) (core.TextureHandle, error) {
	levels := assets.MipChain(assets.ToRGBA(img))
	if len(levels) == 0 {
		return 0, errors.New("empty image")
	}
	base := levels[0].Bounds()

	tex, err := b.state.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Body Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(base.Dx()),
			Height:             uint32(base.Dy()),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: uint32(len(levels)),
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return 0, errors.Wrap(err, "create texture")
	}

	for i, level := range levels {
		w, h := uint32(level.Bounds().Dx()), uint32(level.Bounds().Dy())
		err = b.state.Queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  tex,
				MipLevel: uint32(i),
				Origin:   wgpu.Origin3D{},
				Aspect:   wgpu.TextureAspectAll,
			},
			level.Pix,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  4 * w,
				RowsPerImage: h,
			},
			&wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		)
		if err != nil {
			tex.Release()
			return 0, errors.Wrapf(err, "write mip level %d", i)
		}
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return 0, errors.Wrap(err, "create texture view")
	}

	mode := addressMode(wrap)
	sampler, err := b.state.Device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  mode,
		AddressModeV:  mode,
		AddressModeW:  mode,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   float32(len(levels)),
		Compare:       wgpu.CompareFunctionUndefined,
		MaxAnisotropy: 1,
	})
	if err != nil {
		view.Release()
		tex.Release()
		return 0, errors.Wrap(err, "create sampler")
	}

	group, err := b.state.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Texture BG",
		Layout: b.textureLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view},
			{Binding: 1, Sampler: sampler},
		},
	})
	if err != nil {
		sampler.Release()
		view.Release()
		tex.Release()
		return 0, errors.Wrap(err, "create texture bind group")
	}

	b.textures = append(b.textures, textureEntry{
		texture:   tex,
		view:      view,
		sampler:   sampler,
		bindGroup: group,
	})
	handle := core.TextureHandle(len(b.textures) - 1)
	b.log.Debugf("texture %d: %dx%d, %d levels, %v", handle, base.Dx(), base.Dy(), len(levels), wrap)
	return handle, nil
}

func (b *Binder) Release() {
	for _, t := range b.textures {
		t.bindGroup.Release()
		t.sampler.Release()
		t.view.Release()
		t.texture.Release()
	}
	b.textures = nil
	for _, g := range b.geometries {
		g.buffer.Release()
	}
	b.geometries = nil
	if b.textureLayout != nil {
		b.textureLayout.Release()
		b.textureLayout = nil
	}
}
