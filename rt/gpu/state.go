package gpu

import (
	"github.com/gekko3d/orrery/rt/logging"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
)

const DepthFormat = wgpu.TextureFormatDepth24Plus

// State is the device, queue and swapchain surface for one window, plus the
// depth buffer that matches it.
type State struct {
	Surface *wgpu.Surface
	Adapter *wgpu.Adapter
	Device  *wgpu.Device
	Queue   *wgpu.Queue
	Config  *wgpu.SurfaceConfiguration

	depthTexture *wgpu.Texture
	DepthView    *wgpu.TextureView

	log logging.Logger
}

func NewState(win *glfw.Window, width, height int, log logging.Logger) (*State, error) {
	s := &State{log: logging.OrNop(log)}

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	s.Surface = instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(win))

	var err error
	s.Adapter, err = instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: s.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		s.Release()
		return nil, errors.Wrap(err, "request adapter")
	}

	s.Device, err = s.Adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Orrery Device",
	})
	if err != nil {
		s.Release()
		return nil, errors.Wrap(err, "request device")
	}
	s.Queue = s.Device.GetQueue()

	caps := s.Surface.GetCapabilities(s.Adapter)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		s.Release()
		return nil, errors.New("surface reports no formats")
	}
	s.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	s.Surface.Configure(s.Adapter, s.Device, s.Config)

	if err := s.createDepth(); err != nil {
		s.Release()
		return nil, err
	}

	s.log.Infof("surface %dx%d, format %v", width, height, s.Config.Format)
	return s, nil
}

func (s *State) createDepth() error {
	tex, err := s.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth",
		Size: wgpu.Extent3D{
			Width:              s.Config.Width,
			Height:             s.Config.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return errors.Wrap(err, "create depth texture")
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return errors.Wrap(err, "create depth view")
	}
	s.depthTexture = tex
	s.DepthView = view
	return nil
}

// Release frees everything in reverse creation order. Safe on a partially
// built State.
func (s *State) Release() {
	if s.DepthView != nil {
		s.DepthView.Release()
		s.DepthView = nil
	}
	if s.depthTexture != nil {
		s.depthTexture.Release()
		s.depthTexture = nil
	}
	if s.Queue != nil {
		s.Queue.Release()
		s.Queue = nil
	}
	if s.Device != nil {
		s.Device.Release()
		s.Device = nil
	}
	if s.Adapter != nil {
		s.Adapter.Release()
		s.Adapter = nil
	}
	if s.Surface != nil {
		s.Surface.Release()
		s.Surface = nil
	}
}
