package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/orrery/solarrt/rt/core"
)

const DepthFormat = wgpu.TextureFormatDepth24Plus

// Logger receives per-frame failures that do not stop the loop.
type Logger interface {
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Renderer is the wgpu implementation of core.Device.
type Renderer struct {
	Surface       *wgpu.Surface
	Adapter       *wgpu.Adapter
	Device        *wgpu.Device
	Queue         *wgpu.Queue
	SurfaceConfig *wgpu.SurfaceConfiguration

	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView

	uniformLayout *wgpu.BindGroupLayout
	programs      map[core.Kind]*program

	log Logger
}

var _ core.Device = (*Renderer)(nil)

// NewRenderer creates a surface for desc, picks an adapter and device and
// configures a vsynced swapchain of width x height.
func NewRenderer(desc *wgpu.SurfaceDescriptor, width, height int, log Logger) (*Renderer, error) {
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	surface := instance.CreateSurface(desc)
	if surface == nil {
		return nil, fmt.Errorf("create surface failed")
	}
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}

	caps := surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		return nil, fmt.Errorf("surface reports no supported formats")
	}
	config := &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, config)

	r := &Renderer{
		Surface:       surface,
		Adapter:       adapter,
		Device:        device,
		Queue:         device.GetQueue(),
		SurfaceConfig: config,
		programs:      map[core.Kind]*program{},
		log:           log,
	}
	if err := r.createDepth(); err != nil {
		return nil, err
	}
	if r.uniformLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "BodyUniformsBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uniformSize,
				},
			},
		},
	}); err != nil {
		return nil, fmt.Errorf("uniform layout: %w", err)
	}
	return r, nil
}

func (r *Renderer) createDepth() error {
	if r.depthView != nil {
		r.depthView.Release()
		r.depthTexture.Release()
	}
	tex, err := r.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth",
		Size: wgpu.Extent3D{
			Width:              r.SurfaceConfig.Width,
			Height:             r.SurfaceConfig.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("depth texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("depth view: %w", err)
	}
	r.depthTexture, r.depthView = tex, view
	return nil
}

// Resize reconfigures the swapchain and depth buffer. Zero sizes (minimized
// windows) are ignored.
func (r *Renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	if uint32(width) == r.SurfaceConfig.Width && uint32(height) == r.SurfaceConfig.Height {
		return nil
	}
	r.SurfaceConfig.Width = uint32(width)
	r.SurfaceConfig.Height = uint32(height)
	r.Surface.Configure(r.Adapter, r.Device, r.SurfaceConfig)
	return r.createDepth()
}

func (r *Renderer) CreateVertexBuffer(label string, data []float32) (core.Buffer, error) {
	buf, err := r.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: wgpu.ToBytes(data),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return nil, err
	}
	return &buffer{buf: buf}, nil
}

func (r *Renderer) CreateIndexBuffer(label string, data []uint32) (core.Buffer, error) {
	buf, err := r.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: wgpu.ToBytes(data),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		return nil, err
	}
	return &buffer{buf: buf}, nil
}

func (r *Renderer) CreateUniforms(p core.Program, label string) (core.Uniforms, error) {
	buf, err := r.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	group, err := r.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label,
		Layout: r.uniformLayout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  buf,
				Size:    uniformSize,
			},
		},
	})
	if err != nil {
		buf.Release()
		return nil, err
	}
	return &uniforms{buf: buf, group: group}, nil
}

func (r *Renderer) Release() {
	for _, p := range r.programs {
		p.pipeline.Release()
	}
	r.programs = map[core.Kind]*program{}
	if r.uniformLayout != nil {
		r.uniformLayout.Release()
	}
	if r.depthView != nil {
		r.depthView.Release()
		r.depthTexture.Release()
	}
	r.Device.Release()
	r.Adapter.Release()
	r.Surface.Release()
}

type buffer struct {
	buf *wgpu.Buffer
}

func (b *buffer) Release() {
	b.buf.Release()
}

type uniforms struct {
	buf   *wgpu.Buffer
	group *wgpu.BindGroup
}

func (u *uniforms) Release() {
	u.group.Release()
	u.buf.Release()
}
