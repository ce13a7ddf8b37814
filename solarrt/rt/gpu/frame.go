package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/orrery/solarrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// ClipCorrection remaps OpenGL clip depth [-1, 1] to the WebGPU range [0, 1].
var ClipCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

type frame struct {
	r       *Renderer
	texture *wgpu.Texture
	view    *wgpu.TextureView
	encoder *wgpu.CommandEncoder
	pass    *wgpu.RenderPassEncoder
}

// BeginFrame acquires the next swapchain image and opens a render pass that
// clears color to clear and depth to 1.
func (r *Renderer) BeginFrame(clear mgl32.Vec4) (core.Frame, error) {
	texture, err := r.Surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("get current texture: %w", err)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, fmt.Errorf("create view: %w", err)
	}
	encoder, err := r.Device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		texture.Release()
		return nil, fmt.Errorf("create command encoder: %w", err)
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    view,
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: float64(clear[0]),
					G: float64(clear[1]),
					B: float64(clear[2]),
					A: float64(clear[3]),
				},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
			StencilLoadOp:   wgpu.LoadOpUndefined,
			StencilStoreOp:  wgpu.StoreOpUndefined,
		},
	})

	return &frame{
		r:       r,
		texture: texture,
		view:    view,
		encoder: encoder,
		pass:    pass,
	}, nil
}

func (f *frame) UseProgram(p core.Program) {
	prog, ok := p.(*program)
	if !ok {
		f.r.log.Errorf("program %T was not created by this renderer", p)
		return
	}
	f.pass.SetPipeline(prog.pipeline)
}

func (f *frame) SetVertexBuffer(slot uint32, b core.Buffer) {
	buf := b.(*buffer)
	f.pass.SetVertexBuffer(slot, buf.buf, 0, wgpu.WholeSize)
}

func (f *frame) SetIndexBuffer(b core.Buffer) {
	buf := b.(*buffer)
	f.pass.SetIndexBuffer(buf.buf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
}

func (f *frame) SetUniforms(u core.Uniforms, data core.UniformData) {
	un := u.(*uniforms)
	data.Projection = ClipCorrection.Mul4(data.Projection)
	if err := f.r.Queue.WriteBuffer(un.buf, 0, wgpu.ToBytes([]core.UniformData{data})); err != nil {
		f.r.log.Warnf("write uniforms: %v", err)
	}
	f.pass.SetBindGroup(0, un.group, nil)
}

func (f *frame) DrawIndexed(indexCount uint32) {
	f.pass.DrawIndexed(indexCount, 1, 0, 0, 0)
}

// End finishes the pass, submits it and presents the image.
func (f *frame) End() error {
	defer f.texture.Release()
	defer f.view.Release()
	defer f.encoder.Release()

	err := f.pass.End()
	f.pass.Release()
	if err != nil {
		return fmt.Errorf("render pass end: %w", err)
	}
	cmd, err := f.encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("encoder finish: %w", err)
	}
	defer cmd.Release()

	f.r.Queue.Submit(cmd)
	f.r.Surface.Present()
	return nil
}
