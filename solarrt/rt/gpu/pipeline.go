package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/orrery/solarrt/rt/core"
	"github.com/gekko3d/orrery/solarrt/rt/shaders"
)

// uniformSize is three mat4x4<f32> plus one vec4<f32>.
const uniformSize = 3*64 + 16

type program struct {
	kind     core.Kind
	pipeline *wgpu.RenderPipeline
}

func (p *program) Kind() core.Kind {
	return p.kind
}

func shaderSource(kind core.Kind) (string, error) {
	switch kind {
	case core.Lit:
		return shaders.LitWGSL, nil
	case core.Emissive:
		return shaders.EmissiveWGSL, nil
	}
	return "", fmt.Errorf("%w: %v", core.ErrUnknownKind, kind)
}

func vertexLayouts(kind core.Kind) []wgpu.VertexBufferLayout {
	layouts := []wgpu.VertexBufferLayout{
		{
			ArrayStride: 3 * 4,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			},
		},
		{
			ArrayStride: 4 * 4,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 1},
			},
		},
	}
	if kind == core.Lit {
		layouts = append(layouts, wgpu.VertexBufferLayout{
			ArrayStride: 3 * 4,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 2},
			},
		})
	}
	return layouts
}

// CreateProgram builds the pipeline for kind once and shares it afterwards.
func (r *Renderer) CreateProgram(kind core.Kind) (core.Program, error) {
	if p, ok := r.programs[kind]; ok {
		return p, nil
	}
	code, err := shaderSource(kind)
	if err != nil {
		return nil, err
	}

	module, err := r.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          kind.String(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: code},
	})
	if err != nil {
		return nil, fmt.Errorf("%s shader: %w", kind, err)
	}
	defer module.Release()

	layout, err := r.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            kind.String(),
		BindGroupLayouts: []*wgpu.BindGroupLayout{r.uniformLayout},
	})
	if err != nil {
		return nil, fmt.Errorf("%s pipeline layout: %w", kind, err)
	}
	defer layout.Release()

	stencil := wgpu.StencilFaceState{
		Compare:     wgpu.CompareFunctionAlways,
		FailOp:      wgpu.StencilOperationKeep,
		DepthFailOp: wgpu.StencilOperationKeep,
		PassOp:      wgpu.StencilOperationKeep,
	}
	pipeline, err := r.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  kind.String(),
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    vertexLayouts(kind),
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    r.SurfaceConfig.Format,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			// sphere winding is not consistent across the grid
			CullMode: wgpu.CullModeNone,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLessEqual,
			StencilFront:      stencil,
			StencilBack:       stencil,
			StencilReadMask:   0xFFFFFFFF,
			StencilWriteMask:  0xFFFFFFFF,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s pipeline: %w", kind, err)
	}

	p := &program{kind: kind, pipeline: pipeline}
	r.programs[kind] = p
	return p, nil
}
