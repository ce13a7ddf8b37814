package core

import (
	"fmt"

	"github.com/gekko3d/orrery/solarrt/rt/geom"

	"github.com/go-gl/mathgl/mgl32"
)

type BodyDef struct {
	Name        string
	Kind        Kind
	Radius      float32
	Color       mgl32.Vec4
	CentralBody string
}

type Body struct {
	Name        string
	CentralBody string
	Kind        Kind
	Radius      float32
	Color       mgl32.Vec4
	Mesh        geom.Mesh
	// Transform is the model-view matrix. Only its translation column moves.
	Transform mgl32.Mat4

	program   Program
	positions Buffer
	colors    Buffer
	indices   Buffer
	uniforms  Uniforms
}

// NewBody uploads mesh and per-vertex colors and binds the program for
// def.Kind. Vertex positions double as normals since the mesh is a sphere
// centered on the origin.
func NewBody(dev Device, def BodyDef, mesh geom.Mesh) (*Body, error) {
	if def.Radius <= 0 {
		return nil, fmt.Errorf("body %q: radius must be positive, got %v", def.Name, def.Radius)
	}
	if err := mesh.Validate(); err != nil {
		return nil, fmt.Errorf("body %q: %w", def.Name, err)
	}

	b := &Body{
		Name:        def.Name,
		CentralBody: def.CentralBody,
		Kind:        def.Kind,
		Radius:      def.Radius,
		Color:       def.Color,
		Mesh:        mesh,
		Transform:   mgl32.Ident4(),
	}

	var err error
	if b.program, err = dev.CreateProgram(def.Kind); err != nil {
		return nil, fmt.Errorf("body %q: program: %w", def.Name, err)
	}
	if b.positions, err = dev.CreateVertexBuffer(def.Name+" positions", mesh.Vertices); err != nil {
		return nil, fmt.Errorf("body %q: positions: %w", def.Name, err)
	}
	if b.colors, err = dev.CreateVertexBuffer(def.Name+" colors", broadcastColor(def.Color, mesh.VertexCount())); err != nil {
		b.Release()
		return nil, fmt.Errorf("body %q: colors: %w", def.Name, err)
	}
	if b.indices, err = dev.CreateIndexBuffer(def.Name+" indices", mesh.Indices); err != nil {
		b.Release()
		return nil, fmt.Errorf("body %q: indices: %w", def.Name, err)
	}
	if b.uniforms, err = dev.CreateUniforms(b.program, def.Name+" uniforms"); err != nil {
		b.Release()
		return nil, fmt.Errorf("body %q: uniforms: %w", def.Name, err)
	}
	return b, nil
}

func broadcastColor(c mgl32.Vec4, n int) []float32 {
	out := make([]float32, 0, 4*n)
	for i := 0; i < n; i++ {
		out = append(out, c[0], c[1], c[2], c[3])
	}
	return out
}

// UpdatePosition moves the body by overwriting the translation column.
func (b *Body) UpdatePosition(p mgl32.Vec3) {
	b.Transform[12] = p[0]
	b.Transform[13] = p[1]
	b.Transform[14] = p[2]
}

func (b *Body) Position() mgl32.Vec3 {
	return mgl32.Vec3{b.Transform[12], b.Transform[13], b.Transform[14]}
}

// Uniforms returns the uniform block Display uploads for this body.
func (b *Body) Uniforms(s *Scene) UniformData {
	data := UniformData{
		ModelView:  b.Transform,
		Projection: s.Projection,
	}
	if b.Kind == Lit {
		data.Normal = b.Transform.Inv().Transpose()
		data.Light = s.LightPosition.Vec4(1)
	}
	return data
}

// Display records one indexed draw of the whole mesh.
func (b *Body) Display(f Frame, s *Scene) {
	f.UseProgram(b.program)
	f.SetVertexBuffer(SlotPosition, b.positions)
	f.SetVertexBuffer(SlotColor, b.colors)
	if b.Kind == Lit {
		f.SetVertexBuffer(SlotNormal, b.positions)
	}
	f.SetIndexBuffer(b.indices)
	f.SetUniforms(b.uniforms, b.Uniforms(s))
	f.DrawIndexed(uint32(len(b.Mesh.Indices)))
}

func (b *Body) Release() {
	if b.uniforms != nil {
		b.uniforms.Release()
		b.uniforms = nil
	}
	for _, buf := range []*Buffer{&b.positions, &b.colors, &b.indices} {
		if *buf != nil {
			(*buf).Release()
			*buf = nil
		}
	}
}
