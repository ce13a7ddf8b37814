package core

import "github.com/go-gl/mathgl/mgl32"

// Buffer is a GPU resource owned by a Body.
type Buffer interface {
	Release()
}

// Program is a compiled shader pair for one Kind. Devices may hand out the
// same Program to every body of a kind.
type Program interface {
	Kind() Kind
}

// Uniforms is a per-body uniform block bound alongside a Program.
type Uniforms interface {
	Release()
}

// UniformData is the uniform block shared by both shader pairs. Emissive
// programs ignore Normal and Light.
type UniformData struct {
	ModelView  mgl32.Mat4
	Projection mgl32.Mat4
	Normal     mgl32.Mat4
	Light      mgl32.Vec4
}

// Device creates GPU resources and frames.
type Device interface {
	CreateVertexBuffer(label string, data []float32) (Buffer, error)
	CreateIndexBuffer(label string, data []uint32) (Buffer, error)
	CreateProgram(kind Kind) (Program, error)
	CreateUniforms(p Program, label string) (Uniforms, error)
	// BeginFrame acquires the next surface texture and clears color and
	// depth.
	BeginFrame(clear mgl32.Vec4) (Frame, error)
}

// Frame records draws for one presented image. Recording never fails; End
// submits and presents.
type Frame interface {
	UseProgram(p Program)
	SetVertexBuffer(slot uint32, b Buffer)
	SetIndexBuffer(b Buffer)
	SetUniforms(u Uniforms, data UniformData)
	DrawIndexed(indexCount uint32)
	End() error
}

// Vertex buffer slots.
const (
	SlotPosition uint32 = 0
	SlotColor    uint32 = 1
	SlotNormal   uint32 = 2
)
