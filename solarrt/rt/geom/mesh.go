package geom

import "fmt"

// Mesh is an indexed triangle list. Vertices holds 3 floats per vertex
// (x, y, z) and Indices holds 3 entries per triangle.
type Mesh struct {
	Vertices []float32
	Indices  []uint32
}

func (m Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

func (m Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Vertex returns the position of vertex i.
func (m Mesh) Vertex(i int) [3]float32 {
	return [3]float32{m.Vertices[3*i], m.Vertices[3*i+1], m.Vertices[3*i+2]}
}

// Validate checks the index buffer against the vertex buffer.
func (m Mesh) Validate() error {
	if len(m.Vertices)%3 != 0 {
		return fmt.Errorf("vertex buffer length %d is not a multiple of 3", len(m.Vertices))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("index buffer length %d is not a multiple of 3", len(m.Indices))
	}
	count := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= count {
			return fmt.Errorf("index %d at position %d out of range (%d vertices)", idx, i, count)
		}
	}
	return nil
}
