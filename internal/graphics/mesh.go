package graphics

import (
	"fmt"
	"runtime"
)

// Mesh is a vertex array ready to draw with DrawArrays semantics.
type Mesh struct {
	driver      MeshDriver
	handle      *meshHandle
	cleanup     runtime.Cleanup
	mode        Primitive
	vertexCount int32
	closed      bool
}

type meshHandle struct {
	releaser Releaser
	vao      uint32
}

// NewMesh uploads interleaved vertices. attribs lists the component count of
// each attribute; their sum is the vertex stride in floats.
func NewMesh(driver MeshDriver, vertices []float32, attribs []int32, mode Primitive) (*Mesh, error) {
	var stride int32
	for _, a := range attribs {
		stride += a
	}
	if stride == 0 || len(vertices)%int(stride) != 0 {
		return nil, fmt.Errorf("mesh: %d floats do not divide into vertices of %d", len(vertices), stride)
	}
	m := &Mesh{
		driver:      driver,
		handle:      &meshHandle{releaser: driver, vao: driver.CreateMesh(vertices, attribs)},
		mode:        mode,
		vertexCount: int32(len(vertices)) / stride,
	}
	m.cleanup = runtime.AddCleanup(m, func(h *meshHandle) {
		h.releaser.DeleteLater(KindMesh, h.vao)
	}, m.handle)
	return m, nil
}

func (m *Mesh) VertexCount() int32 { return m.vertexCount }

func (m *Mesh) Draw() {
	if m.closed || m.vertexCount == 0 {
		return
	}
	m.driver.DrawMesh(m.handle.vao, m.mode, 0, m.vertexCount)
}

func (m *Mesh) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	m.cleanup.Stop()
	m.driver.DeleteMesh(m.handle.vao)
	return nil
}

// Built-in meshes: position (3) + normal (3) + uv (2).
var (
	meshAttribs = []int32{3, 3, 2}

	quadVertices = []float32{
		-0.5, -0.5, 0, 0, 0, 1, 0, 0,
		0.5, -0.5, 0, 0, 0, 1, 1, 0,
		0.5, 0.5, 0, 0, 0, 1, 1, 1,
		-0.5, -0.5, 0, 0, 0, 1, 0, 0,
		0.5, 0.5, 0, 0, 0, 1, 1, 1,
		-0.5, 0.5, 0, 0, 0, 1, 0, 1,
	}
)

// cubeVertices builds a unit cube centered on the origin, 36 vertices.
func cubeVertices() []float32 {
	type face struct {
		normal [3]float32
		corner [4][3]float32
	}
	faces := []face{
		{[3]float32{0, 0, 1}, [4][3]float32{{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}}},
		{[3]float32{1, 0, 0}, [4][3]float32{{0.5, -0.5, 0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-0.5, -0.5, -0.5}, {-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}, {-0.5, -0.5, 0.5}}},
	}
	uvs := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	order := [6]int{0, 1, 2, 0, 2, 3}

	out := make([]float32, 0, 36*8)
	for _, f := range faces {
		for _, i := range order {
			c := f.corner[i]
			out = append(out, c[0], c[1], c[2], f.normal[0], f.normal[1], f.normal[2], uvs[i][0], uvs[i][1])
		}
	}
	return out
}

// NewPrimitiveMesh builds one of the named built-in meshes: "quad" or "cube".
func NewPrimitiveMesh(driver MeshDriver, name string) (*Mesh, error) {
	switch name {
	case "quad":
		return NewMesh(driver, quadVertices, meshAttribs, PrimTriangles)
	case "cube", "":
		return NewMesh(driver, cubeVertices(), meshAttribs, PrimTriangles)
	}
	return nil, fmt.Errorf("unknown mesh %q", name)
}
