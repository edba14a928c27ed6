// Package mesh loads compiled geometry files into renderable mesh instances.
package mesh

import (
	"errors"

	"github.com/Faultbox/skmesh/internal/engine/gpu"
	"github.com/Faultbox/skmesh/pkg/formats"
)

// Primitive is a named draw range inside its instance's vertex and index
// buffers.
type Primitive struct {
	Name     string
	Material string

	StartIndex  uint32
	IndexCount  uint32
	StartVertex uint32
	VertexCount uint32

	Sphere formats.Sphere
	AABB   formats.AABB
	OBB    formats.OBB
}

// Instance is one vertex/index buffer pair, its bounds and its primitives.
//
// The device buffers are owned by the instance but not released
// automatically: ReleaseHandles must be called once rendering that uses them
// has stopped.
type Instance struct {
	VertexBuffer gpu.VertexBufferHandle
	IndexBuffer  gpu.IndexBufferHandle

	// Widths follow the file format: 16-bit vertex count, 32-bit index count.
	VertexCount uint16
	IndexCount  uint32

	// Host copies, only filled when decoding with ramCopy.
	Vertices []byte
	Indices  []uint16

	Sphere formats.Sphere
	AABB   formats.AABB
	OBB    formats.OBB

	Primitives []Primitive

	dev gpu.Device
}

// Reset returns every field to the empty state. Primitives is set to nil,
// not truncated, so a copy appended earlier keeps its own slice.
func (in *Instance) Reset() {
	*in = Instance{}
}

// ReleaseHandles destroys the instance's device buffers and clears the
// handles. Calling it again is a no-op.
func (in *Instance) ReleaseHandles() error {
	var errs []error
	if in.dev != nil && in.VertexBuffer.Valid() {
		errs = append(errs, in.dev.DestroyVertexBuffer(in.VertexBuffer))
	}
	if in.dev != nil && in.IndexBuffer.Valid() {
		errs = append(errs, in.dev.DestroyIndexBuffer(in.IndexBuffer))
	}
	in.VertexBuffer = gpu.VertexBufferHandle{}
	in.IndexBuffer = gpu.IndexBufferHandle{}
	return errors.Join(errs...)
}

// HasHandles reports whether any device buffer is still held.
func (in *Instance) HasHandles() bool {
	return in.VertexBuffer.Valid() || in.IndexBuffer.Valid()
}

// Chunk locates one decoded chunk in the source bytes. Size includes the
// four tag bytes.
type Chunk struct {
	Tag    formats.ChunkTag
	Offset int
	Size   int
}

// Mesh is a decoded geometry file.
type Mesh struct {
	layout    formats.VertexLayout
	instances []Instance
	chunks    []Chunk
	decoded   bool
}

// New returns an empty mesh ready for Decode.
func New() *Mesh {
	return &Mesh{}
}

// Layout returns the last vertex layout decoded. All instances of a
// compiled file share it.
func (m *Mesh) Layout() formats.VertexLayout {
	return m.layout
}

// Instances returns the instances in file order. The slice is owned by the
// mesh and must not be modified.
func (m *Mesh) Instances() []Instance {
	return m.instances
}

// Chunks returns the decoded chunks in file order.
func (m *Mesh) Chunks() []Chunk {
	return m.chunks
}

// ReleaseHandles releases the device buffers of every instance.
func (m *Mesh) ReleaseHandles() error {
	var errs []error
	for i := range m.instances {
		errs = append(errs, m.instances[i].ReleaseHandles())
	}
	return errors.Join(errs...)
}

// VertexTotal returns the number of vertices over all instances.
func (m *Mesh) VertexTotal() int {
	total := 0
	for _, in := range m.instances {
		total += int(in.VertexCount)
	}
	return total
}

// IndexTotal returns the number of indices over all instances.
func (m *Mesh) IndexTotal() int {
	total := 0
	for _, in := range m.instances {
		total += int(in.IndexCount)
	}
	return total
}

// PrimitiveCount returns the number of primitives over all instances.
func (m *Mesh) PrimitiveCount() int {
	total := 0
	for _, in := range m.instances {
		total += len(in.Primitives)
	}
	return total
}

// Bounds returns the union of the instance boxes, or false for an empty mesh.
func (m *Mesh) Bounds() (formats.AABB, bool) {
	if len(m.instances) == 0 {
		return formats.AABB{}, false
	}
	box := m.instances[0].AABB
	for _, in := range m.instances[1:] {
		box = box.Union(in.AABB)
	}
	return box, true
}

// Materials returns the distinct material names in first-use order.
func (m *Mesh) Materials() []string {
	seen := make(map[string]bool)
	var out []string
	for _, in := range m.instances {
		for _, p := range in.Primitives {
			if !seen[p.Material] {
				seen[p.Material] = true
				out = append(out, p.Material)
			}
		}
	}
	return out
}
