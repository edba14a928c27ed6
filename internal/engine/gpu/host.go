package gpu

import (
	"fmt"
	"sync"

	"github.com/Faultbox/skmesh/pkg/formats"
)

// HostDevice keeps buffers in CPU memory. It is used by tools that inspect
// mesh files without a graphics context, and by tests to account for every
// create and destroy call.
type HostDevice struct {
	mu       sync.Mutex
	nextID   uint32
	vertices map[uint32]hostVertexBuffer
	indices  map[uint32][]byte

	created   int
	destroyed int
}

type hostVertexBuffer struct {
	data   []byte
	layout formats.VertexLayout
}

// Stats counts buffer operations on a HostDevice.
type Stats struct {
	Created   int
	Destroyed int
	Live      int
	Bytes     int
}

// NewHostDevice creates an empty host device.
func NewHostDevice() *HostDevice {
	return &HostDevice{
		vertices: make(map[uint32]hostVertexBuffer),
		indices:  make(map[uint32][]byte),
	}
}

// CreateVertexBuffer stores a copy of data.
func (d *HostDevice) CreateVertexBuffer(data []byte, layout *formats.VertexLayout) (VertexBufferHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.allocID()
	buf := hostVertexBuffer{data: append([]byte(nil), data...)}
	if layout != nil {
		buf.layout = *layout
	}
	d.vertices[id] = buf
	d.created++
	return VertexBufferHandle{ID: id}, nil
}

// CreateIndexBuffer stores a copy of data.
func (d *HostDevice) CreateIndexBuffer(data []byte) (IndexBufferHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.allocID()
	d.indices[id] = append([]byte(nil), data...)
	d.created++
	return IndexBufferHandle{ID: id}, nil
}

// DestroyVertexBuffer frees a vertex buffer.
func (d *HostDevice) DestroyVertexBuffer(h VertexBufferHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.vertices[h.ID]; !ok {
		return fmt.Errorf("%w: vertex buffer %d", ErrInvalidHandle, h.ID)
	}
	delete(d.vertices, h.ID)
	d.destroyed++
	return nil
}

// DestroyIndexBuffer frees an index buffer.
func (d *HostDevice) DestroyIndexBuffer(h IndexBufferHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.indices[h.ID]; !ok {
		return fmt.Errorf("%w: index buffer %d", ErrInvalidHandle, h.ID)
	}
	delete(d.indices, h.ID)
	d.destroyed++
	return nil
}

// VertexData returns the stored bytes and layout of a vertex buffer.
func (d *HostDevice) VertexData(h VertexBufferHandle) ([]byte, formats.VertexLayout, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	buf, ok := d.vertices[h.ID]
	return buf.data, buf.layout, ok
}

// IndexData returns the stored bytes of an index buffer.
func (d *HostDevice) IndexData(h IndexBufferHandle) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, ok := d.indices[h.ID]
	return data, ok
}

// Stats returns the current operation counters.
func (d *HostDevice) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := Stats{
		Created:   d.created,
		Destroyed: d.destroyed,
		Live:      len(d.vertices) + len(d.indices),
	}
	for _, v := range d.vertices {
		s.Bytes += len(v.data)
	}
	for _, i := range d.indices {
		s.Bytes += len(i)
	}
	return s
}

// allocID returns the next non-zero handle ID. Caller holds mu.
func (d *HostDevice) allocID() uint32 {
	d.nextID++
	if d.nextID == 0 {
		d.nextID = 1
	}
	return d.nextID
}
