// Package gpu provides the buffer-creation side of the renderer that mesh
// decoding hands vertex and index data to.
package gpu

import (
	"errors"

	"github.com/Faultbox/skmesh/pkg/formats"
)

// ErrInvalidHandle is returned when destroying a handle the device never issued.
var ErrInvalidHandle = errors.New("invalid buffer handle")

// VertexBufferHandle identifies a device vertex buffer.
// The zero value is the invalid handle.
type VertexBufferHandle struct {
	ID uint32
}

// Valid reports whether the handle refers to a buffer.
func (h VertexBufferHandle) Valid() bool { return h.ID != 0 }

// IndexBufferHandle identifies a device index buffer of 16-bit indices.
// The zero value is the invalid handle.
type IndexBufferHandle struct {
	ID uint32
}

// Valid reports whether the handle refers to a buffer.
func (h IndexBufferHandle) Valid() bool { return h.ID != 0 }

// Device creates and destroys GPU buffers. The data passed to the create
// calls is copied; callers may reuse it afterwards.
//
// Buffers are not reference counted: every handle returned by a create call
// must be passed to the matching destroy call exactly once.
type Device interface {
	CreateVertexBuffer(data []byte, layout *formats.VertexLayout) (VertexBufferHandle, error)
	CreateIndexBuffer(data []byte) (IndexBufferHandle, error)
	DestroyVertexBuffer(h VertexBufferHandle) error
	DestroyIndexBuffer(h IndexBufferHandle) error
}
