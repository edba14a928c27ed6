package gpu

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/skmesh/internal/logger"
	"github.com/Faultbox/skmesh/pkg/formats"
)

// GLDevice creates buffers through OpenGL 4.1 core.
// IMPORTANT: all methods must be called on the thread owning the GL context.
type GLDevice struct {
	// vertex handle ID is the VAO name; the VBO is tracked here.
	vbos map[uint32]uint32
	ebos map[uint32]struct{}
}

// NewGLDevice initializes OpenGL function pointers.
// Must be called AFTER the GL context is current.
func NewGLDevice() (*GLDevice, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	return &GLDevice{
		vbos: make(map[uint32]uint32),
		ebos: make(map[uint32]struct{}),
	}, nil
}

// CreateVertexBuffer uploads interleaved vertex data and records the layout
// in a vertex array object. Attribute locations equal the formats.Attrib value.
func (d *GLDevice) CreateVertexBuffer(data []byte, layout *formats.VertexLayout) (VertexBufferHandle, error) {
	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data), dataPtr(data), gl.STATIC_DRAW)

	if layout != nil {
		stride := int32(layout.Stride)
		for _, a := range layout.Attribs() {
			decl := layout.Decls[a]
			loc := uint32(a)
			size, xtype := glAttribFormat(decl)
			offset := gl.PtrOffset(int(layout.Offsets[a]))
			if decl.AsInt && decl.Type != formats.AttribTypeUint10 {
				gl.VertexAttribIPointer(loc, size, xtype, stride, offset)
			} else {
				gl.VertexAttribPointer(loc, size, xtype, decl.Normalized, stride, offset)
			}
			gl.EnableVertexAttribArray(loc)
		}
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		gl.DeleteBuffers(1, &vbo)
		gl.DeleteVertexArrays(1, &vao)
		return VertexBufferHandle{}, fmt.Errorf("creating vertex buffer: GL error 0x%x", errCode)
	}

	d.vbos[vao] = vbo
	logger.Debug("vertex buffer created",
		zap.Uint32("vao", vao),
		zap.Uint32("vbo", vbo),
		zap.Int("bytes", len(data)),
	)
	return VertexBufferHandle{ID: vao}, nil
}

// CreateIndexBuffer uploads 16-bit index data.
func (d *GLDevice) CreateIndexBuffer(data []byte) (IndexBufferHandle, error) {
	var ebo uint32
	gl.GenBuffers(1, &ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data), dataPtr(data), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)

	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		gl.DeleteBuffers(1, &ebo)
		return IndexBufferHandle{}, fmt.Errorf("creating index buffer: GL error 0x%x", errCode)
	}

	d.ebos[ebo] = struct{}{}
	return IndexBufferHandle{ID: ebo}, nil
}

// DestroyVertexBuffer deletes the VAO and its VBO.
func (d *GLDevice) DestroyVertexBuffer(h VertexBufferHandle) error {
	vbo, ok := d.vbos[h.ID]
	if !ok {
		return fmt.Errorf("%w: vertex buffer %d", ErrInvalidHandle, h.ID)
	}
	vao := h.ID
	gl.DeleteBuffers(1, &vbo)
	gl.DeleteVertexArrays(1, &vao)
	delete(d.vbos, h.ID)
	return nil
}

// DestroyIndexBuffer deletes the EBO.
func (d *GLDevice) DestroyIndexBuffer(h IndexBufferHandle) error {
	if _, ok := d.ebos[h.ID]; !ok {
		return fmt.Errorf("%w: index buffer %d", ErrInvalidHandle, h.ID)
	}
	ebo := h.ID
	gl.DeleteBuffers(1, &ebo)
	delete(d.ebos, h.ID)
	return nil
}

// DrawIndexed draws a range of 16-bit indexed triangles. startVertex is
// added to every index.
func (d *GLDevice) DrawIndexed(vb VertexBufferHandle, ib IndexBufferHandle, startIndex, numIndices, startVertex uint32) {
	if !vb.Valid() || !ib.Valid() || numIndices == 0 {
		return
	}
	gl.BindVertexArray(vb.ID)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ib.ID)
	gl.DrawElementsBaseVertex(gl.TRIANGLES, int32(numIndices), gl.UNSIGNED_SHORT,
		gl.PtrOffset(int(startIndex)*2), int32(startVertex))
	gl.BindVertexArray(0)
}

// Live returns the number of buffers not yet destroyed.
func (d *GLDevice) Live() int {
	return len(d.vbos) + len(d.ebos)
}

// glAttribFormat maps a layout declaration to glVertexAttribPointer's
// size and type arguments.
func glAttribFormat(decl formats.AttribDecl) (int32, uint32) {
	switch decl.Type {
	case formats.AttribTypeUint8:
		return int32(decl.Num), gl.UNSIGNED_BYTE
	case formats.AttribTypeUint10:
		return 4, gl.UNSIGNED_INT_2_10_10_10_REV
	case formats.AttribTypeInt16:
		return int32(decl.Num), gl.SHORT
	case formats.AttribTypeHalf:
		return int32(decl.Num), gl.HALF_FLOAT
	default:
		return int32(decl.Num), gl.FLOAT
	}
}

func dataPtr(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Pointer(&data[0])
}
