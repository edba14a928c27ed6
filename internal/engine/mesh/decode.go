package mesh

import (
	"encoding/binary"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/skmesh/internal/engine/gpu"
	"github.com/Faultbox/skmesh/internal/logger"
	"github.com/Faultbox/skmesh/pkg/formats"
)

// Decode errors.
var (
	ErrUnknownChunkTag = errors.New("unknown chunk tag")
	ErrCompressedChunk = errors.New("compressed chunks are not supported")
	ErrDeviceBuffer    = errors.New("device buffer creation failed")
	ErrAlreadyDecoded  = errors.New("mesh already decoded")
	ErrNilDevice       = errors.New("nil device")
)

// Decode reads the chunks of a compiled geometry file from data and fills
// the mesh. Every primitive chunk closes the working instance and appends
// it, so a vertex chunk, index chunk, primitive chunk run becomes one
// instance. The chunk order is not checked: a primitive chunk with no
// buffers before it yields an instance with invalid handles.
//
// Vertex and index data are handed to dev. With ramCopy the bytes are also
// kept on the instance. On error every buffer created so far is released
// and the mesh is left empty. A mesh can be decoded only once, whether or
// not the first call succeeded.
func (m *Mesh) Decode(data []byte, dev gpu.Device, ramCopy bool) error {
	if dev == nil {
		return ErrNilDevice
	}
	if m.decoded {
		return ErrAlreadyDecoded
	}
	m.decoded = true

	d := decoder{
		mesh:    m,
		dev:     dev,
		r:       formats.NewReader(data),
		ramCopy: ramCopy,
	}
	if err := d.run(); err != nil {
		d.abort()
		return err
	}
	if d.inst.HasHandles() {
		// buffers with no primitive chunk after them are never drawn
		logger.Warn("dropping trailing vertex/index chunks without primitives",
			zap.Uint16("vertices", d.inst.VertexCount),
			zap.Uint32("indices", d.inst.IndexCount),
		)
		_ = d.inst.ReleaseHandles()
	}

	logger.Debug("mesh decoded",
		zap.Int("bytes", len(data)),
		zap.Int("instances", len(m.instances)),
		zap.Int("primitives", m.PrimitiveCount()),
	)
	return nil
}

// decoder holds the state of one Decode call.
type decoder struct {
	mesh    *Mesh
	dev     gpu.Device
	r       *formats.Reader
	ramCopy bool

	// working instance, appended and reset after each primitive chunk
	inst Instance
}

func (d *decoder) run() error {
	for !d.r.Done() {
		at := d.r.Offset()
		tag, err := d.r.ReadTag()
		if err != nil {
			return fmt.Errorf("chunk tag at offset %d: %w", at, err)
		}

		switch tag {
		case formats.TagVertexBuffer:
			err = d.vertexBuffer()
		case formats.TagIndexBuffer:
			err = d.indexBuffer()
		case formats.TagPrimitive:
			err = d.primitives(&d.inst)
			if err == nil {
				d.mesh.instances = append(d.mesh.instances, d.inst)
				d.inst.Reset()
			}
		case formats.TagVertexBufferCompressed, formats.TagIndexBufferCompressed:
			return fmt.Errorf("%w: '%s' at offset %d", ErrCompressedChunk, tag, at)
		default:
			// Chunk bodies carry no length, so an unknown tag cannot be skipped.
			return fmt.Errorf("%w: '%s' at offset %d", ErrUnknownChunkTag, tag, at)
		}
		if err != nil {
			return fmt.Errorf("chunk '%s' at offset %d: %w", tag, at, err)
		}
		d.mesh.chunks = append(d.mesh.chunks, Chunk{Tag: tag, Offset: at, Size: d.r.Offset() - at})
	}
	return nil
}

// vertexBuffer reads bounds, layout, vertex count and vertex data.
func (d *decoder) vertexBuffer() error {
	bounds, err := formats.ReadBounds(d.r)
	if err != nil {
		return err
	}
	d.inst.Sphere = bounds.Sphere
	d.inst.AABB = bounds.AABB
	d.inst.OBB = bounds.OBB

	layout, skipped, err := formats.ReadVertexLayout(d.r)
	if err != nil {
		return fmt.Errorf("vertex layout: %w", err)
	}
	if skipped > 0 {
		logger.Debug("skipped unknown vertex attributes", zap.Int("count", skipped))
	}
	d.mesh.layout = layout

	count, err := d.r.ReadU16()
	if err != nil {
		return err
	}
	vertices, err := d.r.View(layout.Size(int(count)))
	if err != nil {
		return fmt.Errorf("vertex data: %w", err)
	}

	// A second vertex chunk before the primitive chunk replaces the first.
	if d.inst.VertexBuffer.Valid() {
		_ = d.dev.DestroyVertexBuffer(d.inst.VertexBuffer)
		d.inst.VertexBuffer = gpu.VertexBufferHandle{}
	}
	vb, err := d.dev.CreateVertexBuffer(vertices, &d.mesh.layout)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeviceBuffer, err)
	}
	d.inst.dev = d.dev
	d.inst.VertexBuffer = vb
	d.inst.VertexCount = count
	if d.ramCopy {
		d.inst.Vertices = append([]byte(nil), vertices...)
	}

	logger.Debug("vertex chunk",
		zap.Uint16("vertices", count),
		zap.Uint16("stride", layout.Stride),
		zap.Int("attributes", layout.Count()),
	)
	return nil
}

// indexBuffer reads the index count and 16-bit index data.
func (d *decoder) indexBuffer() error {
	count, err := d.r.ReadU32()
	if err != nil {
		return err
	}
	// count*2 may not fit in int on 32-bit hosts.
	size := uint64(count) * 2
	if size > uint64(d.r.Remaining()) {
		return fmt.Errorf("index data: %w: need %d bytes, have %d", formats.ErrTruncatedInput, size, d.r.Remaining())
	}
	indices, err := d.r.View(int(size))
	if err != nil {
		return fmt.Errorf("index data: %w", err)
	}

	if d.inst.IndexBuffer.Valid() {
		_ = d.dev.DestroyIndexBuffer(d.inst.IndexBuffer)
		d.inst.IndexBuffer = gpu.IndexBufferHandle{}
	}
	ib, err := d.dev.CreateIndexBuffer(indices)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeviceBuffer, err)
	}
	d.inst.dev = d.dev
	d.inst.IndexBuffer = ib
	d.inst.IndexCount = count
	if d.ramCopy {
		d.inst.Indices = make([]uint16, count)
		for i := range d.inst.Indices {
			d.inst.Indices[i] = binary.LittleEndian.Uint16(indices[i*2:])
		}
	}

	logger.Debug("index chunk", zap.Uint32("indices", count))
	return nil
}

// primitives reads a material name and its primitive list into dst.
func (d *decoder) primitives(dst *Instance) error {
	material, err := d.r.ReadString16()
	if err != nil {
		return fmt.Errorf("material name: %w", err)
	}
	count, err := d.r.ReadU16()
	if err != nil {
		return err
	}

	for i := 0; i < int(count); i++ {
		name, err := d.r.ReadString16()
		if err != nil {
			return fmt.Errorf("primitive %d name: %w", i, err)
		}
		ranges, err := formats.ReadFixed[[4]uint32](d.r)
		if err != nil {
			return fmt.Errorf("primitive %d: %w", i, err)
		}
		bounds, err := formats.ReadBounds(d.r)
		if err != nil {
			return fmt.Errorf("primitive %d bounds: %w", i, err)
		}

		dst.Primitives = append(dst.Primitives, Primitive{
			Name:        name,
			Material:    material,
			StartIndex:  ranges[0],
			IndexCount:  ranges[1],
			StartVertex: ranges[2],
			VertexCount: ranges[3],
			Sphere:      bounds.Sphere,
			AABB:        bounds.AABB,
			OBB:         bounds.OBB,
		})
	}

	logger.Debug("primitive chunk",
		zap.String("material", material),
		zap.Uint16("primitives", count),
	)
	return nil
}

// abort releases every buffer created during a failed decode.
func (d *decoder) abort() {
	_ = d.inst.ReleaseHandles()
	_ = d.mesh.ReleaseHandles()
	d.mesh.instances = nil
	d.mesh.chunks = nil
	d.mesh.layout = formats.VertexLayout{}
}
