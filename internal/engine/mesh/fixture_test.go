package mesh

import (
	"encoding/binary"
	"math"

	"github.com/Faultbox/skmesh/pkg/formats"
)

// Helper types for building compiled geometry buffers in tests.

type attr struct {
	offset     uint16
	semanticID uint16
	num        uint8
	typeID     uint16
	normalized bool
	asInt      bool
}

type prim struct {
	name        string
	startIndex  uint32
	numIndices  uint32
	startVertex uint32
	numVertices uint32
}

// positionColor is the 16-byte layout: float3 position at 0, normalized
// uint8x4 color at 12.
var positionColor = []attr{
	{offset: 0, semanticID: 0x0001, num: 3, typeID: 0x0004},
	{offset: 12, semanticID: 0x0005, num: 4, typeID: 0x0001, normalized: true},
}

type meshWriter struct {
	buf []byte
}

func (w *meshWriter) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *meshWriter) u16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }
func (w *meshWriter) u32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }

func (w *meshWriter) f32(vals ...float32) {
	for _, v := range vals {
		w.u32(math.Float32bits(v))
	}
}

func (w *meshWriter) str16(s string) {
	w.u16(uint16(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *meshWriter) tag(t formats.ChunkTag) {
	b := t.Bytes()
	w.buf = append(w.buf, b[:]...)
}

// bounds writes a sphere, a box from lo to hi and an identity OBB.
func (w *meshWriter) bounds(lo, hi float32) {
	c := (lo + hi) / 2
	w.f32(c, c, c, hi-c)
	w.f32(lo, lo, lo, hi, hi, hi)
	w.f32(1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1)
}

// vertexChunk writes a VB chunk whose vertex bytes are i&0xff.
func (w *meshWriter) vertexChunk(stride, count uint16, attrs []attr) {
	w.tag(formats.TagVertexBuffer)
	w.bounds(-1, 1)
	w.u8(uint8(len(attrs)))
	w.u16(stride)
	for _, a := range attrs {
		w.u16(a.offset)
		w.u16(a.semanticID)
		w.u8(a.num)
		w.u16(a.typeID)
		w.u8(b2u(a.normalized))
		w.u8(b2u(a.asInt))
	}
	w.u16(count)
	n := int(stride) * int(count)
	for i := 0; i < n; i++ {
		w.u8(uint8(i))
	}
}

// indexChunk writes an IB chunk with indices i % mod.
func (w *meshWriter) indexChunk(count uint32, mod uint16) {
	w.tag(formats.TagIndexBuffer)
	w.u32(count)
	for i := uint32(0); i < count; i++ {
		w.u16(uint16(i % uint32(mod)))
	}
}

func (w *meshWriter) primitiveChunk(material string, prims ...prim) {
	w.tag(formats.TagPrimitive)
	w.str16(material)
	w.u16(uint16(len(prims)))
	for _, p := range prims {
		w.str16(p.name)
		w.u32(p.startIndex)
		w.u32(p.numIndices)
		w.u32(p.startVertex)
		w.u32(p.numVertices)
		w.bounds(0, 2)
	}
}

// run writes one full VB/IB/PRI sequence with a single primitive covering
// everything.
func (w *meshWriter) run(material string, vertices uint16, indices uint32) {
	w.vertexChunk(16, vertices, positionColor)
	w.indexChunk(indices, max(vertices, 1))
	w.primitiveChunk(material, prim{
		name:        material + "_prim",
		numIndices:  indices,
		numVertices: uint32(vertices),
	})
}

func b2u(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
