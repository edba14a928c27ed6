package formats

import (
	"encoding/binary"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ChunkTag is a packed four-character code. The fourth byte is usually a
// chunk version.
type ChunkTag uint32

// MakeTag packs four bytes into a tag, first byte lowest.
func MakeTag(a, b, c, d byte) ChunkTag {
	return ChunkTag(uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24)
}

// Chunk tags of the compiled geometry format.
var (
	TagVertexBuffer           = MakeTag('V', 'B', ' ', 0x1)
	TagVertexBufferCompressed = MakeTag('V', 'B', 'C', 0x0)
	TagIndexBuffer            = MakeTag('I', 'B', ' ', 0x0)
	TagIndexBufferCompressed  = MakeTag('I', 'B', 'C', 0x1)
	TagPrimitive              = MakeTag('P', 'R', 'I', 0x0)
)

// Bytes returns the tag as it appears on disk.
func (t ChunkTag) Bytes() [4]byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(t))
	return b
}

// String renders printable bytes as characters and the rest as hex,
// e.g. "VB \x01".
func (t ChunkTag) String() string {
	b := t.Bytes()
	out := make([]byte, 0, 8)
	for _, c := range b {
		if c >= 0x20 && c < 0x7f {
			out = append(out, c)
			continue
		}
		out = append(out, fmt.Sprintf(`\x%02x`, c)...)
	}
	return string(out)
}

// ReadTag reads a chunk tag.
func (r *Reader) ReadTag() (ChunkTag, error) {
	v, err := r.ReadU32()
	return ChunkTag(v), err
}

// Sphere is a bounding sphere.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// OBB is an oriented bounding box stored as a 4x4 transform of the unit cube.
type OBB struct {
	Mtx mgl32.Mat4
}

// Union returns the smallest box enclosing both a and b.
func (a AABB) Union(b AABB) AABB {
	out := a
	for i := 0; i < 3; i++ {
		out.Min[i] = min(a.Min[i], b.Min[i])
		out.Max[i] = max(a.Max[i], b.Max[i])
	}
	return out
}

// Center returns the midpoint of the box.
func (a AABB) Center() mgl32.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Size returns the extent of the box along each axis.
func (a AABB) Size() mgl32.Vec3 {
	return a.Max.Sub(a.Min)
}

// Bounds groups the three precomputed bounding volumes that precede
// vertex data and each primitive. On disk they appear sphere, AABB, OBB.
type Bounds struct {
	Sphere Sphere
	AABB   AABB
	OBB    OBB
}

// ReadBounds reads a sphere, an AABB and an OBB in that order.
func ReadBounds(r *Reader) (Bounds, error) {
	return ReadFixed[Bounds](r)
}
