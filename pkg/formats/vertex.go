package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Attribute read errors.
var (
	ErrAttribMissing = errors.New("attribute not in layout")
	ErrAttribDecl    = errors.New("invalid attribute declaration")
)

// Decode reads attribute a of vertex i from interleaved vertex data and
// returns it as floats. Components beyond the declared count are zero.
// Normalized integer types map to [0,1] or [-1,1].
func (l *VertexLayout) Decode(a Attrib, vertices []byte, i int) ([4]float32, error) {
	var out [4]float32
	if !l.Has(a) {
		return out, fmt.Errorf("%w: %s", ErrAttribMissing, a)
	}

	decl := l.Decls[a]
	// Num comes from the file unchecked.
	if decl.Size() == 0 {
		return out, fmt.Errorf("%w: %s with %d %s elements", ErrAttribDecl, a, decl.Num, decl.Type)
	}
	start := i*int(l.Stride) + int(l.Offsets[a])
	end := start + int(decl.Size())
	if i < 0 || end > len(vertices) {
		return out, fmt.Errorf("%w: vertex %d %s needs bytes %d..%d, have %d", ErrTruncatedInput, i, a, start, end, len(vertices))
	}
	b := vertices[start:end]

	n := int(decl.Num)
	switch decl.Type {
	case AttribTypeUint8:
		for c := 0; c < n; c++ {
			out[c] = float32(b[c])
			if decl.Normalized {
				out[c] /= 255
			}
		}
	case AttribTypeUint10:
		packed := binary.LittleEndian.Uint32(b)
		for c := 0; c < n; c++ {
			bits, scale := uint32(10), float32(1023)
			if c == 3 {
				bits, scale = 2, 3
			}
			v := float32(packed >> (10 * c) & (1<<bits - 1))
			if decl.Normalized {
				v /= scale
			}
			out[c] = v
		}
	case AttribTypeInt16:
		for c := 0; c < n; c++ {
			v := float32(int16(binary.LittleEndian.Uint16(b[c*2:])))
			if decl.Normalized {
				v = max(v/32767, -1)
			}
			out[c] = v
		}
	case AttribTypeHalf:
		for c := 0; c < n; c++ {
			out[c] = halfToFloat(binary.LittleEndian.Uint16(b[c*2:]))
		}
	case AttribTypeFloat:
		for c := 0; c < n; c++ {
			out[c] = math.Float32frombits(binary.LittleEndian.Uint32(b[c*4:]))
		}
	default:
		return out, fmt.Errorf("%w: unsupported type %s", ErrAttribDecl, decl.Type)
	}
	return out, nil
}

// halfToFloat widens an IEEE 754 binary16 value.
func halfToFloat(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1f
	mant := uint32(h) & 0x3ff

	switch exp {
	case 0:
		// zero or subnormal: mant * 2^-24
		f := float32(mant) / (1 << 24)
		if sign != 0 {
			f = -f
		}
		return f
	case 0x1f:
		return math.Float32frombits(sign | 0x7f800000 | mant<<13)
	}
	return math.Float32frombits(sign | (exp+112)<<23 | mant<<13)
}
