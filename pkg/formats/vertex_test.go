package formats

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestVertexLayoutDecode(t *testing.T) {
	var l VertexLayout
	l.Begin().
		Add(AttribPosition, 3, AttribTypeFloat, false, false).
		Add(AttribNormal, 4, AttribTypeUint10, true, false).
		Add(AttribColor0, 4, AttribTypeUint8, true, false).
		Add(AttribTexCoord0, 2, AttribTypeInt16, true, false).
		Add(AttribTexCoord1, 2, AttribTypeHalf, false, false).
		End()
	// 12 + 4 + 4 + 4 + 4
	if l.Stride != 28 {
		t.Fatalf("Stride = %d, want 28", l.Stride)
	}

	vertex := make([]byte, 28) // vertex 0 left zero
	v1 := make([]byte, 28)
	binary.LittleEndian.PutUint32(v1[0:], math.Float32bits(1.5))
	binary.LittleEndian.PutUint32(v1[4:], math.Float32bits(-2))
	binary.LittleEndian.PutUint32(v1[8:], math.Float32bits(3))
	binary.LittleEndian.PutUint32(v1[12:], 1023|0<<10|1023<<20|3<<30)
	copy(v1[16:], []byte{255, 0, 51, 255})
	binary.LittleEndian.PutUint16(v1[20:], uint16(32767))
	binary.LittleEndian.PutUint16(v1[22:], 0x8000) // -32768 clamps to -1
	binary.LittleEndian.PutUint16(v1[24:], 0x3c00) // 1.0
	binary.LittleEndian.PutUint16(v1[26:], 0xc000) // -2.0
	vertex = append(vertex, v1...)

	tests := []struct {
		attrib Attrib
		want   [4]float32
	}{
		{AttribPosition, [4]float32{1.5, -2, 3, 0}},
		{AttribNormal, [4]float32{1, 0, 1, 1}},
		{AttribColor0, [4]float32{1, 0, 0.2, 1}},
		{AttribTexCoord0, [4]float32{1, -1, 0, 0}},
		{AttribTexCoord1, [4]float32{1, -2, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.attrib.String(), func(t *testing.T) {
			got, err := l.Decode(tt.attrib, vertex, 1)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			for c := range got {
				if math.Abs(float64(got[c]-tt.want[c])) > 1e-6 {
					t.Errorf("Decode = %v, want %v", got, tt.want)
					break
				}
			}

			zero, err := l.Decode(tt.attrib, vertex, 0)
			if err != nil || zero != ([4]float32{}) {
				t.Errorf("vertex 0 = %v, %v; want zeros", zero, err)
			}
		})
	}
}

func TestVertexLayoutDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		num     uint8
		typ     AttribType
		attrib  Attrib
		data    int
		vertex  int
		wantErr error
	}{
		{"missing attribute", 3, AttribTypeFloat, AttribNormal, 12, 0, ErrAttribMissing},
		{"vertex past end", 3, AttribTypeFloat, AttribPosition, 12, 1, ErrTruncatedInput},
		{"negative vertex", 3, AttribTypeFloat, AttribPosition, 12, -1, ErrTruncatedInput},
		{"short vertex", 3, AttribTypeFloat, AttribPosition, 11, 0, ErrTruncatedInput},
		{"five floats", 5, AttribTypeFloat, AttribPosition, 40, 0, ErrAttribDecl},
		{"zero elements", 0, AttribTypeUint8, AttribPosition, 40, 0, ErrAttribDecl},
		{"unknown type", 3, AttribTypeCount, AttribPosition, 40, 0, ErrAttribDecl},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l VertexLayout
			l.Begin().Add(AttribPosition, tt.num, tt.typ, false, false).End()
			l.Stride = 20

			if _, err := l.Decode(tt.attrib, make([]byte, tt.data), tt.vertex); !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHalfToFloat(t *testing.T) {
	tests := []struct {
		bits uint16
		want float32
	}{
		{0x0000, 0},
		{0x3c00, 1},
		{0xbc00, -1},
		{0x3800, 0.5},
		{0x7bff, 65504},
		{0x0001, 1.0 / (1 << 24)},
		{0x0400, 1.0 / (1 << 14)},
	}

	for _, tt := range tests {
		if got := halfToFloat(tt.bits); got != tt.want {
			t.Errorf("halfToFloat(%#04x) = %g, want %g", tt.bits, got, tt.want)
		}
	}
	if got := halfToFloat(0x7c00); !math.IsInf(float64(got), 1) {
		t.Errorf("halfToFloat(0x7c00) = %g, want +Inf", got)
	}
}
