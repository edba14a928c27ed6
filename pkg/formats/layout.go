package formats

import "fmt"

// Attrib is a vertex attribute semantic.
type Attrib uint8

// Vertex attribute semantics.
const (
	AttribPosition Attrib = iota
	AttribNormal
	AttribTangent
	AttribBitangent
	AttribColor0
	AttribColor1
	AttribColor2
	AttribColor3
	AttribIndices
	AttribWeight
	AttribTexCoord0
	AttribTexCoord1
	AttribTexCoord2
	AttribTexCoord3
	AttribTexCoord4
	AttribTexCoord5
	AttribTexCoord6
	AttribTexCoord7

	AttribCount
)

var attribNames = [AttribCount]string{
	"Position", "Normal", "Tangent", "Bitangent",
	"Color0", "Color1", "Color2", "Color3",
	"Indices", "Weight",
	"TexCoord0", "TexCoord1", "TexCoord2", "TexCoord3",
	"TexCoord4", "TexCoord5", "TexCoord6", "TexCoord7",
}

// String returns the semantic name.
func (a Attrib) String() string {
	if a < AttribCount {
		return attribNames[a]
	}
	return fmt.Sprintf("Unknown(%d)", a)
}

// AttribType is the element type of a vertex attribute.
type AttribType uint8

// Vertex attribute element types.
const (
	AttribTypeUint8  AttribType = iota // unsigned byte
	AttribTypeUint10                   // packed 10-10-10-2
	AttribTypeInt16                    // signed short
	AttribTypeHalf                     // 16-bit float
	AttribTypeFloat                    // 32-bit float

	AttribTypeCount
)

// String returns the type name.
func (t AttribType) String() string {
	switch t {
	case AttribTypeUint8:
		return "Uint8"
	case AttribTypeUint10:
		return "Uint10"
	case AttribTypeInt16:
		return "Int16"
	case AttribTypeHalf:
		return "Half"
	case AttribTypeFloat:
		return "Float"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// attribTypeSize is the byte size of an attribute indexed by type and
// element count minus one.
var attribTypeSize = [AttribTypeCount][4]uint16{
	AttribTypeUint8:  {1, 2, 4, 4},
	AttribTypeUint10: {4, 4, 4, 4},
	AttribTypeInt16:  {2, 4, 8, 8},
	AttribTypeHalf:   {2, 4, 8, 8},
	AttribTypeFloat:  {4, 8, 12, 16},
}

// Semantic and type IDs as stored in geometry files. The numbering is frozen:
// existing entries must never change, new ones are appended.
var (
	semanticIDs = []struct {
		id     uint16
		attrib Attrib
	}{
		{0x0001, AttribPosition},
		{0x0002, AttribNormal},
		{0x0003, AttribTangent},
		{0x0004, AttribBitangent},
		{0x0005, AttribColor0},
		{0x0006, AttribColor1},
		{0x0010, AttribTexCoord0},
		{0x0011, AttribTexCoord1},
		{0x0012, AttribTexCoord2},
		{0x0013, AttribTexCoord3},
		{0x000e, AttribIndices},
		{0x000f, AttribWeight},
		{0x0014, AttribTexCoord4},
		{0x0015, AttribTexCoord5},
		{0x0016, AttribTexCoord6},
		{0x0017, AttribTexCoord7},
		{0x0018, AttribColor2},
		{0x0019, AttribColor3},
	}

	typeIDs = []struct {
		id  uint16
		typ AttribType
	}{
		{0x0001, AttribTypeUint8},
		{0x0002, AttribTypeInt16},
		{0x0003, AttribTypeHalf},
		{0x0004, AttribTypeFloat},
		{0x0005, AttribTypeUint10},
	}
)

// AttribFromID maps a file semantic ID to an attribute.
func AttribFromID(id uint16) (Attrib, bool) {
	for _, e := range semanticIDs {
		if e.id == id {
			return e.attrib, true
		}
	}
	return AttribCount, false
}

// AttribTypeFromID maps a file type ID to an element type.
func AttribTypeFromID(id uint16) (AttribType, bool) {
	for _, e := range typeIDs {
		if e.id == id {
			return e.typ, true
		}
	}
	return AttribTypeCount, false
}

// AttribDecl describes one attribute slot of a layout.
type AttribDecl struct {
	Num        uint8 // element count, 1-4
	Type       AttribType
	Normalized bool
	AsInt      bool
}

// Size returns the byte size of the attribute.
func (d AttribDecl) Size() uint16 {
	if d.Num == 0 || d.Num > 4 || d.Type >= AttribTypeCount {
		return 0
	}
	return attribTypeSize[d.Type][d.Num-1]
}

// VertexLayout describes the stride and attribute slots of interleaved
// vertex data. Build it with Begin, Add and End.
type VertexLayout struct {
	Stride  uint16
	Offsets [AttribCount]uint16
	Decls   [AttribCount]AttribDecl
	used    [AttribCount]bool
}

// Begin clears the layout.
func (l *VertexLayout) Begin() *VertexLayout {
	*l = VertexLayout{}
	return l
}

// Add appends an attribute at the current stride.
func (l *VertexLayout) Add(attrib Attrib, num uint8, typ AttribType, normalized, asInt bool) *VertexLayout {
	if attrib >= AttribCount {
		return l
	}
	decl := AttribDecl{Num: num, Type: typ, Normalized: normalized, AsInt: asInt}
	l.Decls[attrib] = decl
	l.Offsets[attrib] = l.Stride
	l.used[attrib] = true
	l.Stride += decl.Size()
	return l
}

// Skip reserves num bytes of padding.
func (l *VertexLayout) Skip(num uint8) *VertexLayout {
	l.Stride += uint16(num)
	return l
}

// End finishes construction. The stride is left as computed by Add.
func (l *VertexLayout) End() {}

// Has reports whether the attribute was added.
func (l *VertexLayout) Has(attrib Attrib) bool {
	return attrib < AttribCount && l.used[attrib]
}

// Count returns the number of attributes added.
func (l *VertexLayout) Count() int {
	n := 0
	for _, u := range l.used {
		if u {
			n++
		}
	}
	return n
}

// Attribs returns the added attributes in slot order.
func (l *VertexLayout) Attribs() []Attrib {
	var out []Attrib
	for a := Attrib(0); a < AttribCount; a++ {
		if l.used[a] {
			out = append(out, a)
		}
	}
	return out
}

// Size returns the byte size of n vertices.
func (l *VertexLayout) Size(n int) int {
	return n * int(l.Stride)
}

// ReadVertexLayout parses a serialized layout. Attributes whose semantic or
// type ID is unknown are skipped. Offsets and stride come from the file,
// not from the packed layout, since compiled data may contain padding.
// skipped counts the attributes that were dropped.
func ReadVertexLayout(r *Reader) (layout VertexLayout, skipped int, err error) {
	numAttrs, err := r.ReadU8()
	if err != nil {
		return layout, 0, err
	}
	stride, err := r.ReadU16()
	if err != nil {
		return layout, 0, err
	}

	layout.Begin()
	for i := 0; i < int(numAttrs); i++ {
		raw, err := ReadFixed[rawAttrib](r)
		if err != nil {
			return layout, skipped, fmt.Errorf("attribute %d: %w", i, err)
		}

		attrib, okAttrib := AttribFromID(raw.SemanticID)
		typ, okType := AttribTypeFromID(raw.TypeID)
		if !okAttrib || !okType {
			skipped++
			continue
		}
		layout.Add(attrib, raw.Num, typ, raw.Normalized != 0, raw.AsInt != 0)
		layout.Offsets[attrib] = raw.Offset
	}
	layout.End()
	layout.Stride = stride

	return layout, skipped, nil
}

// rawAttrib is the on-disk attribute record (9 bytes, packed).
type rawAttrib struct {
	Offset     uint16
	SemanticID uint16
	Num        uint8
	TypeID     uint16
	Normalized uint8
	AsInt      uint8
}
