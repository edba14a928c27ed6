package raster

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"

	"github.com/Faultbox/skmesh/internal/engine/gpu"
	"github.com/Faultbox/skmesh/internal/engine/mesh"
	"github.com/Faultbox/skmesh/pkg/formats"
)

// makeTriangle builds a file with one triangle in the XY plane: float3
// positions only, stride 12.
func makeTriangle() []byte {
	var buf []byte
	u16 := func(v uint16) { buf = binary.LittleEndian.AppendUint16(buf, v) }
	u32 := func(v uint32) { buf = binary.LittleEndian.AppendUint32(buf, v) }
	f32 := func(vals ...float32) {
		for _, v := range vals {
			u32(math.Float32bits(v))
		}
	}
	tag := func(t formats.ChunkTag) {
		b := t.Bytes()
		buf = append(buf, b[:]...)
	}
	bounds := func() {
		f32(0, 0, 0, 1.5)
		f32(-1, -1, 0, 1, 1, 0)
		f32(1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1)
	}

	tag(formats.TagVertexBuffer)
	bounds()
	buf = append(buf, 1) // one attribute
	u16(12)
	u16(0)      // offset
	u16(0x0001) // position
	buf = append(buf, 3)
	u16(0x0004) // float
	buf = append(buf, 0, 0)
	u16(3)
	f32(-1, -1, 0, 1, -1, 0, 0, 1, 0)

	tag(formats.TagIndexBuffer)
	u32(3)
	u16(0)
	u16(1)
	u16(2)

	tag(formats.TagPrimitive)
	u16(4)
	buf = append(buf, "wood"...)
	u16(1)
	u16(3)
	buf = append(buf, "tri"...)
	u32(0)
	u32(3)
	u32(0)
	u32(3)
	bounds()
	return buf
}

func decodeTriangle(t *testing.T, ramCopy bool) *mesh.Mesh {
	t.Helper()
	m := mesh.New()
	if err := m.Decode(makeTriangle(), gpu.NewHostDevice(), ramCopy); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return m
}

func TestRenderFrontView(t *testing.T) {
	m := decodeTriangle(t, true)

	opts := DefaultOptions()
	opts.Size = 64
	opts.Supersample = 1
	opts.Yaw = 0
	opts.Pitch = 0

	img, err := Render(m, opts)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 64, 64) {
		t.Fatalf("bounds = %v", img.Bounds())
	}

	if c := img.RGBAAt(32, 36); c.A != 255 {
		t.Errorf("center pixel not covered: %v", c)
	}
	if c := img.RGBAAt(1, 1); c.A != 0 {
		t.Errorf("corner pixel covered: %v", c)
	}

	// face lit at the minimum shade or brighter, in the material's hue
	want := MaterialColor("wood")
	got := img.RGBAAt(32, 36)
	if got.R == 0 || float32(got.R)/255 > want.X()+0.01 {
		t.Errorf("center color %v outside material color %v", got, want)
	}
}

func TestRenderSupersampled(t *testing.T) {
	m := decodeTriangle(t, true)

	opts := DefaultOptions()
	opts.Size = 32
	opts.Background = color.NRGBA{R: 255, A: 255}

	img, err := Render(m, opts)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 32 {
		t.Errorf("bounds = %v, want 32x32", img.Bounds())
	}
	if c := img.RGBAAt(0, 0); c.R != 255 || c.A != 255 {
		t.Errorf("background = %v, want opaque red", c)
	}
}

func TestRenderErrors(t *testing.T) {
	if _, err := Render(decodeTriangle(t, false), DefaultOptions()); !errors.Is(err, ErrNoHostData) {
		t.Errorf("without host copies: got %v, want ErrNoHostData", err)
	}

	opts := DefaultOptions()
	opts.Size = 0
	if _, err := Render(decodeTriangle(t, true), opts); err == nil {
		t.Error("expected error for zero size")
	}
}

func TestRenderEmpty(t *testing.T) {
	img, err := Render(mesh.New(), Options{Size: 8})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for _, v := range img.Pix {
		if v != 0 {
			t.Fatal("empty mesh drew pixels")
		}
	}
}

func TestMaterialColorStable(t *testing.T) {
	if MaterialColor("wood") != MaterialColor("wood") {
		t.Error("same name gave different colors")
	}
	if MaterialColor("wood") == MaterialColor("metal") {
		t.Error("different names gave the same color")
	}
	c := MaterialColor("")
	for i := 0; i < 3; i++ {
		if c[i] < 0.5 || c[i] > 1 {
			t.Errorf("component %d = %f outside [0.5, 1]", i, c[i])
		}
	}
}

func TestWriteFile(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.SetRGBA(1, 1, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	dir := t.TempDir()

	tests := []struct {
		name   string
		decode func(*os.File) (image.Image, error)
	}{
		{"thumb.png", func(f *os.File) (image.Image, error) { return png.Decode(f) }},
		{"THUMB.TGA", func(f *os.File) (image.Image, error) { return tga.Decode(f) }},
		{"thumb.webp", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "out", tt.name)
			if err := WriteFile(path, img); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}
			info, err := os.Stat(path)
			if err != nil || info.Size() == 0 {
				t.Fatalf("output missing or empty: %v", err)
			}
			if tt.decode == nil {
				return
			}

			f, err := os.Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			got, err := tt.decode(f)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if got.Bounds().Size() != img.Bounds().Size() {
				t.Errorf("decoded size = %v, want %v", got.Bounds().Size(), img.Bounds().Size())
			}
		})
	}

	if err := WriteFile(filepath.Join(dir, "thumb.bmp"), img); !errors.Is(err, ErrImageFormat) {
		t.Errorf("bmp: got %v, want ErrImageFormat", err)
	}
}
