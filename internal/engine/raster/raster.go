// Package raster draws decoded meshes on the CPU for thumbnails and
// previews without a GPU. It needs the host copies kept by decoding with
// ramCopy.
package raster

import (
	"errors"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"

	"github.com/Faultbox/skmesh/internal/engine/camera"
	"github.com/Faultbox/skmesh/internal/engine/mesh"
	"github.com/Faultbox/skmesh/pkg/formats"
)

// Render errors.
var (
	ErrNoHostData = errors.New("mesh has no host vertex data (decode with ramCopy)")
	ErrNoPosition = errors.New("vertex layout has no position attribute")
)

// Options control Render.
type Options struct {
	Size        int // output width and height
	Supersample int // render at Size*Supersample, then downscale
	Yaw         float32
	Pitch       float32
	Background  color.NRGBA
	LightDir    mgl32.Vec3
}

// DefaultOptions returns a 256 pixel, 2x supersampled three-quarter view on
// a transparent background.
func DefaultOptions() Options {
	return Options{
		Size:        256,
		Supersample: 2,
		Yaw:         0.6,
		Pitch:       0.4,
		LightDir:    mgl32.Vec3{-0.4, -1, -0.3},
	}
}

// Render draws every primitive of m flat-shaded in its material color.
func Render(m *mesh.Mesh, opts Options) (*image.RGBA, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("invalid image size %d", opts.Size)
	}
	ss := max(opts.Supersample, 1)
	fb := newFrameBuffer(opts.Size*ss, opts.Background)

	box, ok := m.Bounds()
	if ok {
		layout := m.Layout()
		if !layout.Has(formats.AttribPosition) {
			return nil, ErrNoPosition
		}

		cam := camera.NewOrbitCamera()
		cam.FitToBounds(box)
		cam.Yaw = opts.Yaw
		cam.Pitch = opts.Pitch
		mvp := cam.ProjectionMatrix(1).Mul4(cam.ViewMatrix())

		light := opts.LightDir
		if light.Len() == 0 {
			light = DefaultOptions().LightDir
		}
		light = light.Normalize()

		for i, in := range m.Instances() {
			if err := fb.instance(&layout, in, mvp, light); err != nil {
				return nil, fmt.Errorf("instance %d: %w", i, err)
			}
		}
	}

	if ss == 1 {
		return fb.img, nil
	}
	out := image.NewRGBA(image.Rect(0, 0, opts.Size, opts.Size))
	draw.CatmullRom.Scale(out, out.Bounds(), fb.img, fb.img.Bounds(), draw.Src, nil)
	return out, nil
}

// MaterialColor returns a stable light color for a material name.
func MaterialColor(name string) mgl32.Vec3 {
	h := fnv.New32a()
	h.Write([]byte(name))
	sum := h.Sum32()
	return mgl32.Vec3{
		0.5 + float32(sum&0xff)/510,
		0.5 + float32(sum>>8&0xff)/510,
		0.5 + float32(sum>>16&0xff)/510,
	}
}

type frameBuffer struct {
	size  int
	img   *image.RGBA
	depth []float32
}

func newFrameBuffer(size int, bg color.NRGBA) *frameBuffer {
	fb := &frameBuffer{
		size:  size,
		img:   image.NewRGBA(image.Rect(0, 0, size, size)),
		depth: make([]float32, size*size),
	}
	draw.Draw(fb.img, fb.img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	for i := range fb.depth {
		fb.depth[i] = float32(math.Inf(1))
	}
	return fb
}

func (fb *frameBuffer) instance(layout *formats.VertexLayout, in mesh.Instance, mvp mgl32.Mat4, light mgl32.Vec3) error {
	n := int(in.VertexCount)
	if n > 0 && len(in.Vertices) == 0 {
		return ErrNoHostData
	}

	world := make([]mgl32.Vec3, n)
	screen := make([]mgl32.Vec3, n)
	visible := make([]bool, n)
	half := float32(fb.size) / 2
	for i := 0; i < n; i++ {
		p, err := layout.Decode(formats.AttribPosition, in.Vertices, i)
		if err != nil {
			return err
		}
		world[i] = mgl32.Vec3{p[0], p[1], p[2]}

		clip := mvp.Mul4x1(world[i].Vec4(1))
		if clip.W() <= 0 {
			continue
		}
		ndc := clip.Vec3().Mul(1 / clip.W())
		screen[i] = mgl32.Vec3{(ndc.X() + 1) * half, (1 - ndc.Y()) * half, ndc.Z()}
		visible[i] = true
	}

	for _, p := range in.Primitives {
		end := uint64(p.StartIndex) + uint64(p.IndexCount)
		if end > uint64(len(in.Indices)) {
			return fmt.Errorf("primitive %q: index range %d+%d exceeds %d indices", p.Name, p.StartIndex, p.IndexCount, len(in.Indices))
		}
		base := MaterialColor(p.Material)
		indices := in.Indices[p.StartIndex:end]

	triangles:
		for t := 0; t+2 < len(indices); t += 3 {
			var tri [3]int
			for k := range tri {
				v := int(indices[t+k]) + int(p.StartVertex)
				if v >= n || !visible[v] {
					continue triangles
				}
				tri[k] = v
			}

			a, b, c := world[tri[0]], world[tri[1]], world[tri[2]]
			normal := b.Sub(a).Cross(c.Sub(a))
			if normal.Len() == 0 {
				continue
			}
			shade := 0.35 + 0.65*abs(normal.Normalize().Dot(light))
			fb.triangle(screen[tri[0]], screen[tri[1]], screen[tri[2]], rgba(base.Mul(shade)))
		}
	}
	return nil
}

// triangle fills a screen-space triangle with a depth test, nearer z wins.
func (fb *frameBuffer) triangle(a, b, c mgl32.Vec3, col color.RGBA) {
	det := (b.Y()-c.Y())*(a.X()-c.X()) + (c.X()-b.X())*(a.Y()-c.Y())
	if det > -1e-8 && det < 1e-8 {
		return
	}
	inv := 1 / det

	minX := clampInt(int(min(a.X(), b.X(), c.X())), 0, fb.size-1)
	maxX := clampInt(int(max(a.X(), b.X(), c.X()))+1, 0, fb.size-1)
	minY := clampInt(int(min(a.Y(), b.Y(), c.Y())), 0, fb.size-1)
	maxY := clampInt(int(max(a.Y(), b.Y(), c.Y()))+1, 0, fb.size-1)

	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5 - c.Y()
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5 - c.X()
			w0 := ((b.Y()-c.Y())*px + (c.X()-b.X())*py) * inv
			w1 := ((c.Y()-a.Y())*px + (a.X()-c.X())*py) * inv
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			z := w0*a.Z() + w1*b.Z() + w2*c.Z()
			i := y*fb.size + x
			if z >= fb.depth[i] {
				continue
			}
			fb.depth[i] = z
			fb.img.SetRGBA(x, y, col)
		}
	}
}

func rgba(c mgl32.Vec3) color.RGBA {
	return color.RGBA{
		R: uint8(mgl32.Clamp(c.X(), 0, 1)*255 + 0.5),
		G: uint8(mgl32.Clamp(c.Y(), 0, 1)*255 + 0.5),
		B: uint8(mgl32.Clamp(c.Z(), 0, 1)*255 + 0.5),
		A: 255,
	}
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
