// meshview opens a compiled geometry file in an OpenGL window.
//
// Drag with the left mouse button to orbit and scroll to zoom. W toggles
// wireframe, R resets the view and Esc quits.
package main

import (
	"fmt"
	"os"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/skmesh/internal/config"
	"github.com/Faultbox/skmesh/internal/engine/camera"
	"github.com/Faultbox/skmesh/internal/engine/gpu"
	"github.com/Faultbox/skmesh/internal/engine/mesh"
	"github.com/Faultbox/skmesh/internal/engine/raster"
	"github.com/Faultbox/skmesh/internal/engine/window"
	"github.com/Faultbox/skmesh/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config.ParseFlags()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w (usage: meshview [flags] <file.bin>)", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	title := fmt.Sprintf("%s - %s", cfg.Viewer.Title, cfg.Mesh.Path)
	win, err := window.New(window.Config{
		Title:      title,
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		Fullscreen: cfg.Viewer.Fullscreen,
		VSync:      cfg.Viewer.VSync,
	})
	if err != nil {
		return err
	}
	defer win.Close()

	dev, err := gpu.NewGLDevice()
	if err != nil {
		return err
	}

	m, err := mesh.Open(cfg.Mesh.Path, dev, cfg.Mesh.RAMCopy)
	if err != nil {
		return err
	}

	v := &viewer{
		win:   win,
		dev:   dev,
		mesh:  m,
		title: title,
		cam:   camera.NewOrbitCamera(),
		clear: mgl32.Vec3(cfg.Viewer.ClearColor),
	}
	defer v.release()

	v.prog, err = gpu.NewProgram()
	if err != nil {
		return err
	}
	defer v.prog.Delete()

	v.resetView()
	v.loop()
	return nil
}

type viewer struct {
	win  *window.Window
	dev  *gpu.GLDevice
	prog *gpu.Program
	cam  *camera.OrbitCamera

	mesh  *mesh.Mesh
	title string

	clear     mgl32.Vec3
	wireframe bool
}

// release frees the current mesh's buffers. Runs before the window, and
// with it the GL context, is closed.
func (v *viewer) release() {
	if err := v.mesh.ReleaseHandles(); err != nil {
		logger.Error("releasing mesh buffers", zap.Error(err))
	}
	if n := v.dev.Live(); n != 0 {
		logger.Warn("device buffers still live at exit", zap.Int("count", n))
	}
}

func (v *viewer) resetView() {
	if box, ok := v.mesh.Bounds(); ok {
		v.cam.FitToBounds(box)
	}
}

func (v *viewer) loop() {
	gl.Enable(gl.DEPTH_TEST)

	frames := 0
	lastStats := window.Ticks()
	for {
		in := v.win.Poll()
		if in.Quit {
			return
		}
		if in.ResetView {
			v.resetView()
		}
		if in.Wireframe {
			v.wireframe = !v.wireframe
		}
		v.cam.HandleDrag(in.DragX, in.DragY)
		v.cam.HandleZoom(in.Wheel)

		v.draw()
		v.win.SwapBuffers()

		frames++
		if now := window.Ticks(); now-lastStats >= 1000 {
			v.win.SetTitle(fmt.Sprintf("%s (%d fps)", v.title, frames))
			logger.Debug("frame stats", zap.Int("fps", frames), zap.Int("primitives", v.mesh.PrimitiveCount()))
			frames = 0
			lastStats = now
		}
	}
}

func (v *viewer) draw() {
	w, h := v.win.Size()
	if w == 0 || h == 0 {
		return
	}
	gl.Viewport(0, 0, int32(w), int32(h))
	gl.ClearColor(v.clear.X(), v.clear.Y(), v.clear.Z(), 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	if v.wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	mvp := v.cam.ProjectionMatrix(float32(w) / float32(h)).Mul4(v.cam.ViewMatrix())
	light := mgl32.Vec3{-0.4, -1, -0.3}

	for _, in := range v.mesh.Instances() {
		for _, p := range in.Primitives {
			v.prog.Use(mvp, raster.MaterialColor(p.Material), light)
			v.dev.DrawIndexed(in.VertexBuffer, in.IndexBuffer, p.StartIndex, p.IndexCount, p.StartVertex)
		}
	}
}
