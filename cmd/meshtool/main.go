// meshtool inspects compiled geometry files without a GPU.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/skmesh/internal/config"
	"github.com/Faultbox/skmesh/internal/engine/gpu"
	"github.com/Faultbox/skmesh/internal/engine/mesh"
	"github.com/Faultbox/skmesh/internal/engine/raster"
	"github.com/Faultbox/skmesh/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args)
	case "layout":
		err = cmdLayout(args)
	case "prims", "primitives":
		err = cmdPrims(args)
	case "tags", "chunks":
		err = cmdTags(args)
	case "check":
		err = cmdCheck(args)
	case "thumb":
		err = cmdThumb(args)
	case "init-config":
		err = cmdInitConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - compiled geometry file utility

Usage:
  meshtool <command> [options] <file.bin>

Commands:
  info <file>                Show instance, vertex and index totals
  layout <file>              Show the vertex layout
  prims [-m material] <file> List primitives per instance
  tags <file>                List chunks with offsets and sizes
  check <file>               Validate primitive ranges against buffer data
  thumb [-o out] [-s size] <file>
                             Render a thumbnail (.webp, .png or .tga)
  init-config [path]         Write a default config file

Common options:
  -v                         Debug logging on stderr

Examples:
  meshtool info bunny.bin
  meshtool prims -m wood chair.bin
  meshtool thumb -o chair.webp -s 512 chair.bin
  meshtool init-config ./skmesh.yaml`)
}

// newFlagSet adds the options every file command accepts.
func newFlagSet(name string) (*flag.FlagSet, *bool) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	verbose := fs.Bool("v", false, "Debug logging on stderr")
	return fs, verbose
}

// load decodes the file named by the first positional argument into a host
// device. The returned release func frees the buffers and reports leaks.
func load(fs *flag.FlagSet, verbose, ramCopy bool) (*mesh.Mesh, func() error, error) {
	if fs.NArg() < 1 {
		return nil, nil, fmt.Errorf("usage: meshtool %s <file>", fs.Name())
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	if err := logger.Setup(logger.Options{Level: level, Console: os.Stderr}); err != nil {
		return nil, nil, err
	}

	dev := gpu.NewHostDevice()
	m, err := mesh.Open(fs.Arg(0), dev, ramCopy)
	if err != nil {
		return nil, nil, err
	}

	release := func() error {
		if err := m.ReleaseHandles(); err != nil {
			return err
		}
		if s := dev.Stats(); s.Live != 0 {
			return fmt.Errorf("%d device buffers still live after release", s.Live)
		}
		return nil
	}
	return m, release, nil
}

func cmdInfo(args []string) error {
	fs, verbose := newFlagSet("info")
	fs.Parse(args)

	m, release, err := load(fs, *verbose, false)
	if err != nil {
		return err
	}
	defer release()

	layout := m.Layout()
	fmt.Printf("File:       %s\n", fs.Arg(0))
	fmt.Printf("Instances:  %d\n", len(m.Instances()))
	fmt.Printf("Primitives: %d\n", m.PrimitiveCount())
	fmt.Printf("Vertices:   %d\n", m.VertexTotal())
	fmt.Printf("Indices:    %d (%d triangles)\n", m.IndexTotal(), m.IndexTotal()/3)
	fmt.Printf("Stride:     %d bytes, %d attributes\n", layout.Stride, layout.Count())
	if box, ok := m.Bounds(); ok {
		size := box.Size()
		fmt.Printf("Bounds:     min %v max %v (size %.3f x %.3f x %.3f)\n",
			box.Min, box.Max, size.X(), size.Y(), size.Z())
	}
	if mats := m.Materials(); len(mats) > 0 {
		fmt.Printf("Materials:  %s\n", strings.Join(mats, ", "))
	}
	return release()
}

func cmdLayout(args []string) error {
	fs, verbose := newFlagSet("layout")
	fs.Parse(args)

	m, release, err := load(fs, *verbose, false)
	if err != nil {
		return err
	}
	defer release()

	layout := m.Layout()
	fmt.Printf("Stride: %d\n", layout.Stride)
	fmt.Printf("  %-10s %6s %4s %-7s %-10s %s\n", "attrib", "offset", "num", "type", "normalized", "as-int")
	for _, a := range layout.Attribs() {
		d := layout.Decls[a]
		fmt.Printf("  %-10s %6d %4d %-7s %-10t %t\n", a, layout.Offsets[a], d.Num, d.Type, d.Normalized, d.AsInt)
	}
	return release()
}

func cmdPrims(args []string) error {
	fs, verbose := newFlagSet("prims")
	material := fs.String("m", "", "Only primitives using this material")
	fs.Parse(args)

	m, release, err := load(fs, *verbose, false)
	if err != nil {
		return err
	}
	defer release()

	for i, in := range m.Instances() {
		fmt.Printf("Instance %d: %d vertices, %d indices\n", i, in.VertexCount, in.IndexCount)
		for _, p := range in.Primitives {
			if *material != "" && p.Material != *material {
				continue
			}
			fmt.Printf("  %-24s %-16s idx %d+%d  vtx %d+%d  r=%.3f\n",
				p.Name, p.Material, p.StartIndex, p.IndexCount, p.StartVertex, p.VertexCount, p.Sphere.Radius)
		}
	}
	return release()
}

func cmdTags(args []string) error {
	fs, verbose := newFlagSet("tags")
	fs.Parse(args)

	m, release, err := load(fs, *verbose, false)
	if err != nil {
		return err
	}
	defer release()

	for _, c := range m.Chunks() {
		fmt.Printf("%8d  %-8s %d bytes\n", c.Offset, fmt.Sprintf("'%s'", c.Tag), c.Size)
	}
	return release()
}

// cmdCheck decodes with host copies and verifies that every primitive stays
// inside its instance's buffers.
func cmdCheck(args []string) error {
	fs, verbose := newFlagSet("check")
	fs.Parse(args)

	m, release, err := load(fs, *verbose, true)
	if err != nil {
		return err
	}
	defer release()

	problems := 0
	for i, in := range m.Instances() {
		for _, p := range in.Primitives {
			for _, msg := range checkPrimitive(in, p) {
				fmt.Printf("instance %d primitive %q: %s\n", i, p.Name, msg)
				problems++
			}
		}
	}
	if err := release(); err != nil {
		return err
	}
	if problems > 0 {
		return fmt.Errorf("%d problems found", problems)
	}
	fmt.Println("OK")
	return nil
}

func checkPrimitive(in mesh.Instance, p mesh.Primitive) []string {
	var out []string
	if uint64(p.StartIndex)+uint64(p.IndexCount) > uint64(in.IndexCount) {
		out = append(out, fmt.Sprintf("index range %d+%d exceeds %d indices", p.StartIndex, p.IndexCount, in.IndexCount))
		return out
	}
	if uint64(p.StartVertex)+uint64(p.VertexCount) > uint64(in.VertexCount) {
		out = append(out, fmt.Sprintf("vertex range %d+%d exceeds %d vertices", p.StartVertex, p.VertexCount, in.VertexCount))
	}
	for _, idx := range in.Indices[p.StartIndex : p.StartIndex+p.IndexCount] {
		if v := uint32(idx) + p.StartVertex; v >= uint32(in.VertexCount) {
			out = append(out, fmt.Sprintf("index %d references vertex %d of %d", idx, v, in.VertexCount))
			break
		}
	}
	return out
}

func cmdThumb(args []string) error {
	fs, verbose := newFlagSet("thumb")
	out := fs.String("o", "", "Output image (default: <file>.webp)")
	size := fs.Int("s", 256, "Image size in pixels")
	yaw := fs.Float64("yaw", 0.6, "Camera yaw in radians")
	pitch := fs.Float64("pitch", 0.4, "Camera pitch in radians")
	fs.Parse(args)

	m, release, err := load(fs, *verbose, true)
	if err != nil {
		return err
	}
	defer release()

	opts := raster.DefaultOptions()
	opts.Size = *size
	opts.Yaw = float32(*yaw)
	opts.Pitch = float32(*pitch)
	img, err := raster.Render(m, opts)
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = strings.TrimSuffix(fs.Arg(0), filepath.Ext(fs.Arg(0))) + ".webp"
	}
	if err := raster.WriteFile(path, img); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%dx%d)\n", path, opts.Size, opts.Size)
	return release()
}

func cmdInitConfig(args []string) error {
	cfg := config.Default()
	if len(args) == 0 {
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
		return nil
	}
	if err := cfg.SaveTo(args[0]); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", args[0])
	return nil
}
