package raster

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

// ErrImageFormat is returned for output names with an unsupported extension.
var ErrImageFormat = errors.New("unsupported image format")

var encoders = map[string]func(io.Writer, image.Image) error{
	".webp": func(w io.Writer, img image.Image) error { return nativewebp.Encode(w, img, nil) },
	".png":  png.Encode,
	".tga":  tga.Encode,
}

// Encode writes img in the format named by ext (".webp", ".png" or ".tga").
func Encode(w io.Writer, img image.Image, ext string) error {
	enc, ok := encoders[strings.ToLower(ext)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrImageFormat, ext)
	}
	return enc(w, img)
}

// WriteFile encodes img to path, choosing the format from its extension.
func WriteFile(path string, img image.Image) error {
	ext := filepath.Ext(path)
	if _, ok := encoders[strings.ToLower(ext)]; !ok {
		return fmt.Errorf("%w: %q", ErrImageFormat, ext)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, img, ext); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
