// Package snapshot renders single frames to image files for inspection.
package snapshot

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"

	"github.com/yegorvk/vcam/internal/frame"
)

// Image converts a frame buffer into an image.RGBA sharing its pixels.
func Image(buf *frame.Buffer) *image.RGBA {
	cfg := buf.Config()
	return &image.RGBA{
		Pix:    buf.Pix(),
		Stride: int(cfg.Width) * frame.BytesPerPixel,
		Rect:   image.Rect(0, 0, int(cfg.Width), int(cfg.Height)),
	}
}

// Encode writes the buffer as lossless WebP.
func Encode(w io.Writer, buf *frame.Buffer) error {
	if err := nativewebp.Encode(w, Image(buf), nil); err != nil {
		return fmt.Errorf("WebP encode: %w", err)
	}
	return nil
}

// WriteFile renders tick t of the pattern at the given geometry and saves
// it to path.
func WriteFile(path string, cfg frame.Config, t uint64) error {
	buf := frame.NewBuffer(cfg)
	frame.NewPattern(cfg).Fill(buf, t)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := Encode(f, buf); err != nil {
		return err
	}
	return nil
}
