// Package frame defines frame geometry and flat RGBA pixel buffers.
package frame

import (
	"fmt"
	"math"
)

// BytesPerPixel is the size of one RGBA pixel.
const BytesPerPixel = 4

// MaxDimension is the largest width or height the wire header can carry.
const MaxDimension = math.MaxInt32

// MaxBytes is the largest frame the receiver's shared image region can
// hold: 4K RGBA at up to 16 bits per channel.
const MaxBytes = 3840 * 2160 * BytesPerPixel * 2

// Config describes the geometry of the frames a camera produces.
type Config struct {
	Width  uint32
	Height uint32
}

// NewConfig validates the given dimensions and returns a frame config.
func NewConfig(width, height uint32) (Config, error) {
	if width == 0 || width > MaxDimension {
		return Config{}, fmt.Errorf("width must be between 1 and %d, got %d", uint32(MaxDimension), width)
	}
	if height == 0 || height > MaxDimension {
		return Config{}, fmt.Errorf("height must be between 1 and %d, got %d", uint32(MaxDimension), height)
	}
	if size := uint64(width) * uint64(height) * BytesPerPixel; size > MaxBytes {
		return Config{}, fmt.Errorf("%dx%d frame is %d bytes, exceeds the %d-byte maximum", width, height, size, MaxBytes)
	}
	return Config{Width: width, Height: height}, nil
}

// Bytes returns the size of one frame in bytes (RGBA interleaved, row-major).
func (c Config) Bytes() int {
	return int(c.Width) * int(c.Height) * BytesPerPixel
}

// Buffer is a flat RGBA pixel buffer sized for a single frame.
type Buffer struct {
	cfg Config
	pix []uint8
}

// NewBuffer allocates a zeroed buffer for the given geometry.
func NewBuffer(cfg Config) *Buffer {
	return &Buffer{
		cfg: cfg,
		pix: make([]uint8, cfg.Bytes()),
	}
}

// Config returns the geometry this buffer was allocated for.
func (b *Buffer) Config() Config { return b.cfg }

// Pix returns the underlying pixel storage. Mutating it mutates the buffer.
func (b *Buffer) Pix() []uint8 { return b.pix }
