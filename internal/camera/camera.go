// Package camera provides the high-level virtual camera API: configure a
// geometry, start the camera, push RGBA frames.
package camera

import (
	"errors"
	"fmt"

	"github.com/yegorvk/vcam/internal/capture"
	"github.com/yegorvk/vcam/internal/frame"
)

// ErrNotRunning is returned by Send when the camera hasn't been started.
var ErrNotRunning = errors.New("the camera isn't running")

// ErrFrameDropped is returned by Send when the receiver isn't available
// yet and the frame was dropped. The next Send retries the connection.
var ErrFrameDropped = errors.New("frame dropped, receiver unavailable")

// Camera publishes frames of a fixed geometry to the virtual camera
// device. Not safe for concurrent use; one goroutine owns a Camera.
type Camera struct {
	cfg    frame.Config
	ch     capture.Channel
	sender *capture.Sender
}

// New creates a stopped camera for the given geometry.
func New(width, height uint32) (*Camera, error) {
	return NewWithChannel(width, height, capture.DefaultChannel())
}

// NewWithChannel creates a stopped camera using an explicit capture
// channel. Tests use this to substitute an in-memory channel.
func NewWithChannel(width, height uint32, ch capture.Channel) (*Camera, error) {
	cfg, err := frame.NewConfig(width, height)
	if err != nil {
		return nil, fmt.Errorf("invalid camera geometry: %w", err)
	}
	return &Camera{cfg: cfg, ch: ch}, nil
}

// Config returns the current frame geometry.
func (c *Camera) Config() frame.Config { return c.cfg }

// Running reports whether the camera has been started.
func (c *Camera) Running() bool { return c.sender != nil }

// Resize changes the frame geometry. Takes effect with the next Send.
func (c *Camera) Resize(width, height uint32) error {
	cfg, err := frame.NewConfig(width, height)
	if err != nil {
		return fmt.Errorf("invalid camera geometry: %w", err)
	}
	c.cfg = cfg
	return nil
}

// Start makes the camera accept frames. Connecting to the receiver is
// deferred to the first Send. Starting a running camera restarts it.
func (c *Camera) Start() {
	c.Stop()
	c.sender = capture.NewSender(c.ch)
}

// Stop releases the capture session. Safe to call on a stopped camera.
func (c *Camera) Stop() {
	if c.sender == nil {
		return
	}
	_ = c.sender.Close()
	c.sender = nil
}

// Send publishes one RGBA frame. The buffer must hold exactly
// Config().Bytes() bytes. If the receiver isn't available yet the frame is
// dropped and ErrFrameDropped is returned; any other error is fatal.
func (c *Camera) Send(pix []byte) error {
	if c.sender == nil {
		return ErrNotRunning
	}
	if want := c.cfg.Bytes(); len(pix) != want {
		return fmt.Errorf("frame is %d bytes, want %d for %dx%d RGBA",
			len(pix), want, c.cfg.Width, c.cfg.Height)
	}

	err := c.sender.Send(c.cfg, func(image []byte) {
		copy(image, pix)
	})
	if err == nil {
		return nil
	}

	var serr *capture.Error
	if errors.As(err, &serr) && serr.ShouldRetry() {
		return fmt.Errorf("%w: %s", ErrFrameDropped, serr)
	}
	return err
}
