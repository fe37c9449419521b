// Package demo drives a camera with a synthesized animated pattern.
package demo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/yegorvk/vcam/internal/camera"
	"github.com/yegorvk/vcam/internal/frame"
)

// FrameSink consumes RGBA frames. *camera.Camera satisfies it.
type FrameSink interface {
	Send(pix []byte) error
}

// Options configures the demo loop.
type Options struct {
	Config frame.Config
	FPS    int
	Logger zerolog.Logger

	// MaxFrames stops the loop after that many ticks; 0 means run until
	// the context is cancelled.
	MaxFrames uint64
}

// Run generates pattern frames at the configured rate and pushes them into
// sink until the context is cancelled. Ticks that arrive while a frame is
// still being produced are dropped by the ticker, not queued, so a slow
// sink lowers the rate instead of building a backlog. Frames the sink
// drops while the receiver is absent are logged and counted, not fatal.
func Run(ctx context.Context, sink FrameSink, opts Options) error {
	if opts.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", opts.FPS)
	}

	buf := frame.NewBuffer(opts.Config)
	pattern := frame.NewPattern(opts.Config)

	interval := time.Second / time.Duration(opts.FPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	opts.Logger.Info().
		Uint32("width", opts.Config.Width).
		Uint32("height", opts.Config.Height).
		Int("fps", opts.FPS).
		Msg("demo started")

	var tick, dropped uint64
	for {
		select {
		case <-ctx.Done():
			opts.Logger.Info().Uint64("frames", tick).Uint64("dropped", dropped).Msg("demo stopped")
			return ctx.Err()
		case <-ticker.C:
		}

		pattern.Fill(buf, tick)
		switch err := sink.Send(buf.Pix()); {
		case errors.Is(err, camera.ErrFrameDropped):
			dropped++
			opts.Logger.Debug().Uint64("frame", tick).Msg("frame dropped, receiver unavailable")
		case err != nil:
			return fmt.Errorf("send frame %d: %w", tick, err)
		}
		tick++

		if opts.MaxFrames > 0 && tick >= opts.MaxFrames {
			opts.Logger.Info().Uint64("frames", tick).Uint64("dropped", dropped).Msg("demo finished")
			return nil
		}
	}
}
