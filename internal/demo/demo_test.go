package demo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yegorvk/vcam/internal/camera"
	"github.com/yegorvk/vcam/internal/frame"
)

type collectorSink struct {
	frames  [][]byte
	sendErr error

	// dropFirst makes the initial sends report a dropped frame.
	dropFirst int
	calls     int
}

func (c *collectorSink) Send(pix []byte) error {
	c.calls++
	if c.calls <= c.dropFirst {
		return fmt.Errorf("%w: receiver not running", camera.ErrFrameDropped)
	}
	if c.sendErr != nil {
		return c.sendErr
	}
	buf := make([]byte, len(pix))
	copy(buf, pix)
	c.frames = append(c.frames, buf)
	return nil
}

func testOptions(t *testing.T, maxFrames uint64) Options {
	t.Helper()
	cfg, err := frame.NewConfig(4, 2)
	require.NoError(t, err)
	return Options{
		Config:    cfg,
		FPS:       1000,
		Logger:    zerolog.Nop(),
		MaxFrames: maxFrames,
	}
}

func TestRunMaxFrames(t *testing.T) {
	sink := &collectorSink{}

	err := Run(context.Background(), sink, testOptions(t, 3))
	require.NoError(t, err)
	require.Len(t, sink.frames, 3)

	for _, f := range sink.frames {
		assert.Len(t, f, 4*2*frame.BytesPerPixel)
	}
}

func TestRunFramesAnimate(t *testing.T) {
	sink := &collectorSink{}

	err := Run(context.Background(), sink, testOptions(t, 2))
	require.NoError(t, err)
	require.Len(t, sink.frames, 2)

	assert.NotEqual(t, sink.frames[0], sink.frames[1], "consecutive frames should differ")

	// Alpha stays opaque in every frame.
	for _, f := range sink.frames {
		for i := 3; i < len(f); i += frame.BytesPerPixel {
			if f[i] != 0xff {
				t.Fatalf("alpha at byte %d is %d, want 255", i, f[i])
			}
		}
	}
}

func TestRunContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	sink := &collectorSink{}
	err := Run(ctx, sink, testOptions(t, 0))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunDroppedFramesNotFatal(t *testing.T) {
	var logged bytes.Buffer
	log := zerolog.New(&logged).Level(zerolog.DebugLevel)

	sink := &collectorSink{dropFirst: 2}
	opts := testOptions(t, 5)
	opts.Logger = log

	err := Run(context.Background(), sink, opts)
	require.NoError(t, err)

	// The first two ticks were dropped, the remaining three delivered.
	assert.Len(t, sink.frames, 3)
	assert.Contains(t, logged.String(), "frame dropped")
	assert.Contains(t, logged.String(), `"dropped":2`)
}

func TestRunSendError(t *testing.T) {
	sink := &collectorSink{sendErr: errors.New("shared memory gone")}

	err := Run(context.Background(), sink, testOptions(t, 10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send frame 0")
	assert.Contains(t, err.Error(), "shared memory gone")
}

func TestRunInvalidFPS(t *testing.T) {
	opts := testOptions(t, 1)
	opts.FPS = 0

	err := Run(context.Background(), &collectorSink{}, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fps must be positive")
}
