package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/yegorvk/vcam/internal/camera"
	"github.com/yegorvk/vcam/internal/config"
	"github.com/yegorvk/vcam/internal/demo"
	"github.com/yegorvk/vcam/internal/frame"
	"github.com/yegorvk/vcam/internal/logging"
	"github.com/yegorvk/vcam/internal/server"
	"github.com/yegorvk/vcam/internal/snapshot"
)

func runDemo() {
	cfg := loadConfig()

	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	width := fs.Uint("width", uint(cfg.Camera.Width), "Frame width")
	height := fs.Uint("height", uint(cfg.Camera.Height), "Frame height")
	fps := fs.Int("fps", cfg.Demo.FPS, "Frames per second")
	frames := fs.Uint64("frames", 0, "Stop after this many frames (0 = run until interrupted)")
	fs.Parse(os.Args[2:])

	log := logging.WithComponent("demo")

	cam, err := camera.New(uint32(*width), uint32(*height))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid geometry")
	}
	cam.Start()
	defer cam.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = demo.Run(ctx, cam, demo.Options{
		Config:    cam.Config(),
		FPS:       *fps,
		Logger:    log,
		MaxFrames: *frames,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("demo failed")
	}
}

func runSnapshot() {
	cfg := loadConfig()

	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	width := fs.Uint("width", uint(cfg.Camera.Width), "Frame width")
	height := fs.Uint("height", uint(cfg.Camera.Height), "Frame height")
	tick := fs.Uint64("tick", 0, "Pattern tick to render")
	out := fs.String("o", "frame.webp", "Output file")
	fs.Parse(os.Args[2:])

	fcfg, err := frame.NewConfig(uint32(*width), uint32(*height))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := snapshot.WriteFile(*out, fcfg, *tick); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %dx%d frame to %s\n", fcfg.Width, fcfg.Height, *out)
}

func runFrame() {
	cfg := loadConfig()

	fs := flag.NewFlagSet("frame", flag.ExitOnError)
	width := fs.Uint("width", uint(cfg.Camera.Width), "Frame width")
	height := fs.Uint("height", uint(cfg.Camera.Height), "Frame height")
	fs.Parse(os.Args[2:])

	pix, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading frame from stdin: %v\n", err)
		os.Exit(1)
	}

	// Direct fallback spins up a one-shot camera in this process.
	direct := func(p []byte) error {
		cam, camErr := camera.New(uint32(*width), uint32(*height))
		if camErr != nil {
			return camErr
		}
		cam.Start()
		defer cam.Stop()
		return cam.Send(p)
	}

	if err := server.TrySendWithFallback(pix, direct); err != nil {
		fmt.Fprintf(os.Stderr, "Error sending frame: %v\n", err)
		os.Exit(1)
	}
}

func runServe() {
	cfg, v, err := config.LoadWatchable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logging.Configure(logging.Config{Level: cfg.Log.Level})

	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	socketPath := fs.String("socket", socketOrDefault(cfg), "Socket path")
	fs.Parse(os.Args[2:])

	log := logging.WithComponent("server")

	// Geometry changes are picked up on the daemon's next restart; the
	// watcher only reports them.
	config.Watch(v, func(next *config.Config) {
		log.Info().
			Uint32("width", next.Camera.Width).
			Uint32("height", next.Camera.Height).
			Msg("configuration changed, restart to apply camera geometry")
	}, func(watchErr error) {
		log.Warn().Err(watchErr).Msg("config reload failed")
	})

	cam, err := camera.New(cfg.Camera.Width, cfg.Camera.Height)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid camera geometry")
	}

	deps := &server.Dependencies{
		Camera:      cam,
		LockManager: server.NewSimpleLockManager(),
		Logger:      server.NewZerologLogger(log),
	}

	srv := server.New(*socketPath, deps)
	if err := srv.Run(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func socketOrDefault(cfg *config.Config) string {
	if cfg.Server.Socket != "" {
		return cfg.Server.Socket
	}
	return server.DefaultSocketPath()
}
