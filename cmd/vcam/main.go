package main

import (
	"fmt"
	"os"

	"github.com/yegorvk/vcam/internal/config"
	"github.com/yegorvk/vcam/internal/logging"
	"github.com/yegorvk/vcam/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "demo":
		runDemo()
	case "snapshot":
		runSnapshot()
	case "frame":
		runFrame()
	case "serve":
		runServe()
	case "status":
		runStatus()
	case "check":
		runTools(false)
	case "fix":
		runTools(true)
	case "version":
		fmt.Println("vcam v0.1.0")
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `vcam - virtual camera tools

Usage:
  vcam <command> [arguments]

Commands:
  demo          Stream an animated test pattern to the virtual camera
  snapshot      Write one test-pattern frame to a WebP file
  frame         Send a single raw RGBA frame from stdin
  serve         Run the camera daemon on a unix socket
  status        Check daemon status
  check         Run the formatter and linter in read-only mode
  fix           Run the formatter in write mode
  version       Print version information
  help          Show this help message

Examples:
  vcam demo -width 1280 -height 720 -fps 60
  vcam snapshot -o frame.webp
  cat frame.rgba | vcam frame -width 1280 -height 720
`)
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logging.Configure(logging.Config{Level: cfg.Log.Level})
	return cfg
}

func runStatus() {
	socketPath := server.DefaultSocketPath()

	if _, err := os.Stat(socketPath); os.IsNotExist(err) {
		fmt.Printf("Server: NOT RUNNING\nSocket: %s (not found)\n", socketPath)
		os.Exit(1)
	}

	client := server.NewClient(socketPath)
	stats, err := client.Stats()
	if err != nil {
		fmt.Printf("Server: ERROR\nSocket: %s\nError: %v\n", socketPath, err)
		os.Exit(1)
	}

	fmt.Println(stats)
}
