// Package server exposes a camera daemon over a unix socket so short-lived
// clients can push frames through one warm capture session.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/yegorvk/vcam/internal/camera"
	"github.com/yegorvk/vcam/internal/frame"
)

// CameraController is the camera surface the daemon drives.
type CameraController interface {
	Start()
	Stop()
	Resize(width, height uint32) error
	Send(pix []byte) error
	Config() frame.Config
	Running() bool
}

// LockManager manages resource locks.
type LockManager interface {
	Acquire(key, holder string) bool
	Release(key string)
}

// Logger provides logging functionality.
type Logger interface {
	Printf(format string, v ...any)
	Println(v ...any)
}

// Dependencies holds all dependencies for the server.
type Dependencies struct {
	Camera      CameraController
	LockManager LockManager
	Logger      Logger
}

// Server owns one camera and serves JSON-RPC requests against it.
type Server struct {
	socketPath string
	listener   net.Listener

	// Graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	deps *Dependencies

	stats *Stats
}

// Stats tracks server statistics.
type Stats struct {
	mu           sync.RWMutex
	requestCount int64
	errorCount   int64
	framesSent   int64
	activeConns  int32
	startTime    time.Time
}

// New creates a server with injected dependencies.
func New(socketPath string, deps *Dependencies) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		socketPath: socketPath,
		ctx:        ctx,
		cancel:     cancel,
		deps:       deps,
		stats:      &Stats{startTime: time.Now()},
	}
}

// Run starts the server and blocks until shutdown.
func (s *Server) Run() error {
	// Ensure socket directory exists
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0700); err != nil {
		return fmt.Errorf("create socket dir: %w", err)
	}

	// Remove old socket if exists
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen on socket: %w", err)
	}
	s.listener = listener

	// Socket is owner-only: anyone who can write it controls the camera.
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("chmod socket: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			s.deps.Logger.Println("Shutting down server...")
			s.Shutdown()
		case <-s.ctx.Done():
		}
	}()

	s.deps.Logger.Printf("Server listening on %s", s.socketPath)

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return nil // Clean shutdown
			default:
				s.deps.Logger.Printf("Accept error: %v", err)
				continue
			}
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// handleConnection processes a client connection.
func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	s.stats.mu.Lock()
	s.stats.activeConns++
	s.stats.mu.Unlock()

	defer func() {
		s.stats.mu.Lock()
		s.stats.activeConns--
		s.stats.mu.Unlock()
	}()

	decoder := json.NewDecoder(conn)
	encoder := json.NewEncoder(conn)

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		conn.SetReadDeadline(time.Now().Add(30 * time.Second))

		var req Request
		if err := decoder.Decode(&req); err != nil {
			if err.Error() == "EOF" || os.IsTimeout(err) {
				return
			}
			encoder.Encode(NewErrorResponse(RequestID{}, ParseError, "Parse error"))
			return
		}

		s.stats.mu.Lock()
		s.stats.requestCount++
		s.stats.mu.Unlock()

		resp := s.processRequest(req)

		if err := encoder.Encode(resp); err != nil {
			return
		}
	}
}

// processRequest handles a single request.
func (s *Server) processRequest(req Request) Response {
	if req.JSONRPC != jsonRPCVersion {
		return NewErrorResponse(req.ID, InvalidRequest, "Invalid Request")
	}

	var resp Response
	start := time.Now()

	switch req.Method {
	case "start":
		resp = s.handleStart(req)
	case "resize":
		resp = s.handleResize(req)
	case "stop":
		resp = s.handleStop(req)
	case "frame":
		resp = s.handleFrame(req)
	case "stats":
		resp = s.handleStats(req)
	default:
		resp = NewErrorResponse(req.ID, MethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
	}

	duration := time.Since(start)
	if resp.Error != nil {
		s.countError()
		s.deps.Logger.Printf("[SERVER] %s failed in %v: %s", req.Method, duration, resp.Error.Message)
	} else if req.Method != "frame" {
		// Frame traffic is too chatty to log per request.
		s.deps.Logger.Printf("[SERVER] %s completed in %v", req.Method, duration)
	}

	return resp
}

// withCamera serializes access to the camera, which is not safe for
// concurrent use.
func (s *Server) withCamera(req Request, f func() Response) Response {
	if !s.deps.LockManager.Acquire("camera", "server") {
		return NewErrorResponse(req.ID, InternalError, "Camera busy")
	}
	defer s.deps.LockManager.Release("camera")
	return f()
}

func (s *Server) handleStart(req Request) Response {
	var params GeometryParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return NewErrorResponse(req.ID, InvalidParams, fmt.Sprintf("Invalid params: %v", err))
		}
	}

	return s.withCamera(req, func() Response {
		if params.Width != 0 || params.Height != 0 {
			if err := s.deps.Camera.Resize(params.Width, params.Height); err != nil {
				return NewErrorResponse(req.ID, InvalidParams, err.Error())
			}
		}
		s.deps.Camera.Start()
		cfg := s.deps.Camera.Config()
		return NewSuccessResponse(req.ID, fmt.Sprintf("camera started (%dx%d)", cfg.Width, cfg.Height))
	})
}

func (s *Server) handleResize(req Request) Response {
	var params GeometryParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return NewErrorResponse(req.ID, InvalidParams, fmt.Sprintf("Invalid params: %v", err))
	}

	return s.withCamera(req, func() Response {
		if err := s.deps.Camera.Resize(params.Width, params.Height); err != nil {
			return NewErrorResponse(req.ID, InvalidParams, err.Error())
		}
		return NewSuccessResponse(req.ID, fmt.Sprintf("camera resized to %dx%d", params.Width, params.Height))
	})
}

func (s *Server) handleStop(req Request) Response {
	return s.withCamera(req, func() Response {
		s.deps.Camera.Stop()
		return NewSuccessResponse(req.ID, "camera stopped")
	})
}

func (s *Server) handleFrame(req Request) Response {
	var params FrameParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return NewErrorResponse(req.ID, InvalidParams, fmt.Sprintf("Invalid params: %v", err))
	}

	pix, err := base64.StdEncoding.DecodeString(params.Data)
	if err != nil {
		return NewErrorResponse(req.ID, InvalidParams, fmt.Sprintf("Invalid frame data: %v", err))
	}

	return s.withCamera(req, func() Response {
		err := s.deps.Camera.Send(pix)
		if errors.Is(err, camera.ErrFrameDropped) {
			// Not fatal; the camera retries the receiver on the next frame.
			return NewSuccessResponseWithMeta(req.ID, "frame dropped, receiver unavailable",
				map[string]string{"via": "server", "dropped": "true"})
		}
		if err != nil {
			return NewErrorResponse(req.ID, InternalError, err.Error())
		}

		s.stats.mu.Lock()
		s.stats.framesSent++
		s.stats.mu.Unlock()

		return NewSuccessResponseWithMeta(req.ID, "frame sent", map[string]string{"via": "server"})
	})
}

// handleStats returns server statistics.
func (s *Server) handleStats(req Request) Response {
	s.stats.mu.RLock()
	defer s.stats.mu.RUnlock()

	cfg := s.deps.Camera.Config()
	running := "stopped"
	if s.deps.Camera.Running() {
		running = "running"
	}

	uptime := time.Since(s.stats.startTime).Round(time.Second)
	stats := fmt.Sprintf("Server Stats:\n"+
		"  Uptime: %v\n"+
		"  Requests: %d\n"+
		"  Errors: %d\n"+
		"  Frames Sent: %d\n"+
		"  Active Connections: %d\n"+
		"  Camera: %s (%dx%d)\n"+
		"  Socket: %s",
		uptime, s.stats.requestCount, s.stats.errorCount, s.stats.framesSent,
		s.stats.activeConns, running, cfg.Width, cfg.Height, s.socketPath)

	return NewSuccessResponse(req.ID, stats)
}

func (s *Server) countError() {
	s.stats.mu.Lock()
	s.stats.errorCount++
	s.stats.mu.Unlock()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() {
	s.cancel() // Signal shutdown

	if s.listener != nil {
		s.listener.Close()
	}

	// Wait for active connections
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.deps.Logger.Println("Clean shutdown completed")
	case <-time.After(5 * time.Second):
		s.deps.Logger.Println("Forced shutdown after timeout")
	}

	// The camera session dies with the daemon.
	s.deps.Camera.Stop()

	os.Remove(s.socketPath)
}
