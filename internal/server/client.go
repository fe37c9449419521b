package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultDialTimeout is the default timeout for connecting to the server.
	DefaultDialTimeout = 5 * time.Second
)

// Client handles communication with the camera daemon.
type Client struct {
	socketPath  string
	dialTimeout time.Duration
}

// NewClient creates a new client instance with default timeout.
func NewClient(socketPath string) *Client {
	if socketPath == "" {
		socketPath = DefaultSocketPath()
	}
	return &Client{
		socketPath:  socketPath,
		dialTimeout: DefaultDialTimeout,
	}
}

// NewClientWithTimeout creates a new client instance with custom timeout.
func NewClientWithTimeout(socketPath string, timeout time.Duration) *Client {
	if socketPath == "" {
		socketPath = DefaultSocketPath()
	}
	return &Client{
		socketPath:  socketPath,
		dialTimeout: timeout,
	}
}

// DefaultSocketPath returns the default socket path. The VCAM_SOCKET
// environment variable overrides it.
func DefaultSocketPath() string {
	if override := os.Getenv("VCAM_SOCKET"); override != "" {
		return override
	}
	if runtime := os.Getenv("XDG_RUNTIME_DIR"); runtime != "" {
		return filepath.Join(runtime, "vcam.sock")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("vcam-%d.sock", os.Getuid()))
}

// Call executes a method on the server and returns the result.
func (c *Client) Call(method string, params any) (string, map[string]string, error) {
	// Check if socket exists
	if _, err := os.Stat(c.socketPath); os.IsNotExist(err) {
		return "", nil, fmt.Errorf("server not running (socket not found: %s)", c.socketPath)
	}

	d := &net.Dialer{Timeout: c.dialTimeout}
	conn, err := d.DialContext(context.Background(), "unix", c.socketPath)
	if err != nil {
		return "", nil, fmt.Errorf("connect to server: %w", err)
	}
	defer func() { _ = conn.Close() }()

	deadline := time.Now().Add(c.dialTimeout)
	if deadlineErr := conn.SetDeadline(deadline); deadlineErr != nil {
		return "", nil, fmt.Errorf("set deadline: %w", deadlineErr)
	}

	var paramsJSON json.RawMessage
	if params != nil {
		paramsJSON, err = json.Marshal(params)
		if err != nil {
			return "", nil, fmt.Errorf("marshal params: %w", err)
		}
	}

	req := Request{
		JSONRPC: jsonRPCVersion,
		ID:      RequestID{value: "1"},
		Method:  method,
		Params:  paramsJSON,
	}

	encoder := json.NewEncoder(conn)
	if encErr := encoder.Encode(req); encErr != nil {
		return "", nil, fmt.Errorf("send request: %w", encErr)
	}

	decoder := json.NewDecoder(conn)
	var resp Response
	if decErr := decoder.Decode(&resp); decErr != nil {
		return "", nil, fmt.Errorf("read response: %w", decErr)
	}

	if resp.Error != nil {
		return "", nil, fmt.Errorf("server error %d: %s", resp.Error.Code, resp.Error.Message)
	}

	if resp.Result == nil {
		return "", nil, fmt.Errorf("no result in response")
	}

	return resp.Result.Output, resp.Result.Meta, nil
}

// Start asks the daemon to (re)start its camera, optionally resizing it
// first when width and height are nonzero.
func (c *Client) Start(width, height uint32) (string, error) {
	out, _, err := c.Call("start", GeometryParams{Width: width, Height: height})
	return out, err
}

// Resize changes the daemon camera's geometry.
func (c *Client) Resize(width, height uint32) (string, error) {
	out, _, err := c.Call("resize", GeometryParams{Width: width, Height: height})
	return out, err
}

// Stop stops the daemon's camera.
func (c *Client) Stop() (string, error) {
	out, _, err := c.Call("stop", nil)
	return out, err
}

// SendFrame pushes one RGBA frame through the daemon.
func (c *Client) SendFrame(pix []byte) (string, map[string]string, error) {
	params := FrameParams{Data: base64.StdEncoding.EncodeToString(pix)}
	return c.Call("frame", params)
}

// Stats fetches daemon statistics.
func (c *Client) Stats() (string, error) {
	out, _, err := c.Call("stats", nil)
	return out, err
}

// TrySendWithFallback pushes a frame through the daemon, falling back to
// the direct function when the daemon is unreachable. Set VCAM_NO_SERVER=1
// to skip the daemon entirely.
func TrySendWithFallback(pix []byte, directFunc func([]byte) error) error {
	if os.Getenv("VCAM_NO_SERVER") == "1" {
		fmt.Fprintf(os.Stderr, "[VCAM] Server disabled, sending directly\n")
		return directFunc(pix)
	}

	client := NewClient(DefaultSocketPath())

	_, meta, err := client.SendFrame(pix)
	if err == nil {
		if meta != nil && meta["via"] == "server" {
			fmt.Fprintf(os.Stderr, "[VCAM] Frame sent via server\n")
		}
		return nil
	}

	fmt.Fprintf(os.Stderr, "[VCAM] Server unavailable, sending directly (error: %v)\n", err)
	return directFunc(pix)
}
