// Package devtools runs the repository maintenance tools: formatters in
// write mode (fix) and formatter/linter in read-only mode (check).
package devtools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// FileSystem provides filesystem operations.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	TempDir() string
}

// CommandResult carries the streams and exit code of a finished command.
type CommandResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// CommandRunner executes external commands.
type CommandRunner interface {
	// RunContext runs a command to completion. A non-zero exit status is
	// reported through CommandResult, not the error; the error covers
	// start failures and context cancellation.
	RunContext(ctx context.Context, dir, name string, args ...string) (CommandResult, error)
}

// ProcessManager manages system processes.
type ProcessManager interface {
	GetPID() int
	ProcessExists(pid int) bool
}

// Clock provides time operations.
type Clock interface {
	Now() time.Time
}

// OutputWriter writes output to various destinations.
type OutputWriter interface {
	io.Writer
}

// Dependencies holds all external dependencies.
type Dependencies struct {
	FS      FileSystem
	Runner  CommandRunner
	Process ProcessManager
	Clock   Clock
	Stdout  OutputWriter
	Stderr  OutputWriter
}

// NewDefaultDependencies returns production implementations.
func NewDefaultDependencies() *Dependencies {
	return &Dependencies{
		FS:      &realFileSystem{},
		Runner:  &realCommandRunner{},
		Process: &realProcessManager{},
		Clock:   &realClock{},
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

type realFileSystem struct{}

func (r *realFileSystem) ReadFile(name string) ([]byte, error) {
	data, err := os.ReadFile(name) // #nosec G304 - file path is from trusted source
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", name, err)
	}
	return data, nil
}

func (r *realFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	if err := os.WriteFile(name, data, perm); err != nil {
		return fmt.Errorf("write file %s: %w", name, err)
	}
	return nil
}

func (r *realFileSystem) TempDir() string {
	return os.TempDir()
}

type realCommandRunner struct{}

func (r *realCommandRunner) RunContext(ctx context.Context, dir, name string, args ...string) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := CommandResult{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("run command %s: %w", name, err)
	}
	return result, nil
}

type realProcessManager struct{}

func (r *realProcessManager) GetPID() int {
	return os.Getpid()
}

func (r *realProcessManager) ProcessExists(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Signal 0 checks existence without sending anything.
	return process.Signal(syscall.Signal(0)) == nil
}

type realClock struct{}

func (r *realClock) Now() time.Time {
	return time.Now()
}
