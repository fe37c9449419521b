package devtools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yegorvk/vcam/internal/config"
)

// Mode selects between rewriting sources and read-only verification.
type Mode string

const (
	// ModeFix runs the formatter commands in write mode.
	ModeFix Mode = "fix"
	// ModeCheck runs the formatter and linter in read-only mode.
	ModeCheck Mode = "check"
)

// ErrLocked is returned when another run holds the workspace lock or the
// post-run cooldown hasn't elapsed.
var ErrLocked = errors.New("another run is in progress or in cooldown")

// Result is the outcome of one tool invocation.
type Result struct {
	Argv     []string
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	Err      error
}

// Command returns the invocation as a shell-style string.
func (r Result) Command() string {
	return strings.Join(r.Argv, " ")
}

// Suite runs the configured maintenance tools for one workspace.
type Suite struct {
	dir     string
	tools   config.ToolsConfig
	timeout time.Duration
	deps    *Dependencies
}

// NewSuite creates a suite rooted at dir.
func NewSuite(dir string, tools config.ToolsConfig, deps *Dependencies) *Suite {
	if deps == nil {
		deps = NewDefaultDependencies()
	}
	return &Suite{
		dir:     dir,
		tools:   tools,
		timeout: time.Duration(tools.TimeoutSeconds) * time.Second,
		deps:    deps,
	}
}

// Run executes the suite in the given mode under the workspace lock.
// The returned results cover every command that ran; ok is true only if
// all of them passed.
func (s *Suite) Run(ctx context.Context, mode Mode) (results []Result, ok bool, err error) {
	lock := NewLockManager(s.dir, string(mode), s.tools.CooldownSeconds, s.deps)
	acquired, err := lock.TryAcquire()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock: %w", err)
	}
	if !acquired {
		return nil, false, ErrLocked
	}
	defer func() {
		if releaseErr := lock.Release(); releaseErr != nil && err == nil {
			err = releaseErr
		}
	}()

	switch mode {
	case ModeFix:
		results, ok = s.runFix(ctx)
	case ModeCheck:
		results, ok = s.runCheck(ctx)
	default:
		return nil, false, fmt.Errorf("unknown mode %q", mode)
	}
	return results, ok, nil
}

// runFix runs the format commands sequentially, stopping at the first
// failure, the way `a && b` chains do.
func (s *Suite) runFix(ctx context.Context) ([]Result, bool) {
	var results []Result
	for _, argv := range s.tools.Format {
		r := s.runOne(ctx, argv, false)
		results = append(results, r)
		if !r.Success {
			return results, false
		}
	}
	return results, true
}

// runCheck runs every check command and reports each outcome.
func (s *Suite) runCheck(ctx context.Context) ([]Result, bool) {
	ok := true
	var results []Result
	for _, argv := range s.tools.Check {
		r := s.runOne(ctx, argv, true)
		results = append(results, r)
		if !r.Success {
			ok = false
		}
	}
	return results, ok
}

// runOne executes a single argv with the suite timeout. In check mode a
// command also fails when it prints to stdout while exiting zero:
// list-mode formatters (gofmt -l) report offending files that way.
func (s *Suite) runOne(ctx context.Context, argv []string, stdoutFails bool) Result {
	r := Result{Argv: argv}
	if len(argv) == 0 {
		r.Err = errors.New("empty command")
		return r
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.deps.Runner.RunContext(ctx, s.dir, argv[0], argv[1:]...)
	r.Stdout = string(out.Stdout)
	r.Stderr = string(out.Stderr)
	r.ExitCode = out.ExitCode

	if ctx.Err() == context.DeadlineExceeded {
		r.TimedOut = true
		r.Err = fmt.Errorf("command timed out after %v", s.timeout)
		return r
	}
	if err != nil {
		r.Err = err
		return r
	}

	r.Success = out.ExitCode == 0
	if stdoutFails && r.Success && strings.TrimSpace(r.Stdout) != "" {
		r.Success = false
	}
	return r
}
