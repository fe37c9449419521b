package devtools

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yegorvk/vcam/internal/config"
)

type mockRunner struct {
	// results maps the command name to its canned outcome.
	results map[string]CommandResult
	errs    map[string]error

	// calls records every command name in invocation order.
	calls []string

	// delay makes every command block until the context expires.
	delay bool
}

func (m *mockRunner) RunContext(ctx context.Context, _, name string, _ ...string) (CommandResult, error) {
	m.calls = append(m.calls, name)
	if m.delay {
		<-ctx.Done()
		return CommandResult{}, ctx.Err()
	}
	if err, ok := m.errs[name]; ok {
		return CommandResult{}, err
	}
	return m.results[name], nil
}

func testTools() config.ToolsConfig {
	return config.ToolsConfig{
		Format:          [][]string{{"fmt-a", "-w", "."}, {"fmt-b", "-w", "."}},
		Check:           [][]string{{"fmt-a", "-l", "."}, {"lint-a", "./..."}},
		TimeoutSeconds:  5,
		CooldownSeconds: 0,
	}
}

func newSuiteDeps(runner *mockRunner) *Dependencies {
	deps := newTestDeps(newMockFileSystem(), &mockProcessManager{pid: 1}, &mockClock{now: time.Unix(1000, 0)})
	deps.Runner = runner
	return deps
}

func TestRunCheckAllPass(t *testing.T) {
	runner := &mockRunner{results: map[string]CommandResult{
		"fmt-a":  {},
		"lint-a": {},
	}}
	s := NewSuite("/workspace", testTools(), newSuiteDeps(runner))

	results, ok, err := s.Run(context.Background(), ModeCheck)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !ok {
		t.Error("Expected all checks to pass")
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Success {
			t.Errorf("Expected %s to succeed", r.Command())
		}
	}
}

func TestRunCheckStdoutFails(t *testing.T) {
	// A list-mode formatter prints offending files and exits zero.
	runner := &mockRunner{results: map[string]CommandResult{
		"fmt-a":  {Stdout: []byte("main.go\nserver.go\n")},
		"lint-a": {},
	}}
	s := NewSuite("/workspace", testTools(), newSuiteDeps(runner))

	results, ok, err := s.Run(context.Background(), ModeCheck)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ok {
		t.Error("Expected suite to fail when a check prints to stdout")
	}
	if results[0].Success {
		t.Error("Expected fmt-a to fail on non-empty stdout")
	}
	if !results[1].Success {
		t.Error("Expected lint-a to still run and pass")
	}
}

func TestRunCheckNonZeroExit(t *testing.T) {
	runner := &mockRunner{results: map[string]CommandResult{
		"fmt-a":  {},
		"lint-a": {Stderr: []byte("main.go:10: unused variable"), ExitCode: 1},
	}}
	s := NewSuite("/workspace", testTools(), newSuiteDeps(runner))

	results, ok, err := s.Run(context.Background(), ModeCheck)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ok {
		t.Error("Expected suite to fail on non-zero exit")
	}
	if results[1].Success || results[1].ExitCode != 1 {
		t.Errorf("Expected lint-a failure with exit 1, got %+v", results[1])
	}
}

func TestRunFixStopsAtFirstFailure(t *testing.T) {
	runner := &mockRunner{results: map[string]CommandResult{
		"fmt-a": {ExitCode: 2},
		"fmt-b": {},
	}}
	s := NewSuite("/workspace", testTools(), newSuiteDeps(runner))

	results, ok, err := s.Run(context.Background(), ModeFix)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ok {
		t.Error("Expected fix to fail")
	}
	if len(results) != 1 {
		t.Fatalf("Expected fix to stop after first failure, got %d results", len(results))
	}
	if len(runner.calls) != 1 || runner.calls[0] != "fmt-a" {
		t.Errorf("Expected only fmt-a to run, got %v", runner.calls)
	}
}

func TestRunFixStdoutDoesNotFail(t *testing.T) {
	// Write-mode formatters may print the files they rewrote.
	runner := &mockRunner{results: map[string]CommandResult{
		"fmt-a": {Stdout: []byte("main.go\n")},
		"fmt-b": {},
	}}
	s := NewSuite("/workspace", testTools(), newSuiteDeps(runner))

	_, ok, err := s.Run(context.Background(), ModeFix)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !ok {
		t.Error("Expected fix to tolerate stdout output")
	}
}

func TestRunCommandTimeout(t *testing.T) {
	runner := &mockRunner{delay: true}
	tools := testTools()
	tools.TimeoutSeconds = 0 // expires immediately
	s := NewSuite("/workspace", tools, newSuiteDeps(runner))

	results, ok, err := s.Run(context.Background(), ModeCheck)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ok {
		t.Error("Expected suite to fail on timeout")
	}
	if !results[0].TimedOut {
		t.Error("Expected first result to be marked timed out")
	}
	if results[0].Err == nil || !strings.Contains(results[0].Err.Error(), "timed out") {
		t.Errorf("Expected timeout error, got %v", results[0].Err)
	}
}

func TestRunStartFailure(t *testing.T) {
	runner := &mockRunner{
		results: map[string]CommandResult{"lint-a": {}},
		errs:    map[string]error{"fmt-a": errors.New("run command fmt-a: executable file not found")},
	}
	s := NewSuite("/workspace", testTools(), newSuiteDeps(runner))

	results, ok, err := s.Run(context.Background(), ModeCheck)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ok {
		t.Error("Expected suite to fail when a command can't start")
	}
	if results[0].Err == nil {
		t.Error("Expected start failure to be recorded on the result")
	}
}

func TestRunLocked(t *testing.T) {
	deps := newSuiteDeps(&mockRunner{})
	proc := deps.Process.(*mockProcessManager)
	proc.existing = map[int]bool{999: true}

	s := NewSuite("/workspace", testTools(), deps)

	// Pre-plant a lock held by a live process.
	lock := NewLockManager("/workspace", string(ModeCheck), 0, deps)
	deps.FS.(*mockFileSystem).files[lock.lockFile] = []byte("999\n")

	_, _, err := s.Run(context.Background(), ModeCheck)
	if !errors.Is(err, ErrLocked) {
		t.Errorf("Expected ErrLocked, got %v", err)
	}
}

func TestRunReleasesLock(t *testing.T) {
	deps := newSuiteDeps(&mockRunner{results: map[string]CommandResult{"fmt-a": {}, "lint-a": {}}})
	s := NewSuite("/workspace", testTools(), deps)

	_, _, err := s.Run(context.Background(), ModeCheck)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	lock := NewLockManager("/workspace", string(ModeCheck), 0, deps)
	data := string(deps.FS.(*mockFileSystem).files[lock.lockFile])
	if !strings.HasPrefix(data, "\n") {
		t.Errorf("Expected lock file to record release, got %q", data)
	}
}

func TestRunUnknownMode(t *testing.T) {
	s := NewSuite("/workspace", testTools(), newSuiteDeps(&mockRunner{}))

	_, _, err := s.Run(context.Background(), Mode("clean"))
	if err == nil || !strings.Contains(err.Error(), "unknown mode") {
		t.Errorf("Expected unknown mode error, got %v", err)
	}
}

func TestRunEmptyCommand(t *testing.T) {
	tools := testTools()
	tools.Check = [][]string{{}}
	s := NewSuite("/workspace", tools, newSuiteDeps(&mockRunner{}))

	results, ok, err := s.Run(context.Background(), ModeCheck)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ok {
		t.Error("Expected empty command to fail")
	}
	if results[0].Err == nil {
		t.Error("Expected empty command error on the result")
	}
}

func TestResultCommand(t *testing.T) {
	r := Result{Argv: []string{"gofmt", "-l", "."}}
	if r.Command() != "gofmt -l ." {
		t.Errorf("Unexpected command string: %q", r.Command())
	}
}
