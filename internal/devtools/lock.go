package devtools

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"strconv"
)

const lockFileMode = 0600 // Read/write for owner only

// LockManager prevents concurrent tool runs in the same workspace. The
// lock file holds the owner's PID and, after release, a completion
// timestamp that enforces a short cooldown before the next run.
type LockManager struct {
	lockFile     string
	pid          int
	cooldownSecs int
	deps         *Dependencies
}

// NewLockManager creates a lock manager for the given workspace and mode
// ("fix" or "check").
func NewLockManager(workspaceDir, mode string, cooldownSecs int, deps *Dependencies) *LockManager {
	if deps == nil {
		deps = NewDefaultDependencies()
	}

	// Lock file name derived from the workspace so unrelated checkouts
	// never contend.
	hash := sha256.Sum256([]byte(workspaceDir))
	lockFileName := fmt.Sprintf("vcam-tools-%s-%x.lock", mode, hash[:8])
	lockFile := filepath.Join(deps.FS.TempDir(), lockFileName)

	return &LockManager{
		lockFile:     lockFile,
		pid:          deps.Process.GetPID(),
		cooldownSecs: cooldownSecs,
		deps:         deps,
	}
}

// TryAcquire attempts to acquire the lock.
// Returns true if lock acquired, false if another process has it or cooldown active.
func (l *LockManager) TryAcquire() (bool, error) {
	data, err := l.deps.FS.ReadFile(l.lockFile)
	if err == nil {
		lines := splitLines(string(data))

		// Line 1: PID of the current holder, if any.
		if len(lines) >= 1 && lines[0] != "" {
			pid, pidErr := strconv.Atoi(lines[0])
			if pidErr == nil && l.deps.Process.ProcessExists(pid) {
				return false, nil
			}
		}

		// Line 2: completion timestamp starting the cooldown.
		if len(lines) >= 2 && lines[1] != "" {
			completionTime, parseErr := strconv.ParseInt(lines[1], 10, 64)
			if parseErr == nil {
				sinceCompletion := l.deps.Clock.Now().Unix() - completionTime
				if sinceCompletion < int64(l.cooldownSecs) {
					return false, nil
				}
			}
		}
	}

	content := fmt.Sprintf("%d\n", l.pid)
	if writeErr := l.deps.FS.WriteFile(l.lockFile, []byte(content), lockFileMode); writeErr != nil {
		return false, fmt.Errorf("writing lock file: %w", writeErr)
	}

	return true, nil
}

// Release releases the lock and starts the cooldown period.
func (l *LockManager) Release() error {
	content := fmt.Sprintf("\n%d\n", l.deps.Clock.Now().Unix())
	if err := l.deps.FS.WriteFile(l.lockFile, []byte(content), lockFileMode); err != nil {
		return fmt.Errorf("writing lock file: %w", err)
	}
	return nil
}

// splitLines splits a string into lines, handling both \n and \r\n.
func splitLines(s string) []string {
	var lines []string
	var current []byte

	for i := range len(s) {
		if s[i] == '\n' {
			lines = append(lines, string(current))
			current = nil
		} else if s[i] != '\r' {
			current = append(current, s[i])
		}
	}

	if len(current) > 0 {
		lines = append(lines, string(current))
	}

	return lines
}
