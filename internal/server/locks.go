package server

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Lock represents a resource lock.
type Lock struct {
	Resource   string
	Holder     string
	AcquiredAt time.Time
}

// SimpleLockManager implements LockManager with in-memory locks.
type SimpleLockManager struct {
	mu    sync.RWMutex
	locks map[string]*Lock
}

// NewSimpleLockManager creates a new lock manager.
func NewSimpleLockManager() *SimpleLockManager {
	return &SimpleLockManager{
		locks: make(map[string]*Lock),
	}
}

// Acquire attempts to acquire a lock for a resource.
func (m *SimpleLockManager) Acquire(key, holder string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.locks[key]; exists {
		return false // Already locked
	}

	m.locks[key] = &Lock{
		Resource:   key,
		Holder:     holder,
		AcquiredAt: time.Now(),
	}
	return true
}

// Release releases a lock for a resource.
func (m *SimpleLockManager) Release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, key)
}

// ZerologLogger implements Logger over a zerolog logger.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger wraps the given zerolog logger.
func NewZerologLogger(log zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{log: log}
}

// Printf logs a formatted message at info level.
func (l *ZerologLogger) Printf(format string, v ...any) {
	l.log.Info().Msgf(format, v...)
}

// Println logs its arguments at info level.
func (l *ZerologLogger) Println(v ...any) {
	l.log.Info().Msg(strings.TrimRight(fmt.Sprintln(v...), "\n"))
}
