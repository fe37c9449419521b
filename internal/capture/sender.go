package capture

import (
	"errors"
	"fmt"

	"github.com/yegorvk/vcam/internal/frame"
)

// Error wraps a sender failure and records whether retrying can help.
// Initialization failures are retryable: they usually just mean the
// receiver isn't running yet. Failures after initialization mean the
// session is broken and the caller should give up.
type Error struct {
	retryable bool
	err       error
}

func (e *Error) Error() string { return e.err.Error() }

func (e *Error) Unwrap() error { return e.err }

// ShouldRetry reports whether a later send may succeed.
func (e *Error) ShouldRetry() bool { return e.retryable }

func initError(err error) *Error {
	retryable := !errors.Is(err, ErrUnsupportedOS)
	return &Error{retryable: retryable, err: fmt.Errorf("initialize sender: %w", err)}
}

func sendError(err error) *Error {
	return &Error{retryable: false, err: fmt.Errorf("send frame: %w", err)}
}

// Sender publishes frames to the receiver's shared memory region. It
// initializes lazily on the first send, caching whichever named objects it
// managed to acquire so a partial init resumes where it left off.
//
// A Sender is not safe for concurrent use.
type Sender struct {
	ch Channel

	// Acquired incrementally during init.
	mutex Mutex
	want  Event
	sent  Event
	mem   Mapping

	ready bool
}

// NewSender creates a sender over the given channel.
func NewSender(ch Channel) *Sender {
	return &Sender{ch: ch}
}

// Send publishes one frame. fill receives the shared image region and must
// write the frame into its prefix. The returned error, if any, is *Error.
func (s *Sender) Send(cfg frame.Config, fill func(image []byte)) error {
	if err := s.ensureReady(); err != nil {
		return initError(err)
	}

	shared := s.mem.Bytes()

	if err := s.mutex.Lock(); err != nil {
		return sendError(fmt.Errorf("lock mutex: %w", err))
	}
	if got := maxSize(shared); got != MaxImageSize {
		s.mutex.Unlock()
		return sendError(fmt.Errorf("shared memory capacity mismatch: receiver reports %d, want %d", got, MaxImageSize))
	}
	putHeader(shared, cfg)
	fill(shared[HeaderSize:])
	s.mutex.Unlock()

	if err := s.sent.Set(); err != nil {
		return sendError(fmt.Errorf("signal sent event: %w", err))
	}
	return nil
}

// ensureReady performs (or resumes) lazy initialization.
func (s *Sender) ensureReady() error {
	if s.ready {
		return nil
	}

	if s.mutex == nil {
		m, err := s.ch.OpenMutex(mutexName)
		if err != nil {
			return fmt.Errorf("open mutex %q: %w", mutexName, err)
		}
		s.mutex = m
	}

	if err := s.mutex.Lock(); err != nil {
		return fmt.Errorf("lock mutex: %w", err)
	}
	defer s.mutex.Unlock()

	// The want event advertises a live producer; it is held, never waited on.
	if s.want == nil {
		e, err := s.ch.CreateEvent(wantEventName)
		if err != nil {
			return fmt.Errorf("create event %q: %w", wantEventName, err)
		}
		s.want = e
	}

	if s.sent == nil {
		e, err := s.ch.OpenEvent(sentEventName)
		if err != nil {
			return fmt.Errorf("open event %q: %w", sentEventName, err)
		}
		s.sent = e
	}

	if s.mem == nil {
		m, err := s.ch.OpenMapping(mappingName, SharedSize)
		if err != nil {
			return fmt.Errorf("open shared memory %q: %w", mappingName, err)
		}
		s.mem = m
	}

	s.ready = true
	return nil
}

// Close releases every acquired object. The sender must not be used after.
func (s *Sender) Close() error {
	var errs []error
	if s.mem != nil {
		if err := s.mem.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close shared memory: %w", err))
		}
		s.mem = nil
	}
	if s.sent != nil {
		if err := s.sent.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close sent event: %w", err))
		}
		s.sent = nil
	}
	if s.want != nil {
		if err := s.want.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close want event: %w", err))
		}
		s.want = nil
	}
	if s.mutex != nil {
		if err := s.mutex.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close mutex: %w", err))
		}
		s.mutex = nil
	}
	s.ready = false
	return errors.Join(errs...)
}
