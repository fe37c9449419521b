// Package capture implements the sending side of the UnityCapture
// shared-memory protocol. A receiver (the virtual camera device) owns a
// named mutex, a pair of signaling events and a fixed-size file mapping;
// the sender publishes frames by rewriting the mapped region under the
// mutex and signaling the receiver afterwards.
package capture

import "errors"

// Shared object names defined by the UnityCapture protocol.
const (
	mutexName     = "UnityCapture_Mutx"
	wantEventName = "UnityCapture_Want"
	sentEventName = "UnityCapture_Sent"
	mappingName   = "UnityCapture_Data"
)

// ErrUnsupportedOS is returned when the platform has no shared-memory
// channel implementation.
var ErrUnsupportedOS = errors.New("virtual camera capture requires windows")

// Mutex guards the shared memory region across processes.
type Mutex interface {
	Lock() error
	Unlock()
	Close() error
}

// Event is a cross-process signaling object.
type Event interface {
	Set() error
	Close() error
}

// Mapping is a mapped view of the shared memory region.
type Mapping interface {
	// Bytes returns the mapped region. The slice stays valid until Close.
	Bytes() []byte
	Close() error
}

// Channel opens the named kernel objects the sender needs. The production
// implementation wraps Win32; tests substitute an in-memory fake.
type Channel interface {
	OpenMutex(name string) (Mutex, error)
	CreateEvent(name string) (Event, error)
	OpenEvent(name string) (Event, error)
	OpenMapping(name string, size int) (Mapping, error)
}
