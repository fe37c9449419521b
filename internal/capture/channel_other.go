//go:build !windows

package capture

// DefaultChannel returns a channel whose operations all fail with
// ErrUnsupportedOS. The CLI, daemon and tests still build and run on
// non-Windows hosts; only actual frame delivery requires Windows.
func DefaultChannel() Channel { return unsupportedChannel{} }

type unsupportedChannel struct{}

func (unsupportedChannel) OpenMutex(string) (Mutex, error)        { return nil, ErrUnsupportedOS }
func (unsupportedChannel) CreateEvent(string) (Event, error)      { return nil, ErrUnsupportedOS }
func (unsupportedChannel) OpenEvent(string) (Event, error)        { return nil, ErrUnsupportedOS }
func (unsupportedChannel) OpenMapping(string, int) (Mapping, error) { return nil, ErrUnsupportedOS }
