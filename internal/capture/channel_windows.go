//go:build windows

package capture

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Access rights not exported by x/sys/windows.
const (
	eventModifyState = 0x0002
	fileMapWrite     = 0x0002
	waitAbandoned    = 0x00000080
)

var (
	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procOpenFileMappingW = kernel32.NewProc("OpenFileMappingW")
)

// DefaultChannel returns the Win32-backed channel.
func DefaultChannel() Channel { return win32Channel{} }

type win32Channel struct{}

func (win32Channel) OpenMutex(name string) (Mutex, error) {
	namep, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, fmt.Errorf("invalid name %q: %w", name, err)
	}
	h, err := windows.OpenMutex(windows.SYNCHRONIZE, false, namep)
	if err != nil {
		return nil, fmt.Errorf("OpenMutexW: %w", err)
	}
	return &win32Mutex{h: h}, nil
}

func (win32Channel) CreateEvent(name string) (Event, error) {
	namep, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, fmt.Errorf("invalid name %q: %w", name, err)
	}
	// Auto-reset, initially unsignaled.
	h, err := windows.CreateEvent(nil, 0, 0, namep)
	if err != nil {
		return nil, fmt.Errorf("CreateEventW: %w", err)
	}
	return &win32Event{h: h}, nil
}

func (win32Channel) OpenEvent(name string) (Event, error) {
	namep, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, fmt.Errorf("invalid name %q: %w", name, err)
	}
	h, err := windows.OpenEvent(eventModifyState, false, namep)
	if err != nil {
		return nil, fmt.Errorf("OpenEventW: %w", err)
	}
	return &win32Event{h: h}, nil
}

func (win32Channel) OpenMapping(name string, size int) (Mapping, error) {
	namep, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, fmt.Errorf("invalid name %q: %w", name, err)
	}
	r1, _, callErr := procOpenFileMappingW.Call(
		uintptr(fileMapWrite),
		0,
		uintptr(unsafe.Pointer(namep)),
	)
	if r1 == 0 {
		return nil, fmt.Errorf("OpenFileMappingW: %w", callErr)
	}
	h := windows.Handle(r1)

	addr, err := windows.MapViewOfFile(h, fileMapWrite, 0, 0, 0)
	if err != nil {
		_ = windows.CloseHandle(h)
		return nil, fmt.Errorf("MapViewOfFile: %w", err)
	}

	return &win32Mapping{
		h:    h,
		addr: addr,
		buf:  unsafe.Slice((*byte)(unsafe.Pointer(addr)), size),
	}, nil
}

type win32Mutex struct {
	h windows.Handle
}

func (m *win32Mutex) Lock() error {
	ev, err := windows.WaitForSingleObject(m.h, windows.INFINITE)
	switch ev {
	case windows.WAIT_OBJECT_0, waitAbandoned:
		return nil
	case uint32(windows.WAIT_TIMEOUT):
		return errors.New("timed out waiting for the mutex")
	default:
		return fmt.Errorf("WaitForSingleObject: %w", err)
	}
}

func (m *win32Mutex) Unlock() {
	// Failure here means the mutex wasn't held, which is a programming
	// error; there is no useful recovery.
	_ = windows.ReleaseMutex(m.h)
}

func (m *win32Mutex) Close() error {
	if err := windows.CloseHandle(m.h); err != nil {
		return fmt.Errorf("CloseHandle: %w", err)
	}
	return nil
}

type win32Event struct {
	h windows.Handle
}

func (e *win32Event) Set() error {
	if err := windows.SetEvent(e.h); err != nil {
		return fmt.Errorf("SetEvent: %w", err)
	}
	return nil
}

func (e *win32Event) Close() error {
	if err := windows.CloseHandle(e.h); err != nil {
		return fmt.Errorf("CloseHandle: %w", err)
	}
	return nil
}

type win32Mapping struct {
	h    windows.Handle
	addr uintptr
	buf  []byte
}

func (m *win32Mapping) Bytes() []byte { return m.buf }

func (m *win32Mapping) Close() error {
	m.buf = nil
	var errs []error
	if err := windows.UnmapViewOfFile(m.addr); err != nil {
		errs = append(errs, fmt.Errorf("UnmapViewOfFile: %w", err))
	}
	if err := windows.CloseHandle(m.h); err != nil {
		errs = append(errs, fmt.Errorf("CloseHandle: %w", err))
	}
	return errors.Join(errs...)
}
