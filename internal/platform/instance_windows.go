//go:build windows

package platform

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var procCreateMutexW = kernel32.NewProc("CreateMutexW")

// AcquireInstanceLock creates a named mutex in the Global namespace so a
// second copy of the daemon refuses to start. The returned release frees
// the mutex; it is also released by the OS when the process dies.
func AcquireInstanceLock(name string) (release func(), err error) {
	namePtr, err := windows.UTF16PtrFromString(`Global\` + name)
	if err != nil {
		return nil, err
	}

	handle, _, callErr := procCreateMutexW.Call(0, 0, uintptr(unsafe.Pointer(namePtr)))
	if handle == 0 {
		return nil, fmt.Errorf("failed to create instance mutex: %w", callErr)
	}
	if callErr == windows.ERROR_ALREADY_EXISTS {
		windows.CloseHandle(windows.Handle(handle))
		return nil, ErrAlreadyRunning
	}
	return func() {
		windows.CloseHandle(windows.Handle(handle))
	}, nil
}
