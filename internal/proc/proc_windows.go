//go:build windows

package proc

import (
	"context"
	"fmt"
	"strings"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procEnumWindows              = user32.NewProc("EnumWindows")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procGetWindowTextLength      = user32.NewProc("GetWindowTextLengthW")
)

type windowsLocator struct{}

// New returns the Windows process locator.
func New() Locator {
	return &windowsLocator{}
}

func (l *windowsLocator) Locate(ctx context.Context, name string) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return Handle{}, err
	}

	pid, err := findPID(name)
	if err != nil {
		return Handle{}, err
	}

	// A visible titled window is preferred so keys can be posted directly
	// to it. Processes without one still get a handle; the emitter falls
	// back to global injection.
	hwnd := findWindow(pid)
	return Handle{PID: pid, HWND: hwnd}, nil
}

func (l *windowsLocator) Alive(h Handle) bool {
	if !h.Valid() {
		return false
	}
	proc, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, h.PID)
	if err != nil {
		return false
	}
	defer windows.CloseHandle(proc)

	var code uint32
	if err := windows.GetExitCodeProcess(proc, &code); err != nil {
		return false
	}
	const stillActive = 259 // STILL_ACTIVE
	return code == stillActive
}

// findPID walks a toolhelp snapshot looking for an executable whose name
// contains the target (case-insensitive substring, matching "notepad"
// against "notepad.exe").
func findPID(name string) (uint32, error) {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return 0, fmt.Errorf("process snapshot: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	target := strings.ToLower(name)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	if err := windows.Process32First(snapshot, &entry); err != nil {
		return 0, fmt.Errorf("process walk: %w", err)
	}
	for {
		exe := strings.ToLower(windows.UTF16ToString(entry.ExeFile[:]))
		if strings.Contains(exe, target) {
			return entry.ProcessID, nil
		}
		if err := windows.Process32Next(snapshot, &entry); err != nil {
			break
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrNotFound, name)
}

type enumState struct {
	pid  uint32
	hwnd uintptr
}

// Callbacks registered with syscall.NewCallback are never released, so the
// enum callback is created once and state travels through lparam.
var enumWindowsCallback = syscall.NewCallback(func(hwnd uintptr, lparam uintptr) uintptr {
	s := (*enumState)(unsafe.Pointer(lparam))

	var windowPID uint32
	procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&windowPID)))
	if windowPID != s.pid {
		return 1 // continue enumeration
	}

	visible, _, _ := procIsWindowVisible.Call(hwnd)
	if visible == 0 {
		return 1
	}
	titleLen, _, _ := procGetWindowTextLength.Call(hwnd)
	if titleLen == 0 {
		return 1
	}

	s.hwnd = hwnd
	return 0 // stop enumeration
})

func findWindow(pid uint32) uintptr {
	state := enumState{pid: pid}
	procEnumWindows.Call(enumWindowsCallback, uintptr(unsafe.Pointer(&state)))
	return state.hwnd
}
