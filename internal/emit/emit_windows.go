//go:build windows

package emit

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"pks/internal/keys"
	"pks/internal/proc"
)

var (
	user32          = windows.NewLazySystemDLL("user32.dll")
	procPostMessage = user32.NewProc("PostMessageW")
	procSendInput   = user32.NewProc("SendInput")
)

const (
	wmKeyDown = 0x0100
	wmKeyUp   = 0x0101

	inputKeyboard  = 1
	keyEventFKeyUp = 0x0002

	// Hold between key down and key up so the target registers the press.
	keyHold = 30 * time.Millisecond
)

type keybdInput struct {
	VK        uint16
	Scan      uint16
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

// input mirrors the Win32 INPUT struct on 64-bit; the trailing pad covers
// the larger MOUSEINPUT arm of the union.
type input struct {
	Type uint32
	_    [4]byte
	Ki   keybdInput
	_    [8]byte
}

type windowsEmitter struct{}

// New returns the Windows key emitter.
func New() Emitter {
	return &windowsEmitter{}
}

func (e *windowsEmitter) Send(h proc.Handle, c keys.Combo) error {
	if h.HWND != 0 {
		return postCombo(h.HWND, c)
	}
	// No resolvable window: inject globally via SendInput.
	return sendInputCombo(c)
}

// postCombo posts the key press directly to the target window: modifier
// downs, key down, hold, key up, modifier ups in reverse.
func postCombo(hwnd uintptr, c keys.Combo) error {
	mods := c.ModVKs()
	for _, vk := range mods {
		if err := postKey(hwnd, wmKeyDown, vk); err != nil {
			return err
		}
	}
	if err := postKey(hwnd, wmKeyDown, c.Key.VK()); err != nil {
		return err
	}
	time.Sleep(keyHold)
	if err := postKey(hwnd, wmKeyUp, c.Key.VK()); err != nil {
		return err
	}
	for i := len(mods) - 1; i >= 0; i-- {
		if err := postKey(hwnd, wmKeyUp, mods[i]); err != nil {
			return err
		}
	}
	return nil
}

func postKey(hwnd uintptr, msg uint32, vk uint16) error {
	ret, _, err := procPostMessage.Call(hwnd, uintptr(msg), uintptr(vk), 0)
	if ret == 0 {
		return fmt.Errorf("PostMessage vk=0x%X: %w", vk, err)
	}
	return nil
}

func sendInputCombo(c keys.Combo) error {
	mods := c.ModVKs()

	var events []input
	for _, vk := range mods {
		events = append(events, keyEvent(vk, 0))
	}
	events = append(events, keyEvent(c.Key.VK(), 0))
	events = append(events, keyEvent(c.Key.VK(), keyEventFKeyUp))
	for i := len(mods) - 1; i >= 0; i-- {
		events = append(events, keyEvent(mods[i], keyEventFKeyUp))
	}

	sent, _, err := procSendInput.Call(
		uintptr(len(events)),
		uintptr(unsafe.Pointer(&events[0])),
		unsafe.Sizeof(events[0]),
	)
	if int(sent) != len(events) {
		return fmt.Errorf("SendInput sent %d of %d events: %w", sent, len(events), err)
	}
	return nil
}

func keyEvent(vk uint16, flags uint32) input {
	return input{
		Type: inputKeyboard,
		Ki:   keybdInput{VK: vk, Flags: flags},
	}
}
