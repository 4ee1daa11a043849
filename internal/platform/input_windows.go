//go:build windows

package platform

import (
	"fmt"
	"time"
	"unsafe"
)

var (
	procSendInput        = user32.NewProc("SendInput")
	procGetAsyncKeyState = user32.NewProc("GetAsyncKeyState")
)

const (
	inputKeyboard  = 1
	keyeventfKeyUp = 0x0002

	vkShift   = 0x10
	vkControl = 0x11
	vkMenu    = 0x12
	vkLWin    = 0x5B
	vkRWin    = 0x5C
	vkV       = 0x56
)

type keyboardInput struct {
	WVK         uint16
	WScan       uint16
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

// input matches the 64-bit INPUT layout; the pads cover the union with
// MOUSEINPUT.
type input struct {
	Type  uint32
	_pad1 uint32
	Ki    keyboardInput
	_pad2 uint64
}

func sendInputs(ins []input) error {
	if len(ins) == 0 {
		return nil
	}
	ret, _, err := procSendInput.Call(
		uintptr(len(ins)),
		uintptr(unsafe.Pointer(&ins[0])),
		unsafe.Sizeof(input{}),
	)
	if ret == 0 {
		return fmt.Errorf("failed to send input: %w", err)
	}
	return nil
}

func keyEvent(vk uint16, up bool) input {
	var flags uint32
	if up {
		flags = keyeventfKeyUp
	}
	return input{
		Type: inputKeyboard,
		Ki:   keyboardInput{WVK: vk, DwFlags: flags},
	}
}

// keyHeld polls the async key state; the high bit means physically down.
func keyHeld(vk uint16) bool {
	r, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	return uint16(r)&0x8000 != 0
}

// ScrubModifiers releases Alt, Shift and both Win keys if the user is
// still holding them from the shortcut that invoked us. A held modifier
// would turn the upcoming Ctrl+V into a different chord. Each key gets
// up to 20 release attempts at 5 ms spacing.
func ScrubModifiers() {
	for _, vk := range []uint16{vkMenu, vkShift, vkLWin, vkRWin} {
		for attempt := 0; attempt < 20 && keyHeld(vk); attempt++ {
			_ = sendInputs([]input{keyEvent(vk, true)})
			time.Sleep(5 * time.Millisecond)
		}
	}
}

// SendCtrlV injects the paste chord. When the user already holds Ctrl
// physically, only V is sent and their Ctrl is left alone.
func SendCtrlV() error {
	ctrlHeld := keyHeld(vkControl)

	var seq []input
	if !ctrlHeld {
		seq = append(seq, keyEvent(vkControl, false))
	}
	seq = append(seq, keyEvent(vkV, false), keyEvent(vkV, true))
	if !ctrlHeld {
		seq = append(seq, keyEvent(vkControl, true))
	}
	return sendInputs(seq)
}
