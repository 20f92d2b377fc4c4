//go:build windows

package park

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// WaitOnAddress/WakeByAddressSingle/WakeByAddressAll live in kernel32 but
// aren't wrapped by golang.org/x/sys/windows, so this file binds them the
// same lazy-DLL way that package itself binds rarely-used entry points.
var (
	modkernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procWaitOnAddress       = modkernel32.NewProc("WaitOnAddress")
	procWakeByAddressSingle = modkernel32.NewProc("WakeByAddressSingle")
	procWakeByAddressAll    = modkernel32.NewProc("WakeByAddressAll")
)

const infinite = 0xFFFFFFFF

func waitOnAddress(addr unsafe.Pointer, compare unsafe.Pointer, size uintptr) {
	_, _, _ = procWaitOnAddress.Call(
		uintptr(addr),
		uintptr(compare),
		size,
		infinite,
	)
}

func waitNot32(addr *uint32, expected uint32) {
	waitOnAddress(unsafe.Pointer(addr), unsafe.Pointer(&expected), 4)
}

func wakeOne32(addr *uint32) {
	_, _, _ = procWakeByAddressSingle.Call(uintptr(unsafe.Pointer(addr)))
}

func wakeAll32(addr *uint32) {
	_, _, _ = procWakeByAddressAll.Call(uintptr(unsafe.Pointer(addr)))
}

func waitNot8(addr *uint8, expected uint8) {
	waitOnAddress(unsafe.Pointer(addr), unsafe.Pointer(&expected), 1)
}

func wakeOne8(addr *uint8) {
	_, _, _ = procWakeByAddressSingle.Call(uintptr(unsafe.Pointer(addr)))
}

func wakeAll8(addr *uint8) {
	_, _, _ = procWakeByAddressAll.Call(uintptr(unsafe.Pointer(addr)))
}
