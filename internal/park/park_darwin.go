//go:build darwin

package park

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// macOS has no public futex equivalent; libdispatch and os_unfair_lock are
// themselves built on the private __ulock_wait/__ulock_wake syscalls. This
// file reaches those directly, the same way the original Rust sources did
// via raw FFI. Best-effort: Apple can and does change these numbers across
// releases, so every failure is treated as a spurious wake, never an error.
const (
	sysUlockWait = 0x2000000 + 515
	sysUlockWake = 0x2000000 + 516

	ulockOpUserspaceMutex = 1
)

func ulockWait(addr unsafe.Pointer, value uint64) {
	_, _, _ = unix.Syscall6(sysUlockWait, ulockOpUserspaceMutex, uintptr(addr), uintptr(value), 0, 0, 0)
}

func ulockWake(addr unsafe.Pointer, all bool) {
	const wakeAllFlag = 0x100
	op := uintptr(ulockOpUserspaceMutex)
	if all {
		op |= wakeAllFlag
	}
	_, _, _ = unix.Syscall6(sysUlockWake, op, uintptr(addr), 0, 0, 0, 0)
}

func waitNot32(addr *uint32, expected uint32) {
	ulockWait(unsafe.Pointer(addr), uint64(expected))
}

func wakeOne32(addr *uint32) {
	ulockWake(unsafe.Pointer(addr), false)
}

func wakeAll32(addr *uint32) {
	ulockWake(unsafe.Pointer(addr), true)
}

func word32(addr *uint8) *uint32 {
	return (*uint32)(unsafe.Pointer(addr))
}

func waitNot8(addr *uint8, expected uint8) {
	waitNot32(word32(addr), uint32(expected))
}

func wakeOne8(addr *uint8) {
	wakeOne32(word32(addr))
}

func wakeAll8(addr *uint8) {
	wakeAll32(word32(addr))
}
