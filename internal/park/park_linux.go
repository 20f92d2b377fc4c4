//go:build linux

package park

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Linux backs park on futex(2), using the private (FUTEX_PRIVATE_FLAG)
// wait/wake operations: every Waitable here lives in this process's own
// address space for its whole lifetime, so no process-shared futex handling
// is needed.
const (
	futexPrivateFlag = 128
	futexWait        = 0 | futexPrivateFlag
	futexWake        = 1 | futexPrivateFlag
)

func futex(addr unsafe.Pointer, op int, val uint32) {
	// Errors collapse to spurious-wake semantics: ETIMEDOUT can't happen
	// (no timeout is ever passed), EAGAIN means the value already changed,
	// EINTR means exactly what it says. All three are legitimate reasons
	// for the caller's re-check loop to spin once more.
	_, _, _ = unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(addr),
		uintptr(op),
		uintptr(val),
		0, 0, 0,
	)
}

func waitNot32(addr *uint32, expected uint32) {
	futex(unsafe.Pointer(addr), futexWait, expected)
}

func wakeOne32(addr *uint32) {
	futex(unsafe.Pointer(addr), futexWake, 1)
}

func wakeAll32(addr *uint32) {
	futex(unsafe.Pointer(addr), futexWake, ^uint32(0))
}

// word32 returns the 32-bit-aligned word enclosing an 8-bit cell, so the
// byte can be parked on via the same futex word its enclosing
// Waitable[uint8] allocates.
func word32(addr *uint8) *uint32 {
	return (*uint32)(unsafe.Pointer(addr))
}

func waitNot8(addr *uint8, expected uint8) {
	// Waitable[uint8]'s backing storage is always a full uint32 (see
	// watomic.wrapper), so re-reading the enclosing word and comparing
	// just the low byte is safe: any other byte in that word never
	// changes underneath an 8-bit Waitable.
	waitNot32(word32(addr), uint32(expected))
}

func wakeOne8(addr *uint8) {
	wakeOne32(word32(addr))
}

func wakeAll8(addr *uint8) {
	wakeAll32(word32(addr))
}
