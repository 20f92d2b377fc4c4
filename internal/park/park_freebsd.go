//go:build freebsd

package park

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// FreeBSD exposes the futex equivalent through _umtx_op(2).
const (
	umtxOpWait = 2 // UMTX_OP_WAIT
	umtxOpWake = 3 // UMTX_OP_WAKE
)

func umtxOp(addr unsafe.Pointer, op int, val uint32) {
	_, _, _ = unix.Syscall6(
		unix.SYS__UMTX_OP,
		uintptr(addr),
		uintptr(op),
		uintptr(val),
		0, 0, 0,
	)
}

func waitNot32(addr *uint32, expected uint32) {
	umtxOp(unsafe.Pointer(addr), umtxOpWait, expected)
}

func wakeOne32(addr *uint32) {
	umtxOp(unsafe.Pointer(addr), umtxOpWake, 1)
}

func wakeAll32(addr *uint32) {
	umtxOp(unsafe.Pointer(addr), umtxOpWake, ^uint32(0))
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
