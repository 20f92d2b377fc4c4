package watomic

import (
	"runtime"
	"unsafe"

	"github.com/dijkstracula/go-parkwork/internal/park"
)

// Waitable wraps an atomic integer of width V (uint8 or uint32) with
// address-keyed park/unpark operations. It adds no state of its own beyond
// the wrapper: "waitability" is a behavior of its methods, which use the
// address of the wrapped word as the park key.
//
// Waitable must not be copied after first use: its address is the park key,
// so copying it (and letting waiters park on the old address while new
// operations hit the copy) would silently break every invariant this type
// exists to provide. Callers that need shared ownership share a *Waitable.
type Waitable[V Word] struct {
	_ noCopy

	w wrapper[V]
}

type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// NewWaitable constructs a Waitable seeded with initial.
func NewWaitable[V Word](initial V) *Waitable[V] {
	return &Waitable[V]{w: *newWrapper(initial)}
}

// Load reads the current value.
func (wa *Waitable[V]) Load() V { return wa.w.load() }

// Store writes v unconditionally. Does NOT wake waiters; callers that
// publish a new state waiters might care about must follow Store with
// WakeOne or WakeAll themselves (the job queue and lock guards in this
// module always do).
func (wa *Waitable[V]) Store(v V) { wa.w.store(v) }

// CompareExchange attempts current -> new, returning the value actually
// observed at the CAS point and whether the swap happened.
func (wa *Waitable[V]) CompareExchange(current, new V) (observed V, swapped bool) {
	return wa.w.compareExchange(current, new)
}

func (wa *Waitable[V]) FetchOr(v V) V  { return wa.w.fetchOr(v) }
func (wa *Waitable[V]) FetchAnd(v V) V { return wa.w.fetchAnd(v) }
func (wa *Waitable[V]) FetchAdd(v V) V { return wa.w.fetchAdd(v) }
func (wa *Waitable[V]) FetchSub(v V) V { return wa.w.fetchSub(v) }

// byteAddr reinterprets the wrapper's backing word as a *uint8 pointing at
// its low-order byte, the byte an 8-bit Waitable's value actually lives in.
// This assumes a little-endian host (true of every GOARCH this module
// targets: amd64, arm64, 386, arm); a big-endian port would need to park on
// the high-order byte instead.
func (wa *Waitable[V]) byteAddr() *uint8 {
	return (*uint8)(unsafe.Pointer(wa.w.addr()))
}

func (wa *Waitable[V]) wake(all bool) {
	var zero V
	switch any(zero).(type) {
	case uint8:
		if all {
			park.WakeAll8(wa.byteAddr())
		} else {
			park.WakeOne8(wa.byteAddr())
		}
	default:
		if all {
			park.WakeAll32(wa.w.addr())
		} else {
			park.WakeOne32(wa.w.addr())
		}
	}
}

// WakeOne wakes at most one goroutine parked on this Waitable's address.
func (wa *Waitable[V]) WakeOne() { wa.wake(false) }

// WakeAll wakes every goroutine parked on this Waitable's address.
func (wa *Waitable[V]) WakeAll() { wa.wake(true) }

func (wa *Waitable[V]) parkWaitNot(expectedNot V) {
	switch v := any(expectedNot).(type) {
	case uint8:
		park.WaitNot8(wa.byteAddr(), v)
	default:
		park.WaitNot32(wa.w.addr(), uint32(expectedNot))
	}
}

// WaitNot returns as soon as the stored value differs from expectedNot.
// Implementation: spin-yield the scheduler for up to yieldBudget iterations
// while the observed value still equals expectedNot, then fall through to
// the OS park primitive. On return, the value is reloaded fresh (the park
// call itself may have woken spuriously).
func (wa *Waitable[V]) WaitNot(expectedNot V, yieldBudget int) V {
	for loopCount := 0; ; {
		v := wa.Load()
		if v != expectedNot {
			return v
		}

		if loopCount < yieldBudget {
			runtime.Gosched()
			loopCount++
			continue
		}

		wa.parkWaitNot(expectedNot)
		return wa.Load()
	}
}

// WaitUntil blocks until predicate holds for the current value, then
// returns that value. predicate is always called with a snapshot value, so
// it must be pure (no aliasing back into this Waitable).
func (wa *Waitable[V]) WaitUntil(predicate func(V) bool, yieldBudget int) V {
	curr := wa.Load()
	for !predicate(curr) {
		curr = wa.WaitNot(curr, yieldBudget)
	}
	return curr
}

// WaitExchange retries current -> new until it succeeds, parking (via
// WaitUntil) between attempts rather than busy-looping a bare CAS. This is
// the building block every lock in package spinlock is built from.
func (wa *Waitable[V]) WaitExchange(current, new V, yieldBudget int) {
	for {
		if _, swapped := wa.CompareExchange(current, new); swapped {
			return
		}
		wa.WaitUntil(func(v V) bool { return v == current }, yieldBudget)
	}
}
