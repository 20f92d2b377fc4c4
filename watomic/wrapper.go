// Package watomic implements the atomic-wrapper and waitable-atomic layers:
// a uniform contract over fixed-width atomic integers (8- and 32-bit), and a
// spin-then-park primitive built on top of it and the internal/park shim.
package watomic

import "sync/atomic"

// Word is the set of widths the platform parking shim knows how to address.
type Word interface {
	~uint8 | ~uint32
}

// wrapper is the uniform contract over a fixed-width atomic integer: a
// plain word plus the package-level atomic.Load/Store/CompareAndSwap/Add
// functions, rather than the newer typed atomic.Uint32 struct. The
// plain-word shape is required here, not just stylistic: internal/park
// needs a real *uint32 to park on, and a stdlib atomic.Uint32's internal
// word is not something this package may safely take the address of.
//
// Go's atomic operations carry no explicit memory-ordering parameter the
// way some other languages' atomics do: every sync/atomic op is specified
// by the Go memory model to behave as sequentially consistent, a strict
// superset of any weaker ordering (acquire, release, acquire-release,
// relaxed) a caller might otherwise ask for. Call sites keep the ordering
// reasoning as doc comments instead of a parameter.
type wrapper[V Word] struct {
	// backing is always a full uint32 cell, even for an 8-bit wrapper: the
	// platform parking primitives address word-sized memory, so a
	// uint8 Waitable still needs a stable 32-bit-aligned word to park on.
	// The true value lives in the low byte; the upper three bytes are
	// always zero and never observed by anything outside this package.
	backing uint32
}

func newWrapper[V Word](initial V) *wrapper[V] {
	return &wrapper[V]{backing: uint32(initial)}
}

func (w *wrapper[V]) load() V {
	return V(atomic.LoadUint32(&w.backing))
}

func (w *wrapper[V]) store(v V) {
	atomic.StoreUint32(&w.backing, uint32(v))
}

// compareExchange performs current -> new and reports the value actually
// observed at the CAS point in one return, rather than requiring a second
// Load on failure.
func (w *wrapper[V]) compareExchange(current, new V) (observed V, swapped bool) {
	for {
		old := atomic.LoadUint32(&w.backing)
		if V(old) != current {
			return V(old), false
		}
		if atomic.CompareAndSwapUint32(&w.backing, old, uint32(new)) {
			return current, true
		}
		// Someone else raced us between Load and CompareAndSwap; retry
		// the whole load-compare-swap rather than trusting a stale `old`.
	}
}

// fetchOr, fetchAnd, fetchAdd, fetchSub return the pre-operation value, the
// usual "fetch-and-X" convention. Go's sync/atomic has no FetchOr/FetchAnd
// free functions, so these are CAS-retry loops in the same shape as
// compareExchange.
func (w *wrapper[V]) fetchOr(v V) V {
	for {
		old := atomic.LoadUint32(&w.backing)
		if atomic.CompareAndSwapUint32(&w.backing, old, old|uint32(v)) {
			return V(old)
		}
	}
}

func (w *wrapper[V]) fetchAnd(v V) V {
	for {
		old := atomic.LoadUint32(&w.backing)
		if atomic.CompareAndSwapUint32(&w.backing, old, old&uint32(v)) {
			return V(old)
		}
	}
}

func (w *wrapper[V]) fetchAdd(v V) V {
	for {
		old := atomic.LoadUint32(&w.backing)
		if atomic.CompareAndSwapUint32(&w.backing, old, uint32(V(old)+v)) {
			return V(old)
		}
	}
}

func (w *wrapper[V]) fetchSub(v V) V {
	for {
		old := atomic.LoadUint32(&w.backing)
		if atomic.CompareAndSwapUint32(&w.backing, old, uint32(V(old)-v)) {
			return V(old)
		}
	}
}

// addr returns the address of the backing word, for internal/park to
// park goroutines on. Only watomic.Waitable may call this.
func (w *wrapper[V]) addr() *uint32 {
	return &w.backing
}
