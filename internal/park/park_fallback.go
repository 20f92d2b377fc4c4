//go:build !linux && !darwin && !windows && !freebsd

package park

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

// park_fallback emulates address-based parking entirely in userspace for any
// GOOS without a native backend above. The design is a bucketed wait table:
// the address hashes into one of numBuckets buckets, each bucket a
// sentinel-rooted doubly linked list of waiter nodes guarded by its own
// mutex. Wait re-checks the expected value under the bucket lock before
// linking itself in, so a concurrent Store-then-Wake can never be missed
// between the caller's last load and the park.
const numBuckets = 4096

type waitNode struct {
	next, prev *waitNode
	addr       unsafe.Pointer
	mu         sync.Mutex
	cond       *sync.Cond
	signalled  bool
}

type bucket struct {
	mu    sync.Mutex
	nodes *waitNode // sentinel; nodes.next/.prev form the ring
}

var buckets [numBuckets]bucket

func init() {
	for i := range buckets {
		sentinel := &waitNode{}
		sentinel.next, sentinel.prev = sentinel, sentinel
		buckets[i].nodes = sentinel
	}
}

func addrHash(addr unsafe.Pointer) uint64 {
	v := uint64(uintptr(addr))
	v = (^v) + (v << 21)
	v ^= v >> 24
	v += (v << 3) + (v << 8)
	v ^= v >> 14
	v += (v << 2) + (v << 4)
	v ^= v >> 28
	v += v << 31
	return v
}

func bucketFor(addr unsafe.Pointer) *bucket {
	return &buckets[addrHash(addr)%numBuckets]
}

func wait(addr unsafe.Pointer, loadEquals func() bool) {
	b := bucketFor(addr)

	node := &waitNode{addr: addr}
	node.cond = sync.NewCond(&node.mu)

	b.mu.Lock()
	if !loadEquals() {
		b.mu.Unlock()
		return
	}
	node.prev = b.nodes.prev
	b.nodes.prev.next = node
	b.nodes.prev = node
	node.next = b.nodes
	b.mu.Unlock()

	node.mu.Lock()
	for !node.signalled {
		node.cond.Wait()
	}
	node.mu.Unlock()
}

func wake(addr unsafe.Pointer, count int) {
	b := bucketFor(addr)

	b.mu.Lock()
	sentinel := b.nodes
	woken := 0
	for iter := sentinel.next; woken < count && iter != sentinel; {
		next := iter.next
		if iter.addr == addr {
			iter.prev.next = iter.next
			iter.next.prev = iter.prev

			iter.mu.Lock()
			iter.signalled = true
			iter.cond.Signal()
			iter.mu.Unlock()

			woken++
		}
		iter = next
	}
	b.mu.Unlock()
}

func waitNot32(addr *uint32, expected uint32) {
	p := unsafe.Pointer(addr)
	// Re-check under the bucket lock with an atomic load: every mutator of
	// *addr (watomic/wrapper.go) writes it exclusively through sync/atomic,
	// so a plain read here would race with those writes.
	wait(p, func() bool { return atomic.LoadUint32(addr) == expected })
}

func wakeOne32(addr *uint32) { wake(unsafe.Pointer(addr), 1) }
func wakeAll32(addr *uint32) { wake(unsafe.Pointer(addr), int(^uint(0)>>1)) }

// word32 returns the 32-bit-aligned word enclosing an 8-bit cell: a
// Waitable[uint8]'s backing storage is always a full uint32 (see
// watomic.wrapper), so the byte can only be loaded atomically by loading
// its enclosing word.
func word32(addr *uint8) *uint32 {
	return (*uint32)(unsafe.Pointer(addr))
}

func waitNot8(addr *uint8, expected uint8) {
	p := unsafe.Pointer(addr)
	w := word32(addr)
	wait(p, func() bool { return uint8(atomic.LoadUint32(w)) == expected })
}

func wakeOne8(addr *uint8) { wake(unsafe.Pointer(addr), 1) }
func wakeAll8(addr *uint8) { wake(unsafe.Pointer(addr), int(^uint(0)>>1)) }
