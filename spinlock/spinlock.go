// Copyright 2020 Nathan Taylor (nbtaylor@gmail.com)
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package spinlock implements two lock flavors over a waitable byte/word:
// Mutex, plain mutual exclusion, and RWMutex, many-readers-or-one-writer.
// Both spin-yield for a bounded number of iterations before parking via the
// host OS's address-based wait facility, amortizing syscall cost against
// short-lived contention.
package spinlock

import "github.com/dijkstracula/go-parkwork/watomic"

// DefaultYieldBudget is the nominal number of cooperative spins attempted
// before a lock operation parks.
const DefaultYieldBudget = 1000

const (
	unlocked uint8 = 0
	locked   uint8 = 1
)

// Mutex guards payload with a waitable control byte. There is no fairness
// guarantee: starvation is tolerable here because the lock only ever guards
// a small critical section (a FIFO pop/push, in this module's own use of
// it).
type Mutex[T any] struct {
	payload T
	control watomic.Waitable[uint8]
}

// NewMutex returns a Mutex initialized with value.
func NewMutex[T any](value T) *Mutex[T] {
	m := &Mutex[T]{payload: value}
	m.control.Store(unlocked)
	return m
}

// Guard grants exclusive access to a Mutex's payload for as long as it is
// held. Release with Unlock; Go has no RAII destructor, so every Lock call
// site is expected to `defer g.Unlock()` immediately, matching how
// sync.Mutex itself trains Go code to release on every exit path.
type Guard[T any] struct {
	m *Mutex[T]
}

// Get returns a pointer to the guarded payload.
func (g *Guard[T]) Get() *T { return &g.m.payload }

// Unlock releases the lock: store unlocked (Release) then wake one waiter.
func (g *Guard[T]) Unlock() {
	g.m.control.Store(unlocked)
	g.m.control.WakeOne()
}

// Lock acquires the mutex using DefaultYieldBudget spins before parking.
func (m *Mutex[T]) Lock() *Guard[T] {
	return m.LockWithBudget(DefaultYieldBudget)
}

// LockWithBudget acquires the mutex, spinning up to yieldBudget times
// before parking.
func (m *Mutex[T]) LockWithBudget(yieldBudget int) *Guard[T] {
	m.control.WaitExchange(unlocked, locked, yieldBudget)
	return &Guard[T]{m: m}
}
