package watomic

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitableRoundTrip(t *testing.T) {
	w := NewWaitable[uint32](0)
	w.Store(7)
	assert.Equal(t, uint32(7), w.Load())

	observed, swapped := w.CompareExchange(7, 42)
	assert.True(t, swapped)
	assert.Equal(t, uint32(7), observed)
	assert.Equal(t, uint32(42), w.Load())

	observed, swapped = w.CompareExchange(7, 99)
	assert.False(t, swapped)
	assert.Equal(t, uint32(42), observed, "failed CAS reports the value observed at the CAS point")
}

func TestWaitableFetchOps(t *testing.T) {
	cases := []struct {
		name    string
		initial uint32
		op      func(w *Waitable[uint32]) uint32
		wantOld uint32
		wantNew uint32
	}{
		{"FetchOr", 0b0100, func(w *Waitable[uint32]) uint32 { return w.FetchOr(0b0001) }, 0b0100, 0b0101},
		{"FetchAnd", 0b0101, func(w *Waitable[uint32]) uint32 { return w.FetchAnd(0b0001) }, 0b0101, 0b0001},
		{"FetchAdd", 1, func(w *Waitable[uint32]) uint32 { return w.FetchAdd(4) }, 1, 5},
		{"FetchSub", 5, func(w *Waitable[uint32]) uint32 { return w.FetchSub(2) }, 5, 3},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			w := NewWaitable[uint32](tc.initial)
			assert.Equal(t, tc.wantOld, tc.op(w))
			assert.Equal(t, tc.wantNew, w.Load())
		})
	}
}

func TestWaitableU8(t *testing.T) {
	w := NewWaitable[uint8](0)
	w.Store(1)
	assert.Equal(t, uint8(1), w.Load())

	observed, swapped := w.CompareExchange(1, 2)
	require.True(t, swapped)
	assert.Equal(t, uint8(1), observed)
}

// TestWaitableWake verifies that a waiter parked via WaitNot returns
// promptly once a second goroutine stores a new value and wakes it, rather
// than only resuming after an eventual spin-budget timeout.
func TestWaitableWake(t *testing.T) {
	w := NewWaitable[uint32](0)

	done := make(chan uint32, 1)
	go func() {
		done <- w.WaitNot(0, 0)
	}()

	time.Sleep(20 * time.Millisecond)
	w.Store(1)
	w.WakeOne()

	select {
	case v := <-done:
		assert.Equal(t, uint32(1), v)
	case <-time.After(time.Second):
		t.Fatal("WaitNot did not return after WakeOne")
	}
}

func TestWaitUntil(t *testing.T) {
	w := NewWaitable[uint32](0)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		got := w.WaitUntil(func(v uint32) bool { return v >= 10 }, 0)
		assert.GreaterOrEqual(t, got, uint32(10))
	}()

	for i := uint32(1); i <= 10; i++ {
		w.Store(i)
		w.WakeAll()
		time.Sleep(time.Millisecond)
	}
	wg.Wait()
}

func TestWaitExchange(t *testing.T) {
	w := NewWaitable[uint8](0)

	const goroutines = 8
	const perGoroutine = 500

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				w.WaitExchange(0, 1, 16)
				w.Store(0)
				w.WakeOne()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint8(0), w.Load())
}

// ExampleWaitable_WaitNot demonstrates the minimal wake pattern: one
// goroutine parks with WaitNot, another stores a new value and wakes it.
func ExampleWaitable_WaitNot() {
	w := NewWaitable[uint32](0)

	woken := make(chan struct{})
	go func() {
		w.WaitNot(0, 0)
		close(woken)
	}()

	w.Store(1)
	w.WakeOne()
	<-woken
}
