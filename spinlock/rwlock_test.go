package spinlock

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRWMutexReadersWriters verifies readers never observe a torn update
// and the writer eventually makes progress under contention.
func TestRWMutexReadersWriters(t *testing.T) {
	type snapshot struct {
		a, b, c int
	}
	allEqual := func(s snapshot) bool { return s.a == s.b && s.b == s.c }

	rw := NewRWMutex(snapshot{})

	stop := make(chan struct{})
	var torn atomic.Bool

	var readers sync.WaitGroup
	for i := 0; i < 4; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				g := rw.RLock()
				s := *g.Get()
				g.RUnlock()
				if !allEqual(s) {
					torn.Store(true)
				}
			}
		}()
	}

	var writes atomic.Int64
	var writer sync.WaitGroup
	writer.Add(1)
	go func() {
		defer writer.Done()
		for n := 1; n <= 200; n++ {
			g := rw.Lock()
			*g.Get() = snapshot{a: n, b: n, c: n}
			g.Unlock()
			writes.Add(1)
			time.Sleep(time.Microsecond)
		}
	}()

	writer.Wait()
	close(stop)
	readers.Wait()

	assert.False(t, torn.Load(), "reader observed a torn write")
	assert.Equal(t, int64(200), writes.Load())
}

func TestRWMutexExcludesWriterFromReaders(t *testing.T) {
	rw := NewRWMutex(0)

	r1 := rw.RLock()
	r2 := rw.RLock()

	wroteCh := make(chan struct{})
	go func() {
		g := rw.Lock()
		*g.Get() = 1
		g.Unlock()
		close(wroteCh)
	}()

	select {
	case <-wroteCh:
		t.Fatal("writer proceeded while readers held the lock")
	case <-time.After(20 * time.Millisecond):
	}

	r1.RUnlock()

	select {
	case <-wroteCh:
		t.Fatal("writer proceeded while one reader still held the lock")
	case <-time.After(20 * time.Millisecond):
	}

	r2.RUnlock()

	select {
	case <-wroteCh:
	case <-time.After(time.Second):
		t.Fatal("writer never proceeded after all readers released")
	}

	require.Equal(t, 1, *rw.RLock().Get())
}
