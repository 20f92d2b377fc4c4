package spinlock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	serialConcurrency = 1
	lowConcurrency    = 2
	mediumConcurrency = 10
	highConcurrency   = 20
)

var workloads = []struct {
	name        string
	concurrency int
}{
	{"Serial", serialConcurrency},
	{"LowConcurrency", lowConcurrency},
	{"MediumConcurrency", mediumConcurrency},
	{"HighConcurrency", highConcurrency},
}

// TestMutexContentionLevels is a table-driven correctness check across the
// same concurrency levels the package's benchmarks sweep: every level must
// total concurrency*increments with no torn increments.
func TestMutexContentionLevels(t *testing.T) {
	const increments = 1000

	for _, w := range workloads {
		w := w
		t.Run(w.name, func(t *testing.T) {
			m := NewMutex(0)

			var wg sync.WaitGroup
			wg.Add(w.concurrency)
			for g := 0; g < w.concurrency; g++ {
				go func() {
					defer wg.Done()
					for i := 0; i < increments; i++ {
						guard := m.Lock()
						*guard.Get()++
						guard.Unlock()
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, w.concurrency*increments, *m.Lock().Get())
		})
	}
}

// TestMutexMutualExclusion runs 8 goroutines x 100 x 100 increments of an
// integer guarded by Mutex; the total must come out to exactly 80,000
// with no torn increments (verify with `go test -race`).
func TestMutexMutualExclusion(t *testing.T) {
	const goroutines = 8
	const outer = 100
	const inner = 100

	m := NewMutex(0)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < outer*inner; i++ {
				guard := m.Lock()
				*guard.Get()++
				guard.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*outer*inner, *m.Lock().Get())
}

func TestMutexSingleHolder(t *testing.T) {
	m := NewMutex(struct{}{})

	guard := m.Lock()

	acquired := make(chan struct{})
	go func() {
		g2 := m.LockWithBudget(0)
		close(acquired)
		g2.Unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("second Lock acquired while first guard still held")
	default:
	}

	guard.Unlock()
	<-acquired
}
