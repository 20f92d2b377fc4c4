// Command parkbench is a reference workload exercising workgroup.Group: a
// matrix-multiply benchmark comparing the serial and workgroup-parallel
// strategies, and a throughput benchmark in which a configurable number of
// goroutines, released together by a waitable start gate, each increment a
// spinlock-guarded counter a configurable number of times. It is a
// consumer of the library packages, never imported by them.
package main

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/go-cmp/cmp"
	flag "github.com/spf13/pflag"

	"github.com/dijkstracula/go-parkwork/cmd/parkbench/internal/matrix"
	"github.com/dijkstracula/go-parkwork/spinlock"
	"github.com/dijkstracula/go-parkwork/watomic"
	"github.com/dijkstracula/go-parkwork/workgroup"
)

func main() {
	var (
		workers    = flag.Int("workers", 8, "worker goroutines for both benchmarks")
		jobs       = flag.Int("jobs", 10000, "increments per worker in the throughput benchmark")
		matrixSize = flag.Int("matrix-size", 64, "height/width of the square matrices multiplied")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	runThroughputBenchmark(logger, *workers, *jobs)
	runMatrixBenchmark(logger, *matrixSize, *workers)
}

// runThroughputBenchmark is the Go rendition of benchmark.rs: workers park
// on a waitable start gate, then race to increment a spinlock-guarded
// counter jobs times each.
func runThroughputBenchmark(logger *slog.Logger, workers, jobs int) {
	counter := spinlock.NewMutex(0)
	gate := watomic.NewWaitable[uint8](0)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			gate.WaitNot(0, 0)
			for j := 0; j < jobs; j++ {
				g := counter.Lock()
				*g.Get()++
				g.Unlock()
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	start := time.Now()
	gate.Store(1)
	gate.WakeAll()
	wg.Wait()
	elapsed := time.Since(start)

	g := counter.Lock()
	total := *g.Get()
	g.Unlock()

	logger.Info("throughput benchmark complete",
		"workers", workers,
		"jobs_per_worker", jobs,
		"total", total,
		"elapsed", elapsed,
	)
}

// runMatrixBenchmark computes the same matrix product serially and via a
// workgroup.Group, reports both durations, and cross-checks the results
// with go-cmp under an approximate float comparer (tolerance 1e-6). Both
// strategies accumulate each entry over the same index order, so their
// results are in fact identical.
func runMatrixBenchmark(logger *slog.Logger, size, workers int) {
	left := matrix.Sequential(size, size)
	right := matrix.Sequential(size, size)

	serialStart := time.Now()
	serialResult, err := left.MatMulSerial(right)
	if err != nil {
		logger.Error("serial matmul failed", "error", err)
		return
	}
	serialElapsed := time.Since(serialStart)

	g := workgroup.New(workers)
	defer g.Exit()

	groupedStart := time.Now()
	groupedResult, err := left.MatMulGrouped(right, g)
	if err != nil {
		logger.Error("grouped matmul failed", "error", err)
		return
	}
	groupedElapsed := time.Since(groupedStart)

	diff := cmp.Diff(flatten(serialResult, size), flatten(groupedResult, size), approxFloats(1e-6))
	if diff != "" {
		logger.Error("serial and grouped matmul results diverge", "diff", diff)
		return
	}

	logger.Info("matrix benchmark complete",
		"matrix_size", size,
		"workers", workers,
		"serial_elapsed", serialElapsed,
		"grouped_elapsed", groupedElapsed,
	)
}

func flatten(m *matrix.Matrix, size int) []float64 {
	out := make([]float64, 0, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			out = append(out, m.At(y, x))
		}
	}
	return out
}

func approxFloats(epsilon float64) cmp.Option {
	return cmp.Comparer(func(a, b float64) bool {
		d := a - b
		if d < 0 {
			d = -d
		}
		return d <= epsilon
	})
}
