// Package matrix implements the two matrix-multiplication strategies
// parkbench compares: a straightforward serial algorithm and a
// workgroup-parallel one tiled into fixed-size groups so a worker's unit of
// work is cache-friendly.
package matrix

import (
	"fmt"

	"github.com/dijkstracula/go-parkwork/workgroup"
)

// Matrix is a dense height x width matrix of float64s stored row-major.
type Matrix struct {
	Height, Width int
	data          []float64
}

// Zero returns a height x width matrix of zeroes.
func Zero(height, width int) *Matrix {
	return &Matrix{Height: height, Width: width, data: make([]float64, height*width)}
}

// Sequential returns a matrix filled with 0..9 repeating, a deterministic
// fixture for comparing strategies against each other.
func Sequential(height, width int) *Matrix {
	m := Zero(height, width)
	for i := range m.data {
		m.data[i] = float64(i % 10)
	}
	return m
}

// At returns the value at (y, x).
func (m *Matrix) At(y, x int) float64 { return m.data[y*m.Width+x] }

// Set assigns the value at (y, x).
func (m *Matrix) Set(y, x int, v float64) { m.data[y*m.Width+x] = v }

// MatMulSerial multiplies m by other with the plain triple-nested-loop
// algorithm.
func (m *Matrix) MatMulSerial(other *Matrix) (*Matrix, error) {
	if m.Width != other.Height {
		return nil, fmt.Errorf("matrix: dimension mismatch, %dx%d * %dx%d", m.Height, m.Width, other.Height, other.Width)
	}

	result := Zero(m.Height, other.Width)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < other.Width; x++ {
			var sum float64
			for i := 0; i < m.Width; i++ {
				sum += m.At(y, i) * other.At(i, x)
			}
			result.Set(y, x, sum)
		}
	}
	return result, nil
}

// groupWidth is the tile edge length each job covers.
const groupWidth = 16

type tileJob struct {
	groupY, groupX int
}

// MatMulGrouped multiplies m by other by tiling the result into groupWidth
// x groupWidth blocks and handing each block to g as a separate Job. Work
// distribution is the workgroup FIFO itself: every tile is pushed up front
// and g's workers drain it in whatever order they race for it, since tile
// results are independent and commute.
func (m *Matrix) MatMulGrouped(other *Matrix, g *workgroup.Group) (*Matrix, error) {
	if m.Width != other.Height {
		return nil, fmt.Errorf("matrix: dimension mismatch, %dx%d * %dx%d", m.Height, m.Width, other.Height, other.Width)
	}

	result := Zero(m.Height, other.Width)
	groupRows := groupCount(m.Height)
	groupCols := groupCount(other.Width)
	innerGroups := groupCount(m.Width)

	var pending int
	done := make(chan struct{}, groupRows*groupCols)

	for gy := 0; gy < groupRows; gy++ {
		for gx := 0; gx < groupCols; gx++ {
			t := tileJob{groupY: gy, groupX: gx}
			pending++
			g.PushFunc(func() {
				computeTile(m, other, result, t, innerGroups)
				done <- struct{}{}
			})
		}
	}

	for i := 0; i < pending; i++ {
		<-done
	}
	return result, nil
}

func computeTile(left, right, result *Matrix, t tileJob, innerGroups int) {
	yStart, yEnd := tileBounds(t.groupY, left.Height)
	xStart, xEnd := tileBounds(t.groupX, right.Width)

	for y := yStart; y < yEnd; y++ {
		for x := xStart; x < xEnd; x++ {
			var sum float64
			for i := 0; i < left.Width; i++ {
				sum += left.At(y, i) * right.At(i, x)
			}
			result.Set(y, x, sum)
		}
	}
}

func groupCount(n int) int {
	c := n / groupWidth
	if n%groupWidth > 0 {
		c++
	}
	return c
}

func tileBounds(groupIdx, dimSize int) (start, end int) {
	start = groupIdx * groupWidth
	end = start + groupWidth
	if end > dimSize {
		end = dimSize
	}
	return start, end
}
