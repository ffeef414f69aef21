package h5store

import (
	"fmt"
	"math"
)

// Matrix is a dense row-major matrix of float64 values.
type Matrix struct {
	rows, cols int
	data       []float64
}

// NewMatrix returns a zero rows×cols matrix. Negative sizes are treated
// as zero.
func NewMatrix(rows, cols int) *Matrix {
	rows, cols = max(rows, 0), max(cols, 0)
	return &Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// NewMatrixFromData wraps a copy of data, which must hold rows*cols
// row-major values.
func NewMatrixFromData(rows, cols int, data []float64) (*Matrix, error) {
	if rows < 0 || cols < 0 || len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d values for %dx%d matrix", ErrDimensionMismatch, len(data), rows, cols)
	}
	return &Matrix{rows: rows, cols: cols, data: append([]float64{}, data...)}, nil
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// At returns the element at row i, column j. It panics when out of range.
func (m *Matrix) At(i, j int) float64 {
	m.check(i, j)
	return m.data[i*m.cols+j]
}

// Set sets the element at row i, column j. It panics when out of range.
func (m *Matrix) Set(i, j int, v float64) {
	m.check(i, j)
	m.data[i*m.cols+j] = v
}

func (m *Matrix) check(i, j int) {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("h5store: index (%d, %d) out of range for %dx%d matrix", i, j, m.rows, m.cols))
	}
}

// Data returns the row-major backing slice. Changes to it are visible in
// the matrix.
func (m *Matrix) Data() []float64 { return m.data }

// Equal reports whether m and o have the same shape and bit-identical
// values. NaNs compare equal to NaNs with the same bits.
func (m *Matrix) Equal(o *Matrix) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i, v := range m.data {
		if math.Float64bits(v) != math.Float64bits(o.data[i]) {
			return false
		}
	}
	return true
}

// ApproxEqual reports whether m and o have the same shape and every pair
// of values differs by at most tol.
func (m *Matrix) ApproxEqual(o *Matrix, tol float64) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i, v := range m.data {
		if math.Abs(v-o.data[i]) > tol {
			return false
		}
	}
	return true
}
