package h5store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThresholds(t *testing.T) {
	var p ThresholdPolicy
	const threshold = 12
	p.SetThreshold(threshold)
	assert.Equal(t, uint64(threshold), p.Threshold())

	assert.False(t, p.ExceedsThreshold(threshold-1), "small data")
	assert.False(t, p.ExceedsThreshold(threshold), "data at threshold limit")
	assert.True(t, p.ExceedsThreshold(threshold+1), "large data")

	numDoubles := threshold / float64Size

	assert.False(t, p.ExceedsThresholdMatrix(NewMatrix(1, numDoubles-1)), "small matrix")
	assert.False(t, p.ExceedsThresholdMatrix(NewMatrix(1, numDoubles)), "matrix at threshold limit")
	assert.True(t, p.ExceedsThresholdMatrix(NewMatrix(1, numDoubles+1)), "large matrix")

	assert.False(t, p.ExceedsThresholdValues(make([]float64, numDoubles-1)), "small vector")
	assert.False(t, p.ExceedsThresholdValues(make([]float64, numDoubles)), "vector at threshold limit")
	assert.True(t, p.ExceedsThresholdValues(make([]float64, numDoubles+1)), "large vector")
}

func TestThresholdZeroValue(t *testing.T) {
	var p ThresholdPolicy

	assert.Zero(t, p.Threshold())
	assert.False(t, p.ExceedsThreshold(0))
	assert.True(t, p.ExceedsThreshold(1))
	assert.False(t, p.ExceedsThresholdMatrix(nil))
	assert.False(t, p.ExceedsThresholdValues(nil))
}

func TestThresholdOnClosedStore(t *testing.T) {
	s := New()
	s.SetThreshold(16)

	assert.False(t, s.IsOpen())
	assert.False(t, s.ExceedsThresholdMatrix(NewMatrix(2, 1)))
	assert.True(t, s.ExceedsThresholdMatrix(NewMatrix(3, 1)))
}

func TestThresholdExactMultipleOfElementSize(t *testing.T) {
	var p ThresholdPolicy
	p.SetThreshold(2 * float64Size)

	tests := []struct {
		name       string
		rows, cols int
		want       bool
	}{
		{"one value", 1, 1, false},
		{"equal to threshold", 1, 2, false},
		{"equal to threshold transposed", 2, 1, false},
		{"one value over", 1, 3, true},
		{"square", 2, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.rows * tt.cols
			assert.Equal(t, tt.want, p.ExceedsThreshold(uint64(n)*float64Size))
			assert.Equal(t, tt.want, p.ExceedsThresholdMatrix(NewMatrix(tt.rows, tt.cols)))
			assert.Equal(t, tt.want, p.ExceedsThresholdValues(make([]float64, n)))
		})
	}
}
