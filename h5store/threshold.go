package h5store

// float64Size is the encoded width of one value.
const float64Size = 8

// ThresholdPolicy decides whether an array is large enough to be stored in
// a container rather than inlined by the caller. The zero value has a
// threshold of 0, so any non-empty array exceeds it.
type ThresholdPolicy struct {
	threshold uint64
}

// SetThreshold sets the byte threshold.
func (p *ThresholdPolicy) SetThreshold(bytes uint64) {
	p.threshold = bytes
}

// Threshold returns the byte threshold.
func (p *ThresholdPolicy) Threshold() uint64 {
	return p.threshold
}

// ExceedsThreshold reports whether byteCount is strictly greater than the
// threshold. A count equal to the threshold does not exceed it.
func (p *ThresholdPolicy) ExceedsThreshold(byteCount uint64) bool {
	return byteCount > p.threshold
}

// ExceedsThresholdMatrix applies ExceedsThreshold to the matrix's encoded
// size, rows*cols*8 bytes. A nil matrix has size 0.
func (p *ThresholdPolicy) ExceedsThresholdMatrix(m *Matrix) bool {
	if m == nil {
		return p.ExceedsThreshold(0)
	}
	return p.ExceedsThreshold(uint64(m.Rows()) * uint64(m.Cols()) * float64Size)
}

// ExceedsThresholdValues applies ExceedsThreshold to len(values)*8 bytes.
func (p *ThresholdPolicy) ExceedsThresholdValues(values []float64) bool {
	return p.ExceedsThreshold(uint64(len(values)) * float64Size)
}
