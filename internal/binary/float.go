package binary

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Float64Size is the encoded width of one IEEE 754 double.
const Float64Size = 8

// EncodeFloat64s encodes values as consecutive IEEE 754 doubles.
func EncodeFloat64s(values []float64, order binary.ByteOrder) []byte {
	buf := make([]byte, len(values)*Float64Size)
	for i, v := range values {
		order.PutUint64(buf[i*Float64Size:], math.Float64bits(v))
	}
	return buf
}

// DecodeFloat64s decodes consecutive IEEE 754 doubles.
func DecodeFloat64s(buf []byte, order binary.ByteOrder) ([]float64, error) {
	if len(buf)%Float64Size != 0 {
		return nil, fmt.Errorf("payload of %d bytes is not a whole number of doubles", len(buf))
	}
	values := make([]float64, len(buf)/Float64Size)
	for i := range values {
		values[i] = math.Float64frombits(order.Uint64(buf[i*Float64Size:]))
	}
	return values, nil
}

// ReadFloat64s reads n doubles from the current position.
func (r *Reader) ReadFloat64s(n int) ([]float64, error) {
	buf, err := r.ReadBytes(n * Float64Size)
	if err != nil {
		return nil, err
	}
	return DecodeFloat64s(buf, r.order)
}

// WriteFloat64s writes values at the current position.
func (w *Writer) WriteFloat64s(values []float64) error {
	return w.WriteBytes(EncodeFloat64s(values, w.order))
}
