// Package binary provides the positioned little-endian codec used to read and
// write container metadata and dataset payloads.
package binary

import (
	"encoding/binary"
	"errors"
	"io"
)

// ErrInvalidSize is returned when an offset or length width is not 2, 4 or 8.
var ErrInvalidSize = errors.New("invalid offset/length size: must be 2, 4, or 8")

// Config describes the byte order and the widths of addresses and lengths.
// It is taken from the superblock when reading an existing container.
type Config struct {
	ByteOrder  binary.ByteOrder
	OffsetSize int // 2, 4, or 8 bytes
	LengthSize int // 2, 4, or 8 bytes
}

// DefaultConfig returns little-endian byte order with 8-byte offsets and lengths.
func DefaultConfig() Config {
	return Config{
		ByteOrder:  binary.LittleEndian,
		OffsetSize: 8,
		LengthSize: 8,
	}
}

// Validate checks the offset and length widths.
func (c Config) Validate() error {
	if !validWidth(c.OffsetSize) || !validWidth(c.LengthSize) {
		return ErrInvalidSize
	}
	return nil
}

func validWidth(n int) bool {
	return n == 2 || n == 4 || n == 8
}

// Reader reads fixed and variable-width values from an io.ReaderAt.
// Each Reader keeps its own position; At derives independent cursors.
type Reader struct {
	r          io.ReaderAt
	order      binary.ByteOrder
	offsetSize int
	lengthSize int
	pos        int64
}

// NewReader creates a reader positioned at 0.
func NewReader(r io.ReaderAt, cfg Config) *Reader {
	return &Reader{
		r:          r,
		order:      cfg.ByteOrder,
		offsetSize: cfg.OffsetSize,
		lengthSize: cfg.LengthSize,
	}
}

// At returns a new reader positioned at offset, sharing the source.
func (r *Reader) At(offset int64) *Reader {
	return &Reader{
		r:          r.r,
		order:      r.order,
		offsetSize: r.offsetSize,
		lengthSize: r.lengthSize,
		pos:        offset,
	}
}

// Pos returns the current read position.
func (r *Reader) Pos() int64 {
	return r.pos
}

// ReadBytes reads exactly n bytes from the current position.
// A short read is reported as io.ErrUnexpectedEOF.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	read, err := r.r.ReadAt(buf, r.pos)
	if read < n {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	r.pos += int64(n)
	return buf, nil
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) {
	buf, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadUint16 reads an unsigned 16-bit integer.
func (r *Reader) ReadUint16() (uint16, error) {
	buf, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(buf), nil
}

// ReadUint32 reads an unsigned 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(buf), nil
}

// ReadUint64 reads an unsigned 64-bit integer.
func (r *Reader) ReadUint64() (uint64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return r.order.Uint64(buf), nil
}

// ReadUintN reads an unsigned integer of n bytes.
func (r *Reader) ReadUintN(n int) (uint64, error) {
	buf, err := r.ReadBytes(n)
	if err != nil {
		return 0, err
	}
	return DecodeUint(buf, n, r.order), nil
}

// ReadOffset reads a file address using the configured offset width.
func (r *Reader) ReadOffset() (uint64, error) {
	return r.ReadUintN(r.offsetSize)
}

// ReadLength reads a length using the configured length width.
func (r *Reader) ReadLength() (uint64, error) {
	return r.ReadUintN(r.lengthSize)
}

// IsUndefinedOffset reports whether offset is the all-ones "undefined address".
func (r *Reader) IsUndefinedOffset(offset uint64) bool {
	return offset == undefinedValue(r.offsetSize)
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int64) {
	r.pos += n
}

// Peek reads n bytes without advancing the position.
func (r *Reader) Peek(n int) ([]byte, error) {
	pos := r.pos
	buf, err := r.ReadBytes(n)
	r.pos = pos
	return buf, err
}

// OffsetSize returns the configured offset width in bytes.
func (r *Reader) OffsetSize() int {
	return r.offsetSize
}

// LengthSize returns the configured length width in bytes.
func (r *Reader) LengthSize() int {
	return r.lengthSize
}

// ByteOrder returns the configured byte order.
func (r *Reader) ByteOrder() binary.ByteOrder {
	return r.order
}

// DecodeUint decodes a size-byte unsigned integer from buf.
func DecodeUint(buf []byte, size int, order binary.ByteOrder) uint64 {
	switch size {
	case 1:
		return uint64(buf[0])
	case 2:
		return uint64(order.Uint16(buf))
	case 4:
		return uint64(order.Uint32(buf))
	case 8:
		return order.Uint64(buf)
	default:
		var val uint64
		for i := size - 1; i >= 0; i-- {
			val = (val << 8) | uint64(buf[i])
		}
		return val
	}
}

func undefinedValue(size int) uint64 {
	if size >= 8 {
		return ^uint64(0)
	}
	return uint64(1)<<(uint(size)*8) - 1
}
