package binary

import (
	"encoding/binary"
	"io"
)

// Writer writes fixed and variable-width values to an io.WriterAt.
type Writer struct {
	w          io.WriterAt
	order      binary.ByteOrder
	offsetSize int
	lengthSize int
	pos        int64
}

// NewWriter creates a writer positioned at 0.
func NewWriter(w io.WriterAt, cfg Config) *Writer {
	return &Writer{
		w:          w,
		order:      cfg.ByteOrder,
		offsetSize: cfg.OffsetSize,
		lengthSize: cfg.LengthSize,
	}
}

// At returns a new writer positioned at offset, sharing the destination.
func (w *Writer) At(offset int64) *Writer {
	return &Writer{
		w:          w.w,
		order:      w.order,
		offsetSize: w.offsetSize,
		lengthSize: w.lengthSize,
		pos:        offset,
	}
}

// Config returns the writer's configuration.
func (w *Writer) Config() Config {
	return Config{
		ByteOrder:  w.order,
		OffsetSize: w.offsetSize,
		LengthSize: w.lengthSize,
	}
}

// Pos returns the current write position.
func (w *Writer) Pos() int64 {
	return w.pos
}

// WriteBytes writes data at the current position.
func (w *Writer) WriteBytes(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	n, err := w.w.WriteAt(data, w.pos)
	w.pos += int64(n)
	return err
}

// WriteUint8 writes an unsigned 8-bit integer.
func (w *Writer) WriteUint8(v uint8) error {
	return w.WriteBytes([]byte{v})
}

// WriteUint16 writes an unsigned 16-bit integer.
func (w *Writer) WriteUint16(v uint16) error {
	buf := make([]byte, 2)
	w.order.PutUint16(buf, v)
	return w.WriteBytes(buf)
}

// WriteUint32 writes an unsigned 32-bit integer.
func (w *Writer) WriteUint32(v uint32) error {
	buf := make([]byte, 4)
	w.order.PutUint32(buf, v)
	return w.WriteBytes(buf)
}

// WriteUint64 writes an unsigned 64-bit integer.
func (w *Writer) WriteUint64(v uint64) error {
	buf := make([]byte, 8)
	w.order.PutUint64(buf, v)
	return w.WriteBytes(buf)
}

// WriteUintN writes v as an n-byte unsigned integer.
func (w *Writer) WriteUintN(v uint64, n int) error {
	buf := make([]byte, n)
	switch n {
	case 1:
		buf[0] = uint8(v)
	case 2:
		w.order.PutUint16(buf, uint16(v))
	case 4:
		w.order.PutUint32(buf, uint32(v))
	case 8:
		w.order.PutUint64(buf, v)
	default:
		for i := 0; i < n; i++ {
			buf[i] = byte(v >> (8 * i))
		}
	}
	return w.WriteBytes(buf)
}

// WriteOffset writes a file address using the configured offset width.
func (w *Writer) WriteOffset(v uint64) error {
	return w.WriteUintN(v, w.offsetSize)
}

// WriteLength writes a length using the configured length width.
func (w *Writer) WriteLength(v uint64) error {
	return w.WriteUintN(v, w.lengthSize)
}

// UndefinedOffset returns the all-ones "undefined address" for this width.
func (w *Writer) UndefinedOffset() uint64 {
	return undefinedValue(w.offsetSize)
}

// WriteUndefinedOffset writes the undefined address sentinel.
func (w *Writer) WriteUndefinedOffset() error {
	return w.WriteOffset(w.UndefinedOffset())
}

// WriteZeros writes n zero bytes.
func (w *Writer) WriteZeros(n int) error {
	if n <= 0 {
		return nil
	}
	return w.WriteBytes(make([]byte, n))
}

// OffsetSize returns the configured offset width in bytes.
func (w *Writer) OffsetSize() int {
	return w.offsetSize
}

// LengthSize returns the configured length width in bytes.
func (w *Writer) LengthSize() int {
	return w.lengthSize
}

// ByteOrder returns the configured byte order.
func (w *Writer) ByteOrder() binary.ByteOrder {
	return w.order
}

// Buffer is a growable in-memory io.WriterAt and io.ReaderAt.
// Headers are assembled in a Buffer so their checksum can be computed
// before they reach the file.
type Buffer struct {
	buf []byte
}

// NewBuffer returns a buffer with capacity for size bytes.
func NewBuffer(size int) *Buffer {
	return &Buffer{buf: make([]byte, 0, size)}
}

// NewBufferFrom wraps existing bytes; writes past the end grow a copy.
func NewBufferFrom(data []byte) *Buffer {
	return &Buffer{buf: data}
}

// WriteAt implements io.WriterAt, growing the buffer as needed.
func (b *Buffer) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, io.ErrShortWrite
	}
	end := int(off) + len(p)
	if end > len(b.buf) {
		if end > cap(b.buf) {
			grown := make([]byte, end, 2*end)
			copy(grown, b.buf)
			b.buf = grown
		} else {
			b.buf = b.buf[:end]
		}
	}
	copy(b.buf[off:], p)
	return len(p), nil
}

// ReadAt implements io.ReaderAt.
func (b *Buffer) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(b.buf)) {
		return 0, io.EOF
	}
	n := copy(p, b.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Bytes returns the buffered bytes.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int {
	return len(b.buf)
}
