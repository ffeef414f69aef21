package message

import (
	"encoding/binary"
	"fmt"

	binpkg "github.com/robert-malhotra/go-h5store/internal/binary"
)

// LayoutClass is the storage layout of a dataset.
type LayoutClass uint8

const (
	LayoutCompact    LayoutClass = 0 // Data stored in the object header
	LayoutContiguous LayoutClass = 1 // Data in a single contiguous block
	LayoutChunked    LayoutClass = 2 // Data in indexed chunks
)

// DataLayout locates a dataset's raw data (type 0x0008).
type DataLayout struct {
	Version uint8
	Class   LayoutClass

	// Contiguous
	Address uint64
	Size    uint64

	// Compact
	CompactData []byte
}

func (m *DataLayout) Type() Type { return TypeDataLayout }

// NewContiguousLayout returns a version 3 contiguous layout.
func NewContiguousLayout(address, size uint64) *DataLayout {
	return &DataLayout{Version: 3, Class: LayoutContiguous, Address: address, Size: size}
}

/*
Version 3 layout:
Byte 0: Version (3)
Byte 1: Layout class
Compact:    size (2 bytes), raw data
Contiguous: address (O bytes), size (L bytes)
*/
func parseDataLayout(data []byte, r *binpkg.Reader) (*DataLayout, error) {
	if len(data) < 2 {
		return nil, truncated("data layout")
	}

	m := &DataLayout{Version: data[0], Class: LayoutClass(data[1])}
	if m.Version < 3 {
		return nil, fmt.Errorf("%w: data layout version %d", ErrMalformed, m.Version)
	}

	switch m.Class {
	case LayoutCompact:
		if len(data) < 4 {
			return nil, truncated("compact layout size")
		}
		n := int(binary.LittleEndian.Uint16(data[2:4]))
		if 4+n > len(data) {
			return nil, truncated("compact layout data")
		}
		m.CompactData = data[4 : 4+n]
	case LayoutContiguous:
		o, l := r.OffsetSize(), r.LengthSize()
		if len(data) < 2+o+l {
			return nil, truncated("contiguous layout")
		}
		m.Address = binpkg.DecodeUint(data[2:], o, r.ByteOrder())
		m.Size = binpkg.DecodeUint(data[2+o:], l, r.ByteOrder())
	}
	return m, nil
}

// Serialize writes a version 3 compact or contiguous layout.
func (m *DataLayout) Serialize(w *binpkg.Writer) error {
	if err := w.WriteUint8(3); err != nil {
		return err
	}
	if err := w.WriteUint8(uint8(m.Class)); err != nil {
		return err
	}

	switch m.Class {
	case LayoutCompact:
		if err := w.WriteUint16(uint16(len(m.CompactData))); err != nil {
			return err
		}
		return w.WriteBytes(m.CompactData)
	case LayoutContiguous:
		if err := w.WriteOffset(m.Address); err != nil {
			return err
		}
		return w.WriteLength(m.Size)
	default:
		return fmt.Errorf("writing layout class %d is not supported", m.Class)
	}
}

// SerializedSize returns the encoded body size.
func (m *DataLayout) SerializedSize(w *binpkg.Writer) int {
	switch m.Class {
	case LayoutCompact:
		return 4 + len(m.CompactData)
	case LayoutContiguous:
		return 2 + w.OffsetSize() + w.LengthSize()
	default:
		return 2
	}
}
