package message

import (
	"encoding/binary"
	"fmt"

	binpkg "github.com/robert-malhotra/go-h5store/internal/binary"
)

// DatatypeClass is the class of a datatype.
type DatatypeClass uint8

const (
	ClassFixedPoint DatatypeClass = 0
	ClassFloatPoint DatatypeClass = 1
	ClassString     DatatypeClass = 3
	ClassCompound   DatatypeClass = 6
)

// ByteOrder is the byte order bit of numeric datatypes.
type ByteOrder uint8

const (
	OrderLE ByteOrder = 0
	OrderBE ByteOrder = 1
)

// FloatProperties are the IEEE layout fields of a floating-point datatype.
type FloatProperties struct {
	BitOffset        uint16
	BitPrecision     uint16
	ExponentLocation uint8
	ExponentSize     uint8
	MantissaLocation uint8
	MantissaSize     uint8
	ExponentBias     uint32
}

// Datatype describes the element type of a dataset (type 0x0003).
type Datatype struct {
	Version   uint8
	Class     DatatypeClass
	ClassBits uint32 // 24-bit class bit field
	Size      uint32
	Float     FloatProperties
}

func (m *Datatype) Type() Type { return TypeDatatype }

// ByteOrder returns the order encoded in bit 0 of the class bit field.
func (m *Datatype) ByteOrder() ByteOrder {
	return ByteOrder(m.ClassBits & 0x01)
}

// IsFloat64LE reports whether this is a little-endian IEEE double.
func (m *Datatype) IsFloat64LE() bool {
	return m.Class == ClassFloatPoint && m.Size == 8 && m.ByteOrder() == OrderLE
}

// String describes the datatype for error messages.
func (m *Datatype) String() string {
	return fmt.Sprintf("class %d size %d order %d", m.Class, m.Size, m.ByteOrder())
}

// NewFloat64Datatype returns the little-endian IEEE 754 double datatype.
//
// Class bit field: byte order LE (bit 0 = 0), mantissa normalization
// "implied" (bits 4-5 = 2), sign bit at position 63 (bits 8-15).
func NewFloat64Datatype() *Datatype {
	return &Datatype{
		Version:   1,
		Class:     ClassFloatPoint,
		ClassBits: 0x20 | 63<<8,
		Size:      8,
		Float: FloatProperties{
			BitPrecision:     64,
			ExponentLocation: 52,
			ExponentSize:     11,
			MantissaSize:     52,
			ExponentBias:     1023,
		},
	}
}

/*
Layout:
Byte 0:    class (bits 0-3) | version (bits 4-7)
Bytes 1-3: class bit field
Bytes 4-7: element size
Then class properties; floating point carries 12 bytes.
*/
func parseDatatype(data []byte) (*Datatype, error) {
	if len(data) < 8 {
		return nil, truncated("datatype")
	}

	dt := &Datatype{
		Class:     DatatypeClass(data[0] & 0x0F),
		Version:   data[0] >> 4,
		ClassBits: uint32(data[1]) | uint32(data[2])<<8 | uint32(data[3])<<16,
		Size:      binary.LittleEndian.Uint32(data[4:8]),
	}

	if dt.Class == ClassFloatPoint {
		if len(data) < 20 {
			return nil, truncated("floating-point properties")
		}
		p := data[8:]
		dt.Float = FloatProperties{
			BitOffset:        binary.LittleEndian.Uint16(p[0:2]),
			BitPrecision:     binary.LittleEndian.Uint16(p[2:4]),
			ExponentLocation: p[4],
			ExponentSize:     p[5],
			MantissaLocation: p[6],
			MantissaSize:     p[7],
			ExponentBias:     binary.LittleEndian.Uint32(p[8:12]),
		}
	}
	return dt, nil
}

// Serialize writes the datatype. Only floating-point properties are encoded.
func (m *Datatype) Serialize(w *binpkg.Writer) error {
	version := m.Version
	if version == 0 {
		version = 1
	}
	if err := w.WriteUint8(uint8(m.Class) | version<<4); err != nil {
		return err
	}
	bits := []byte{byte(m.ClassBits), byte(m.ClassBits >> 8), byte(m.ClassBits >> 16)}
	if err := w.WriteBytes(bits); err != nil {
		return err
	}
	if err := w.WriteUint32(m.Size); err != nil {
		return err
	}
	if m.Class != ClassFloatPoint {
		return nil
	}

	p := m.Float
	if err := w.WriteUint16(p.BitOffset); err != nil {
		return err
	}
	if err := w.WriteUint16(p.BitPrecision); err != nil {
		return err
	}
	for _, b := range []uint8{p.ExponentLocation, p.ExponentSize, p.MantissaLocation, p.MantissaSize} {
		if err := w.WriteUint8(b); err != nil {
			return err
		}
	}
	return w.WriteUint32(p.ExponentBias)
}

// SerializedSize returns the encoded body size.
func (m *Datatype) SerializedSize(w *binpkg.Writer) int {
	if m.Class == ClassFloatPoint {
		return 20
	}
	return 8
}
