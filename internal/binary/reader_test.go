package binary

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

func TestReaderReadUint8(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x42, 0xFF}), DefaultConfig())

	v, err := r.ReadUint8()
	if err != nil {
		t.Fatalf("ReadUint8 failed: %v", err)
	}
	if v != 0x42 {
		t.Errorf("expected 0x42, got 0x%02x", v)
	}

	v, err = r.ReadUint8()
	if err != nil {
		t.Fatalf("ReadUint8 failed: %v", err)
	}
	if v != 0xFF {
		t.Errorf("expected 0xFF, got 0x%02x", v)
	}
}

func TestReaderReadUint16And32(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint16(0x0102))
	binary.Write(&buf, binary.LittleEndian, uint32(0xDEADBEEF))

	r := NewReader(bytes.NewReader(buf.Bytes()), DefaultConfig())

	v16, err := r.ReadUint16()
	if err != nil {
		t.Fatalf("ReadUint16 failed: %v", err)
	}
	if v16 != 0x0102 {
		t.Errorf("expected 0x0102, got 0x%04x", v16)
	}

	v32, err := r.ReadUint32()
	if err != nil {
		t.Fatalf("ReadUint32 failed: %v", err)
	}
	if v32 != 0xDEADBEEF {
		t.Errorf("expected 0xDEADBEEF, got 0x%08x", v32)
	}
}

func TestReaderReadOffset(t *testing.T) {
	tests := []struct {
		name       string
		offsetSize int
		data       []byte
		expected   uint64
	}{
		{"2-byte", 2, []byte{0x34, 0x12}, 0x1234},
		{"4-byte", 4, []byte{0x78, 0x56, 0x34, 0x12}, 0x12345678},
		{"8-byte", 8, []byte{0xF0, 0xDE, 0xBC, 0x9A, 0x78, 0x56, 0x34, 0x12}, 0x123456789ABCDEF0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				ByteOrder:  binary.LittleEndian,
				OffsetSize: tt.offsetSize,
				LengthSize: tt.offsetSize,
			}
			r := NewReader(bytes.NewReader(tt.data), cfg)

			v, err := r.ReadOffset()
			if err != nil {
				t.Fatalf("ReadOffset failed: %v", err)
			}
			if v != tt.expected {
				t.Errorf("expected 0x%x, got 0x%x", tt.expected, v)
			}
		})
	}
}

func TestReaderShortRead(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x01, 0x02, 0x03}), DefaultConfig())

	if _, err := r.ReadUint64(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
	if r.Pos() != 0 {
		t.Errorf("failed read must not advance position, got %d", r.Pos())
	}
}

func TestReaderAtAndPeek(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x00, 0x01, 0x02, 0x03}), DefaultConfig())

	r2 := r.At(3)
	v, err := r2.ReadUint8()
	if err != nil {
		t.Fatalf("ReadUint8 failed: %v", err)
	}
	if v != 0x03 {
		t.Errorf("expected 0x03, got 0x%02x", v)
	}

	peek, err := r.Peek(2)
	if err != nil {
		t.Fatalf("Peek failed: %v", err)
	}
	if !bytes.Equal(peek, []byte{0x00, 0x01}) {
		t.Errorf("unexpected peek %v", peek)
	}
	if r.Pos() != 0 {
		t.Errorf("Peek must not advance position, got %d", r.Pos())
	}
}

func TestReaderUndefinedOffset(t *testing.T) {
	tests := []struct {
		size  int
		value uint64
	}{
		{2, 0xFFFF},
		{4, 0xFFFFFFFF},
		{8, 0xFFFFFFFFFFFFFFFF},
	}

	for _, tt := range tests {
		r := NewReader(bytes.NewReader(nil), Config{ByteOrder: binary.LittleEndian, OffsetSize: tt.size, LengthSize: tt.size})
		if !r.IsUndefinedOffset(tt.value) {
			t.Errorf("size %d: 0x%x should be undefined", tt.size, tt.value)
		}
		if r.IsUndefinedOffset(0) {
			t.Errorf("size %d: 0 should not be undefined", tt.size)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
	bad := Config{ByteOrder: binary.LittleEndian, OffsetSize: 3, LengthSize: 8}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
}
