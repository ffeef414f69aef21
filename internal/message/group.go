package message

import (
	"fmt"

	binpkg "github.com/robert-malhotra/go-h5store/internal/binary"
)

// LinkInfo marks a new-style group (type 0x0002). The store keeps links
// compact in the header, so both index addresses are undefined.
type LinkInfo struct {
	Version              uint8
	Flags                uint8 // bit 0: creation order tracked, bit 1: indexed
	MaxCreationIndex     uint64
	FractalHeapAddress   uint64
	NameIndexAddress     uint64
	CreationIndexAddress uint64
}

func (m *LinkInfo) Type() Type { return TypeLinkInfo }

// NewLinkInfo returns link info for a group with compact link storage.
func NewLinkInfo() *LinkInfo {
	return &LinkInfo{
		FractalHeapAddress: ^uint64(0),
		NameIndexAddress:   ^uint64(0),
	}
}

func parseLinkInfo(data []byte, r *binpkg.Reader) (*LinkInfo, error) {
	if len(data) < 2 {
		return nil, truncated("link info")
	}
	m := &LinkInfo{Version: data[0], Flags: data[1]}
	if m.Version != 0 {
		return nil, fmt.Errorf("%w: link info version %d", ErrMalformed, m.Version)
	}

	o := r.OffsetSize()
	need := 2 + 2*o
	if m.Flags&0x01 != 0 {
		need += 8
	}
	if m.Flags&0x02 != 0 {
		need += o
	}
	if len(data) < need {
		return nil, truncated("link info")
	}

	offset := 2
	if m.Flags&0x01 != 0 {
		m.MaxCreationIndex = binpkg.DecodeUint(data[offset:], 8, r.ByteOrder())
		offset += 8
	}
	m.FractalHeapAddress = binpkg.DecodeUint(data[offset:], o, r.ByteOrder())
	offset += o
	m.NameIndexAddress = binpkg.DecodeUint(data[offset:], o, r.ByteOrder())
	offset += o
	if m.Flags&0x02 != 0 {
		m.CreationIndexAddress = binpkg.DecodeUint(data[offset:], o, r.ByteOrder())
	}
	return m, nil
}

// HasDenseStorage reports whether links live in a fractal heap rather than
// in the object header.
func (m *LinkInfo) HasDenseStorage() bool {
	return m.FractalHeapAddress != 0 && m.FractalHeapAddress != ^uint64(0)
}

// Serialize writes link info without creation order tracking.
func (m *LinkInfo) Serialize(w *binpkg.Writer) error {
	if err := w.WriteUint8(0); err != nil {
		return err
	}
	if err := w.WriteUint8(0); err != nil {
		return err
	}
	if err := w.WriteOffset(m.FractalHeapAddress); err != nil {
		return err
	}
	return w.WriteOffset(m.NameIndexAddress)
}

// SerializedSize returns the encoded body size.
func (m *LinkInfo) SerializedSize(w *binpkg.Writer) int {
	return 2 + 2*w.OffsetSize()
}

// GroupInfo carries group storage hints (type 0x000A). The store writes the
// empty form and ignores the hints on read.
type GroupInfo struct {
	Version uint8
	Flags   uint8
}

func (m *GroupInfo) Type() Type { return TypeGroupInfo }

func parseGroupInfo(data []byte) (*GroupInfo, error) {
	if len(data) < 2 {
		return nil, truncated("group info")
	}
	return &GroupInfo{Version: data[0], Flags: data[1]}, nil
}

// Serialize writes a group info message with no hints.
func (m *GroupInfo) Serialize(w *binpkg.Writer) error {
	if err := w.WriteUint8(0); err != nil {
		return err
	}
	return w.WriteUint8(0)
}

// SerializedSize returns the encoded body size.
func (m *GroupInfo) SerializedSize(w *binpkg.Writer) int {
	return 2
}
