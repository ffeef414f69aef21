package message

import (
	"encoding/binary"
	"fmt"

	binpkg "github.com/robert-malhotra/go-h5store/internal/binary"
)

// LinkType is the kind of link.
type LinkType uint8

const (
	LinkTypeHard     LinkType = 0  // Object header address
	LinkTypeSoft     LinkType = 1  // Path string
	LinkTypeExternal LinkType = 64 // File name + path
)

// Link flag bits.
const (
	linkFlagNameSizeMask = 0x03
	linkFlagCreation     = 0x04
	linkFlagType         = 0x08
	linkFlagCharset      = 0x10
)

// Link names a child object of a group (type 0x0006).
type Link struct {
	Version       uint8
	LinkType      LinkType
	CreationOrder uint64
	Name          string
	Charset       uint8

	// Hard link target.
	ObjectAddress uint64
}

func (m *Link) Type() Type { return TypeLink }

// IsHard reports whether the link points at an object header.
func (m *Link) IsHard() bool {
	return m.LinkType == LinkTypeHard
}

// NewHardLink returns a hard link named name pointing at addr.
func NewHardLink(name string, addr uint64) *Link {
	return &Link{Version: 1, LinkType: LinkTypeHard, Name: name, ObjectAddress: addr}
}

// parseLink decodes a link message. Byte 0 is the version (1) and byte 1
// the flags:
//
//	bits 0-1  size of the name length field (1, 2, 4 or 8 bytes)
//	bit 2     creation order present
//	bit 3     link type present
//	bit 4     charset present
//
// The optional link type, creation order (8 bytes) and charset follow, then
// the name length, the name and the link information.
func parseLink(data []byte, r *binpkg.Reader) (*Link, error) {
	if len(data) < 2 {
		return nil, truncated("link")
	}

	link := &Link{Version: data[0]}
	if link.Version != 1 {
		return nil, fmt.Errorf("%w: link version %d", ErrMalformed, link.Version)
	}
	flags := data[1]
	offset := 2

	if flags&linkFlagType != 0 {
		if offset >= len(data) {
			return nil, truncated("link type")
		}
		link.LinkType = LinkType(data[offset])
		offset++
	}
	if flags&linkFlagCreation != 0 {
		if offset+8 > len(data) {
			return nil, truncated("link creation order")
		}
		link.CreationOrder = binary.LittleEndian.Uint64(data[offset:])
		offset += 8
	}
	if flags&linkFlagCharset != 0 {
		if offset >= len(data) {
			return nil, truncated("link charset")
		}
		link.Charset = data[offset]
		offset++
	}

	nameLenSize := 1 << (flags & linkFlagNameSizeMask)
	if offset+nameLenSize > len(data) {
		return nil, truncated("link name length")
	}
	nameLen := int(binpkg.DecodeUint(data[offset:], nameLenSize, binary.LittleEndian))
	offset += nameLenSize
	if nameLen < 0 || offset+nameLen > len(data) {
		return nil, truncated("link name")
	}
	link.Name = string(data[offset : offset+nameLen])
	offset += nameLen

	if link.LinkType == LinkTypeHard {
		size := r.OffsetSize()
		if offset+size > len(data) {
			return nil, truncated("hard link address")
		}
		link.ObjectAddress = binpkg.DecodeUint(data[offset:], size, r.ByteOrder())
	}
	return link, nil
}

func (m *Link) nameLenSize() (int, uint8) {
	switch n := len(m.Name); {
	case n <= 0xFF:
		return 1, 0
	case n <= 0xFFFF:
		return 2, 1
	case n <= 0xFFFFFFFF:
		return 4, 2
	default:
		return 8, 3
	}
}

// Serialize writes a hard link. Other link types are not written.
func (m *Link) Serialize(w *binpkg.Writer) error {
	if m.LinkType != LinkTypeHard {
		return fmt.Errorf("writing link type %d is not supported", m.LinkType)
	}
	size, bits := m.nameLenSize()

	if err := w.WriteUint8(1); err != nil {
		return err
	}
	if err := w.WriteUint8(bits); err != nil {
		return err
	}
	if err := w.WriteUintN(uint64(len(m.Name)), size); err != nil {
		return err
	}
	if err := w.WriteBytes([]byte(m.Name)); err != nil {
		return err
	}
	return w.WriteOffset(m.ObjectAddress)
}

// SerializedSize returns the encoded body size.
func (m *Link) SerializedSize(w *binpkg.Writer) int {
	size, _ := m.nameLenSize()
	return 2 + size + len(m.Name) + w.OffsetSize()
}
