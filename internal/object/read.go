package object

import (
	"encoding/binary"
	"fmt"

	binpkg "github.com/robert-malhotra/go-h5store/internal/binary"
	"github.com/robert-malhotra/go-h5store/internal/message"
)

/*
Version 2 Object Header Layout:
Offset  Size  Description
0       4     Signature ("OHDR")
4       1     Version (2)
5       1     Flags
          	  Bit 0-1: Size of chunk#0 size field (1 << value bytes)
          	  Bit 2: Track attribute creation order
          	  Bit 4: Store non-default attribute storage phase change values
          	  Bit 5: Store access, modification, change, birth times
6       16    Times (if flag bit 5 set)
var     4     Max compact / min dense attributes (if flag bit 4 set)
var     1-8   Size of chunk#0, excluding the checksum
var     var   Header messages
var     4     Checksum over everything before it

Each message:
0       1     Message type
1       2     Size of message data
3       1     Flags
4       2     Creation order (if header flag bit 2 set)
var     var   Message data
*/

// maxChunkSize bounds header chunks so a corrupt size field cannot force a
// huge allocation.
const maxChunkSize = 1 << 26

const maxContinuationDepth = 16

func readV2(r *binpkg.Reader, address uint64) (*Header, error) {
	r.Skip(4)

	version, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	if version != 2 {
		return nil, fmt.Errorf("%w: expected version 2, got %d", ErrUnsupportedVersion, version)
	}

	flags, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	if flags&0x20 != 0 {
		r.Skip(16)
	}
	if flags&0x10 != 0 {
		r.Skip(4)
	}

	chunk0Size, err := r.ReadUintN(1 << (flags & 0x03))
	if err != nil {
		return nil, err
	}
	if chunk0Size > maxChunkSize {
		return nil, fmt.Errorf("%w: chunk size %d at address %d", ErrInvalidHeader, chunk0Size, address)
	}

	prefixLen := r.Pos() - int64(address)
	whole, err := r.At(int64(address)).ReadBytes(int(prefixLen) + int(chunk0Size) + 4)
	if err != nil {
		return nil, fmt.Errorf("reading object header at %d: %w", address, err)
	}
	if err := verifyChecksum(whole); err != nil {
		return nil, fmt.Errorf("object header at %d: %w", address, err)
	}

	hdr := &Header{Version: 2, Address: address, Flags: flags}
	chunk := whole[prefixLen : len(whole)-4]
	if err := hdr.parseMessages(r, chunk, flags&0x04 != 0, 0); err != nil {
		return nil, fmt.Errorf("object header at %d: %w", address, err)
	}
	return hdr, nil
}

// readContinuation reads an OCHK block and appends its messages.
func (h *Header) readContinuation(r *binpkg.Reader, offset, length uint64, trackOrder bool, depth int) error {
	if depth > maxContinuationDepth {
		return fmt.Errorf("%w: continuation chain too deep", ErrInvalidHeader)
	}
	if length < 8 || length > maxChunkSize {
		return fmt.Errorf("%w: continuation length %d", ErrInvalidHeader, length)
	}

	block, err := r.At(int64(offset)).ReadBytes(int(length))
	if err != nil {
		return fmt.Errorf("reading continuation at %d: %w", offset, err)
	}
	if string(block[:4]) != string(SignatureContinuation) {
		return fmt.Errorf("%w: bad continuation signature at %d", ErrInvalidHeader, offset)
	}
	if err := verifyChecksum(block); err != nil {
		return err
	}
	return h.parseMessages(r, block[4:len(block)-4], trackOrder, depth+1)
}

func (h *Header) parseMessages(r *binpkg.Reader, chunk []byte, trackOrder bool, depth int) error {
	headerLen := 4
	if trackOrder {
		headerLen = 6
	}

	pos := 0
	// Fewer bytes than a message header left at the end is a gap.
	for len(chunk)-pos >= headerLen {
		typ := message.Type(chunk[pos])
		size := int(binary.LittleEndian.Uint16(chunk[pos+1:]))
		pos += headerLen
		if pos+size > len(chunk) {
			return fmt.Errorf("%w: message type 0x%04x overruns chunk", ErrInvalidHeader, uint16(typ))
		}
		data := chunk[pos : pos+size]
		pos += size

		switch typ {
		case message.TypeNIL:
			continue
		case message.TypeObjectHeaderContinuation:
			addr, length, err := continuationTarget(r, data)
			if err != nil {
				return err
			}
			if err := h.readContinuation(r, addr, length, trackOrder, depth); err != nil {
				return err
			}
			continue
		}

		msg, err := message.Parse(typ, data, r)
		if err != nil {
			return err
		}
		h.Messages = append(h.Messages, msg)
	}
	return nil
}

// continuationTarget decodes the address and length of a continuation
// message.
func continuationTarget(r *binpkg.Reader, data []byte) (addr, length uint64, err error) {
	o, l := r.OffsetSize(), r.LengthSize()
	if len(data) < o+l {
		return 0, 0, fmt.Errorf("%w: continuation message truncated", ErrInvalidHeader)
	}
	return binpkg.DecodeUint(data, o, r.ByteOrder()), binpkg.DecodeUint(data[o:], l, r.ByteOrder()), nil
}

func verifyChecksum(block []byte) error {
	n := len(block) - 4
	stored := binary.LittleEndian.Uint32(block[n:])
	if !binpkg.VerifyLookup3(block[:n], stored) {
		return ErrChecksumMismatch
	}
	return nil
}
