package object

import (
	"encoding/binary"
	"fmt"

	binpkg "github.com/robert-malhotra/go-h5store/internal/binary"
	"github.com/robert-malhotra/go-h5store/internal/message"
)

/*
Version 1 Object Header Layout:
Offset  Size  Description
0       1     Version (1)
1       1     Reserved
2       2     Number of header messages
4       4     Object reference count
8       4     Size of chunk#0
12      4     Padding to an 8-byte boundary
16      var   Header messages

Each message (data size is a multiple of 8):
0       2     Message type
2       2     Size of message data
4       1     Flags
5       3     Reserved
8       var   Message data

Continuation blocks hold bare messages: no signature, no checksum.
*/

const v1PrefixSize = 16

func readV1(r *binpkg.Reader, address uint64) (*Header, error) {
	prefix, err := r.ReadBytes(v1PrefixSize)
	if err != nil {
		return nil, fmt.Errorf("reading object header at %d: %w", address, err)
	}
	if prefix[0] != 1 {
		return nil, fmt.Errorf("%w: expected version 1, got %d", ErrUnsupportedVersion, prefix[0])
	}

	chunk0Size := binary.LittleEndian.Uint32(prefix[8:])
	if chunk0Size > maxChunkSize {
		return nil, fmt.Errorf("%w: chunk size %d at address %d", ErrInvalidHeader, chunk0Size, address)
	}
	chunk, err := r.ReadBytes(int(chunk0Size))
	if err != nil {
		return nil, fmt.Errorf("reading object header at %d: %w", address, err)
	}

	hdr := &Header{Version: 1, Address: address}
	if err := hdr.parseMessagesV1(r, chunk, 0); err != nil {
		return nil, fmt.Errorf("object header at %d: %w", address, err)
	}
	return hdr, nil
}

func (h *Header) parseMessagesV1(r *binpkg.Reader, chunk []byte, depth int) error {
	pos := 0
	for len(chunk)-pos >= 8 {
		typ := message.Type(binary.LittleEndian.Uint16(chunk[pos:]))
		size := int(binary.LittleEndian.Uint16(chunk[pos+2:]))
		pos += 8
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
			if depth >= maxContinuationDepth {
				return fmt.Errorf("%w: continuation chain too deep", ErrInvalidHeader)
			}
			if length > maxChunkSize {
				return fmt.Errorf("%w: continuation length %d", ErrInvalidHeader, length)
			}
			block, err := r.At(int64(addr)).ReadBytes(int(length))
			if err != nil {
				return fmt.Errorf("reading continuation at %d: %w", addr, err)
			}
			if err := h.parseMessagesV1(r, block, depth+1); err != nil {
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
