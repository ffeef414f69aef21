package heap

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-h5store/internal/binary"
)

// SignatureLocal starts every local heap header.
var SignatureLocal = []byte{'H', 'E', 'A', 'P'}

var (
	ErrInvalidHeap = errors.New("invalid local heap")
	ErrBadOffset   = errors.New("local heap offset out of range")
)

// maxDataSize bounds the data segment so a corrupt size cannot force a
// huge allocation.
const maxDataSize = 1 << 26

// LocalHeap holds the member names of an old-style group as
// null-terminated strings.
type LocalHeap struct {
	DataSize    uint64
	FreeOffset  uint64
	DataAddress uint64
	data        []byte
}

/*
Local heap header:
Offset  Size  Description
0       4     Signature ("HEAP")
4       1     Version (0)
5       3     Reserved
8       L     Data segment size
8+L     L     Offset to head of free list (undefined when full)
8+2L    O     Data segment address
*/

// ReadLocal reads the local heap whose header is at address, data segment
// included.
func ReadLocal(r *binary.Reader, address uint64) (*LocalHeap, error) {
	hr := r.At(int64(address))

	sig, err := hr.ReadBytes(4)
	if err != nil {
		return nil, fmt.Errorf("reading local heap at %d: %w", address, err)
	}
	if string(sig) != string(SignatureLocal) {
		return nil, fmt.Errorf("%w: bad signature %q at %d", ErrInvalidHeap, sig, address)
	}
	version, err := hr.ReadUint8()
	if err != nil {
		return nil, err
	}
	if version != 0 {
		return nil, fmt.Errorf("%w: version %d", ErrInvalidHeap, version)
	}
	hr.Skip(3)

	h := &LocalHeap{}
	if h.DataSize, err = hr.ReadLength(); err != nil {
		return nil, err
	}
	if h.FreeOffset, err = hr.ReadLength(); err != nil {
		return nil, err
	}
	if h.DataAddress, err = hr.ReadOffset(); err != nil {
		return nil, err
	}
	if h.DataSize > maxDataSize {
		return nil, fmt.Errorf("%w: data segment of %d bytes", ErrInvalidHeap, h.DataSize)
	}

	h.data, err = r.At(int64(h.DataAddress)).ReadBytes(int(h.DataSize))
	if err != nil {
		return nil, fmt.Errorf("reading local heap data at %d: %w", h.DataAddress, err)
	}
	return h, nil
}

// String returns the null-terminated string at offset.
func (h *LocalHeap) String(offset uint64) (string, error) {
	if offset >= uint64(len(h.data)) {
		return "", fmt.Errorf("%w: %d of %d", ErrBadOffset, offset, len(h.data))
	}
	end := offset
	for end < uint64(len(h.data)) && h.data[end] != 0 {
		end++
	}
	if end == uint64(len(h.data)) {
		return "", fmt.Errorf("%w: unterminated string at %d", ErrInvalidHeap, offset)
	}
	return string(h.data[offset:end]), nil
}
