package superblock

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	binpkg "github.com/robert-malhotra/go-h5store/internal/binary"
)

// Signature is the 8-byte container signature: 0x89 H D F \r \n 0x1a \n.
var Signature = []byte{0x89, 'H', 'D', 'F', '\r', '\n', 0x1a, '\n'}

// Possible superblock locations, searched in order.
var superblockOffsets = []int64{0, 512, 1024, 2048}

// Errors
var (
	ErrNotHDF5            = errors.New("not an HDF5 file: signature not found")
	ErrUnsupportedVersion = errors.New("unsupported superblock version")
	ErrInvalidSuperblock  = errors.New("invalid superblock structure")
)

// Superblock holds the container-wide metadata written at the start of the file.
type Superblock struct {
	// Version is 2 when written; 0, 1 and 3 are accepted on read.
	Version uint8

	// OffsetSize is the width of file addresses (2, 4, or 8).
	OffsetSize uint8

	// LengthSize is the width of lengths (2, 4, or 8).
	LengthSize uint8

	// Flags holds the file consistency flags.
	Flags uint8

	// BaseAddress is the absolute address of byte 0 of the container.
	BaseAddress uint64

	// ExtensionAddress is the superblock extension, undefined when absent.
	ExtensionAddress uint64

	// EOFAddress is the logical end of file.
	EOFAddress uint64

	// RootGroupAddress is the address of the root group's object header.
	RootGroupAddress uint64

	// FileOffset is where the signature was found.
	FileOffset int64
}

// New returns a version 2 superblock with 8-byte offsets and lengths.
func New() *Superblock {
	return &Superblock{
		Version:    2,
		OffsetSize: 8,
		LengthSize: 8,
	}
}

// Read locates and parses the superblock of a container.
func Read(r io.ReaderAt) (*Superblock, error) {
	sig := make([]byte, len(Signature))

	for _, offset := range superblockOffsets {
		n, err := r.ReadAt(sig, offset)
		if n < len(sig) {
			if err == nil || err == io.EOF {
				// Ran off the end of a short file: no superblock further on.
				return nil, ErrNotHDF5
			}
			return nil, err
		}
		if !bytes.Equal(sig, Signature) {
			continue
		}

		sb, err := readAt(r, offset)
		if err != nil {
			return nil, err
		}
		sb.FileOffset = offset
		return sb, nil
	}

	return nil, ErrNotHDF5
}

/*
Version 2/3 layout:
Offset  Size  Description
0       8     Signature
8       1     Version (2 or 3)
9       1     Size of offsets
10      1     Size of lengths
11      1     File consistency flags
12      O     Base address
12+O    O     Superblock extension address
12+2O   O     EOF address
12+3O   O     Root group object header address
12+4O   4     Checksum (lookup3 over all preceding bytes)
*/
func readAt(r io.ReaderAt, offset int64) (*Superblock, error) {
	head := make([]byte, 12)
	if n, err := r.ReadAt(head, offset); n < len(head) {
		return nil, fmt.Errorf("%w: truncated header: %v", ErrInvalidSuperblock, err)
	}

	switch head[8] {
	case 0, 1:
		return readV0(r, offset, head[8])
	case 2, 3:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, head[8])
	}

	sb := &Superblock{
		Version:    head[8],
		OffsetSize: head[9],
		LengthSize: head[10],
		Flags:      head[11],
	}
	if err := sb.ReaderConfig().Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSuperblock, err)
	}

	size := sb.Size()
	buf := make([]byte, size)
	if n, err := r.ReadAt(buf, offset); n < size {
		return nil, fmt.Errorf("%w: truncated: %v", ErrInvalidSuperblock, err)
	}

	stored := binary.LittleEndian.Uint32(buf[size-4:])
	if !binpkg.VerifyLookup3(buf[:size-4], stored) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrInvalidSuperblock)
	}

	br := binpkg.NewReader(binpkg.NewBufferFrom(buf), sb.ReaderConfig()).At(12)
	sb.BaseAddress, _ = br.ReadOffset()
	sb.ExtensionAddress, _ = br.ReadOffset()
	sb.EOFAddress, _ = br.ReadOffset()
	sb.RootGroupAddress, _ = br.ReadOffset()

	return sb, nil
}

// ReaderConfig returns the codec configuration described by this superblock.
func (sb *Superblock) ReaderConfig() binpkg.Config {
	return binpkg.Config{
		ByteOrder:  binary.LittleEndian,
		OffsetSize: int(sb.OffsetSize),
		LengthSize: int(sb.LengthSize),
	}
}

// Size returns the encoded size of a v2/v3 superblock.
func (sb *Superblock) Size() int {
	offsetSize := int(sb.OffsetSize)
	if offsetSize == 0 {
		offsetSize = 8
	}
	return 12 + 4*offsetSize + 4
}
