package superblock

import (
	"encoding/binary"
	"fmt"
	"io"

	binpkg "github.com/robert-malhotra/go-h5store/internal/binary"
)

/*
Version 0/1 layout, as written by libhdf5 with default settings:
Offset  Size  Description
0       8     Signature
8       1     Version (0 or 1)
9       1     Free-space storage version
10      1     Root group symbol table entry version
11      1     Reserved
12      1     Shared header message format version
13      1     Size of offsets
14      1     Size of lengths
15      1     Reserved
16      2     Group leaf node K
18      2     Group internal node K
20      4     File consistency flags
24      4     Indexed storage internal node K + reserved (version 1 only)
var     O     Base address
var     O     Free-space info address
var     O     EOF address
var     O     Driver information block address
var     var   Root group symbol table entry:
              O link name offset, O object header address,
              4 cache type, 4 reserved, 16 scratch pad
*/

func readV0(r io.ReaderAt, offset int64, version uint8) (*Superblock, error) {
	head := make([]byte, 24)
	if n, err := r.ReadAt(head, offset); n < len(head) {
		return nil, fmt.Errorf("%w: truncated header: %v", ErrInvalidSuperblock, err)
	}

	sb := &Superblock{
		Version:    version,
		OffsetSize: head[13],
		LengthSize: head[14],
		Flags:      uint8(binary.LittleEndian.Uint32(head[20:])),
	}
	if err := sb.ReaderConfig().Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSuperblock, err)
	}

	start := int64(24)
	if version == 1 {
		start += 4
	}
	o := int(sb.OffsetSize)
	// Four addresses, then the link name offset of the root entry.
	buf := make([]byte, 6*o)
	if n, err := r.ReadAt(buf, offset+start); n < len(buf) {
		return nil, fmt.Errorf("%w: truncated: %v", ErrInvalidSuperblock, err)
	}

	br := binpkg.NewReader(binpkg.NewBufferFrom(buf), sb.ReaderConfig())
	sb.BaseAddress, _ = br.ReadOffset()
	br.Skip(int64(o))
	sb.EOFAddress, _ = br.ReadOffset()
	br.Skip(2 * int64(o))
	sb.RootGroupAddress, _ = br.ReadOffset()
	sb.ExtensionAddress = undefined(o)

	return sb, nil
}

func undefined(size int) uint64 {
	if size >= 8 {
		return ^uint64(0)
	}
	return 1<<(8*uint(size)) - 1
}
