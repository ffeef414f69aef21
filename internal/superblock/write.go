package superblock

import (
	binpkg "github.com/robert-malhotra/go-h5store/internal/binary"
)

// Write encodes the superblock at the writer's position and returns the
// number of bytes written. An ExtensionAddress of 0 is written as undefined.
func (sb *Superblock) Write(w *binpkg.Writer) (int64, error) {
	start := w.Pos()

	buf := binpkg.NewBuffer(sb.Size())
	bw := binpkg.NewWriter(buf, w.Config())

	version := sb.Version
	if version < 2 {
		version = 2
	}

	if err := bw.WriteBytes(Signature); err != nil {
		return 0, err
	}
	for _, b := range []uint8{version, sb.OffsetSize, sb.LengthSize, sb.Flags} {
		if err := bw.WriteUint8(b); err != nil {
			return 0, err
		}
	}

	ext := sb.ExtensionAddress
	if ext == 0 {
		ext = bw.UndefinedOffset()
	}
	for _, addr := range []uint64{sb.BaseAddress, ext, sb.EOFAddress, sb.RootGroupAddress} {
		if err := bw.WriteOffset(addr); err != nil {
			return 0, err
		}
	}

	if err := bw.WriteUint32(binpkg.Lookup3Checksum(buf.Bytes())); err != nil {
		return 0, err
	}

	if err := w.WriteBytes(buf.Bytes()); err != nil {
		return 0, err
	}
	return w.Pos() - start, nil
}
