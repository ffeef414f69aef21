// Package superblock reads and writes the container superblock.
//
// The superblock is the entry point of every container file. It carries the
// 8-byte signature (0x89 H D F \r \n 0x1a \n), the widths used for file
// addresses and lengths, the logical end-of-file address and the address of
// the root group's object header.
//
// Only the version 2 layout is written. Version 3 shares the same structure
// and is accepted on read. Versions 0 and 1, the libhdf5 defaults, are read
// too: the root group's object header address comes from the root symbol
// table entry.
//
// # Usage
//
//	sb, err := superblock.Read(file)
//	if errors.Is(err, superblock.ErrNotHDF5) {
//	    // not a container
//	}
//	reader := binary.NewReader(file, sb.ReaderConfig())
//
// When a container is laid out, the superblock is written last so that the
// EOF and root addresses are known:
//
//	sb := superblock.New()
//	sb.RootGroupAddress = rootAddr
//	sb.EOFAddress = allocator.EOFAddr()
//	sb.Write(writer.At(0))
package superblock
