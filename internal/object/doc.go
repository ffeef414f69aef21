// Package object reads and writes object headers. Every object in a
// container (group or dataset) has one, holding its messages. Version 2
// headers are written; version 1 headers, the libhdf5 default, are read.
//
// # Header Structure
//
//   - "OHDR" signature, version 2, flags
//   - Chunk size, encoded in 1, 2, 4 or 8 bytes as the flags say
//   - Sequence of header messages
//   - Lookup3 checksum over the preceding bytes
//
// Headers written by other tools may spill into "OCHK" continuation blocks;
// [Read] follows them and verifies every checksum. Version 1 headers have
// no signature or checksum, and their continuation blocks hold bare
// messages.
//
// # Usage
//
//	header, err := object.Read(reader, objectAddress)
//	switch header.Kind() {
//	case object.KindGroup:
//		links := header.Links()
//	case object.KindDataset:
//		space, layout := header.Dataspace(), header.DataLayout()
//	}
//
// Writing goes through [HeaderSize] first so every header can be placed
// before any is written:
//
//	msgs := object.NewDatasetHeader(space, dtype, layout)
//	size := object.HeaderSize(w, msgs)
//	n, err := object.WriteHeader(w.At(addr), msgs)
//
// # Errors
//
//   - [ErrInvalidHeader]: header format not recognized or malformed
//   - [ErrUnsupportedVersion]: header version other than 1 or 2
//   - [ErrChecksumMismatch]: header or continuation checksum failed
package object
