// Package alloc assigns file addresses while a container is laid out.
//
// A flush writes every group header, dataset header and payload into a
// fresh file, so allocation is strictly append-only: each block starts
// where the previous one ended, optionally padded to an alignment boundary.
// Nothing is ever freed. An Allocator is not safe for concurrent use.
//
// Every range carries a tag naming what it holds, which appears in
// Validate's errors:
//
//	a := alloc.New(uint64(sb.Size()))
//	hdr := a.Alloc(headerSize, "group Results")
//	data := a.AllocAligned(payloadSize, 8, "data Results/Frame")
//	if err := a.Validate(); err != nil {
//		return err
//	}
//
// EOFAddr is then the size of the finished file.
package alloc
