// Package h5store persists named multi-dimensional float64 arrays in a
// single container file, organized as nested groups addressed by
// slash-separated paths such as "Group1/Group2/Data".
//
// The container is a subset of the HDF5 format: a version 2 superblock,
// version 2 object headers, groups holding one link message per child and
// contiguous little-endian double datasets. Files written by the store
// open in ordinary HDF5 tools. Containers in the older libhdf5 default
// layout (version 0 superblock, version 1 object headers, symbol-table
// groups) can be read; they are rewritten in the current layout when a
// writable store closes.
//
// # Lifecycle
//
// A [Store] is created Closed and opened on one file at a time:
//
//	s := h5store.New(h5store.WithLogger(logger))
//	if err := s.Open("results.h5", h5store.ReadWriteAppend); err != nil {
//		return err
//	}
//	defer s.Close()
//
// Open loads the group tree; payloads stay on disk until read. Writes and
// removals change the tree in memory. Close (or Flush) writes the whole
// tree to a temporary file beside the target, syncs it and renames it
// into place, so the target is never left half-written.
//
// # Paths
//
// Paths are case-sensitive. A leading separator is optional; trailing
// separators and empty segments are rejected with [ErrInvalidPath].
// Writes create missing groups. Listings return paths without a leading
// separator, sorted lexicographically.
//
// # Threshold policy
//
// Every Store embeds a [ThresholdPolicy] that callers consult to decide
// whether an array is large enough to belong in a container:
//
//	if s.ExceedsThresholdValues(values) {
//		err = s.WriteDense("Frames/0", dims, values)
//	}
//
// # Errors
//
// Errors wrap the sentinels in errors.go; match them with errors.Is.
// Failures of the file itself, including invalid content, wrap [ErrIO].
package h5store
