package h5store

import (
	"fmt"

	"go.uber.org/zap"
)

// maxRank is the largest rank a dataspace can encode.
const maxRank = 32

// WriteDense stores values under path with the given dimensions, creating
// missing groups along the way. len(values) must equal the product of dims;
// an empty dims slice stores a scalar holding exactly one value. The write
// is validated completely before the tree is touched.
func (s *Store) WriteDense(path string, dims []uint64, values []float64) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	segments, leaf, err := SplitPath(path)
	if err != nil {
		return err
	}
	if len(dims) > maxRank {
		return fmt.Errorf("%w: rank %d exceeds %d", ErrUnsupported, len(dims), maxRank)
	}
	n, ok := ElementCount(dims)
	if !ok || uint64(len(values)) != n {
		return fmt.Errorf("%w: %d values for dimensions %v", ErrDimensionMismatch, len(values), dims)
	}
	if err := s.checkLeaf(segments, leaf); err != nil {
		return err
	}

	parent, err := s.resolveOrCreateGroups(segments)
	if err != nil {
		return err
	}
	_, replaced := parent.datasets[leaf]
	parent.datasets[leaf] = newResidentDataset(dims, values)
	s.dirty = true

	s.metrics.datasetsWritten.Inc()
	s.metrics.bytesWritten.Add(float64(n * float64Size))
	s.logger.Debug("wrote dataset",
		zapPath(path),
		zap.Uint64s("dims", dims),
		zap.Bool("replaced", replaced),
	)
	return nil
}

// WriteMatrix stores m under path with dimensions [rows, cols].
func (s *Store) WriteMatrix(path string, m *Matrix) error {
	if m == nil {
		if err := s.checkWritable(); err != nil {
			return err
		}
		return fmt.Errorf("%w: nil matrix", ErrDimensionMismatch)
	}
	return s.WriteDense(path, []uint64{uint64(m.Rows()), uint64(m.Cols())}, m.Data())
}

// checkLeaf rejects a write before any group is created: an existing
// dataset on the group chain, a group at the leaf, or an existing dataset
// under OverwriteFail.
func (s *Store) checkLeaf(segments []string, leaf string) error {
	g := s.root
	for i, name := range segments {
		if _, ok := g.datasets[name]; ok {
			return fmt.Errorf("%w: %s", ErrNotGroup, joinPath(segments[:i+1]...))
		}
		child, ok := g.groups[name]
		if !ok {
			return nil
		}
		g = child
	}

	full := joinPath(append(append([]string{}, segments...), leaf)...)
	if _, ok := g.groups[leaf]; ok {
		return fmt.Errorf("%w: %s is a group", ErrNotDataset, full)
	}
	if _, ok := g.datasets[leaf]; ok && s.opts.overwrite == OverwriteFail {
		return fmt.Errorf("%w: %s", ErrExists, full)
	}
	return nil
}

// ReadDense returns the dimensions and row-major values stored at path.
// Both slices are copies owned by the caller.
func (s *Store) ReadDense(path string) ([]uint64, []float64, error) {
	if err := s.checkOpen(); err != nil {
		return nil, nil, err
	}
	_, _, ds, err := s.lookupDataset(path)
	if err != nil {
		return nil, nil, err
	}
	values, err := s.payload(ds)
	if err != nil {
		return nil, nil, err
	}

	s.metrics.datasetsRead.Inc()
	dims := append([]uint64{}, ds.dims...)
	if ds.resident {
		values = append([]float64{}, values...)
	}
	return dims, values, nil
}

// ReadMatrix reads a rank-2 dataset as a Matrix. Any other rank fails with
// ErrRankMismatch.
func (s *Store) ReadMatrix(path string) (*Matrix, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	_, _, ds, err := s.lookupDataset(path)
	if err != nil {
		return nil, err
	}
	if len(ds.dims) != 2 {
		return nil, fmt.Errorf("%w: %s has rank %d, want 2", ErrRankMismatch, path, len(ds.dims))
	}

	dims, values, err := s.ReadDense(path)
	if err != nil {
		return nil, err
	}
	return &Matrix{rows: int(dims[0]), cols: int(dims[1]), data: values}, nil
}
