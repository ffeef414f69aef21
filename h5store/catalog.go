package h5store

import (
	"fmt"
	"sort"
)

// Datasets returns the root-relative paths of all datasets, sorted
// lexicographically. Paths carry no leading separator.
func (s *Store) Datasets() ([]string, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	var out []string
	s.walk(func(path string, _ *group, _ *dataset) {
		out = append(out, path)
	}, nil)
	sort.Strings(out)
	return out, nil
}

// Groups returns the root-relative paths of all groups below the root,
// sorted lexicographically.
func (s *Store) Groups() ([]string, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	var out []string
	s.walk(nil, func(path string, _ *group) {
		out = append(out, path)
	})
	sort.Strings(out)
	return out, nil
}

// walk visits the tree depth-first. Either callback may be nil.
func (s *Store) walk(onDataset func(string, *group, *dataset), onGroup func(string, *group)) {
	var visit func(g *group, prefix string)
	visit = func(g *group, prefix string) {
		for name, ds := range g.datasets {
			if onDataset != nil {
				onDataset(prefix+name, g, ds)
			}
		}
		for name, sub := range g.groups {
			if onGroup != nil {
				onGroup(prefix+name, sub)
			}
			visit(sub, prefix+name+Separator)
		}
	}
	visit(s.root, "")
}

// DatasetExists reports whether path names a dataset. It never creates
// anything and is false for groups, invalid paths and a Closed store.
func (s *Store) DatasetExists(path string) bool {
	if !s.open {
		return false
	}
	_, _, _, err := s.lookupDataset(path)
	return err == nil
}

// DatasetDimensions returns the dimensions of the dataset at path without
// reading its payload.
func (s *Store) DatasetDimensions(path string) ([]uint64, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	_, _, ds, err := s.lookupDataset(path)
	if err != nil {
		return nil, err
	}
	return append([]uint64{}, ds.dims...), nil
}

// RemoveDataset deletes the dataset at path. Its parent groups stay, even
// when they become empty. A missing dataset fails with ErrNotFound and
// changes nothing.
func (s *Store) RemoveDataset(path string) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	parent, leaf, _, err := s.lookupDataset(path)
	if err != nil {
		return fmt.Errorf("removing: %w", err)
	}
	delete(parent.datasets, leaf)
	s.dirty = true

	s.metrics.datasetsRemoved.Inc()
	s.logger.Debug("removed dataset", zapPath(path))
	return nil
}
