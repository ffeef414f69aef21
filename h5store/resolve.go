package h5store

import "fmt"

// resolveOrCreateGroups walks segments from the root, creating missing
// groups. A segment that names a dataset fails with ErrNotGroup.
func (s *Store) resolveOrCreateGroups(segments []string) (*group, error) {
	g := s.root
	for i, name := range segments {
		if _, ok := g.datasets[name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrNotGroup, joinPath(segments[:i+1]...))
		}
		child, ok := g.groups[name]
		if !ok {
			child = newGroup()
			g.groups[name] = child
			s.logger.Debug("created group", zapPath(joinPath(segments[:i+1]...)))
		}
		g = child
	}
	return g, nil
}

// resolveGroup walks segments from the root without creating anything.
// It returns nil when a segment is missing or names a dataset.
func (s *Store) resolveGroup(segments []string) *group {
	g := s.root
	for _, name := range segments {
		child, ok := g.groups[name]
		if !ok {
			return nil
		}
		g = child
	}
	return g
}

// lookupDataset resolves a dataset path read-only.
func (s *Store) lookupDataset(path string) (*group, string, *dataset, error) {
	segments, leaf, err := SplitPath(path)
	if err != nil {
		return nil, "", nil, err
	}
	parent := s.resolveGroup(segments)
	if parent == nil {
		return nil, "", nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	ds, ok := parent.datasets[leaf]
	if !ok {
		return nil, "", nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return parent, leaf, ds, nil
}
