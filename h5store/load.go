package h5store

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/robert-malhotra/go-h5store/internal/binary"
	"github.com/robert-malhotra/go-h5store/internal/btree"
	"github.com/robert-malhotra/go-h5store/internal/heap"
	"github.com/robert-malhotra/go-h5store/internal/message"
	"github.com/robert-malhotra/go-h5store/internal/object"
	"github.com/robert-malhotra/go-h5store/internal/superblock"
)

const (
	// maxGroupDepth bounds the group nesting accepted on load.
	maxGroupDepth = 256
	// maxUnallocatedBytes bounds the zero payload materialized for a
	// dataset whose storage was never allocated.
	maxUnallocatedBytes = 1 << 30
)

// load opens the container at path and builds the in-memory tree from its
// group hierarchy. Payloads are left in the file. On success the file
// stays open as the store's source.
func (s *Store) load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}

	sb, err := superblock.Read(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("reading superblock: %w", err)
	}

	// Addresses are relative to the base address, which is non-zero when
	// the file carries a user block.
	base := int64(sb.BaseAddress)
	section := io.NewSectionReader(f, base, math.MaxInt64-base)
	r := binary.NewReader(section, sb.ReaderConfig())

	l := &loader{r: r, eof: sb.EOFAddress, onPath: make(map[uint64]bool)}
	root, err := l.group(sb.RootGroupAddress, "", 0)
	if err != nil {
		f.Close()
		return err
	}

	s.source = f
	s.reader = r
	s.root = root
	return nil
}

type loader struct {
	r   *binary.Reader
	eof uint64
	// onPath holds the headers of the groups being descended, so a hard
	// link back to an ancestor is caught instead of recursing forever.
	onPath map[uint64]bool
}

func (l *loader) group(addr uint64, path string, depth int) (*group, error) {
	if depth > maxGroupDepth {
		return nil, fmt.Errorf("%w: groups nested deeper than %d at %q", ErrUnsupported, maxGroupDepth, path)
	}
	if l.onPath[addr] {
		return nil, fmt.Errorf("%w: group cycle at %q", ErrUnsupported, path)
	}
	l.onPath[addr] = true
	defer delete(l.onPath, addr)

	hdr, err := object.Read(l.r, addr)
	if err != nil {
		return nil, fmt.Errorf("reading group %q: %w", displayPath(path), err)
	}
	if hdr.Kind() != object.KindGroup {
		return nil, fmt.Errorf("%w: %q is a %s", ErrNotGroup, displayPath(path), hdr.Kind())
	}
	if li := hdr.LinkInfo(); li != nil && li.HasDenseStorage() {
		return nil, fmt.Errorf("%w: dense link storage in group %q", ErrUnsupported, displayPath(path))
	}

	members, err := l.members(hdr, path)
	if err != nil {
		return nil, err
	}

	g := newGroup()
	for _, m := range members {
		childPath := m.name
		if path != "" {
			childPath = joinPath(path, m.name)
		}
		if m.name == "" || g.has(m.name) {
			return nil, fmt.Errorf("%w: invalid or duplicate link name %q in group %q", ErrUnsupported, m.name, displayPath(path))
		}

		child, err := object.Read(l.r, m.addr)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", childPath, err)
		}
		switch child.Kind() {
		case object.KindGroup:
			sub, err := l.group(m.addr, childPath, depth+1)
			if err != nil {
				return nil, err
			}
			g.groups[m.name] = sub
		case object.KindDataset:
			ds, err := l.dataset(child, childPath)
			if err != nil {
				return nil, err
			}
			g.datasets[m.name] = ds
		default:
			return nil, fmt.Errorf("%w: object at %q is neither group nor dataset", ErrUnsupported, childPath)
		}
	}
	return g, nil
}

// member is a hard link from a group to a child object header.
type member struct {
	name string
	addr uint64
}

// members lists a group's children from its link messages or, for groups
// written by libhdf5 with default settings, from its symbol table.
func (l *loader) members(hdr *object.Header, path string) ([]member, error) {
	st := hdr.SymbolTable()
	if st == nil {
		var out []member
		for _, link := range hdr.Links() {
			if !link.IsHard() {
				return nil, fmt.Errorf("%w: link type %d at %q", ErrUnsupported, link.LinkType, joinPath(path, link.Name))
			}
			out = append(out, member{name: link.Name, addr: link.ObjectAddress})
		}
		return out, nil
	}

	lh, err := heap.ReadLocal(l.r, st.LocalHeapAddress)
	if err != nil {
		return nil, fmt.Errorf("reading group %q: %w", displayPath(path), err)
	}
	entries, err := btree.ReadGroup(l.r, st.BTreeAddress, lh)
	if err != nil {
		return nil, fmt.Errorf("reading group %q: %w", displayPath(path), err)
	}
	out := make([]member, 0, len(entries))
	for _, e := range entries {
		if e.SoftLink {
			return nil, fmt.Errorf("%w: soft link to %q at %q", ErrUnsupported, e.Target, joinPath(path, e.Name))
		}
		out = append(out, member{name: e.Name, addr: e.ObjectAddress})
	}
	return out, nil
}

// dataset builds a dataset node from its header. Contiguous payloads
// stay in the file; compact payloads are small and decoded right away.
func (l *loader) dataset(hdr *object.Header, path string) (*dataset, error) {
	space := hdr.Dataspace()
	dt := hdr.Datatype()
	if dt == nil {
		return nil, fmt.Errorf("%w: dataset %q has no datatype", ErrUnsupported, path)
	}
	if !dt.IsFloat64LE() {
		return nil, fmt.Errorf("%w: dataset %q has datatype %s", ErrUnsupported, path, dt)
	}

	ds := &dataset{}
	switch space.SpaceType {
	case message.DataspaceScalar:
		ds.dims = []uint64{}
	case message.DataspaceSimple:
		ds.dims = append([]uint64{}, space.Dimensions...)
	default:
		return nil, fmt.Errorf("%w: dataset %q has a null dataspace", ErrUnsupported, path)
	}
	n, ok := ElementCount(ds.dims)
	if !ok {
		return nil, fmt.Errorf("%w: dataset %q dimensions %v overflow", ErrUnsupported, path, ds.dims)
	}

	layout := hdr.DataLayout()
	switch layout.Class {
	case message.LayoutContiguous:
		if l.r.IsUndefinedOffset(layout.Address) {
			// Never written: the payload is all fill values.
			if n*float64Size > maxUnallocatedBytes {
				return nil, fmt.Errorf("%w: dataset %q has %d unallocated values", ErrUnsupported, path, n)
			}
			ds.values = make([]float64, n)
			ds.resident = true
			return ds, nil
		}
		if layout.Size != n*float64Size {
			return nil, fmt.Errorf("%w: dataset %q stores %d bytes for %d values", ErrUnsupported, path, layout.Size, n)
		}
		if layout.Address > l.eof || layout.Size > l.eof-layout.Address {
			return nil, fmt.Errorf("%w: dataset %q payload lies past end of file", ErrUnsupported, path)
		}
		ds.src = extent{addr: layout.Address, size: layout.Size}
	case message.LayoutCompact:
		if uint64(len(layout.CompactData)) != n*float64Size {
			return nil, fmt.Errorf("%w: dataset %q stores %d bytes for %d values", ErrUnsupported, path, len(layout.CompactData), n)
		}
		values, err := binary.DecodeFloat64s(layout.CompactData, l.r.ByteOrder())
		if err != nil {
			return nil, fmt.Errorf("decoding %q: %w", path, err)
		}
		ds.values = values
		ds.resident = true
	default:
		return nil, fmt.Errorf("%w: dataset %q has layout class %d", ErrUnsupported, path, layout.Class)
	}
	return ds, nil
}

// payload returns a dataset's values, reading them from the source when
// they are not resident. The returned slice must not be modified.
func (s *Store) payload(d *dataset) ([]float64, error) {
	if d.resident {
		return d.values, nil
	}
	n, _ := ElementCount(d.dims)
	if n == 0 {
		return []float64{}, nil
	}
	if s.reader == nil {
		return nil, fmt.Errorf("%w: payload source is not open", ErrIO)
	}
	values, err := s.reader.At(int64(d.src.addr)).ReadFloat64s(int(n))
	if err != nil {
		return nil, fmt.Errorf("%w: reading payload at 0x%x: %w", ErrIO, d.src.addr, err)
	}
	return values, nil
}

func displayPath(p string) string {
	if p == "" {
		return Separator
	}
	return p
}
