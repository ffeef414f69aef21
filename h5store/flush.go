package h5store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-h5store/internal/alloc"
	"github.com/robert-malhotra/go-h5store/internal/binary"
	"github.com/robert-malhotra/go-h5store/internal/message"
	"github.com/robert-malhotra/go-h5store/internal/object"
	"github.com/robert-malhotra/go-h5store/internal/superblock"
)

// dataAlignment is the alignment of raw data blocks.
const dataAlignment = 8

// placement records where flush puts each object of the tree.
type placement struct {
	alloc    *alloc.Allocator
	groups   []placedGroup
	datasets []placedDataset
	addrOf   map[any]uint64
}

type placedGroup struct {
	g    *group
	path string
	addr uint64
}

type placedDataset struct {
	d    *dataset
	path string
	addr uint64
	data extent
}

// plan assigns an address to every header and payload. Headers come first
// in depth-first order (children by name), then the payloads, each aligned
// to dataAlignment. Header sizes do not depend on addresses, so one pass
// over the tree is enough.
func (s *Store) plan(w *binary.Writer, sb *superblock.Superblock) (*placement, error) {
	p := &placement{
		alloc:  alloc.New(uint64(sb.Size())),
		addrOf: make(map[any]uint64),
	}

	var walk func(g *group, path string)
	walk = func(g *group, path string) {
		names := g.names()
		links := make([]*message.Link, len(names))
		for i, name := range names {
			links[i] = message.NewHardLink(name, 0)
		}
		size := object.HeaderSize(w, object.NewGroupHeader(links))
		addr := p.alloc.Alloc(uint64(size), "group "+displayPath(path))
		p.groups = append(p.groups, placedGroup{g: g, path: path, addr: addr})
		p.addrOf[g] = addr

		for _, name := range names {
			childPath := name
			if path != "" {
				childPath = joinPath(path, name)
			}
			if sub, ok := g.groups[name]; ok {
				walk(sub, childPath)
				continue
			}
			d := g.datasets[name]
			size := object.HeaderSize(w, datasetHeader(w, d, extent{}))
			addr := p.alloc.Alloc(uint64(size), "dataset "+childPath)
			p.datasets = append(p.datasets, placedDataset{d: d, path: childPath, addr: addr})
			p.addrOf[d] = addr
		}
	}
	walk(s.root, "")

	for i := range p.datasets {
		pd := &p.datasets[i]
		size := pd.d.payloadSize()
		if size == 0 {
			pd.data = extent{addr: w.UndefinedOffset()}
			continue
		}
		pd.data = extent{
			addr: p.alloc.AllocAligned(size, dataAlignment, "data "+pd.path),
			size: size,
		}
	}

	if err := p.alloc.Validate(); err != nil {
		return nil, fmt.Errorf("laying out container: %w", err)
	}
	return p, nil
}

func datasetHeader(w *binary.Writer, d *dataset, data extent) []message.Serializable {
	addr := data.addr
	if data.size == 0 {
		addr = w.UndefinedOffset()
	}
	return object.NewDatasetHeader(
		message.NewDataspace(d.dims),
		message.NewFloat64Datatype(),
		message.NewContiguousLayout(addr, data.size),
	)
}

// flush writes the whole tree into a temporary file next to the target,
// syncs it and renames it over the target. The target is either fully
// replaced or left untouched. Afterwards the new file becomes the source
// and payloads are released from memory.
func (s *Store) flush() (err error) {
	start := time.Now()
	defer func() {
		s.metrics.flushDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			s.metrics.flushErrors.Inc()
		}
	}()

	dir, base := filepath.Split(s.path)
	tmpName := filepath.Join(dir, "."+base+"."+uuid.NewString()+".tmp")
	tmp, err := os.OpenFile(tmpName, os.O_RDWR|os.O_CREATE|os.O_EXCL, s.opts.fileMode)
	if err != nil {
		return err
	}

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			if rerr := os.Remove(tmpName); rerr != nil && !os.IsNotExist(rerr) {
				s.logger.Warn("failed to remove temporary container", zapPath(tmpName), zap.Error(rerr))
			}
		}
	}()

	sb := superblock.New()
	w := binary.NewWriter(tmp, sb.ReaderConfig())
	p, err := s.plan(w, sb)
	if err != nil {
		return err
	}
	if err := s.writeContainer(w, sb, p); err != nil {
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Truncate(int64(p.alloc.EOFAddr())); err != nil {
		return err
	}
	if s.opts.sync {
		if err := tmp.Sync(); err != nil {
			return err
		}
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return err
	}
	success = true

	stats := p.alloc.Stats()
	s.logger.Debug("flushed container",
		zapPath(s.path),
		zap.Int("groups", len(p.groups)),
		zap.Int("datasets", len(p.datasets)),
		zap.Uint64("bytes", p.alloc.EOFAddr()),
		zap.Uint64("padding", stats.PaddingBytes),
	)

	if err := s.reopen(p); err != nil {
		return fmt.Errorf("reopening %s: %w", s.path, err)
	}
	s.dirty = false
	return nil
}

func (s *Store) writeContainer(w *binary.Writer, sb *superblock.Superblock, p *placement) error {
	sb.RootGroupAddress = p.addrOf[s.root]
	sb.EOFAddress = p.alloc.EOFAddr()
	if _, err := sb.Write(w.At(0)); err != nil {
		return fmt.Errorf("superblock: %w", err)
	}

	for _, pg := range p.groups {
		names := pg.g.names()
		links := make([]*message.Link, len(names))
		for i, name := range names {
			var target any = pg.g.datasets[name]
			if sub, ok := pg.g.groups[name]; ok {
				target = sub
			}
			links[i] = message.NewHardLink(name, p.addrOf[target])
		}
		if _, err := object.WriteHeader(w.At(int64(pg.addr)), object.NewGroupHeader(links)); err != nil {
			return fmt.Errorf("group %q: %w", displayPath(pg.path), err)
		}
	}

	for _, pd := range p.datasets {
		if _, err := object.WriteHeader(w.At(int64(pd.addr)), datasetHeader(w, pd.d, pd.data)); err != nil {
			return fmt.Errorf("dataset %q: %w", pd.path, err)
		}
		if pd.data.size == 0 {
			continue
		}
		values, err := s.payload(pd.d)
		if err != nil {
			return fmt.Errorf("dataset %q: %w", pd.path, err)
		}
		if err := w.At(int64(pd.data.addr)).WriteFloat64s(values); err != nil {
			return fmt.Errorf("dataset %q payload: %w", pd.path, err)
		}
	}
	return nil
}

// reopen makes the freshly written container the payload source and points
// every dataset at its new extent.
func (s *Store) reopen(p *placement) error {
	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	if err := s.closeSource(); err != nil {
		s.logger.Warn("failed to close previous container", zapPath(s.path), zap.Error(err))
	}
	s.source = f
	s.reader = binary.NewReader(f, binary.DefaultConfig())

	for _, pd := range p.datasets {
		if pd.data.size == 0 {
			// Nothing on disk; keep an empty resident payload.
			pd.d.values = make([]float64, 0)
			pd.d.resident = true
			continue
		}
		pd.d.values = nil
		pd.d.resident = false
		pd.d.src = pd.data
	}
	return nil
}
