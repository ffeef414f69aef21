package h5store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-h5store/internal/binary"
)

// Store is a handle on one container file at a time. It starts Closed;
// Open loads a container and Close persists it. A Store is not safe for
// concurrent use.
type Store struct {
	ThresholdPolicy

	opts    *options
	logger  *zap.Logger
	metrics *metrics

	open  bool
	mode  AccessMode
	path  string
	dirty bool

	// source is the container the tree was loaded from; nil when the
	// tree started empty. Non-resident payloads are read through reader.
	source *os.File
	reader *binary.Reader
	root   *group
}

// New returns a Closed store.
func New(opts ...Option) *Store {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	s := &Store{
		opts:    o,
		logger:  o.logger,
		metrics: newMetrics(o.registerer),
	}
	s.SetThreshold(o.threshold)
	return s
}

// Open opens the container at path in the given mode.
//
// ReadOnly requires an existing, valid container. ReadWriteAppend loads an
// existing container or starts empty when path does not exist.
// ReadWriteTruncate starts empty. Both writable modes write the container
// to path before returning when starting empty, so an unwritable location
// fails here rather than at Close.
func (s *Store) Open(path string, mode AccessMode) error {
	if s.open {
		return fmt.Errorf("%w: %s", ErrAlreadyOpen, s.path)
	}
	if path == "" {
		return fmt.Errorf("%w: empty file path", ErrInvalidPath)
	}

	var (
		startEmpty bool
		err        error
	)
	switch mode {
	case ReadOnly:
		err = s.load(path)
	case ReadWriteAppend:
		_, statErr := os.Stat(path)
		switch {
		case errors.Is(statErr, fs.ErrNotExist):
			startEmpty = true
		case statErr != nil:
			err = statErr
		default:
			err = s.load(path)
		}
	case ReadWriteTruncate:
		startEmpty = true
	default:
		return fmt.Errorf("%w: access mode %d", ErrUnsupported, int(mode))
	}
	if err != nil {
		return fmt.Errorf("%w: opening %s: %w", ErrIO, path, err)
	}

	s.open = true
	s.mode = mode
	s.path = path

	if startEmpty {
		s.root = newGroup()
		if err := s.flush(); err != nil {
			s.reset()
			return fmt.Errorf("%w: creating %s: %w", ErrIO, path, err)
		}
	}

	s.logger.Debug("opened container",
		zapPath(path),
		zap.Stringer("mode", mode),
		zap.Bool("empty", startEmpty),
	)
	return nil
}

// Close persists pending changes (writable modes) and releases the file.
// The store is Closed afterwards even when persisting fails; that failure
// is reported as ErrIO.
func (s *Store) Close() error {
	if !s.open {
		return ErrNotOpen
	}

	var err error
	if s.mode.writable() && s.dirty {
		if ferr := s.flush(); ferr != nil {
			err = fmt.Errorf("%w: flushing %s: %w", ErrIO, s.path, ferr)
		}
	}
	path := s.path
	if cerr := s.closeSource(); cerr != nil {
		err = multierr.Append(err, fmt.Errorf("%w: closing %s: %w", ErrIO, path, cerr))
	}
	s.reset()

	if err != nil {
		s.logger.Warn("closed container with error", zapPath(path), zap.Error(err))
		return err
	}
	s.logger.Debug("closed container", zapPath(path))
	return nil
}

// Flush persists the current tree without closing the store. It is a no-op
// in ReadOnly mode or when nothing changed since the last flush.
func (s *Store) Flush() error {
	if !s.open {
		return ErrNotOpen
	}
	if !s.mode.writable() || !s.dirty {
		return nil
	}
	if err := s.flush(); err != nil {
		return fmt.Errorf("%w: flushing %s: %w", ErrIO, s.path, err)
	}
	return nil
}

// IsOpen reports whether a container is open.
func (s *Store) IsOpen() bool {
	return s.open
}

// Mode returns the access mode of the open container.
func (s *Store) Mode() AccessMode {
	return s.mode
}

// Path returns the file path of the open container, or "" when Closed.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) checkOpen() error {
	if !s.open {
		return ErrNotOpen
	}
	return nil
}

func (s *Store) checkWritable() error {
	if !s.open {
		return ErrNotOpen
	}
	if !s.mode.writable() {
		return fmt.Errorf("%w: %s", ErrReadOnly, s.path)
	}
	return nil
}

func (s *Store) closeSource() error {
	if s.source == nil {
		return nil
	}
	err := s.source.Close()
	s.source = nil
	s.reader = nil
	return err
}

func (s *Store) reset() {
	_ = s.closeSource()
	s.open = false
	s.mode = ReadOnly
	s.path = ""
	s.dirty = false
	s.root = nil
}

func zapPath(p string) zap.Field {
	return zap.String("path", p)
}
