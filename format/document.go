package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/robert-malhotra/go-h5store/h5store"
)

// Array is a named dense float64 array in row-major order.
type Array struct {
	Name   string
	Dims   []uint64
	Values []float64
}

// Document is the in-memory payload a FileFormat reads into and writes from.
// Array names follow the dataset path rules of h5store.
type Document struct {
	arrays map[string]*Array
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{arrays: make(map[string]*Array)}
}

// Set stores a copy of dims and values under name, replacing any array of
// the same name. A leading separator is dropped, so "/x" and "x" are one
// array. A name may not be both an array and the group of another array.
func (d *Document) Set(name string, dims []uint64, values []float64) error {
	if _, _, err := h5store.SplitPath(name); err != nil {
		return fmt.Errorf("array %q: %w", name, err)
	}
	n, ok := h5store.ElementCount(dims)
	if !ok || uint64(len(values)) != n {
		return fmt.Errorf("array %q: %w: %d values for dimensions %v",
			name, h5store.ErrDimensionMismatch, len(values), dims)
	}
	name = canonicalName(name)
	if err := d.conflict(name); err != nil {
		return err
	}
	if d.arrays == nil {
		d.arrays = make(map[string]*Array)
	}
	d.arrays[name] = &Array{
		Name:   name,
		Dims:   append([]uint64(nil), dims...),
		Values: append([]float64(nil), values...),
	}
	return nil
}

// conflict reports whether name would sit under an existing array, or an
// existing array under name.
func (d *Document) conflict(name string) error {
	for other := range d.arrays {
		switch {
		case strings.HasPrefix(name, other+h5store.Separator):
			return fmt.Errorf("array %q: %w: %s is an array", name, h5store.ErrNotGroup, other)
		case strings.HasPrefix(other, name+h5store.Separator):
			return fmt.Errorf("array %q: %w: it holds array %s", name, h5store.ErrNotDataset, other)
		}
	}
	return nil
}

func canonicalName(name string) string {
	return strings.TrimPrefix(name, h5store.Separator)
}

// Get returns the array stored under name.
func (d *Document) Get(name string) (*Array, bool) {
	a, ok := d.arrays[canonicalName(name)]
	return a, ok
}

// Names returns the array names in lexicographic order.
func (d *Document) Names() []string {
	names := make([]string, 0, len(d.arrays))
	for name := range d.arrays {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Document) Len() int { return len(d.arrays) }

// Clear removes every array.
func (d *Document) Clear() {
	d.arrays = make(map[string]*Array)
}
