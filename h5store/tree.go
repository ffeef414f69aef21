package h5store

import (
	"math/bits"
	"sort"
)

// group is a node of the in-memory container tree. A name is either a
// child group or a dataset, never both.
type group struct {
	groups   map[string]*group
	datasets map[string]*dataset
}

func newGroup() *group {
	return &group{
		groups:   make(map[string]*group),
		datasets: make(map[string]*dataset),
	}
}

// has reports whether name is taken by a group or a dataset.
func (g *group) has(name string) bool {
	_, isGroup := g.groups[name]
	_, isDataset := g.datasets[name]
	return isGroup || isDataset
}

// names returns the sorted names of all children.
func (g *group) names() []string {
	names := make([]string, 0, len(g.groups)+len(g.datasets))
	for name := range g.groups {
		names = append(names, name)
	}
	for name := range g.datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// extent locates a payload in the source container.
type extent struct {
	addr uint64
	size uint64
}

// dataset is a leaf of the tree. Its payload is either resident (written
// this session) or an extent in the source container, read on demand.
type dataset struct {
	dims     []uint64
	values   []float64
	resident bool
	src      extent
}

func newResidentDataset(dims []uint64, values []float64) *dataset {
	return &dataset{
		dims:     append([]uint64(nil), dims...),
		values:   append([]float64(nil), values...),
		resident: true,
	}
}

// payloadSize returns the encoded payload size in bytes. Dimensions are
// validated on write and load, so the product cannot overflow here.
func (d *dataset) payloadSize() uint64 {
	n, _ := ElementCount(d.dims)
	return n * float64Size
}

// ElementCount returns product(dims), 1 for a scalar. ok is false when the
// product or its size in bytes overflows.
func ElementCount(dims []uint64) (n uint64, ok bool) {
	n = 1
	for _, d := range dims {
		hi, lo := bits.Mul64(n, d)
		if hi != 0 {
			return 0, false
		}
		n = lo
	}
	if hi, _ := bits.Mul64(n, float64Size); hi != 0 {
		return 0, false
	}
	return n, true
}
