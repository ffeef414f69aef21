package alloc

import (
	"fmt"
	"sort"
)

// Allocator hands out non-overlapping address ranges starting at a base.
type Allocator struct {
	eofAddr     uint64
	baseAddr    uint64
	allocations []Allocation
	stats       Stats
}

// Allocation is a single reserved range.
type Allocation struct {
	Addr uint64
	Size uint64
	Tag  string
}

// Stats summarizes the allocations made so far.
type Stats struct {
	TotalAllocations uint64
	TotalBytesAlloc  uint64
	PaddingBytes     uint64
	LargestAlloc     uint64
}

// New creates an allocator whose first block starts at baseAddr,
// typically the end of the superblock.
func New(baseAddr uint64) *Allocator {
	return &Allocator{
		eofAddr:  baseAddr,
		baseAddr: baseAddr,
	}
}

// Alloc reserves size bytes at the current end of file.
// A zero-size request returns the current EOF and reserves nothing.
func (a *Allocator) Alloc(size uint64, tag string) uint64 {
	if size == 0 {
		return a.eofAddr
	}

	addr := a.eofAddr
	a.eofAddr += size

	a.allocations = append(a.allocations, Allocation{Addr: addr, Size: size, Tag: tag})
	a.stats.TotalAllocations++
	a.stats.TotalBytesAlloc += size
	if size > a.stats.LargestAlloc {
		a.stats.LargestAlloc = size
	}
	return addr
}

// AllocAligned reserves size bytes starting on an alignment boundary.
func (a *Allocator) AllocAligned(size, alignment uint64, tag string) uint64 {
	if alignment > 1 {
		if rem := a.eofAddr % alignment; rem != 0 {
			pad := alignment - rem
			a.eofAddr += pad
			a.stats.PaddingBytes += pad
		}
	}
	return a.Alloc(size, tag)
}

// EOFAddr returns the address one past the last reserved byte.
func (a *Allocator) EOFAddr() uint64 {
	return a.eofAddr
}

// BaseAddr returns the first allocatable address.
func (a *Allocator) BaseAddr() uint64 {
	return a.baseAddr
}

// Stats returns a copy of the allocation statistics.
func (a *Allocator) Stats() Stats {
	return a.stats
}

// Allocations returns a copy of all reserved ranges in allocation order.
func (a *Allocator) Allocations() []Allocation {
	out := make([]Allocation, len(a.allocations))
	copy(out, a.allocations)
	return out
}

// Validate checks that every range lies in [base, EOF) and that no two overlap.
func (a *Allocator) Validate() error {
	sorted := a.Allocations()
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Addr < sorted[j].Addr })

	for i, al := range sorted {
		if al.Addr < a.baseAddr {
			return fmt.Errorf("allocation %q at 0x%x is before base address 0x%x", al.Tag, al.Addr, a.baseAddr)
		}
		if al.Addr+al.Size > a.eofAddr {
			return fmt.Errorf("allocation %q at 0x%x size %d extends past EOF 0x%x", al.Tag, al.Addr, al.Size, a.eofAddr)
		}
		if i > 0 {
			prev := sorted[i-1]
			if prev.Addr+prev.Size > al.Addr {
				return fmt.Errorf("overlapping allocations: %q [0x%x, size %d] and %q [0x%x, size %d]",
					prev.Tag, prev.Addr, prev.Size, al.Tag, al.Addr, al.Size)
			}
		}
	}
	return nil
}
