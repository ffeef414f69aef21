package alloc

import (
	"testing"
)

func TestAllocatorBasic(t *testing.T) {
	a := New(48)

	addr1 := a.Alloc(100, "root")
	if addr1 != 48 {
		t.Errorf("first allocation: got 0x%x, want 0x%x", addr1, 48)
	}

	addr2 := a.Alloc(200, "child")
	if addr2 != 148 {
		t.Errorf("second allocation: got 0x%x, want 0x%x", addr2, 148)
	}

	if a.EOFAddr() != 348 {
		t.Errorf("EOF: got 0x%x, want 0x%x", a.EOFAddr(), 348)
	}
}

func TestAllocatorZeroSize(t *testing.T) {
	a := New(100)

	if addr := a.Alloc(0, "empty"); addr != 100 {
		t.Errorf("zero allocation: got 0x%x, want 0x%x", addr, 100)
	}
	if a.EOFAddr() != 100 {
		t.Errorf("EOF after zero alloc: got 0x%x, want 0x%x", a.EOFAddr(), 100)
	}
	if len(a.Allocations()) != 0 {
		t.Errorf("zero allocation should not be recorded")
	}
}

func TestAllocatorAligned(t *testing.T) {
	a := New(100)
	a.Alloc(13, "header") // EOF now 113

	addr := a.AllocAligned(50, 8, "data")
	if addr != 120 {
		t.Errorf("aligned allocation: got 0x%x, want 0x%x", addr, 120)
	}
	if got := a.Stats().PaddingBytes; got != 7 {
		t.Errorf("PaddingBytes: got %d, want 7", got)
	}

	// Already aligned: no padding added.
	addr = a.AllocAligned(8, 2, "data")
	if addr != 170 {
		t.Errorf("aligned allocation: got 0x%x, want 0x%x", addr, 170)
	}
}

func TestAllocatorStats(t *testing.T) {
	a := New(0)

	a.Alloc(100, "")
	a.Alloc(200, "")
	a.Alloc(50, "")

	stats := a.Stats()
	if stats.TotalAllocations != 3 {
		t.Errorf("TotalAllocations: got %d, want 3", stats.TotalAllocations)
	}
	if stats.TotalBytesAlloc != 350 {
		t.Errorf("TotalBytesAlloc: got %d, want 350", stats.TotalBytesAlloc)
	}
	if stats.LargestAlloc != 200 {
		t.Errorf("LargestAlloc: got %d, want 200", stats.LargestAlloc)
	}
}

func TestAllocatorValidate(t *testing.T) {
	a := New(100)
	a.Alloc(50, "a")
	a.AllocAligned(30, 16, "b")

	if err := a.Validate(); err != nil {
		t.Errorf("Validate failed on valid allocations: %v", err)
	}

	a.allocations = append(a.allocations, Allocation{Addr: 120, Size: 10, Tag: "overlap"})
	if err := a.Validate(); err == nil {
		t.Error("Validate should report overlapping allocations")
	}
}
