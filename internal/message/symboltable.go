package message

import (
	binpkg "github.com/robert-malhotra/go-h5store/internal/binary"
)

// SymbolTable marks an old-style group (type 0x0011). Its members are the
// entries of a version 1 B-tree whose names live in a local heap.
type SymbolTable struct {
	BTreeAddress     uint64
	LocalHeapAddress uint64
}

func (m *SymbolTable) Type() Type { return TypeSymbolTable }

func parseSymbolTable(data []byte, r *binpkg.Reader) (*SymbolTable, error) {
	o := r.OffsetSize()
	if len(data) < 2*o {
		return nil, truncated("symbol table")
	}
	return &SymbolTable{
		BTreeAddress:     binpkg.DecodeUint(data, o, r.ByteOrder()),
		LocalHeapAddress: binpkg.DecodeUint(data[o:], o, r.ByteOrder()),
	}, nil
}
