// Package heap reads local heaps, the name storage of old-style groups.
//
// Files written by libhdf5 with default settings keep group members in a
// version 1 B-tree of symbol table entries. Each entry names its member by
// an offset into the group's local heap:
//
//	lh, err := heap.ReadLocal(reader, symtab.LocalHeapAddress)
//	name, err := lh.String(entry.NameOffset)
//
// The store never writes local heaps; its own groups hold link messages.
package heap
