// Package btree reads the version 1 B-trees that index old-style groups.
//
// A group written by libhdf5 with default settings carries a symbol table
// message naming a B-tree and a local heap. The tree's leaves point to
// symbol table nodes ("SNOD") whose entries give each member's name offset
// and object header address. [ReadGroup] walks the whole tree and returns
// the members in tree order.
//
// Chunk-index B-trees are not read: the store only handles contiguous and
// compact datasets.
package btree
