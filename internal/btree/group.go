package btree

import (
	"encoding/binary"
	"errors"
	"fmt"

	binpkg "github.com/robert-malhotra/go-h5store/internal/binary"
	"github.com/robert-malhotra/go-h5store/internal/heap"
)

// Signatures of B-tree nodes and symbol table nodes.
var (
	SignatureNode       = []byte{'T', 'R', 'E', 'E'}
	SignatureSymbolNode = []byte{'S', 'N', 'O', 'D'}
)

var ErrInvalidNode = errors.New("invalid group B-tree")

// maxLevel bounds the tree height; real group trees are a few levels deep.
const maxLevel = 64

// Symbol table entry cache types.
const (
	cacheNone     = 0
	cacheHeader   = 1
	cacheSoftLink = 2
)

// Entry is one member of an old-style group.
type Entry struct {
	Name          string
	ObjectAddress uint64
	// SoftLink is set for symbolic links; Target holds the link value and
	// ObjectAddress is meaningless.
	SoftLink bool
	Target   string
}

/*
Version 1 B-tree node (group nodes are type 0):
Offset  Size  Description
0       4     Signature ("TREE")
4       1     Node type
5       1     Node level (0 = leaf)
6       2     Entries used
8       O     Left sibling address
8+O     O     Right sibling address
8+2O    var   key0, child0, key1, child1, ..., keyN

Group keys are L-byte heap offsets. Leaf children are symbol table nodes:
0       4     Signature ("SNOD")
4       1     Version (1)
5       1     Reserved
6       2     Number of symbols
8       var   Symbol table entries, each:
              O name offset, O object header address,
              4 cache type, 4 reserved, 16 scratch pad
*/

// ReadGroup returns every member of the group whose B-tree root is at
// address, in tree order. Names are resolved through lh.
func ReadGroup(r *binpkg.Reader, address uint64, lh *heap.LocalHeap) ([]Entry, error) {
	w := &walker{r: r, lh: lh, seen: make(map[uint64]bool)}
	if err := w.node(address, -1); err != nil {
		return nil, err
	}
	return w.entries, nil
}

type walker struct {
	r       *binpkg.Reader
	lh      *heap.LocalHeap
	seen    map[uint64]bool
	entries []Entry
}

// node visits the B-tree node at address. want is the level the parent
// expects, or -1 at the root.
func (w *walker) node(address uint64, want int) error {
	if w.seen[address] {
		return fmt.Errorf("%w: node %d visited twice", ErrInvalidNode, address)
	}
	w.seen[address] = true

	nr := w.r.At(int64(address))
	head, err := nr.ReadBytes(8)
	if err != nil {
		return fmt.Errorf("reading B-tree node at %d: %w", address, err)
	}
	if string(head[:4]) != string(SignatureNode) {
		return fmt.Errorf("%w: bad signature %q at %d", ErrInvalidNode, head[:4], address)
	}
	if head[4] != 0 {
		return fmt.Errorf("%w: node type %d at %d is not a group node", ErrInvalidNode, head[4], address)
	}
	level := int(head[5])
	if level > maxLevel || (want >= 0 && level != want) {
		return fmt.Errorf("%w: node at %d has level %d", ErrInvalidNode, address, level)
	}
	used := int(binary.LittleEndian.Uint16(head[6:]))

	// Siblings.
	nr.Skip(2 * int64(w.r.OffsetSize()))

	for i := 0; i < used; i++ {
		nr.Skip(int64(w.r.LengthSize()))
		child, err := nr.ReadOffset()
		if err != nil {
			return fmt.Errorf("reading B-tree node at %d: %w", address, err)
		}
		if level == 0 {
			err = w.symbolNode(child)
		} else {
			err = w.node(child, level-1)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) symbolNode(address uint64) error {
	if w.seen[address] {
		return fmt.Errorf("%w: symbol node %d visited twice", ErrInvalidNode, address)
	}
	w.seen[address] = true

	nr := w.r.At(int64(address))
	head, err := nr.ReadBytes(8)
	if err != nil {
		return fmt.Errorf("reading symbol node at %d: %w", address, err)
	}
	if string(head[:4]) != string(SignatureSymbolNode) {
		return fmt.Errorf("%w: bad symbol node signature %q at %d", ErrInvalidNode, head[:4], address)
	}
	if head[4] != 1 {
		return fmt.Errorf("%w: symbol node version %d", ErrInvalidNode, head[4])
	}
	count := int(binary.LittleEndian.Uint16(head[6:]))

	for i := 0; i < count; i++ {
		e, err := w.entry(nr)
		if err != nil {
			return fmt.Errorf("symbol node at %d, entry %d: %w", address, i, err)
		}
		w.entries = append(w.entries, e)
	}
	return nil
}

func (w *walker) entry(nr *binpkg.Reader) (Entry, error) {
	var e Entry
	nameOffset, err := nr.ReadOffset()
	if err != nil {
		return e, err
	}
	if e.ObjectAddress, err = nr.ReadOffset(); err != nil {
		return e, err
	}
	cache, err := nr.ReadUint32()
	if err != nil {
		return e, err
	}
	nr.Skip(4)
	scratch, err := nr.ReadBytes(16)
	if err != nil {
		return e, err
	}

	if e.Name, err = w.lh.String(nameOffset); err != nil {
		return e, err
	}
	switch cache {
	case cacheNone, cacheHeader:
	case cacheSoftLink:
		e.SoftLink = true
		e.ObjectAddress = 0
		if e.Target, err = w.lh.String(uint64(binary.LittleEndian.Uint32(scratch))); err != nil {
			return e, err
		}
	default:
		return e, fmt.Errorf("%w: cache type %d", ErrInvalidNode, cache)
	}
	return e, nil
}
