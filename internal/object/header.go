package object

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-h5store/internal/binary"
	"github.com/robert-malhotra/go-h5store/internal/message"
)

// Object header signatures
var (
	SignatureV2           = []byte{'O', 'H', 'D', 'R'}
	SignatureContinuation = []byte{'O', 'C', 'H', 'K'}
)

// Errors
var (
	ErrInvalidHeader      = errors.New("invalid object header")
	ErrUnsupportedVersion = errors.New("unsupported object header version")
	ErrChecksumMismatch   = errors.New("object header checksum mismatch")
)

// Kind classifies an object by the messages in its header.
type Kind int

const (
	KindUnknown Kind = iota
	KindGroup
	KindDataset
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindDataset:
		return "dataset"
	default:
		return "unknown"
	}
}

// Header is a parsed object header.
type Header struct {
	// Version is 1 or 2.
	Version uint8

	// Address is the file address where this header was found.
	Address uint64

	// Flags are the header flags byte.
	Flags uint8

	// Messages holds every non-NIL message, continuation blocks included.
	Messages []message.Message
}

// GetMessage returns the first message of the given type, or nil if not found.
func (h *Header) GetMessage(typ message.Type) message.Message {
	for _, msg := range h.Messages {
		if msg.Type() == typ {
			return msg
		}
	}
	return nil
}

// GetMessages returns all messages of the given type.
func (h *Header) GetMessages(typ message.Type) []message.Message {
	var result []message.Message
	for _, msg := range h.Messages {
		if msg.Type() == typ {
			result = append(result, msg)
		}
	}
	return result
}

// Dataspace returns the dataspace message if present.
func (h *Header) Dataspace() *message.Dataspace {
	msg, _ := h.GetMessage(message.TypeDataspace).(*message.Dataspace)
	return msg
}

// Datatype returns the datatype message if present.
func (h *Header) Datatype() *message.Datatype {
	msg, _ := h.GetMessage(message.TypeDatatype).(*message.Datatype)
	return msg
}

// DataLayout returns the data layout message if present.
func (h *Header) DataLayout() *message.DataLayout {
	msg, _ := h.GetMessage(message.TypeDataLayout).(*message.DataLayout)
	return msg
}

// LinkInfo returns the link info message if present.
func (h *Header) LinkInfo() *message.LinkInfo {
	msg, _ := h.GetMessage(message.TypeLinkInfo).(*message.LinkInfo)
	return msg
}

// SymbolTable returns the symbol table message of an old-style group.
func (h *Header) SymbolTable() *message.SymbolTable {
	msg, _ := h.GetMessage(message.TypeSymbolTable).(*message.SymbolTable)
	return msg
}

// Links returns the group's link messages in header order.
func (h *Header) Links() []*message.Link {
	var links []*message.Link
	for _, msg := range h.GetMessages(message.TypeLink) {
		links = append(links, msg.(*message.Link))
	}
	return links
}

// Kind reports whether the header describes a group or a dataset.
func (h *Header) Kind() Kind {
	switch {
	case h.Dataspace() != nil && h.DataLayout() != nil:
		return KindDataset
	case h.LinkInfo() != nil || h.GetMessage(message.TypeLink) != nil || h.SymbolTable() != nil:
		return KindGroup
	default:
		return KindUnknown
	}
}

// Read parses the object header at address.
func Read(r *binary.Reader, address uint64) (*Header, error) {
	hr := r.At(int64(address))

	peek, err := hr.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("reading object header at %d: %w", address, err)
	}
	switch {
	case string(peek) == string(SignatureV2):
		return readV2(hr, address)
	case peek[0] == 1:
		return readV1(hr, address)
	}
	return nil, fmt.Errorf("%w: no object header at address %d", ErrInvalidHeader, address)
}
