package message

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-h5store/internal/binary"
)

// Type identifies a header message.
type Type uint16

// Header message types. Only the ones the store reads or writes are listed;
// anything else parses as [Unknown].
const (
	TypeNIL                      Type = 0x0000
	TypeDataspace                Type = 0x0001
	TypeLinkInfo                 Type = 0x0002
	TypeDatatype                 Type = 0x0003
	TypeFillValue                Type = 0x0005
	TypeLink                     Type = 0x0006
	TypeDataLayout               Type = 0x0008
	TypeGroupInfo                Type = 0x000A
	TypeFilterPipeline           Type = 0x000B
	TypeAttribute                Type = 0x000C
	TypeObjectHeaderContinuation Type = 0x0010
	TypeSymbolTable              Type = 0x0011
)

// ErrMalformed is returned when a message body is shorter than its fields.
var ErrMalformed = errors.New("malformed header message")

// Message is implemented by all header messages.
type Message interface {
	Type() Type
}

// Serializable is implemented by messages the store can write.
type Serializable interface {
	Message
	// Serialize writes the message body at the writer's position.
	Serialize(w *binary.Writer) error
	// SerializedSize returns the encoded body size.
	SerializedSize(w *binary.Writer) int
}

// Parse decodes a message body. r supplies the offset/length widths.
func Parse(typ Type, data []byte, r *binary.Reader) (Message, error) {
	var (
		msg Message
		err error
	)
	switch typ {
	case TypeDataspace:
		msg, err = parseDataspace(data, r)
	case TypeDatatype:
		msg, err = parseDatatype(data)
	case TypeDataLayout:
		msg, err = parseDataLayout(data, r)
	case TypeLink:
		msg, err = parseLink(data, r)
	case TypeLinkInfo:
		msg, err = parseLinkInfo(data, r)
	case TypeGroupInfo:
		msg, err = parseGroupInfo(data)
	case TypeSymbolTable:
		msg, err = parseSymbolTable(data, r)
	default:
		return &Unknown{typ: typ, data: data}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("message type 0x%04x: %w", uint16(typ), err)
	}
	return msg, nil
}

// Unknown is a message type the store does not interpret.
type Unknown struct {
	typ  Type
	data []byte
}

func (m *Unknown) Type() Type   { return m.typ }
func (m *Unknown) Data() []byte { return m.data }

func truncated(what string) error {
	return fmt.Errorf("%w: %s truncated", ErrMalformed, what)
}
