package object

import (
	"fmt"
	"math"

	"github.com/robert-malhotra/go-h5store/internal/binary"
	"github.com/robert-malhotra/go-h5store/internal/message"
)

// WriteHeader writes a v2 object header at the current writer position.
// The header is assembled in memory so the checksum can be appended.
// The chunk size field holds the size of the messages only; the 4-byte
// checksum follows them.
func WriteHeader(w *binary.Writer, messages []message.Serializable) (int64, error) {
	chunkSize, err := messagesSize(w, messages)
	if err != nil {
		return 0, err
	}
	fieldSize, flags := chunkSizeField(chunkSize)

	buf := binary.NewBuffer(HeaderSize(w, messages))
	bw := binary.NewWriter(buf, w.Config())

	if err := bw.WriteBytes(SignatureV2); err != nil {
		return 0, err
	}
	if err := bw.WriteUint8(2); err != nil {
		return 0, err
	}
	if err := bw.WriteUint8(flags); err != nil {
		return 0, err
	}
	if err := bw.WriteUintN(uint64(chunkSize), fieldSize); err != nil {
		return 0, err
	}

	for _, msg := range messages {
		if err := writeMessage(bw, msg); err != nil {
			return 0, fmt.Errorf("message type 0x%04x: %w", uint16(msg.Type()), err)
		}
	}

	if err := bw.WriteUint32(binary.Lookup3Checksum(buf.Bytes())); err != nil {
		return 0, err
	}
	if err := w.WriteBytes(buf.Bytes()); err != nil {
		return 0, err
	}
	return int64(buf.Len()), nil
}

// HeaderSize returns the encoded size of a header holding messages,
// prefix and checksum included. Addresses inside the messages do not
// affect the size, so callers can size headers before placing anything.
func HeaderSize(w *binary.Writer, messages []message.Serializable) int {
	chunkSize, _ := messagesSize(w, messages)
	fieldSize, _ := chunkSizeField(chunkSize)
	// signature(4) + version(1) + flags(1) + chunk size + messages + checksum(4)
	return 4 + 1 + 1 + fieldSize + chunkSize + 4
}

func writeMessage(w *binary.Writer, msg message.Serializable) error {
	if err := w.WriteUint8(uint8(msg.Type())); err != nil {
		return err
	}
	if err := w.WriteUint16(uint16(msg.SerializedSize(w))); err != nil {
		return err
	}
	if err := w.WriteUint8(0); err != nil {
		return err
	}
	return msg.Serialize(w)
}

func messagesSize(w *binary.Writer, messages []message.Serializable) (int, error) {
	total := 0
	for _, msg := range messages {
		n := msg.SerializedSize(w)
		if n > math.MaxUint16 {
			return 0, fmt.Errorf("%w: message type 0x%04x is %d bytes", ErrInvalidHeader, uint16(msg.Type()), n)
		}
		// type(1) + size(2) + flags(1)
		total += 4 + n
	}
	return total, nil
}

// chunkSizeField returns the width of the chunk size field and the flag
// bits that encode it.
func chunkSizeField(size int) (int, uint8) {
	switch {
	case size <= math.MaxUint8:
		return 1, 0
	case size <= math.MaxUint16:
		return 2, 1
	case uint64(size) <= math.MaxUint32:
		return 4, 2
	default:
		return 8, 3
	}
}

// NewGroupHeader returns the messages for a group with the given links.
// Links are stored in the order given.
func NewGroupHeader(links []*message.Link) []message.Serializable {
	messages := make([]message.Serializable, 0, len(links)+2)
	messages = append(messages, message.NewLinkInfo(), &message.GroupInfo{})
	for _, link := range links {
		messages = append(messages, link)
	}
	return messages
}

// NewDatasetHeader returns the messages for a dataset header.
func NewDatasetHeader(dataspace *message.Dataspace, datatype *message.Datatype, layout *message.DataLayout) []message.Serializable {
	return []message.Serializable{dataspace, datatype, layout}
}
