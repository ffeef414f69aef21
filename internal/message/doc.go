// Package message encodes and decodes the object header messages the store
// uses to describe groups and datasets.
//
// # Message Types
//
//   - Dataspace (0x0001): dataset dimensions. See [Dataspace].
//   - Link Info (0x0002): marks a group with compact links. See [LinkInfo].
//   - Datatype (0x0003): element type. See [Datatype].
//   - Link (0x0006): a named child of a group. See [Link].
//   - Data Layout (0x0008): where raw data lives. See [DataLayout].
//   - Group Info (0x000A): group storage hints. See [GroupInfo].
//   - Symbol Table (0x0011): old-style group index, read only. See [SymbolTable].
//
// Other message types parse as [Unknown] so headers written by other tools
// can still be walked.
//
// # Parsing
//
//	msg, err := message.Parse(msgType, msgData, reader)
//
// The reader supplies the file's offset and length widths.
//
// # Writing
//
// Every message the store writes implements [Serializable]. Object header
// code sizes each message with SerializedSize before laying out the chunk.
package message
