package message

import (
	"github.com/robert-malhotra/go-h5store/internal/binary"
)

// DataspaceType is the kind of dataspace.
type DataspaceType uint8

const (
	DataspaceScalar DataspaceType = 0 // Single element
	DataspaceSimple DataspaceType = 1 // Regular N-dimensional array
	DataspaceNull   DataspaceType = 2 // No data
)

// Dataspace describes a dataset's dimensions (type 0x0001).
type Dataspace struct {
	Version    uint8
	SpaceType  DataspaceType
	Dimensions []uint64
	MaxDims    []uint64 // nil means same as Dimensions
}

func (m *Dataspace) Type() Type { return TypeDataspace }

// Rank returns the number of dimensions.
func (m *Dataspace) Rank() int {
	return len(m.Dimensions)
}

// NumElements returns the element count implied by the dataspace.
func (m *Dataspace) NumElements() uint64 {
	switch m.SpaceType {
	case DataspaceScalar:
		return 1
	case DataspaceSimple:
		n := uint64(1)
		for _, d := range m.Dimensions {
			n *= d
		}
		return n
	default:
		return 0
	}
}

// NewDataspace returns a dataspace for dims. Rank 0 is a scalar.
func NewDataspace(dims []uint64) *Dataspace {
	ds := &Dataspace{Version: 2, SpaceType: DataspaceSimple, Dimensions: dims}
	if len(dims) == 0 {
		ds.SpaceType = DataspaceScalar
	}
	return ds
}

/*
Version 1 and 2 layout:
Byte 0: Version
Byte 1: Rank
Byte 2: Flags (bit 0 = max dims present)
Byte 3: Type (v2) / reserved (v1, followed by 4 more reserved bytes)
Then rank lengths, then rank max lengths when flagged.
*/
func parseDataspace(data []byte, r *binary.Reader) (*Dataspace, error) {
	if len(data) < 4 {
		return nil, truncated("dataspace")
	}

	ds := &Dataspace{Version: data[0]}
	rank := int(data[1])
	hasMax := data[2]&0x01 != 0

	offset := 4
	if ds.Version >= 2 {
		ds.SpaceType = DataspaceType(data[3])
	} else {
		offset = 8
		ds.SpaceType = DataspaceSimple
		if rank == 0 {
			ds.SpaceType = DataspaceScalar
		}
	}
	if ds.SpaceType != DataspaceSimple {
		return ds, nil
	}

	size := r.LengthSize()
	read := func(what string) ([]uint64, error) {
		out := make([]uint64, rank)
		for i := range out {
			if offset+size > len(data) {
				return nil, truncated(what)
			}
			out[i] = binary.DecodeUint(data[offset:], size, r.ByteOrder())
			offset += size
		}
		return out, nil
	}

	var err error
	if ds.Dimensions, err = read("dataspace dimensions"); err != nil {
		return nil, err
	}
	if hasMax {
		if ds.MaxDims, err = read("dataspace max dimensions"); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// Serialize writes a version 2 dataspace.
func (m *Dataspace) Serialize(w *binary.Writer) error {
	flags := uint8(0)
	if len(m.MaxDims) > 0 {
		flags |= 0x01
	}
	for _, b := range []uint8{2, uint8(len(m.Dimensions)), flags, uint8(m.SpaceType)} {
		if err := w.WriteUint8(b); err != nil {
			return err
		}
	}
	for _, d := range m.Dimensions {
		if err := w.WriteLength(d); err != nil {
			return err
		}
	}
	for _, d := range m.MaxDims {
		if err := w.WriteLength(d); err != nil {
			return err
		}
	}
	return nil
}

// SerializedSize returns the encoded body size.
func (m *Dataspace) SerializedSize(w *binary.Writer) int {
	return 4 + (len(m.Dimensions)+len(m.MaxDims))*w.LengthSize()
}
