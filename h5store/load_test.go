package h5store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-h5store/internal/binary"
	"github.com/robert-malhotra/go-h5store/internal/message"
	"github.com/robert-malhotra/go-h5store/internal/object"
	"github.com/robert-malhotra/go-h5store/internal/superblock"
)

// buildContainer lays out a root group with one child whose header holds
// child, after a user block of userBlock bytes.
func buildContainer(t *testing.T, userBlock int, link *message.Link, child []message.Serializable, payload []float64) string {
	t.Helper()
	buf := binary.NewBuffer(0)
	w := binary.NewWriter(buf, binary.DefaultConfig())

	sb := superblock.New()
	sb.BaseAddress = uint64(userBlock)
	rootAddr := uint64(sb.Size())
	rootSize := object.HeaderSize(w, object.NewGroupHeader([]*message.Link{link}))
	childAddr := rootAddr + uint64(rootSize)
	link.ObjectAddress = childAddr
	childSize := object.HeaderSize(w, child)
	dataAddr := childAddr + uint64(childSize)
	for _, m := range child {
		if l, ok := m.(*message.DataLayout); ok && l.Class == message.LayoutContiguous && l.Size > 0 {
			l.Address = dataAddr
		}
	}

	sb.RootGroupAddress = rootAddr
	sb.EOFAddress = dataAddr + uint64(len(payload))*8

	base := int64(userBlock)
	_, err := sb.Write(w.At(base))
	require.NoError(t, err)
	_, err = object.WriteHeader(w.At(base+int64(rootAddr)), object.NewGroupHeader([]*message.Link{link}))
	require.NoError(t, err)
	_, err = object.WriteHeader(w.At(base+int64(childAddr)), child)
	require.NoError(t, err)
	require.NoError(t, w.At(base+int64(dataAddr)).WriteFloat64s(payload))

	path := filepath.Join(t.TempDir(), "built.h5")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func float64Dataset(dims []uint64, size uint64) []message.Serializable {
	return object.NewDatasetHeader(
		message.NewDataspace(dims),
		message.NewFloat64Datatype(),
		message.NewContiguousLayout(0, size),
	)
}

func TestLoadWithUserBlock(t *testing.T) {
	path := buildContainer(t, 512, message.NewHardLink("Data", 0),
		float64Dataset([]uint64{3}, 24), []float64{1, 2, 3})

	s := reopen(t, path, ReadOnly)
	dims, values, err := s.ReadDense("Data")
	require.NoError(t, err)
	assert.Equal(t, []uint64{3}, dims)
	assert.Equal(t, []float64{1, 2, 3}, values)
}

func TestLoadCompactLayout(t *testing.T) {
	compact := &message.DataLayout{
		Class:       message.LayoutCompact,
		CompactData: binary.EncodeFloat64s([]float64{4, 5}, binary.DefaultConfig().ByteOrder),
	}
	child := object.NewDatasetHeader(message.NewDataspace([]uint64{2}), message.NewFloat64Datatype(), compact)
	path := buildContainer(t, 0, message.NewHardLink("Compact", 0), child, nil)

	s := reopen(t, path, ReadOnly)
	_, values, err := s.ReadDense("Compact")
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5}, values)
}

func TestLoadUnallocatedStorage(t *testing.T) {
	child := object.NewDatasetHeader(
		message.NewDataspace([]uint64{2, 2}),
		message.NewFloat64Datatype(),
		message.NewContiguousLayout(^uint64(0), 0),
	)
	path := buildContainer(t, 0, message.NewHardLink("Unwritten", 0), child, nil)

	s := reopen(t, path, ReadOnly)
	_, values, err := s.ReadDense("Unwritten")
	require.NoError(t, err)
	assert.Equal(t, make([]float64, 4), values)
}

func TestLoadUnsupported(t *testing.T) {
	int32Type := &message.Datatype{Version: 1, Class: message.ClassFixedPoint, Size: 4}

	tests := []struct {
		name  string
		link  *message.Link
		child []message.Serializable
	}{
		{
			name: "integer datatype",
			link: message.NewHardLink("Ints", 0),
			child: object.NewDatasetHeader(
				message.NewDataspace([]uint64{2}), int32Type, message.NewContiguousLayout(0, 8)),
		},
		{
			name:  "payload size mismatch",
			link:  message.NewHardLink("Short", 0),
			child: float64Dataset([]uint64{4}, 16),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := buildContainer(t, 0, tt.link, tt.child, []float64{0, 0})

			err := New().Open(path, ReadOnly)
			require.ErrorIs(t, err, ErrIO)
			assert.ErrorIs(t, err, ErrUnsupported)
		})
	}
}

func TestLoadPayloadPastEOF(t *testing.T) {
	path := buildContainer(t, 0, message.NewHardLink("Data", 0),
		float64Dataset([]uint64{4}, 32), []float64{1, 2, 3, 4})

	// Cut the payload off and shrink the recorded end of file with it.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	sb, err := superblock.Read(binary.NewBufferFrom(data))
	require.NoError(t, err)
	sb.EOFAddress -= 32
	w := binary.NewWriter(binary.NewBufferFrom(data), binary.DefaultConfig())
	_, err = sb.Write(w)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)-32], 0o644))

	err = New().Open(path, ReadOnly)
	require.ErrorIs(t, err, ErrIO)
}
