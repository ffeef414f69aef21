package h5store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openStore opens a fresh container in a temp dir and closes it on cleanup
// if the test left it open.
func openStore(t *testing.T, mode AccessMode, opts ...Option) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.h5")
	s := New(opts...)
	require.NoError(t, s.Open(path, mode))
	t.Cleanup(func() {
		if s.IsOpen() {
			_ = s.Close()
		}
	})
	return s, path
}

func reopen(t *testing.T, path string, mode AccessMode, opts ...Option) *Store {
	t.Helper()
	s := New(opts...)
	require.NoError(t, s.Open(path, mode))
	t.Cleanup(func() {
		if s.IsOpen() {
			_ = s.Close()
		}
	})
	return s
}

func TestOpenReadOnlyMissingFile(t *testing.T) {
	s := New()
	err := s.Open(filepath.Join(t.TempDir(), "missing.h5"), ReadOnly)

	require.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, s.IsOpen())
}

func TestOpenEmptyPath(t *testing.T) {
	s := New()
	require.ErrorIs(t, s.Open("", ReadWriteTruncate), ErrInvalidPath)
	assert.False(t, s.IsOpen())
}

func TestOpenTwice(t *testing.T) {
	s, path := openStore(t, ReadWriteTruncate)

	require.ErrorIs(t, s.Open(path, ReadOnly), ErrAlreadyOpen)
	assert.True(t, s.IsOpen())
	assert.Equal(t, ReadWriteTruncate, s.Mode())
	assert.Equal(t, path, s.Path())
}

func TestOpenCreatesFileImmediately(t *testing.T) {
	for _, mode := range []AccessMode{ReadWriteAppend, ReadWriteTruncate} {
		t.Run(mode.String(), func(t *testing.T) {
			_, path := openStore(t, mode)

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Positive(t, info.Size())

			// The empty container is valid on its own.
			ro := reopen(t, path, ReadOnly)
			names, err := ro.Datasets()
			require.NoError(t, err)
			assert.Empty(t, names)
		})
	}
}

func TestOpenUnwritableDirectory(t *testing.T) {
	s := New()
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "store.h5")

	require.ErrorIs(t, s.Open(path, ReadWriteTruncate), ErrIO)
	assert.False(t, s.IsOpen())
}

func TestCloseNotOpen(t *testing.T) {
	require.ErrorIs(t, New().Close(), ErrNotOpen)
}

func TestCloseTwice(t *testing.T) {
	s, _ := openStore(t, ReadWriteTruncate)

	require.NoError(t, s.Close())
	require.ErrorIs(t, s.Close(), ErrNotOpen)
	assert.Empty(t, s.Path())
}

func TestCloseFlushFailureLeavesStoreClosed(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sub")
	require.NoError(t, os.Mkdir(dir, 0o755))
	path := filepath.Join(dir, "store.h5")

	s := New()
	require.NoError(t, s.Open(path, ReadWriteTruncate))
	require.NoError(t, s.WriteDense("A", []uint64{2}, []float64{1, 2}))
	require.NoError(t, os.RemoveAll(dir))

	err := s.Close()
	require.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, s.IsOpen())
	assert.Empty(t, s.Path())

	_, err = s.Datasets()
	require.ErrorIs(t, err, ErrNotOpen)
	_, _, err = s.ReadDense("A")
	require.ErrorIs(t, err, ErrNotOpen)
	assert.False(t, s.DatasetExists("A"))
	require.ErrorIs(t, s.Close(), ErrNotOpen)

	// The next Open starts over.
	other := filepath.Join(t.TempDir(), "other.h5")
	require.NoError(t, s.Open(other, ReadWriteTruncate))
	names, err := s.Datasets()
	require.NoError(t, err)
	assert.Empty(t, names)
	require.NoError(t, s.Close())
}

func TestClosedStoreRejectsOperations(t *testing.T) {
	s := New()

	require.ErrorIs(t, s.WriteDense("a", []uint64{1}, []float64{1}), ErrNotOpen)
	require.ErrorIs(t, s.WriteMatrix("a", NewMatrix(1, 1)), ErrNotOpen)
	require.ErrorIs(t, s.WriteMatrix("a", nil), ErrNotOpen)
	_, _, err := s.ReadDense("a")
	require.ErrorIs(t, err, ErrNotOpen)
	_, err = s.ReadMatrix("a")
	require.ErrorIs(t, err, ErrNotOpen)
	_, err = s.Datasets()
	require.ErrorIs(t, err, ErrNotOpen)
	_, err = s.Groups()
	require.ErrorIs(t, err, ErrNotOpen)
	_, err = s.DatasetDimensions("a")
	require.ErrorIs(t, err, ErrNotOpen)
	require.ErrorIs(t, s.RemoveDataset("a"), ErrNotOpen)
	require.ErrorIs(t, s.Flush(), ErrNotOpen)
	assert.False(t, s.DatasetExists("a"))
}

func TestAppendPreservesContent(t *testing.T) {
	s, path := openStore(t, ReadWriteTruncate)
	require.NoError(t, s.WriteDense("Keep/Me", []uint64{3}, []float64{1, 2, 3}))
	require.NoError(t, s.Close())

	s = reopen(t, path, ReadWriteAppend)
	require.NoError(t, s.WriteDense("Added", []uint64{1}, []float64{4}))
	require.NoError(t, s.Close())

	s = reopen(t, path, ReadOnly)
	names, err := s.Datasets()
	require.NoError(t, err)
	assert.Equal(t, []string{"Added", "Keep/Me"}, names)

	dims, values, err := s.ReadDense("/Keep/Me")
	require.NoError(t, err)
	assert.Equal(t, []uint64{3}, dims)
	assert.Equal(t, []float64{1, 2, 3}, values)
}

func TestAppendMissingFileStartsEmpty(t *testing.T) {
	s, _ := openStore(t, ReadWriteAppend)

	names, err := s.Datasets()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestTruncateDiscardsContent(t *testing.T) {
	s, path := openStore(t, ReadWriteTruncate)
	require.NoError(t, s.WriteDense("Old", []uint64{1}, []float64{1}))
	require.NoError(t, s.Close())

	s = reopen(t, path, ReadWriteTruncate)
	assert.False(t, s.DatasetExists("Old"))
	require.NoError(t, s.Close())

	s = reopen(t, path, ReadOnly)
	names, err := s.Datasets()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestReadOnlyRejectsMutations(t *testing.T) {
	s, path := openStore(t, ReadWriteTruncate)
	require.NoError(t, s.WriteDense("Data", []uint64{1}, []float64{1}))
	require.NoError(t, s.Close())

	s = reopen(t, path, ReadOnly)
	require.ErrorIs(t, s.WriteDense("Other", []uint64{1}, []float64{1}), ErrReadOnly)
	require.ErrorIs(t, s.WriteMatrix("Other", NewMatrix(1, 1)), ErrReadOnly)
	require.ErrorIs(t, s.RemoveDataset("Data"), ErrReadOnly)
	require.NoError(t, s.Flush())
	assert.True(t, s.DatasetExists("Data"))
	require.NoError(t, s.Close())
}

func TestPersistenceAcrossReopen(t *testing.T) {
	s, path := openStore(t, ReadWriteTruncate)
	m := NewMatrix(4, 3)
	for i := 0; i < 4; i++ {
		for j := 0; j < 3; j++ {
			m.Set(i, j, float64(i)*0.1-float64(j)*7.25)
		}
	}
	require.NoError(t, s.WriteMatrix("/A/B/C/D/E/Matrix", m))
	require.NoError(t, s.WriteDense("Scalar", nil, []float64{42.5}))
	require.NoError(t, s.WriteDense("A/Empty", []uint64{0, 5}, nil))
	require.NoError(t, s.Close())

	s = reopen(t, path, ReadOnly)
	got, err := s.ReadMatrix("A/B/C/D/E/Matrix")
	require.NoError(t, err)
	assert.True(t, m.Equal(got))

	dims, values, err := s.ReadDense("Scalar")
	require.NoError(t, err)
	assert.Empty(t, dims)
	assert.Equal(t, []float64{42.5}, values)

	dims, values, err = s.ReadDense("A/Empty")
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 5}, dims)
	assert.Empty(t, values)

	groups, err := s.Groups()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "A/B", "A/B/C", "A/B/C/D", "A/B/C/D/E"}, groups)
}

func TestFlushKeepsStoreOpen(t *testing.T) {
	s, path := openStore(t, ReadWriteTruncate)
	require.NoError(t, s.WriteDense("First", []uint64{2}, []float64{1, 2}))
	require.NoError(t, s.Flush())

	ro := reopen(t, path, ReadOnly)
	assert.True(t, ro.DatasetExists("First"))
	require.NoError(t, ro.Close())

	// Payloads now come from the flushed file.
	_, values, err := s.ReadDense("First")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, values)

	require.NoError(t, s.WriteDense("Second", []uint64{1}, []float64{3}))
	require.NoError(t, s.Close())

	ro = reopen(t, path, ReadOnly)
	names, err := ro.Datasets()
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Second"}, names)
}

func TestAppendCarriesUntouchedPayloads(t *testing.T) {
	s, path := openStore(t, ReadWriteTruncate)
	big := make([]float64, 1000)
	for i := range big {
		big[i] = float64(i) * 1.5
	}
	require.NoError(t, s.WriteDense("Big", []uint64{10, 100}, big))
	require.NoError(t, s.Close())

	// The payload of Big is never read in this session but must survive
	// the rewrite.
	s = reopen(t, path, ReadWriteAppend)
	require.NoError(t, s.WriteDense("Small", []uint64{1}, []float64{1}))
	require.NoError(t, s.Close())

	s = reopen(t, path, ReadOnly)
	_, values, err := s.ReadDense("Big")
	require.NoError(t, err)
	assert.Equal(t, big, values)
}

func TestCloseWithoutChangesLeavesFileAlone(t *testing.T) {
	s, path := openStore(t, ReadWriteTruncate)
	require.NoError(t, s.WriteDense("Data", []uint64{1}, []float64{1}))
	require.NoError(t, s.Close())
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	s = reopen(t, path, ReadWriteAppend)
	require.NoError(t, s.Close())

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCorruptFile(t *testing.T) {
	dir := t.TempDir()

	garbage := filepath.Join(dir, "garbage.h5")
	require.NoError(t, os.WriteFile(garbage, []byte("this is not a container at all"), 0o644))

	for _, mode := range []AccessMode{ReadOnly, ReadWriteAppend} {
		s := New()
		require.ErrorIs(t, s.Open(garbage, mode), ErrIO, mode.String())
		assert.False(t, s.IsOpen())
	}

	// A valid container with a damaged root group header.
	s, path := openStore(t, ReadWriteTruncate)
	require.NoError(t, s.WriteDense("Data", []uint64{1}, []float64{1}))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[60] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o644))

	require.ErrorIs(t, New().Open(path, ReadOnly), ErrIO)
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	s, path := openStore(t, ReadWriteTruncate)
	require.NoError(t, s.WriteDense("Data", []uint64{1}, []float64{1}))
	require.NoError(t, s.Flush())
	require.NoError(t, s.Close())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "store.h5", entries[0].Name())
}

func TestWithFileMode(t *testing.T) {
	s, path := openStore(t, ReadWriteTruncate, WithFileMode(0o600), WithSync(false))
	require.NoError(t, s.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStoreThresholdOption(t *testing.T) {
	assert.Equal(t, uint64(DefaultThreshold), New().Threshold())

	s := New(WithThreshold(64))
	assert.Equal(t, uint64(64), s.Threshold())
	assert.False(t, s.ExceedsThresholdValues(make([]float64, 8)))
	assert.True(t, s.ExceedsThresholdValues(make([]float64, 9)))
}
