package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenReadClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	content := []byte("zim archive mapping test payload")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	m, err := Open(path)
	require.NoError(t, err)

	require.Equal(t, int64(len(content)), m.Size())
	require.Equal(t, content, m.Bytes())

	buf := make([]byte, 7)
	n, err := m.ReadAt(buf, 4)
	require.NoError(t, err)
	require.Equal(t, 7, n)
	require.Equal(t, "archive", string(buf))

	require.NoError(t, m.Advise(AccessRandom))

	require.NoError(t, m.Close())
	require.Nil(t, m.Bytes())
	// Close is idempotent.
	require.NoError(t, m.Close())

	_, err = m.ReadAt(buf, 0)
	require.ErrorIs(t, err, ErrClosed)
}

func TestOpenEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	m, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, int64(0), m.Size())
	require.NoError(t, m.Close())
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.bin"))
	require.Error(t, err)
}
