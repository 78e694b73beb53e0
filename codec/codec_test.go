package codec

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, k Kind, payload []byte) {
	t.Helper()

	c, err := ForKind(k)
	require.NoError(t, err)
	require.Equal(t, k, c.Kind())

	var buf bytes.Buffer
	w, err := c.Compress(&buf)
	require.NoError(t, err)
	_, err = w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := c.Decompress(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestCodecRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog ", 512))

	for _, k := range []Kind{None, LZMA, Zstd, LZ4} {
		t.Run(k.String(), func(t *testing.T) {
			roundTrip(t, k, payload)
		})
	}
}

func TestCodecRoundTripEmpty(t *testing.T) {
	for _, k := range []Kind{None, LZMA, Zstd, LZ4} {
		t.Run(k.String(), func(t *testing.T) {
			roundTrip(t, k, []byte{})
		})
	}
}

func TestCompressibleInputShrinks(t *testing.T) {
	payload := bytes.Repeat([]byte("aaaaaaaabbbbbbbb"), 4096)

	for _, k := range []Kind{LZMA, Zstd, LZ4} {
		c, err := ForKind(k)
		require.NoError(t, err)

		var buf bytes.Buffer
		w, err := c.Compress(&buf)
		require.NoError(t, err)
		_, err = w.Write(payload)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		require.Less(t, buf.Len(), len(payload), "kind %s", k)
	}
}

func TestForKindUnknown(t *testing.T) {
	_, err := ForKind(Kind(9))
	require.Error(t, err)
}

func TestDecompressIdempotent(t *testing.T) {
	c, err := ForKind(Zstd)
	require.NoError(t, err)

	payload := []byte("idempotent decode check")
	var buf bytes.Buffer
	w, err := c.Compress(&buf)
	require.NoError(t, err)
	_, err = w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	for i := 0; i < 2; i++ {
		r, err := c.Decompress(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		require.NoError(t, r.Close())
		require.Equal(t, payload, got)
	}
}
