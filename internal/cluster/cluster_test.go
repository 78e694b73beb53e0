package cluster

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hupe1980/zimgo/codec"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, b *Builder) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, b.Encode(&buf))
	return buf.Bytes()
}

func TestClusterRoundTripAllCodecs(t *testing.T) {
	payloads := [][]byte{
		[]byte("first blob"),
		[]byte(strings.Repeat("compressible ", 1000)),
		{}, // zero-length blob keeps an empty span
		[]byte("last"),
	}

	for _, kind := range []codec.Kind{codec.None, codec.LZMA, codec.Zstd, codec.LZ4} {
		t.Run(kind.String(), func(t *testing.T) {
			b := NewBuilder(kind)
			for i, p := range payloads {
				idx, err := b.AddBlob(p)
				require.NoError(t, err)
				require.Equal(t, uint32(i), idx)
			}
			require.Equal(t, len(payloads), b.BlobCount())

			c, err := Decode(encode(t, b))
			require.NoError(t, err)
			require.Equal(t, kind, c.Kind())
			require.Equal(t, len(payloads), c.BlobCount())

			for i, want := range payloads {
				got, err := c.Blob(uint32(i))
				require.NoError(t, err)
				require.Equal(t, want, append([]byte{}, got...))

				size, err := c.BlobSize(uint32(i))
				require.NoError(t, err)
				require.Equal(t, int64(len(want)), size)
			}
		})
	}
}

func TestEmptyCluster(t *testing.T) {
	b := NewBuilder(codec.Zstd)
	c, err := Decode(encode(t, b))
	require.NoError(t, err)
	require.Equal(t, 0, c.BlobCount())

	_, err = c.Blob(0)
	require.ErrorIs(t, err, ErrBlobIndex)
}

func TestSealedBuilderRejectsBlobs(t *testing.T) {
	b := NewBuilder(codec.None)
	_, err := b.AddBlob([]byte("x"))
	require.NoError(t, err)

	b.Seal()
	_, err = b.AddBlob([]byte("y"))
	require.ErrorIs(t, err, ErrSealed)
	require.Equal(t, 1, b.BlobCount())
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(nil)
	require.Error(t, err)

	// Valid info byte (uncompressed) but bogus offset table.
	_, err = Decode([]byte{byte(codec.None), 0xff, 0xff, 0xff, 0xff})
	require.ErrorIs(t, err, ErrCorrupt)

	// Unknown codec nibble.
	_, err = Decode([]byte{0x02, 0, 0, 0, 0})
	require.Error(t, err)
}

func TestDecodeIgnoresTrailingBytes(t *testing.T) {
	b := NewBuilder(codec.None)
	_, err := b.AddBlob([]byte("payload"))
	require.NoError(t, err)

	raw := append(encode(t, b), []byte("next cluster bytes")...)
	c, err := Decode(raw)
	require.NoError(t, err)

	got, err := c.Blob(0)
	require.NoError(t, err)
	require.Equal(t, "payload", string(got))
}
