package codec

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// lz4Codec compresses with LZ4 frames. Fast but weaker ratio; useful
// for archives optimized for read latency over size.
type lz4Codec struct{}

func (lz4Codec) Kind() Kind { return LZ4 }

func (lz4Codec) Compress(dst io.Writer) (io.WriteCloser, error) {
	return lz4.NewWriter(dst), nil
}

func (lz4Codec) Decompress(src io.Reader) (io.ReadCloser, error) {
	return nopCloser{lz4.NewReader(src)}, nil
}
