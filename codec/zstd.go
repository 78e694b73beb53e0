package codec

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// zstdCodec compresses with Zstandard at the default level, balancing
// ratio against random-access decompression latency.
type zstdCodec struct{}

func (zstdCodec) Kind() Kind { return Zstd }

func (zstdCodec) Compress(dst io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func (zstdCodec) Decompress(src io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(src)
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}
