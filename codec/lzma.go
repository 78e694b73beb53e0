package codec

import (
	"io"

	"github.com/ulikunitz/xz"
)

// lzmaCodec compresses with LZMA2 in an XZ container, ZIM's historic
// cluster codec.
type lzmaCodec struct{}

func (lzmaCodec) Kind() Kind { return LZMA }

func (lzmaCodec) Compress(dst io.Writer) (io.WriteCloser, error) {
	return xz.NewWriter(dst)
}

func (lzmaCodec) Decompress(src io.Reader) (io.ReadCloser, error) {
	r, err := xz.NewReader(src)
	if err != nil {
		return nil, err
	}
	return nopCloser{r}, nil
}
