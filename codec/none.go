package codec

import "io"

// noneCodec passes bytes through unchanged.
type noneCodec struct{}

func (noneCodec) Kind() Kind { return None }

func (noneCodec) Compress(dst io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{dst}, nil
}

func (noneCodec) Decompress(src io.Reader) (io.ReadCloser, error) {
	return nopCloser{src}, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
