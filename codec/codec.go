// Package codec provides the cluster compression codecs used by zimgo
// archives.
//
// Each cluster is compressed as a whole and is independently
// decodable. The codec kind is recorded in the low nibble of the
// cluster's leading info byte, so the numeric values below are part of
// the on-disk format:
//
//	1 = none, 4 = LZMA2/XZ, 5 = Zstandard, 6 = LZ4 (zimgo extension)
//
// LZ4 is outside the openzim enum; archives written with it are not
// readable by stock ZIM readers.
package codec

import (
	"fmt"
	"io"
)

// Kind identifies a cluster compression codec.
type Kind uint8

const (
	// None stores the cluster uncompressed.
	None Kind = 1
	// LZMA compresses with LZMA2 in an XZ container (ZIM's historic
	// codec).
	LZMA Kind = 4
	// Zstd compresses with Zstandard (ZIM's current default).
	Zstd Kind = 5
	// LZ4 compresses with LZ4 frames. Extension kind, not portable.
	LZ4 Kind = 6
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case LZMA:
		return "lzma"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Codec compresses and decompresses whole cluster streams.
//
// Decompress must be side-effect free and idempotent: decoding the same
// input twice yields identical output, so callers may cache results.
type Codec interface {
	// Kind returns the on-disk codec identifier.
	Kind() Kind
	// Compress returns a WriteCloser encoding into dst. Close flushes
	// the stream; it does not close dst.
	Compress(dst io.Writer) (io.WriteCloser, error)
	// Decompress returns a ReadCloser decoding from src.
	Decompress(src io.Reader) (io.ReadCloser, error)
}

// ForKind returns the codec for an on-disk kind identifier.
func ForKind(k Kind) (Codec, error) {
	switch k {
	case None:
		return noneCodec{}, nil
	case LZMA:
		return lzmaCodec{}, nil
	case Zstd:
		return zstdCodec{}, nil
	case LZ4:
		return lz4Codec{}, nil
	default:
		return nil, fmt.Errorf("codec: unsupported cluster compression %d", uint8(k))
	}
}

// nopCloser wraps a Reader whose codec has no Close of its own.
type nopCloser struct {
	io.Reader
}

func (nopCloser) Close() error { return nil }
