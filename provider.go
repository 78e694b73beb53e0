package zimgo

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ContentProvider is a pull-based, single-pass stream of an item's
// bytes. Size is queried once at item registration; Feed is called
// repeatedly and must return an empty Blob exactly once to signal
// end-of-stream. Behavior of Feed after end-of-stream is undefined.
//
// Invariant: the sum of all non-empty produced blob lengths must equal
// Size. The creator verifies this while draining and fails the item
// (and the session) on mismatch.
type ContentProvider interface {
	// Size returns the total number of bytes the provider will produce.
	Size() int64
	// Feed returns the next chunk, or an empty Blob at end-of-stream.
	Feed() (Blob, error)
}

// bytesProvider serves a fully materialized byte slice in one chunk.
type bytesProvider struct {
	data []byte
	done bool
}

// NewBytesProvider returns a ContentProvider over data. The provider
// takes ownership of data.
func NewBytesProvider(data []byte) ContentProvider {
	return &bytesProvider{data: data}
}

// NewStringProvider returns a ContentProvider over the bytes of s.
func NewStringProvider(s string) ContentProvider {
	return &bytesProvider{data: []byte(s)}
}

func (p *bytesProvider) Size() int64 { return int64(len(p.data)) }

func (p *bytesProvider) Feed() (Blob, error) {
	if p.done || len(p.data) == 0 {
		return Blob{}, nil
	}
	p.done = true
	return NewBlob(p.data), nil
}

// fileProvider streams a file in fixed-size chunks so large files are
// never fully materialized in memory.
type fileProvider struct {
	f         *os.File
	name      string
	size      int64
	chunkSize int
}

// FileProviderChunkSize is the read granularity of NewFileProvider.
const FileProviderChunkSize = 1 << 20

// NewFileProvider returns a ContentProvider streaming the file at path.
// The file is held open until the provider is drained.
func NewFileProvider(path string) (ContentProvider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &fileProvider{f: f, name: path, size: fi.Size(), chunkSize: FileProviderChunkSize}, nil
}

func (p *fileProvider) Size() int64 { return p.size }

func (p *fileProvider) Feed() (Blob, error) {
	if p.f == nil {
		return Blob{}, nil
	}
	buf := make([]byte, p.chunkSize)
	n, err := p.f.Read(buf)
	if n > 0 {
		return NewBlob(buf[:n]), nil
	}
	// EOF or error terminates the stream; the file is released either way.
	closeErr := p.f.Close()
	p.f = nil
	if err != nil && !errors.Is(err, io.EOF) {
		return Blob{}, fmt.Errorf("read %s: %w", p.name, err)
	}
	if closeErr != nil {
		return Blob{}, closeErr
	}
	return Blob{}, nil
}
