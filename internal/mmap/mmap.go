// Package mmap provides read-only memory mapping for archive files.
//
// A finished zimgo archive is immutable, so the whole file is mapped
// once at open time and every section read becomes a slice into the
// mapping. The mapping owns the bytes; slices handed out are borrows
// that must not outlive Close.
package mmap

import (
	"errors"
	"io"
	"os"
	"sync/atomic"
)

var (
	// ErrClosed is returned when accessing a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned when the file size is invalid.
	ErrInvalidSize = errors.New("mmap: invalid file size")
)

// AccessPattern hints how the mapped data will be accessed.
type AccessPattern int

const (
	// AccessDefault gives the kernel no specific advice.
	AccessDefault AccessPattern = iota
	// AccessSequential expects a linear scan (checksum verification).
	AccessSequential
	// AccessRandom expects scattered reads (entry lookups).
	AccessRandom
)

// Mapping is a read-only memory-mapped file.
type Mapping struct {
	data   []byte
	size   int64
	closed atomic.Bool
	unmap  func([]byte) error
}

// Open maps the file at path read-only. A zero-length file maps to an
// empty (but valid) mapping.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := fi.Size()
	if size < 0 {
		return nil, ErrInvalidSize
	}
	if size == 0 {
		return &Mapping{}, nil
	}

	data, unmap, err := osMap(f, int(size))
	if err != nil {
		return nil, err
	}

	return &Mapping{data: data, size: size, unmap: unmap}, nil
}

// Close unmaps the memory. Idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	if m.unmap != nil && m.data != nil {
		return m.unmap(m.data)
	}
	return nil
}

// Bytes returns the mapped bytes. The slice is valid until Close.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the mapped file size in bytes.
func (m *Mapping) Size() int64 { return m.size }

// Advise hints the kernel about the expected access pattern.
// Advisory only; failures other than invalid arguments are returned.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.data == nil {
		return nil
	}
	return osAdvise(m.data, pattern)
}

// ReadAt implements io.ReaderAt over the mapping.
func (m *Mapping) ReadAt(p []byte, off int64) (int, error) {
	if m.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 || off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
