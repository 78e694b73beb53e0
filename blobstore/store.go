package blobstore

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a named blob does not exist.
var ErrNotFound = errors.New("blobstore: blob not found")

// Store provides named, immutable archive blobs.
type Store interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Create creates a blob for streaming writes. The blob becomes
	// visible under its name when Close returns without error.
	Create(ctx context.Context, name string) (WritableBlob, error)
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the blob names with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to one archive file.
type Blob interface {
	io.ReaderAt
	io.Closer
	// Size returns the blob size in bytes.
	Size() int64
}

// WritableBlob is a streaming write handle.
type WritableBlob interface {
	io.WriteCloser
	// Sync flushes buffered data to durable storage where the backend
	// supports it.
	Sync() error
}

// Mappable is an optional Blob interface for zero-copy access. The
// returned slice is valid until the blob is closed.
type Mappable interface {
	Bytes() ([]byte, error)
}
