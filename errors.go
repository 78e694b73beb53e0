package zimgo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is returned when an operation is attempted in the
	// wrong creator state (e.g. AddItem before Start, or Configure
	// after Start).
	ErrInvalidState = errors.New("zimgo: invalid creator state")

	// ErrNotFound is returned when a path, title or index lookup misses.
	ErrNotFound = errors.New("zimgo: entry not found")

	// ErrNotWritable is returned by Start when the destination path
	// fails the pre-flight writability check.
	ErrNotWritable = errors.New("zimgo: destination not writable")

	// ErrCorruptArchive is returned when the header or an index section
	// cannot be parsed, or when structural invariants (e.g. bounded
	// redirect chains) are violated.
	ErrCorruptArchive = errors.New("zimgo: corrupt archive")

	// ErrUnsupported is returned for queries the archive cannot answer,
	// e.g. an illustration size that is not present.
	ErrUnsupported = errors.New("zimgo: unsupported operation")
)

// ContentProviderError wraps a failure raised while draining an item's
// content provider. The original cause is available via errors.Unwrap.
type ContentProviderError struct {
	Path string
	Err  error
}

func (e *ContentProviderError) Error() string {
	return fmt.Sprintf("zimgo: content provider failed for %q: %v", e.Path, e.Err)
}

func (e *ContentProviderError) Unwrap() error { return e.Err }
