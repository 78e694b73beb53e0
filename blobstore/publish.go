package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/zimgo/internal/resource"
)

const publishChunkSize = 1 << 20

// Publish streams the local archive file at path into the store under
// name. rc may throttle the transfer; a nil controller transfers at
// full speed. The blob becomes visible only when the upload completes.
func Publish(ctx context.Context, store Store, name, path string, rc *resource.Controller) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := store.Create(ctx, name)
	if err != nil {
		return err
	}

	buf := make([]byte, publishChunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			if err := rc.AcquireIO(ctx, n); err != nil {
				w.Close()
				return err
			}
			if _, werr := w.Write(buf[:n]); werr != nil {
				w.Close()
				return fmt.Errorf("publish %q: %w", name, werr)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}
