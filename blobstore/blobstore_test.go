package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())

	w, err := store.Create(ctx, "wiki.zim")
	require.NoError(t, err)
	_, err = w.Write([]byte("hello archive"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	b, err := store.Open(ctx, "wiki.zim")
	require.NoError(t, err)
	defer b.Close()

	require.Equal(t, int64(13), b.Size())

	buf := make([]byte, 5)
	n, err := b.ReadAt(buf, 6)
	require.NoError(t, err)
	require.Equal(t, "archi", string(buf[:n]))

	// Local blobs are memory-mapped.
	m, ok := b.(Mappable)
	require.True(t, ok)
	data, err := m.Bytes()
	require.NoError(t, err)
	require.Equal(t, "hello archive", string(data))
}

func TestLocalStoreCreateIsAtomic(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewLocalStore(dir)

	w, err := store.Create(ctx, "wiki.zim")
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)

	// Not closed yet: the final name must not exist.
	_, err = os.Stat(filepath.Join(dir, "wiki.zim"))
	require.True(t, os.IsNotExist(err))

	require.NoError(t, w.Close())
	_, err = os.Stat(filepath.Join(dir, "wiki.zim"))
	require.NoError(t, err)
}

func TestLocalStoreNotFound(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	_, err := store.Open(context.Background(), "missing.zim")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())

	for _, name := range []string{"a.zim", "b.zim", "nested/c.zim"} {
		w, err := store.Create(ctx, name)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"a.zim", "b.zim", "nested/c.zim"}, names)

	require.NoError(t, store.Delete(ctx, "b.zim"))
	require.NoError(t, store.Delete(ctx, "b.zim")) // idempotent

	names, err = store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"a.zim", "nested/c.zim"}, names)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, "x.zim", []byte("abc")))

	b, err := store.Open(ctx, "x.zim")
	require.NoError(t, err)
	buf := make([]byte, 3)
	_, err = b.ReadAt(buf, 0)
	require.NoError(t, err)
	require.Equal(t, "abc", string(buf))

	_, err = store.Open(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

// countingStore wraps MemoryStore and counts backend ReadAt calls.
type countingStore struct {
	*MemoryStore
	reads atomic.Int64
}

func (c *countingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := c.MemoryStore.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &countingBlob{Blob: b, reads: &c.reads}, nil
}

type countingBlob struct {
	Blob
	reads *atomic.Int64
}

func (b *countingBlob) ReadAt(p []byte, off int64) (int, error) {
	b.reads.Add(1)
	return b.Blob.ReadAt(p, off)
}

func TestCachingStoreCoalescesAndCaches(t *testing.T) {
	ctx := context.Background()

	payload := make([]byte, 1000)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	inner := &countingStore{MemoryStore: NewMemoryStore()}
	require.NoError(t, inner.Put(ctx, "wiki.zim", payload))

	store := NewCachingStore(inner, 1<<20, 100)
	b, err := store.Open(ctx, "wiki.zim")
	require.NoError(t, err)
	defer b.Close()

	// Spans blocks 2..5: one coalesced backend read.
	buf := make([]byte, 350)
	n, err := b.ReadAt(buf, 250)
	require.NoError(t, err)
	require.Equal(t, 350, n)
	require.Equal(t, payload[250:600], buf)
	require.Equal(t, int64(1), inner.reads.Load())

	// Fully cached: no further backend reads.
	n, err = b.ReadAt(buf[:100], 300)
	require.NoError(t, err)
	require.Equal(t, payload[300:400], buf[:100])
	require.Equal(t, int64(1), inner.reads.Load())

	// Tail read past EOF.
	n, err = b.ReadAt(buf, 900)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, 100, n)
	require.Equal(t, payload[900:], buf[:n])
}

func TestCachingStoreConcurrentReads(t *testing.T) {
	ctx := context.Background()

	payload := make([]byte, 4096)
	for i := range payload {
		payload[i] = byte(i)
	}
	inner := &countingStore{MemoryStore: NewMemoryStore()}
	require.NoError(t, inner.Put(ctx, "wiki.zim", payload))

	store := NewCachingStore(inner, 1<<20, 256)
	b, err := store.Open(ctx, "wiki.zim")
	require.NoError(t, err)
	defer b.Close()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(off int64) {
			defer wg.Done()
			buf := make([]byte, 512)
			n, err := b.ReadAt(buf, off)
			if err != nil && err != io.EOF {
				t.Errorf("ReadAt(%d): %v", off, err)
				return
			}
			for i := 0; i < n; i++ {
				if buf[i] != byte(off+int64(i)) {
					t.Errorf("ReadAt(%d): byte %d mismatch", off, i)
					return
				}
			}
		}(int64(g * 512))
	}
	wg.Wait()
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	src := filepath.Join(dir, "local.zim")
	require.NoError(t, os.WriteFile(src, []byte("archive body"), 0o644))

	store := NewMemoryStore()
	require.NoError(t, Publish(ctx, store, "remote.zim", src, nil))

	b, err := store.Open(ctx, "remote.zim")
	require.NoError(t, err)
	require.Equal(t, int64(12), b.Size())
}
