package blobstore

import (
	"container/list"
	"context"
	"errors"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultBlockSize is the cache block granularity. Cluster reads are
// scattered but locally dense, so fairly large blocks amortize remote
// round trips without wasting much bandwidth.
const DefaultBlockSize = 64 * 1024

// CachingStore wraps a Store and caches fixed-size blocks of opened
// blobs in memory. It turns the many small reads of entry lookups into
// a handful of ranged requests against the backend, which is what makes
// object-storage-backed archives usable.
type CachingStore struct {
	inner     Store
	cache     *blockCache
	blockSize int64
}

// NewCachingStore creates a caching wrapper holding up to cacheBytes of
// blocks. blockSize defaults to DefaultBlockSize when <= 0.
func NewCachingStore(inner Store, cacheBytes, blockSize int64) *CachingStore {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &CachingStore{
		inner:     inner,
		cache:     newBlockCache(cacheBytes),
		blockSize: blockSize,
	}
}

// Open opens a blob whose reads go through the block cache.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &cachingBlob{
		inner:     b,
		ctx:       ctx,
		cache:     s.cache,
		name:      name,
		blockSize: s.blockSize,
	}, nil
}

// Create passes through; writes are not cached.
func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	return s.inner.Create(ctx, name)
}

// Delete removes the blob and drops its cached blocks.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.cache.invalidate(name)
	return s.inner.Delete(ctx, name)
}

// List passes through.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// cachingBlob serves ReadAt from cached blocks, fetching contiguous
// runs of missing blocks in single backend requests.
type cachingBlob struct {
	inner     Blob
	ctx       context.Context
	cache     *blockCache
	name      string
	blockSize int64
}

func (b *cachingBlob) Close() error { return b.inner.Close() }

func (b *cachingBlob) Size() int64 { return b.inner.Size() }

func (b *cachingBlob) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	size := b.inner.Size()
	if off < 0 || off >= size {
		return 0, io.EOF
	}

	startBlock := off / b.blockSize
	endBlock := (off + int64(len(p)) - 1) / b.blockSize

	if err := b.fillCache(startBlock, endBlock); err != nil {
		return 0, err
	}

	total := 0
	for blk := startBlock; blk <= endBlock; blk++ {
		block, ok := b.cache.get(b.name, blk)
		if !ok {
			// Evicted between fill and read; fetch directly.
			var err error
			block, err = b.fetchBlock(blk)
			if err != nil {
				return total, err
			}
		}

		blkStart := blk * b.blockSize
		srcOff := int64(0)
		if off > blkStart {
			srcOff = off - blkStart
		}
		if srcOff >= int64(len(block)) {
			break
		}
		total += copy(p[total:], block[srcOff:])
	}

	if off+int64(total) >= size && total < len(p) {
		return total, io.EOF
	}
	return total, nil
}

// fillCache fetches the missing blocks in [startBlock, endBlock],
// coalescing contiguous misses into single ranged reads and running
// the runs in parallel.
func (b *cachingBlob) fillCache(startBlock, endBlock int64) error {
	type run struct{ start, count int64 }
	var missing []run

	cur := run{start: -1}
	for blk := startBlock; blk <= endBlock; blk++ {
		if _, ok := b.cache.get(b.name, blk); ok {
			if cur.start != -1 {
				missing = append(missing, cur)
				cur = run{start: -1}
			}
			continue
		}
		if cur.start == -1 {
			cur = run{start: blk, count: 1}
		} else {
			cur.count++
		}
	}
	if cur.start != -1 {
		missing = append(missing, cur)
	}
	if len(missing) == 0 {
		return nil
	}

	g, _ := errgroup.WithContext(b.ctx)
	g.SetLimit(8)
	for _, r := range missing {
		r := r
		g.Go(func() error {
			byteStart := r.start * b.blockSize
			byteLen := r.count * b.blockSize
			if byteStart >= b.inner.Size() {
				return nil
			}
			if byteStart+byteLen > b.inner.Size() {
				byteLen = b.inner.Size() - byteStart
			}

			buf := make([]byte, byteLen)
			n, err := b.inner.ReadAt(buf, byteStart)
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			buf = buf[:n]

			for i := int64(0); i < r.count; i++ {
				lo := i * b.blockSize
				if lo >= int64(len(buf)) {
					break
				}
				hi := lo + b.blockSize
				if hi > int64(len(buf)) {
					hi = int64(len(buf))
				}
				// Copy so a block never pins the whole run buffer.
				block := append([]byte(nil), buf[lo:hi]...)
				b.cache.set(b.name, r.start+i, block)
			}
			return nil
		})
	}
	return g.Wait()
}

func (b *cachingBlob) fetchBlock(blk int64) ([]byte, error) {
	buf := make([]byte, b.blockSize)
	n, err := b.inner.ReadAt(buf, blk*b.blockSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	block := buf[:n]
	if n > 0 {
		b.cache.set(b.name, blk, block)
	}
	return block, nil
}

type blockKey struct {
	name  string
	block int64
}

// blockCache is a byte-bounded LRU over blob blocks.
type blockCache struct {
	mu       sync.Mutex
	capacity int64
	size     int64
	items    map[blockKey]*list.Element
	evict    *list.List
}

type blockEntry struct {
	key  blockKey
	data []byte
}

func newBlockCache(capacity int64) *blockCache {
	return &blockCache{
		capacity: capacity,
		items:    make(map[blockKey]*list.Element),
		evict:    list.New(),
	}
}

func (c *blockCache) get(name string, block int64) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[blockKey{name, block}]; ok {
		c.evict.MoveToFront(e)
		return e.Value.(*blockEntry).data, true
	}
	return nil, false
}

func (c *blockCache) set(name string, block int64, data []byte) {
	itemSize := int64(len(data))
	if itemSize == 0 || itemSize > c.capacity {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := blockKey{name, block}
	if e, ok := c.items[key]; ok {
		c.evict.MoveToFront(e)
		return
	}
	for c.size+itemSize > c.capacity {
		back := c.evict.Back()
		if back == nil {
			break
		}
		c.remove(back)
	}
	c.items[key] = c.evict.PushFront(&blockEntry{key: key, data: data})
	c.size += itemSize
}

func (c *blockCache) invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for e := c.evict.Front(); e != nil; {
		next := e.Next()
		if e.Value.(*blockEntry).key.name == name {
			c.remove(e)
		}
		e = next
	}
}

func (c *blockCache) remove(e *list.Element) {
	c.evict.Remove(e)
	ent := e.Value.(*blockEntry)
	delete(c.items, ent.key)
	c.size -= int64(len(ent.data))
}
