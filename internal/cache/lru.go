// Package cache provides a byte-bounded LRU cache for decoded
// clusters.
//
// Cluster decompression is idempotent and side-effect free, so caching
// is always safe; the cache only trades memory for repeated-read
// latency. Keys are cluster indices, values the decoded clusters.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// Value is a cached item that reports its resident byte size.
type Value interface {
	Size() int64
}

// ClusterCache is a thread-safe LRU over decoded clusters, bounded by
// total resident bytes.
type ClusterCache struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	items     map[uint32]*list.Element
	evictList *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	cluster uint32
	value   Value
}

// NewClusterCache creates a cache holding up to capacity bytes of
// decoded cluster data.
func NewClusterCache(capacity int64) *ClusterCache {
	return &ClusterCache{
		capacity:  capacity,
		items:     make(map[uint32]*list.Element),
		evictList: list.New(),
	}
}

// Get returns the cached value for a cluster. The returned value is
// shared and must be treated as read-only.
func (c *ClusterCache) Get(cluster uint32) (Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[cluster]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(ent)
		return ent.Value.(*entry).value, true
	}
	c.misses.Add(1)
	return nil, false
}

// Set caches a cluster value. Values larger than the total capacity
// are not cached.
func (c *ClusterCache) Set(cluster uint32, v Value) {
	itemSize := v.Size()
	if itemSize > c.capacity {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[cluster]; ok {
		// Same cluster index always decodes to the same value; just
		// refresh recency.
		c.evictList.MoveToFront(ent)
		return
	}

	for c.size+itemSize > c.capacity {
		back := c.evictList.Back()
		if back == nil {
			break
		}
		c.removeElement(back)
	}

	c.items[cluster] = c.evictList.PushFront(&entry{cluster: cluster, value: v})
	c.size += itemSize
}

// Size returns the current cached bytes.
func (c *ClusterCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Stats returns hit and miss counters.
func (c *ClusterCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Purge drops all cached values.
func (c *ClusterCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[uint32]*list.Element)
	c.evictList.Init()
	c.size = 0
}

func (c *ClusterCache) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	ent := e.Value.(*entry)
	delete(c.items, ent.cluster)
	c.size -= ent.value.Size()
}
