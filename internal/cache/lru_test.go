package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sized []byte

func (s sized) Size() int64 { return int64(len(s)) }

func TestClusterCacheHitMiss(t *testing.T) {
	c := NewClusterCache(1024)

	_, ok := c.Get(0)
	require.False(t, ok)

	payload := sized("decompressed cluster zero")
	c.Set(0, payload)

	got, ok := c.Get(0)
	require.True(t, ok)
	require.Equal(t, payload, got)

	hits, misses := c.Stats()
	require.Equal(t, int64(1), hits)
	require.Equal(t, int64(1), misses)
}

func TestClusterCacheEvictsLRU(t *testing.T) {
	c := NewClusterCache(100)

	c.Set(1, make(sized, 40))
	c.Set(2, make(sized, 40))

	// Touch cluster 1 so cluster 2 is the eviction candidate.
	_, ok := c.Get(1)
	require.True(t, ok)

	c.Set(3, make(sized, 40))

	_, ok = c.Get(2)
	require.False(t, ok)
	_, ok = c.Get(1)
	require.True(t, ok)
	_, ok = c.Get(3)
	require.True(t, ok)
	require.LessOrEqual(t, c.Size(), int64(100))
}

func TestClusterCacheOversizedPayload(t *testing.T) {
	c := NewClusterCache(10)
	c.Set(7, make(sized, 11))

	_, ok := c.Get(7)
	require.False(t, ok)
	require.Equal(t, int64(0), c.Size())
}

func TestClusterCachePurge(t *testing.T) {
	c := NewClusterCache(1024)
	c.Set(1, sized("a"))
	c.Set(2, sized("b"))
	c.Purge()

	require.Equal(t, int64(0), c.Size())
	_, ok := c.Get(1)
	require.False(t, ok)
}
