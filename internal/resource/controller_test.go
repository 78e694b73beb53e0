package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNilControllerIsNoop(t *testing.T) {
	var c *Controller
	require.NoError(t, c.AcquireMemory(context.Background(), 1<<30))
	c.ReleaseMemory(1 << 30)
	require.Equal(t, int64(0), c.MemoryUsage())
	require.NoError(t, c.AcquireIO(context.Background(), 1<<30))
}

func TestMemoryBudgetBlocks(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	ctx := context.Background()
	require.NoError(t, c.AcquireMemory(ctx, 80))
	require.Equal(t, int64(80), c.MemoryUsage())

	blocked, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err := c.AcquireMemory(blocked, 40)
	require.Error(t, err)

	c.ReleaseMemory(80)
	require.NoError(t, c.AcquireMemory(ctx, 40))
	c.ReleaseMemory(40)
	require.Equal(t, int64(0), c.MemoryUsage())
}

func TestMemoryBudgetRejectsOversizedRequest(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	// A request the budget can never satisfy fails immediately instead
	// of blocking forever.
	err := c.AcquireMemory(context.Background(), 101)
	require.ErrorIs(t, err, ErrMemoryLimit)
	require.Equal(t, int64(0), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(context.Background(), 100))
	c.ReleaseMemory(100)
}

func TestAcquireIOSplitsLargeRequests(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	// Larger than burst; must not error out.
	require.NoError(t, c.AcquireIO(context.Background(), 1<<20+512))
}
