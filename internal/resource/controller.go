// Package resource bounds the memory and IO appetite of the archive
// write pipeline.
//
// While clusters compress on worker goroutines, their uncompressed
// payloads are held in memory; the controller caps those in-flight
// bytes so a fast producer cannot outrun slow compression workers. The
// optional IO limiter throttles bulk transfers (e.g. publishing a
// finished archive to object storage).
package resource

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimit is returned when a single allocation can never fit
// the configured memory budget.
var ErrMemoryLimit = errors.New("resource: allocation exceeds the memory limit")

// Config holds resource limits. Zero values disable the corresponding
// limit.
type Config struct {
	// MemoryLimitBytes caps in-flight uncompressed cluster bytes.
	MemoryLimitBytes int64
	// IOLimitBytesPerSec caps bulk transfer throughput.
	IOLimitBytesPerSec int64
}

// Controller tracks and enforces resource budgets. A nil *Controller is
// valid and enforces nothing.
type Controller struct {
	memSem    *semaphore.Weighted
	memLimit  int64
	memUsed   atomic.Int64
	ioLimiter *rate.Limiter
}

// NewController creates a controller for the given limits.
func NewController(cfg Config) *Controller {
	c := &Controller{}
	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
		c.memLimit = cfg.MemoryLimitBytes
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}
	return c
}

// AcquireMemory reserves bytes, blocking until the budget allows it or
// ctx is canceled.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}
	if c.memSem != nil {
		// An over-budget request would block forever; refuse it instead.
		if bytes > c.memLimit {
			return fmt.Errorf("%w: %d bytes requested, limit is %d", ErrMemoryLimit, bytes, c.memLimit)
		}
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}
	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory returns reserved bytes to the budget.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the currently reserved bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireIO waits until the IO budget allows bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil || bytes <= 0 {
		return nil
	}
	// WaitN cannot exceed the burst; split large requests.
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := bytes
		if n > burst {
			n = burst
		}
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
