// Package timeline provides a host-side monotonic counter with blocking
// waits, matching the semantics of a timeline semaphore or MTLSharedEvent
// as seen from the CPU.
//
// Device and SurfaceProvider implementations use a Counter to satisfy the
// CPU-side portions of the sync contract where the native API offers none:
// Vulkan has no host wait for binary semaphores, and shared-event CPU
// waits predate the driver API on some OS versions. The counter is
// host-local state; it never substitutes for the exported native object,
// it mirrors its value for the process that owns it.
package timeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/texshare"
)

// Counter is a monotonically increasing 64-bit counter with blocking
// waits. It is safe for concurrent use.
type Counter struct {
	mu      sync.Mutex
	value   uint64
	changed chan struct{} // closed and replaced on every signal
}

// New creates a counter starting at initial.
func New(initial uint64) *Counter {
	return &Counter{
		value:   initial,
		changed: make(chan struct{}),
	}
}

// Value returns the current counter value without blocking.
func (c *Counter) Value() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Signal advances the counter to value and wakes all waiters. The value
// must be strictly greater than the current counter; anything else is
// rejected with [texshare.ErrNonMonotonicSignal], never silently accepted.
func (c *Counter) Signal(value uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if value <= c.value {
		return fmt.Errorf("%w: %d <= current %d", texshare.ErrNonMonotonicSignal, value, c.value)
	}
	c.value = value
	close(c.changed)
	c.changed = make(chan struct{})
	return nil
}

// Wait blocks until the counter has been observed at or above target, or
// the timeout fires. A timeout of 0 polls; [texshare.WaitForever] blocks
// indefinitely. The only failure is [texshare.ErrTimeout] — Wait never
// returns success while the counter is strictly below target.
func (c *Counter) Wait(target uint64, timeout time.Duration) error {
	var deadline time.Time
	if timeout != texshare.WaitForever {
		deadline = time.Now().Add(timeout)
	}

	for {
		c.mu.Lock()
		if c.value >= target {
			c.mu.Unlock()
			return nil
		}
		ch := c.changed
		c.mu.Unlock()

		if timeout == texshare.WaitForever {
			<-ch
			continue
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("%w: counter below %d after %v", texshare.ErrTimeout, target, timeout)
		}
		timer := time.NewTimer(remaining)
		select {
		case <-ch:
			timer.Stop()
		case <-timer.C:
			// Re-check under the lock: a signal may have raced the timer.
		}
	}
}
