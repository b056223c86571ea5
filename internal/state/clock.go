package state

import "sync/atomic"

// Clock is a monotonic epoch counter. The authority ticks it on every clear;
// mirrors observe the authority's value and never move backwards.
type Clock struct {
	epoch atomic.Uint64
}

// Now returns the current epoch.
func (c *Clock) Now() uint64 {
	return c.epoch.Load()
}

// Tick bumps the epoch and returns the new value.
func (c *Clock) Tick() uint64 {
	return c.epoch.Add(1)
}

// Observe adopts a remote epoch if it is ahead and reports the resulting value.
func (c *Clock) Observe(remote uint64) uint64 {
	for {
		cur := c.epoch.Load()
		if remote <= cur {
			return cur
		}
		if c.epoch.CompareAndSwap(cur, remote) {
			return remote
		}
	}
}

// Reset sets the epoch unconditionally.
func (c *Clock) Reset(epoch uint64) {
	c.epoch.Store(epoch)
}

// Stale reports whether something tagged with epoch predates the clock.
func (c *Clock) Stale(epoch uint64) bool {
	return epoch < c.epoch.Load()
}
