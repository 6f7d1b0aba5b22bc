package simulator

import "sync"

// Clock is the simulated ledger clock. Market operations read it through the
// market's injected clock; the simulator advances it between operations to
// compress days of signal into seconds of wall time.
type Clock struct {
	mu  sync.Mutex
	now uint64
}

// NewClock starts the ledger clock at the given unix timestamp.
func NewClock(start uint64) *Clock {
	return &Clock{now: start}
}

// Now returns the current ledger timestamp.
func (c *Clock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the ledger clock forward by d seconds.
func (c *Clock) Advance(d uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
}
