package services

import (
	"sync"
	"time"
)

// Clock supplies logical time in seconds. Values must be positive: zero is
// reserved as the "stream not started" sentinel.
type Clock interface {
	Now() int64
}

type SystemClock struct{}

func (SystemClock) Now() int64 { return time.Now().Unix() }

// ManualClock only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now int64
}

func NewManualClock(start int64) *ManualClock {
	if start <= 0 {
		start = 1
	}
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d seconds; negative values are ignored.
func (c *ManualClock) Advance(d int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.now += d
	}
	return c.now
}

// Set moves the clock to t if t is later than the current time.
func (c *ManualClock) Set(t int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t > c.now {
		c.now = t
	}
	return c.now
}
