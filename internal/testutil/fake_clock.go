package testutil

import (
	"context"
	"sync"
	"time"
)

// FakeClock records sleeps and advances its own time instead of waiting.
type FakeClock struct {
	mu       sync.Mutex
	now      time.Time
	Slept    []time.Duration
	SleepErr error
}

// NewFakeClock starts at t.
func NewFakeClock(t time.Time) *FakeClock { return &FakeClock{now: t} }

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Slept = append(c.Slept, d)
	if c.SleepErr != nil {
		return c.SleepErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c.now = c.now.Add(d)
	return nil
}

// Sleeps returns a copy of the recorded sleeps.
func (c *FakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.Slept...)
}

//Personal.AI order the ending
