package common

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Clock is the source of time for the background loops, so tests
// can move time forward without sleeping
type Clock interface {
	Now() time.Time
	// Sleep blocks for the given duration or until the context is done,
	// in which case the context error is returned
	Sleep(ctx context.Context, d time.Duration) error
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SleepUntil sleeps until the provided instant
func SleepUntil(ctx context.Context, clock Clock, when time.Time) error {
	return clock.Sleep(ctx, when.Sub(clock.Now()))
}

type sleeper struct {
	deadline time.Time
	wake     chan struct{}
}

// FakeClock only moves when Advance is called
type FakeClock struct {
	mu       sync.Mutex
	now      time.Time
	sleepers []*sleeper
}

func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	c.mu.Lock()
	s := &sleeper{deadline: c.now.Add(d), wake: make(chan struct{})}
	c.sleepers = append(c.sleepers, s)
	c.mu.Unlock()

	select {
	case <-s.wake:
		return nil
	case <-ctx.Done():
		c.remove(s)
		return ctx.Err()
	}
}

// Advance moves the clock forward and wakes every sleeper whose deadline is reached
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	sort.Slice(c.sleepers, func(i, j int) bool { return c.sleepers[i].deadline.Before(c.sleepers[j].deadline) })
	remaining := c.sleepers[:0]
	for _, s := range c.sleepers {
		if !s.deadline.After(c.now) {
			close(s.wake)
		} else {
			remaining = append(remaining, s)
		}
	}
	c.sleepers = remaining
	c.mu.Unlock()
}

// BlockUntil waits until n goroutines are sleeping on the clock, or the timeout expires.
// Returns whether the sleepers showed up
func (c *FakeClock) BlockUntil(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		count := len(c.sleepers)
		c.mu.Unlock()
		if count >= n {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func (c *FakeClock) remove(target *sleeper) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, s := range c.sleepers {
		if s == target {
			c.sleepers = append(c.sleepers[:i], c.sleepers[i+1:]...)
			return
		}
	}
}
