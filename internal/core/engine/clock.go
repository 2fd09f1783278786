package engine

import "time"

// Clock is the pluggable tick scheduler. Production uses WallClock; tests
// drive Step directly or use ManualClock.
type Clock interface {
	Start(interval time.Duration)
	C() <-chan time.Time
	Stop()
	Now() time.Time
}

// WallClock schedules ticks off a real time.Ticker.
type WallClock struct {
	ticker *time.Ticker
}

func NewWallClock() *WallClock { return &WallClock{} }

func (c *WallClock) Start(interval time.Duration) {
	c.ticker = time.NewTicker(interval)
}

func (c *WallClock) C() <-chan time.Time {
	if c.ticker == nil {
		return nil
	}
	return c.ticker.C
}

func (c *WallClock) Stop() {
	if c.ticker != nil {
		c.ticker.Stop()
	}
}

func (c *WallClock) Now() time.Time { return time.Now() }

// ManualClock is a hand-cranked scheduler for deterministic tests. Advance
// moves the clock forward and emits one tick.
type ManualClock struct {
	ch  chan time.Time
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{ch: make(chan time.Time, 64), now: start}
}

func (c *ManualClock) Start(time.Duration)  {}
func (c *ManualClock) C() <-chan time.Time  { return c.ch }
func (c *ManualClock) Stop()                {}
func (c *ManualClock) Now() time.Time       { return c.now }

// Advance moves the clock by d and delivers a tick.
func (c *ManualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
	c.ch <- c.now
}
