package simulation

import "time"

// Clock supplies the duration, in seconds, of the next simulation step.
type Clock interface {
	Delta() float64
}

// FixedClock always returns the same step, which keeps runs reproducible.
type FixedClock float64

// Delta returns the fixed step.
func (c FixedClock) Delta() float64 { return float64(c) }

// WallClock measures real time elapsed between two calls.
// The first call has no reference point and returns the nominal step.
type WallClock struct {
	nominal float64
	last    time.Time
	now     func() time.Time
}

// NewWallClock returns a clock whose first Delta is nominal seconds.
func NewWallClock(nominal float64) *WallClock {
	return &WallClock{nominal: nominal, now: time.Now}
}

// Delta returns the seconds elapsed since the previous call.
func (c *WallClock) Delta() float64 {
	now := c.now()
	if c.last.IsZero() {
		c.last = now
		return c.nominal
	}
	dt := now.Sub(c.last).Seconds()
	c.last = now
	return dt
}
