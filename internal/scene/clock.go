package scene

import "time"

// Clock supplies monotonically increasing scene time in seconds.
type Clock interface {
	Elapsed() float64
}

// MonotonicClock measures wall time since it was started.
type MonotonicClock struct {
	start time.Time
}

// NewMonotonicClock starts a clock at zero.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

func (c *MonotonicClock) Elapsed() float64 {
	return time.Since(c.start).Seconds()
}

// ManualClock is advanced explicitly. Used by tests and fixed-step capture.
type ManualClock struct {
	T float64
}

func (c *ManualClock) Elapsed() float64 { return c.T }

// Advance moves the clock forward by dt seconds.
func (c *ManualClock) Advance(dt float64) { c.T += dt }
