package core

import "time"

// TimeSource returns the current instant. Tests swap it for a fake.
type TimeSource func() time.Time

// Clock measures the time between two GetDelta calls, in seconds.
// The first GetDelta after Start returns the time since Start.
type Clock struct {
	now       TimeSource
	startTime time.Time
	oldTime   time.Time
	elapsed   float64
	running   bool
}

func NewClock() *Clock {
	return NewClockWithSource(time.Now)
}

func NewClockWithSource(now TimeSource) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Starts the provided clock. Resets elapsed time.
func (c *Clock) Start() {
	c.startTime = c.now()
	c.oldTime = c.startTime
	c.elapsed = 0
	c.running = true
}

// Stops the provided clock. Does not reset elapsed time.
func (c *Clock) Stop() {
	c.GetDelta()
	c.running = false
}

// GetDelta returns the seconds passed since the previous call and accumulates
// them into Elapsed. A stopped clock is restarted on demand.
func (c *Clock) GetDelta() float64 {
	if !c.running {
		c.Start()
		return 0
	}
	t := c.now()
	diff := t.Sub(c.oldTime).Seconds()
	c.oldTime = t
	c.elapsed += diff
	return diff
}

func (c *Clock) Elapsed() float64 {
	return c.elapsed
}

func (c *Clock) Running() bool {
	return c.running
}
