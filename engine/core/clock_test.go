package core

import (
	"math"
	"testing"
	"time"
)

type fakeTime struct {
	now time.Time
}

func (f *fakeTime) Now() time.Time { return f.now }

func (f *fakeTime) Advance(d time.Duration) { f.now = f.now.Add(d) }

func TestClockGetDelta(t *testing.T) {
	ft := &fakeTime{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewClockWithSource(ft.Now)

	// first call starts the clock
	if d := c.GetDelta(); d != 0 {
		t.Fatalf("first GetDelta() = %v, want 0", d)
	}
	if !c.Running() {
		t.Fatal("clock should be running after first GetDelta")
	}

	ft.Advance(16 * time.Millisecond)
	if d := c.GetDelta(); math.Abs(d-0.016) > 1e-9 {
		t.Errorf("GetDelta() = %v, want 0.016", d)
	}

	ft.Advance(500 * time.Millisecond)
	if d := c.GetDelta(); math.Abs(d-0.5) > 1e-9 {
		t.Errorf("GetDelta() = %v, want 0.5", d)
	}

	if e := c.Elapsed(); math.Abs(e-0.516) > 1e-9 {
		t.Errorf("Elapsed() = %v, want 0.516", e)
	}
}

func TestClockStartResetsElapsed(t *testing.T) {
	ft := &fakeTime{now: time.Unix(100, 0)}
	c := NewClockWithSource(ft.Now)
	c.Start()
	ft.Advance(time.Second)
	c.GetDelta()
	c.Start()
	if c.Elapsed() != 0 {
		t.Errorf("Elapsed() after Start = %v, want 0", c.Elapsed())
	}
}
