package systems

import (
	"errors"
	"io"
	"math"
	"os"
	"testing"
	"time"

	"github.com/spaghettifunk/unify/engine/core"
)

func TestMain(m *testing.M) {
	core.SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

// fakeLooper records the attached callback and lets tests deliver ticks by hand.
type fakeLooper struct {
	fn   func()
	sets int
}

func (l *fakeLooper) SetAnimationLoop(fn func()) {
	l.fn = fn
	l.sets++
}

// tick delivers one tick, recovering a panic the way a host does.
func (l *fakeLooper) tick() (recovered interface{}) {
	defer func() { recovered = recover() }()
	if l.fn != nil {
		l.fn()
	}
	return nil
}

type fakeTime struct {
	now time.Time
}

func (f *fakeTime) Now() time.Time { return f.now }

func TestStartDrainsQueueInOrder(t *testing.T) {
	s := NewFrameScheduler(&fakeLooper{})
	var order []int

	s.AddStartCall(func() { order = append(order, 1) })
	s.AddStartCall(func() {
		order = append(order, 2)
		s.AddStartCall(func() { order = append(order, 4) })
	})
	s.AddStartCall(func() { order = append(order, 3) })

	s.Start()
	want := []int{1, 2, 3, 4}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}

	// start calls are one-shot
	s.Start()
	if len(order) != 4 {
		t.Errorf("second Start() re-ran start calls: %v", order)
	}
}

func TestCancelUpdateWhenIdleIsNoop(t *testing.T) {
	l := &fakeLooper{}
	s := NewFrameScheduler(l)

	s.CancelUpdate()
	s.CancelUpdate()
	if l.sets != 0 {
		t.Errorf("looper touched %d times while idle", l.sets)
	}
	if s.Running() {
		t.Error("Running() = true after CancelUpdate")
	}
}

func TestStartUpdateAttachesOnce(t *testing.T) {
	l := &fakeLooper{}
	s := NewFrameScheduler(l)

	if err := s.StartUpdate(); err != nil {
		t.Fatalf("StartUpdate() error: %v", err)
	}
	if err := s.StartUpdate(); err != nil {
		t.Fatalf("second StartUpdate() error: %v", err)
	}
	if l.sets != 1 || l.fn == nil {
		t.Errorf("looper sets = %d (fn nil: %v), want 1 attached", l.sets, l.fn == nil)
	}
	s.CancelUpdate()
	if l.fn != nil {
		t.Error("CancelUpdate did not detach the looper")
	}
}

func TestTickRunsFrameCallsThenRender(t *testing.T) {
	l := &fakeLooper{}
	s := NewFrameScheduler(l)
	var trace []string

	s.AddFrameFunc(func(FrameTime) { trace = append(trace, "a") })
	s.AddFrameFunc(func(FrameTime) { trace = append(trace, "b") })
	s.SetRenderFunction(func() { trace = append(trace, "render") })
	s.StartUpdate()

	if r := l.tick(); r != nil {
		t.Fatalf("tick panicked: %v", r)
	}
	want := []string{"a", "b", "render"}
	if len(trace) != 3 || trace[0] != want[0] || trace[1] != want[1] || trace[2] != want[2] {
		t.Errorf("trace = %v, want %v", trace, want)
	}
	if s.FrameCount() != 1 {
		t.Errorf("FrameCount() = %d, want 1", s.FrameCount())
	}
}

func TestSetRenderFunctionReplacesPrevious(t *testing.T) {
	l := &fakeLooper{}
	s := NewFrameScheduler(l)
	first, second := 0, 0
	s.SetRenderFunction(func() { first++ })
	s.SetRenderFunction(func() { second++ })
	s.StartUpdate()
	l.tick()
	if first != 0 || second != 1 {
		t.Errorf("render counts = (%d, %d), want (0, 1)", first, second)
	}
}

func TestRemoveFrameCallRemovesEveryOccurrence(t *testing.T) {
	l := &fakeLooper{}
	s := NewFrameScheduler(l)
	calls := 0
	c := NewFrameCall(func(FrameTime) { calls++ })

	s.AddFrameCall(c)
	s.AddFrameCall(c)
	s.StartUpdate()
	l.tick()
	if calls != 2 {
		t.Fatalf("duplicate frame call ran %d times, want 2", calls)
	}

	s.RemoveFrameCall(c)
	if s.FrameCalls() != 0 {
		t.Fatalf("FrameCalls() = %d after remove, want 0", s.FrameCalls())
	}
	l.tick()
	if calls != 2 {
		t.Errorf("removed frame call still ran (%d)", calls)
	}

	// never added
	s.RemoveFrameCall(NewFrameCall(func(FrameTime) {}))
	s.RemoveFrameCall(nil)
}

func TestFrameCallMutationDuringTick(t *testing.T) {
	l := &fakeLooper{}
	s := NewFrameScheduler(l)
	var trace []string

	late := NewFrameCall(func(FrameTime) { trace = append(trace, "late") })
	var self *FrameCall
	self = NewFrameCall(func(FrameTime) {
		trace = append(trace, "self")
		s.RemoveFrameCall(self)
		s.AddFrameCall(late)
	})
	s.AddFrameCall(self)
	s.AddFrameFunc(func(FrameTime) { trace = append(trace, "tail") })
	s.StartUpdate()

	l.tick()
	if len(trace) != 2 || trace[0] != "self" || trace[1] != "tail" {
		t.Fatalf("first tick trace = %v, want [self tail]", trace)
	}

	trace = nil
	l.tick()
	if len(trace) != 2 || trace[0] != "tail" || trace[1] != "late" {
		t.Errorf("second tick trace = %v, want [tail late]", trace)
	}
}

func TestTickErrorHaltsOnNextTick(t *testing.T) {
	l := &fakeLooper{}
	var halted error
	s := NewFrameScheduler(l, WithHaltHandler(func(err error) { halted = err }))

	calls, renders := 0, 0
	fail := true
	s.AddFrameFunc(func(FrameTime) {
		calls++
		if fail {
			fail = false
			panic("boom")
		}
	})
	s.SetRenderFunction(func() { renders++ })
	s.StartUpdate()

	// tick N: the callback panics past the scheduler
	if r := l.tick(); r != "boom" {
		t.Fatalf("tick N recovered %v, want boom", r)
	}
	if renders != 0 {
		t.Errorf("render ran after the callback panicked")
	}
	if s.Halted() {
		t.Fatal("scheduler halted during the failing tick, want one tick delay")
	}

	// tick N+1: the armed guard halts before any callback
	r := l.tick()
	err, ok := r.(error)
	if !ok || !errors.Is(err, core.ErrSchedulerHalted) {
		t.Fatalf("tick N+1 recovered %v, want ErrSchedulerHalted", r)
	}
	if calls != 1 {
		t.Errorf("frame call ran %d times, want 1", calls)
	}
	if l.fn != nil {
		t.Error("halted scheduler still attached to the looper")
	}
	if !errors.Is(halted, core.ErrSchedulerHalted) {
		t.Errorf("halt handler got %v", halted)
	}
	select {
	case <-s.Done():
	default:
		t.Error("Done() not closed after halt")
	}

	if err := s.StartUpdate(); !errors.Is(err, core.ErrSchedulerHalted) {
		t.Errorf("StartUpdate() after halt = %v, want ErrSchedulerHalted", err)
	}
	// a stray tick is ignored
	s.Tick()
	if calls != 1 {
		t.Errorf("frame call ran after halt")
	}
}

func TestTickErrorSurvivesCancelAndRestart(t *testing.T) {
	l := &fakeLooper{}
	s := NewFrameScheduler(l)
	s.AddFrameFunc(func(FrameTime) { panic("boom") })
	s.StartUpdate()
	l.tick()

	s.CancelUpdate()
	if err := s.StartUpdate(); err != nil {
		t.Fatalf("StartUpdate() before halt detection = %v", err)
	}
	if r := l.tick(); r == nil {
		t.Fatal("tick after restart did not halt")
	}
	if !s.Halted() {
		t.Error("Halted() = false")
	}
}

func TestCancelledSchedulerIgnoresLateTicks(t *testing.T) {
	l := &fakeLooper{}
	s := NewFrameScheduler(l)
	calls := 0
	s.AddFrameFunc(func(FrameTime) { calls++ })
	s.StartUpdate()

	stale := l.fn
	s.CancelUpdate()
	stale()
	if calls != 0 {
		t.Errorf("tick delivered after CancelUpdate ran %d calls", calls)
	}
}

func TestCancelFromInsideTickCompletesTick(t *testing.T) {
	l := &fakeLooper{}
	s := NewFrameScheduler(l)
	rendered := false
	s.AddFrameFunc(func(FrameTime) { s.CancelUpdate() })
	s.SetRenderFunction(func() { rendered = true })
	s.StartUpdate()

	l.fn()
	if !rendered {
		t.Error("tick in progress was interrupted by CancelUpdate")
	}
	if s.FrameCount() != 1 {
		t.Errorf("FrameCount() = %d, want 1", s.FrameCount())
	}
}

func TestFrameTimeAccumulates(t *testing.T) {
	ft := &fakeTime{now: time.Unix(0, 0)}
	l := &fakeLooper{}
	s := NewFrameScheduler(l, WithTimeSource(ft.Now))
	var seen []FrameTime
	s.AddFrameFunc(func(ftm FrameTime) { seen = append(seen, ftm) })
	s.StartUpdate()

	l.tick() // starts the clock, delta 0
	ft.now = ft.now.Add(20 * time.Millisecond)
	l.tick()
	ft.now = ft.now.Add(30 * time.Millisecond)
	l.tick()

	if len(seen) != 3 {
		t.Fatalf("saw %d frames, want 3", len(seen))
	}
	if seen[0].Time != 0 || seen[0].Delta != 0 {
		t.Errorf("first frame = %+v, want zero", seen[0])
	}
	if math.Abs(seen[2].Delta-0.020) > 1e-9 || math.Abs(seen[2].Time-0.020) > 1e-9 {
		t.Errorf("third frame = %+v, want delta/time 0.020", seen[2])
	}
	end := s.Time()
	if math.Abs(end.Time-0.050) > 1e-9 || math.Abs(end.Delta-0.030) > 1e-9 {
		t.Errorf("Time() = %+v, want time 0.050 delta 0.030", end)
	}
}
