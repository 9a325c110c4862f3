package systems

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/spaghettifunk/unify/engine/containers"
	"github.com/spaghettifunk/unify/engine/core"
)

// FrameTime is handed to every frame callback. Both values are in seconds.
type FrameTime struct {
	Time  float64
	Delta float64
}

type FrameFunc func(t FrameTime)

type RenderFunc func()

// FrameCall wraps a FrameFunc so it can be removed by identity.
// Adding the same *FrameCall twice registers it twice.
type FrameCall struct {
	ID uuid.UUID
	fn FrameFunc
}

func NewFrameCall(fn FrameFunc) *FrameCall {
	return &FrameCall{
		ID: uuid.New(),
		fn: fn,
	}
}

func (c *FrameCall) String() string {
	return c.ID.String()
}

// AnimationLooper is the tick source. A nil callback detaches it.
type AnimationLooper interface {
	SetAnimationLoop(fn func())
}

type SchedulerOption func(*FrameScheduler)

// WithTimeSource replaces the wall clock used for delta time.
func WithTimeSource(now core.TimeSource) SchedulerOption {
	return func(s *FrameScheduler) {
		s.clock = core.NewClockWithSource(now)
	}
}

// WithVerbose logs every frame call addition and removal.
func WithVerbose(verbose bool) SchedulerOption {
	return func(s *FrameScheduler) {
		s.verbose = verbose
	}
}

// WithHaltHandler is invoked once, with the fatal error, when the scheduler halts.
func WithHaltHandler(fn func(err error)) SchedulerOption {
	return func(s *FrameScheduler) {
		s.onHalt = fn
	}
}

// FrameScheduler runs the registered frame calls followed by the render function
// once per tick delivered by its AnimationLooper.
//
// Every tick arms a guard flag before invoking any callback and disarms it once
// the render step and the time bookkeeping are done. A callback that panics leaves
// the guard armed; the following tick finds it armed, detaches from the looper and
// panics with ErrSchedulerHalted. A halted scheduler never runs again.
type FrameScheduler struct {
	mu sync.Mutex

	looper     AnimationLooper
	startCalls *containers.RingQueue[func()]
	frameCalls []*FrameCall
	render     RenderFunc

	clock   *core.Clock
	time    FrameTime
	frames  uint64
	metrics *core.Metrics

	frameErrorFlag bool
	running        bool
	halted         bool
	err            error
	done           chan struct{}

	verbose bool
	onHalt  func(err error)
}

func NewFrameScheduler(looper AnimationLooper, opts ...SchedulerOption) *FrameScheduler {
	s := &FrameScheduler{
		looper:     looper,
		startCalls: containers.NewGrowableRingQueue[func()](8),
		frameCalls: []*FrameCall{},
		clock:      core.NewClock(),
		metrics:    core.NewMetrics(),
		done:       make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// AddStartCall queues fn to run once on the next Start.
func (s *FrameScheduler) AddStartCall(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// growable queue never reports full
	_ = s.startCalls.Enqueue(fn)
}

// Start drains the start queue in FIFO order. Start calls queued by a running
// start call are drained by the same Start.
func (s *FrameScheduler) Start() {
	for {
		s.mu.Lock()
		fn, err := s.startCalls.Dequeue()
		s.mu.Unlock()
		if err != nil {
			return
		}
		fn()
	}
}

// AddFrameCall appends c to the frame call sequence. Duplicates are kept.
func (s *FrameScheduler) AddFrameCall(c *FrameCall) {
	if c == nil || c.fn == nil {
		return
	}
	s.mu.Lock()
	s.frameCalls = append(s.frameCalls, c)
	s.mu.Unlock()

	if s.verbose {
		core.LogDebug("💠 frame call %s added to update loop", c)
	}
}

// AddFrameFunc wraps fn into a FrameCall, adds it and returns the handle.
func (s *FrameScheduler) AddFrameFunc(fn FrameFunc) *FrameCall {
	c := NewFrameCall(fn)
	s.AddFrameCall(c)
	return c
}

// RemoveFrameCall removes every occurrence of c. Unknown calls are ignored.
func (s *FrameScheduler) RemoveFrameCall(c *FrameCall) {
	s.mu.Lock()
	kept := make([]*FrameCall, 0, len(s.frameCalls))
	removed := 0
	for _, fc := range s.frameCalls {
		if fc == c {
			removed++
			continue
		}
		kept = append(kept, fc)
	}
	s.frameCalls = kept
	s.mu.Unlock()

	if s.verbose && removed > 0 {
		core.LogDebug("💠 frame call %s removed from update loop (%d)", c, removed)
	}
}

// FrameCalls returns the number of registered frame calls.
func (s *FrameScheduler) FrameCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frameCalls)
}

// SetRenderFunction replaces the render step. nil disables rendering.
func (s *FrameScheduler) SetRenderFunction(fn RenderFunc) {
	s.mu.Lock()
	s.render = fn
	s.mu.Unlock()
}

// Render invokes the current render function outside of a tick.
func (s *FrameScheduler) Render() {
	s.mu.Lock()
	render := s.render
	s.mu.Unlock()
	if render != nil {
		render()
	}
}

// StartUpdate attaches Tick to the looper.
func (s *FrameScheduler) StartUpdate() error {
	s.mu.Lock()
	if s.halted {
		err := s.err
		s.mu.Unlock()
		return err
	}
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	s.looper.SetAnimationLoop(s.Tick)
	return nil
}

// CancelUpdate detaches from the looper. Ticks delivered afterwards are ignored.
// A tick that is already executing runs to completion.
func (s *FrameScheduler) CancelUpdate() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.looper.SetAnimationLoop(nil)
}

// Tick executes one frame. It is meant to be driven by the looper only.
func (s *FrameScheduler) Tick() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	if s.frameErrorFlag {
		s.mu.Unlock()
		panic(s.halt())
	}
	// arm
	s.frameErrorFlag = true
	calls := make([]*FrameCall, len(s.frameCalls))
	copy(calls, s.frameCalls)
	render := s.render
	t := s.time
	s.mu.Unlock()

	for _, c := range calls {
		c.fn(t)
	}
	if render != nil {
		render()
	}

	s.mu.Lock()
	delta := s.clock.GetDelta()
	s.time.Delta = delta
	s.time.Time += delta
	s.frames++
	// disarm
	s.frameErrorFlag = false
	s.mu.Unlock()

	s.metrics.Update(delta)
}

func (s *FrameScheduler) halt() error {
	s.mu.Lock()
	s.running = false
	s.halted = true
	s.err = fmt.Errorf("%w (after %d frames)", core.ErrSchedulerHalted, s.frames)
	err := s.err
	close(s.done)
	s.mu.Unlock()

	s.looper.SetAnimationLoop(nil)
	core.LogError("⚡ %s", err)
	if s.onHalt != nil {
		s.onHalt(err)
	}
	return err
}

// Running reports whether Tick is attached to the looper.
func (s *FrameScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *FrameScheduler) Halted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.halted
}

// Done is closed when the scheduler halts.
func (s *FrameScheduler) Done() <-chan struct{} {
	return s.done
}

// Err returns the fatal error once halted, nil otherwise.
func (s *FrameScheduler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Time returns the time record handed to the next tick's frame calls.
func (s *FrameScheduler) Time() FrameTime {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.time
}

// FrameCount returns the number of ticks that completed cleanly.
func (s *FrameScheduler) FrameCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func (s *FrameScheduler) Metrics() *core.Metrics {
	return s.metrics
}
