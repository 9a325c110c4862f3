package platform

import (
	"context"
	"sync"
	"time"

	"github.com/spaghettifunk/unify/engine/core"
)

const defaultTargetFPS = 60

// Headless ticks on a timer without any window.
type Headless struct {
	mu       sync.Mutex
	loop     func()
	onResize func(width, height uint32)
	width    uint32
	height   uint32
	interval time.Duration
	ticks    uint64

	closeOnce sync.Once
	closed    chan struct{}
}

func NewHeadless(cfg HostConfig) *Headless {
	fps := cfg.TargetFPS
	if fps <= 0 {
		fps = defaultTargetFPS
	}
	return &Headless{
		width:    cfg.Width,
		height:   cfg.Height,
		interval: time.Second / time.Duration(fps),
		closed:   make(chan struct{}),
	}
}

func (h *Headless) SetAnimationLoop(fn func()) {
	h.mu.Lock()
	h.loop = fn
	h.mu.Unlock()
}

func (h *Headless) SetResizeCallback(fn func(width, height uint32)) {
	h.mu.Lock()
	h.onResize = fn
	h.mu.Unlock()
}

func (h *Headless) Size() (uint32, uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}

// Resize changes the reported size and notifies the resize callback.
func (h *Headless) Resize(width, height uint32) {
	h.mu.Lock()
	h.width, h.height = width, height
	fn := h.onResize
	h.mu.Unlock()

	if fn != nil {
		fn(width, height)
	}
}

// Step delivers a single tick, if a loop is attached.
func (h *Headless) Step() error {
	h.mu.Lock()
	fn := h.loop
	h.mu.Unlock()
	if fn == nil {
		return nil
	}

	err := Deliver(fn)

	h.mu.Lock()
	h.ticks++
	h.mu.Unlock()
	return err
}

// Ticks returns the number of ticks delivered to an attached loop.
func (h *Headless) Ticks() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ticks
}

func (h *Headless) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	core.LogDebug("headless host ticking every %s", h.interval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.closed:
			return nil
		case <-ticker.C:
			if err := h.Step(); err != nil {
				return err
			}
		}
	}
}

func (h *Headless) Close() error {
	h.closeOnce.Do(func() { close(h.closed) })
	return nil
}
