package ebitenhost

import (
	"context"
	"errors"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/spaghettifunk/unify/engine/core"
	"github.com/spaghettifunk/unify/engine/platform"
)

func init() {
	platform.Register("ebiten", func(cfg platform.HostConfig) (platform.Host, error) {
		return New(cfg), nil
	})
}

// Window drives the frame callbacks from ebiten's Update.
type Window struct {
	cfg platform.HostConfig

	mu       sync.Mutex
	loop     func()
	onResize func(width, height uint32)
	width    uint32
	height   uint32
	closed   bool
	err      error
}

func New(cfg platform.HostConfig) *Window {
	return &Window{
		cfg:    cfg,
		width:  cfg.Width,
		height: cfg.Height,
	}
}

func (w *Window) SetAnimationLoop(fn func()) {
	w.mu.Lock()
	w.loop = fn
	w.mu.Unlock()
}

func (w *Window) SetResizeCallback(fn func(width, height uint32)) {
	w.mu.Lock()
	w.onResize = fn
	w.mu.Unlock()
}

func (w *Window) Size() (uint32, uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

func (w *Window) Update() error {
	w.mu.Lock()
	fn, closed := w.loop, w.closed
	w.mu.Unlock()
	if closed {
		return ebiten.Termination
	}
	if fn != nil {
		if err := platform.Deliver(fn); err != nil {
			w.mu.Lock()
			w.err = err
			w.mu.Unlock()
			return ebiten.Termination
		}
	}
	return nil
}

func (w *Window) Draw(screen *ebiten.Image) {}

func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	width, height := uint32(outsideWidth), uint32(outsideHeight)

	w.mu.Lock()
	changed := width != w.width || height != w.height
	w.width, w.height = width, height
	fn := w.onResize
	w.mu.Unlock()

	if changed && fn != nil {
		fn(width, height)
	}
	return outsideWidth, outsideHeight
}

// Run must be called from the main goroutine.
func (w *Window) Run(ctx context.Context) error {
	ebiten.SetWindowTitle(w.cfg.Name)
	ebiten.SetWindowSize(int(w.cfg.Width), int(w.cfg.Height))
	ebiten.SetWindowPosition(int(w.cfg.PosX), int(w.cfg.PosY))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if w.cfg.TargetFPS > 0 {
		ebiten.SetTPS(w.cfg.TargetFPS)
	}

	stop := context.AfterFunc(ctx, func() { w.Close() })
	defer stop()

	err := ebiten.RunGame(w)
	if err != nil && !errors.Is(err, ebiten.Termination) {
		core.LogError("ebiten: %s", err)
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *Window) Close() error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	return nil
}
