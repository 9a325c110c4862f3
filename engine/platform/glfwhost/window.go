package glfwhost

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/spaghettifunk/unify/engine/core"
	"github.com/spaghettifunk/unify/engine/platform"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()

	platform.Register("glfw", func(cfg platform.HostConfig) (platform.Host, error) {
		return New(cfg), nil
	})
}

// Window is a GLFW window without a client API; rendering is left to the
// frame callbacks.
type Window struct {
	cfg platform.HostConfig

	mu       sync.Mutex
	window   *glfw.Window
	loop     func()
	onResize func(width, height uint32)
	width    uint32
	height   uint32
	closed   bool
}

func New(cfg platform.HostConfig) *Window {
	return &Window{
		cfg:    cfg,
		width:  cfg.Width,
		height: cfg.Height,
	}
}

func (w *Window) startup() error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	window, err := glfw.CreateWindow(int(w.cfg.Width), int(w.cfg.Height), w.cfg.Name, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		glfw.Terminate()
		return err
	}
	window.SetFramebufferSizeCallback(w.framebufferSizeCallback)
	window.SetPos(int(w.cfg.PosX), int(w.cfg.PosY))
	window.Show()

	w.mu.Lock()
	w.window = window
	w.mu.Unlock()
	return nil
}

func (w *Window) framebufferSizeCallback(_ *glfw.Window, width, height int) {
	w.mu.Lock()
	w.width, w.height = uint32(width), uint32(height)
	fn := w.onResize
	w.mu.Unlock()

	if fn != nil {
		fn(uint32(width), uint32(height))
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

// Run must be called from the main goroutine.
func (w *Window) Run(ctx context.Context) error {
	if err := w.startup(); err != nil {
		return err
	}
	defer glfw.Terminate()

	fps := w.cfg.TargetFPS
	if fps <= 0 {
		fps = 60
	}
	frame := time.Second / time.Duration(fps)

	for !w.window.ShouldClose() {
		start := time.Now()
		glfw.PollEvents()

		select {
		case <-ctx.Done():
			return nil
		default:
		}

		w.mu.Lock()
		fn, closed := w.loop, w.closed
		w.mu.Unlock()
		if closed {
			return nil
		}
		if fn != nil {
			if err := platform.Deliver(fn); err != nil {
				return err
			}
		}

		if remaining := frame - time.Since(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
	return nil
}

func (w *Window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	if w.window != nil {
		w.window.SetShouldClose(true)
	}
	return nil
}
