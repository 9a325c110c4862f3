package engine

import "github.com/spaghettifunk/unify/engine/systems"

type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnRender          Render
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

// Initialize runs once the engine is built. Assets requested here form the
// first batch; the frame loop starts when it has loaded.
type Initialize func(e *Engine) error

// Update runs as the first frame call of every tick.
type Update func(t systems.FrameTime) error

// Render is installed as the scheduler's render step.
type Render func() error

type OnResize func(width uint32, height uint32) error

type Shutdown func() error
