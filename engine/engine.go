package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/spaghettifunk/unify/engine/assets"
	"github.com/spaghettifunk/unify/engine/assets/loaders"
	"github.com/spaghettifunk/unify/engine/core"
	"github.com/spaghettifunk/unify/engine/overlay"
	"github.com/spaghettifunk/unify/engine/platform"
	"github.com/spaghettifunk/unify/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// Engine owns one host, one asset coordinator and one frame scheduler. The
// frame loop is started by the coordinator once the requested assets loaded.
type Engine struct {
	mu           sync.Mutex
	currentStage Stage
	gameInstance *Game
	config       *ApplicationConfig

	host        platform.Host
	presenter   assets.Presenter
	events      *core.EventBus
	jobs        *systems.JobSystem
	coordinator *assets.Coordinator
	callbacks   *systems.CallbackQueue
	loop        *frameLoop
	scheduler   *systems.FrameScheduler
	watcher     *assets.Watcher

	width       uint32
	height      uint32
	isSuspended bool
	started     bool
	updateCall  *systems.FrameCall

	shutdownOnce sync.Once
	shutdownErr  error
}

// builtinLoaders returns the loader registered for each asset kind.
var builtinLoaders = func() map[assets.Kind]assets.Loader {
	return map[assets.Kind]assets.Loader{
		assets.KindTexture: &loaders.TextureLoader{},
		assets.KindFont:    &loaders.FontLoader{},
		assets.KindAudio:   &loaders.AudioLoader{},
		assets.KindModel:   &loaders.ModelLoader{},
	}
}

func New(g *Game) (*Engine, error) {
	cfg := g.ApplicationConfig
	if cfg == nil {
		cfg = DefaultApplicationConfig()
		g.ApplicationConfig = cfg
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		currentStage: EngineStageBooting,
		gameInstance: g,
		config:       cfg,
		events:       core.NewEventBus(),
		width:        cfg.StartWidth,
		height:       cfg.StartHeight,
	}

	level, _ := core.ParseLogLevel(cfg.LogLevel)
	core.SetLogLevel(level)

	host, err := platform.NewHost(cfg.Host, platform.HostConfig{
		Name:      cfg.Name,
		PosX:      cfg.StartPosX,
		PosY:      cfg.StartPosY,
		Width:     cfg.StartWidth,
		Height:    cfg.StartHeight,
		TargetFPS: cfg.TargetFPS,
	})
	if err != nil {
		core.LogError("%s", err)
		return nil, err
	}
	e.host = host

	switch cfg.Overlay {
	case OverlayNone:
		e.presenter = overlay.NewSilent()
	default:
		e.presenter = overlay.NewTerminal(os.Stderr)
	}

	jobs, err := systems.NewJobSystem(cfg.Workers, cfg.QueueSize)
	if err != nil {
		core.LogError("%s", err)
		_ = host.Close()
		return nil, err
	}
	e.jobs = jobs

	// resolutions reach the coordinator on the host thread, between frames
	e.callbacks = systems.NewCallbackQueue()
	e.coordinator = assets.NewCoordinator(jobs, e.presenter,
		assets.WithEventBus(e.events),
		assets.WithCallbackQueue(e.callbacks),
	)
	for kind, loader := range builtinLoaders() {
		if err := e.coordinator.RegisterLoader(kind, loader); err != nil {
			core.LogError("%s", err)
			_ = jobs.Shutdown()
			_ = host.Close()
			return nil, err
		}
	}
	e.coordinator.SetOnLoad(func(*assets.Table) { e.start() })

	e.loop = &frameLoop{}
	host.SetAnimationLoop(e.pump)
	e.scheduler = systems.NewFrameScheduler(e.loop,
		systems.WithVerbose(cfg.Verbose),
		systems.WithHaltHandler(func(err error) {
			e.events.Fire(core.EventContext{Type: core.EVENT_CODE_SCHEDULER_HALTED, Data: err})
		}),
	)

	if cfg.WatchAssets {
		w, err := assets.NewWatcher(e.coordinator)
		if err != nil {
			core.LogWarn("asset hot reload disabled: %s", err)
		} else {
			e.watcher = w
		}
	}

	e.currentStage = EngineStageBootComplete
	return e, nil
}

func (e *Engine) Initialize() error {
	e.setStage(EngineStageInitializing)

	// register some events
	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)

	e.host.SetResizeCallback(func(width, height uint32) {
		e.events.Fire(core.EventContext{
			Type: core.EVENT_CODE_RESIZED,
			Data: &core.SystemEvent{WindowWidth: width, WindowHeight: height},
		})
	})

	if e.watcher != nil {
		if err := e.watcher.AddRecursive(e.config.AssetDir); err != nil {
			core.LogWarn("cannot watch %s: %s", e.config.AssetDir, err)
		}
	}

	g := e.gameInstance
	if g.FnUpdate != nil {
		e.updateCall = e.scheduler.AddFrameFunc(func(t systems.FrameTime) {
			if err := g.FnUpdate(t); err != nil {
				core.LogError("Game update failed, shutting down: %s", err)
				e.quit()
			}
		})
	}
	if g.FnRender != nil {
		e.scheduler.SetRenderFunction(func() {
			if err := g.FnRender(); err != nil {
				core.LogError("Game render failed, shutting down: %s", err)
				e.quit()
			}
		})
	}

	if g.FnInitialize != nil {
		// everything requested while initializing is one batch
		e.coordinator.Begin()
		err := g.FnInitialize(e)
		e.coordinator.Commit()
		if err != nil {
			return err
		}
	}
	if g.FnOnResize != nil {
		if err := g.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}

	e.setStage(EngineStageInitialized)
	return nil
}

// Run blocks on the host until it is closed, ctx is done or the frame loop
// halts, in which case the halt error is returned.
func (e *Engine) Run(ctx context.Context) error {
	e.setStage(EngineStageRunning)

	if len(e.coordinator.Requests()) == 0 {
		e.start()
	}

	if e.watcher != nil {
		go e.watcher.Run(ctx)
	}

	err := e.host.Run(ctx)
	if e.scheduler.Halted() {
		return e.scheduler.Err()
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// start drains the start queue and, with AutoStart, attaches the frame loop.
// It runs on every completed asset batch.
func (e *Engine) start() {
	e.scheduler.Start()

	e.mu.Lock()
	e.started = true
	suspended := e.isSuspended
	e.mu.Unlock()

	if e.config.AutoStart && !suspended {
		if err := e.scheduler.StartUpdate(); err != nil {
			core.LogError("cannot start the frame loop: %s", err)
		}
	}
}

// pump runs on every host tick: pending asset callbacks first, then the frame
// if the loop is attached. A halt panics through here to the host.
func (e *Engine) pump() {
	e.callbacks.Drain()
	if tick := e.loop.current(); tick != nil {
		tick()
	}
}

func (e *Engine) quit() {
	e.events.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
}

func (e *Engine) Shutdown() error {
	e.shutdownOnce.Do(func() {
		e.setStage(EngineStageShuttingDown)

		e.scheduler.CancelUpdate()
		if g := e.gameInstance; g.FnShutdown != nil {
			if err := g.FnShutdown(); err != nil {
				core.LogError("game shutdown: %s", err)
			}
		}
		if e.watcher != nil {
			if err := e.watcher.Close(); err != nil {
				core.LogWarn("closing asset watcher: %s", err)
			}
		}
		if err := e.jobs.Shutdown(); err != nil && !errors.Is(err, core.ErrJobSystemClosed) {
			e.shutdownErr = err
		}
		e.coordinator.Dispose()
		e.events.Shutdown()
		if err := e.host.Close(); err != nil && e.shutdownErr == nil {
			e.shutdownErr = err
		}
	})
	return e.shutdownErr
}

// AssetPath joins name onto the configured asset directory.
func (e *Engine) AssetPath(name string) string {
	return filepath.Join(e.config.AssetDir, name)
}

func (e *Engine) Coordinator() *assets.Coordinator {
	return e.coordinator
}

func (e *Engine) Scheduler() *systems.FrameScheduler {
	return e.scheduler
}

func (e *Engine) Events() *core.EventBus {
	return e.events
}

func (e *Engine) Host() platform.Host {
	return e.host
}

func (e *Engine) Config() *ApplicationConfig {
	return e.config
}

func (e *Engine) Stage() Stage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentStage
}

func (e *Engine) setStage(s Stage) {
	e.mu.Lock()
	e.currentStage = s
	e.mu.Unlock()
}

// GetFramebufferSize returns the width and height (in this order)
// of the application Framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.width, e.height
}

// Suspended reports whether the host was minimized.
func (e *Engine) Suspended() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isSuspended
}

func (e *Engine) onEvent(context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		if err := e.host.Close(); err != nil {
			core.LogError("%s", err)
		}
		return true
	}
	return false
}

func (e *Engine) onResized(context core.EventContext) bool {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	width := se.WindowWidth
	height := se.WindowHeight

	e.mu.Lock()
	// Check if different. If so, trigger a resize event.
	if width == e.width && height == e.height {
		e.mu.Unlock()
		return false
	}
	e.width = width
	e.height = height
	wasSuspended := e.isSuspended
	started := e.started
	e.mu.Unlock()

	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.mu.Lock()
		e.isSuspended = true
		e.mu.Unlock()
		e.scheduler.CancelUpdate()
		return false
	}

	if wasSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.mu.Lock()
		e.isSuspended = false
		e.mu.Unlock()
		if started && e.config.AutoStart {
			if err := e.scheduler.StartUpdate(); err != nil {
				core.LogError("%s", err)
			}
		}
	}
	if g := e.gameInstance; g.FnOnResize != nil {
		if err := g.FnOnResize(width, height); err != nil {
			core.LogError("%s", err)
		}
	}
	return false
}

// frameLoop is the scheduler's AnimationLooper. The host keeps pumping the
// engine while the scheduler attaches and detaches its tick here.
type frameLoop struct {
	mu   sync.Mutex
	tick func()
}

func (l *frameLoop) SetAnimationLoop(fn func()) {
	l.mu.Lock()
	l.tick = fn
	l.mu.Unlock()
}

func (l *frameLoop) current() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tick
}
