package engine

import (
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spaghettifunk/unify/engine/assets"
	"github.com/spaghettifunk/unify/engine/core"
	"github.com/spaghettifunk/unify/engine/platform"
	"github.com/spaghettifunk/unify/engine/systems"
)

func TestMain(m *testing.M) {
	core.SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

func testConfig(t *testing.T) *ApplicationConfig {
	cfg := DefaultApplicationConfig()
	cfg.Host = "headless"
	cfg.Overlay = OverlayNone
	cfg.TargetFPS = 500
	cfg.Workers = 2
	cfg.AssetDir = t.TempDir()
	return cfg
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
}

func TestEngineStartsAfterAssetsLoad(t *testing.T) {
	cfg := testConfig(t)
	writePNG(t, filepath.Join(cfg.AssetDir, "grid.png"))

	var (
		e          *Engine
		started    bool
		updates    int
		renders    int
		seenAssets int
	)
	g := &Game{
		ApplicationConfig: cfg,
		FnInitialize: func(e *Engine) error {
			e.Scheduler().AddStartCall(func() {
				started = true
				seenAssets = e.Coordinator().Table().Len(assets.KindTexture)
			})
			_, err := e.Coordinator().Texture(e.AssetPath("grid.png"))
			return err
		},
		FnUpdate: func(t systems.FrameTime) error {
			updates++
			if updates == 5 {
				return e.Host().Close()
			}
			return nil
		},
		FnRender: func() error {
			renders++
			return nil
		},
	}

	e, err := New(g)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Shutdown()
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Run(ctx); err != nil {
		t.Fatalf("Run returned %v", err)
	}

	if !started {
		t.Fatal("start calls never ran")
	}
	if seenAssets != 1 {
		t.Errorf("start call saw %d textures, want 1", seenAssets)
	}
	if updates < 5 || renders < 5 {
		t.Errorf("updates = %d, renders = %d", updates, renders)
	}
	if _, ok := e.Coordinator().Table().Get(assets.KindTexture, "grid"); !ok {
		t.Error("texture not stored under its file name")
	}
}

func TestEngineRunReturnsHaltError(t *testing.T) {
	cfg := testConfig(t)

	var halted error
	g := &Game{
		ApplicationConfig: cfg,
		FnInitialize: func(e *Engine) error {
			e.Events().Register(core.EVENT_CODE_SCHEDULER_HALTED, nil, func(c core.EventContext) bool {
				halted, _ = c.Data.(error)
				return true
			})
			e.Scheduler().AddFrameFunc(func(systems.FrameTime) {
				panic("boom")
			})
			return nil
		},
	}

	e, err := New(g)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Shutdown()
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = e.Run(ctx)
	if !errors.Is(err, core.ErrSchedulerHalted) {
		t.Fatalf("Run returned %v, want a halt error", err)
	}
	if !errors.Is(halted, core.ErrSchedulerHalted) {
		t.Errorf("halt event carried %v", halted)
	}
}

func TestEngineSuspendsWhenMinimized(t *testing.T) {
	cfg := testConfig(t)

	var w, h uint32
	g := &Game{
		ApplicationConfig: cfg,
		FnOnResize: func(width, height uint32) error {
			w, h = width, height
			return nil
		},
	}
	e, err := New(g)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Shutdown()
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}
	if w != cfg.StartWidth || h != cfg.StartHeight {
		t.Errorf("initial resize = %dx%d", w, h)
	}

	e.start()
	if !e.Scheduler().Running() {
		t.Fatal("scheduler should run after start with AutoStart")
	}

	host := e.Host().(*platform.Headless)
	host.Resize(0, 0)
	if !e.Suspended() || e.Scheduler().Running() {
		t.Error("minimizing should suspend the frame loop")
	}

	host.Resize(800, 600)
	if e.Suspended() || !e.Scheduler().Running() {
		t.Error("restoring should resume the frame loop")
	}
	if w != 800 || h != 600 {
		t.Errorf("game saw %dx%d, want 800x600", w, h)
	}
	if fw, fh := e.GetFramebufferSize(); fw != 800 || fh != 600 {
		t.Errorf("framebuffer = %dx%d", fw, fh)
	}
}

func TestNewRejectsUnknownHost(t *testing.T) {
	cfg := testConfig(t)
	cfg.Host = "vulkan"
	if _, err := New(&Game{ApplicationConfig: cfg}); err == nil {
		t.Error("expected an error for an unregistered host")
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	e, err := New(&Game{ApplicationConfig: testConfig(t)})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if err := e.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if e.Stage() != EngineStageShuttingDown {
		t.Errorf("stage = %d", e.Stage())
	}
}

func TestEngineBatchCoversSpacedRequests(t *testing.T) {
	cfg := testConfig(t)
	writePNG(t, filepath.Join(cfg.AssetDir, "a.png"))
	writePNG(t, filepath.Join(cfg.AssetDir, "b.png"))

	var (
		e         *Engine
		seen      = -1
		completes int
		updates   int
	)
	g := &Game{
		ApplicationConfig: cfg,
		FnInitialize: func(e *Engine) error {
			e.Events().Register(core.EVENT_CODE_LOAD_COMPLETE, nil, func(core.EventContext) bool {
				completes++
				return false
			})
			e.Scheduler().AddStartCall(func() {
				seen = e.Coordinator().Table().Len(assets.KindTexture)
			})
			if _, err := e.Coordinator().Texture(e.AssetPath("a.png")); err != nil {
				return err
			}
			// a.png is fetched long before the next request
			time.Sleep(50 * time.Millisecond)
			_, err := e.Coordinator().Texture(e.AssetPath("b.png"))
			return err
		},
		FnUpdate: func(systems.FrameTime) error {
			updates++
			if updates == 3 {
				return e.Host().Close()
			}
			return nil
		},
	}

	e, err := New(g)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Shutdown()
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Run(ctx); err != nil {
		t.Fatalf("Run returned %v", err)
	}

	if seen != 2 {
		t.Errorf("start call saw %d textures, want 2", seen)
	}
	if completes != 1 {
		t.Errorf("load completed %d times, want 1", completes)
	}
}

func TestEngineStartCallsRunBetweenTicks(t *testing.T) {
	cfg := testConfig(t)
	writePNG(t, filepath.Join(cfg.AssetDir, "late.png"))

	var (
		e      *Engine
		inTick bool
		ticks  int
		runs   int
		during int
	)
	g := &Game{
		ApplicationConfig: cfg,
		FnUpdate: func(systems.FrameTime) error {
			inTick = true
			ticks++
			if ticks == 3 {
				e.Scheduler().AddStartCall(func() {
					runs++
					if inTick {
						during++
					}
				})
				if _, err := e.Coordinator().Texture(e.AssetPath("late.png")); err != nil {
					return err
				}
			}
			if runs > 0 || ticks > 2000 {
				return e.Host().Close()
			}
			return nil
		},
		FnRender: func() error {
			inTick = false
			return nil
		},
	}

	e, err := New(g)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Shutdown()
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Run(ctx); err != nil {
		t.Fatalf("Run returned %v", err)
	}

	if runs != 1 {
		t.Fatalf("start call ran %d times, want 1", runs)
	}
	if during != 0 {
		t.Error("start call ran in the middle of a tick")
	}
}

type closeRecordingHost struct {
	*platform.Headless
	closed bool
}

func (h *closeRecordingHost) Close() error {
	h.closed = true
	return h.Headless.Close()
}

var (
	registerRecordingHost sync.Once
	lastRecordingHost     *closeRecordingHost
)

func TestNewReleasesHostOnLoaderError(t *testing.T) {
	registerRecordingHost.Do(func() {
		platform.Register("close-recording", func(cfg platform.HostConfig) (platform.Host, error) {
			lastRecordingHost = &closeRecordingHost{Headless: platform.NewHeadless(cfg)}
			return lastRecordingHost, nil
		})
	})

	prev := builtinLoaders
	builtinLoaders = func() map[assets.Kind]assets.Loader {
		return map[assets.Kind]assets.Loader{assets.Kind("videos"): nil}
	}
	defer func() { builtinLoaders = prev }()

	cfg := testConfig(t)
	cfg.Host = "close-recording"
	if _, err := New(&Game{ApplicationConfig: cfg}); !errors.Is(err, core.ErrUnknownAssetKind) {
		t.Fatalf("New() = %v, want ErrUnknownAssetKind", err)
	}
	if lastRecordingHost == nil || !lastRecordingHost.closed {
		t.Error("host left open after New failed")
	}
}
