package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spaghettifunk/unify/engine/core"
)

func TestMain(m *testing.M) {
	core.SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

func TestDeliverRecoversPanics(t *testing.T) {
	if err := Deliver(func() { panic("boom") }); err != nil {
		t.Errorf("Deliver() = %v, want nil for an ordinary panic", err)
	}

	halt := fmt.Errorf("%w (after 3 frames)", core.ErrSchedulerHalted)
	if err := Deliver(func() { panic(halt) }); !errors.Is(err, core.ErrSchedulerHalted) {
		t.Errorf("Deliver() = %v, want the halt error", err)
	}
}

func TestHeadlessStepAndResize(t *testing.T) {
	h := NewHeadless(HostConfig{Width: 640, Height: 480})

	if err := h.Step(); err != nil || h.Ticks() != 0 {
		t.Fatalf("Step without loop = %v ticks=%d", err, h.Ticks())
	}

	n := 0
	h.SetAnimationLoop(func() { n++ })
	h.Step()
	h.Step()
	if n != 2 {
		t.Errorf("loop ran %d times, want 2", n)
	}

	var gotW, gotH uint32
	h.SetResizeCallback(func(w, hh uint32) { gotW, gotH = w, hh })
	h.Resize(800, 600)
	if gotW != 800 || gotH != 600 {
		t.Errorf("resize callback got %dx%d", gotW, gotH)
	}
	if w, hh := h.Size(); w != 800 || hh != 600 {
		t.Errorf("Size() = %dx%d", w, hh)
	}
}

func TestHeadlessRunKeepsTickingAfterPanic(t *testing.T) {
	h := NewHeadless(HostConfig{TargetFPS: 500})

	var calls atomic.Int32
	h.SetAnimationLoop(func() {
		if calls.Add(1) == 1 {
			panic("first tick fails")
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := h.Run(ctx); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if calls.Load() < 2 {
		t.Errorf("loop ran %d times, want more than one", calls.Load())
	}
}

func TestHeadlessRunStopsOnHalt(t *testing.T) {
	h := NewHeadless(HostConfig{TargetFPS: 500})
	h.SetAnimationLoop(func() { panic(core.ErrSchedulerHalted) })

	done := make(chan error, 1)
	go func() { done <- h.Run(context.Background()) }()

	select {
	case err := <-done:
		if !errors.Is(err, core.ErrSchedulerHalted) {
			t.Errorf("Run() = %v, want ErrSchedulerHalted", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on halt")
	}
}

func TestHeadlessClose(t *testing.T) {
	h := NewHeadless(HostConfig{})
	h.Close()
	h.Close()
	if err := h.Run(context.Background()); err != nil {
		t.Errorf("Run() after Close = %v", err)
	}
}

func TestNewHost(t *testing.T) {
	h, err := NewHost("headless", HostConfig{Width: 1, Height: 2})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := h.(*Headless); !ok {
		t.Errorf("NewHost(headless) = %T", h)
	}
	if _, err := NewHost("vulkan", HostConfig{}); err == nil {
		t.Error("NewHost(vulkan) expected an error")
	}
}
