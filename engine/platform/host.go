package platform

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/spaghettifunk/unify/engine/core"
)

// Host delivers animation ticks and reports resizes. It is the looper the
// frame scheduler attaches to.
type Host interface {
	// SetAnimationLoop installs the per-tick callback. nil detaches it.
	SetAnimationLoop(fn func())
	SetResizeCallback(fn func(width, height uint32))
	Size() (uint32, uint32)
	// Run delivers ticks until ctx is done, the host is closed or a tick
	// panics with ErrSchedulerHalted, which Run then returns.
	Run(ctx context.Context) error
	Close() error
}

type HostConfig struct {
	Name      string
	PosX      uint32
	PosY      uint32
	Width     uint32
	Height    uint32
	TargetFPS int
}

type Factory func(cfg HostConfig) (Host, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{
		"headless": func(cfg HostConfig) (Host, error) {
			return NewHeadless(cfg), nil
		},
	}
)

// Register makes a host available by name. Window hosts register themselves
// from their package init.
func Register(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if f == nil {
		panic("platform: Register factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic("platform: Register called twice for host " + name)
	}
	factories[name] = f
}

// NewHost builds the host registered under name.
func NewHost(name string, cfg HostConfig) (Host, error) {
	factoriesMu.RLock()
	f, ok := factories[name]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown host %q (available: %v)", name, Hosts())
	}
	return f(cfg)
}

// Hosts returns the registered host names, sorted.
func Hosts() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Deliver invokes one tick. A panic is recovered and logged so the host keeps
// ticking, unless it carries ErrSchedulerHalted, which is returned instead.
func Deliver(fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(error); ok && errors.Is(e, core.ErrSchedulerHalted) {
			err = e
			return
		}
		core.LogError("frame callback panicked: %v", r)
	}()
	fn()
	return nil
}
