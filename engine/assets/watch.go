package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/unify/engine/core"
)

// Watcher reloads file-backed assets when their files change on disk.
type Watcher struct {
	coordinator *Coordinator

	mutex    sync.Mutex
	fsnotify *fsnotify.Watcher
	isClosed bool
	done     chan struct{}
	stopped  chan struct{}

	// Reloaded receives the locator of every successful reload when non-nil.
	Reloaded chan string
}

func NewWatcher(c *Coordinator) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		coordinator: c,
		fsnotify:    fsWatch,
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}, nil
}

// AddRecursive starts watching the named directory and all sub-directories.
func (w *Watcher) AddRecursive(dir string) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.isClosed {
		return errors.New("asset watcher already closed")
	}
	return filepath.Walk(dir, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return w.fsnotify.Add(walkPath)
		}
		return nil
	})
}

// Run processes file events until ctx is cancelled or Close is called.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.stopped)
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			w.handle(ctx, e)

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-ctx.Done():
			return

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(ctx context.Context, e fsnotify.Event) {
	s, err := os.Stat(e.Name)
	if err == nil && s.IsDir() {
		if e.Op&fsnotify.Create != 0 {
			if err := w.AddRecursive(e.Name); err != nil {
				core.LogWarn("asset watcher: cannot watch %s: %s", e.Name, err)
			}
		}
		return
	}

	if e.Op&fsnotify.Remove != 0 {
		// a removed directory cannot be told apart from a file here
		_ = w.fsnotify.Remove(e.Name)
		for _, req := range w.matching(e.Name) {
			core.LogWarn("%s %q was removed from disk, keeping the loaded copy", req.Kind, req.Name())
		}
		return
	}

	if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	for _, req := range w.matching(e.Name) {
		if err := w.coordinator.Reload(ctx, req); err != nil {
			core.LogError("reloading %s: %s", req.Locator, err)
			continue
		}
		if w.Reloaded != nil {
			select {
			case w.Reloaded <- req.Locator:
			default:
			}
		}
	}
}

// matching returns the resolved requests whose locator points at file.
func (w *Watcher) matching(file string) []*AssetRequest {
	target, err := filepath.Abs(file)
	if err != nil {
		return nil
	}
	var out []*AssetRequest
	for _, req := range w.coordinator.Requests() {
		if req.State() != RequestResolved || isRemote(req.Locator) {
			continue
		}
		p, err := filepath.Abs(strings.TrimPrefix(req.Locator, "file://"))
		if err != nil || p != target {
			continue
		}
		out = append(out, req)
	}
	return out
}

func isRemote(locator string) bool {
	return strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://")
}

// Close stops the watcher and waits for Run to return if it was started.
func (w *Watcher) Close() error {
	w.mutex.Lock()
	if w.isClosed {
		w.mutex.Unlock()
		return nil
	}
	w.isClosed = true
	close(w.done)
	w.mutex.Unlock()
	return w.fsnotify.Close()
}

// Stopped is closed once Run returns.
func (w *Watcher) Stopped() <-chan struct{} {
	return w.stopped
}
