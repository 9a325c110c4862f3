package assets

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReloadsChangedFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "grid.png")
	if err := os.WriteFile(file, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, d, l, _ := newTestCoordinator(t)
	req, err := c.Texture(file)
	if err != nil {
		t.Fatal(err)
	}
	d.run(0)

	w, err := NewWatcher(c)
	if err != nil {
		t.Fatal(err)
	}
	w.Reloaded = make(chan string, 4)
	if err := w.AddRecursive(dir); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if err := os.WriteFile(file, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-w.Reloaded:
		if got != file {
			t.Errorf("reloaded %q, want %q", got, file)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after the file changed")
	}

	if req.Name() != "grid" || c.Table().Len(KindTexture) != 1 {
		t.Errorf("reload changed the table: name=%q len=%d", req.Name(), c.Table().Len(KindTexture))
	}
	l.mu.Lock()
	loads := l.loads[file]
	l.mu.Unlock()
	if loads < 2 {
		t.Errorf("loads = %d, want at least 2", loads)
	}

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	select {
	case <-w.Stopped():
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestWatcherClosedRejectsAdd(t *testing.T) {
	c, _, _, _ := newTestCoordinator(t)
	w, err := NewWatcher(c)
	if err != nil {
		t.Fatal(err)
	}
	w.Close()
	if err := w.AddRecursive(t.TempDir()); err == nil {
		t.Error("AddRecursive on a closed watcher returned nil")
	}
}
