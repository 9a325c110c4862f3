package systems

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spaghettifunk/unify/engine/core"
)

func TestNewJobSystemValidation(t *testing.T) {
	if _, err := NewJobSystem(0, 1); !errors.Is(err, core.ErrNoWorkers) {
		t.Errorf("NewJobSystem(0, 1) = %v, want ErrNoWorkers", err)
	}
	if _, err := NewJobSystem(1, -1); !errors.Is(err, core.ErrNegativeChannelSize) {
		t.Errorf("NewJobSystem(1, -1) = %v, want ErrNegativeChannelSize", err)
	}
}

func TestJobSystemRunsCallbacks(t *testing.T) {
	js, err := NewJobSystem(4, 8)
	if err != nil {
		t.Fatal(err)
	}

	var completed, failed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		i := i
		wg.Add(1)
		err := js.Submit(JobTask{
			Name: "job",
			OnStart: func(ctx context.Context) error {
				if i%2 == 0 {
					return errors.New("even")
				}
				return nil
			},
			OnComplete: func() {
				completed.Add(1)
				wg.Done()
			},
			OnFailure: func(err error) {
				failed.Add(1)
				wg.Done()
			},
		})
		if err != nil {
			t.Fatalf("Submit() error: %v", err)
		}
	}
	wg.Wait()

	if completed.Load() != 5 || failed.Load() != 5 {
		t.Errorf("completed=%d failed=%d, want 5/5", completed.Load(), failed.Load())
	}
	if err := js.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error: %v", err)
	}
	if err := js.Submit(JobTask{}); !errors.Is(err, core.ErrJobSystemClosed) {
		t.Errorf("Submit() after Shutdown = %v, want ErrJobSystemClosed", err)
	}
	// idempotent
	if err := js.Shutdown(); err != nil {
		t.Errorf("second Shutdown() error: %v", err)
	}
}
