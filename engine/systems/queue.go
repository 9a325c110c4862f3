package systems

import (
	"sync"

	"github.com/spaghettifunk/unify/engine/containers"
)

// CallbackQueue hands callbacks from any goroutine to the one that drains it,
// usually the host thread between two frames.
type CallbackQueue struct {
	mu    sync.Mutex
	queue *containers.RingQueue[func()]
}

func NewCallbackQueue() *CallbackQueue {
	return &CallbackQueue{
		queue: containers.NewGrowableRingQueue[func()](16),
	}
}

// Post never blocks.
func (q *CallbackQueue) Post(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	_ = q.queue.Enqueue(fn)
	q.mu.Unlock()
}

// Drain runs the posted callbacks in order on the calling goroutine, including
// those posted while draining, and returns how many ran.
func (q *CallbackQueue) Drain() int {
	n := 0
	for {
		q.mu.Lock()
		fn, err := q.queue.Dequeue()
		q.mu.Unlock()
		if err != nil {
			return n
		}
		fn()
		n++
	}
}

func (q *CallbackQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queue.Len()
}
