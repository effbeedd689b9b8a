package notestore

import "sync"

// persistQueue orders repository writes per note id. Each write waits for
// the previous write on the same id to finish.
type persistQueue struct {
	mu    sync.Mutex
	tails map[string]chan struct{}
}

func newPersistQueue() *persistQueue {
	return &persistQueue{tails: make(map[string]chan struct{})}
}

// enqueue returns the channel to wait on (nil when the id is idle) and the
// channel to close when this write is done.
func (q *persistQueue) enqueue(id string) (<-chan struct{}, chan struct{}) {
	q.mu.Lock()
	defer q.mu.Unlock()

	prev := q.tails[id]
	done := make(chan struct{})
	q.tails[id] = done
	if prev == nil {
		return nil, done
	}
	return prev, done
}

func (q *persistQueue) release(id string, done chan struct{}) {
	q.mu.Lock()
	defer q.mu.Unlock()

	close(done)
	if q.tails[id] == done {
		delete(q.tails, id)
	}
}
