package async

import (
	"log/slog"
	"sync"
)

type Job func()

// KeyedDispatcher runs jobs sharing a key one after another, in submission
// order, while jobs with different keys run concurrently.
type KeyedDispatcher struct {
	mu     sync.Mutex
	queues map[string][]Job
	wg     sync.WaitGroup
	closed bool
}

func NewKeyedDispatcher() *KeyedDispatcher {
	return &KeyedDispatcher{
		queues: make(map[string][]Job),
	}
}

// Submit enqueues job behind every job already queued for key. It returns
// false once the dispatcher has been closed.
func (d *KeyedDispatcher) Submit(key string, job Job) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false
	}

	queue, running := d.queues[key]
	d.queues[key] = append(queue, job)
	if !running {
		d.wg.Add(1)
		go d.drain(key)
	}

	return true
}

// Close rejects new jobs and waits until queued ones have finished.
func (d *KeyedDispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *KeyedDispatcher) drain(key string) {
	defer d.wg.Done()

	for {
		d.mu.Lock()
		queue := d.queues[key]
		if len(queue) == 0 {
			delete(d.queues, key)
			d.mu.Unlock()
			return
		}
		job := queue[0]
		d.queues[key] = queue[1:]
		d.mu.Unlock()

		d.run(key, job)
	}
}

func (d *KeyedDispatcher) run(key string, job Job) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("dispatched job panicked", slog.String("key", key), slog.Any("panic", r))
		}
	}()

	job()
}
