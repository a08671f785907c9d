package twitter

import (
	"log/slog"
	"sync"
)

// Dispatcher runs completion callbacks on the caller's chosen execution context.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(fn func())

// Dispatch implements Dispatcher.
func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// serialDispatcher runs callbacks one at a time, in order, on its own goroutine.
type serialDispatcher struct {
	mu     sync.Mutex
	queue  chan func()
	closed bool
	done   chan struct{}
}

func newSerialDispatcher() *serialDispatcher {
	d := &serialDispatcher{
		queue: make(chan func(), 64),
		done:  make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *serialDispatcher) run() {
	defer close(d.done)
	for fn := range d.queue {
		fn()
	}
}

// Dispatch implements Dispatcher.
func (d *serialDispatcher) Dispatch(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		slog.Warn("dispatcher closed, dropping callback")
		return
	}
	d.queue <- fn
}

// Close waits for queued callbacks to finish.
func (d *serialDispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}
