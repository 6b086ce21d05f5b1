// Package loop provides a serial callback executor that plays the role of a
// caller's UI thread: completions posted from background goroutines run one at
// a time on whichever goroutine calls Run.
package loop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by Post after Close or after Run stopped on its
// context.
var ErrClosed = errors.New("loop closed")

// Poster schedules fn on the caller's execution context.
type Poster interface {
	Post(fn func()) error
}

// Direct runs callbacks immediately on the posting goroutine. It does not
// marshal anything back to the caller.
type Direct struct{}

// Post calls fn.
func (Direct) Post(fn func()) error {
	fn()
	return nil
}

// Loop is a FIFO of callbacks drained by Run.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	closed  bool
	wake    chan struct{}
	running atomic.Bool
}

// New creates an empty loop.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post enqueues fn. It never blocks.
func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Run executes posted callbacks in order until ctx is done or the loop is
// closed and drained. When ctx ends first, the loop is closed and callbacks
// already queued still run before Run returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.drain()

		l.mu.Lock()
		done := l.closed && len(l.queue) == 0
		l.mu.Unlock()
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			l.Close()
			l.drain()
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Close stops accepting callbacks. Run returns once the queue is drained.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// InCallback reports whether a callback is currently executing inside Run.
func (l *Loop) InCallback() bool {
	return l.running.Load()
}

func (l *Loop) drain() {
	for _, fn := range l.take() {
		l.running.Store(true)
		fn()
		l.running.Store(false)
	}
}

func (l *Loop) take() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.queue
	l.queue = nil
	return batch
}
