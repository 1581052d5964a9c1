package engine

import (
	"context"
	"errors"
	"sync"
)

var ErrClosed = errors.New("session closed")

// EventQueue serializes work onto one goroutine. Hosts whose callbacks arrive on several goroutines
// post closures here and run the queue on the goroutine that owns the session.
type EventQueue struct {
	events    chan func()
	done      chan struct{}
	closeOnce sync.Once
}

func NewEventQueue(size int) *EventQueue {
	return &EventQueue{
		events: make(chan func(), size),
		done:   make(chan struct{}),
	}
}

// Post enqueues fn, blocking while the queue is full. It fails with ErrClosed once the queue is closed.
func (q *EventQueue) Post(fn func()) error {
	select {
	case <-q.done:
		return ErrClosed
	default:
	}
	select {
	case <-q.done:
		return ErrClosed
	case q.events <- fn:
		return nil
	}
}

// Run drains the queue until Close or ctx is done. Closures still queued at that point are dropped.
func (q *EventQueue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.done:
			return nil
		case fn := <-q.events:
			fn()
		}
	}
}

func (q *EventQueue) Close() {
	q.closeOnce.Do(func() { close(q.done) })
}
