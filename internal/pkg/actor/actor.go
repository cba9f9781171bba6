// Package actor provides a single-worker mailbox. Every state change of a
// component runs on the mailbox worker, one task at a time, so component
// state needs no locking of its own.
package actor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/autopeer-io/scootshare/pkg/log"
)

// ErrStopped is returned when submitting to a mailbox whose worker has exited.
var ErrStopped = errors.New("actor: mailbox stopped")

// Task is a unit of work executed on the mailbox worker.
type Task func(ctx context.Context)

// Mailbox queues tasks for a single worker goroutine.
type Mailbox struct {
	tasks chan Task
	done  chan struct{}
	once  sync.Once
}

// New returns a mailbox buffering up to size pending tasks.
func New(size int) *Mailbox {
	if size < 1 {
		size = 1
	}
	return &Mailbox{
		tasks: make(chan Task, size),
		done:  make(chan struct{}),
	}
}

// Submit enqueues fn. It blocks while the mailbox is full.
func (m *Mailbox) Submit(ctx context.Context, fn Task) error {
	select {
	case <-m.done:
		return ErrStopped
	default:
	}

	select {
	case m.tasks <- fn:
		return nil
	case <-m.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Call runs fn on the worker and waits for its result.
// It must not be called from the worker itself.
func (m *Mailbox) Call(ctx context.Context, fn func(ctx context.Context) error) error {
	result := make(chan error, 1)
	if err := m.Submit(ctx, func(ctx context.Context) {
		result <- fn(ctx)
	}); err != nil {
		return err
	}

	select {
	case err := <-result:
		return err
	case <-m.done:
		// The worker may have finished the task right before exiting.
		select {
		case err := <-result:
			return err
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes tasks until ctx is cancelled. Tasks still queued at that
// point are dropped.
func (m *Mailbox) Run(ctx context.Context) error {
	defer m.once.Do(func() { close(m.done) })

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-m.tasks:
			m.exec(ctx, fn)
		}
	}
}

// Done is closed once the worker has exited.
func (m *Mailbox) Done() <-chan struct{} {
	return m.done
}

func (m *Mailbox) exec(ctx context.Context, fn Task) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(fmt.Errorf("%v", r), "Mailbox task panicked")
		}
	}()
	fn(ctx)
}
