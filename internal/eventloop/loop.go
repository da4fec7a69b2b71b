// Package eventloop serializes window-system events, pointer events and timer
// firings onto a single control goroutine.
package eventloop

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrClosed is returned by Call once the loop has stopped.
var ErrClosed = errors.New("event loop closed")

const defaultQueueSize = 256

// Poster queues fn for execution on the control goroutine. It returns false
// if fn was dropped because the loop stopped.
type Poster func(fn func()) bool

// Immediate runs fn on the caller's goroutine. Tests use it in place of a
// running Loop.
func Immediate(fn func()) bool {
	fn()
	return true
}

// Loop is a FIFO of closures executed one at a time.
type Loop struct {
	queue    chan func()
	done     chan struct{}
	stopOnce sync.Once
	logger   *slog.Logger
}

// New creates a loop. It does nothing until Run is called.
func New(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		queue:  make(chan func(), defaultQueueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Post queues fn. Safe from any goroutine.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case <-l.done:
		return false
	case l.queue <- fn:
		return true
	}
}

// Call runs fn on the loop and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrClosed
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes queued closures until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.queue:
			l.invoke(fn)
		}
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} { return l.done }

func (l *Loop) invoke(fn func()) {
	defer func() {
		if err := recover(); err != nil {
			l.logger.Error("event loop: handler panic recovered", "error", err)
		}
	}()
	fn()
}

func (l *Loop) stop() {
	l.stopOnce.Do(func() { close(l.done) })
}
