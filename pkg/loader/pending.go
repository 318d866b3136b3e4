package loader

import (
	"context"
	"sync"
)

// Pending is the handle of a load running in the background. The result or
// the error is delivered exactly once, never both. Waiting with a context
// bounds the wait only; the load itself runs to completion.
type Pending[T any] struct {
	done chan struct{}

	mu        sync.Mutex
	resolved  bool
	val       T
	err       error
	callbacks []func(T, error)
}

func newPending[T any]() *Pending[T] {
	return &Pending[T]{done: make(chan struct{})}
}

// Go runs fn in a new goroutine and returns its handle.
func Go[T any](fn func() (T, error)) *Pending[T] {
	p := newPending[T]()
	go func() {
		p.resolve(fn())
	}()
	return p
}

func (p *Pending[T]) resolve(val T, err error) {
	p.mu.Lock()
	if p.resolved {
		p.mu.Unlock()
		return
	}
	p.resolved = true
	if err == nil {
		p.val = val
	}
	p.err = err
	callbacks := p.callbacks
	p.callbacks = nil
	close(p.done)
	p.mu.Unlock()

	for _, cb := range callbacks {
		cb(p.val, p.err)
	}
}

// Done is closed once the result is available.
func (p *Pending[T]) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the load finishes or ctx is done.
func (p *Pending[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.val, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then registers cb to receive the outcome. If the load already finished,
// cb runs immediately on the calling goroutine; otherwise it runs on the
// loading goroutine.
func (p *Pending[T]) Then(cb func(T, error)) {
	p.mu.Lock()
	if !p.resolved {
		p.callbacks = append(p.callbacks, cb)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	cb(p.val, p.err)
}
