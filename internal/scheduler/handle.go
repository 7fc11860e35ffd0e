package scheduler

import (
	"context"
	"sync"
)

// Handle is the caller-visible result of a submitted task. It is resolved
// exactly once, either with the task's return value or with its failure.
type Handle struct {
	once  sync.Once
	done  chan struct{}
	value any
	err   error
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// NewResolvedHandle returns an already-resolved handle. It backs fast paths
// that complete inline without a worker hand-off.
func NewResolvedHandle(value any, err error) *Handle {
	h := newHandle()
	h.resolve(value, err)
	return h
}

func (h *Handle) resolve(value any, err error) {
	h.once.Do(func() {
		h.value = value
		h.err = err
		close(h.done)
	})
}

// Done is closed once the handle is resolved.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Result blocks until the handle resolves.
func (h *Handle) Result() (any, error) {
	<-h.done
	return h.value, h.err
}

// Wait blocks until the handle resolves or ctx is cancelled.
func (h *Handle) Wait(ctx context.Context) (any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.done:
		return h.value, h.err
	}
}

// Resolved reports whether the handle already carries its outcome.
func (h *Handle) Resolved() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}
