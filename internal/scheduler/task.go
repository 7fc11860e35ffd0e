package scheduler

import (
	"context"
	"sync/atomic"
	"time"
)

// Priority orders tasks in the queue; a lower value is served first.
type Priority int

const (
	PriorityCritical Priority = iota
	PriorityHigh
	PriorityNormal
	PriorityLow
	PriorityIdle
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	case PriorityIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// State machine per task: Queued -> Running -> {Completed | Failed};
// Queued -> Cancelled is possible only while still queued.
type State int32

const (
	StateQueued State = iota
	StateRunning
	StateCompleted
	StateFailed
	StateCancelled
)

// Fn is the unit of work. It receives the scheduler's context, which is
// cancelled on shutdown.
type Fn func(ctx context.Context) (any, error)

type task struct {
	id          string
	fn          Fn
	priority    Priority
	callback    func(any)
	errCallback func(error)
	submittedAt time.Time
	seq         uint64 // submission order, ties within a priority level
	state       atomic.Int32
	handle      *Handle
}

func (t *task) setState(s State)    { t.state.Store(int32(s)) }
func (t *task) currentState() State { return State(t.state.Load()) }
func (t *task) isCancelled() bool   { return t.currentState() == StateCancelled }

// Option configures a submission.
type Option func(*task)

func WithPriority(p Priority) Option {
	return func(t *task) { t.priority = p }
}

func WithTaskID(id string) Option {
	return func(t *task) { t.id = id }
}

// WithCallback registers a success callback, invoked on the worker before
// the handle resolves.
func WithCallback(fn func(result any)) Option {
	return func(t *task) { t.callback = fn }
}

// WithErrorCallback registers a failure callback, invoked on the worker
// before the handle resolves.
func WithErrorCallback(fn func(err error)) Option {
	return func(t *task) { t.errCallback = fn }
}
