// Package scheduler implements a load-adaptive task scheduler: a
// priority-ordered queue drained by a single dispatcher into a bounded worker
// pool sized from CPU core count and total system memory. Admission of new
// work is gated on live CPU/memory pressure and per-task priority.
package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/Borislavv/go-smart-cache/config"
	"github.com/Borislavv/go-smart-cache/internal/monitor"
)

const (
	// Reserve cores: one for the interactive foreground, one for the OS.
	reservedCores = 2

	// Below this much total memory the pool is capped to two workers.
	lowMemoryThresholdBytes = 8 << 30

	lowMemoryWorkerCap = 2
)

var (
	ErrTaskCancelled   = errors.New("task cancelled before dispatch")
	ErrSchedulerClosed = errors.New("scheduler closed")
)

type Stats struct {
	MaxWorkers  int
	ActiveTasks int64
	QueuedTasks int
	Submitted   int64
	Completed   int64
	Failed      int64
	Rejected    int64
	Cancelled   int64
	AvgWait     time.Duration
	AvgExec     time.Duration
	CPUUsage    float64
	MemoryUsage float64
}

// Scheduler owns every task from submission until completion. Callers hold
// only the Handle returned by Submit.
type Scheduler struct {
	cfg    *config.SchedulerCfg
	logger *slog.Logger
	mon    monitor.Monitor
	clk    clock.Clock

	mu    sync.Mutex
	queue *taskQueue
	tasks map[string]*task // queued tasks only, for Cancel
	seq   uint64
	idSeq atomic.Uint64

	wake   chan struct{}
	workCh chan *task
	wg     sync.WaitGroup

	maxWorkers int
	closed     atomic.Bool
	ctx        context.Context
	cancel     context.CancelFunc

	counters *counters
	avgs     *averages
}

func New(ctx context.Context, cfg *config.SchedulerCfg, logger *slog.Logger, mon monitor.Monitor) (*Scheduler, error) {
	return NewWithClock(ctx, cfg, logger, mon, clock.New())
}

func NewWithClock(ctx context.Context, cfg *config.SchedulerCfg, logger *slog.Logger, mon monitor.Monitor, clk clock.Clock) (*Scheduler, error) {
	if cfg == nil {
		cfg = &config.SchedulerCfg{}
	}
	if cfg.MaxWorkersOverride < 0 {
		return nil, fmt.Errorf("scheduler: max workers override must not be negative, got %d", cfg.MaxWorkersOverride)
	}

	workers := cfg.MaxWorkersOverride
	if workers == 0 {
		workers = sizeWorkers(runtime.NumCPU(), mon.TotalMemoryBytes())
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Scheduler{
		cfg:        cfg,
		logger:     logger,
		mon:        mon,
		clk:        clk,
		queue:      newTaskQueue(),
		tasks:      make(map[string]*task),
		wake:       make(chan struct{}, 1),
		workCh:     make(chan *task),
		maxWorkers: workers,
		ctx:        ctx,
		cancel:     cancel,
		counters:   newCounters(),
		avgs:       &averages{},
	}

	logger.Info("scheduler is running",
		"workers", workers,
		"cpus", runtime.NumCPU(),
	)

	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	go s.dispatch()

	return s, nil
}

// sizeWorkers reserves headroom for the interactive foreground and the OS.
// totalMem of zero means the platform could not be queried; the memory cap
// is skipped then.
func sizeWorkers(cpus int, totalMem uint64) int {
	workers := cpus - reservedCores
	if workers < 1 {
		workers = 1
	}
	if totalMem > 0 && totalMem < lowMemoryThresholdBytes && workers > lowMemoryWorkerCap {
		workers = lowMemoryWorkerCap
	}
	return workers
}

// Submit enqueues fn. A nil handle with ok=false is backpressure, not an
// error: admission control declined the work at the current load.
func (s *Scheduler) Submit(fn Fn, opts ...Option) (*Handle, bool) {
	if s.closed.Load() {
		return nil, false
	}

	t := &task{fn: fn, priority: PriorityNormal, submittedAt: s.clk.Now()}
	for _, opt := range opts {
		opt(t)
	}

	if !s.admit(t.priority) {
		s.counters.rejected.Add(1)
		return nil, false
	}

	if t.id == "" {
		t.id = fmt.Sprintf("task-%d-%d", s.clk.Now().UnixMilli(), s.idSeq.Add(1))
	}
	t.handle = newHandle()
	t.setState(StateQueued)

	s.mu.Lock()
	t.seq = s.seq
	s.seq++
	heap.Push(s.queue, t)
	s.tasks[t.id] = t
	s.mu.Unlock()
	s.counters.submitted.Add(1)

	select {
	case s.wake <- struct{}{}:
	default:
	}

	return t.handle, true
}

// admit applies the tiered admission policy: CRITICAL is unconditional, HIGH
// is never resource-rejected, NORMAL and LOW/IDLE are rejected above their
// respective CPU/memory thresholds.
func (s *Scheduler) admit(p Priority) bool {
	if p == PriorityCritical || p == PriorityHigh {
		return true
	}

	cpuPct := s.mon.CPUUsage()
	memPct := s.mon.MemoryUsage()

	switch p {
	case PriorityLow, PriorityIdle:
		if cpuPct > s.cfg.CPUThresholdLow || memPct > s.cfg.MemThresholdLow {
			return false
		}
	case PriorityNormal:
		if cpuPct > s.cfg.CPUThresholdNormal || memPct > s.cfg.MemThresholdNormal {
			return false
		}
	}
	return true
}

// Cancel succeeds only while the task is still queued; a task already handed
// to a worker runs to completion.
func (s *Scheduler) Cancel(taskID string) bool {
	s.mu.Lock()
	t, ok := s.tasks[taskID]
	if !ok || t.currentState() != StateQueued {
		s.mu.Unlock()
		return false
	}
	t.setState(StateCancelled)
	delete(s.tasks, taskID)
	s.mu.Unlock()

	s.counters.cancelled.Add(1)
	t.handle.resolve(nil, ErrTaskCancelled)
	return true
}

func (s *Scheduler) Stats() Stats {
	submitted, completed, failed, rejected, cancelled, active := s.counters.snapshot()
	avgWait, avgExec := s.avgs.snapshot()

	s.mu.Lock()
	queued := s.queue.Len()
	s.mu.Unlock()

	return Stats{
		MaxWorkers:  s.maxWorkers,
		ActiveTasks: active,
		QueuedTasks: queued,
		Submitted:   submitted,
		Completed:   completed,
		Failed:      failed,
		Rejected:    rejected,
		Cancelled:   cancelled,
		AvgWait:     avgWait,
		AvgExec:     avgExec,
		CPUUsage:    s.mon.CPUUsage(),
		MemoryUsage: s.mon.MemoryUsage(),
	}
}

// Shutdown stops intake and dispatch. With wait=true it blocks until running
// workers drain. Tasks still queued resolve with ErrSchedulerClosed.
func (s *Scheduler) Shutdown(wait bool) {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.cancel()

	s.mu.Lock()
	for s.queue.Len() > 0 {
		t := heap.Pop(s.queue).(*task)
		delete(s.tasks, t.id)
		if t.currentState() == StateQueued {
			t.handle.resolve(nil, ErrSchedulerClosed)
		}
	}
	s.mu.Unlock()

	if wait {
		s.wg.Wait()
	}
	s.logger.Info("scheduler is stopped")
}

// dispatch drains the queue in (priority, submission) order and hands tasks
// to the worker pool one at a time so ordering survives the hand-off.
func (s *Scheduler) dispatch() {
	for {
		t := s.pop()
		if t == nil {
			select {
			case <-s.ctx.Done():
				return
			case <-s.wake:
				continue
			}
		}

		select {
		case <-s.ctx.Done():
			// Shutdown races the pop; hand the task its closed error.
			t.handle.resolve(nil, ErrSchedulerClosed)
			return
		case s.workCh <- t:
		}
	}
}

func (s *Scheduler) pop() *task {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.queue.Len() > 0 {
		t := heap.Pop(s.queue).(*task)
		if t.isCancelled() {
			continue
		}
		delete(s.tasks, t.id)
		return t
	}
	return nil
}

func (s *Scheduler) worker() {
	defer s.wg.Done()
	runtime.LockOSThread()

	for {
		select {
		case <-s.ctx.Done():
			return
		case t := <-s.workCh:
			if s.closed.Load() {
				t.handle.resolve(nil, ErrSchedulerClosed)
				continue
			}
			s.execute(t)
		}
	}
}

// execute runs one task on the worker: applies the platform priority hint,
// runs the function with panic capture, fires callbacks and resolves the
// handle exactly once.
func (s *Scheduler) execute(t *task) {
	t.setState(StateRunning)
	s.counters.active.Add(1)
	defer s.counters.active.Add(-1)

	s.avgs.observeWait(s.clk.Since(t.submittedAt))
	setThreadPriorityHint(t.priority)

	started := s.clk.Now()
	value, err := s.run(t)
	s.avgs.observeExec(s.clk.Since(started))

	if err != nil {
		t.setState(StateFailed)
		s.counters.failed.Add(1)
		if t.errCallback != nil {
			t.errCallback(err)
		}
		t.handle.resolve(nil, err)
		return
	}

	t.setState(StateCompleted)
	s.counters.completed.Add(1)
	if t.callback != nil {
		t.callback(value)
	}
	t.handle.resolve(value, nil)
}

// run isolates panic recovery so a panicking task fails its own handle and
// never takes the worker down.
func (s *Scheduler) run(t *task) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", t.id, r)
			s.logger.Error("task panicked", "task_id", t.id, "panic", r)
		}
	}()
	return t.fn(s.ctx)
}
