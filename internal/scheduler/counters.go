package scheduler

import (
	"sync"
	"sync/atomic"
	"time"
)

type counters struct {
	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	rejected  atomic.Int64
	cancelled atomic.Int64
	active    atomic.Int64
}

func newCounters() *counters {
	return &counters{}
}

func (c *counters) snapshot() (submitted, completed, failed, rejected, cancelled, active int64) {
	return c.submitted.Load(), c.completed.Load(), c.failed.Load(),
		c.rejected.Load(), c.cancelled.Load(), c.active.Load()
}

// averages keeps running averages of queue wait and execution time,
// updated incrementally so no history is retained.
type averages struct {
	mu      sync.Mutex
	waitN   int64
	avgWait time.Duration
	execN   int64
	avgExec time.Duration
}

func (a *averages) observeWait(d time.Duration) {
	a.mu.Lock()
	a.waitN++
	a.avgWait += (d - a.avgWait) / time.Duration(a.waitN)
	a.mu.Unlock()
}

func (a *averages) observeExec(d time.Duration) {
	a.mu.Lock()
	a.execN++
	a.avgExec += (d - a.avgExec) / time.Duration(a.execN)
	a.mu.Unlock()
}

func (a *averages) snapshot() (wait, exec time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.avgWait, a.avgExec
}
