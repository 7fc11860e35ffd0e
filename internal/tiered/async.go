package tiered

import (
	"context"

	"github.com/Borislavv/go-smart-cache/internal/scheduler"
)

// The asynchronous API is two-speed: memory-tier hits are cheap enough to
// resolve inline on the calling goroutine, while anything touching the cold
// tier is relocated to a worker at the lowest priorities so disk latency
// never blocks a caller expecting the fast path. When the scheduler rejects
// the background work (backpressure) or is absent, the cold-tier step runs
// synchronously instead and the handle resolves inline.

// GetAsync resolves from hot/warm inline; a cold-tier lookup is submitted at
// LOW priority. The callback receives the value (or absence) on whichever
// goroutine performs the lookup; the handle resolves with the value, or nil
// on a miss.
func (c *Cache) GetAsync(key string, callback func(value []byte, ok bool)) *scheduler.Handle {
	c.mu.Lock()
	if v, ok := c.hot.get(key); ok {
		c.mu.Unlock()
		c.counters.hotHits.Add(1)
		if callback != nil {
			callback(v, true)
		}
		return scheduler.NewResolvedHandle(v, nil)
	}
	if v, ok := c.warm.get(key); ok {
		c.warm.remove(key)
		spills := c.promoteLocked(key, v)
		c.mu.Unlock()
		c.counters.warmHits.Add(1)
		c.writeSpills(spills)
		if callback != nil {
			callback(v, true)
		}
		return scheduler.NewResolvedHandle(v, nil)
	}
	c.mu.Unlock()

	coldRead := func(ctx context.Context) (any, error) {
		v, ok := c.coldGetPromote(key)
		if callback != nil {
			callback(v, ok)
		}
		if !ok {
			return nil, nil
		}
		return v, nil
	}

	if c.sched != nil {
		if h, ok := c.sched.Submit(coldRead, scheduler.WithPriority(scheduler.PriorityLow)); ok {
			return h
		}
	}

	// Backpressure or no scheduler: run the cold read on the caller.
	v, err := coldRead(context.Background())
	return scheduler.NewResolvedHandle(v, err)
}

// PutAsync stores the value like Put; a cold-tier placement is submitted at
// IDLE priority. The callback reports whether the write was applied.
func (c *Cache) PutAsync(key string, value []byte, priority Priority, callback func(ok bool)) *scheduler.Handle {
	if priority != PriorityLow {
		c.Put(key, value, priority)
		if callback != nil {
			callback(true)
		}
		return scheduler.NewResolvedHandle(true, nil)
	}

	coldWrite := func(ctx context.Context) (any, error) {
		c.cold.Put(key, value)
		if callback != nil {
			callback(true)
		}
		return true, nil
	}

	if c.sched != nil {
		if h, ok := c.sched.Submit(coldWrite, scheduler.WithPriority(scheduler.PriorityIdle)); ok {
			return h
		}
	}

	v, err := coldWrite(context.Background())
	return scheduler.NewResolvedHandle(v, err)
}
