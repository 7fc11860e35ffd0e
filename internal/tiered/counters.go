package tiered

import "sync/atomic"

type counters struct {
	hotHits    atomic.Int64
	warmHits   atomic.Int64
	coldHits   atomic.Int64
	misses     atomic.Int64
	promotions atomic.Int64
	demotions  atomic.Int64
	evictions  atomic.Int64
}

func newCounters() *counters {
	return &counters{}
}

func (c *counters) snapshot() (hotHits, warmHits, coldHits, misses, promotions, demotions, evictions int64) {
	return c.hotHits.Load(), c.warmHits.Load(), c.coldHits.Load(), c.misses.Load(),
		c.promotions.Load(), c.demotions.Load(), c.evictions.Load()
}

func (c *counters) reset() {
	c.hotHits.Store(0)
	c.warmHits.Store(0)
	c.coldHits.Store(0)
	c.misses.Store(0)
	c.promotions.Store(0)
	c.demotions.Store(0)
	c.evictions.Store(0)
}
