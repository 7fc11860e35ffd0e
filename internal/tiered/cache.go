// Package tiered composes the hot, warm and cold tiers into one hierarchical
// cache with promotion on hit and demotion on capacity pressure.
//
// One mutex covers every hot/warm transition so multi-tier moves are atomic
// to an external observer. The mutex is never held across cold-tier I/O:
// cold reads and demotion spills run after it is released, accepting a
// narrow race with a concurrent Invalidate rather than blocking memory-tier
// hits behind disk latency.
package tiered

import (
	"log/slog"
	"sync"

	"github.com/Borislavv/go-smart-cache/config"
	"github.com/Borislavv/go-smart-cache/internal/coldstore"
	"github.com/Borislavv/go-smart-cache/internal/scheduler"
)

// Priority routes the initial placement of a Put: the caller chooses where
// new data is created, the cache only decides promotion and demotion of
// existing data.
type Priority int

const (
	PriorityHigh   Priority = iota // hot tier
	PriorityNormal                 // warm tier
	PriorityLow                    // cold tier
)

// Submitter is the slice of the task scheduler the cache needs for its
// asynchronous cold-tier work.
type Submitter interface {
	Submit(fn scheduler.Fn, opts ...scheduler.Option) (*scheduler.Handle, bool)
}

type Stats struct {
	HotLen     int
	WarmLen    int
	HotHits    int64
	WarmHits   int64
	ColdHits   int64
	Misses     int64
	Promotions int64
	Demotions  int64
	Evictions  int64
	HitRate    float64
}

type spill struct {
	key string
	val []byte
}

type Cache struct {
	mu       sync.Mutex
	hot      *hotTier
	warm     *warmTier
	cold     coldstore.Storer
	sched    Submitter
	logger   *slog.Logger
	counters *counters
}

// New wires the in-memory tiers over the given cold store. sched may be nil;
// the asynchronous API then degrades to its synchronous fallback.
func New(cfg *config.Config, logger *slog.Logger, cold coldstore.Storer, sched Submitter) *Cache {
	return &Cache{
		hot:      newHotTier(cfg.Hot.Capacity),
		warm:     newWarmTier(cfg.Warm.Capacity),
		cold:     cold,
		sched:    sched,
		logger:   logger,
		counters: newCounters(),
	}
}

// Get checks hot, then warm, then cold, promoting on any hit below hot.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	if v, ok := c.hot.get(key); ok {
		c.mu.Unlock()
		c.counters.hotHits.Add(1)
		return v, true
	}
	if v, ok := c.warm.get(key); ok {
		c.warm.remove(key)
		spills := c.promoteLocked(key, v)
		c.mu.Unlock()
		c.counters.warmHits.Add(1)
		c.writeSpills(spills)
		return v, true
	}
	c.mu.Unlock()

	return c.coldGetPromote(key)
}

// coldGetPromote is the slow half of Get: cold-tier read outside the tier
// mutex, then promotion into hot. The async API relocates exactly this part
// onto a worker.
func (c *Cache) coldGetPromote(key string) ([]byte, bool) {
	v, ok := c.cold.Get(key)
	if !ok {
		c.counters.misses.Add(1)
		return nil, false
	}

	c.mu.Lock()
	spills := c.promoteLocked(key, v)
	c.mu.Unlock()
	c.counters.coldHits.Add(1)
	c.writeSpills(spills)
	return v, true
}

// Put routes initial placement by the caller-chosen priority.
func (c *Cache) Put(key string, value []byte, priority Priority) {
	switch priority {
	case PriorityHigh:
		c.mu.Lock()
		spills := c.addToHotLocked(key, value)
		c.mu.Unlock()
		c.writeSpills(spills)
	case PriorityNormal:
		c.mu.Lock()
		spills := c.addToWarmLocked(key, value)
		c.mu.Unlock()
		c.writeSpills(spills)
	default:
		c.cold.Put(key, value)
	}
}

// Invalidate removes the key from the hot and warm tiers synchronously.
// Cold-tier removal is deferred to the store's reaper, so a cold read inside
// that window may still observe the stale value; the window is an accepted
// part of the contract, not a defect.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	c.hot.remove(key)
	c.warm.remove(key)
	c.mu.Unlock()

	c.cold.Discard(key)
}

// Clear empties all tiers and resets the statistics.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.hot.clear()
	c.warm.clear()
	c.counters.reset()
	c.mu.Unlock()

	c.cold.Clear()
}

// Stats returns a snapshot of the cumulative counters. The hit rate is
// computed over all tiers and guarded against division by zero.
func (c *Cache) Stats() Stats {
	hotHits, warmHits, coldHits, misses, promotions, demotions, evictions := c.counters.snapshot()

	c.mu.Lock()
	hotLen, warmLen := c.hot.len(), c.warm.len()
	c.mu.Unlock()

	hits := hotHits + warmHits + coldHits
	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		HotLen:     hotLen,
		WarmLen:    warmLen,
		HotHits:    hotHits,
		WarmHits:   warmHits,
		ColdHits:   coldHits,
		Misses:     misses,
		Promotions: promotions,
		Demotions:  demotions,
		Evictions:  evictions,
		HitRate:    hitRate,
	}
}

/**
 * Private API. All *Locked methods require c.mu and return cold-tier spills
 * the caller must write after releasing it.
 */

func (c *Cache) promoteLocked(key string, val []byte) []spill {
	c.counters.promotions.Add(1)
	return c.addToHotLocked(key, val)
}

func (c *Cache) addToHotLocked(key string, val []byte) []spill {
	var spills []spill
	for c.hot.full() {
		victimKey, victimVal, ok := c.hot.popLRU()
		if !ok {
			break
		}
		spills = append(spills, c.demoteToWarmLocked(victimKey, victimVal)...)
		c.counters.demotions.Add(1)
	}
	c.hot.set(key, val)
	return spills
}

func (c *Cache) demoteToWarmLocked(key string, val []byte) []spill {
	return c.addToWarmLocked(key, val)
}

func (c *Cache) addToWarmLocked(key string, val []byte) []spill {
	c.warm.set(key, val)

	var spills []spill
	for c.warm.over() {
		victimKey, ok := c.warm.victim()
		if !ok {
			break
		}
		victimVal, _ := c.warm.get(victimKey)
		c.warm.remove(victimKey)
		spills = append(spills, spill{key: victimKey, val: victimVal})
		c.counters.evictions.Add(1)
	}
	return spills
}

func (c *Cache) writeSpills(spills []spill) {
	for _, sp := range spills {
		c.cold.Put(sp.key, sp.val)
	}
}
