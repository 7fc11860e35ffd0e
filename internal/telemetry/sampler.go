package telemetry

import (
	"github.com/Borislavv/go-smart-cache/internal/scheduler"
	"github.com/Borislavv/go-smart-cache/internal/tiered"
)

type cacheSource interface {
	Stats() tiered.Stats
}

type storeSource interface {
	Len() int
	SizeBytes() int64
}

type schedulerSource interface {
	Stats() scheduler.Stats
}

type sampler struct {
	cache cacheSource
	store storeSource
	sched schedulerSource
}

// snapshot holds cumulative counters (monotonic).
type snapshot struct {
	hotHits    int64
	warmHits   int64
	coldHits   int64
	misses     int64
	promotions int64
	demotions  int64
	evictions  int64

	submitted int64
	completed int64
	failed    int64
	rejected  int64
	cancelled int64
}

func (s sampler) snapshot() snapshot {
	out := snapshot{}
	if s.cache != nil {
		cs := s.cache.Stats()
		out.hotHits = cs.HotHits
		out.warmHits = cs.WarmHits
		out.coldHits = cs.ColdHits
		out.misses = cs.Misses
		out.promotions = cs.Promotions
		out.demotions = cs.Demotions
		out.evictions = cs.Evictions
	}
	if s.sched != nil {
		ss := s.sched.Stats()
		out.submitted = ss.Submitted
		out.completed = ss.Completed
		out.failed = ss.Failed
		out.rejected = ss.Rejected
		out.cancelled = ss.Cancelled
	}
	return out
}

// deltaSnapshot converts cumulative snapshots to per-interval deltas.
// If counters reset (cur < prev), it treats cur as the delta.
func deltaSnapshot(prev, cur snapshot) snapshot {
	return snapshot{
		hotHits:    delta(prev.hotHits, cur.hotHits),
		warmHits:   delta(prev.warmHits, cur.warmHits),
		coldHits:   delta(prev.coldHits, cur.coldHits),
		misses:     delta(prev.misses, cur.misses),
		promotions: delta(prev.promotions, cur.promotions),
		demotions:  delta(prev.demotions, cur.demotions),
		evictions:  delta(prev.evictions, cur.evictions),

		submitted: delta(prev.submitted, cur.submitted),
		completed: delta(prev.completed, cur.completed),
		failed:    delta(prev.failed, cur.failed),
		rejected:  delta(prev.rejected, cur.rejected),
		cancelled: delta(prev.cancelled, cur.cancelled),
	}
}

func delta(prev, cur int64) int64 {
	if cur >= prev {
		return cur - prev
	}
	return cur
}
