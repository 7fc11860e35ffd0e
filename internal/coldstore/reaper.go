package coldstore

import "github.com/rs/zerolog/log"

// Discard schedules removal of key from the store. Removal is deferred to
// the background reaper, so a concurrent Get may still observe the old value
// for a short window. When the tombstone queue is full the removal is
// applied inline instead of being dropped.
func (s *Store) Discard(key string) {
	select {
	case s.tomb <- key:
	default:
		s.mu.Lock()
		s.removeLocked(key)
		s.persistIndexLocked()
		s.mu.Unlock()
	}
}

// reap drains tombstones at a limited rate so deferred invalidations never
// compete with foreground disk traffic.
func (s *Store) reap() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case key := <-s.tomb:
			s.jitter.Take()
			s.mu.Lock()
			s.removeLocked(key)
			s.persistIndexLocked()
			s.mu.Unlock()
			log.Debug().Str("key", key).Msg("[coldstore] reaped deferred invalidation")
		}
	}
}
