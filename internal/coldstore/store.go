// Package coldstore implements the persistent, size-bounded bottom tier of
// the hierarchical cache: one payload file per key plus a single binary index
// file describing size and access history of every entry.
//
// Storage errors here are recoverable by contract: a missing or corrupt
// payload reads as a miss and purges its stale index record; a failed index
// persist keeps the in-memory index authoritative until the next rewrite.
package coldstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zeebo/xxh3"

	"github.com/Borislavv/go-smart-cache/config"
	"github.com/Borislavv/go-smart-cache/internal/shared/rate"
)

const payloadExt = ".cache"

type Storer interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte)
	Discard(key string)
	Clear()
	Len() int
	SizeBytes() int64
}

// Store respects the given ctx: the reaper goroutine exits with it.
type Store struct {
	mu        sync.Mutex
	dir       string
	budget    int64
	gzip      bool
	index     map[string]*Entry
	totalSize int64

	tomb   chan string
	jitter *rate.Jitter
	ctx    context.Context
	cancel context.CancelFunc
}

func New(ctx context.Context, cfg *config.DiskCfg) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cold store dir: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	reapPerSec := cfg.ReapPerSec
	if reapPerSec <= 0 {
		reapPerSec = 100
	}
	s := &Store{
		dir:    cfg.Dir,
		budget: cfg.BudgetBytes,
		gzip:   cfg.Gzip,
		index:  make(map[string]*Entry),
		tomb:   make(chan string, 1024),
		jitter: rate.NewJitter(ctx, reapPerSec),
		ctx:    ctx,
		cancel: cancel,
	}

	s.mu.Lock()
	s.loadIndex()
	s.mu.Unlock()

	go s.reap()

	return s, nil
}

// Get returns the payload for key, or absent. A key whose payload file is
// missing or unreadable is purged from the index and reported absent, never
// as an error.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.index[key]
	if !ok {
		return nil, false
	}

	data, err := os.ReadFile(s.payloadPath(key))
	if err != nil || int64(len(data)) != e.Size {
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("[coldstore] payload read failed, purging entry")
		} else {
			log.Warn().Str("key", key).Msg("[coldstore] payload size mismatch, purging entry")
		}
		s.removeLocked(key)
		s.persistIndexLocked()
		return nil, false
	}

	e.LastAccess = time.Now().UnixNano()
	e.AccessCount++
	return data, true
}

// Put writes the payload and rewrites the index. If the projected total size
// exceeds the byte budget, entries are evicted in ascending last-access order
// until the new payload fits or the store is empty.
func (s *Store) Put(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictForLocked(int64(len(value)))

	path := s.payloadPath(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		log.Err(err).Str("key", key).Msg("[coldstore] payload write error")
		_ = os.Remove(tmp)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		log.Err(err).Str("key", key).Msg("[coldstore] payload rename error")
		_ = os.Remove(tmp)
		return
	}

	now := time.Now().UnixNano()
	if old, ok := s.index[key]; ok {
		s.totalSize -= old.Size
		s.index[key] = &Entry{
			Key: key, Size: int64(len(value)),
			CreatedAt: old.CreatedAt, LastAccess: now, AccessCount: old.AccessCount + 1,
		}
	} else {
		s.index[key] = &Entry{
			Key: key, Size: int64(len(value)),
			CreatedAt: now, LastAccess: now, AccessCount: 1,
		}
	}
	s.totalSize += int64(len(value))

	s.persistIndexLocked()
}

// Clear removes all payload files and resets the index.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.index {
		_ = os.Remove(s.payloadPath(key))
	}
	s.index = make(map[string]*Entry)
	s.totalSize = 0
	s.persistIndexLocked()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.index)
}

func (s *Store) SizeBytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalSize
}

// Entry returns a copy of the index record for key, if present.
func (s *Store) Entry(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.index[key]; ok {
		return *e, true
	}
	return Entry{}, false
}

func (s *Store) Close() error {
	s.cancel()
	return nil
}

// evictForLocked frees space for an incoming payload of the given size,
// strict LRU by wall-clock recency.
func (s *Store) evictForLocked(required int64) {
	if s.totalSize+required <= s.budget {
		return
	}

	for s.totalSize+required > s.budget && len(s.index) > 0 {
		var victim *Entry
		for _, e := range s.index {
			if victim == nil || e.LastAccess < victim.LastAccess {
				victim = e
			}
		}
		log.Debug().
			Str("key", victim.Key).
			Int64("size", victim.Size).
			Msg("[coldstore] evicting by last access")
		s.removeLocked(victim.Key)
	}
}

func (s *Store) removeLocked(key string) {
	if e, ok := s.index[key]; ok {
		s.totalSize -= e.Size
		delete(s.index, key)
	}
	_ = os.Remove(s.payloadPath(key))
}

// payloadPath names the payload file after the xxh3-128 of the key, keeping
// filesystem-unsafe key characters out of the directory.
func (s *Store) payloadPath(key string) string {
	sum := xxh3.Hash128([]byte(key))
	return filepath.Join(s.dir, fmt.Sprintf("%016x%016x%s", sum.Hi, sum.Lo, payloadExt))
}
