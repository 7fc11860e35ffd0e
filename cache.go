package smartcache

import (
	"context"
	"io"
	"log/slog"

	"github.com/Borislavv/go-smart-cache/config"
	"github.com/Borislavv/go-smart-cache/internal/coldstore"
	"github.com/Borislavv/go-smart-cache/internal/scheduler"
	"github.com/Borislavv/go-smart-cache/internal/telemetry"
	"github.com/Borislavv/go-smart-cache/internal/tiered"
)

// Placement priorities for Put: the caller chooses the tier where new data
// is created.
type Priority = tiered.Priority

const (
	PriorityHigh   = tiered.PriorityHigh
	PriorityNormal = tiered.PriorityNormal
	PriorityLow    = tiered.PriorityLow
)

type CacheStats = tiered.Stats

type SmartCache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte, priority Priority)
	GetAsync(key string, callback func(value []byte, ok bool)) *Handle
	PutAsync(key string, value []byte, priority Priority, callback func(ok bool)) *Handle
	Invalidate(key string)
	Clear()
	Stats() CacheStats
	io.Closer
}

// Cache is the hierarchical cache facade. Construct it with New (owns its
// scheduler) or NewWithScheduler (shares a caller-owned one); there is no
// process-wide instance.
type Cache struct {
	*tiered.Cache
	cls       context.CancelFunc
	store     *coldstore.Store
	sched     *Scheduler
	ownsSched bool
	telemetry telemetry.Logger
}

// New builds the full stack: resource monitor, scheduler, cold store, tiers
// and telemetry. Closing the cache shuts all of it down.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Cache, error) {
	sched, err := NewScheduler(ctx, cfg.Scheduler, logger)
	if err != nil {
		return nil, err
	}
	c, err := NewWithScheduler(ctx, cfg, logger, sched)
	if err != nil {
		sched.Shutdown(false)
		return nil, err
	}
	c.ownsSched = true
	return c, nil
}

// NewWithScheduler builds the cache over a caller-owned scheduler, shared
// with the rest of the application. The caller keeps responsibility for the
// scheduler's shutdown.
func NewWithScheduler(ctx context.Context, cfg *config.Config, logger *slog.Logger, sched *Scheduler) (*Cache, error) {
	cfg.AdjustConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)

	store, err := coldstore.New(ctx, cfg.Disk)
	if err != nil {
		cancel()
		return nil, err
	}

	var submitter tiered.Submitter
	if sched != nil {
		submitter = sched
	}
	cache := tiered.New(cfg, logger, store, submitter)

	var schedSrc interface{ Stats() scheduler.Stats }
	if sched != nil {
		schedSrc = sched
	}
	telemeter := telemetry.New(ctx, cfg, logger, cache, store, schedSrc)

	return &Cache{
		Cache:     cache,
		cls:       cancel,
		store:     store,
		sched:     sched,
		telemetry: telemeter,
	}, nil
}

func (c *Cache) Close() error {
	_ = c.telemetry.Close()
	if c.ownsSched && c.sched != nil {
		c.sched.Shutdown(true)
	}
	c.cls()
	return nil
}
