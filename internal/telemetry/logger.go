package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/Borislavv/go-smart-cache/config"
	"github.com/Borislavv/go-smart-cache/internal/shared/bytes"
)

type Logger interface {
	Interval() time.Duration
	Close() error
}

type Logs struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      *config.Config
	logger   *slog.Logger
	cache    cacheSource
	store    storeSource
	sched    schedulerSource
	interval time.Duration
}

func New(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	cache cacheSource,
	store storeSource,
	sched schedulerSource,
) *Logs {
	ctx, cancel := context.WithCancel(ctx)
	var interval time.Duration
	if cfg.Telemetry.Enabled() {
		interval = cfg.Telemetry.Interval
	}
	return (&Logs{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		logger:   logger,
		cache:    cache,
		store:    store,
		sched:    sched,
		interval: interval,
	}).run()
}

func (l *Logs) Interval() time.Duration {
	return l.interval
}

func (l *Logs) Close() error {
	l.cancel()
	return nil
}

func (l *Logs) run() *Logs {
	if l.cfg != nil && l.cfg.Telemetry.Enabled() {
		go l.loop()
	}
	return l
}

func (l *Logs) loop() {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	diskBudget := bytes.FmtMem(uint64(l.cfg.Disk.BudgetBytes))

	s := sampler{cache: l.cache, store: l.store, sched: l.sched}
	prev := s.snapshot()

	for {
		select {
		case <-l.ctx.Done():
			return

		case <-ticker.C:
			cur := s.snapshot()
			d := deltaSnapshot(prev, cur)
			prev = cur

			common := []any{"interval", l.interval.String()}

			if l.cache != nil {
				cs := l.cache.Stats()
				l.logger.Info("tiered_cache",
					append(common,
						"hot_hits", d.hotHits,
						"warm_hits", d.warmHits,
						"cold_hits", d.coldHits,
						"misses", d.misses,
						"promotions", d.promotions,
						"demotions", d.demotions,
						"evictions", d.evictions,
						"hot_entries", cs.HotLen,
						"warm_entries", cs.WarmLen,
						"hit_rate", cs.HitRate,
					)...,
				)
			}

			if l.store != nil {
				l.logger.Info("cold_store",
					append(common,
						"entries", l.store.Len(),
						"size", bytes.FmtMem(uint64(max(l.store.SizeBytes(), 0))),
						"budget", diskBudget,
					)...,
				)
			}

			if l.sched != nil {
				ss := l.sched.Stats()
				l.logger.Info("scheduler",
					append(common,
						"submitted", d.submitted,
						"completed", d.completed,
						"failed", d.failed,
						"rejected", d.rejected,
						"cancelled", d.cancelled,
						"queued", ss.QueuedTasks,
						"active", ss.ActiveTasks,
						"avg_wait", ss.AvgWait.String(),
						"avg_exec", ss.AvgExec.String(),
						"cpu", ss.CPUUsage,
						"mem", ss.MemoryUsage,
					)...,
				)
			}
		}
	}
}
