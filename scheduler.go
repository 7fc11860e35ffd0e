package smartcache

import (
	"context"
	"log/slog"

	"github.com/Borislavv/go-smart-cache/config"
	"github.com/Borislavv/go-smart-cache/internal/monitor"
	"github.com/Borislavv/go-smart-cache/internal/scheduler"
)

// Scheduler is the load-adaptive task scheduler. It can be shared across
// subsystems; the cache submits its background cold-tier work to it.
type Scheduler = scheduler.Scheduler

type SchedulerStats = scheduler.Stats

// Handle is the caller-visible result of a submitted task, resolved exactly
// once with a value or a failure.
type Handle = scheduler.Handle

// Task priorities for Submit.
type TaskPriority = scheduler.Priority

const (
	TaskCritical = scheduler.PriorityCritical
	TaskHigh     = scheduler.PriorityHigh
	TaskNormal   = scheduler.PriorityNormal
	TaskLow      = scheduler.PriorityLow
	TaskIdle     = scheduler.PriorityIdle
)

// Submission options.
var (
	WithPriority      = scheduler.WithPriority
	WithTaskID        = scheduler.WithTaskID
	WithCallback      = scheduler.WithCallback
	WithErrorCallback = scheduler.WithErrorCallback
)

var (
	ErrTaskCancelled   = scheduler.ErrTaskCancelled
	ErrSchedulerClosed = scheduler.ErrSchedulerClosed
)

// NewScheduler builds a scheduler with a live resource monitor. cfg may be
// nil; defaults are applied.
func NewScheduler(ctx context.Context, cfg *config.SchedulerCfg, logger *slog.Logger) (*Scheduler, error) {
	if cfg == nil {
		cfg = &config.SchedulerCfg{}
	}
	full := &config.Config{Scheduler: cfg}
	full.AdjustConfig()
	cfg = full.Scheduler

	mon := monitor.New(cfg, logger)
	return scheduler.New(ctx, cfg, logger, mon)
}
