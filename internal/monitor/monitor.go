// Package monitor samples system CPU and memory utilization for the
// scheduler's admission control. Sampling cost is bounded by a minimum
// refresh interval: calls within the interval return the last cached sample.
package monitor

import (
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/Borislavv/go-smart-cache/config"
)

// neutralUsage is reported when the platform API is unavailable, so that
// admission control degrades to "assume moderate load" instead of failing.
const neutralUsage = 50.0

type Monitor interface {
	CPUUsage() float64
	MemoryUsage() float64
	TotalMemoryBytes() uint64
}

type ResourceMonitor struct {
	mu       sync.Mutex
	clk      clock.Clock
	logger   *slog.Logger
	interval time.Duration

	lastCPUAt time.Time
	lastCPU   float64
	lastMemAt time.Time
	lastMem   float64

	// Sampling funcs are swappable in tests.
	cpuFn func() (float64, error)
	memFn func() (float64, error)
}

func New(cfg *config.SchedulerCfg, logger *slog.Logger) *ResourceMonitor {
	return NewWithClock(cfg, logger, clock.New())
}

func NewWithClock(cfg *config.SchedulerCfg, logger *slog.Logger, clk clock.Clock) *ResourceMonitor {
	interval := cfg.SampleInterval
	if interval <= 0 {
		interval = time.Second
	}
	return &ResourceMonitor{
		clk:      clk,
		logger:   logger,
		interval: interval,
		lastCPU:  neutralUsage,
		lastMem:  neutralUsage,
		cpuFn:    sampleCPU,
		memFn:    sampleMemory,
	}
}

// CPUUsage returns system CPU utilization in percent, refreshed no more
// often than once per configured interval.
func (m *ResourceMonitor) CPUUsage() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clk.Now()
	if m.lastCPUAt.IsZero() || now.Sub(m.lastCPUAt) > m.interval {
		if v, err := m.cpuFn(); err != nil {
			m.logger.Warn("cpu sampling failed, assuming moderate load", "error", err)
			m.lastCPU = neutralUsage
		} else {
			m.lastCPU = v
		}
		m.lastCPUAt = now
	}
	return m.lastCPU
}

// MemoryUsage returns system memory utilization in percent, refreshed no
// more often than once per configured interval.
func (m *ResourceMonitor) MemoryUsage() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clk.Now()
	if m.lastMemAt.IsZero() || now.Sub(m.lastMemAt) > m.interval {
		if v, err := m.memFn(); err != nil {
			m.logger.Warn("memory sampling failed, assuming moderate load", "error", err)
			m.lastMem = neutralUsage
		} else {
			m.lastMem = v
		}
		m.lastMemAt = now
	}
	return m.lastMem
}

// TotalMemoryBytes reports total physical memory for worker-pool sizing.
// Zero means the platform API is unavailable and sizing skips the memory cap.
func (m *ResourceMonitor) TotalMemoryBytes() uint64 {
	vm, err := mem.VirtualMemory()
	if err != nil {
		m.logger.Warn("total memory lookup failed", "error", err)
		return 0
	}
	return vm.Total
}

func sampleCPU() (float64, error) {
	// Non-blocking sample: utilization since the previous call.
	percents, err := cpu.Percent(0, false)
	if err != nil {
		return 0, err
	}
	if len(percents) == 0 {
		return neutralUsage, nil
	}
	return percents[0], nil
}

func sampleMemory() (float64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}
