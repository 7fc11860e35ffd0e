package monitor

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/Borislavv/go-smart-cache/config"
)

func testMonitor(t *testing.T, interval time.Duration) (*ResourceMonitor, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	cfg := &config.SchedulerCfg{SampleInterval: interval}
	return NewWithClock(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), mock), mock
}

// TestResourceMonitor_CachesSamplesWithinInterval re-samples only after the
// configured interval elapses.
func TestResourceMonitor_CachesSamplesWithinInterval(t *testing.T) {
	m, mock := testMonitor(t, time.Second)

	calls := 0
	m.cpuFn = func() (float64, error) {
		calls++
		return float64(calls * 10), nil
	}

	require.Equal(t, 10.0, m.CPUUsage())
	require.Equal(t, 10.0, m.CPUUsage(), "second call within the interval must hit the cache")
	require.Equal(t, 1, calls)

	mock.Add(1500 * time.Millisecond)
	require.Equal(t, 20.0, m.CPUUsage())
	require.Equal(t, 2, calls)
}

// TestResourceMonitor_IndependentCPUAndMemoryCaches refreshes one metric
// without touching the other's cache.
func TestResourceMonitor_IndependentCPUAndMemoryCaches(t *testing.T) {
	m, mock := testMonitor(t, time.Second)

	cpuCalls, memCalls := 0, 0
	m.cpuFn = func() (float64, error) { cpuCalls++; return 33.0, nil }
	m.memFn = func() (float64, error) { memCalls++; return 66.0, nil }

	require.Equal(t, 33.0, m.CPUUsage())

	mock.Add(1500 * time.Millisecond)
	require.Equal(t, 66.0, m.MemoryUsage())
	require.Equal(t, 1, cpuCalls)
	require.Equal(t, 1, memCalls)
}

// TestResourceMonitor_SamplingFailureFallsBackToNeutral reports 50% when the
// platform API errors instead of propagating the failure.
func TestResourceMonitor_SamplingFailureFallsBackToNeutral(t *testing.T) {
	m, mock := testMonitor(t, time.Second)

	m.cpuFn = func() (float64, error) { return 0, errors.New("proc unreadable") }
	m.memFn = func() (float64, error) { return 0, errors.New("proc unreadable") }

	require.Equal(t, neutralUsage, m.CPUUsage())
	require.Equal(t, neutralUsage, m.MemoryUsage())

	// Recovery on the next interval.
	m.cpuFn = func() (float64, error) { return 12.0, nil }
	mock.Add(2 * time.Second)
	require.Equal(t, 12.0, m.CPUUsage())
}

// TestResourceMonitor_DefaultInterval applies the one second default when the
// config leaves the interval unset.
func TestResourceMonitor_DefaultInterval(t *testing.T) {
	m, _ := testMonitor(t, 0)
	require.Equal(t, time.Second, m.interval)
}
