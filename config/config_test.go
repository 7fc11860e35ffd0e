package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig(dir string) *Config {
	return &Config{
		Hot:  &HotCfg{Capacity: 8},
		Warm: &WarmCfg{Capacity: 16},
		Disk: &DiskCfg{Dir: dir, BudgetBytes: 1 << 20},
	}
}

// TestAdjustConfig_AppliesDefaults fills sampling, threshold and reaper
// defaults on a sparse config.
func TestAdjustConfig_AppliesDefaults(t *testing.T) {
	cfg := validConfig(t.TempDir())
	cfg.Telemetry = &TelemetryCfg{IsStatLogsEnabled: true}
	cfg.AdjustConfig()

	require.NotNil(t, cfg.Scheduler)
	require.Equal(t, time.Second, cfg.Scheduler.SampleInterval)
	require.Equal(t, 70.0, cfg.Scheduler.CPUThresholdLow)
	require.Equal(t, 80.0, cfg.Scheduler.MemThresholdLow)
	require.Equal(t, 85.0, cfg.Scheduler.CPUThresholdNormal)
	require.Equal(t, 90.0, cfg.Scheduler.MemThresholdNormal)
	require.Equal(t, 100, cfg.Disk.ReapPerSec)
	require.Equal(t, 5*time.Second, cfg.Telemetry.Interval)
}

// TestAdjustConfig_KeepsExplicitValues never overwrites values the caller set.
func TestAdjustConfig_KeepsExplicitValues(t *testing.T) {
	cfg := validConfig(t.TempDir())
	cfg.Scheduler = &SchedulerCfg{
		SampleInterval:  250 * time.Millisecond,
		CPUThresholdLow: 55,
	}
	cfg.Disk.ReapPerSec = 7
	cfg.AdjustConfig()

	require.Equal(t, 250*time.Millisecond, cfg.Scheduler.SampleInterval)
	require.Equal(t, 55.0, cfg.Scheduler.CPUThresholdLow)
	require.Equal(t, 7, cfg.Disk.ReapPerSec)
}

// TestValidate_RejectsBrokenConfigs fails fast on configs the subsystems
// cannot run with.
func TestValidate_RejectsBrokenConfigs(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{"nil hot tier", func(cfg *Config) { cfg.Hot = nil }},
		{"zero hot capacity", func(cfg *Config) { cfg.Hot.Capacity = 0 }},
		{"zero warm capacity", func(cfg *Config) { cfg.Warm.Capacity = 0 }},
		{"nil disk tier", func(cfg *Config) { cfg.Disk = nil }},
		{"empty disk dir", func(cfg *Config) { cfg.Disk.Dir = "" }},
		{"zero disk budget", func(cfg *Config) { cfg.Disk.BudgetBytes = 0 }},
		{"negative workers override", func(cfg *Config) {
			cfg.Scheduler = &SchedulerCfg{MaxWorkersOverride: -1}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig(dir)
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}

	require.NoError(t, validConfig(dir).Validate())
}

// TestTelemetryCfg_Enabled treats a nil telemetry section as disabled.
func TestTelemetryCfg_Enabled(t *testing.T) {
	var cfg *TelemetryCfg
	require.False(t, cfg.Enabled())
	require.False(t, (&TelemetryCfg{}).Enabled())
	require.True(t, (&TelemetryCfg{IsStatLogsEnabled: true}).Enabled())
}

// TestLoadConfig_FromYamlFile loads, adjusts and validates a yaml config.
func TestLoadConfig_FromYamlFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.yaml")

	yamlCfg := `
hot:
  capacity: 4
warm:
  capacity: 8
disk:
  dir: ` + filepath.Join(dir, "cold") + `
  budget: 1048576
  gzip: true
scheduler:
  max_workers: 3
  cpu_threshold_low: 60
telemetry:
  stat_logs_enabled: true
  interval: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(yamlCfg), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 4, cfg.Hot.Capacity)
	require.Equal(t, 8, cfg.Warm.Capacity)
	require.True(t, cfg.Disk.Gzip)
	require.Equal(t, int64(1048576), cfg.Disk.BudgetBytes)
	require.Equal(t, 3, cfg.Scheduler.MaxWorkersOverride)
	require.Equal(t, 60.0, cfg.Scheduler.CPUThresholdLow)
	require.Equal(t, 85.0, cfg.Scheduler.CPUThresholdNormal, "unset thresholds take defaults")
	require.Equal(t, 2*time.Second, cfg.Telemetry.Interval)
}

// TestLoadConfig_Errors reports missing files and invalid content.
func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hot: {capacity: -1}"), 0o644))
	_, err = LoadConfig(path)
	require.Error(t, err)
}
