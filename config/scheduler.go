package config

import "time"

const (
	defaultSampleInterval = time.Second

	// Admission thresholds, in percent of system CPU/memory usage.
	defaultCPUThresholdLow    = 70.0
	defaultMemThresholdLow    = 80.0
	defaultCPUThresholdNormal = 85.0
	defaultMemThresholdNormal = 90.0
)

// SchedulerCfg configures admission control, resource sampling and the
// worker pool of the task scheduler.
type SchedulerCfg struct {
	// SampleInterval is the minimum interval between CPU/memory samples.
	// Calls within the interval return the last cached sample. Default 1s.
	SampleInterval time.Duration `yaml:"sample_interval"`

	// MaxWorkersOverride forces the worker pool size. Zero means automatic
	// sizing: max(1, logical cpus - 2), capped to 2 when total system memory
	// is below 8GB. Negative values are rejected by Validate.
	MaxWorkersOverride int `yaml:"max_workers"`

	// CPUThresholdLow / MemThresholdLow reject LOW and IDLE priority work
	// when exceeded. Defaults: 70 / 80.
	CPUThresholdLow float64 `yaml:"cpu_threshold_low"`
	MemThresholdLow float64 `yaml:"mem_threshold_low"`

	// CPUThresholdNormal / MemThresholdNormal reject NORMAL priority work
	// when exceeded. Defaults: 85 / 90.
	CPUThresholdNormal float64 `yaml:"cpu_threshold_normal"`
	MemThresholdNormal float64 `yaml:"mem_threshold_normal"`
}

func (cfg *SchedulerCfg) adjust() {
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = defaultSampleInterval
	}
	if cfg.CPUThresholdLow <= 0 {
		cfg.CPUThresholdLow = defaultCPUThresholdLow
	}
	if cfg.MemThresholdLow <= 0 {
		cfg.MemThresholdLow = defaultMemThresholdLow
	}
	if cfg.CPUThresholdNormal <= 0 {
		cfg.CPUThresholdNormal = defaultCPUThresholdNormal
	}
	if cfg.MemThresholdNormal <= 0 {
		cfg.MemThresholdNormal = defaultMemThresholdNormal
	}
}
