package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config groups configuration of all cache and scheduler subsystems.
// It is constructed programmatically by the embedding application;
// LoadConfig is provided for applications that keep it in a yaml file.
type Config struct {
	// Hot configures the in-memory hot tier (strong ownership, LRU order).
	Hot *HotCfg `yaml:"hot"`

	// Warm configures the in-memory warm tier (access-frequency eviction).
	Warm *WarmCfg `yaml:"warm"`

	// Disk configures the persistent cold tier.
	Disk *DiskCfg `yaml:"disk"`

	// Scheduler configures admission thresholds, resource sampling and the
	// worker pool. If nil, defaults are applied during AdjustConfig.
	Scheduler *SchedulerCfg `yaml:"scheduler"`

	// Telemetry configures periodic statistics logging.
	// If nil, telemetry is disabled.
	Telemetry *TelemetryCfg `yaml:"telemetry"`
}

// AdjustConfig fills derived and defaulted fields. It is idempotent and must
// be called after manual construction or yaml unmarshalling.
func (cfg *Config) AdjustConfig() {
	if cfg.Scheduler == nil {
		cfg.Scheduler = &SchedulerCfg{}
	}
	cfg.Scheduler.adjust()

	if cfg.Disk != nil {
		cfg.Disk.adjust()
	}
	if cfg.Telemetry.Enabled() {
		cfg.Telemetry.adjust()
	}
}

// Validate fails fast on configuration the subsystems cannot run with.
func (cfg *Config) Validate() error {
	if cfg.Hot == nil || cfg.Hot.Capacity <= 0 {
		return fmt.Errorf("config: hot tier capacity must be positive")
	}
	if cfg.Warm == nil || cfg.Warm.Capacity <= 0 {
		return fmt.Errorf("config: warm tier capacity must be positive")
	}
	if cfg.Disk == nil {
		return fmt.Errorf("config: disk tier is required")
	}
	if cfg.Disk.Dir == "" {
		return fmt.Errorf("config: disk tier dir is required")
	}
	if cfg.Disk.BudgetBytes <= 0 {
		return fmt.Errorf("config: disk budget must be positive")
	}
	if cfg.Scheduler != nil && cfg.Scheduler.MaxWorkersOverride < 0 {
		return fmt.Errorf("config: max workers override must not be negative")
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}

	var cfg *Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}
	cfg.AdjustConfig()
	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
