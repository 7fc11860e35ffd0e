package config

import "time"

const defaultTelemetryInterval = 5 * time.Second

// TelemetryCfg configures periodic statistics logging.
// If nil, telemetry is disabled.
type TelemetryCfg struct {
	IsStatLogsEnabled bool          `yaml:"stat_logs_enabled"`
	Interval          time.Duration `yaml:"interval"`
}

func (cfg *TelemetryCfg) Enabled() bool {
	return cfg != nil && cfg.IsStatLogsEnabled
}

func (cfg *TelemetryCfg) adjust() {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultTelemetryInterval
	}
}
