package config

const defaultReapPerSec = 100

// DiskCfg configures the persistent cold tier.
type DiskCfg struct {
	// Dir is the directory holding the payload files and the index file.
	// It is created if missing and must be writable.
	Dir string `yaml:"dir"`

	// BudgetBytes is the total payload byte budget. Before each write,
	// entries are evicted in ascending last-access order until the new
	// payload fits.
	BudgetBytes int64 `yaml:"budget"`

	// Gzip enables gzip compression of the index file.
	// Payload files are stored as written.
	Gzip bool `yaml:"gzip"`

	// ReapPerSec limits how many deferred invalidations the background
	// reaper applies per second. Defaults to 100.
	ReapPerSec int `yaml:"reap_per_sec"`
}

func (cfg *DiskCfg) adjust() {
	if cfg.ReapPerSec <= 0 {
		cfg.ReapPerSec = defaultReapPerSec
	}
}
