package config

// HotCfg bounds the hot tier. The hot tier is the sole strong holder of a
// value while it is resident there; order reflects recency for LRU eviction.
type HotCfg struct {
	// Capacity is the maximum number of entries held in the hot tier.
	Capacity int `yaml:"capacity"`
}

// WarmCfg bounds the warm tier. When the warm tier overflows, the entry with
// the lowest access count is demoted to the cold tier (ties broken by
// insertion order, oldest first).
type WarmCfg struct {
	// Capacity is the maximum number of entries held in the warm tier.
	Capacity int `yaml:"capacity"`
}
