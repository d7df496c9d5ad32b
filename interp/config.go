package interp

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config tunes an interpreter instance. The zero value selects the
// defaults (standard GC threshold, no tick limit).
type Config struct {
	// GCThreshold is the number of allocations between collections;
	// <= 0 selects the heap default.
	GCThreshold int `yaml:"gc_threshold"`

	// TickLimit bounds the number of statements a run may execute;
	// <= 0 means unlimited.
	TickLimit int64 `yaml:"tick_limit"`

	// StepHook, when set, is consulted before each statement; returning
	// false aborts the run with a RangeError. Not loadable from YAML.
	StepHook func() bool `yaml:"-"`
}

// LoadConfig reads a YAML config file
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
