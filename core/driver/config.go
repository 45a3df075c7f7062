package driver

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the machine's configurable timing parameter, the memory
// latency (mirroring the teacher's latency.TimingConfig/LoadConfig), so
// tests and tools can exercise non-default latencies without recompiling.
// Queue capacities and FU pipeline depths are package constants and are
// not part of Config.
type Config struct {
	MemoryLatencyCycles int `json:"memory_latency_cycles"`
}

// DefaultConfig returns the structural parameters named in spec.md: a
// fixed 3-cycle memory latency.
func DefaultConfig() *Config {
	return &Config{MemoryLatencyCycles: 3}
}

// LoadConfig reads a JSON timing configuration file, falling back to
// DefaultConfig's values for any field left unset.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("driver: cannot read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("driver: invalid config: %w", err)
	}
	if cfg.MemoryLatencyCycles <= 0 {
		cfg.MemoryLatencyCycles = DefaultConfig().MemoryLatencyCycles
	}
	return cfg, nil
}
