// Package config loads and validates the JSON document that parameterizes
// a run: core/chiplet counts, the scheduling policy, and the tier-by-tier
// memory system settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/archfab/fabricsim/memsys/bank"
	"github.com/archfab/fabricsim/memsys/interconnect"
	"github.com/archfab/fabricsim/scheduler"
)

// ConfigError reports a malformed or invalid configuration document.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "config: " + e.Msg }

func errf(format string, a ...interface{}) error {
	return &ConfigError{Msg: fmt.Sprintf(format, a...)}
}

// CacheConfig controls the LRU cache tier. A zero-value with Enabled=false
// disables the tier entirely.
type CacheConfig struct {
	Enabled          bool `json:"enabled"`
	SizeBytes        int  `json:"size_bytes"`
	HitLatencyCycles int  `json:"hit_latency_cycles"`
	PortLimit        int  `json:"port_limit"`
}

// DTCMConfig controls the scratchpad tier.
type DTCMConfig struct {
	Enabled       bool   `json:"enabled"`
	BaseAddress   string `json:"base_address"`
	SizeBytes     int    `json:"size_bytes"`
	LatencyCycles int    `json:"latency_cycles"`
}

// MemoryBanksConfig controls the banked main-memory tier.
type MemoryBanksConfig struct {
	Count                int    `json:"count"`
	ServiceLatencyCycles int    `json:"service_latency_cycles"`
	BankIndexFunction    string `json:"bank_index_function"`
	ConflictPolicy       string `json:"conflict_policy"`
	PortLimit            int    `json:"port_limit"`
}

// InterconnectConfig controls the fabric linking cores, banks and chiplets.
type InterconnectConfig struct {
	Topology               string `json:"topology"`
	BaseLatencyCycles      int    `json:"base_latency_cycles"`
	LinkWidthBytesPerCycle int    `json:"link_width_bytes_per_cycle"`
}

// ChipletConfig controls cross-chiplet penalties.
type ChipletConfig struct {
	RemotePenaltyCycles int `json:"remote_penalty_cycles"`
}

// Config is the fully parsed and defaulted configuration document.
type Config struct {
	Cores            int                `json:"cores"`
	Chiplets         int                `json:"chiplets"`
	SchedulingPolicy string             `json:"scheduling_policy"`
	Cache            CacheConfig        `json:"cache"`
	DTCM             DTCMConfig         `json:"dtcm"`
	MemoryBanks      MemoryBanksConfig  `json:"memory_banks"`
	Interconnect     InterconnectConfig `json:"interconnect"`
	Chiplet          ChipletConfig      `json:"chiplet"`
	FrequencyGHz     float64            `json:"frequency_ghz"`

	// Resolved holds the parsed enum values, filled in by Load after
	// validation so callers never re-parse the raw strings.
	Resolved Resolved `json:"-"`
}

// Resolved carries the typed enum values decoded from the document's
// string fields, and the decoded DTCM base address.
type Resolved struct {
	Policy          scheduler.Policy
	BankIndexFn     bank.IndexFn
	ConflictPolicy  bank.ConflictPolicy
	Topology        interconnect.Topology
	DTCMBaseAddress uint64
}

func defaults() Config {
	return Config{
		Cores:            1,
		Chiplets:         1,
		SchedulingPolicy: "fifo",
		Cache: CacheConfig{
			Enabled:          false,
			SizeBytes:        4096,
			HitLatencyCycles: 1,
			PortLimit:        0,
		},
		DTCM: DTCMConfig{
			Enabled:       false,
			BaseAddress:   "0x0",
			SizeBytes:     4096,
			LatencyCycles: 1,
		},
		MemoryBanks: MemoryBanksConfig{
			Count:                1,
			ServiceLatencyCycles: 50,
			BankIndexFunction:    "addr_mod_n",
			ConflictPolicy:       "serialize",
			PortLimit:            0,
		},
		Interconnect: InterconnectConfig{
			Topology:               "bus",
			BaseLatencyCycles:      10,
			LinkWidthBytesPerCycle: 8,
		},
		Chiplet:      ChipletConfig{RemotePenaltyCycles: 0},
		FrequencyGHz: 1.0,
	}
}

// Load reads, defaults, and validates the configuration document at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errf("reading %s: %v", path, err)
	}

	cfg := defaults()

	// Decode into a map of raw values first so mergeJSON can overlay each
	// top-level key that is present onto the defaults and reject any key
	// it does not recognise.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, errf("parsing %s: %v", path, err)
	}

	if err := mergeJSON(&cfg, probe); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeJSON overlays only the keys present in raw onto cfg, leaving
// defaults() untouched for every key the document omits.
func mergeJSON(cfg *Config, raw map[string]json.RawMessage) error {
	set := func(key string, dst interface{}) error {
		v, ok := raw[key]
		if !ok {
			return nil
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return errf("key %q: %v", key, err)
		}
		return nil
	}

	if err := set("cores", &cfg.Cores); err != nil {
		return err
	}
	if err := set("chiplets", &cfg.Chiplets); err != nil {
		return err
	}
	if err := set("scheduling_policy", &cfg.SchedulingPolicy); err != nil {
		return err
	}
	if err := set("cache", &cfg.Cache); err != nil {
		return err
	}
	if err := set("dtcm", &cfg.DTCM); err != nil {
		return err
	}
	if err := set("memory_banks", &cfg.MemoryBanks); err != nil {
		return err
	}
	if err := set("interconnect", &cfg.Interconnect); err != nil {
		return err
	}
	if err := set("chiplet", &cfg.Chiplet); err != nil {
		return err
	}
	if err := set("frequency_ghz", &cfg.FrequencyGHz); err != nil {
		return err
	}

	for key := range raw {
		switch key {
		case "cores", "chiplets", "scheduling_policy", "cache", "dtcm",
			"memory_banks", "interconnect", "chiplet", "frequency_ghz":
		default:
			return errf("unknown key %q", key)
		}
	}

	return nil
}

func validate(cfg *Config) error {
	if cfg.Cores < 1 {
		return errf("cores must be >= 1, got %d", cfg.Cores)
	}
	if cfg.Chiplets < 1 {
		return errf("chiplets must be >= 1, got %d", cfg.Chiplets)
	}
	if cfg.FrequencyGHz <= 0 {
		return errf("frequency_ghz must be > 0, got %v", cfg.FrequencyGHz)
	}

	policy, ok := scheduler.ParsePolicy(cfg.SchedulingPolicy)
	if !ok {
		return errf("unknown scheduling_policy %q", cfg.SchedulingPolicy)
	}
	cfg.Resolved.Policy = policy

	if cfg.Cache.Enabled {
		if cfg.Cache.SizeBytes <= 0 {
			return errf("cache.size_bytes must be > 0, got %d", cfg.Cache.SizeBytes)
		}
		if cfg.Cache.HitLatencyCycles <= 0 {
			return errf("cache.hit_latency_cycles must be > 0, got %d", cfg.Cache.HitLatencyCycles)
		}
		if cfg.Cache.PortLimit < 0 {
			return errf("cache.port_limit must be >= 0, got %d", cfg.Cache.PortLimit)
		}
	}

	if cfg.DTCM.Enabled {
		addr, err := parseHex(cfg.DTCM.BaseAddress)
		if err != nil {
			return errf("dtcm.base_address: %v", err)
		}
		cfg.Resolved.DTCMBaseAddress = addr
		if cfg.DTCM.SizeBytes <= 0 {
			return errf("dtcm.size_bytes must be > 0, got %d", cfg.DTCM.SizeBytes)
		}
		if cfg.DTCM.LatencyCycles <= 0 {
			return errf("dtcm.latency_cycles must be > 0, got %d", cfg.DTCM.LatencyCycles)
		}
	}

	if cfg.MemoryBanks.Count < 1 {
		return errf("memory_banks.count must be >= 1, got %d", cfg.MemoryBanks.Count)
	}
	if cfg.MemoryBanks.ServiceLatencyCycles <= 0 {
		return errf("memory_banks.service_latency_cycles must be > 0, got %d", cfg.MemoryBanks.ServiceLatencyCycles)
	}
	if cfg.MemoryBanks.PortLimit < 0 {
		return errf("memory_banks.port_limit must be >= 0, got %d", cfg.MemoryBanks.PortLimit)
	}

	indexFn, ok := bank.ParseIndexFn(cfg.MemoryBanks.BankIndexFunction)
	if !ok {
		return errf("unknown memory_banks.bank_index_function %q", cfg.MemoryBanks.BankIndexFunction)
	}
	cfg.Resolved.BankIndexFn = indexFn

	conflictPolicy, ok := bank.ParseConflictPolicy(cfg.MemoryBanks.ConflictPolicy)
	if !ok {
		return errf("unknown memory_banks.conflict_policy %q", cfg.MemoryBanks.ConflictPolicy)
	}
	cfg.Resolved.ConflictPolicy = conflictPolicy

	topology, ok := interconnect.ParseTopology(cfg.Interconnect.Topology)
	if !ok {
		return errf("unknown interconnect.topology %q", cfg.Interconnect.Topology)
	}
	cfg.Resolved.Topology = topology

	if cfg.Interconnect.BaseLatencyCycles < 0 {
		return errf("interconnect.base_latency_cycles must be >= 0, got %d", cfg.Interconnect.BaseLatencyCycles)
	}
	if cfg.Interconnect.LinkWidthBytesPerCycle <= 0 {
		return errf("interconnect.link_width_bytes_per_cycle must be > 0, got %d", cfg.Interconnect.LinkWidthBytesPerCycle)
	}
	if cfg.Chiplet.RemotePenaltyCycles < 0 {
		return errf("chiplet.remote_penalty_cycles must be >= 0, got %d", cfg.Chiplet.RemotePenaltyCycles)
	}

	return nil
}

func parseHex(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(trimmed, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("not a hex address: %q", s)
	}
	return v, nil
}

// CacheCapacityLines returns the cache tier's capacity in cache lines
// given the configured line size.
func (c *Config) CacheCapacityLines(lineSize int) int {
	if lineSize <= 0 {
		return 0
	}
	return c.Cache.SizeBytes / lineSize
}
