// Package config loads the simulator's per-core and uncore configuration
// from a YAML document whose cache/bus/TLB fields are themselves expressed
// with a compact colon-separated mini-DSL.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config is the top-level simulator configuration: one entry per core plus
// a single shared uncore description.
type Config struct {
	Cores      []CoreConfig  `yaml:"cores"`
	Uncore     UncoreConfig  `yaml:"uncore"`
	ClockRatio int           `yaml:"clock_ratio"` // core cycles per uncore cycle
	MaxCycles  uint64        `yaml:"max_cycles"`  // 0 means run until deadlock/feeder EOF
}

// CoreConfig describes one core's pipeline widths, structure sizes and
// pluggable component selections.
type CoreConfig struct {
	Name string `yaml:"name"`

	FetchWidth  int `yaml:"fetch_width"`
	DecodeWidth int `yaml:"decode_width"`
	AllocWidth  int `yaml:"alloc_width"`
	IssueWidth  int `yaml:"issue_width"`
	CommitWidth int `yaml:"commit_width"`

	ROBSize int `yaml:"rob_size"`
	RSSize  int `yaml:"rs_size"`
	LDQSize int `yaml:"ldq_size"`
	STQSize int `yaml:"stq_size"`
	IQSize  int `yaml:"iq_size"` // fetch instruction queue

	MaxBranchesPerCycle int `yaml:"max_branches_per_cycle"`

	BPredDirection string `yaml:"bpred_direction"` // e.g. "gshare", "bimodal", "2level", "taken", "btfnt", "perfect"
	BPredFusion    string `yaml:"bpred_fusion"`    // "majority", "table", "random", "singleton:<index>"
	BTBSets        int    `yaml:"btb_sets"`
	BTBWays        int    `yaml:"btb_ways"`
	IndirectSets   int    `yaml:"indirect_btb_sets"`
	RASSize        int    `yaml:"ras_size"`
	RASKind        string `yaml:"ras_kind"` // "normal", "perfect"

	MemDep string `yaml:"memdep"` // "none", "blind", "oracle", "lwt"
	DVFS   string `yaml:"dvfs"`   // "none", "sample"

	IL1 string `yaml:"il1"` // mini-DSL cache string
	DL1 string `yaml:"dl1"`
	L2  string `yaml:"l2"`

	ITLB string `yaml:"itlb"` // mini-DSL TLB string
	DTLB string `yaml:"dtlb"`

	Repeater string `yaml:"repeater"` // "none", "xbus"
}

// UncoreConfig describes the shared last-level cache, bus and memory
// controller/DRAM model.
type UncoreConfig struct {
	LLC string `yaml:"llc"` // mini-DSL cache string

	FSBWidthBytes  int `yaml:"fsb_width_bytes"`
	FSBLatency     int `yaml:"fsb_latency"`

	MC        string `yaml:"mc"` // "ideal" or "simple"
	MCLatency int    `yaml:"mc_latency"`

	DRAMRowHitLatency  int `yaml:"dram_row_hit_latency"`
	DRAMRowMissLatency int `yaml:"dram_row_miss_latency"`
	DRAMBanksPerRank   int `yaml:"dram_banks_per_rank"`

	Coherence string `yaml:"coherence"` // "none" or "const"
}

// Load reads and parses a YAML configuration file, wrapping any error
// with the offending path via github.com/pkg/errors so a stack trace is
// retained for fatal reporting by the calling subcommand.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", path)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config file %s", path)
	}
	if cfg.ClockRatio <= 0 {
		cfg.ClockRatio = 1
	}
	for i := range cfg.Cores {
		applyCoreDefaults(&cfg.Cores[i])
	}
	return &cfg, nil
}

func applyCoreDefaults(c *CoreConfig) {
	if c.FetchWidth == 0 {
		c.FetchWidth = 4
	}
	if c.DecodeWidth == 0 {
		c.DecodeWidth = 4
	}
	if c.AllocWidth == 0 {
		c.AllocWidth = 4
	}
	if c.IssueWidth == 0 {
		c.IssueWidth = 6
	}
	if c.CommitWidth == 0 {
		c.CommitWidth = 4
	}
	if c.ROBSize == 0 {
		c.ROBSize = 192
	}
	if c.RSSize == 0 {
		c.RSSize = 64
	}
	if c.LDQSize == 0 {
		c.LDQSize = 72
	}
	if c.STQSize == 0 {
		c.STQSize = 56
	}
	if c.IQSize == 0 {
		c.IQSize = 64
	}
	if c.MaxBranchesPerCycle == 0 {
		c.MaxBranchesPerCycle = 1
	}
	if c.BPredDirection == "" {
		c.BPredDirection = "gshare"
	}
	if c.BPredFusion == "" {
		c.BPredFusion = "majority"
	}
	if c.RASKind == "" {
		c.RASKind = "normal"
	}
	if c.RASSize == 0 {
		c.RASSize = 32
	}
	if c.MemDep == "" {
		c.MemDep = "lwt"
	}
	if c.DVFS == "" {
		c.DVFS = "none"
	}
	if c.Repeater == "" {
		c.Repeater = "none"
	}
}
