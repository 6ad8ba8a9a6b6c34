package harness

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// BenchmarkConfig describes the multi-process run the harness should
// orchestrate: the simulator's own core/uncore configuration, plus the
// command line for the feeder executable each process slot runs.
type BenchmarkConfig struct {
	SimConfig  string   `yaml:"sim_config"`  // path to the core/uncore YAML simulate consumes
	FeederExe  string   `yaml:"feeder_exe"`  // path to the external feeder binary
	FeederArgs []string `yaml:"feeder_args"` // arguments passed to every feeder instance
	RunID      string   `yaml:"run_id"`      // handshake/ring name; defaults to "run"
}

func loadBenchmarkConfig(path string) (*BenchmarkConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading benchmark config %s", path)
	}
	var cfg BenchmarkConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing benchmark config %s", path)
	}
	if cfg.FeederExe == "" {
		return nil, errors.New("benchmark config: feeder_exe is required")
	}
	if cfg.SimConfig == "" {
		return nil, errors.New("benchmark config: sim_config is required")
	}
	if cfg.RunID == "" {
		cfg.RunID = "run"
	}
	return &cfg, nil
}
