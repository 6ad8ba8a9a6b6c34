package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBenchmarkYAML = `
sim_config: core.yaml
feeder_exe: /usr/local/bin/mytrace-feeder
feeder_args: ["--trace", "bench.trace"]
run_id: bench1
`

func TestLoadBenchmarkConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleBenchmarkYAML), 0o644))

	cfg, err := loadBenchmarkConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "core.yaml", cfg.SimConfig)
	assert.Equal(t, "/usr/local/bin/mytrace-feeder", cfg.FeederExe)
	assert.Equal(t, []string{"--trace", "bench.trace"}, cfg.FeederArgs)
	assert.Equal(t, "bench1", cfg.RunID)
}

func TestLoadBenchmarkConfigDefaultsRunID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sim_config: core.yaml\nfeeder_exe: feeder\n"), 0o644))

	cfg, err := loadBenchmarkConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "run", cfg.RunID)
}

func TestLoadBenchmarkConfigRequiresFeederExe(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sim_config: core.yaml\n"), 0o644))

	_, err := loadBenchmarkConfig(path)
	assert.Error(t, err)
}

func TestLoadBenchmarkConfigMissingFile(t *testing.T) {
	_, err := loadBenchmarkConfig("/nonexistent/bench.yaml")
	assert.Error(t, err)
}

func TestValidateFlags(t *testing.T) {
	flagBenchmarkCfg = ""
	flagNumProcesses = 1
	assert.Error(t, validateFlags(nil, nil))

	flagBenchmarkCfg = "bench.yaml"
	flagNumProcesses = 0
	assert.Error(t, validateFlags(nil, nil))

	flagNumProcesses = 2
	assert.NoError(t, validateFlags(nil, nil))
}
