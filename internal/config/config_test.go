package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
clock_ratio: 2
max_cycles: 1000000
cores:
  - name: core0
    fetch_width: 4
    rob_size: 224
    dl1: "DL1:64:8:64:4:16:1:L:W:T:8:C"
    dtlb: "DTLB:64:4:1:30"
    bpred_direction: gshare
uncore:
  llc: "LLC:2048:16:64:30:128:4:L:W:T:16:C"
  fsb_width_bytes: 32
  mc: simple
  mc_latency: 120
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Cores, 1)
	assert.Equal(t, 2, cfg.ClockRatio)
	assert.Equal(t, uint64(1000000), cfg.MaxCycles)
	assert.Equal(t, 224, cfg.Cores[0].ROBSize)
	// defaults filled in for unset fields
	assert.Equal(t, 4, cfg.Cores[0].DecodeWidth)
	assert.Equal(t, "gshare", cfg.Cores[0].BPredDirection)
	assert.Equal(t, "majority", cfg.Cores[0].BPredFusion)
	assert.Equal(t, "simple", cfg.Uncore.MC)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/cfg.yaml")
	assert.Error(t, err)
}
