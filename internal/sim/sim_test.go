package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oosim/internal/config"
	"oosim/internal/feeder"
	"oosim/internal/trace"
)

func testConfig(numCores int) *config.Config {
	cc := config.CoreConfig{
		Name:                "core",
		FetchWidth:          4,
		DecodeWidth:         4,
		AllocWidth:          4,
		IssueWidth:          6,
		CommitWidth:         4,
		ROBSize:             64,
		RSSize:              32,
		LDQSize:             16,
		STQSize:             16,
		IQSize:              32,
		MaxBranchesPerCycle: 1,
		BPredDirection:      "gshare",
		BPredFusion:         "majority",
		BTBSets:             64,
		BTBWays:             4,
		IndirectSets:        16,
		RASSize:             16,
		RASKind:             "normal",
		MemDep:              "lwt",
		DVFS:                "sample",
		Repeater:            "none",
		IL1:                 "IL1:64:4:64:1:8:1:L:W:T:4:C",
		DL1:                 "DL1:64:4:64:1:8:1:L:W:T:4:C",
		ITLB:                "ITLB:32:4:1:10",
		DTLB:                "DTLB:32:4:1:10",
	}
	cfg := &config.Config{
		ClockRatio: 1,
		Uncore: config.UncoreConfig{
			LLC:                "LLC:256:8:64:20:32:2:L:W:T:8:C",
			FSBWidthBytes:      32,
			FSBLatency:         10,
			MC:                 "simple",
			MCLatency:          100,
			DRAMRowHitLatency:  40,
			DRAMRowMissLatency: 120,
			DRAMBanksPerRank:   8,
			Coherence:          "none",
		},
	}
	for i := 0; i < numCores; i++ {
		cfg.Cores = append(cfg.Cores, cc)
	}
	return cfg
}

func TestNewRejectsFeederCountMismatch(t *testing.T) {
	cfg := testConfig(2)
	_, err := New(cfg, []feeder.Feeder{feeder.NewStub(10)}, trace.Discard{})
	assert.Error(t, err)
}

func TestRunRetiresAcrossAllCores(t *testing.T) {
	cfg := testConfig(2)
	feeders := []feeder.Feeder{feeder.NewStub(50), feeder.NewStub(80)}
	s, err := New(cfg, feeders, trace.Discard{})
	require.NoError(t, err)

	var ticks int
	s.Run(0, func(cycle uint64) { ticks++ })

	require.Len(t, s.CoreStats(), 2)
	assert.Equal(t, uint64(50), s.CoreStats()[0].Get("instructions_retired"))
	assert.Equal(t, uint64(80), s.CoreStats()[1].Get("instructions_retired"))
	assert.Greater(t, ticks, 0)
}

func TestRunStopsAtMaxCycles(t *testing.T) {
	cfg := testConfig(1)
	feeders := []feeder.Feeder{feeder.NewStub(1_000_000)}
	s, err := New(cfg, feeders, trace.Discard{})
	require.NoError(t, err)

	s.Run(100, nil)
	assert.Equal(t, uint64(100), s.UncoreStats().Get("cycles"))
}
