package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oosim/internal/config"
	"oosim/internal/feeder"
	"oosim/internal/oracle"
	"oosim/internal/stats"
	"oosim/internal/trace"
)

func testCoreConfig() config.CoreConfig {
	cc := config.CoreConfig{
		Name:                "test",
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
		DVFS:                "none",
		Repeater:            "none",
		IL1:                 "IL1:64:4:64:1:8:1:L:W:T:4:C",
		DL1:                 "DL1:64:4:64:1:8:1:L:W:T:4:C",
		ITLB:                "ITLB:32:4:1:10",
		DTLB:                "DTLB:32:4:1:10",
	}
	return cc
}

func newTestCore(t *testing.T, maxMops int) *Core {
	t.Helper()
	o := oracle.New(feeder.NewStub(maxMops), 128)
	c, err := New(0, testCoreConfig(), o, stats.NewDB(), trace.Discard{})
	require.NoError(t, err)
	return c
}

// TestCoreRetiresEveryFedMop is a regression test for a missing
// oracle.Recover call on a branch mispredict: without it, Mops fetched
// past a mispredicting branch and then squashed out of the pipeline were
// never handed back out by the oracle, and retired count would fall short
// of the number the feeder produced. The stub feeder's periodic backward
// branches exercise this path.
func TestCoreRetiresEveryFedMop(t *testing.T) {
	const maxMops = 200
	c := newTestCore(t, maxMops)

	var ticks int
	for !c.Done() && ticks < 1_000_000 {
		c.Tick()
		ticks++
	}

	require.True(t, c.Done(), "core did not finish within the tick budget")
	assert.Equal(t, uint64(maxMops), c.stats.Get("instructions_retired"))
	assert.Empty(t, c.stats.DistBuckets("core_event"))
}

func TestCycleAndStatsAccessors(t *testing.T) {
	c := newTestCore(t, 10)
	assert.Equal(t, uint64(0), c.Cycle())
	c.Tick()
	assert.Equal(t, uint64(1), c.Cycle())
	assert.NotNil(t, c.Stats())
}
