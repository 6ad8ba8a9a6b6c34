package uncore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"oosim/internal/config"
)

func testUncoreConfig(mc string) config.UncoreConfig {
	return config.UncoreConfig{
		LLC:                "LLC:256:16:64:30:64:4:L:W:T:8:C",
		FSBWidthBytes:      8,
		MC:                 mc,
		MCLatency:          100,
		DRAMRowHitLatency:  20,
		DRAMRowMissLatency: 80,
		DRAMBanksPerRank:   4,
	}
}

func TestNewUncoreBuildsLLCAndMC(t *testing.T) {
	u, err := New(testUncoreConfig("ideal"))
	require.NoError(t, err)
	require.NotNil(t, u.LLC)
	require.NotNil(t, u.MC)
}

func TestSimpleMCRowHitCheaperThanMiss(t *testing.T) {
	mc := newSimpleMC(testUncoreConfig("simple"))
	missLat := mc.Access(0x0, 8)
	hitLat := mc.Access(0x8, 8) // same row, same bank
	assert.Equal(t, 80, missLat)
	assert.Equal(t, 20, hitLat)
}

func TestSimpleMCDifferentRowIsAMiss(t *testing.T) {
	mc := newSimpleMC(testUncoreConfig("simple"))
	mc.Access(0x0, 8)
	// advance by one full row within the same bank cycle (rowSizeBytes *
	// banks bytes ahead lands on the same bank, a different row)
	secondLat := mc.Access(uint64(mc.rowSizeBytes*mc.banks), 8)
	assert.Equal(t, 80, secondLat)
}

func TestUncoreAccessHitsLLCFirst(t *testing.T) {
	u, err := New(testUncoreConfig("ideal"))
	require.NoError(t, err)
	completeAt, hit, _, allocated, _ := u.Access(0, 0, 0x1000, 8, true, 1)
	require.True(t, allocated)
	assert.False(t, hit, "first access to a cold LLC is a miss")
	assert.Greater(t, completeAt, uint64(0))
}
