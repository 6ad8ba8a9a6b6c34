package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCacheSpec(t *testing.T) {
	spec, err := ParseCacheSpec("DL1:64:8:64:8:64:2:L:W:T:8:C")
	require.NoError(t, err)
	assert.Equal(t, "DL1", spec.Name)
	assert.Equal(t, 64, spec.Sets)
	assert.Equal(t, 8, spec.Ways)
	assert.Equal(t, 64, spec.LineSizeBytes)
	assert.Equal(t, 8, spec.LatencyCycles)
	assert.Equal(t, 64, spec.MSHREntries)
	assert.Equal(t, 2, spec.Banks)
	assert.Equal(t, "L", spec.Replacement)
	assert.Equal(t, "W", spec.WritePolicy)
	assert.Equal(t, "T", spec.Inclusion)
}

func TestParseCacheSpecBadArity(t *testing.T) {
	_, err := ParseCacheSpec("DL1:64:8")
	assert.Error(t, err)
}

func TestParseCacheSpecBadInt(t *testing.T) {
	_, err := ParseCacheSpec("DL1:sixtyfour:8:64:8:64:2:L:W:T:8")
	assert.Error(t, err)
}

func TestParseTLBSpec(t *testing.T) {
	spec, err := ParseTLBSpec("DTLB:128:4:1:30")
	require.NoError(t, err)
	assert.Equal(t, "DTLB", spec.Name)
	assert.Equal(t, 128, spec.Entries)
	assert.Equal(t, 4, spec.Ways)
	assert.Equal(t, 1, spec.LatencyCycles)
	assert.Equal(t, 30, spec.PageWalkLatency)
}
