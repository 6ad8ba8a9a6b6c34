package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"oosim/internal/config"
)

func testSpec() config.CacheSpec {
	return config.CacheSpec{
		Name: "DL1", Sets: 4, Ways: 2, LineSizeBytes: 64,
		LatencyCycles: 4, MSHREntries: 2, MSHRTargets: 4,
		Replacement: "L", WritePolicy: "W", Inclusion: "T",
	}
}

func TestCacheMissThenHitAfterFill(t *testing.T) {
	c := New(testSpec(), "none", "none")
	hit, _, mshr, allocated, _ := c.Access(0, 0x1000, 8, true, 1, 0)
	require.False(t, hit)
	require.True(t, allocated)
	require.NotNil(t, mshr)

	c.CompleteFill(mshr)
	hit2, lat, _, _, _ := c.Access(0, 0x1000, 8, true, 1, 10)
	assert.True(t, hit2)
	assert.Equal(t, 4, lat)
}

func TestCacheMSHRMergesSameLineRequests(t *testing.T) {
	c := New(testSpec(), "none", "none")
	_, _, mshr1, ok1, _ := c.Access(0, 0x1000, 8, true, 1, 0)
	require.True(t, ok1)
	_, _, mshr2, ok2, _ := c.Access(0, 0x1004, 8, true, 1, 1)
	require.True(t, ok2)
	assert.Same(t, mshr1, mshr2, "a second request to the same line should merge into the existing MSHR")
}

func TestCacheBackpressureWhenMSHRsFull(t *testing.T) {
	c := New(testSpec(), "none", "none")
	// 2 MSHR entries available; fill them with misses to distinct lines.
	_, _, _, ok1, _ := c.Access(0, 0x1000, 8, true, 1, 0)
	_, _, _, ok2, _ := c.Access(0, 0x2000, 8, true, 1, 0)
	require.True(t, ok1)
	require.True(t, ok2)
	_, _, _, ok3, _ := c.Access(0, 0x3000, 8, true, 1, 0)
	assert.False(t, ok3, "a third distinct-line miss should signal backpressure, not allocate")
}

func TestCacheAccessChargesSharingPenaltyOnHit(t *testing.T) {
	c := New(testSpec(), "const", "none")
	_, _, mshr, _, shared0 := c.Access(0, 0x1000, 8, true, 1, 0)
	require.NotNil(t, mshr)
	assert.False(t, shared0, "first access to a line has no other sharer yet")
	c.CompleteFill(mshr)

	_, lat1, _, _, shared1 := c.Access(1, 0x1000, 8, true, 1, 10)
	assert.True(t, shared1, "core 0 already recorded as a sharer when core 1 accesses the same line")
	assert.Equal(t, 4+sharingPenaltyCycles, lat1)

	// A write by core 1 invalidates core 0 as a sharer; a later read from
	// core 1 then finds itself the only sharer left.
	_, _, _, _, shared2 := c.Access(1, 0x1000, 8, false, 1, 20)
	assert.True(t, shared2, "core 0 was still a sharer going into the write that invalidated it")

	_, lat3, _, _, shared3 := c.Access(1, 0x1000, 8, true, 1, 30)
	assert.False(t, shared3, "core 1 is now the only sharer of its own line")
	assert.Equal(t, 4, lat3)
}

func TestBusBusyUntilMonotonic(t *testing.T) {
	b := NewBus(8)
	end1 := b.Use(0, 64)
	assert.Equal(t, uint64(8), end1)
	end2 := b.Use(2, 8) // queues behind the first transfer
	assert.GreaterOrEqual(t, end2, end1)
	assert.True(t, b.BusyUntil() >= end1)
}

func TestConstCoherenceInvalidatesOtherSharersOnWrite(t *testing.T) {
	c := newConstCoherence()
	c.OnAccess(0, 0x1000, false)
	c.OnAccess(1, 0x1000, false)
	invalidated := c.OnAccess(0, 0x1000, true)
	assert.ElementsMatch(t, []int{1}, invalidated)
}

func TestTLBMissCostsPageWalkHitDoesNot(t *testing.T) {
	spec := config.TLBSpec{Name: "DTLB", Entries: 4, Ways: 2, LatencyCycles: 1, PageWalkLatency: 30}
	tlb := NewTLB(spec, 12)
	lat1, hit1 := tlb.Translate(0x1000)
	assert.False(t, hit1)
	assert.Equal(t, 31, lat1)
	lat2, hit2 := tlb.Translate(0x1000)
	assert.True(t, hit2)
	assert.Equal(t, 1, lat2)
}
