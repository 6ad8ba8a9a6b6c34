package bpred

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGshareLearnsAlwaysTaken(t *testing.T) {
	g := newGshare(256)
	pc := uint64(0x1000)
	for i := 0; i < 20; i++ {
		g.Update(pc, true)
	}
	assert.True(t, g.Predict(pc))
}

func TestBimodalPerPCIndependence(t *testing.T) {
	b := newBimodal(4096)
	pcTaken := uint64(0x2000)
	pcNotTaken := uint64(0x3000)
	for i := 0; i < 10; i++ {
		b.Update(pcTaken, true)
		b.Update(pcNotTaken, false)
	}
	assert.True(t, b.Predict(pcTaken))
	assert.False(t, b.Predict(pcNotTaken))
}

func TestMajorityFusion(t *testing.T) {
	f := majorityFusion{}
	assert.True(t, f.Combine([]bool{true, true, false}))
	assert.False(t, f.Combine([]bool{true, false, false}))
	assert.False(t, f.Combine([]bool{true, false})) // tie -> not-taken
}

func TestBoundedRASPushPop(t *testing.T) {
	r := newBoundedRAS(4)
	r.Push(0x100)
	r.Push(0x200)
	addr, ok := r.Pop()
	require.True(t, ok)
	assert.Equal(t, uint64(0x200), addr)
	addr, ok = r.Pop()
	require.True(t, ok)
	assert.Equal(t, uint64(0x100), addr)
	_, ok = r.Pop()
	assert.False(t, ok)
}

func TestBoundedRASOverflowOverwritesOldest(t *testing.T) {
	r := newBoundedRAS(2)
	r.Push(1)
	r.Push(2)
	r.Push(3) // overwrites the entry holding 1
	a, _ := r.Pop()
	b, _ := r.Pop()
	assert.Equal(t, []uint64{3, 2}, []uint64{a, b})
	_, ok := r.Pop()
	assert.False(t, ok)
}

func TestBTBInstallAndEvict(t *testing.T) {
	btb := NewBTB(1, 2) // single set, forces eviction to be exercised
	btb.Update(0x10, 0x1000)
	btb.Update(0x20, 0x2000)
	_, hit := btb.Lookup(0x10)
	assert.True(t, hit)
	// touching 0x10 makes 0x20 the LRU victim
	btb.Update(0x30, 0x3000)
	_, hit = btb.Lookup(0x20)
	assert.False(t, hit)
	target, hit := btb.Lookup(0x10)
	require.True(t, hit)
	assert.Equal(t, uint64(0x1000), target)
}

func TestMetaPredictNotTakenUsesFallthrough(t *testing.T) {
	m := NewMeta([]string{"bimodal"}, "majority", 16, 2, 16, 8, "normal")
	pred := m.Predict(0x100, 0x108, false, false, false)
	assert.Equal(t, uint64(0x108), pred.Target)
	assert.True(t, pred.TargetValid)
}

func TestMetaCallPushesReturnAndRetPops(t *testing.T) {
	m := NewMeta([]string{"taken"}, "majority", 16, 2, 16, 8, "normal")
	pred := m.Predict(0x100, 0x108, false, false, true)
	m.Resolve(pred, 0x100, 0x400, 0x108, true, false, false, true)

	retPred := m.Predict(0x500, 0x504, true, false, false)
	require.True(t, retPred.TargetValid)
	assert.Equal(t, uint64(0x108), retPred.Target)
}
