package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"oosim/internal/feeder"
)

func TestConsumeReturnsInProgramOrder(t *testing.T) {
	o := New(feeder.NewStub(5), 8)
	var seqs []uint64
	for i := 0; i < 5; i++ {
		m, ok := o.Consume()
		require.True(t, ok)
		seqs = append(seqs, uint64(m.Seq))
	}
	assert.Equal(t, []uint64{0, 1, 2, 3, 4}, seqs)
	_, ok := o.Consume()
	assert.False(t, ok)
	assert.True(t, o.AtEOF())
}

func TestCommitDropsOldestShadowEntry(t *testing.T) {
	o := New(feeder.NewStub(3), 8)
	m0, _ := o.Consume()
	_, _ = o.Consume()
	require.Equal(t, 2, len(o.shadow.entries))
	o.Commit(m0.Seq)
	assert.Equal(t, 1, len(o.shadow.entries))
}

func TestRecoverTruncatesShadowAndBumpsAction(t *testing.T) {
	o := New(feeder.NewStub(10), 16)
	m0, _ := o.Consume()
	for i := 0; i < 4; i++ {
		_, _ = o.Consume()
	}
	beforeAction := o.ActionID()
	o.Recover(m0.Seq)
	assert.Equal(t, beforeAction+1, o.ActionID())
	assert.Equal(t, 1, len(o.shadow.entries))
}

func TestRecoverReplaysMopsAfterKeepSeq(t *testing.T) {
	o := New(feeder.NewStub(10), 16)
	var consumed []uint64
	for i := 0; i < 5; i++ {
		m, _ := o.Consume()
		consumed = append(consumed, uint64(m.Seq))
	}
	require.Equal(t, []uint64{0, 1, 2, 3, 4}, consumed)

	// Recover to keep seq 2 (as if seq 2 were a mispredicting branch whose
	// own outcome was already correct); seqs 3 and 4 were handed to the
	// timing core but then squashed out of its pipeline, so the oracle
	// must hand them out again rather than treat them as already seen.
	o.Recover(2)

	var replayed []uint64
	for i := 0; i < 2; i++ {
		m, ok := o.Consume()
		require.True(t, ok)
		replayed = append(replayed, uint64(m.Seq))
	}
	assert.Equal(t, []uint64{3, 4}, replayed)
}

func TestCompleteFlushClearsShadow(t *testing.T) {
	o := New(feeder.NewStub(10), 16)
	for i := 0; i < 5; i++ {
		_, _ = o.Consume()
	}
	o.CompleteFlush()
	assert.True(t, o.shadow.empty())
}
