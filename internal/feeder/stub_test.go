package feeder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubProducesRequestedCount(t *testing.T) {
	s := NewStub(10)
	count := 0
	for {
		_, ok := s.GetNextMop()
		if !ok {
			break
		}
		count++
	}
	assert.Equal(t, 10, count)
}

func TestStubEmitsBackwardBranches(t *testing.T) {
	s := NewStub(64)
	sawBranch := false
	for {
		m, ok := s.GetNextMop()
		if !ok {
			break
		}
		if m.IsBranch {
			sawBranch = true
			assert.True(t, m.Taken)
			assert.Less(t, m.TargetPC, m.PC)
		}
	}
	require.True(t, sawBranch, "stub should emit at least one backward branch within 64 mops")
}
