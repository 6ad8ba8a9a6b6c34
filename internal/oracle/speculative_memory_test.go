package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeculativeMemoryStoreThenLoad(t *testing.T) {
	m := NewSpeculativeMemory()
	m.Store(0x1000, 4, []byte{1, 2, 3, 4})
	data, ok := m.Load(0x1000, 4)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4}, data)
}

func TestSpeculativeMemoryLoadUnknownRange(t *testing.T) {
	m := NewSpeculativeMemory()
	_, ok := m.Load(0x2000, 4)
	assert.False(t, ok)
}

func TestSpeculativeMemoryForget(t *testing.T) {
	m := NewSpeculativeMemory()
	m.Store(0x1000, 4, []byte{1, 2, 3, 4})
	m.Forget(0x1000, 4)
	_, ok := m.Load(0x1000, 4)
	assert.False(t, ok)
}
