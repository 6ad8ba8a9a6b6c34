package mop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassString(t *testing.T) {
	cases := []struct {
		c    Class
		want string
	}{
		{ClassALU, "alu"},
		{ClassLoad, "load"},
		{ClassStore, "store"},
		{ClassStoreAddress, "sta"},
		{ClassStoreData, "std"},
		{ClassBranch, "branch"},
		{ClassFP, "fp"},
		{ClassNop, "nop"},
		{Class(99), "unknown"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.c.String())
	}
}

func TestClassIsMemory(t *testing.T) {
	assert.True(t, ClassLoad.IsMemory())
	assert.True(t, ClassStore.IsMemory())
	assert.True(t, ClassStoreAddress.IsMemory())
	assert.True(t, ClassStoreData.IsMemory())
	assert.False(t, ClassALU.IsMemory())
	assert.False(t, ClassBranch.IsMemory())
}

func TestMopFusedAndSlots(t *testing.T) {
	m := &Mop{Uops: []Uop{{Class: ClassLoad}, {Class: ClassALU}}}
	require.True(t, m.IsFused())
	assert.Equal(t, 1, m.NumROBSlots())

	single := &Mop{Uops: []Uop{{Class: ClassALU}}}
	assert.False(t, single.IsFused())
	assert.Equal(t, 1, single.NumROBSlots())
}

func TestMopStale(t *testing.T) {
	m := &Mop{Action: 5}
	assert.False(t, m.Stale(5))
	assert.True(t, m.Stale(6))
}
