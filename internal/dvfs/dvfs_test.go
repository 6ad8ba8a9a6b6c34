package dvfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNonePolicyNeverChanges(t *testing.T) {
	p := New("none", 4)
	assert.Equal(t, 4, p.Sample(0.1, 4))
	assert.Equal(t, 4, p.Sample(3.0, 4))
}

func TestSamplePolicyReactsToIPC(t *testing.T) {
	p := New("sample", 4)
	assert.Equal(t, 4, p.Sample(0.2, 8), "low IPC should request the slow ratio")
	assert.Equal(t, 8, p.Sample(2.0, 4), "high IPC should request the fast ratio")
	assert.Equal(t, 6, p.Sample(1.0, 6), "mid-band IPC leaves the ratio unchanged")
}
