package stats

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncAndGet(t *testing.T) {
	d := NewDB()
	d.Inc("cycles", 10)
	d.Inc("cycles", 5)
	assert.Equal(t, uint64(15), d.Get("cycles"))
}

func TestResetClears(t *testing.T) {
	d := NewDB()
	d.Inc("instructions_committed", 100)
	d.Reset()
	assert.Equal(t, uint64(0), d.Get("instructions_committed"))
}

func TestFormulaEvaluatesAgainstCounters(t *testing.T) {
	d := NewDB()
	d.Inc("instructions_committed", 200)
	d.Inc("cycles", 100)
	require.NoError(t, d.DefineFormula("IPC", "instructions_committed / cycles"))
	v, err := d.Evaluate("IPC")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, v, 0.0001)
}

func TestDistributionCounters(t *testing.T) {
	d := NewDB()
	d.IncDist("stall_reason", "rob_full")
	d.IncDist("stall_reason", "rob_full")
	d.IncDist("stall_reason", "mshr_full")
	buckets := d.DistBuckets("stall_reason")
	assert.Equal(t, uint64(2), buckets["rob_full"])
	assert.Equal(t, uint64(1), buckets["mshr_full"])
}

func TestRenderTextIncludesCountersAndFormulas(t *testing.T) {
	d := NewDB()
	d.Inc("cycles", 50)
	require.NoError(t, d.DefineFormula("half", "cycles / 2"))
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, "core0", d))
	out := buf.String()
	assert.Contains(t, out, "core0")
	assert.Contains(t, out, "cycles")
	assert.Contains(t, out, "half")
}

func TestRenderJSONRoundTripsShape(t *testing.T) {
	d := NewDB()
	d.Inc("cycles", 7)
	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, "core0", d))
	assert.Contains(t, buf.String(), `"cycles": 7`)
}
