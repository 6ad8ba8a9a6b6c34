package memdep

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoneAlwaysStalls(t *testing.T) {
	p := New("none")
	assert.False(t, p.PredictNoConflict(1, 2))
	p.Train(1, 2, false)
	assert.False(t, p.PredictNoConflict(1, 2))
}

func TestBlindAlwaysBypasses(t *testing.T) {
	p := New("blind")
	assert.True(t, p.PredictNoConflict(1, 2))
}

func TestOracleFollowsTrainedHistory(t *testing.T) {
	p := New("oracle")
	assert.False(t, p.PredictNoConflict(1, 2), "unseen pair defaults to stall")
	p.Train(1, 2, false)
	assert.True(t, p.PredictNoConflict(1, 2))
	p.Train(1, 2, true)
	assert.False(t, p.PredictNoConflict(1, 2))
}

func TestLastWriterTableLearnsConflict(t *testing.T) {
	p := New("lwt")
	assert.False(t, p.PredictNoConflict(10, 20), "unseen pair defaults to stall")
	for i := 0; i < 5; i++ {
		p.Train(10, 20, false)
	}
	assert.True(t, p.PredictNoConflict(10, 20))
	p.Train(10, 20, true)
	p.Train(10, 20, true)
	p.Train(10, 20, true)
	assert.False(t, p.PredictNoConflict(10, 20))
}
