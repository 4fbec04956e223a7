package arrival

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluatorBasic(t *testing.T) {
	e, err := NewEvaluator("constant", "1")
	require.NoError(t, err)
	v, err := e.Evaluate(5)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestEvaluatorTrig(t *testing.T) {
	e, err := NewEvaluator("cosine", "(-0.25)*cos((pi/12)*t)+0.75")
	require.NoError(t, err)
	v, err := e.Evaluate(0)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, v, 1e-9)
}

func TestEvaluatorParseError(t *testing.T) {
	_, err := NewEvaluator("bad", "t +")
	assert.Error(t, err)
}

func TestEvaluatorNonPositive(t *testing.T) {
	e, err := NewEvaluator("zero", "0")
	require.NoError(t, err)
	_, err = e.Evaluate(1)
	assert.Error(t, err)
}

func TestGenerateArrivalTimesWithinBounds(t *testing.T) {
	e, err := NewEvaluator("constant", "1")
	require.NoError(t, err)
	p := NewProcess(e, 1, rand.New(rand.NewSource(1)))

	times, err := p.GenerateArrivalTimes(0, time.Hour)
	require.NoError(t, err)
	for _, tm := range times {
		assert.GreaterOrEqual(t, tm, time.Duration(0))
		assert.Less(t, tm, time.Hour)
	}
	// Strictly increasing.
	for i := 1; i < len(times); i++ {
		assert.Greater(t, times[i], times[i-1])
	}
}

func TestGenerateArrivalTimesEmptyCycle(t *testing.T) {
	// S1-adjacent: near-zero arrival rate over a short horizon yields few
	// or no arrivals.
	e, err := NewEvaluator("tiny", "0.0001")
	require.NoError(t, err)
	p := NewProcess(e, 1, rand.New(rand.NewSource(1)))
	times, err := p.GenerateArrivalTimes(0, time.Minute)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(times), 1)
}
