package campaign

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Armin-kho/channel-growth-bot/internal/store"
)

func TestSplit(t *testing.T) {
	pool := make([]int64, 100)
	for i := range pool {
		pool[i] = int64(i + 1)
	}

	a, b, err := Split(pool, 0.5)
	require.NoError(t, err)
	assert.Len(t, a, 50)
	assert.Len(t, b, 50)

	seen := map[int64]bool{}
	for _, id := range append(append([]int64{}, a...), b...) {
		assert.False(t, seen[id], "user %d assigned twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, 100)
}

func TestSplitRatio(t *testing.T) {
	pool := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	a, b, err := Split(pool, 0.3)
	require.NoError(t, err)
	assert.Len(t, a, 3)
	assert.Len(t, b, 7)
}

func TestSplitBadRatio(t *testing.T) {
	for _, ratio := range []float64{0, 1, -0.5, 1.5} {
		_, _, err := Split([]int64{1, 2}, ratio)
		assert.ErrorIs(t, err, ErrBadRatio, "ratio=%g", ratio)
	}
}

func TestSplitDoesNotMutateInput(t *testing.T) {
	pool := []int64{1, 2, 3, 4, 5, 6}
	_, _, err := Split(pool, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, pool)
}

func TestAnalyzeInsufficientSample(t *testing.T) {
	a := store.GroupMetrics{Sample: 10, Opened: 10, Clicked: 5}
	b := store.GroupMetrics{Sample: 100, Opened: 100, Clicked: 10}

	v := Analyze(a, b, 30)
	assert.False(t, v.Significant)
	assert.Empty(t, v.Winner)
	assert.Contains(t, v.Reason, "insufficient sample")
}

func TestAnalyzeBelowThreshold(t *testing.T) {
	a := store.GroupMetrics{Sample: 100, Opened: 100, Clicked: 11}
	b := store.GroupMetrics{Sample: 100, Opened: 100, Clicked: 10}

	v := Analyze(a, b, 30)
	assert.False(t, v.Significant)
	assert.InDelta(t, 1.0, v.DeltaPP, 0.001)
}

func TestAnalyzeWinner(t *testing.T) {
	a := store.GroupMetrics{Sample: 100, Opened: 100, Clicked: 20}
	b := store.GroupMetrics{Sample: 100, Opened: 100, Clicked: 10}

	v := Analyze(a, b, 30)
	assert.True(t, v.Significant)
	assert.Equal(t, GroupA, v.Winner)
	assert.InDelta(t, 10.0, v.DeltaPP, 0.001)
	assert.Equal(t, 95.0, v.Confidence)

	// Swap the groups; B must win with the mirrored delta.
	v = Analyze(b, a, 30)
	assert.True(t, v.Significant)
	assert.Equal(t, GroupB, v.Winner)
	assert.InDelta(t, -10.0, v.DeltaPP, 0.001)
}

func TestAnalyzeConfidenceScaling(t *testing.T) {
	a := store.GroupMetrics{Sample: 100, Opened: 100, Clicked: 13}
	b := store.GroupMetrics{Sample: 100, Opened: 100, Clicked: 10}

	v := Analyze(a, b, 30)
	require.True(t, v.Significant)
	assert.InDelta(t, 30.0, v.Confidence, 0.001)
}

func TestAnalyzeZeroOpens(t *testing.T) {
	a := store.GroupMetrics{Sample: 100}
	b := store.GroupMetrics{Sample: 100}

	v := Analyze(a, b, 30)
	assert.False(t, v.Significant)
	assert.Zero(t, v.DeltaPP)
}
