package normform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dominantGame is a 2x2 game in which profile (0,0) strictly dominates
// every other outcome for both players, so the unique correlated
// equilibrium is the point mass on (0,0).
func dominantGame(t *testing.T) *Game {
	t.Helper()
	game, err := New([]int{2, 2}, [][]float64{
		{10, 2, 1, 0},
		{10, 1, 2, 0},
	})
	require.NoError(t, err)
	return game
}

func TestDistributionQueries(t *testing.T) {
	game := NewChicken()
	d, err := NewDistribution(game, []float64{0.5, 0.25, 0.25, 0})
	require.NoError(t, err)

	assert.Equal(t, 0.5, d.Prob([]int{0, 0}))
	assert.Equal(t, 0.25, d.Prob([]int{0, 1}))
	assert.Equal(t, 0.0, d.Prob([]int{1, 1}))
	assert.Equal(t, 0.0, d.Prob([]int{7, 7}))
	assert.InDelta(t, 1.0, d.Sum(), 1e-12)
	assert.Equal(t, []int{0, 1, 2}, d.Support(1e-9))
}

func TestNewDistributionLengthMismatch(t *testing.T) {
	game := NewChicken()
	_, err := NewDistribution(game, []float64{1})
	require.Error(t, err)
}

func TestExpectedWelfare(t *testing.T) {
	game := dominantGame(t)

	point, err := NewDistribution(game, []float64{1, 0, 0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 20.0, point.ExpectedWelfare(game), 1e-12)

	uniform, err := NewDistribution(game, []float64{0.25, 0.25, 0.25, 0.25})
	require.NoError(t, err)
	assert.InDelta(t, (20.0+3+3+0)/4, uniform.ExpectedWelfare(game), 1e-12)
}

func TestViolationsOnEquilibrium(t *testing.T) {
	game := dominantGame(t)
	point, err := NewDistribution(game, []float64{1, 0, 0, 0})
	require.NoError(t, err)

	assert.Empty(t, point.Violations(game, DefaultTolerance))
}

func TestViolationsDetectsDeviation(t *testing.T) {
	game := dominantGame(t)
	// All mass on (1,1), which both players want to leave.
	bad, err := NewDistribution(game, []float64{0, 0, 0, 1})
	require.NoError(t, err)

	violations := bad.Violations(game, DefaultTolerance)
	require.Len(t, violations, 2)
	// Sorted by decreasing magnitude; both gains are 1 or 2 here.
	assert.GreaterOrEqual(t, violations[0].Magnitude, violations[1].Magnitude)
	for _, v := range violations {
		assert.Equal(t, 1, v.Action)
		assert.Equal(t, 0, v.Deviation)
	}
}

func TestConstraintSlackSign(t *testing.T) {
	game := dominantGame(t)
	point, err := NewDistribution(game, []float64{1, 0, 0, 0})
	require.NoError(t, err)

	// Recommended action 0 beats deviating to 1 by 10-2=8 for player 0.
	assert.InDelta(t, 8.0, point.ConstraintSlack(game, 0, 0, 1), 1e-12)
	// Constraints conditioned on never-recommended actions have zero slack.
	assert.InDelta(t, 0.0, point.ConstraintSlack(game, 0, 1, 0), 1e-12)
}
