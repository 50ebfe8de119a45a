package swapregret

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamebench/normform"
)

func TestNewRejectsBadParameters(t *testing.T) {
	game := normform.NewChicken()

	cases := []struct {
		name      string
		epsilon   float64
		numRounds int
	}{
		{"negative epsilon", -1, 100},
		{"zero epsilon", 0, 100},
		{"zero rounds", 0.1, 0},
		{"negative rounds", 0.1, -5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(game, tc.epsilon, tc.numRounds)
			require.Error(t, err)
			assert.Equal(t, normform.ErrInvalidParameter, errors.Cause(err))
		})
	}

	_, err := New(nil, 0.1, 100)
	require.Error(t, err)
	assert.Equal(t, normform.ErrInvalidParameter, errors.Cause(err))
}

func TestSolveReturnsDistribution(t *testing.T) {
	game, err := normform.NewRandom(2, []int{3, 3}, rand.New(rand.NewSource(11)))
	require.NoError(t, err)
	solver, err := NewSeeded(game, 0.1, 2000, 123)
	require.NoError(t, err)

	d, stats, err := solver.SolveWithStats()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, d.Sum(), normform.DefaultTolerance)
	for idx := 0; idx < d.Len(); idx++ {
		assert.GreaterOrEqual(t, d.ProbAt(idx), 0.0)
	}
	assert.Equal(t, 2000, stats.Rounds)
	assert.Len(t, stats.PlayerRegrets, 2)
	assert.GreaterOrEqual(t, stats.MaxRegret(), 0.0)
}

func TestSeededSolveIsReproducible(t *testing.T) {
	game, err := normform.NewRandom(3, []int{2, 2, 2}, rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	s1, err := NewSeeded(game, 0.1, 500, 42)
	require.NoError(t, err)
	s2, err := NewSeeded(game, 0.1, 500, 42)
	require.NoError(t, err)

	d1, stats1, err := s1.SolveWithStats()
	require.NoError(t, err)
	d2, stats2, err := s2.SolveWithStats()
	require.NoError(t, err)

	for idx := 0; idx < d1.Len(); idx++ {
		assert.Equal(t, d1.ProbAt(idx), d2.ProbAt(idx))
	}
	assert.Equal(t, stats1.PlayerRegrets, stats2.PlayerRegrets)

	// The same solver replays the same dynamics on repeated calls.
	d3, err := s1.Solve()
	require.NoError(t, err)
	for idx := 0; idx < d1.Len(); idx++ {
		assert.Equal(t, d1.ProbAt(idx), d3.ProbAt(idx))
	}
}

func TestRegretDecaysWithMoreRounds(t *testing.T) {
	game, err := normform.NewRandom(2, []int{3, 3}, rand.New(rand.NewSource(17)))
	require.NoError(t, err)

	short, err := NewSeeded(game, 0.05, 200, 7)
	require.NoError(t, err)
	long, err := NewSeeded(game, 0.05, 2000, 7)
	require.NoError(t, err)

	_, shortStats, err := short.SolveWithStats()
	require.NoError(t, err)
	_, longStats, err := long.SolveWithStats()
	require.NoError(t, err)

	assert.LessOrEqual(t, longStats.MaxRegret(), shortStats.MaxRegret()+1e-9)
}

func TestConvergesOnDominantStrategyGame(t *testing.T) {
	// (0,0) strictly dominates everything for both players; the
	// dynamics should concentrate play there.
	game, err := normform.New([]int{2, 2}, [][]float64{
		{10, 2, 1, 0},
		{10, 1, 2, 0},
	})
	require.NoError(t, err)

	solver, err := NewSeeded(game, 0.2, 5000, 99)
	require.NoError(t, err)
	d, stats, err := solver.SolveWithStats()
	require.NoError(t, err)

	assert.Greater(t, d.Prob([]int{0, 0}), 0.8)
	assert.Less(t, stats.MaxRegret(), 1.0)
}

func TestApproximateEquilibriumOnChicken(t *testing.T) {
	game := normform.NewChicken()
	solver, err := NewSeeded(game, 0.1, 20000, 1)
	require.NoError(t, err)

	d, stats, err := solver.SolveWithStats()
	require.NoError(t, err)
	t.Logf("empirical distribution:\n%v", d)
	t.Logf("max average swap regret: %v", stats.MaxRegret())

	// Approximate CE: no large incentive violations remain.
	for _, v := range d.Violations(game, 0.5) {
		t.Errorf("unexpected large violation: %v", v)
	}
}

func TestSolverName(t *testing.T) {
	solver, err := New(normform.NewChicken(), 0.1, 10)
	require.NoError(t, err)
	assert.Equal(t, "swap_regret", solver.Name())
}
