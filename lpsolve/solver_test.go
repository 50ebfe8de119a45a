package lpsolve

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamebench/normform"
)

func mustGame(t *testing.T, actionCounts []int, payoffs [][]float64) *normform.Game {
	t.Helper()
	game, err := normform.New(actionCounts, payoffs)
	require.NoError(t, err)
	return game
}

func solve(t *testing.T, game *normform.Game, maximizeWelfare bool) (*normform.Distribution, Diagnostics) {
	t.Helper()
	solver, err := New(game, maximizeWelfare)
	require.NoError(t, err)
	d, diag, err := solver.SolveWithDiagnostics()
	require.NoError(t, err)
	return d, diag
}

func assertValidEquilibrium(t *testing.T, game *normform.Game, d *normform.Distribution) {
	t.Helper()
	assert.InDelta(t, 1.0, d.Sum(), normform.DefaultTolerance)
	for idx := 0; idx < d.Len(); idx++ {
		assert.GreaterOrEqual(t, d.ProbAt(idx), 0.0)
	}
	assert.Empty(t, d.Violations(game, normform.DefaultTolerance))
}

func TestSolveDominantStrategyGame(t *testing.T) {
	// (0,0) strictly dominates everything for both players, so all
	// correlated equilibria put probability 1 on it.
	game := mustGame(t, []int{2, 2}, [][]float64{
		{10, 2, 1, 0},
		{10, 1, 2, 0},
	})

	for _, maximizeWelfare := range []bool{false, true} {
		d, diag := solve(t, game, maximizeWelfare)
		assertValidEquilibrium(t, game, d)
		assert.InDelta(t, 1.0, d.Prob([]int{0, 0}), 1e-6)
		assert.InDelta(t, 20.0, diag.ExpectedWelfare, 1e-6)
	}
}

func TestSolveChicken(t *testing.T) {
	game := normform.NewChicken()
	d, diag := solve(t, game, false)
	assertValidEquilibrium(t, game, d)
	assert.GreaterOrEqual(t, diag.MinSlack(), -normform.DefaultTolerance)
}

func TestSolveCongestion(t *testing.T) {
	game := normform.NewCongestion()
	d, _ := solve(t, game, true)
	assertValidEquilibrium(t, game, d)
	// Welfare-optimal play avoids all congestion cost.
	assert.InDelta(t, 0.0, d.ExpectedWelfare(game), 1e-6)
}

func TestWelfareModeDominatesFeasibilityMode(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for trial := 0; trial < 5; trial++ {
		game, err := normform.NewRandom(2, []int{3, 3}, rng)
		require.NoError(t, err)

		dFeasible, diagFeasible := solve(t, game, false)
		dWelfare, diagWelfare := solve(t, game, true)
		assertValidEquilibrium(t, game, dFeasible)
		assertValidEquilibrium(t, game, dWelfare)

		assert.GreaterOrEqual(t, diagWelfare.ExpectedWelfare+1e-6, diagFeasible.ExpectedWelfare)
	}
}

func TestSolveRandomGames(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cases := [][]int{{2, 2}, {4, 3}, {2, 2, 2}, {3, 2, 2}}
	for _, counts := range cases {
		game, err := normform.NewRandom(len(counts), counts, rng)
		require.NoError(t, err)

		d, diag := solve(t, game, false)
		assertValidEquilibrium(t, game, d)
		assert.GreaterOrEqual(t, diag.MinSlack(), -normform.DefaultTolerance)
		assert.Len(t, diag.Slacks, numConstraints(counts))
	}
}

func numConstraints(counts []int) int {
	total := 0
	for _, k := range counts {
		total += k * (k - 1)
	}
	return total
}

func TestSolveRepeatable(t *testing.T) {
	game, err := normform.NewRandom(2, []int{3, 3}, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	solver, err := New(game, true)
	require.NoError(t, err)

	d1, err := solver.Solve()
	require.NoError(t, err)
	d2, err := solver.Solve()
	require.NoError(t, err)
	for idx := 0; idx < d1.Len(); idx++ {
		assert.InDelta(t, d1.ProbAt(idx), d2.ProbAt(idx), 1e-9)
	}
}

func TestNewRejectsBadParameters(t *testing.T) {
	_, err := New(nil, false)
	require.Error(t, err)
	assert.Equal(t, normform.ErrInvalidParameter, errors.Cause(err))

	_, err = New(normform.NewChicken(), false, WithTolerance(-1))
	require.Error(t, err)
	assert.Equal(t, normform.ErrInvalidParameter, errors.Cause(err))
}

func TestSolverName(t *testing.T) {
	s, err := New(normform.NewChicken(), false)
	require.NoError(t, err)
	assert.Equal(t, "lp", s.Name())

	s, err = New(normform.NewChicken(), true)
	require.NoError(t, err)
	assert.Equal(t, "lp_welfare", s.Name())
}
