package lpsolve

import (
	"gonum.org/v1/gonum/mat"

	"github.com/gamebench/normform"
)

// constraintRow identifies one incentive-compatibility inequality:
// player must not gain by deviating from recommended action to alt.
type constraintRow struct {
	player int
	action int
	alt    int
}

// program is the correlated-equilibrium LP in gonum's standard form
// (minimize c'z subject to Az = b, z >= 0). The variables are one
// probability per joint action profile followed by one slack per
// incentive row; the first equality pins the probabilities to the
// simplex and each remaining row encodes Gx - s = 0 for an incentive
// inequality Gx >= 0.
type program struct {
	c    []float64
	a    *mat.Dense
	b    []float64
	rows []constraintRow
	// numProfiles is the number of probability variables; the
	// remaining columns are slacks.
	numProfiles int
}

// buildProgram mechanically translates the game's payoff tensors into
// Aumann's correlated-equilibrium polytope: for every player and every
// ordered pair of distinct actions (a, a'), the expected gain of
// following a over deviating to a', aggregated over all profiles that
// recommend a, must be non-negative.
func buildProgram(game *normform.Game, maximizeWelfare bool) *program {
	space := game.Space()
	n := space.Size()
	counts := game.ActionCounts()

	var rows []constraintRow
	for player, k := range counts {
		for action := 0; action < k; action++ {
			for alt := 0; alt < k; alt++ {
				if alt != action {
					rows = append(rows, constraintRow{player: player, action: action, alt: alt})
				}
			}
		}
	}

	m := len(rows)
	a := mat.NewDense(m+1, n+m, nil)
	b := make([]float64, m+1)

	// Simplex constraint: probabilities sum to 1.
	for j := 0; j < n; j++ {
		a.Set(0, j, 1)
	}
	b[0] = 1

	profile := make([]int, space.NumPlayers())
	for r, row := range rows {
		for idx := 0; idx < n; idx++ {
			if space.Profile(idx, profile)[row.player] != row.action {
				continue
			}
			swapped := space.SwapIndex(idx, row.player, row.alt)
			gain := game.PayoffAt(row.player, idx) - game.PayoffAt(row.player, swapped)
			a.Set(r+1, idx, gain)
		}
		// Slack variable turns Gx >= 0 into Gx - s = 0.
		a.Set(r+1, n+r, -1)
	}

	c := make([]float64, n+m)
	if maximizeWelfare {
		// Simplex minimizes, so negate the social welfare.
		for idx := 0; idx < n; idx++ {
			c[idx] = -game.WelfareAt(idx)
		}
	}

	return &program{c: c, a: a, b: b, rows: rows, numProfiles: n}
}
