package normform

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/gamebench/normform/internal/joint"
)

// DefaultTolerance is the numerical tolerance applied to probability
// normalization and incentive-constraint slack checks.
const DefaultTolerance = 1e-6

// Distribution is a probability distribution over joint action
// profiles: non-negative entries summing to 1 within numerical
// tolerance. Each solver run produces a fresh Distribution owned by
// the caller.
type Distribution struct {
	space joint.Space
	probs []float64
}

// NewDistribution wraps probs, one entry per joint profile in row-major
// order, as a distribution over the given game's action space. The
// slice is copied.
func NewDistribution(game *Game, probs []float64) (*Distribution, error) {
	if len(probs) != game.NumProfiles() {
		return nil, errors.Wrapf(ErrInvalidParameter,
			"%d probabilities for %d profiles", len(probs), game.NumProfiles())
	}
	p := make([]float64, len(probs))
	copy(p, probs)
	return &Distribution{space: game.Space(), probs: p}, nil
}

// Prob returns the probability of the given joint action profile,
// or 0 for out-of-range profiles.
func (d *Distribution) Prob(profile []int) float64 {
	if !d.space.Contains(profile) {
		return 0
	}
	return d.probs[d.space.Index(profile)]
}

// ProbAt returns the probability at flat profile offset idx.
func (d *Distribution) ProbAt(idx int) float64 {
	return d.probs[idx]
}

// Len returns the number of joint profiles.
func (d *Distribution) Len() int {
	return len(d.probs)
}

// Sum returns the total probability mass.
func (d *Distribution) Sum() float64 {
	total := 0.0
	for _, p := range d.probs {
		total += p
	}
	return total
}

// ExpectedWelfare returns the expected sum of all players' payoffs
// under the distribution.
func (d *Distribution) ExpectedWelfare(game *Game) float64 {
	welfare := 0.0
	for idx, p := range d.probs {
		if p != 0 {
			welfare += p * game.WelfareAt(idx)
		}
	}
	return welfare
}

// Violation records an incentive-compatibility constraint violated by
// a distribution: following recommendation Action is worse for Player
// than always deviating to Deviation, by Magnitude in expected payoff.
type Violation struct {
	Player    int
	Action    int
	Deviation int
	Magnitude float64
}

func (v Violation) String() string {
	return fmt.Sprintf("player %d: deviating %d -> %d gains %.6g",
		v.Player, v.Action, v.Deviation, v.Magnitude)
}

// Violations returns every incentive constraint violated by more than
// tol, sorted by decreasing magnitude. A correlated equilibrium has
// none beyond numerical slop.
func (d *Distribution) Violations(game *Game, tol float64) []Violation {
	var violations []Violation
	counts := game.ActionCounts()
	for player := 0; player < game.NumPlayers(); player++ {
		for action := 0; action < counts[player]; action++ {
			for alt := 0; alt < counts[player]; alt++ {
				if alt == action {
					continue
				}
				slack := d.constraintSlack(game, player, action, alt)
				if slack < -tol {
					violations = append(violations, Violation{
						Player:    player,
						Action:    action,
						Deviation: alt,
						Magnitude: -slack,
					})
				}
			}
		}
	}

	sort.Slice(violations, func(i, j int) bool {
		return violations[i].Magnitude > violations[j].Magnitude
	})
	return violations
}

// ConstraintSlack returns the signed slack of one incentive constraint:
// the expected gain from following the recommendation action over
// deviating to alt whenever action is recommended to player. Negative
// slack means the constraint is violated.
func (d *Distribution) ConstraintSlack(game *Game, player, action, alt int) float64 {
	return d.constraintSlack(game, player, action, alt)
}

func (d *Distribution) constraintSlack(game *Game, player, action, alt int) float64 {
	slack := 0.0
	space := d.space
	profile := make([]int, space.NumPlayers())
	for idx, p := range d.probs {
		if p == 0 {
			continue
		}
		if space.Profile(idx, profile)[player] != action {
			continue
		}
		swapped := space.SwapIndex(idx, player, alt)
		slack += p * (game.PayoffAt(player, idx) - game.PayoffAt(player, swapped))
	}
	return slack
}

// Support returns the flat offsets of all profiles with probability
// greater than minProb, in row-major order.
func (d *Distribution) Support(minProb float64) []int {
	var support []int
	for idx, p := range d.probs {
		if p > minProb {
			support = append(support, idx)
		}
	}
	return support
}

// String implements fmt.Stringer. Profiles with negligible mass are
// omitted.
func (d *Distribution) String() string {
	var sb strings.Builder
	profile := make([]int, d.space.NumPlayers())
	for idx, p := range d.probs {
		if math.Abs(p) < 1e-9 {
			continue
		}
		fmt.Fprintf(&sb, "%v: %.4f\n", d.space.Profile(idx, profile), p)
	}
	return sb.String()
}
