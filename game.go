// Package normform models finite N-player normal-form games and the
// correlated-equilibrium distributions computed over them.
package normform

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/gamebench/normform/internal/joint"
)

// Payoff range for randomly generated games.
const (
	randomPayoffMin = -10.0
	randomPayoffMax = 10.0
)

// Game is an immutable normal-form game: per-player action sets
// {0, ..., actionCounts[i]-1} and one payoff tensor per player indexed
// by the joint action profile. Construct with New, NewRandom,
// NewChicken, or NewCongestion; no method mutates the game.
type Game struct {
	space joint.Space
	// payoffs[i] is player i's tensor, flattened row-major
	// (last player's action varies fastest).
	payoffs [][]float64
}

// New constructs a game from explicit payoff tensors, one flat
// row-major slice per player of length ∏ actionCounts[i]. The slices
// are copied.
func New(actionCounts []int, payoffs [][]float64) (*Game, error) {
	space, err := validateSpace(len(payoffs), actionCounts)
	if err != nil {
		return nil, err
	}

	tensors := make([][]float64, len(payoffs))
	for i, tensor := range payoffs {
		if len(tensor) != space.Size() {
			return nil, errors.Wrapf(ErrInvalidGame,
				"player %d payoff tensor has %d entries, want %d", i, len(tensor), space.Size())
		}
		for j, v := range tensor {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.Wrapf(ErrInvalidGame,
					"player %d payoff at offset %d is not finite", i, j)
			}
		}
		tensors[i] = make([]float64, len(tensor))
		copy(tensors[i], tensor)
	}

	return &Game{space: space, payoffs: tensors}, nil
}

// NewRandom constructs a game with payoffs drawn i.i.d. from
// Uniform(-10, 10). The rng is explicit so that game generation is
// reproducible from a caller-owned seed.
func NewRandom(numPlayers int, actionCounts []int, rng *rand.Rand) (*Game, error) {
	space, err := validateSpace(numPlayers, actionCounts)
	if err != nil {
		return nil, err
	}

	payoffs := make([][]float64, numPlayers)
	for i := range payoffs {
		tensor := make([]float64, space.Size())
		for j := range tensor {
			tensor[j] = randomPayoffMin + (randomPayoffMax-randomPayoffMin)*rng.Float64()
		}
		payoffs[i] = tensor
	}

	return &Game{space: space, payoffs: payoffs}, nil
}

// NewChicken constructs the two-player, two-action game of chicken.
// Action 0 is Dare, action 1 is Swerve.
func NewChicken() *Game {
	game, err := New([]int{2, 2}, [][]float64{
		{0, 1, -1, -10},
		{0, -1, 1, -10},
	})
	if err != nil {
		panic(err) // Fixed tensors; cannot fail.
	}
	return game
}

// NewCongestion constructs a two-player, two-action congestion game
// with a shared cost tensor: mismatched choices cost the deviating
// side, matched choices cost nothing.
func NewCongestion() *Game {
	tensor := []float64{0, -1, -2, 0}
	game, err := New([]int{2, 2}, [][]float64{tensor, tensor})
	if err != nil {
		panic(err) // Fixed tensors; cannot fail.
	}
	return game
}

func validateSpace(numPlayers int, actionCounts []int) (joint.Space, error) {
	if numPlayers < 2 {
		return joint.Space{}, errors.Wrapf(ErrInvalidGame, "need at least 2 players, got %d", numPlayers)
	}
	if len(actionCounts) != numPlayers {
		return joint.Space{}, errors.Wrapf(ErrInvalidGame,
			"%d players but %d action counts", numPlayers, len(actionCounts))
	}
	for i, n := range actionCounts {
		if n < 1 {
			return joint.Space{}, errors.Wrapf(ErrInvalidGame,
				"player %d has %d actions, need at least 1", i, n)
		}
	}
	return joint.NewSpace(actionCounts), nil
}

func (g *Game) NumPlayers() int {
	return g.space.NumPlayers()
}

// ActionCounts returns a copy of the per-player action counts.
func (g *Game) ActionCounts() []int {
	return g.space.ActionCounts()
}

// NumActions returns the number of actions available to player.
func (g *Game) NumActions(player int) int {
	return g.space.ActionCounts()[player]
}

// NumProfiles returns the size of the joint action space.
func (g *Game) NumProfiles() int {
	return g.space.Size()
}

// Payoff returns player's payoff for the given joint action profile.
func (g *Game) Payoff(player int, profile []int) (float64, error) {
	if player < 0 || player >= g.NumPlayers() {
		return 0, errors.Wrapf(ErrInvalidGame, "player %d out of range", player)
	}
	if !g.space.Contains(profile) {
		return 0, errors.Wrapf(ErrInvalidGame, "profile %v out of range", profile)
	}
	return g.payoffs[player][g.space.Index(profile)], nil
}

// Payoffs returns every player's payoff for the given profile.
func (g *Game) Payoffs(profile []int) ([]float64, error) {
	if !g.space.Contains(profile) {
		return nil, errors.Wrapf(ErrInvalidGame, "profile %v out of range", profile)
	}
	idx := g.space.Index(profile)
	result := make([]float64, g.NumPlayers())
	for i := range result {
		result[i] = g.payoffs[i][idx]
	}
	return result, nil
}

// PayoffAt returns player's payoff at the flat profile offset idx.
// The offset must be in [0, NumProfiles).
func (g *Game) PayoffAt(player, idx int) float64 {
	return g.payoffs[player][idx]
}

// WelfareAt returns the sum of all players' payoffs at the flat
// profile offset idx.
func (g *Game) WelfareAt(idx int) float64 {
	total := 0.0
	for _, tensor := range g.payoffs {
		total += tensor[idx]
	}
	return total
}

// PayoffRange returns the smallest and largest entry in player's
// payoff tensor.
func (g *Game) PayoffRange(player int) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range g.payoffs[player] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// Space returns the game's joint action space.
func (g *Game) Space() joint.Space {
	return g.space
}

// String implements fmt.Stringer.
func (g *Game) String() string {
	return fmt.Sprintf("Game with %d players, action counts %v",
		g.NumPlayers(), g.space.ActionCounts())
}
