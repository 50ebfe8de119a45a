// Package swapregret computes approximate correlated equilibria by
// repeated play in which every player runs a swap-regret-minimizing
// update rule; the time-averaged empirical distribution of joint play
// converges to the correlated-equilibrium set.
//
// The update rule is the Blum-Mansour construction: each player runs
// one multiplicative-weights copy per own action, and plays the
// stationary distribution of the row-stochastic matrix assembled from
// the copies. With learning rate epsilon the average swap regret
// decays as O(k*sqrt(log(k)/T)) over T rounds for a player with k
// actions.
package swapregret

import (
	"math"
	"math/rand"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/gamebench/normform"
)

const (
	stationaryTolerance   = 1e-12
	maxStationaryIters    = 200
	weightRenormThreshold = 1e100
)

// Solver runs swap-regret dynamics on a game. The result is a function
// of (game, epsilon, numRounds, seed); construct with NewSeeded for
// reproducible runs.
type Solver struct {
	game      *normform.Game
	epsilon   float64
	numRounds int
	seed      int64
}

// Verify that we implement the interface.
var _ normform.Solver = &Solver{}

// New constructs a solver seeded from the global math/rand source, so
// distinct constructions vary run to run. Use NewSeeded to pin the
// outcome.
func New(game *normform.Game, epsilon float64, numRounds int) (*Solver, error) {
	return NewSeeded(game, epsilon, numRounds, rand.Int63())
}

// NewSeeded constructs a solver whose Solve is a deterministic function
// of the given seed.
func NewSeeded(game *normform.Game, epsilon float64, numRounds int, seed int64) (*Solver, error) {
	if game == nil {
		return nil, errors.Wrap(normform.ErrInvalidParameter, "nil game")
	}
	if epsilon <= 0 {
		return nil, errors.Wrapf(normform.ErrInvalidParameter, "epsilon %v must be > 0", epsilon)
	}
	if numRounds <= 0 {
		return nil, errors.Wrapf(normform.ErrInvalidParameter, "num rounds %d must be > 0", numRounds)
	}

	return &Solver{
		game:      game,
		epsilon:   epsilon,
		numRounds: numRounds,
		seed:      seed,
	}, nil
}

// Name implements normform.Solver.
func (s *Solver) Name() string {
	return "swap_regret"
}

// Stats reports the convergence of one run.
type Stats struct {
	Rounds int
	// PlayerRegrets[i] is player i's average swap regret per round:
	// the best hindsight gain of any fixed remapping of played actions,
	// divided by the number of rounds.
	PlayerRegrets []float64
}

// MaxRegret returns the largest per-player average swap regret.
func (st Stats) MaxRegret() float64 {
	max := 0.0
	for _, r := range st.PlayerRegrets {
		if r > max {
			max = r
		}
	}
	return max
}

// Solve runs the configured number of rounds and returns the empirical
// distribution of joint play. It always terminates; an unconverged run
// still returns its distribution.
func (s *Solver) Solve() (*normform.Distribution, error) {
	d, _, err := s.SolveWithStats()
	return d, err
}

// SolveWithStats is Solve plus the final per-player average swap
// regrets. Repeated calls replay the same seeded dynamics.
func (s *Solver) SolveWithStats() (*normform.Distribution, Stats, error) {
	rng := rand.New(rand.NewSource(s.seed))
	players := make([]*playerState, s.game.NumPlayers())
	for i := range players {
		players[i] = newPlayerState(s.game, i)
	}

	counts := make([]float64, s.game.NumProfiles())
	profile := make([]int, s.game.NumPlayers())
	space := s.game.Space()

	logEvery := s.numRounds / 10
	for t := 1; t <= s.numRounds; t++ {
		for i, ps := range players {
			ps.refreshStrategy()
			profile[i] = ps.sample(rng)
		}

		idx := space.Index(profile)
		counts[idx]++

		for i, ps := range players {
			ps.observe(s.game, i, idx, s.epsilon)
		}

		if logEvery > 0 && t%logEvery == 0 {
			glog.V(1).Infof("After %d rounds, max average swap regret: %v",
				t, statsFor(players, t).MaxRegret())
		}
	}

	for idx := range counts {
		counts[idx] /= float64(s.numRounds)
	}
	d, err := normform.NewDistribution(s.game, counts)
	if err != nil {
		return nil, Stats{}, err
	}

	return d, statsFor(players, s.numRounds), nil
}

func statsFor(players []*playerState, rounds int) Stats {
	regrets := make([]float64, len(players))
	for i, ps := range players {
		regrets[i] = ps.averageSwapRegret(rounds)
	}
	return Stats{Rounds: rounds, PlayerRegrets: regrets}
}

// playerState holds one player's Blum-Mansour machinery: a
// multiplicative-weights copy per own action (weights row a is the copy
// consulted when the meta-strategy would play a) and the stationary
// meta-strategy over actions.
type playerState struct {
	k        int
	weights  [][]float64
	strategy []float64
	scratch  []float64
	// cumSwap[a][j] is the cumulative expected counterfactual payoff
	// of playing j on the rounds attributed to recommendation a.
	cumSwap [][]float64
	// payoffs are rescaled to [0, 1] for the exponential update.
	payoffOffset float64
	payoffScale  float64
	// counterfactual payoff buffer, one entry per own action.
	u []float64
}

func newPlayerState(game *normform.Game, player int) *playerState {
	k := game.NumActions(player)
	min, max := game.PayoffRange(player)
	scale := max - min
	if scale == 0 {
		scale = 1
	}

	ps := &playerState{
		k:            k,
		weights:      make([][]float64, k),
		strategy:     make([]float64, k),
		scratch:      make([]float64, k),
		cumSwap:      make([][]float64, k),
		payoffOffset: min,
		payoffScale:  scale,
		u:            make([]float64, k),
	}
	for a := 0; a < k; a++ {
		ps.weights[a] = make([]float64, k)
		ps.cumSwap[a] = make([]float64, k)
		for j := 0; j < k; j++ {
			ps.weights[a][j] = 1
		}
		ps.strategy[a] = 1 / float64(k)
	}
	return ps
}

// refreshStrategy recomputes the stationary distribution p = pQ of the
// row-stochastic matrix Q formed by the normalized weight rows, by
// power iteration warm-started from the previous round's strategy.
func (ps *playerState) refreshStrategy() {
	p := ps.strategy
	next := ps.scratch
	for iter := 0; iter < maxStationaryIters; iter++ {
		for j := range next {
			next[j] = 0
		}
		for a := 0; a < ps.k; a++ {
			if p[a] == 0 {
				continue
			}
			row := ps.weights[a]
			rowSum := 0.0
			for _, w := range row {
				rowSum += w
			}
			scale := p[a] / rowSum
			for j, w := range row {
				next[j] += scale * w
			}
		}

		delta := 0.0
		for j := range next {
			delta += math.Abs(next[j] - p[j])
		}
		p, next = next, p
		if delta < stationaryTolerance {
			break
		}
	}

	if &p[0] != &ps.strategy[0] {
		copy(ps.strategy, p)
	}
}

// sample draws an action from the current mixed strategy.
func (ps *playerState) sample(rng *rand.Rand) int {
	x := rng.Float64()
	cumulative := 0.0
	for a, p := range ps.strategy {
		cumulative += p
		if x < cumulative {
			return a
		}
	}
	return ps.k - 1
}

// observe queries the counterfactual payoff of every own action against
// the realized profile of the other players (profileIdx is the flat
// offset of the realized joint profile) and updates the weight copies
// and cumulative swap payoffs.
func (ps *playerState) observe(game *normform.Game, player, profileIdx int, epsilon float64) {
	space := game.Space()
	for j := 0; j < ps.k; j++ {
		ps.u[j] = game.PayoffAt(player, space.SwapIndex(profileIdx, player, j))
	}

	base := 1 + epsilon
	for a := 0; a < ps.k; a++ {
		pa := ps.strategy[a]
		if pa == 0 {
			continue
		}
		row := ps.weights[a]
		rowMax := 0.0
		for j := 0; j < ps.k; j++ {
			ps.cumSwap[a][j] += pa * ps.u[j]
			normalized := (ps.u[j] - ps.payoffOffset) / ps.payoffScale
			row[j] *= math.Pow(base, pa*normalized)
			if row[j] > rowMax {
				rowMax = row[j]
			}
		}
		// Rescaling a row leaves its normalized distribution intact
		// and keeps the weights within float64 range.
		if rowMax > weightRenormThreshold {
			for j := range row {
				row[j] /= rowMax
			}
		}
	}
}

// averageSwapRegret is the hindsight gain of the best fixed action
// remapping, averaged over rounds.
func (ps *playerState) averageSwapRegret(rounds int) float64 {
	total := 0.0
	for a := 0; a < ps.k; a++ {
		best := math.Inf(-1)
		for j := 0; j < ps.k; j++ {
			if ps.cumSwap[a][j] > best {
				best = ps.cumSwap[a][j]
			}
		}
		total += best - ps.cumSwap[a][a]
	}
	regret := total / float64(rounds)
	if regret < 0 {
		return 0
	}
	return regret
}
