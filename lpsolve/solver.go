// Package lpsolve computes exact correlated equilibria of normal-form
// games by linear programming over the simplex of joint-action
// distributions.
package lpsolve

import (
	"math"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/gamebench/normform"
)

// negativityTolerance is how far below zero a probability may come back
// from the backend before it is treated as a solver failure rather than
// numerical jitter to clip.
const negativityTolerance = 1e-9

// Solver finds a correlated equilibrium of a game as the solution of a
// linear program, optionally maximizing expected social welfare over
// the equilibrium polytope.
type Solver struct {
	game            *normform.Game
	maximizeWelfare bool
	tol             float64
	prog            *program
}

// Verify that we implement the interface.
var _ normform.Solver = &Solver{}

// Option configures a Solver.
type Option func(*Solver)

// WithTolerance overrides the normalization and diagnostic tolerance
// (default normform.DefaultTolerance).
func WithTolerance(tol float64) Option {
	return func(s *Solver) { s.tol = tol }
}

// New constructs the correlated-equilibrium LP for game. With
// maximizeWelfare the objective is the expected sum of all players'
// payoffs; otherwise any feasible point is accepted.
func New(game *normform.Game, maximizeWelfare bool, opts ...Option) (*Solver, error) {
	if game == nil {
		return nil, errors.Wrap(normform.ErrInvalidParameter, "nil game")
	}

	s := &Solver{
		game:            game,
		maximizeWelfare: maximizeWelfare,
		tol:             normform.DefaultTolerance,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tol <= 0 {
		return nil, errors.Wrapf(normform.ErrInvalidParameter, "tolerance %v must be > 0", s.tol)
	}

	s.prog = buildProgram(game, maximizeWelfare)
	glog.V(1).Infof("Built correlated equilibrium LP: %d variables, %d incentive constraints",
		s.prog.numProfiles, len(s.prog.rows))
	return s, nil
}

// Name implements normform.Solver.
func (s *Solver) Name() string {
	if s.maximizeWelfare {
		return "lp_welfare"
	}
	return "lp"
}

// Solve runs the simplex backend once and returns the equilibrium
// distribution, normalized so probabilities are non-negative and sum
// to 1 within tolerance. Repeated calls are invariant up to backend
// numerical jitter.
func (s *Solver) Solve() (*normform.Distribution, error) {
	d, _, err := s.SolveWithDiagnostics()
	return d, err
}

// SolveWithDiagnostics is Solve plus the expected welfare of the
// returned distribution and the signed slack of every incentive
// constraint. Small negative slacks are reported as data, not errors.
func (s *Solver) SolveWithDiagnostics() (*normform.Distribution, Diagnostics, error) {
	_, optX, err := lp.Simplex(s.prog.c, s.prog.a, s.prog.b, 0, nil)
	if err != nil {
		if err == lp.ErrInfeasible {
			// The CE polytope is never empty; this is a construction bug.
			return nil, Diagnostics{}, errors.Wrap(normform.ErrInfeasible, err.Error())
		}
		return nil, Diagnostics{}, errors.Wrap(normform.ErrSolverFailure, err.Error())
	}

	probs := make([]float64, s.prog.numProfiles)
	copy(probs, optX[:s.prog.numProfiles])
	total := 0.0
	for idx, p := range probs {
		if p < 0 {
			if p < -negativityTolerance {
				return nil, Diagnostics{}, errors.Wrapf(normform.ErrSolverFailure,
					"probability %v at profile offset %d below negativity tolerance", p, idx)
			}
			probs[idx] = 0
			continue
		}
		total += p
	}
	if math.Abs(total-1) > s.tol {
		return nil, Diagnostics{}, errors.Wrapf(normform.ErrSolverFailure,
			"probabilities sum to %v, want 1 within %v", total, s.tol)
	}
	for idx := range probs {
		probs[idx] /= total
	}

	d, err := normform.NewDistribution(s.game, probs)
	if err != nil {
		return nil, Diagnostics{}, err
	}

	diag := s.diagnostics(d)
	glog.V(1).Infof("%s solved: welfare %.6g, min slack %.3g", s.Name(), diag.ExpectedWelfare, diag.MinSlack())
	return d, diag, nil
}

// ConstraintSlack is the signed slack of one incentive constraint at
// the solution; negative means violated by that much.
type ConstraintSlack struct {
	Player int
	Action int
	Alt    int
	Slack  float64
}

// Diagnostics reports solution quality for one solve.
type Diagnostics struct {
	ExpectedWelfare float64
	Slacks          []ConstraintSlack
}

// MinSlack returns the smallest constraint slack, or 0 when there are
// no constraints.
func (d Diagnostics) MinSlack() float64 {
	if len(d.Slacks) == 0 {
		return 0
	}
	min := math.Inf(1)
	for _, cs := range d.Slacks {
		if cs.Slack < min {
			min = cs.Slack
		}
	}
	return min
}

func (s *Solver) diagnostics(d *normform.Distribution) Diagnostics {
	slacks := make([]ConstraintSlack, len(s.prog.rows))
	for i, row := range s.prog.rows {
		slacks[i] = ConstraintSlack{
			Player: row.player,
			Action: row.action,
			Alt:    row.alt,
			Slack:  d.ConstraintSlack(s.game, row.player, row.action, row.alt),
		}
	}
	return Diagnostics{
		ExpectedWelfare: d.ExpectedWelfare(s.game),
		Slacks:          slacks,
	}
}
