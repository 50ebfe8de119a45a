package normform

import "github.com/pkg/errors"

// Error kinds returned by game construction and the solvers. Wrapped
// errors carry context; use errors.Cause to identify the kind.
var (
	// ErrInvalidGame indicates malformed action counts or a payoff
	// tensor shape mismatch. Only returned at Game construction or
	// from out-of-range payoff queries.
	ErrInvalidGame = errors.New("normform: invalid game")

	// ErrInvalidParameter indicates a solver was constructed with an
	// out-of-range parameter. Returned before any computation starts.
	ErrInvalidParameter = errors.New("normform: invalid parameter")

	// ErrInfeasible indicates the LP constraint set was empty. The
	// correlated-equilibrium polytope is never empty, so this signals
	// a construction defect and is always propagated.
	ErrInfeasible = errors.New("normform: LP infeasible")

	// ErrSolverFailure indicates the numerical LP backend failed to
	// converge or reported unboundedness.
	ErrSolverFailure = errors.New("normform: LP solver failure")
)
