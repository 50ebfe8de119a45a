package normform

// Solver computes a correlated equilibrium (exact or approximate) of
// the game it was constructed with.
type Solver interface {
	// Name identifies the solver in benchmark output.
	Name() string
	// Solve returns a fresh distribution over joint action profiles.
	Solve() (*Distribution, error)
}
