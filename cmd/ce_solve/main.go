// Solve a single normal-form game for a correlated equilibrium and
// print the resulting distribution, expected welfare, and any
// incentive-constraint violations.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"strings"

	"github.com/golang/glog"

	"github.com/gamebench/normform"
	"github.com/gamebench/normform/lpsolve"
	"github.com/gamebench/normform/swapregret"
)

type RunParams struct {
	GameType   string
	NumPlayers int
	NumActions int
	Seed       int64

	Solver          string
	MaximizeWelfare bool
	Epsilon         float64
	NumRounds       int
	Tolerance       float64
}

func main() {
	var params RunParams
	flag.StringVar(&params.GameType, "game", "random",
		"Game to solve: random, chicken, or congestion")
	flag.IntVar(&params.NumPlayers, "num_players", 2,
		"Number of players (random games only)")
	flag.IntVar(&params.NumActions, "num_actions", 2,
		"Number of actions per player (random games only)")
	flag.Int64Var(&params.Seed, "seed", 123,
		"Random seed for game generation and swap-regret play")
	flag.StringVar(&params.Solver, "solver", "lp",
		"Solver to run: lp or swap_regret")
	flag.BoolVar(&params.MaximizeWelfare, "maximize_welfare", false,
		"Maximize expected social welfare over the equilibrium polytope (lp only)")
	flag.Float64Var(&params.Epsilon, "epsilon", 0.1,
		"Learning rate for swap-regret dynamics")
	flag.IntVar(&params.NumRounds, "num_rounds", 10000,
		"Number of rounds of swap-regret play")
	flag.Float64Var(&params.Tolerance, "tolerance", normform.DefaultTolerance,
		"Numerical tolerance for violation reporting")
	flag.Parse()

	game, err := buildGame(params)
	if err != nil {
		glog.Fatal(err)
	}

	glog.Infof("Solving %v with %v", game, params.Solver)
	d, err := runSolver(game, params)
	if err != nil {
		glog.Fatal(err)
	}

	fmt.Println("Correlated equilibrium:")
	fmt.Print(d)
	fmt.Printf("Expected welfare: %.6g\n", d.ExpectedWelfare(game))

	violations := d.Violations(game, params.Tolerance)
	if len(violations) == 0 {
		fmt.Println("No incentive constraint violations.")
		return
	}
	fmt.Printf("%d incentive constraint violations:\n", len(violations))
	for _, v := range violations {
		fmt.Printf("  %v\n", v)
	}
}

func buildGame(params RunParams) (*normform.Game, error) {
	switch strings.ToLower(params.GameType) {
	case "random":
		counts := make([]int, params.NumPlayers)
		for i := range counts {
			counts[i] = params.NumActions
		}
		rng := rand.New(rand.NewSource(params.Seed))
		return normform.NewRandom(params.NumPlayers, counts, rng)
	case "chicken":
		return normform.NewChicken(), nil
	case "congestion":
		return normform.NewCongestion(), nil
	default:
		return nil, fmt.Errorf("unknown game type: %v", params.GameType)
	}
}

func runSolver(game *normform.Game, params RunParams) (*normform.Distribution, error) {
	switch strings.ToLower(params.Solver) {
	case "lp":
		solver, err := lpsolve.New(game, params.MaximizeWelfare)
		if err != nil {
			return nil, err
		}
		d, diag, err := solver.SolveWithDiagnostics()
		if err != nil {
			return nil, err
		}
		glog.Infof("Min constraint slack: %.3g", diag.MinSlack())
		return d, nil
	case "swap_regret":
		solver, err := swapregret.NewSeeded(game, params.Epsilon, params.NumRounds, params.Seed)
		if err != nil {
			return nil, err
		}
		d, stats, err := solver.SolveWithStats()
		if err != nil {
			return nil, err
		}
		glog.Infof("Max average swap regret after %d rounds: %.6g", stats.Rounds, stats.MaxRegret())
		return d, nil
	default:
		return nil, fmt.Errorf("unknown solver: %v", params.Solver)
	}
}
