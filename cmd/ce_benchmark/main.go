// Benchmark the correlated-equilibrium solvers over randomly generated
// games, appending one CSV row per (game, solver) run with runtime,
// constraint-violation, and welfare columns.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/gamebench/normform"
	"github.com/gamebench/normform/lpsolve"
	"github.com/gamebench/normform/swapregret"
)

type RunParams struct {
	NumPlayersGrid string
	NumActionsGrid string
	RunsPerConfig  int
	Seed           int64

	IncludeSwapRegret bool
	Epsilon           float64
	NumRounds         int

	OutputPath string
	Tolerance  float64
}

func main() {
	var params RunParams
	flag.StringVar(&params.NumPlayersGrid, "num_players", "2,3,4",
		"Comma-separated player counts to benchmark (actions fixed at 2)")
	flag.StringVar(&params.NumActionsGrid, "num_actions", "2,3,4,5",
		"Comma-separated action counts to benchmark (players fixed at 2)")
	flag.IntVar(&params.RunsPerConfig, "runs", 5,
		"Number of random games per configuration")
	flag.Int64Var(&params.Seed, "seed", 123, "Random seed")
	flag.BoolVar(&params.IncludeSwapRegret, "include_sr", true,
		"Also benchmark the swap-regret solver")
	flag.Float64Var(&params.Epsilon, "epsilon", 0.1,
		"Learning rate for swap-regret dynamics")
	flag.IntVar(&params.NumRounds, "num_rounds", 10000,
		"Number of rounds of swap-regret play")
	flag.StringVar(&params.OutputPath, "output", "logs/ce_benchmarking.csv",
		"CSV file to write results to")
	flag.Float64Var(&params.Tolerance, "tolerance", normform.DefaultTolerance,
		"Violation-reporting tolerance")
	flag.Parse()

	f, err := os.Create(params.OutputPath)
	if err != nil {
		glog.Fatal(err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	header := []string{"NPlayers", "NActions", "Solver", "Runtime", "MaxViolation", "NViolations", "Welfare"}
	if err := w.Write(header); err != nil {
		glog.Fatal(err)
	}

	rng := rand.New(rand.NewSource(params.Seed))
	for _, numPlayers := range parseGrid(params.NumPlayersGrid) {
		benchmarkConfig(w, params, rng, numPlayers, 2)
	}
	for _, numActions := range parseGrid(params.NumActionsGrid) {
		benchmarkConfig(w, params, rng, 2, numActions)
	}

	glog.Infof("Benchmarking complete. Results logged to %v", params.OutputPath)
}

func benchmarkConfig(w *csv.Writer, params RunParams, rng *rand.Rand, numPlayers, numActions int) {
	glog.Infof("Benchmarking %d players with %d actions each", numPlayers, numActions)
	counts := make([]int, numPlayers)
	for i := range counts {
		counts[i] = numActions
	}

	for run := 0; run < params.RunsPerConfig; run++ {
		game, err := normform.NewRandom(numPlayers, counts, rng)
		if err != nil {
			glog.Fatal(err)
		}

		solvers, err := buildSolvers(game, params, rng)
		if err != nil {
			glog.Fatal(err)
		}

		for _, solver := range solvers {
			row, err := benchmarkSolver(game, solver, params.Tolerance, numPlayers, numActions)
			if err != nil {
				glog.Errorf("%v on %v: %v", solver.Name(), game, err)
				continue
			}
			if err := w.Write(row); err != nil {
				glog.Fatal(err)
			}
		}
	}
}

func buildSolvers(game *normform.Game, params RunParams, rng *rand.Rand) ([]normform.Solver, error) {
	lp, err := lpsolve.New(game, false)
	if err != nil {
		return nil, err
	}
	lpWelfare, err := lpsolve.New(game, true)
	if err != nil {
		return nil, err
	}

	solvers := []normform.Solver{lp, lpWelfare}
	if params.IncludeSwapRegret {
		sr, err := swapregret.NewSeeded(game, params.Epsilon, params.NumRounds, rng.Int63())
		if err != nil {
			return nil, err
		}
		solvers = append(solvers, sr)
	}
	return solvers, nil
}

func benchmarkSolver(game *normform.Game, solver normform.Solver, tol float64, numPlayers, numActions int) ([]string, error) {
	start := time.Now()
	d, err := solver.Solve()
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	violations := d.Violations(game, tol)
	maxViolation := 0.0
	if len(violations) > 0 {
		maxViolation = violations[0].Magnitude
	}

	return []string{
		strconv.Itoa(numPlayers),
		strconv.Itoa(numActions),
		solver.Name(),
		fmt.Sprintf("%.6f", elapsed.Seconds()),
		fmt.Sprintf("%.6g", maxViolation),
		strconv.Itoa(len(violations)),
		fmt.Sprintf("%.6g", d.ExpectedWelfare(game)),
	}, nil
}

func parseGrid(grid string) []int {
	var values []int
	for _, field := range strings.Split(grid, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			glog.Fatalf("bad grid value %q: %v", field, err)
		}
		values = append(values, v)
	}
	return values
}
