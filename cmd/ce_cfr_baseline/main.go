// Run vanilla CFR on the sequentialized form of a random normal-form
// game as an external-regret baseline for the swap-regret dynamics.
package main

import (
	"flag"
	"math/rand"

	"github.com/golang/glog"
	"github.com/timpalpant/go-cfr"
	"github.com/timpalpant/go-cfr/tree"

	"github.com/gamebench/normform"
	"github.com/gamebench/normform/extform"
)

func main() {
	seed := flag.Int64("seed", 123, "Random seed")
	numPlayers := flag.Int("num_players", 2, "Number of players")
	numActions := flag.Int("num_actions", 3, "Number of actions per player")
	numIter := flag.Int("iter", 1000, "Number of CFR iterations")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	counts := make([]int, *numPlayers)
	for i := range counts {
		counts[i] = *numActions
	}
	game, err := normform.NewRandom(*numPlayers, counts, rng)
	if err != nil {
		glog.Fatal(err)
	}

	root := extform.NewGameTree(game)
	total := 0
	tree.Visit(root, func(node cfr.GameTreeNode) {
		total++
	})
	glog.Infof("%d nodes in sequentialized game tree", total)

	logEvery := *numIter / 10
	if logEvery == 0 {
		logEvery = 1
	}

	policy := cfr.NewPolicyTable(cfr.DiscountParams{})
	vanillaCFR := cfr.New(policy)
	for i := 1; i <= *numIter; i++ {
		expectedValue := vanillaCFR.Run(root)
		policy.Update()
		if i%logEvery == 0 {
			glog.Infof("Iteration %d: expected value %v", i, expectedValue)
		}
	}

	glog.Infof("Ran %d iterations of vanilla CFR on %v", *numIter, game)
}
