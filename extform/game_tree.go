// Package extform exposes a normal-form game as an extensive-form
// game tree implementing cfr.GameTreeNode: players commit to actions
// in index order, each within a single information set, so the
// simultaneous move stays hidden. This is the bridge to the go-cfr
// regret-minimization engine, used as an external-regret baseline when
// benchmarking the swap-regret dynamics.
package extform

import (
	"fmt"
	"math/rand"

	"github.com/timpalpant/go-cfr"

	"github.com/gamebench/normform"
)

// GameNode is one node of the sequentialized game tree: the players
// with index < depth have committed their actions.
type GameNode struct {
	game    *normform.Game
	profile []int
	depth   int

	// children are the possible next states, one per action of the
	// player to act. Built lazily.
	children []GameNode
	parent   *GameNode

	rng *rand.Rand
}

// Verify that we implement the interface.
var _ cfr.GameTreeNode = &GameNode{}

// NewGameTree returns the root node of the sequentialized form of game.
func NewGameTree(game *normform.Game) *GameNode {
	return &GameNode{
		game:    game,
		profile: make([]int, game.NumPlayers()),
		rng:     rand.New(rand.NewSource(rand.Int63())),
	}
}

// Type implements cfr.GameTreeNode.
func (gn *GameNode) Type() cfr.NodeType {
	if gn.depth == gn.game.NumPlayers() {
		return cfr.TerminalNodeType
	}
	return cfr.PlayerNodeType
}

// Player implements cfr.GameTreeNode.
func (gn *GameNode) Player() int {
	return gn.depth
}

// InfoSet implements cfr.GameTreeNode. Every player acts exactly once
// knowing nothing of the other players' choices, so each player has a
// single information set.
func (gn *GameNode) InfoSet(player int) cfr.InfoSet {
	return &InfoSet{Player: player}
}

// Utility implements cfr.GameTreeNode.
func (gn *GameNode) Utility(player int) float64 {
	if gn.Type() != cfr.TerminalNodeType {
		panic("cannot get the utility of a non-terminal node")
	}

	return gn.game.PayoffAt(player, gn.game.Space().Index(gn.profile))
}

// NumChildren implements cfr.GameTreeNode.
func (gn *GameNode) NumChildren() int {
	if gn.Type() == cfr.TerminalNodeType {
		return 0
	}
	return gn.game.NumActions(gn.depth)
}

// GetChild implements cfr.GameTreeNode.
func (gn *GameNode) GetChild(i int) cfr.GameTreeNode {
	gn.buildChildren()
	return &gn.children[i]
}

// Parent implements cfr.GameTreeNode.
func (gn *GameNode) Parent() cfr.GameTreeNode {
	return gn.parent
}

// GetChildProbability implements cfr.GameTreeNode. The tree has no
// chance nodes.
func (gn *GameNode) GetChildProbability(i int) float64 {
	panic("tree has no chance nodes")
}

// SampleChild implements cfr.GameTreeNode.
func (gn *GameNode) SampleChild() (cfr.GameTreeNode, float64) {
	n := gn.NumChildren()
	return gn.GetChild(gn.rng.Intn(n)), 1.0 / float64(n)
}

// Close implements cfr.GameTreeNode. It releases the subtree below
// this node so it can be GC'ed.
func (gn *GameNode) Close() {
	gn.children = nil
}

// String implements fmt.Stringer.
func (gn *GameNode) String() string {
	if gn.Type() == cfr.TerminalNodeType {
		return fmt.Sprintf("terminal profile %v", gn.profile)
	}
	return fmt.Sprintf("player %d to act after %v", gn.depth, gn.profile[:gn.depth])
}

func (gn *GameNode) buildChildren() {
	if len(gn.children) > 0 {
		return // Already built.
	}

	n := gn.NumChildren()
	gn.children = make([]GameNode, n)
	for i := 0; i < n; i++ {
		profile := make([]int, len(gn.profile))
		copy(profile, gn.profile)
		profile[gn.depth] = i

		gn.children[i] = GameNode{
			game:    gn.game,
			profile: profile,
			depth:   gn.depth + 1,
			parent:  gn,
			rng:     gn.rng,
		}
	}
}
