package searcher

import (
	"math"

	"lazymcts/game"
)

// DefaultExploration is the theoretical UCT exploration constant sqrt(2).
const DefaultExploration = math.Sqrt2

const (
	WIN  = 1.0
	LOSS = 0.0
)

// UCTValue = S/n + c*sqrt(ln(N)/n), with N the parent visits, n the child
// visits and S the child reward sum. An unvisited child scores 0.
func UCTValue(parentVisits int, rewardSum float64, visits int, c float64) float64 {
	if visits == 0 {
		return 0
	}
	n := float64(visits)
	return rewardSum/n + c*math.Sqrt(math.Log(float64(parentVisits))/n)
}

// UCTEvaluator scores children with UCT and a final state with 1 if the
// perspective player won, 0 otherwise.
type UCTEvaluator[S game.State[M, P, S], M comparable, P comparable, R Reward, A any] struct{}

func (UCTEvaluator[S, M, P, R, A]) EvalChild(child *Node[M, R, A], _ P, parentVisits int, ea EvalArgs) float64 {
	return UCTValue(parentVisits, float64(child.RewardSum), child.Visits, ea.Exploration)
}

func (UCTEvaluator[S, M, P, R, A]) EvaluateLeaf(final S, turn P) R {
	if final.Winner() == turn {
		return R(WIN)
	}
	return R(LOSS)
}

// OutcomeEvaluator shapes rewards by outcome: Win when the perspective player
// won, Draw when nobody did (Winner() == NoWinner), Loss otherwise. Children are
// scored with UCT.
type OutcomeEvaluator[S game.State[M, P, S], M comparable, P comparable, R Reward, A any] struct {
	NoWinner P
	Win      R
	Draw     R
	Loss     R
}

func (e OutcomeEvaluator[S, M, P, R, A]) EvalChild(child *Node[M, R, A], _ P, parentVisits int, ea EvalArgs) float64 {
	return UCTValue(parentVisits, float64(child.RewardSum), child.Visits, ea.Exploration)
}

func (e OutcomeEvaluator[S, M, P, R, A]) EvaluateLeaf(final S, turn P) R {
	switch final.Winner() {
	case turn:
		return e.Win
	case e.NoWinner:
		return e.Draw
	default:
		return e.Loss
	}
}
