package solver

import (
	"math/rand"

	"github.com/robalobadob/bullscows/internal/code"
)

// Strategy picks the next guess from a non-empty candidate set.
type Strategy interface {
	Name() string
	Pick(candidates []code.Code, rng *rand.Rand) code.Code
}

// RandomStrategy picks uniformly among the remaining candidates.
type RandomStrategy struct{}

func (RandomStrategy) Name() string { return "random" }

func (RandomStrategy) Pick(candidates []code.Code, rng *rand.Rand) code.Code {
	return candidates[rng.Intn(len(candidates))]
}

// MinimaxStrategy picks the candidate whose worst-case feedback class is
// smallest. Only candidates are scored, so every guess can still win.
// Ties go to the earliest candidate, which is the lowest code since the
// solver keeps candidates in ascending order.
type MinimaxStrategy struct{}

func (MinimaxStrategy) Name() string { return "minimax" }

func (MinimaxStrategy) Pick(candidates []code.Code, rng *rand.Rand) code.Code {
	// Openings are near-equivalent; skip the quadratic scan on the full universe.
	if len(candidates) >= code.UniverseSize {
		return RandomStrategy{}.Pick(candidates, rng)
	}
	best := candidates[0]
	bestWorst := len(candidates) + 1
	var classes [code.Length + 1][code.Length + 1]int
	for _, g := range candidates {
		classes = [code.Length + 1][code.Length + 1]int{}
		worst := 0
		for _, c := range candidates {
			fb := code.Evaluate(g, c)
			classes[fb.Bulls][fb.Cows]++
			if n := classes[fb.Bulls][fb.Cows]; n > worst {
				worst = n
			}
			if worst >= bestWorst {
				break
			}
		}
		if worst < bestWorst {
			best, bestWorst = g, worst
		}
	}
	return best
}

// StrategyByName maps a config value to a Strategy; unknown names fall back to random.
func StrategyByName(name string) Strategy {
	switch name {
	case "minimax":
		return MinimaxStrategy{}
	default:
		return RandomStrategy{}
	}
}
