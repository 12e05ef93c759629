package analysis

import (
	"github.com/mkoven/pathmc/internal/ensemble"
	"github.com/mkoven/pathmc/internal/paths"
)

// CrossingProbability is the fraction of paths sampled in one
// interface ensemble that also reach the next interface outward.
type CrossingProbability struct {
	Ensemble   string
	NextLambda float64
	Samples    int
	Crossed    int
}

func (c CrossingProbability) P() float64 {
	if c.Samples == 0 {
		return 0
	}
	return float64(c.Crossed) / float64(c.Samples)
}

// LadderCrossing computes, for each rung of a TIS ladder except the
// outermost, how often its sampled paths cross the next interface.
// The product of these conditional probabilities estimates the total
// crossing probability of the ladder.
func LadderCrossing(steps []*paths.Step, ladder []*ensemble.Interface) []CrossingProbability {
	out := make([]CrossingProbability, 0, len(ladder))
	for i := 0; i+1 < len(ladder); i++ {
		rung := ladder[i]
		next := ladder[i+1]
		cp := CrossingProbability{Ensemble: rung.Name(), NextLambda: next.Lambda()}

		for _, step := range steps {
			s, ok := step.Active[rung.Name()]
			if !ok || s.Trajectory.Len() == 0 {
				continue
			}
			cp.Samples++
			if rung.MaxCV(s.Trajectory) >= next.Lambda() {
				cp.Crossed++
			}
		}
		out = append(out, cp)
	}
	return out
}

// TotalCrossing multiplies the conditional crossing probabilities.
func TotalCrossing(probs []CrossingProbability) float64 {
	total := 1.0
	for _, cp := range probs {
		total *= cp.P()
	}
	return total
}
