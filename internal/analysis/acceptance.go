package analysis

import (
	"sort"

	"github.com/mkoven/pathmc/internal/paths"
)

// MoverStats summarizes one mover's record over a stored run.
type MoverStats struct {
	Mover    string
	Trials   int
	Accepted int
}

func (s MoverStats) Ratio() float64 {
	if s.Trials == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(s.Trials)
}

// Acceptance tallies trials and acceptances per mover from a step
// sequence, sorted by mover name.
func Acceptance(steps []*paths.Step) []MoverStats {
	byMover := make(map[string]*MoverStats)
	for _, step := range steps {
		s, ok := byMover[step.Mover]
		if !ok {
			s = &MoverStats{Mover: step.Mover}
			byMover[step.Mover] = s
		}
		s.Trials++
		if step.Accepted {
			s.Accepted++
		}
	}

	out := make([]MoverStats, 0, len(byMover))
	for _, s := range byMover {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mover < out[j].Mover })
	return out
}
