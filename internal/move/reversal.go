package move

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/mkoven/pathmc/internal/paths"
)

// PathReversal proposes the time-reversed trajectory in place of the
// current one. Symmetric proposal: accepted outright whenever the
// reversed path still satisfies the ensemble.
type PathReversal struct {
	ensemble paths.Ensemble
}

func NewPathReversal(ens paths.Ensemble) *PathReversal {
	return &PathReversal{ensemble: ens}
}

func (m *PathReversal) Name() string {
	return "reversal[" + m.ensemble.Name() + "]"
}

func (m *PathReversal) Propose(_ context.Context, current paths.SampleSet, _ *rand.Rand) (*Proposal, error) {
	sample, ok := current[m.ensemble.Name()]
	if !ok {
		return nil, fmt.Errorf("ensemble %q has no occupant to reverse", m.ensemble.Name())
	}

	trial := sample.Trajectory.Reversed()
	prop := &Proposal{
		Samples: []paths.Sample{{
			ReplicaID:  sample.ReplicaID,
			Ensemble:   sample.Ensemble,
			Trajectory: trial,
		}},
	}
	if m.ensemble.Covers(trial) {
		prop.Acceptance = 1
	}
	return prop, nil
}
