package move

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/mkoven/pathmc/internal/paths"
)

// ReplicaExchange swaps the trajectories of two ensembles. Replica
// labels follow their trajectories. The swap is accepted exactly when
// each trajectory satisfies the other ensemble's predicate.
type ReplicaExchange struct {
	ens1, ens2 paths.Ensemble
}

func NewReplicaExchange(ens1, ens2 paths.Ensemble) *ReplicaExchange {
	return &ReplicaExchange{ens1: ens1, ens2: ens2}
}

func (m *ReplicaExchange) Name() string {
	return "repex[" + m.ens1.Name() + "," + m.ens2.Name() + "]"
}

func (m *ReplicaExchange) Propose(_ context.Context, current paths.SampleSet, _ *rand.Rand) (*Proposal, error) {
	s1, ok := current[m.ens1.Name()]
	if !ok {
		return nil, fmt.Errorf("ensemble %q has no occupant to exchange", m.ens1.Name())
	}
	s2, ok := current[m.ens2.Name()]
	if !ok {
		return nil, fmt.Errorf("ensemble %q has no occupant to exchange", m.ens2.Name())
	}

	prop := &Proposal{
		Samples: []paths.Sample{
			{ReplicaID: s2.ReplicaID, Ensemble: m.ens1.Name(), Trajectory: s2.Trajectory},
			{ReplicaID: s1.ReplicaID, Ensemble: m.ens2.Name(), Trajectory: s1.Trajectory},
		},
	}
	if m.ens1.Covers(s2.Trajectory) && m.ens2.Covers(s1.Trajectory) {
		prop.Acceptance = 1
	}
	return prop, nil
}
