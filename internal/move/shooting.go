package move

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/mkoven/pathmc/internal/paths"
	"github.com/mkoven/pathmc/internal/toy"
	"github.com/mkoven/pathmc/internal/volume"
)

// OneWayShooting regrows one half of the current path: pick a frame
// uniformly, integrate from it in a random direction until the
// stopping set is reached, and splice the new half onto the kept half.
// With a stochastic engine the move satisfies detailed balance with
// acceptance min(1, oldLen/newLen) under uniform point selection.
type OneWayShooting struct {
	ensemble paths.Ensemble
	stop     volume.Volume
	engine   paths.Engine

	// Optional: randomize shooting-point velocities before
	// integrating. Required for deterministic engines, harmless for
	// stochastic ones.
	randomizer *toy.VelocityRandomizer
}

func NewOneWayShooting(ens paths.Ensemble, stop volume.Volume, engine paths.Engine) *OneWayShooting {
	return &OneWayShooting{ensemble: ens, stop: stop, engine: engine}
}

func (m *OneWayShooting) WithRandomizer(r *toy.VelocityRandomizer) *OneWayShooting {
	m.randomizer = r
	return m
}

func (m *OneWayShooting) Name() string {
	return "shooting[" + m.ensemble.Name() + "]"
}

func (m *OneWayShooting) Propose(ctx context.Context, current paths.SampleSet, rng *rand.Rand) (*Proposal, error) {
	sample, ok := current[m.ensemble.Name()]
	if !ok {
		return nil, fmt.Errorf("ensemble %q has no occupant to shoot from", m.ensemble.Name())
	}
	old := sample.Trajectory
	if old.Len() < 3 {
		return rejected(), nil
	}

	// Interior frames only: regrowing from an endpoint is a no-op.
	idx := 1 + rng.Intn(old.Len()-2)
	dir := paths.Forward
	if rng.Float64() < 0.5 {
		dir = paths.Backward
	}

	point := old[idx]
	if m.randomizer != nil {
		point = m.randomizer.Randomize(point, rng)
	}

	segment, err := m.engine.Extend(ctx, point, dir, m.stop.Contains)
	if err != nil {
		return nil, fmt.Errorf("shooting from frame %d: %w", idx, err)
	}

	var trial paths.Trajectory
	if dir == paths.Forward {
		trial = old[:idx].Concat(segment)
	} else {
		trial = segment.Concat(old[idx+1:])
	}

	prop := &Proposal{
		Samples: []paths.Sample{{
			ReplicaID:  sample.ReplicaID,
			Ensemble:   sample.Ensemble,
			Trajectory: trial,
		}},
		ShootingPoint: idx,
		Direction:     dir,
	}

	if !m.ensemble.Covers(trial) {
		return prop, nil // acceptance stays 0
	}
	prop.Acceptance = min(1, float64(old.Len())/float64(trial.Len()))
	return prop, nil
}
