package driver

import (
	"context"
	"sync"

	"github.com/mkoven/pathmc/internal/paths"
	"github.com/mkoven/pathmc/internal/toy"
	"github.com/mkoven/pathmc/internal/volume"
)

// ParallelCommittor fans committor shots out over one worker per
// starting snapshot. Shots from different snapshots are independent,
// so each worker gets its own engine and rng from the factory.
type ParallelCommittor struct {
	newEngine  func(seed int64) paths.Engine
	states     []volume.Volume
	randomizer *toy.VelocityRandomizer
	seedStart  int64
}

func NewParallelCommittor(newEngine func(seed int64) paths.Engine, states []volume.Volume, randomizer *toy.VelocityRandomizer, seedStart int64) *ParallelCommittor {
	return &ParallelCommittor{
		newEngine:  newEngine,
		states:     states,
		randomizer: randomizer,
		seedStart:  seedStart,
	}
}

func (p *ParallelCommittor) Run(ctx context.Context, initial []*paths.Snapshot, shotsPer int) ([]ShotRecord, error) {
	results := make([][]ShotRecord, len(initial))
	errs := make([]error, len(initial))

	var wg sync.WaitGroup
	for i := range initial {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			seed := p.seedStart + int64(idx)
			c := NewCommittor(p.newEngine(seed), p.states, p.randomizer, seed)
			results[idx], errs[idx] = c.Run(ctx, initial[idx:idx+1], shotsPer)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var all []ShotRecord
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}
