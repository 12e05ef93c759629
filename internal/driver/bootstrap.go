package driver

import (
	"context"

	"github.com/mkoven/pathmc/internal/paths"
)

// Bootstrap populates every required ensemble with one sample. Each
// ensemble first scans the candidate trajectories; if none qualifies
// and an engine is configured, repair shots grow new candidates from
// random frames of the provided ones, up to MaxBootstrapRetries per
// ensemble. Ensembles still empty afterwards make the whole bootstrap
// fail: a partially initialized sample set must never start sampling.
func (p *PathSampler) Bootstrap(ctx context.Context, candidates []paths.Trajectory) (paths.SampleSet, error) {
	ss := paths.NewSampleSet()
	var missing []string
	replica := 0

	for _, ens := range p.ensembles {
		traj, ok := p.findCandidate(ens, candidates)
		if !ok {
			repaired, err := p.repair(ctx, ens, candidates)
			if err != nil {
				return nil, err
			}
			traj, ok = repaired, repaired != nil
		}
		if !ok {
			missing = append(missing, ens.Name())
			continue
		}
		ss = ss.Apply(paths.Sample{ReplicaID: replica, Ensemble: ens.Name(), Trajectory: traj})
		replica++
	}

	if len(missing) > 0 {
		return nil, &paths.IncompleteInitializationError{
			Missing: missing,
			Retries: p.opts.MaxBootstrapRetries,
		}
	}
	p.active = ss
	return ss, nil
}

// BootstrapRepairs reports how many repair shots the last bootstrap
// fired. Zero when every ensemble was satisfied by a candidate.
func (p *PathSampler) BootstrapRepairs() int { return p.repairs }

func (p *PathSampler) findCandidate(ens paths.Ensemble, candidates []paths.Trajectory) (paths.Trajectory, bool) {
	for _, traj := range candidates {
		if ens.Covers(traj) {
			return traj, true
		}
	}
	return nil, false
}

// repair tries to manufacture a qualifying trajectory: pick a random
// frame from a random candidate, grow a full path through it (backward
// to a state, then forward to a state), and test the predicate.
// Returns nil without error when the retry budget runs out; hard
// failures (context cancellation) propagate.
func (p *PathSampler) repair(ctx context.Context, ens paths.Ensemble, candidates []paths.Trajectory) (paths.Trajectory, error) {
	if p.engine == nil || p.stop == nil || len(candidates) == 0 {
		return nil, nil
	}

	for attempt := 0; attempt < p.opts.MaxBootstrapRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		p.repairs++

		cand := candidates[p.rng.Intn(len(candidates))]
		seed := cand[p.rng.Intn(cand.Len())]

		backward, err := p.engine.Extend(ctx, seed, paths.Backward, p.stop.Contains)
		if err != nil {
			if paths.IsEngineFailure(err) {
				continue
			}
			return nil, err
		}
		forward, err := p.engine.Extend(ctx, seed, paths.Forward, p.stop.Contains)
		if err != nil {
			if paths.IsEngineFailure(err) {
				continue
			}
			return nil, err
		}

		traj := backward.Concat(forward)
		if ens.Covers(traj) {
			return traj, nil
		}
	}
	return nil, nil
}
