package driver

import (
	"context"
	"math/rand"

	"github.com/mkoven/pathmc/internal/paths"
	"github.com/mkoven/pathmc/internal/toy"
	"github.com/mkoven/pathmc/internal/volume"
)

// ShotRecord is the outcome of one committor shot: which state the
// trajectory reached from the given starting configuration. State is
// empty when the shot failed (engine instability or frame budget).
type ShotRecord struct {
	SnapshotID uint64  `json:"snapshot_id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	State      string  `json:"state"`
	Frames     int     `json:"frames"`
}

// Committor fires velocity-randomized shots from fixed configurations
// and records the first state each shot commits to. The committor
// probability of a configuration is then the fraction of its shots
// reaching a given state.
type Committor struct {
	engine     paths.Engine
	states     []volume.Volume
	randomizer *toy.VelocityRandomizer
	rng        *rand.Rand
}

func NewCommittor(engine paths.Engine, states []volume.Volume, randomizer *toy.VelocityRandomizer, seed int64) *Committor {
	return &Committor{
		engine:     engine,
		states:     states,
		randomizer: randomizer,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// Run fires shotsPer shots from every initial snapshot. Failed shots
// are recorded, not escalated, matching the run loop's treatment of
// engine failures.
func (c *Committor) Run(ctx context.Context, initial []*paths.Snapshot, shotsPer int) ([]ShotRecord, error) {
	stop := volume.NewUnion(c.states...)
	records := make([]ShotRecord, 0, len(initial)*shotsPer)

	for _, snap := range initial {
		for i := 0; i < shotsPer; i++ {
			select {
			case <-ctx.Done():
				return records, ctx.Err()
			default:
			}

			seed := c.randomizer.Randomize(snap, c.rng)
			rec := ShotRecord{SnapshotID: snap.ID, X: snap.Coords[0]}
			if len(snap.Coords) > 1 {
				rec.Y = snap.Coords[1]
			}

			traj, err := c.engine.Extend(ctx, seed, paths.Forward, stop.Contains)
			if err != nil {
				if paths.IsEngineFailure(err) {
					records = append(records, rec)
					continue
				}
				return records, err
			}

			rec.Frames = traj.Len()
			for _, state := range c.states {
				if state.Contains(traj.Last()) {
					rec.State = state.Name()
					break
				}
			}
			records = append(records, rec)
		}
	}
	return records, nil
}
