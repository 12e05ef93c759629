package toy

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/mkoven/pathmc/internal/paths"
)

// Engine grows trajectory segments on a potential surface. It
// implements paths.Engine: integrate from a seed frame until the stop
// predicate fires on a generated frame, or fail with ErrMaxLength when
// the frame budget runs out.
type Engine struct {
	pot       Potential
	integ     Integrator
	maxFrames int
	rng       *rand.Rand
}

func NewEngine(pot Potential, integ Integrator, maxFrames int, seed int64) *Engine {
	return &Engine{
		pot:       pot,
		integ:     integ,
		maxFrames: maxFrames,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

func (e *Engine) MaxFrames() int       { return e.maxFrames }
func (e *Engine) Potential() Potential { return e.pot }

func (e *Engine) Extend(ctx context.Context, seed *paths.Snapshot, dir paths.Direction, stop func(*paths.Snapshot) bool) (paths.Trajectory, error) {
	start := seed
	if dir == paths.Backward {
		start = seed.Reversed()
	}

	segment, err := e.generate(ctx, start, stop)
	if err != nil {
		return nil, err
	}
	if dir == paths.Backward {
		segment = segment.Reversed()
	}
	return segment, nil
}

// generate always integrates forward in time from start.
func (e *Engine) generate(ctx context.Context, start *paths.Snapshot, stop func(*paths.Snapshot) bool) (paths.Trajectory, error) {
	segment := paths.Trajectory{start}
	if stop(start) {
		return segment, nil
	}

	pos := append([]float64(nil), start.Coords...)
	vel := append([]float64(nil), start.Vels...)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		e.integ.Step(e.pot, pos, vel, e.rng)
		snap := paths.NewSnapshot(pos, vel)
		if !snap.IsValid() {
			return nil, fmt.Errorf("frame %d: %w", len(segment), paths.ErrUnstable)
		}
		segment = append(segment, snap)

		if stop(snap) {
			return segment, nil
		}
		if len(segment) >= e.maxFrames {
			return nil, fmt.Errorf("%d frames without reaching a stopping state: %w",
				len(segment), paths.ErrMaxLength)
		}
	}
}
