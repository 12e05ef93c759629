// Package move implements the path-sampling Monte Carlo moves and the
// weighted scheme that selects among them.
package move

import (
	"context"
	"math/rand"

	"github.com/mkoven/pathmc/internal/paths"
)

// Proposal is a candidate update to the sample set: the samples to
// replace (by ensemble key) and the detailed-balance acceptance
// probability of the move that produced them.
type Proposal struct {
	Samples    []paths.Sample
	Acceptance float64

	// Shooting metadata, zero for non-shooting moves.
	ShootingPoint int
	Direction     paths.Direction
}

// Mover proposes a candidate sample set update from the current one.
// Engine failures during proposal generation surface as errors; the
// run loop turns them into rejections.
type Mover interface {
	Name() string
	Propose(ctx context.Context, current paths.SampleSet, rng *rand.Rand) (*Proposal, error)
}

// rejected is the zero-acceptance proposal keeping the current sample.
func rejected() *Proposal {
	return &Proposal{Acceptance: 0}
}
