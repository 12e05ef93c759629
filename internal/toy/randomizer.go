package toy

import (
	"math"
	"math/rand"

	"github.com/mkoven/pathmc/internal/paths"
)

// VelocityRandomizer draws fresh Maxwell-Boltzmann velocities at
// inverse temperature Beta, keeping the configuration fixed. The
// result is a new phase point with its own identity.
type VelocityRandomizer struct {
	Beta float64
}

func NewVelocityRandomizer(beta float64) *VelocityRandomizer {
	return &VelocityRandomizer{Beta: beta}
}

func (r *VelocityRandomizer) Randomize(s *paths.Snapshot, rng *rand.Rand) *paths.Snapshot {
	sigma := math.Sqrt(1.0 / r.Beta)
	vels := make([]float64, len(s.Vels))
	for i := range vels {
		vels[i] = sigma * rng.NormFloat64()
	}
	return paths.NewSnapshot(s.Coords, vels)
}
