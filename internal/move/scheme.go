package move

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/mkoven/pathmc/internal/network"
	"github.com/mkoven/pathmc/internal/paths"
	"github.com/mkoven/pathmc/internal/volume"
)

// Scheme is a weighted collection of movers with a categorical
// selection policy.
type Scheme struct {
	movers  []Mover
	weights []float64
	total   float64
}

func NewScheme() *Scheme { return &Scheme{} }

func (s *Scheme) Add(m Mover, weight float64) *Scheme {
	if weight <= 0 {
		return s
	}
	s.movers = append(s.movers, m)
	s.weights = append(s.weights, weight)
	s.total += weight
	return s
}

func (s *Scheme) Movers() []Mover { return s.movers }

// Choose draws one mover according to the weights.
func (s *Scheme) Choose(rng *rand.Rand) Mover {
	if len(s.movers) == 0 {
		return nil
	}
	r := rng.Float64() * s.total
	for i, w := range s.weights {
		r -= w
		if r < 0 {
			return s.movers[i]
		}
	}
	return s.movers[len(s.movers)-1]
}

// Probability returns the selection probability of the named mover.
func (s *Scheme) Probability(name string) (float64, error) {
	for i, m := range s.movers {
		if m.Name() == name {
			return s.weights[i] / s.total, nil
		}
	}
	return 0, fmt.Errorf("scheme has no mover %q", name)
}

// StepsForTrials computes the minimum number of run-loop iterations
// for which the expected number of selections of the named mover
// reaches targetTrials. Pure arithmetic on the selection distribution.
func (s *Scheme) StepsForTrials(name string, targetTrials int) (int, error) {
	if targetTrials <= 0 {
		return 0, nil
	}
	p, err := s.Probability(name)
	if err != nil {
		return 0, err
	}
	return int(math.Ceil(float64(targetTrials) / p)), nil
}

// NewOneWayShootingScheme builds the standard scheme for a transition
// network: one one-way shooting mover per ensemble, equal weights,
// stopping at any state of the network.
func NewOneWayShootingScheme(net network.Network, engine paths.Engine) *Scheme {
	stop := volume.NewUnion(net.States()...)
	s := NewScheme()
	for _, ens := range net.Ensembles() {
		s.Add(NewOneWayShooting(ens, stop, engine), 1.0)
	}
	return s
}

// NewMSTISScheme builds shooting movers for every interface ensemble
// plus nearest-neighbor replica exchange within each ladder. Shooting
// carries weight 1 per ensemble, each exchange 0.5, matching the usual
// default ratio.
func NewMSTISScheme(net *network.MSTIS, engine paths.Engine) *Scheme {
	stop := volume.NewUnion(net.States()...)
	s := NewScheme()
	for _, ens := range net.Ensembles() {
		s.Add(NewOneWayShooting(ens, stop, engine), 1.0)
	}
	for _, state := range net.States() {
		ladder := net.Ladder(state.Name())
		for i := 0; i+1 < len(ladder); i++ {
			s.Add(NewReplicaExchange(ladder[i], ladder[i+1]), 0.5)
		}
	}
	return s
}
