// Package network builds the ensemble sets that a sampling scheme
// operates on: all-pair transition networks for TPS and per-state
// interface ladders for multiple-state TIS.
package network

import (
	"fmt"
	"sort"

	"github.com/mkoven/pathmc/internal/ensemble"
	"github.com/mkoven/pathmc/internal/paths"
	"github.com/mkoven/pathmc/internal/volume"
)

// Network exposes the sampling ensembles a move scheme needs.
type Network interface {
	Ensembles() []paths.Ensemble
	States() []volume.Volume
}

// TPS is a transition network between two or more stable states. With
// two states it holds the single symmetric A<->B ensemble; with more,
// one ensemble per unordered state pair.
type TPS struct {
	states    []volume.Volume
	ensembles []paths.Ensemble
}

func NewTPS(states ...volume.Volume) (*TPS, error) {
	if len(states) < 2 {
		return nil, fmt.Errorf("transition network needs at least two states, got %d", len(states))
	}
	n := &TPS{states: states}
	for i := 0; i < len(states); i++ {
		for j := i + 1; j < len(states); j++ {
			n.ensembles = append(n.ensembles, ensemble.NewTPS(states[i], states[j]))
		}
	}
	return n, nil
}

func (n *TPS) States() []volume.Volume     { return n.states }
func (n *TPS) Ensembles() []paths.Ensemble { return n.ensembles }

// StateDef names one stable state, the collective variable measuring
// progress away from it, and the interface positions of its TIS
// ladder in increasing order of that variable.
type StateDef struct {
	State   volume.Volume
	CV      paths.CV
	Lambdas []float64
}

// MSTIS is a multiple-state transition interface sampling network: for
// each state, one Interface ensemble per ladder rung, all sharing the
// union of every state as the stopping set.
type MSTIS struct {
	states    []volume.Volume
	ladders   map[string][]*ensemble.Interface
	ensembles []paths.Ensemble
}

func NewMSTIS(defs ...StateDef) (*MSTIS, error) {
	if len(defs) < 2 {
		return nil, fmt.Errorf("interface network needs at least two states, got %d", len(defs))
	}

	states := make([]volume.Volume, len(defs))
	for i, d := range defs {
		states[i] = d.State
	}
	all := volume.NewUnion(states...)

	n := &MSTIS{
		states:  states,
		ladders: make(map[string][]*ensemble.Interface, len(defs)),
	}
	for _, d := range defs {
		if len(d.Lambdas) == 0 {
			return nil, fmt.Errorf("state %q has no interfaces", d.State.Name())
		}
		if !sort.Float64sAreSorted(d.Lambdas) {
			return nil, fmt.Errorf("state %q interfaces not in increasing order", d.State.Name())
		}
		ladder := make([]*ensemble.Interface, len(d.Lambdas))
		for i, lambda := range d.Lambdas {
			e := ensemble.NewInterface(d.State, all, d.CV, lambda)
			ladder[i] = e
			n.ensembles = append(n.ensembles, e)
		}
		n.ladders[d.State.Name()] = ladder
	}
	return n, nil
}

func (n *MSTIS) States() []volume.Volume     { return n.states }
func (n *MSTIS) Ensembles() []paths.Ensemble { return n.ensembles }

// Ladder returns the interface ensembles of one state, innermost
// first.
func (n *MSTIS) Ladder(state string) []*ensemble.Interface {
	return n.ladders[state]
}
