// Package ensemble provides the closed set of path-ensemble predicates
// used by sampling networks: transition paths between stable states,
// interface-crossing paths, and a fixed-length helper.
package ensemble

import (
	"fmt"

	"github.com/mkoven/pathmc/internal/paths"
	"github.com/mkoven/pathmc/internal/volume"
)

// TPS covers transition paths between two stable states: the path
// begins in one state, ends in the other, and never visits a state in
// between. Symmetric in A and B.
type TPS struct {
	name   string
	stateA volume.Volume
	stateB volume.Volume
}

func NewTPS(stateA, stateB volume.Volume) *TPS {
	return &TPS{
		name:   fmt.Sprintf("%s<->%s", stateA.Name(), stateB.Name()),
		stateA: stateA,
		stateB: stateB,
	}
}

func (e *TPS) Name() string { return e.name }

func (e *TPS) Covers(t paths.Trajectory) bool {
	if t.Len() < 2 {
		return false
	}
	first, last := t.First(), t.Last()

	aToB := e.stateA.Contains(first) && e.stateB.Contains(last)
	bToA := e.stateB.Contains(first) && e.stateA.Contains(last)
	if !aToB && !bToA {
		return false
	}

	for _, s := range t[1 : t.Len()-1] {
		if e.stateA.Contains(s) || e.stateB.Contains(s) {
			return false
		}
	}
	return true
}

// Interface covers TIS paths for one state and one interface: the path
// begins in its home state, crosses the interface at least once, ends
// in any state, and has no interior frame inside a state. Interfaces
// are level sets of a collective variable; crossing means the CV
// reaches lambda somewhere along the path.
type Interface struct {
	name      string
	state     volume.Volume
	allStates volume.Volume
	cv        paths.CV
	lambda    float64
}

func NewInterface(state, allStates volume.Volume, cv paths.CV, lambda float64) *Interface {
	return &Interface{
		name:      fmt.Sprintf("%s[%s>=%g]", state.Name(), cv.Name, lambda),
		state:     state,
		allStates: allStates,
		cv:        cv,
		lambda:    lambda,
	}
}

func (e *Interface) Name() string    { return e.name }
func (e *Interface) Lambda() float64 { return e.lambda }

// MaxCV returns the largest CV value along the path, the quantity TIS
// crossing analysis histograms.
func (e *Interface) MaxCV(t paths.Trajectory) float64 {
	max := e.cv.F(t.First())
	for _, s := range t[1:] {
		if v := e.cv.F(s); v > max {
			max = v
		}
	}
	return max
}

func (e *Interface) Covers(t paths.Trajectory) bool {
	if t.Len() < 2 {
		return false
	}
	if !e.state.Contains(t.First()) || !e.allStates.Contains(t.Last()) {
		return false
	}
	for _, s := range t[1 : t.Len()-1] {
		if e.allStates.Contains(s) {
			return false
		}
	}
	return e.MaxCV(t) >= e.lambda
}

// Length covers trajectories of exactly n frames. Used by engine and
// bootstrap tests where membership must be trivial to arrange.
type Length struct {
	name string
	n    int
}

func NewLength(n int) *Length {
	return &Length{name: fmt.Sprintf("len=%d", n), n: n}
}

func (e *Length) Name() string { return e.name }

func (e *Length) Covers(t paths.Trajectory) bool { return t.Len() == e.n }
