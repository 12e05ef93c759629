package network

import (
	"math"
	"testing"

	"github.com/mkoven/pathmc/internal/paths"
	"github.com/mkoven/pathmc/internal/volume"
)

var cvX = paths.CV{Name: "x", F: func(s *paths.Snapshot) float64 { return s.Coords[0] }}

func threeStates() []volume.Volume {
	return []volume.Volume{
		volume.NewCVDefined("A", cvX, math.Inf(-1), -0.6),
		volume.NewCVDefined("B", cvX, -0.1, 0.1),
		volume.NewCVDefined("C", cvX, 0.6, math.Inf(1)),
	}
}

func TestNewTPSPairs(t *testing.T) {
	states := threeStates()

	two, err := NewTPS(states[0], states[2])
	if err != nil {
		t.Fatalf("two-state network: %v", err)
	}
	if len(two.Ensembles()) != 1 {
		t.Errorf("two states should give 1 ensemble, got %d", len(two.Ensembles()))
	}

	three, err := NewTPS(states...)
	if err != nil {
		t.Fatalf("three-state network: %v", err)
	}
	if len(three.Ensembles()) != 3 {
		t.Errorf("three states should give 3 pair ensembles, got %d", len(three.Ensembles()))
	}

	if _, err := NewTPS(states[0]); err == nil {
		t.Error("single-state network should be rejected")
	}
}

func TestNewMSTIS(t *testing.T) {
	states := threeStates()
	negX := paths.CV{Name: "-x", F: func(s *paths.Snapshot) float64 { return -s.Coords[0] }}
	n, err := NewMSTIS(
		StateDef{State: states[0], CV: cvX, Lambdas: []float64{-0.6, -0.45, -0.3}},
		StateDef{State: states[2], CV: negX, Lambdas: []float64{-0.6, -0.45}},
	)
	if err != nil {
		t.Fatalf("mstis: %v", err)
	}

	if len(n.Ensembles()) != 5 {
		t.Errorf("expected 5 interface ensembles, got %d", len(n.Ensembles()))
	}
	if got := len(n.Ladder("A")); got != 3 {
		t.Errorf("ladder A size = %d, want 3", got)
	}
	if got := len(n.Ladder("C")); got != 2 {
		t.Errorf("ladder C size = %d, want 2", got)
	}
}

func TestNewMSTISValidation(t *testing.T) {
	states := threeStates()

	if _, err := NewMSTIS(StateDef{State: states[0], CV: cvX, Lambdas: []float64{0}}); err == nil {
		t.Error("single-state interface network should be rejected")
	}

	_, err := NewMSTIS(
		StateDef{State: states[0], CV: cvX, Lambdas: []float64{-0.3, -0.45}},
		StateDef{State: states[2], CV: cvX, Lambdas: []float64{0.6}},
	)
	if err == nil {
		t.Error("unsorted interface ladder should be rejected")
	}

	_, err = NewMSTIS(
		StateDef{State: states[0], CV: cvX, Lambdas: nil},
		StateDef{State: states[2], CV: cvX, Lambdas: []float64{0.6}},
	)
	if err == nil {
		t.Error("empty ladder should be rejected")
	}
}
