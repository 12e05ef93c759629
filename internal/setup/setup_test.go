package setup

import (
	"math"
	"testing"

	"github.com/mkoven/pathmc/internal/config"
	"github.com/mkoven/pathmc/internal/network"
	"github.com/mkoven/pathmc/internal/paths"
	"github.com/mkoven/pathmc/internal/storage"
)

func trajThrough(xs ...float64) paths.Trajectory {
	t := make(paths.Trajectory, len(xs))
	for i, x := range xs {
		t[i] = paths.NewSnapshot([]float64{x, 0}, []float64{0, 0})
	}
	return t
}

func TestBuildTwoStateToy(t *testing.T) {
	sys, err := Build(config.Preset("two_state_toy"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if _, ok := sys.Net.(*network.TPS); !ok {
		t.Fatalf("expected TPS network, got %T", sys.Net)
	}
	if got := len(sys.Net.Ensembles()); got != 1 {
		t.Errorf("ensembles = %d, want 1", got)
	}
	if got := len(sys.Scheme.Movers()); got != 2 {
		t.Errorf("movers = %d, want shooting + reversal", got)
	}
	if sys.Engine.MaxFrames() != config.DefaultMaxFrames {
		t.Errorf("max frames = %d", sys.Engine.MaxFrames())
	}
	if sys.CV.F(paths.NewSnapshot([]float64{0.25, -1}, []float64{0, 0})) != 0.25 {
		t.Error("cv should read the x coordinate")
	}
}

func TestBuildMSTISOrientation(t *testing.T) {
	sys, err := Build(config.Preset("mstis_toy"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	m, ok := sys.Net.(*network.MSTIS)
	if !ok {
		t.Fatalf("expected MSTIS network, got %T", sys.Net)
	}
	if got := len(m.Ensembles()); got != 6 {
		t.Fatalf("ensembles = %d, want 6", got)
	}

	// State B sits on the high side of the barrier, so its ladder runs
	// toward smaller x. A path from B reaching x=0.4 crosses B's middle
	// interface at x=0.45 but not its outer one at x=0.3.
	ladder := m.Ladder("B")
	if len(ladder) != 3 {
		t.Fatalf("ladder B size = %d, want 3", len(ladder))
	}
	path := trajThrough(0.7, 0.4, 0.7)
	if !ladder[1].Covers(path) {
		t.Error("middle B interface should cover a path reaching 0.4")
	}
	if ladder[2].Covers(path) {
		t.Error("outer B interface should not cover a path reaching only 0.4")
	}
}

func TestOrientRejectsAmbiguousLadder(t *testing.T) {
	cfg := config.Preset("mstis_toy")
	cfg.States = append(cfg.States, config.StateConfig{Name: "M", Min: -0.1, Max: 0.1})
	cfg.Interfaces["M"] = []float64{0.2}

	if _, err := Build(cfg); err == nil {
		t.Error("single-rung ladder on a bounded state should be rejected")
	}
}

func TestSchemeWeights(t *testing.T) {
	cfg := config.Preset("two_state_toy")
	cfg.Scheme.Shooting = 1.0
	cfg.Scheme.Reversal = 1.0
	sys, err := Build(cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	for _, m := range sys.Scheme.Movers() {
		p, err := sys.Scheme.Probability(m.Name())
		if err != nil {
			t.Fatalf("probability of %q: %v", m.Name(), err)
		}
		if math.Abs(p-0.5) > 1e-12 {
			t.Errorf("mover %q probability = %v, want 0.5", m.Name(), p)
		}
	}
}

func TestSetupRoundTripThroughStore(t *testing.T) {
	sys, err := Build(config.Preset("mstis_toy"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	store := storage.NewMemStore()
	if err := sys.SaveTo(store); err != nil {
		t.Fatalf("save setup: %v", err)
	}
	back, err := FromStore(store)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if len(back.Net.Ensembles()) != len(sys.Net.Ensembles()) {
		t.Errorf("rebuilt network has %d ensembles, want %d",
			len(back.Net.Ensembles()), len(sys.Net.Ensembles()))
	}
	if back.Config.Run.Steps != sys.Config.Run.Steps {
		t.Errorf("run config lost: %d != %d", back.Config.Run.Steps, sys.Config.Run.Steps)
	}
}

func TestInitialConditionsRoundTrip(t *testing.T) {
	store := storage.NewMemStore()
	ss := paths.NewSampleSet(
		paths.Sample{ReplicaID: 0, Ensemble: "E0", Trajectory: trajThrough(-0.7, 0, 0.7)},
		paths.Sample{ReplicaID: 1, Ensemble: "E1", Trajectory: trajThrough(-0.7, -0.5, -0.7)},
	)

	if err := SaveInitialConditions(store, ss); err != nil {
		t.Fatalf("save: %v", err)
	}
	back, err := LoadInitialConditions(store)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(back) != 2 {
		t.Fatalf("got %d samples, want 2", len(back))
	}
	if back["E1"].ReplicaID != 1 || back["E1"].Trajectory.Len() != 3 {
		t.Errorf("sample E1 corrupted: %+v", back["E1"])
	}
}
