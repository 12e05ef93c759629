package move

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/mkoven/pathmc/internal/ensemble"
	"github.com/mkoven/pathmc/internal/paths"
	"github.com/mkoven/pathmc/internal/volume"
)

var cvX = paths.CV{Name: "x", F: func(s *paths.Snapshot) float64 { return s.Coords[0] }}

func snapAt(x float64) *paths.Snapshot {
	return paths.NewSnapshot([]float64{x, 0}, []float64{0.1, 0})
}

func traj(xs ...float64) paths.Trajectory {
	t := make(paths.Trajectory, len(xs))
	for i, x := range xs {
		t[i] = snapAt(x)
	}
	return t
}

func twoStateSetup() (volume.Volume, volume.Volume, *ensemble.TPS) {
	a := volume.NewCVDefined("A", cvX, math.Inf(-1), -0.6)
	b := volume.NewCVDefined("B", cvX, 0.6, math.Inf(1))
	return a, b, ensemble.NewTPS(a, b)
}

// stubEngine jumps straight into a state: one extra frame on the
// shooting side, B when integrating forward and A when backward.
type stubEngine struct {
	err error
}

func (e *stubEngine) Extend(_ context.Context, seed *paths.Snapshot, dir paths.Direction, stop func(*paths.Snapshot) bool) (paths.Trajectory, error) {
	if e.err != nil {
		return nil, e.err
	}
	if dir == paths.Forward {
		return paths.Trajectory{seed, snapAt(0.9)}, nil
	}
	return paths.Trajectory{snapAt(-0.9), seed}, nil
}

func TestOneWayShootingPropose(t *testing.T) {
	a, b, tps := twoStateSetup()
	stop := volume.NewUnion(a, b)

	old := traj(-0.8, -0.3, 0.0, 0.3, 0.8)
	current := paths.NewSampleSet(paths.Sample{ReplicaID: 0, Ensemble: tps.Name(), Trajectory: old})

	m := NewOneWayShooting(tps, stop, &stubEngine{})
	rng := rand.New(rand.NewSource(3))
	accepted := 0
	for i := 0; i < 50; i++ {
		prop, err := m.Propose(context.Background(), current, rng)
		if err != nil {
			t.Fatalf("propose: %v", err)
		}
		if prop.ShootingPoint < 1 || prop.ShootingPoint > old.Len()-2 {
			t.Fatalf("shooting point %d not interior", prop.ShootingPoint)
		}
		if len(prop.Samples) != 1 {
			t.Fatalf("expected one candidate sample, got %d", len(prop.Samples))
		}

		trial := prop.Samples[0].Trajectory
		if prop.Acceptance > 0 {
			accepted++
			if !tps.Covers(trial) {
				t.Fatal("proposal with nonzero acceptance violates the ensemble")
			}
			want := math.Min(1, float64(old.Len())/float64(trial.Len()))
			if math.Abs(prop.Acceptance-want) > 1e-12 {
				t.Fatalf("acceptance %v, want %v", prop.Acceptance, want)
			}
		}
	}
	if accepted == 0 {
		t.Error("stub engine always reaches a state; some proposals must be acceptable")
	}
}

func TestOneWayShootingEngineFailure(t *testing.T) {
	a, b, tps := twoStateSetup()
	stop := volume.NewUnion(a, b)

	m := NewOneWayShooting(tps, stop, &stubEngine{err: paths.ErrMaxLength})
	current := paths.NewSampleSet(paths.Sample{Ensemble: tps.Name(), Trajectory: traj(-0.8, 0, 0.8)})

	_, err := m.Propose(context.Background(), current, rand.New(rand.NewSource(1)))
	if err == nil || !errors.Is(err, paths.ErrMaxLength) {
		t.Errorf("expected wrapped ErrMaxLength, got %v", err)
	}
	if !paths.IsEngineFailure(err) {
		t.Error("engine failure should classify as recoverable")
	}
}

func TestOneWayShootingTooShort(t *testing.T) {
	a, b, tps := twoStateSetup()
	m := NewOneWayShooting(tps, volume.NewUnion(a, b), &stubEngine{})

	current := paths.NewSampleSet(paths.Sample{Ensemble: tps.Name(), Trajectory: traj(-0.8, 0.8)})
	prop, err := m.Propose(context.Background(), current, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	if prop.Acceptance != 0 {
		t.Error("two-frame path has no interior shooting point; must reject")
	}
}

func TestPathReversal(t *testing.T) {
	_, _, tps := twoStateSetup()
	m := NewPathReversal(tps)

	old := traj(-0.8, 0.0, 0.8)
	current := paths.NewSampleSet(paths.Sample{ReplicaID: 2, Ensemble: tps.Name(), Trajectory: old})

	prop, err := m.Propose(context.Background(), current, nil)
	if err != nil {
		t.Fatal(err)
	}
	if prop.Acceptance != 1 {
		t.Errorf("reversal of a symmetric transition path must be accepted, got %v", prop.Acceptance)
	}
	trial := prop.Samples[0].Trajectory
	if trial.First().ID != old.Last().ID {
		t.Error("proposal is not the reversed path")
	}
	if prop.Samples[0].ReplicaID != 2 {
		t.Error("reversal must keep the replica label")
	}
}

func TestReplicaExchange(t *testing.T) {
	a, b, _ := twoStateSetup()
	all := volume.NewUnion(a, b)
	inner := ensemble.NewInterface(a, all, cvX, -0.5)
	outer := ensemble.NewInterface(a, all, cvX, -0.2)

	// Path crossing only the inner interface, and one crossing both.
	innerOnly := traj(-0.8, -0.4, -0.8)
	both := traj(-0.8, -0.1, -0.8)

	current := paths.NewSampleSet(
		paths.Sample{ReplicaID: 0, Ensemble: inner.Name(), Trajectory: both},
		paths.Sample{ReplicaID: 1, Ensemble: outer.Name(), Trajectory: both},
	)

	m := NewReplicaExchange(inner, outer)
	prop, err := m.Propose(context.Background(), current, nil)
	if err != nil {
		t.Fatal(err)
	}
	if prop.Acceptance != 1 {
		t.Errorf("both paths qualify for both ensembles; swap must be accepted, got %v", prop.Acceptance)
	}
	if prop.Samples[0].Ensemble != inner.Name() || prop.Samples[0].ReplicaID != 1 {
		t.Error("replica labels should follow their trajectories")
	}

	// Inner-only path cannot move outward.
	blocked := paths.NewSampleSet(
		paths.Sample{ReplicaID: 0, Ensemble: inner.Name(), Trajectory: innerOnly},
		paths.Sample{ReplicaID: 1, Ensemble: outer.Name(), Trajectory: both},
	)
	prop, err = m.Propose(context.Background(), blocked, nil)
	if err != nil {
		t.Fatal(err)
	}
	if prop.Acceptance != 0 {
		t.Error("swap placing a non-crossing path in the outer ensemble must be rejected")
	}
}
