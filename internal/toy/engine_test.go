package toy

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/mkoven/pathmc/internal/paths"
)

func newTestRand() *rand.Rand { return rand.New(rand.NewSource(99)) }

func TestTwoStatePESShape(t *testing.T) {
	pes := TwoStatePES()

	wellA := pes.V([]float64{-0.6, 0})
	wellB := pes.V([]float64{0.6, 0})
	barrier := pes.V([]float64{0, 0})

	if math.Abs(wellA-wellB) > 1e-9 {
		t.Errorf("wells not symmetric: %v vs %v", wellA, wellB)
	}
	if barrier <= wellA {
		t.Errorf("no barrier between wells: V(0)=%v, V(well)=%v", barrier, wellA)
	}

	// Walls dominate far from the origin.
	if pes.V([]float64{3, 0}) < pes.V([]float64{1, 0}) {
		t.Error("outer wall not increasing")
	}
}

func TestGaussianGrad(t *testing.T) {
	g := &Gaussian{A: -1.0, Alpha: []float64{12.0, 5.0}, X0: []float64{-0.6, 0.0}}

	// Finite-difference check at a generic point.
	pos := []float64{-0.4, 0.2}
	grad := g.Grad(pos)
	const h = 1e-6
	for i := range pos {
		bumped := append([]float64(nil), pos...)
		bumped[i] += h
		fd := (g.V(bumped) - g.V(pos)) / h
		if math.Abs(fd-grad[i]) > 1e-4 {
			t.Errorf("grad[%d] = %v, finite difference %v", i, grad[i], fd)
		}
	}
}

func TestVelocityVerletEnergyConservation(t *testing.T) {
	pes := TwoStatePES()
	integ := NewVelocityVerlet(0.002)

	pos := []float64{-0.6, 0.0}
	vel := []float64{0.4, 0.1}
	energy := func(p, v []float64) float64 {
		ke := 0.0
		for _, vi := range v {
			ke += 0.5 * vi * vi
		}
		return ke + pes.V(p)
	}

	e0 := energy(pos, vel)
	for i := 0; i < 2000; i++ {
		integ.Step(pes, pos, vel, nil)
	}
	drift := math.Abs(energy(pos, vel)-e0) / math.Abs(e0)
	if drift > 1e-3 {
		t.Errorf("energy drift %v too large for symplectic integrator", drift)
	}
}

func TestEngineExtendStopsInState(t *testing.T) {
	eng := NewEngine(TwoStatePES(), NewLangevinBAOAB(0.02, 0.1, 2.5), 5000, 42)

	inAnyState := func(s *paths.Snapshot) bool {
		return s.Coords[0] < -0.6 || s.Coords[0] >= 0.6
	}

	seed := paths.NewSnapshot([]float64{0, 0}, []float64{0, 0})
	traj, err := eng.Extend(context.Background(), seed, paths.Forward, inAnyState)
	if err != nil {
		t.Fatalf("extend failed: %v", err)
	}

	if traj.First().ID != seed.ID {
		t.Error("segment does not start at the seed frame")
	}
	if !inAnyState(traj.Last()) {
		t.Errorf("segment did not end in a state: x=%v", traj.Last().Coords[0])
	}
	for _, s := range traj[:traj.Len()-1] {
		if inAnyState(s) {
			t.Error("stop condition fired mid-segment without terminating")
			break
		}
	}
}

func TestEngineExtendBackward(t *testing.T) {
	eng := NewEngine(TwoStatePES(), NewLangevinBAOAB(0.02, 0.1, 2.5), 5000, 7)

	inAnyState := func(s *paths.Snapshot) bool {
		return s.Coords[0] < -0.6 || s.Coords[0] >= 0.6
	}

	seed := paths.NewSnapshot([]float64{0, 0}, []float64{0.1, 0})
	traj, err := eng.Extend(context.Background(), seed, paths.Backward, inAnyState)
	if err != nil {
		t.Fatalf("backward extend failed: %v", err)
	}

	// Backward segments come out ordered forward in time: they end at
	// the seed configuration and begin in a state.
	if traj.Last().ID != seed.ID {
		t.Error("backward segment does not end at the seed frame")
	}
	if !inAnyState(traj.First()) {
		t.Error("backward segment does not begin in a state")
	}
}

func TestEngineMaxLength(t *testing.T) {
	eng := NewEngine(TwoStatePES(), NewLangevinBAOAB(0.02, 0.1, 2.5), 10, 1)

	never := func(*paths.Snapshot) bool { return false }
	seed := paths.NewSnapshot([]float64{0, 0}, []float64{0, 0})

	_, err := eng.Extend(context.Background(), seed, paths.Forward, never)
	if !errors.Is(err, paths.ErrMaxLength) {
		t.Errorf("expected ErrMaxLength, got %v", err)
	}
	if !paths.IsEngineFailure(err) {
		t.Error("max-length failure should classify as an engine failure")
	}
}

func TestEngineContextCancel(t *testing.T) {
	eng := NewEngine(TwoStatePES(), NewLangevinBAOAB(0.02, 0.1, 2.5), 1000000, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	never := func(*paths.Snapshot) bool { return false }
	seed := paths.NewSnapshot([]float64{0, 0}, []float64{0, 0})

	if _, err := eng.Extend(ctx, seed, paths.Forward, never); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestVelocityRandomizer(t *testing.T) {
	r := NewVelocityRandomizer(10.0)
	rng := newTestRand()

	s := paths.NewSnapshot([]float64{0.3, -0.1}, []float64{0, 0})
	out := r.Randomize(s, rng)

	if out.ID == s.ID {
		t.Error("randomized snapshot should be a new phase point")
	}
	if out.Coords[0] != 0.3 || out.Coords[1] != -0.1 {
		t.Error("randomizer moved the configuration")
	}

	// Sample variance should be near 1/beta.
	var sum2 float64
	const n = 4000
	for i := 0; i < n; i++ {
		v := r.Randomize(s, rng).Vels[0]
		sum2 += v * v
	}
	variance := sum2 / n
	if math.Abs(variance-0.1) > 0.02 {
		t.Errorf("velocity variance %v, want ~0.1", variance)
	}
}
