// Package setup turns a validated config into a runnable sampling
// session: collective variable, state volumes, engine, network, move
// scheme, and driver. It also round-trips the setup through storage
// tags so follow-up commands can rebuild the same system from a run
// file alone.
package setup

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/mkoven/pathmc/internal/config"
	"github.com/mkoven/pathmc/internal/driver"
	"github.com/mkoven/pathmc/internal/move"
	"github.com/mkoven/pathmc/internal/network"
	"github.com/mkoven/pathmc/internal/paths"
	"github.com/mkoven/pathmc/internal/storage"
	"github.com/mkoven/pathmc/internal/toy"
	"github.com/mkoven/pathmc/internal/volume"
)

// System holds every runtime object built from one config.
type System struct {
	Config     *config.Config
	CV         paths.CV
	States     []volume.Volume
	Stop       volume.Volume
	Engine     *toy.Engine
	Randomizer *toy.VelocityRandomizer
	Net        network.Network
	Scheme     *move.Scheme
}

// Build assembles a system from a validated config.
func Build(cfg *config.Config) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	axis := 0
	if cfg.CV == "y" {
		axis = 1
	}
	cv := paths.CV{Name: cfg.CV, F: func(s *paths.Snapshot) float64 { return s.Coords[axis] }}

	states := make([]volume.Volume, len(cfg.States))
	for i, sc := range cfg.States {
		states[i] = volume.NewCVDefined(sc.Name, cv, sc.Min, sc.Max)
	}
	stop := volume.NewUnion(states...)

	engine := toy.NewEngine(
		toy.TwoStatePES(),
		toy.NewLangevinBAOAB(cfg.Engine.Dt, cfg.Engine.Temperature, cfg.Engine.Gamma),
		cfg.Engine.MaxFrames,
		cfg.Engine.Seed,
	)
	randomizer := toy.NewVelocityRandomizer(cfg.Committor.Beta)

	var net network.Network
	var err error
	if cfg.MSTIS() {
		defs := make([]network.StateDef, 0, len(cfg.Interfaces))
		for i, st := range states {
			lambdas, ok := cfg.Interfaces[st.Name()]
			if !ok {
				continue
			}
			def, derr := orient(st, cfg.States[i], cv, lambdas)
			if derr != nil {
				return nil, derr
			}
			defs = append(defs, def)
		}
		net, err = network.NewMSTIS(defs...)
	} else {
		net, err = network.NewTPS(states...)
	}
	if err != nil {
		return nil, err
	}

	s := &System{
		Config:     cfg,
		CV:         cv,
		States:     states,
		Stop:       stop,
		Engine:     engine,
		Randomizer: randomizer,
		Net:        net,
	}
	s.Scheme = s.buildScheme()
	return s, nil
}

// orient maps a state's interface ladder onto an outward-increasing
// collective variable. Ladders written in decreasing CV order describe
// a state on the high side of the barrier and get the negated CV.
func orient(st volume.Volume, sc config.StateConfig, cv paths.CV, lambdas []float64) (network.StateDef, error) {
	increasing := false
	switch {
	case len(lambdas) >= 2:
		increasing = lambdas[1] > lambdas[0]
	case math.IsInf(sc.Min, -1):
		increasing = true
	case math.IsInf(sc.Max, 1):
		increasing = false
	default:
		return network.StateDef{}, fmt.Errorf(
			"state %q: cannot infer interface direction from a single position on a bounded state", sc.Name)
	}

	if increasing {
		return network.StateDef{State: st, CV: cv, Lambdas: lambdas}, nil
	}
	neg := paths.CV{Name: "-" + cv.Name, F: func(s *paths.Snapshot) float64 { return -cv.F(s) }}
	flipped := make([]float64, len(lambdas))
	for i, l := range lambdas {
		flipped[i] = -l
	}
	return network.StateDef{State: st, CV: neg, Lambdas: flipped}, nil
}

func (s *System) buildScheme() *move.Scheme {
	w := s.Config.Scheme
	sch := move.NewScheme()
	for _, ens := range s.Net.Ensembles() {
		sch.Add(move.NewOneWayShooting(ens, s.Stop, s.Engine), w.Shooting)
		sch.Add(move.NewPathReversal(ens), w.Reversal)
	}
	if m, ok := s.Net.(*network.MSTIS); ok {
		for _, st := range m.States() {
			ladder := m.Ladder(st.Name())
			for i := 0; i+1 < len(ladder); i++ {
				sch.Add(move.NewReplicaExchange(ladder[i], ladder[i+1]), w.Repex)
			}
		}
	}
	return sch
}

// Sampler wires the system into a session driver writing to store.
func (s *System) Sampler(store storage.Store) *driver.PathSampler {
	run := s.Config.Run
	opts := driver.Options{
		SaveEvery:             run.SaveEvery,
		Seed:                  run.Seed,
		MaxBootstrapRetries:   run.BootstrapRetries,
		MaxDecorrelationSteps: run.MaxDecorrSteps,
	}
	return driver.New(s.Scheme, s.Net.Ensembles(), store, opts).WithEngine(s.Engine, s.Stop)
}

// Committor builds a committor simulation over the system's states.
func (s *System) Committor() *driver.Committor {
	return driver.NewCommittor(s.Engine, s.States, s.Randomizer, s.Config.Run.Seed)
}

// ParallelCommittor builds a fan-out committor. Workers must not share
// the session engine, so each gets a fresh one from the same config.
func (s *System) ParallelCommittor() *driver.ParallelCommittor {
	e := s.Config.Engine
	factory := func(seed int64) paths.Engine {
		return toy.NewEngine(
			toy.TwoStatePES(),
			toy.NewLangevinBAOAB(e.Dt, e.Temperature, e.Gamma),
			e.MaxFrames,
			seed,
		)
	}
	return driver.NewParallelCommittor(factory, s.States, s.Randomizer, s.Config.Run.Seed)
}

// SeedCandidates returns single-frame trajectories at the barrier top
// with thermal velocities. Bootstrap repair grows full transition
// paths from these when no previous run supplies initial conditions.
func (s *System) SeedCandidates(n int) []paths.Trajectory {
	rng := rand.New(rand.NewSource(s.Config.Run.Seed + 1))
	saddle := paths.NewSnapshot([]float64{0, 0}, []float64{0, 0})

	candidates := make([]paths.Trajectory, n)
	for i := range candidates {
		candidates[i] = paths.Trajectory{s.Randomizer.Randomize(saddle, rng)}
	}
	return candidates
}

// SaveTo records the marshaled config under the setup tag.
func (s *System) SaveTo(store storage.Store) error {
	data, err := s.Config.Marshal()
	if err != nil {
		return fmt.Errorf("marshal setup: %w", err)
	}
	return store.SetTag(storage.TagSetup, data)
}

// FromStore rebuilds the system recorded in a store's setup tag.
func FromStore(store storage.Store) (*System, error) {
	data, err := store.Tag(storage.TagSetup)
	if err != nil {
		return nil, fmt.Errorf("read setup tag: %w", err)
	}
	cfg, err := config.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse stored setup: %w", err)
	}
	return Build(cfg)
}

// SaveInitialConditions tags the sample set later runs start from.
func SaveInitialConditions(store storage.Store, ss paths.SampleSet) error {
	data, err := storage.EncodeSampleSet(ss)
	if err != nil {
		return fmt.Errorf("encode initial conditions: %w", err)
	}
	return store.SetTag(storage.TagInitialConditions, data)
}

// LoadInitialConditions reads the tagged sample set back.
func LoadInitialConditions(store storage.Store) (paths.SampleSet, error) {
	data, err := store.Tag(storage.TagInitialConditions)
	if err != nil {
		return nil, fmt.Errorf("read initial conditions: %w", err)
	}
	return storage.DecodeSampleSet(data)
}
