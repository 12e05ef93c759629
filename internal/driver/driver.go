// Package driver owns the sampling session: bootstrapping initial
// conditions, the sequential Monte Carlo run loop, and persistence
// cadence. Everything else (moves, ensembles, engines, stores) plugs
// in through interfaces.
package driver

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"github.com/mkoven/pathmc/internal/move"
	"github.com/mkoven/pathmc/internal/paths"
	"github.com/mkoven/pathmc/internal/storage"
	"github.com/mkoven/pathmc/internal/volume"
)

// Options tune a sampling session.
type Options struct {
	// SaveEvery persists every Kth step. Values below 2 persist every
	// step. Logical state always advances every step regardless.
	SaveEvery int

	Seed int64

	// MaxBootstrapRetries bounds repair attempts per ensemble during
	// bootstrap. The interactive workflow this replaces looped
	// forever and relied on a human noticing; a bound is mandatory
	// here.
	MaxBootstrapRetries int

	// MaxDecorrelationSteps bounds RunUntilDecorrelated.
	MaxDecorrelationSteps int
}

func (o *Options) fillDefaults() {
	if o.MaxBootstrapRetries <= 0 {
		o.MaxBootstrapRetries = 20
	}
	if o.MaxDecorrelationSteps <= 0 {
		o.MaxDecorrelationSteps = 10000
	}
}

// Result accumulates per-session counters.
type Result struct {
	Steps      int
	Trials     map[string]int
	Accepted   map[string]int
	HookErrors int
}

// AcceptanceRatio returns accepted/trials for one mover name.
func (r *Result) AcceptanceRatio(mover string) float64 {
	trials := r.Trials[mover]
	if trials == 0 {
		return 0
	}
	return float64(r.Accepted[mover]) / float64(trials)
}

// PathSampler is the sampling session driver. Strictly sequential: one
// goroutine owns the active sample set and applies one move at a time.
type PathSampler struct {
	scheme    *move.Scheme
	ensembles []paths.Ensemble
	store     storage.Store
	opts      Options

	engine paths.Engine  // optional, enables bootstrap repair
	stop   volume.Volume // stopping set for repair shots

	active    paths.SampleSet
	stepIndex int
	rng       *rand.Rand
	observers []paths.Observer
	repairs   int

	result Result
}

func New(scheme *move.Scheme, ensembles []paths.Ensemble, store storage.Store, opts Options) *PathSampler {
	opts.fillDefaults()
	return &PathSampler{
		scheme:    scheme,
		ensembles: ensembles,
		store:     store,
		opts:      opts,
		rng:       rand.New(rand.NewSource(opts.Seed)),
		result: Result{
			Trials:   make(map[string]int),
			Accepted: make(map[string]int),
		},
	}
}

// WithEngine enables bootstrap repair shots: stop is the union of
// stable states that terminates trajectory growth.
func (p *PathSampler) WithEngine(engine paths.Engine, stop volume.Volume) *PathSampler {
	p.engine = engine
	p.stop = stop
	return p
}

func (p *PathSampler) AddObserver(o paths.Observer) { p.observers = append(p.observers, o) }

// SetActive installs initial conditions, e.g. loaded from a previous
// run's storage.
func (p *PathSampler) SetActive(ss paths.SampleSet) { p.active = ss }

func (p *PathSampler) Active() paths.SampleSet { return p.active }

func (p *PathSampler) Scheme() *move.Scheme { return p.scheme }

func (p *PathSampler) Result() *Result { return &p.result }

// EstimateIterations returns how many run-loop iterations are needed
// for the named mover's expected trial count to reach targetTrials.
func (p *PathSampler) EstimateIterations(mover string, targetTrials int) (int, error) {
	return p.scheme.StepsForTrials(mover, targetTrials)
}

// Run performs exactly n Monte Carlo steps. Engine failures inside a
// move count as rejections; storage failures abort; observer failures
// are logged and suppressed.
func (p *PathSampler) Run(ctx context.Context, n int) (*Result, error) {
	if p.active == nil {
		return nil, fmt.Errorf("no initial conditions: bootstrap or SetActive first")
	}

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return &p.result, ctx.Err()
		default:
		}

		mover := p.scheme.Choose(p.rng)
		if mover == nil {
			return &p.result, fmt.Errorf("move scheme is empty")
		}
		p.result.Trials[mover.Name()]++

		prop, err := mover.Propose(ctx, p.active, p.rng)
		accepted := false
		switch {
		case err != nil && paths.IsEngineFailure(err):
			// Integration blew up or ran out of frames: the move is
			// rejected, the walk continues.
		case err != nil:
			return &p.result, err
		default:
			accepted = prop.Acceptance >= 1 || p.rng.Float64() < prop.Acceptance
		}

		previous := p.active
		if accepted {
			p.active = p.active.Apply(prop.Samples...)
			p.result.Accepted[mover.Name()]++
		}
		p.stepIndex++
		p.result.Steps++

		if !p.shouldPersist() {
			continue
		}
		step := &paths.Step{
			Index:    p.stepIndex - 1,
			Mover:    mover.Name(),
			Accepted: accepted,
			Previous: previous,
			Active:   p.active,
		}
		if err := p.store.AppendStep(step); err != nil {
			return &p.result, &paths.StorageWriteError{Op: "append step", Err: err}
		}
		p.notify(step)
	}
	return &p.result, nil
}

func (p *PathSampler) shouldPersist() bool {
	if p.opts.SaveEvery < 2 {
		return true
	}
	return p.stepIndex%p.opts.SaveEvery == 0
}

// notify runs the visualization hooks for one persisted step. Hooks
// are best-effort observers: a panic inside one is logged and
// swallowed so sampling progress never depends on a UI.
func (p *PathSampler) notify(step *paths.Step) {
	for _, o := range p.observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					p.result.HookErrors++
					log.Printf("observer failed on step %d: %v", step.Index, r)
				}
			}()
			o.OnStep(step)
		}()
	}
}

// RunUntilDecorrelated samples until the active trajectory of every
// ensemble shares no frame with the trajectory it held at the start of
// the call, up to MaxDecorrelationSteps. Returns the number of steps
// taken.
func (p *PathSampler) RunUntilDecorrelated(ctx context.Context) (int, error) {
	if p.active == nil {
		return 0, fmt.Errorf("no initial conditions: bootstrap or SetActive first")
	}

	refs := make(map[string]paths.Trajectory, len(p.active))
	for name, s := range p.active {
		refs[name] = s.Trajectory
	}

	taken := 0
	for !p.decorrelated(refs) {
		if taken >= p.opts.MaxDecorrelationSteps {
			return taken, fmt.Errorf("%d steps: %w", taken, paths.ErrNotDecorrelated)
		}
		if _, err := p.Run(ctx, 1); err != nil {
			return taken, err
		}
		taken++
	}
	return taken, nil
}

func (p *PathSampler) decorrelated(refs map[string]paths.Trajectory) bool {
	for name, ref := range refs {
		s, ok := p.active[name]
		if !ok {
			continue
		}
		if s.Trajectory.SharesFrames(ref) {
			return false
		}
	}
	return true
}
