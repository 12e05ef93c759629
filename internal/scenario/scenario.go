// Package scenario runs scripted multi-stage sampling campaigns from a
// YAML description: typically an equilibration stage followed by one or
// more production or committor stages, each writing its own output.
package scenario

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mkoven/pathmc/internal/config"
	"github.com/mkoven/pathmc/internal/driver"
	"github.com/mkoven/pathmc/internal/paths"
	"github.com/mkoven/pathmc/internal/setup"
	"github.com/mkoven/pathmc/internal/storage"
)

// Scenario is a named sequence of sampling stages sharing one system.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Preset      string         `yaml:"preset"`
	Config      *config.Config `yaml:"config"`
	Stages      []Stage        `yaml:"stages"`
}

// Stage is one unit of work. Kind selects the workflow:
// "equilibrate" decorrelates from the bootstrap paths, "sample" runs
// production steps, "committor" fires shots from the barrier.
type Stage struct {
	Kind       string `yaml:"kind"`
	Steps      int    `yaml:"steps"`
	ExtraSteps int    `yaml:"extra_steps"`
	Shots      int    `yaml:"shots"`
	Output     string `yaml:"output"`
}

// Result summarizes one completed stage.
type Result struct {
	Stage   Stage
	Steps   int
	Records []driver.ShotRecord
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if err := sc.validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) validate() error {
	if sc.Preset == "" && sc.Config == nil {
		return fmt.Errorf("scenario needs a preset name or an inline config")
	}
	if len(sc.Stages) == 0 {
		return fmt.Errorf("scenario has no stages")
	}
	for i, st := range sc.Stages {
		switch st.Kind {
		case "equilibrate", "sample", "committor":
		default:
			return fmt.Errorf("stage %d: unknown kind %q", i+1, st.Kind)
		}
		if st.Output == "" {
			return fmt.Errorf("stage %d: output path required", i+1)
		}
	}
	return nil
}

func (sc *Scenario) config() (*config.Config, error) {
	if sc.Config != nil {
		if err := sc.Config.Validate(); err != nil {
			return nil, err
		}
		return sc.Config, nil
	}
	cfg := config.Preset(sc.Preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset %q (available: %v)", sc.Preset, config.PresetNames())
	}
	return cfg, nil
}

// Run executes all stages in order. The active sample set flows from
// one stage into the next, so later stages continue where earlier ones
// stopped.
func Run(ctx context.Context, sc *Scenario) ([]Result, error) {
	cfg, err := sc.config()
	if err != nil {
		return nil, err
	}
	sys, err := setup.Build(cfg)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(sc.Stages))
	var active paths.SampleSet

	for i, st := range sc.Stages {
		fmt.Printf("stage %d/%d: %s -> %s\n", i+1, len(sc.Stages), st.Kind, st.Output)

		res, next, err := runStage(ctx, sys, st, active)
		if err != nil {
			return results, fmt.Errorf("stage %d (%s): %w", i+1, st.Kind, err)
		}
		active = next
		results = append(results, res)
	}
	return results, nil
}

func runStage(ctx context.Context, sys *setup.System, st Stage, active paths.SampleSet) (Result, paths.SampleSet, error) {
	if st.Kind == "committor" {
		records, err := sys.Committor().Run(ctx, snapshotsFrom(sys, active), st.Shots)
		if err != nil {
			return Result{}, active, err
		}
		if err := saveShots(st.Output, records); err != nil {
			return Result{}, active, err
		}
		return Result{Stage: st, Records: records}, active, nil
	}

	store, err := storage.Create(st.Output)
	if err != nil {
		return Result{}, active, err
	}
	defer store.Close()

	if err := sys.SaveTo(store); err != nil {
		return Result{}, active, err
	}
	sampler := sys.Sampler(store)

	if active != nil {
		sampler.SetActive(active)
	} else {
		if _, err := sampler.Bootstrap(ctx, sys.SeedCandidates(4)); err != nil {
			return Result{}, active, err
		}
	}

	taken := 0
	if st.Kind == "equilibrate" {
		n, err := sampler.RunUntilDecorrelated(ctx)
		if err != nil {
			return Result{}, active, err
		}
		taken = n
		if st.ExtraSteps > 0 {
			if _, err := sampler.Run(ctx, st.ExtraSteps); err != nil {
				return Result{}, active, err
			}
			taken += st.ExtraSteps
		}
	} else {
		steps := st.Steps
		if steps <= 0 {
			steps = sys.Config.Run.Steps
		}
		if _, err := sampler.Run(ctx, steps); err != nil {
			return Result{}, active, err
		}
		taken = steps
	}

	if err := setup.SaveInitialConditions(store, sampler.Active()); err != nil {
		return Result{}, active, err
	}
	return Result{Stage: st, Steps: taken}, sampler.Active(), nil
}

// snapshotsFrom picks committor starting points: the middle frame of
// each active trajectory, or barrier seeds when nothing is active yet.
func snapshotsFrom(sys *setup.System, active paths.SampleSet) []*paths.Snapshot {
	if active == nil {
		var snaps []*paths.Snapshot
		for _, t := range sys.SeedCandidates(4) {
			snaps = append(snaps, t.First())
		}
		return snaps
	}
	var snaps []*paths.Snapshot
	for _, ens := range active.Ensembles() {
		t := active[ens].Trajectory
		if t.Len() > 0 {
			snaps = append(snaps, t[t.Len()/2])
		}
	}
	return snaps
}

func saveShots(path string, records []driver.ShotRecord) error {
	data, err := yaml.Marshal(records)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
