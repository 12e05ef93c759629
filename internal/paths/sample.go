package paths

import (
	"fmt"
	"sort"
)

// Sample is one occupant of one sampling ensemble: a replica label, the
// ensemble it occupies, and the trajectory that satisfies it.
type Sample struct {
	ReplicaID  int
	Ensemble   string
	Trajectory Trajectory
}

// SampleSet maps ensemble name to its single occupant. It is the full
// Monte Carlo state at one step. Never edited in place: Apply returns a
// new set with the given samples replaced by ensemble key.
type SampleSet map[string]Sample

func NewSampleSet(samples ...Sample) SampleSet {
	ss := make(SampleSet, len(samples))
	for _, s := range samples {
		ss[s.Ensemble] = s
	}
	return ss
}

// Apply replaces occupants by ensemble key, leaving every other
// ensemble untouched. The receiver is not modified.
func (ss SampleSet) Apply(samples ...Sample) SampleSet {
	out := make(SampleSet, len(ss))
	for k, v := range ss {
		out[k] = v
	}
	for _, s := range samples {
		out[s.Ensemble] = s
	}
	return out
}

// Ensembles returns the occupied ensemble names, sorted for stable
// iteration.
func (ss SampleSet) Ensembles() []string {
	names := make([]string, 0, len(ss))
	for name := range ss {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Replicas returns the ensemble->replica mapping.
func (ss SampleSet) Replicas() map[string]int {
	out := make(map[string]int, len(ss))
	for name, s := range ss {
		out[name] = s.ReplicaID
	}
	return out
}

// Validate checks that every given ensemble is occupied and that each
// occupant's trajectory satisfies its ensemble's predicate.
func (ss SampleSet) Validate(ensembles []Ensemble) error {
	for _, ens := range ensembles {
		s, ok := ss[ens.Name()]
		if !ok {
			return fmt.Errorf("ensemble %q has no occupant", ens.Name())
		}
		if !ens.Covers(s.Trajectory) {
			return fmt.Errorf("trajectory in ensemble %q violates its predicate", ens.Name())
		}
	}
	return nil
}

// Step is the immutable record of one Monte Carlo iteration.
type Step struct {
	Index    int
	Mover    string
	Accepted bool
	Previous SampleSet
	Active   SampleSet
}
