package paths

import "testing"

type fakeEnsemble struct {
	name   string
	minLen int
}

func (f fakeEnsemble) Name() string             { return f.name }
func (f fakeEnsemble) Covers(t Trajectory) bool { return t.Len() >= f.minLen }

func TestSampleSetApply(t *testing.T) {
	ss := NewSampleSet(
		Sample{ReplicaID: 0, Ensemble: "A", Trajectory: makeTraj(0)},
		Sample{ReplicaID: 1, Ensemble: "B", Trajectory: makeTraj(1)},
		Sample{ReplicaID: 2, Ensemble: "C", Trajectory: makeTraj(2)},
	)

	newB := Sample{ReplicaID: 1, Ensemble: "B", Trajectory: makeTraj(3, 4)}
	out := ss.Apply(newB)

	// Untouched ensembles keep their samples.
	if out["A"].Trajectory.Len() != 1 || out["C"].Trajectory.Len() != 1 {
		t.Error("Apply modified ensembles not named in the update")
	}
	if out["B"].Trajectory.Len() != 2 {
		t.Error("Apply did not replace the named ensemble")
	}

	// The receiver is unchanged.
	if ss["B"].Trajectory.Len() != 1 {
		t.Error("Apply mutated the receiver")
	}
}

func TestSampleSetApplyIdempotent(t *testing.T) {
	ss := NewSampleSet(Sample{ReplicaID: 0, Ensemble: "A", Trajectory: makeTraj(0)})
	repl := Sample{ReplicaID: 0, Ensemble: "A", Trajectory: makeTraj(1, 2)}

	once := ss.Apply(repl)
	twice := once.Apply(repl)

	if len(twice) != 1 || twice["A"].Trajectory.Len() != 2 {
		t.Error("replace-by-key is not idempotent")
	}
}

func TestSampleSetReplicas(t *testing.T) {
	ss := NewSampleSet(
		Sample{ReplicaID: 4, Ensemble: "A"},
		Sample{ReplicaID: 7, Ensemble: "B"},
	)

	reps := ss.Replicas()
	if reps["A"] != 4 || reps["B"] != 7 {
		t.Errorf("replica mapping wrong: %v", reps)
	}
}

func TestSampleSetValidate(t *testing.T) {
	ss := NewSampleSet(Sample{ReplicaID: 0, Ensemble: "long", Trajectory: makeTraj(1, 2, 3)})

	long := fakeEnsemble{name: "long", minLen: 2}
	if err := ss.Validate([]Ensemble{long}); err != nil {
		t.Errorf("valid set rejected: %v", err)
	}

	strict := fakeEnsemble{name: "long", minLen: 10}
	if err := ss.Validate([]Ensemble{strict}); err == nil {
		t.Error("predicate violation not detected")
	}

	missing := fakeEnsemble{name: "other", minLen: 0}
	if err := ss.Validate([]Ensemble{missing}); err == nil {
		t.Error("missing occupant not detected")
	}
}
