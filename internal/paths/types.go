package paths

import (
	"context"
	"math"
	"sync/atomic"
)

var snapshotID atomic.Uint64

// NextSnapshotID hands out process-unique snapshot identifiers. The ID
// names a configuration: a reversed copy of a snapshot keeps the ID of
// the original so decorrelation checks see them as the same frame.
func NextSnapshotID() uint64 {
	return snapshotID.Add(1)
}

// ReserveSnapshotIDs raises the ID counter to at least floor, so that
// snapshots loaded from storage never collide with freshly generated
// ones.
func ReserveSnapshotIDs(floor uint64) {
	for {
		cur := snapshotID.Load()
		if cur >= floor || snapshotID.CompareAndSwap(cur, floor) {
			return
		}
	}
}

// Snapshot is one immutable point in phase space.
type Snapshot struct {
	ID     uint64    `json:"id"`
	Coords []float64 `json:"coords"`
	Vels   []float64 `json:"vels"`
}

func NewSnapshot(coords, vels []float64) *Snapshot {
	s := &Snapshot{
		ID:     NextSnapshotID(),
		Coords: make([]float64, len(coords)),
		Vels:   make([]float64, len(vels)),
	}
	copy(s.Coords, coords)
	copy(s.Vels, vels)
	return s
}

// Reversed returns the time-reversed snapshot: same configuration (and
// therefore same ID), negated velocities.
func (s *Snapshot) Reversed() *Snapshot {
	r := &Snapshot{
		ID:     s.ID,
		Coords: make([]float64, len(s.Coords)),
		Vels:   make([]float64, len(s.Vels)),
	}
	copy(r.Coords, s.Coords)
	for i, v := range s.Vels {
		r.Vels[i] = -v
	}
	return r
}

func (s *Snapshot) IsValid() bool {
	for _, v := range s.Coords {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	for _, v := range s.Vels {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Trajectory is an ordered, finite sequence of snapshots. Immutable once
// produced; all operations return new trajectories.
type Trajectory []*Snapshot

func (t Trajectory) Len() int { return len(t) }

func (t Trajectory) First() *Snapshot {
	if len(t) == 0 {
		return nil
	}
	return t[0]
}

func (t Trajectory) Last() *Snapshot {
	if len(t) == 0 {
		return nil
	}
	return t[len(t)-1]
}

// Reversed returns the trajectory run backwards in time.
func (t Trajectory) Reversed() Trajectory {
	r := make(Trajectory, len(t))
	for i, s := range t {
		r[len(t)-1-i] = s.Reversed()
	}
	return r
}

// Concat splices two segments that share a boundary frame: the first
// frame of other is dropped when it repeats the last frame of t.
func (t Trajectory) Concat(other Trajectory) Trajectory {
	if len(t) > 0 && len(other) > 0 && t.Last().ID == other.First().ID {
		other = other[1:]
	}
	r := make(Trajectory, 0, len(t)+len(other))
	r = append(r, t...)
	r = append(r, other...)
	return r
}

// SharesFrames reports whether the two trajectories have any snapshot in
// common, by configuration identity. Used for decorrelation checks.
func (t Trajectory) SharesFrames(other Trajectory) bool {
	seen := make(map[uint64]struct{}, len(t))
	for _, s := range t {
		seen[s.ID] = struct{}{}
	}
	for _, s := range other {
		if _, ok := seen[s.ID]; ok {
			return true
		}
	}
	return false
}

// CV is a named collective variable: a scalar function of one snapshot.
type CV struct {
	Name string
	F    func(*Snapshot) float64
}

// Eval maps the CV over a whole trajectory.
func (cv CV) Eval(t Trajectory) []float64 {
	out := make([]float64, len(t))
	for i, s := range t {
		out[i] = cv.F(s)
	}
	return out
}

// Ensemble is a predicate over trajectories: which paths are valid
// members of one sampling category.
type Ensemble interface {
	Name() string
	Covers(Trajectory) bool
}

// Direction selects which way an engine integrates from a seed frame.
type Direction int

const (
	Forward  Direction = 1
	Backward Direction = -1
)

// Engine produces trajectory segments. Extend integrates from seed in
// the given direction until stop returns true for a generated frame or
// the engine's frame budget runs out (ErrMaxLength). The returned
// segment includes the seed frame and is ordered forward in time
// regardless of direction. Extend blocks until the segment is complete
// or fails; there is no partial-result visibility.
type Engine interface {
	Extend(ctx context.Context, seed *Snapshot, dir Direction, stop func(*Snapshot) bool) (Trajectory, error)
}

// Observer is a best-effort hook invoked after each persisted step. It
// must not mutate simulation state; failures are logged and suppressed
// by the run loop.
type Observer interface {
	OnStep(step *Step)
}
