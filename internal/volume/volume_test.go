package volume

import (
	"math"
	"testing"

	"github.com/mkoven/pathmc/internal/paths"
)

var cvX = paths.CV{Name: "x", F: func(s *paths.Snapshot) float64 { return s.Coords[0] }}

func snapAt(x float64) *paths.Snapshot {
	return paths.NewSnapshot([]float64{x, 0}, []float64{0, 0})
}

func TestCVDefinedContains(t *testing.T) {
	stateA := NewCVDefined("A", cvX, math.Inf(-1), -0.6)
	stateB := NewCVDefined("B", cvX, 0.6, math.Inf(1))

	tests := []struct {
		name string
		vol  Volume
		x    float64
		want bool
	}{
		{"deep in A", stateA, -1.0, true},
		{"boundary of A excluded", stateA, -0.6, false},
		{"barrier not in A", stateA, 0.0, false},
		{"boundary of B included", stateB, 0.6, true},
		{"deep in B", stateB, 2.0, true},
		{"barrier not in B", stateB, 0.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.vol.Contains(snapAt(tt.x)); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}

func TestCombinators(t *testing.T) {
	stateA := NewCVDefined("A", cvX, math.Inf(-1), -0.6)
	stateB := NewCVDefined("B", cvX, 0.6, math.Inf(1))
	states := NewUnion(stateA, stateB)
	barrier := NewComplement(states)

	if !states.Contains(snapAt(-0.8)) || !states.Contains(snapAt(0.8)) {
		t.Error("union misses its parts")
	}
	if states.Contains(snapAt(0)) {
		t.Error("union covers the barrier")
	}
	if !barrier.Contains(snapAt(0)) {
		t.Error("complement misses the barrier")
	}

	band := NewIntersect(
		NewCVDefined("left", cvX, -1, 1),
		NewCVDefined("right", cvX, 0, 2),
	)
	if !band.Contains(snapAt(0.5)) || band.Contains(snapAt(-0.5)) {
		t.Error("intersect wrong on overlap band")
	}

	empty := NewIntersect()
	if empty.Contains(snapAt(0)) {
		t.Error("empty intersect should contain nothing")
	}
}

func TestCombinatorNames(t *testing.T) {
	a := NewCVDefined("A", cvX, 0, 1)
	b := NewCVDefined("B", cvX, 1, 2)

	if got := NewUnion(a, b).Name(); got != "A|B" {
		t.Errorf("union name = %q", got)
	}
	if got := NewComplement(a).Name(); got != "!A" {
		t.Errorf("complement name = %q", got)
	}
}
