package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/mkoven/pathmc/internal/paths"
)

// LengthStats describes the path-length distribution of one ensemble
// across a stored run.
type LengthStats struct {
	Ensemble string
	Count    int
	Mean     float64
	StdDev   float64
	Min      float64
	Max      float64
}

// PathLengths extracts the active trajectory length of one ensemble
// from every step.
func PathLengths(steps []*paths.Step, ensemble string) []float64 {
	var lengths []float64
	for _, step := range steps {
		if s, ok := step.Active[ensemble]; ok {
			lengths = append(lengths, float64(s.Trajectory.Len()))
		}
	}
	return lengths
}

// LengthDistribution summarizes the lengths of one ensemble's paths.
func LengthDistribution(steps []*paths.Step, ensemble string) LengthStats {
	lengths := PathLengths(steps, ensemble)
	ls := LengthStats{Ensemble: ensemble, Count: len(lengths)}
	if len(lengths) == 0 {
		return ls
	}
	ls.Mean = stat.Mean(lengths, nil)
	ls.StdDev = stat.StdDev(lengths, nil)
	ls.Min = floats.Min(lengths)
	ls.Max = floats.Max(lengths)
	return ls
}

// Histogram bins values into nbins equal-width bins over their range,
// returning bin centers and counts. Suitable for terminal plotting.
func Histogram(values []float64, nbins int) (centers, counts []float64) {
	if len(values) == 0 || nbins < 1 {
		return nil, nil
	}
	lo, hi := floats.Min(values), floats.Max(values)
	if lo == hi {
		hi = lo + 1
	}

	dividers := make([]float64, nbins+1)
	floats.Span(dividers, lo, hi)
	// stat.Histogram requires the last divider to exceed the max.
	dividers[nbins] = hi + (hi-lo)*1e-9

	sorted := append([]float64(nil), values...)
	floats.Argsort(sorted, make([]int, len(sorted)))

	counts = stat.Histogram(nil, dividers, sorted, nil)
	centers = make([]float64, nbins)
	for i := range centers {
		centers[i] = (dividers[i] + dividers[i+1]) / 2
	}
	return centers, counts
}
