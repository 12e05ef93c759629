package analysis

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/mkoven/pathmc/internal/driver"
)

// CommittorPoint is the committor estimate at one starting
// configuration: the fraction of resolved shots that committed to the
// target state.
type CommittorPoint struct {
	SnapshotID uint64
	X, Y       float64
	Shots      int
	Hits       int
	PB         float64
}

// ShootingPointAnalysis groups committor shot records by starting
// snapshot and estimates the committor toward the named state.
// Unresolved shots are excluded from the estimate.
func ShootingPointAnalysis(records []driver.ShotRecord, targetState string) []CommittorPoint {
	type agg struct {
		x, y  float64
		shots int
		hits  int
	}
	byID := make(map[uint64]*agg)
	for _, rec := range records {
		if rec.State == "" {
			continue
		}
		a, ok := byID[rec.SnapshotID]
		if !ok {
			a = &agg{x: rec.X, y: rec.Y}
			byID[rec.SnapshotID] = a
		}
		a.shots++
		if rec.State == targetState {
			a.hits++
		}
	}

	out := make([]CommittorPoint, 0, len(byID))
	for id, a := range byID {
		out = append(out, CommittorPoint{
			SnapshotID: id,
			X:          a.x,
			Y:          a.y,
			Shots:      a.shots,
			Hits:       a.hits,
			PB:         float64(a.hits) / float64(a.shots),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].X < out[j].X })
	return out
}

// CommittorProfile bins committor points along x and averages PB per
// bin, weighting by shot count. Returns bin centers and mean PB.
func CommittorProfile(points []CommittorPoint, nbins int) (centers, pb []float64) {
	if len(points) == 0 || nbins < 1 {
		return nil, nil
	}

	lo, hi := points[0].X, points[len(points)-1].X
	if lo == hi {
		return []float64{lo}, []float64{weightedPB(points)}
	}
	width := (hi - lo) / float64(nbins)

	binned := make([][]CommittorPoint, nbins)
	for _, p := range points {
		i := int((p.X - lo) / width)
		if i >= nbins {
			i = nbins - 1
		}
		binned[i] = append(binned[i], p)
	}

	for i, bin := range binned {
		if len(bin) == 0 {
			continue
		}
		centers = append(centers, lo+(float64(i)+0.5)*width)
		pb = append(pb, weightedPB(bin))
	}
	return centers, pb
}

func weightedPB(points []CommittorPoint) float64 {
	vals := make([]float64, len(points))
	weights := make([]float64, len(points))
	for i, p := range points {
		vals[i] = p.PB
		weights[i] = float64(p.Shots)
	}
	return stat.Mean(vals, weights)
}
