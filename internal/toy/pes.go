// Package toy implements a small 2D molecular test system: analytic
// potential energy surfaces, Langevin dynamics, and an engine that
// grows trajectory segments until a stopping condition is met.
package toy

import "math"

// Potential is an analytic energy surface over configuration space.
type Potential interface {
	V(pos []float64) float64
	Grad(pos []float64) []float64
}

// Gaussian is a Gaussian well (A < 0) or bump (A > 0) centered at X0
// with per-axis widths Alpha.
type Gaussian struct {
	A     float64
	Alpha []float64
	X0    []float64
}

func (g *Gaussian) exponent(pos []float64) float64 {
	sum := 0.0
	for i := range pos {
		d := pos[i] - g.X0[i]
		sum += g.Alpha[i] * d * d
	}
	return sum
}

func (g *Gaussian) V(pos []float64) float64 {
	return g.A * math.Exp(-g.exponent(pos))
}

func (g *Gaussian) Grad(pos []float64) []float64 {
	v := g.V(pos)
	grad := make([]float64, len(pos))
	for i := range pos {
		grad[i] = -2 * g.Alpha[i] * (pos[i] - g.X0[i]) * v
	}
	return grad
}

// OuterWalls confines the system with a steep sextic wall per axis.
type OuterWalls struct {
	Sigma []float64
	X0    []float64
}

func (w *OuterWalls) V(pos []float64) float64 {
	sum := 0.0
	for i := range pos {
		d := pos[i] - w.X0[i]
		sum += w.Sigma[i] * math.Pow(d, 6)
	}
	return sum
}

func (w *OuterWalls) Grad(pos []float64) []float64 {
	grad := make([]float64, len(pos))
	for i := range pos {
		d := pos[i] - w.X0[i]
		grad[i] = 6 * w.Sigma[i] * math.Pow(d, 5)
	}
	return grad
}

// Sum adds potentials.
type Sum []Potential

func (s Sum) V(pos []float64) float64 {
	total := 0.0
	for _, p := range s {
		total += p.V(pos)
	}
	return total
}

func (s Sum) Grad(pos []float64) []float64 {
	grad := make([]float64, len(pos))
	for _, p := range s {
		for i, g := range p.Grad(pos) {
			grad[i] += g
		}
	}
	return grad
}

// TwoStatePES is the standard bistable test surface: outer walls plus
// two Gaussian wells at x = -0.6 and x = +0.6 separated by a barrier.
func TwoStatePES() Potential {
	return Sum{
		&OuterWalls{Sigma: []float64{1.0, 1.0}, X0: []float64{0.0, 0.0}},
		&Gaussian{A: -1.0, Alpha: []float64{12.0, 5.0}, X0: []float64{-0.6, 0.0}},
		&Gaussian{A: -1.0, Alpha: []float64{12.0, 5.0}, X0: []float64{0.6, 0.0}},
	}
}
