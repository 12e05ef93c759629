package toy

import (
	"math"
	"math/rand"
)

// Integrator advances positions and velocities in place by one
// timestep. Unit masses throughout.
type Integrator interface {
	Step(p Potential, pos, vel []float64, rng *rand.Rand)
	Dt() float64
}

// LangevinBAOAB is the BAOAB splitting of Langevin dynamics: two
// half-kicks and two half-drifts around one Ornstein-Uhlenbeck
// velocity refresh. Friction Gamma couples the system to a bath at
// Temperature (k_B = 1).
type LangevinBAOAB struct {
	TimeStep    float64
	Temperature float64
	Gamma       float64
}

func NewLangevinBAOAB(dt, temperature, gamma float64) *LangevinBAOAB {
	return &LangevinBAOAB{TimeStep: dt, Temperature: temperature, Gamma: gamma}
}

func (l *LangevinBAOAB) Dt() float64 { return l.TimeStep }

func (l *LangevinBAOAB) Step(p Potential, pos, vel []float64, rng *rand.Rand) {
	dt := l.TimeStep
	halfKick(p, pos, vel, dt)
	drift(pos, vel, dt/2)

	c1 := math.Exp(-l.Gamma * dt)
	c2 := math.Sqrt((1 - c1*c1) * l.Temperature)
	for i := range vel {
		vel[i] = c1*vel[i] + c2*rng.NormFloat64()
	}

	drift(pos, vel, dt/2)
	halfKick(p, pos, vel, dt)
}

// VelocityVerlet is the deterministic NVE integrator. The rng argument
// is unused.
type VelocityVerlet struct {
	TimeStep float64
}

func NewVelocityVerlet(dt float64) *VelocityVerlet {
	return &VelocityVerlet{TimeStep: dt}
}

func (v *VelocityVerlet) Dt() float64 { return v.TimeStep }

func (v *VelocityVerlet) Step(p Potential, pos, vel []float64, _ *rand.Rand) {
	dt := v.TimeStep
	halfKick(p, pos, vel, dt)
	drift(pos, vel, dt)
	halfKick(p, pos, vel, dt)
}

func halfKick(p Potential, pos, vel []float64, dt float64) {
	grad := p.Grad(pos)
	for i := range vel {
		vel[i] -= 0.5 * dt * grad[i]
	}
}

func drift(pos, vel []float64, dt float64) {
	for i := range pos {
		pos[i] += dt * vel[i]
	}
}
