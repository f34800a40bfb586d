package integrators

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/cluster/internal/cluster"
)

// oscillator is a 1×1 harmonic oscillator a = -ω²·x exposed as a System.
type oscillator struct {
	p, v   *mat.Dense
	omega2 float64
	evals  int
}

func newOscillator(x0, v0 float64) *oscillator {
	return &oscillator{
		p:      mat.NewDense(1, 1, []float64{x0}),
		v:      mat.NewDense(1, 1, []float64{v0}),
		omega2: 1,
	}
}

func (o *oscillator) Positions() *mat.Dense  { return mat.DenseCopyOf(o.p) }
func (o *oscillator) Velocities() *mat.Dense { return mat.DenseCopyOf(o.v) }

func (o *oscillator) SetPositions(m mat.Matrix) error {
	if r, c := m.Dims(); r != 1 || c != 1 {
		return fmt.Errorf("oscillator: shape %d×%d", r, c)
	}
	o.p.Copy(m)
	return nil
}

func (o *oscillator) SetVelocities(m mat.Matrix) error {
	if r, c := m.Dims(); r != 1 || c != 1 {
		return fmt.Errorf("oscillator: shape %d×%d", r, c)
	}
	o.v.Copy(m)
	return nil
}

func (o *oscillator) Accelerations() *mat.Dense {
	o.evals++
	a := mat.DenseCopyOf(o.p)
	a.Scale(-o.omega2, a)
	return a
}

func (o *oscillator) x() float64 { return o.p.At(0, 0) }
func (o *oscillator) u() float64 { return o.v.At(0, 0) }

func (o *oscillator) Energy() float64 {
	return 0.5 * (o.u()*o.u() + o.omega2*o.x()*o.x())
}

// fixedMass and queuedPositions replace the random sources in tests.
type fixedMass float64

func (m fixedMass) Mass(float64) float64 { return float64(m) }

type queuedPositions struct {
	points [][]float64
	next   int
}

func (q *queuedPositions) SphericalPosition(float64) []float64 {
	p := q.points[q.next%len(q.points)]
	q.next++
	out := make([]float64, len(p))
	copy(out, p)
	return out
}

// newBinary builds two equal unit masses one unit apart with ε=0. The speed
// is the circular-orbit speed scaled by sqrt(1-e), starting at apoapsis for
// an orbit of eccentricity e.
func newBinary(integ cluster.Integrator, e float64) (*cluster.Ensemble, error) {
	cfg := cluster.DefaultConfig()
	cfg.N = 2
	cfg.Radius = 1
	cfg.MeanMass = 1
	cfg.Softening = 0

	src := cluster.Sources{
		Masses:    fixedMass(1),
		Positions: &queuedPositions{points: [][]float64{{-0.5, 0, 0}, {0.5, 0, 0}}},
	}
	ens, err := cluster.New(cfg, integ, src)
	if err != nil {
		return nil, err
	}

	speed := circularSpeed(ens.G(), 1, 1) * math.Sqrt(1-e)
	v := mat.NewDense(3, 2, []float64{
		0, 0,
		-speed, speed,
		0, 0,
	})
	if err := ens.SetVelocities(v); err != nil {
		return nil, err
	}
	ens.UpdateEnergies()
	return ens, nil
}

// circularSpeed is the speed of each of two masses m at separation d on a
// circular orbit about their common center.
func circularSpeed(g, m, d float64) float64 {
	return math.Sqrt(g * m / (2 * d))
}

// binaryPeriod is the orbital period of two masses m at separation d.
func binaryPeriod(g, m, d float64) float64 {
	return 2 * math.Pi * math.Sqrt(d*d*d/(g*2*m))
}

func relDrift(e, e0 float64) float64 {
	return math.Abs((e - e0) / e0)
}

func maxAbsDiff(a, b mat.Matrix) float64 {
	var d mat.Dense
	d.Sub(a, b)
	return floats.Norm(d.RawMatrix().Data, math.Inf(1))
}
