package sim

import (
	"errors"
	"math"

	"github.com/san-kum/cluster/internal/cluster"
)

// spiral places particle i on a Fibonacci spiral at radius R·((i+½)/n)^⅓,
// so the same n always gives the same distinct positions.
type spiral struct {
	n, next int
}

func (s *spiral) SphericalPosition(radius float64) []float64 {
	i := float64(s.next)
	s.next++
	r := radius * math.Cbrt((i+0.5)/float64(s.n))
	z := 1 - 2*(i+0.5)/float64(s.n)
	rho := math.Sqrt(1 - z*z)
	phi := i * math.Pi * (3 - math.Sqrt(5))
	return []float64{r * rho * math.Cos(phi), r * rho * math.Sin(phi), r * z}
}

type fixedMass float64

func (m fixedMass) Mass(float64) float64 { return float64(m) }

func newTestEnsemble(n int, integ cluster.Integrator) (*cluster.Ensemble, error) {
	cfg := cluster.DefaultConfig()
	cfg.N = n
	return cluster.New(cfg, integ, cluster.Sources{
		Masses:    fixedMass(cfg.MeanMass),
		Positions: &spiral{n: n},
	})
}

// kick adds dt to the first velocity component of every particle.
type kick struct{}

func (kick) Name() string { return "kick" }

func (kick) Step(sys cluster.System, dt float64) error {
	v := sys.Velocities()
	_, c := v.Dims()
	for j := 0; j < c; j++ {
		v.Set(0, j, v.At(0, j)+dt)
	}
	return sys.SetVelocities(v)
}

type brokenIntegrator struct{}

func (brokenIntegrator) Name() string                       { return "broken" }
func (brokenIntegrator) Step(cluster.System, float64) error { return errors.New("singular") }

type countingMetric struct {
	count int
	last  cluster.Summary
}

func (m *countingMetric) Name() string   { return "count" }
func (m *countingMetric) Value() float64 { return float64(m.count) }
func (m *countingMetric) Reset()         { m.count = 0 }

func (m *countingMetric) Observe(s cluster.Summary) {
	m.count++
	m.last = s
}
