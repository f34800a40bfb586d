package cluster

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/cluster/internal/snapshot"
)

type fixedMass float64

func (m fixedMass) Mass(float64) float64 { return float64(m) }

type queuedPositions [][]float64

func (q *queuedPositions) SphericalPosition(float64) []float64 {
	p := (*q)[0]
	*q = append((*q)[1:], p)
	out := make([]float64, len(p))
	copy(out, p)
	return out
}

// drift moves positions along the velocities and leaves velocities alone.
type drift struct{ calls int }

func (d *drift) Name() string { return "drift" }

func (d *drift) Step(sys System, dt float64) error {
	d.calls++
	var p mat.Dense
	p.Scale(dt, sys.Velocities())
	p.Add(sys.Positions(), &p)
	return sys.SetPositions(&p)
}

type failingIntegrator struct{}

func (failingIntegrator) Name() string               { return "failing" }
func (failingIntegrator) Step(System, float64) error { return errors.New("boom") }

// memRecorder keeps saved states in memory.
type memRecorder struct {
	header  *snapshot.Header
	records []snapshot.Record
	failAt  int
	closed  bool
}

func (m *memRecorder) WriteHeader(h snapshot.Header) error {
	m.header = &h
	return nil
}

func (m *memRecorder) Record(rec snapshot.Record) error {
	if m.failAt > 0 && len(m.records)+1 == m.failAt {
		return errors.New("disk full")
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memRecorder) Close() error {
	m.closed = true
	return nil
}

// binaryConfig places two unit masses at x = ±0.5 with R0 = 1, which gives
// G = π²/16.
func binaryConfig(eps float64) (Config, Sources) {
	cfg := DefaultConfig()
	cfg.N = 2
	cfg.Radius = 1
	cfg.MeanMass = 1
	cfg.Softening = eps
	return cfg, Sources{
		Masses:    fixedMass(1),
		Positions: &queuedPositions{{-0.5, 0, 0}, {0.5, 0, 0}},
	}
}

func newBinary(eps float64) (*Ensemble, error) {
	cfg, src := binaryConfig(eps)
	return New(cfg, &drift{}, src)
}
