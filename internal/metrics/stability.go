package metrics

import (
	"github.com/san-kum/cluster/internal/cluster"
)

// Stability is the fraction of observed states that were entirely finite.
// Without softening close encounters can produce Inf or NaN.
type Stability struct {
	name       string
	violations int
	samples    int
}

func NewStability() *Stability {
	return &Stability{name: "stability"}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(sum cluster.Summary) {
	s.samples++
	if !sum.Finite {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// BoundFraction tracks the share of bound particles in the last observed
// state and the lowest share seen.
type BoundFraction struct {
	last, min float64
	samples   int
}

func NewBoundFraction() *BoundFraction { return &BoundFraction{} }

func (b *BoundFraction) Name() string { return "bound_fraction" }

func (b *BoundFraction) Observe(s cluster.Summary) {
	f := s.BoundFraction()
	if b.samples == 0 || f < b.min {
		b.min = f
	}
	b.last = f
	b.samples++
}

func (b *BoundFraction) Value() float64 { return b.last }
func (b *BoundFraction) Min() float64   { return b.min }

func (b *BoundFraction) Reset() {
	b.last, b.min = 0, 0
	b.samples = 0
}

// Default returns the metrics every run reports.
func Default() []Metric {
	return []Metric{
		NewEnergyDrift(),
		NewBoundEnergy(),
		NewBoundFraction(),
		NewVirialRatio(),
		NewStability(),
	}
}

// Metric matches sim.Metric without importing the driver.
type Metric interface {
	Name() string
	Observe(s cluster.Summary)
	Value() float64
	Reset()
}
