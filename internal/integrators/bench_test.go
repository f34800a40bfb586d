package integrators

import (
	"testing"

	"github.com/san-kum/cluster/internal/cluster"
	"github.com/san-kum/cluster/internal/sample"
)

func benchEnsemble(b *testing.B, integ cluster.Integrator, n int) *cluster.Ensemble {
	b.Helper()
	cfg := cluster.DefaultConfig()
	cfg.N = n
	ens, err := cluster.New(cfg, integ, cluster.Sources{
		Masses:    sample.New(1),
		Positions: sample.New(2),
	})
	if err != nil {
		b.Fatal(err)
	}
	return ens
}

func BenchmarkOscillatorEuler(b *testing.B) {
	integrator := NewEuler()
	sys := newOscillator(1, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		integrator.Step(sys, 0.01)
	}
}

func BenchmarkOscillatorRK4(b *testing.B) {
	integrator := NewRK4()
	sys := newOscillator(1, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		integrator.Step(sys, 0.01)
	}
}

func BenchmarkOscillatorLeapfrog(b *testing.B) {
	integrator := NewLeapfrog()
	sys := newOscillator(1, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		integrator.Step(sys, 0.01)
	}
}

func BenchmarkRK4_N100(b *testing.B) {
	ens := benchEnsemble(b, NewRK4(), 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ens.Advance(0.001)
	}
}

func BenchmarkLeapfrog_N100(b *testing.B) {
	ens := benchEnsemble(b, NewLeapfrog(), 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ens.Advance(0.001)
	}
}

func BenchmarkAccelerations_N100(b *testing.B) {
	ens := benchEnsemble(b, NewRK4(), 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ens.Accelerations()
	}
}
