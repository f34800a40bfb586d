package integrators

import (
	"math"
	"testing"
)

func TestRK4Accuracy(t *testing.T) {
	sys := newOscillator(1, 0)
	integ := NewRK4()

	dt := 0.01
	steps := 100
	for i := 0; i < steps; i++ {
		if err := integ.Step(sys, dt); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(sys.x()-expectedX) > 1e-8 {
		t.Errorf("position error too large: got %.10f, expected %.10f", sys.x(), expectedX)
	}
	if math.Abs(sys.u()-expectedV) > 1e-8 {
		t.Errorf("velocity error too large: got %.10f, expected %.10f", sys.u(), expectedV)
	}
}

func TestRK4_FourEvaluationsPerStep(t *testing.T) {
	sys := newOscillator(1, 0)
	integ := NewRK4()

	for i := 0; i < 5; i++ {
		integ.Step(sys, 0.1)
	}
	if sys.evals != 20 {
		t.Errorf("expected 20 acceleration evaluations, got %d", sys.evals)
	}
}

func TestRK4_SecularEnergyDecay(t *testing.T) {
	sys := newOscillator(1, 0)
	integ := NewRK4()
	e0 := sys.Energy()

	// For ω·dt = 0.5 each step loses about (ω·dt)^6/72 of the energy.
	for i := 0; i < 2000; i++ {
		integ.Step(sys, 0.5)
	}
	drift := relDrift(sys.Energy(), e0)
	if drift < 0.3 || drift > 0.4 {
		t.Errorf("RK4 energy drift %.4f outside expected [0.3, 0.4]", drift)
	}
	if sys.Energy() > e0 {
		t.Error("RK4 should lose energy on the oscillator")
	}
}
