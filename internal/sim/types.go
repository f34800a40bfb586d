package sim

import (
	"fmt"
	"time"

	"github.com/san-kum/cluster/internal/cluster"
)

// Metric accumulates a scalar over the energetics of every observed state.
type Metric interface {
	Name() string
	Observe(s cluster.Summary)
	Value() float64
	Reset()
}

// Observer is notified after every advance. step counts from 1 to total.
type Observer interface {
	OnStep(step, total int, s cluster.Summary)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(step, total int, s cluster.Summary)

func (f ObserverFunc) OnStep(step, total int, s cluster.Summary) { f(step, total, s) }

type Config struct {
	Dt       float64
	Duration float64
	// SaveFile, when set, is opened for the snapshot stream. Otherwise a
	// recorder already attached to the ensemble receives the states, or the
	// run stays in memory.
	SaveFile string
}

// Steps is the number of advances: every i ≥ 0 with i·dt ≤ Duration.
func (c Config) Steps() int {
	n := 0
	for i := 0; float64(i)*c.Dt <= c.Duration; i++ {
		n++
	}
	return n
}

type Result struct {
	Integrator string
	StepsTaken int
	Elapsed    time.Duration
	// Summaries holds the state before the first advance followed by one
	// entry per advance.
	Summaries   []cluster.Summary
	EnergyDrift float64
	Metrics     map[string]float64
}

// Final returns the last observed summary.
func (r *Result) Final() cluster.Summary {
	if len(r.Summaries) == 0 {
		return cluster.Summary{}
	}
	return r.Summaries[len(r.Summaries)-1]
}

// Energies returns the total energy of every summary.
func (r *Result) Energies() []float64 {
	e := make([]float64, len(r.Summaries))
	for i, s := range r.Summaries {
		e[i] = s.Total
	}
	return e
}

// Times returns the time of every summary.
func (r *Result) Times() []float64 {
	t := make([]float64, len(r.Summaries))
	for i, s := range r.Summaries {
		t[i] = s.Time
	}
	return t
}

// SimError reports a run stopped at a given step.
type SimError struct {
	Time    float64
	Step    int
	Message string
	Err     error
}

func (e SimError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sim error at step %d (t=%.4f): %s: %v", e.Step, e.Time, e.Message, e.Err)
	}
	return fmt.Sprintf("sim error at step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

func (e SimError) Unwrap() error { return e.Err }
