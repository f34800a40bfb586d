package sim

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/cluster/internal/cluster"
	"github.com/san-kum/cluster/internal/snapshot"
)

func TestConfigSteps(t *testing.T) {
	g := NewWithT(t)
	tests := []struct {
		dt, duration float64
		want         int
	}{
		{0.1, 1.0, 11},
		{0.25, 1.0, 5},
		{0.3, 1.0, 4},
		{0.5, 0, 1},
	}
	for _, tt := range tests {
		cfg := Config{Dt: tt.dt, Duration: tt.duration}
		g.Expect(cfg.Steps()).To(Equal(tt.want), "dt=%g T=%g", tt.dt, tt.duration)
	}
}

func TestSimulatorRun(t *testing.T) {
	g := NewWithT(t)
	ens, err := newTestEnsemble(5, kick{})
	g.Expect(err).NotTo(HaveOccurred())
	sim := New(ens)

	result, err := sim.Run(context.Background(), Config{Dt: 0.1, Duration: 1.0})
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(result.StepsTaken).To(Equal(11))
	g.Expect(result.Summaries).To(HaveLen(12))
	g.Expect(result.Integrator).To(Equal("kick"))

	// every kick adds dt to vx, so after 11 kicks vx = 1.1
	g.Expect(ens.Particle(0).Velocity()[0]).To(BeNumerically("~", 1.1, 1e-3))

	times := result.Times()
	g.Expect(times[0]).To(BeZero())
	g.Expect(times[len(times)-1]).To(BeNumerically(">=", 1.099))
	g.Expect(result.EnergyDrift).NotTo(BeZero(), "kicks add kinetic energy")
}

func TestSimulatorInvalidConfig(t *testing.T) {
	ens, err := newTestEnsemble(3, kick{})
	NewWithT(t).Expect(err).NotTo(HaveOccurred())
	sim := New(ens)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), tt.cfg)
			NewWithT(t).Expect(err).To(HaveOccurred())
		})
	}
}

func TestSimulatorMetricsAndObservers(t *testing.T) {
	g := NewWithT(t)
	ens, err := newTestEnsemble(4, kick{})
	g.Expect(err).NotTo(HaveOccurred())
	sim := New(ens)

	metric := &countingMetric{count: 99}
	sim.AddMetric(metric)

	var steps []int
	sim.AddObserver(ObserverFunc(func(step, total int, s cluster.Summary) {
		g.Expect(total).To(Equal(5))
		steps = append(steps, step)
	}))

	result, err := sim.Run(context.Background(), Config{Dt: 0.25, Duration: 1.0})
	g.Expect(err).NotTo(HaveOccurred())

	// reset on start, then one observation per summary
	g.Expect(metric.count).To(Equal(6))
	g.Expect(result.Metrics).To(HaveKeyWithValue("count", 6.0))
	g.Expect(metric.last.N).To(Equal(4))
	g.Expect(steps).To(Equal([]int{1, 2, 3, 4, 5}))
}

func TestSimulatorCancel(t *testing.T) {
	g := NewWithT(t)
	ens, err := newTestEnsemble(3, kick{})
	g.Expect(err).NotTo(HaveOccurred())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(ens).Run(ctx, Config{Dt: 0.1, Duration: 1.0})
	g.Expect(err).To(MatchError(context.Canceled))
	g.Expect(result).NotTo(BeNil())
	g.Expect(result.StepsTaken).To(BeZero())
}

func TestSimulatorSaveFile(t *testing.T) {
	g := NewWithT(t)
	ens, err := newTestEnsemble(3, kick{})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ens.SetSaveEach(2)).To(Succeed())

	path := filepath.Join(t.TempDir(), "run.dat")
	_, err = New(ens).Run(context.Background(), Config{Dt: 0.1, Duration: 1.0, SaveFile: path})
	g.Expect(err).NotTo(HaveOccurred())

	f, err := os.Open(path)
	g.Expect(err).NotTo(HaveOccurred())
	defer f.Close()

	header, records, err := snapshot.ReadAll(f)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(header.N).To(Equal(3))
	g.Expect(header.SaveEach).To(Equal(2))
	g.Expect(header.Integrator).To(Equal("kick"))
	// the initial state plus every second of 11 advances
	g.Expect(records).To(HaveLen(6))
	g.Expect(records[0].Time).To(BeZero())
}

func TestSimulatorAdvanceFailure(t *testing.T) {
	g := NewWithT(t)
	ens, err := newTestEnsemble(3, brokenIntegrator{})
	g.Expect(err).NotTo(HaveOccurred())

	_, err = New(ens).Run(context.Background(), Config{Dt: 0.1, Duration: 1.0})

	var simErr SimError
	g.Expect(errors.As(err, &simErr)).To(BeTrue())
	g.Expect(simErr.Step).To(BeZero())
	var stepErr *cluster.StepError
	g.Expect(errors.As(err, &stepErr)).To(BeTrue(), "wrapped StepError")
}
