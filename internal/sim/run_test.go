package sim_test

import (
	"context"
	"math"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cluster/internal/cluster"
	"github.com/san-kum/cluster/internal/integrators"
	"github.com/san-kum/cluster/internal/metrics"
	"github.com/san-kum/cluster/internal/sample"
	"github.com/san-kum/cluster/internal/sim"
	"github.com/san-kum/cluster/internal/snapshot"
)

// shell puts particles on a ring of half the cluster radius, in order.
type shell struct{ next int }

func (s *shell) SphericalPosition(radius float64) []float64 {
	phi := float64(s.next) * 2 * math.Pi / 10
	s.next++
	return []float64{0.5 * radius * math.Cos(phi), 0.5 * radius * math.Sin(phi), 0.1 * radius * float64(s.next%3)}
}

type unitMass struct{}

func (unitMass) Mass(mean float64) float64 { return mean }

var _ = Describe("A ten-particle cluster", func() {
	var (
		ens  *cluster.Ensemble
		path string
	)

	BeforeEach(func() {
		cfg := cluster.DefaultConfig()
		cfg.N = 10

		var err error
		ens, err = cluster.New(cfg, integrators.NewRK4(), cluster.Sources{
			Masses:    unitMass{},
			Positions: &shell{},
		})
		Expect(err).NotTo(HaveOccurred())

		path = filepath.Join(GinkgoT().TempDir(), "cluster.dat")
	})

	Context("run for 100 RK4 steps with softening", func() {
		var result *sim.Result

		BeforeEach(func() {
			s := sim.New(ens)
			s.AddMetric(metrics.NewStability())
			s.AddMetric(metrics.NewEnergyDrift())

			var err error
			result, err = s.Run(context.Background(), sim.Config{Dt: 0.01, Duration: 0.995, SaveFile: path})
			Expect(err).NotTo(HaveOccurred())
		})

		It("takes exactly 100 steps", func() {
			Expect(result.StepsTaken).To(Equal(100))
			Expect(ens.Steps()).To(Equal(100))
			Expect(ens.Time()).To(BeNumerically("~", 1.0, 1e-9))
		})

		It("keeps every particle finite", func() {
			Expect(ens.Len()).To(Equal(10))
			for _, p := range ens.Particles() {
				for _, x := range append(p.Position(), p.Velocity()...) {
					Expect(math.IsNaN(x) || math.IsInf(x, 0)).To(BeFalse())
				}
			}
			Expect(result.Metrics["stability"]).To(Equal(1.0))
			Expect(result.Final().Finite).To(BeTrue())
		})

		It("writes the header and one record per step", func() {
			f, err := os.Open(path)
			Expect(err).NotTo(HaveOccurred())
			defer f.Close()

			header, records, err := snapshot.ReadAll(f)
			Expect(err).NotTo(HaveOccurred())
			Expect(header.N).To(Equal(10))
			Expect(header.Epsilon).To(Equal(0.15))
			Expect(header.Integrator).To(Equal("rk4"))
			Expect(records).To(HaveLen(101))
			for _, rec := range records {
				Expect(rec.Particles).To(HaveLen(10))
				Expect(math.IsNaN(rec.Energy)).To(BeFalse())
			}
			Expect(records[100].Time).To(BeNumerically("~", 1.0, 1e-9))
		})
	})

	Context("without an open file", func() {
		It("runs in memory", func() {
			result, err := sim.New(ens).Run(context.Background(), sim.Config{Dt: 0.01, Duration: 0.1})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.StepsTaken).To(Equal(11))
			_, err = os.Stat(path)
			Expect(os.IsNotExist(err)).To(BeTrue())
		})
	})
})

var _ = Describe("Integrator comparison", func() {
	run := func(integ cluster.Integrator) *sim.Result {
		cfg := cluster.DefaultConfig()
		cfg.N = 2
		cfg.Radius = 1
		cfg.MeanMass = 1
		cfg.Softening = 0

		ens, err := cluster.New(cfg, integ, cluster.Sources{
			Masses:    unitMass{},
			Positions: &pair{},
		})
		Expect(err).NotTo(HaveOccurred())

		speed := math.Sqrt(ens.G() / 2)
		Expect(ens.Particle(0).Position()[0]).To(Equal(-0.5))
		ens.Particle(0).SetVelocity([]float64{0, -speed, 0})
		ens.Particle(1).SetVelocity([]float64{0, speed, 0})
		ens.UpdateEnergies()

		s := sim.New(ens)
		s.AddMetric(metrics.NewEnergyDrift())
		res, err := s.Run(context.Background(), sim.Config{Dt: 0.01, Duration: 20})
		Expect(err).NotTo(HaveOccurred())
		return res
	}

	It("conserves energy on a circular binary with both schemes", func() {
		lf := run(integrators.NewLeapfrog())
		rk := run(integrators.NewRK4())

		Expect(lf.Metrics["energy_drift"]).To(BeNumerically("<", 1e-3))
		Expect(rk.Metrics["energy_drift"]).To(BeNumerically("<", 1e-3))
		Expect(lf.Final().Bound).To(Equal(2))
	})

	It("is reproducible from seeds", func() {
		build := func() *cluster.Ensemble {
			cfg := cluster.DefaultConfig()
			cfg.N = 8
			ens, err := cluster.New(cfg, integrators.NewLeapfrog(), cluster.Sources{
				Masses:    sample.New(11),
				Positions: sample.New(12),
			})
			Expect(err).NotTo(HaveOccurred())
			return ens
		}
		a, b := build(), build()
		ra, err := sim.New(a).Run(context.Background(), sim.Config{Dt: 0.01, Duration: 0.2})
		Expect(err).NotTo(HaveOccurred())
		rb, err := sim.New(b).Run(context.Background(), sim.Config{Dt: 0.01, Duration: 0.2})
		Expect(err).NotTo(HaveOccurred())
		Expect(ra.Energies()).To(Equal(rb.Energies()))
	})
})

type pair struct{ next int }

func (p *pair) SphericalPosition(float64) []float64 {
	x := -0.5 + float64(p.next)
	p.next++
	return []float64{x, 0, 0}
}
