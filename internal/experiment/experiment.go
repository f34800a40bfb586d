package experiment

import (
	"context"
	"fmt"

	"github.com/go-kit/log"

	"github.com/san-kum/cluster/internal/cluster"
	"github.com/san-kum/cluster/internal/config"
	"github.com/san-kum/cluster/internal/sample"
	"github.com/san-kum/cluster/internal/sim"
)

// Experiment is one configured run: an ensemble sampled from the config's
// seeds and a simulator driving it.
type Experiment struct {
	cfg       config.Config
	ens       *cluster.Ensemble
	simulator *sim.Simulator
	logger    log.Logger
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: *cfg, logger: log.NewNopLogger()}
}

func (e *Experiment) WithLogger(l log.Logger) *Experiment {
	if l != nil {
		e.logger = l
	}
	return e
}

// Setup validates the config, samples the ensemble and attaches metrics.
func (e *Experiment) Setup(reg *Registry, metrics []sim.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	integ, err := reg.GetIntegrator(e.cfg.Method)
	if err != nil {
		return err
	}
	ens, err := BuildEnsemble(&e.cfg, integ)
	if err != nil {
		return err
	}

	e.ens = ens
	e.simulator = sim.New(ens).WithLogger(e.logger)
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

// BuildEnsemble samples an ensemble from cfg with separately seeded mass and
// position streams.
func BuildEnsemble(cfg *config.Config, integ cluster.Integrator) (*cluster.Ensemble, error) {
	return cluster.New(cluster.Config{
		N:         cfg.N,
		Dim:       cfg.Dim,
		Radius:    cfg.Radius,
		MeanMass:  cfg.MeanMass,
		StartTime: cfg.StartTime,
		Softening: cfg.Softening(),
		SaveEach:  cfg.SaveEach,
	}, integ, cluster.Sources{
		Masses:    sample.New(cfg.MassSeed),
		Positions: sample.New(cfg.PositionSeed),
	})
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, sim.Config{
		Dt:       e.cfg.Dt,
		Duration: e.cfg.Duration,
		SaveFile: e.cfg.SaveFile,
	})
}

func (e *Experiment) Config() config.Config        { return e.cfg }
func (e *Experiment) Ensemble() *cluster.Ensemble  { return e.ens }
func (e *Experiment) GetSimulator() *sim.Simulator { return e.simulator }

// Compare runs every method from identical initial conditions. Snapshot
// files are not written.
func Compare(ctx context.Context, cfg *config.Config, methods []string, reg *Registry) ([]*sim.Result, error) {
	results := make([]*sim.Result, 0, len(methods))
	for _, method := range methods {
		c := *cfg
		c.Method = method
		c.SaveFile = ""

		exp := New(&c)
		if err := exp.Setup(reg, reg.DefaultMetrics()); err != nil {
			return nil, fmt.Errorf("%s: %w", method, err)
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", method, err)
		}
		results = append(results, res)
	}
	return results, nil
}
