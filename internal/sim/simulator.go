package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/san-kum/cluster/internal/cluster"
)

// Simulator drives an ensemble through a fixed-step run: open the snapshot
// stream, save the initial state, advance while i·dt ≤ T, close.
type Simulator struct {
	ens       *cluster.Ensemble
	metrics   []Metric
	observers []Observer
	logger    log.Logger
}

func New(ens *cluster.Ensemble) *Simulator {
	return &Simulator{
		ens:       ens,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    log.NewNopLogger(),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// WithLogger sets the logger for run events and the ensemble.
func (s *Simulator) WithLogger(l log.Logger) *Simulator {
	if l == nil {
		l = log.NewNopLogger()
	}
	s.logger = l
	s.ens.SetLogger(l)
	return s
}

func (s *Simulator) Ensemble() *cluster.Ensemble { return s.ens }

func (s *Simulator) Run(ctx context.Context, cfg Config) (res *Result, err error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	if cfg.SaveFile != "" {
		if err := s.ens.Open(cfg.SaveFile); err != nil {
			return nil, err
		}
	}
	defer func() {
		if cerr := s.ens.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close snapshot stream: %w", cerr)
		}
	}()

	if err := s.ens.SaveState(); err != nil && !errors.Is(err, cluster.ErrNotOpen) {
		return nil, err
	}

	steps := cfg.Steps()
	res = &Result{
		Integrator: s.ens.Integrator().Name(),
		Summaries:  make([]cluster.Summary, 0, steps+1),
		Metrics:    make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	initial := s.ens.Summary()
	s.observe(initial, res)

	level.Info(s.logger).Log("msg", "run started", "integrator", res.Integrator,
		"n", s.ens.Len(), "dt", cfg.Dt, "duration", cfg.Duration, "steps", steps,
		"softening", s.ens.Softening(), "energy", initial.Total)

	start := time.Now()
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			res.Elapsed = time.Since(start)
			s.finish(initial, res)
			return res, ctx.Err()
		default:
		}

		if err := s.ens.Advance(cfg.Dt); err != nil {
			res.Elapsed = time.Since(start)
			return res, SimError{Time: s.ens.Time(), Step: i, Message: "advance failed", Err: err}
		}
		res.StepsTaken++

		summary := s.ens.Summary()
		s.observe(summary, res)
		for _, obs := range s.observers {
			obs.OnStep(i+1, steps, summary)
		}
	}
	res.Elapsed = time.Since(start)
	s.finish(initial, res)

	final := res.Final()
	level.Info(s.logger).Log("msg", "run finished", "steps", res.StepsTaken,
		"elapsed", res.Elapsed, "energy", final.Total, "drift", res.EnergyDrift,
		"bound", final.Bound)
	return res, nil
}

func (s *Simulator) observe(summary cluster.Summary, res *Result) {
	res.Summaries = append(res.Summaries, summary)
	for _, m := range s.metrics {
		m.Observe(summary)
	}
}

func (s *Simulator) finish(initial cluster.Summary, res *Result) {
	if initial.Total != 0 {
		res.EnergyDrift = math.Abs(res.Final().Total-initial.Total) / math.Abs(initial.Total)
	}
	for _, m := range s.metrics {
		res.Metrics[m.Name()] = m.Value()
		level.Debug(s.logger).Log("msg", "metric", "name", m.Name(), "value", m.Value())
	}
}

func validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if !(cfg.Duration >= 0) || math.IsInf(cfg.Duration, 0) {
		return fmt.Errorf("duration must be non-negative, got %f", cfg.Duration)
	}
	return nil
}
