package cluster

import (
	"fmt"
	"math"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/cluster/internal/constants"
)

const (
	DefaultN         = 100
	DefaultDim       = 3
	DefaultRadius    = 20.0
	DefaultMeanMass  = 10.0
	DefaultSoftening = 0.15
	DefaultSaveEach  = 1
)

// Config holds the construction parameters of an ensemble.
type Config struct {
	N         int
	Dim       int
	Radius    float64
	MeanMass  float64
	StartTime float64
	// Softening is the length ε added to the squared separation in the force
	// law. Zero disables smoothing.
	Softening float64
	// SaveEach persists every SaveEach-th completed advance.
	SaveEach int
}

func DefaultConfig() Config {
	return Config{
		N:         DefaultN,
		Dim:       DefaultDim,
		Radius:    DefaultRadius,
		MeanMass:  DefaultMeanMass,
		Softening: DefaultSoftening,
		SaveEach:  DefaultSaveEach,
	}
}

func (c Config) Validate() error {
	switch {
	case c.N <= 0:
		return fmt.Errorf("%w: N must be positive, got %d", ErrParameterBounds, c.N)
	case c.Dim <= 0:
		return fmt.Errorf("%w: dimension must be positive, got %d", ErrParameterBounds, c.Dim)
	case !positiveFinite(c.Radius):
		return fmt.Errorf("%w: radius must be positive, got %g", ErrParameterBounds, c.Radius)
	case !positiveFinite(c.MeanMass):
		return fmt.Errorf("%w: mean mass must be positive, got %g", ErrParameterBounds, c.MeanMass)
	case !(c.Softening >= 0) || math.IsInf(c.Softening, 0):
		return fmt.Errorf("%w: softening must be non-negative, got %g", ErrParameterBounds, c.Softening)
	case c.SaveEach < 1:
		return fmt.Errorf("%w: save cadence must be at least 1, got %d", ErrParameterBounds, c.SaveEach)
	case math.IsNaN(c.StartTime) || math.IsInf(c.StartTime, 0):
		return fmt.Errorf("%w: start time must be finite, got %g", ErrParameterBounds, c.StartTime)
	}
	return nil
}

// Ensemble owns the particles of a cluster and the force and energy model
// over them. Particles are the only copy of the state; bulk views are
// copied out and back in.
type Ensemble struct {
	particles []*Particle
	dim       int

	t        float64
	rho0     float64
	g        float64
	radius   float64
	meanMass float64
	eps      float64

	integrator Integrator
	saveEach   int
	counter    int
	steps      int
	nonFinite  bool

	recorder Recorder
	logger   log.Logger

	// scratch reused by the force and energy passes
	rij   []float64
	force []float64
	pe    []float64
	bound []bool
}

// New samples cfg.N particles from src and returns a ready ensemble with its
// energies computed. No ensemble is returned on error.
func New(cfg Config, integ Integrator, src Sources) (*Ensemble, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if integ == nil {
		return nil, fmt.Errorf("%w: integrator is required", ErrParameterBounds)
	}
	if src.Masses == nil || src.Positions == nil {
		return nil, fmt.Errorf("%w: mass and position sources are required", ErrParameterBounds)
	}

	rho0 := (3.0 * float64(cfg.N) * cfg.MeanMass) / (4 * constants.Pi * cfg.Radius * cfg.Radius * cfg.Radius)

	e := &Ensemble{
		particles:  make([]*Particle, 0, cfg.N),
		dim:        cfg.Dim,
		t:          cfg.StartTime,
		rho0:       rho0,
		g:          (3.0 * constants.Pi) / (32.0 * rho0),
		radius:     cfg.Radius,
		meanMass:   cfg.MeanMass,
		eps:        cfg.Softening,
		integrator: integ,
		saveEach:   cfg.SaveEach,
		logger:     log.NewNopLogger(),
		rij:        make([]float64, cfg.Dim),
		force:      make([]float64, cfg.Dim),
		pe:         make([]float64, cfg.N),
		bound:      make([]bool, cfg.N),
	}

	for i := 0; i < cfg.N; i++ {
		p, err := e.makeParticle(i, src)
		if err != nil {
			return nil, err
		}
		e.particles = append(e.particles, p)
	}

	e.UpdateEnergies()
	return e, nil
}

func (e *Ensemble) makeParticle(id int, src Sources) (*Particle, error) {
	pos := src.Positions.SphericalPosition(e.radius)
	if len(pos) != e.dim {
		return nil, fmt.Errorf("%w: sampled position has %d components, ensemble dimension is %d",
			ErrDimensionMismatch, len(pos), e.dim)
	}
	mass := src.Masses.Mass(e.meanMass)
	return NewParticle(id, mass, pos, make([]float64, e.dim))
}

func (e *Ensemble) SetLogger(l log.Logger) {
	if l == nil {
		l = log.NewNopLogger()
	}
	e.logger = l
}

// SetSoftening changes ε. Zero disables smoothing.
func (e *Ensemble) SetSoftening(eps float64) error {
	if !(eps >= 0) || math.IsInf(eps, 0) {
		return fmt.Errorf("%w: softening must be non-negative, got %g", ErrParameterBounds, eps)
	}
	e.eps = eps
	return nil
}

// SetSaveEach changes the save cadence and restarts the step counter.
func (e *Ensemble) SetSaveEach(k int) error {
	if k < 1 {
		return fmt.Errorf("%w: save cadence must be at least 1, got %d", ErrParameterBounds, k)
	}
	e.saveEach = k
	e.counter = 0
	return nil
}

func (e *Ensemble) Len() int                 { return len(e.particles) }
func (e *Ensemble) Dim() int                 { return e.dim }
func (e *Ensemble) Time() float64            { return e.t }
func (e *Ensemble) G() float64               { return e.g }
func (e *Ensemble) Density() float64         { return e.rho0 }
func (e *Ensemble) Radius() float64          { return e.radius }
func (e *Ensemble) Softening() float64       { return e.eps }
func (e *Ensemble) SaveEach() int            { return e.saveEach }
func (e *Ensemble) Steps() int               { return e.steps }
func (e *Ensemble) Integrator() Integrator   { return e.integrator }
func (e *Ensemble) Particle(i int) *Particle { return e.particles[i] }

// Particles returns the particles in iteration order.
func (e *Ensemble) Particles() []*Particle {
	ps := make([]*Particle, len(e.particles))
	copy(ps, e.particles)
	return ps
}

// DynamicalTime is the free-fall time √(3π/(32·G·ρ0)), one time unit by the
// choice of G.
func (e *Ensemble) DynamicalTime() float64 {
	return math.Sqrt(3 * constants.Pi / (32 * e.g * e.rho0))
}

// Positions returns a Dim×N copy of all positions.
func (e *Ensemble) Positions() *mat.Dense {
	m := mat.NewDense(e.dim, len(e.particles), nil)
	for i, p := range e.particles {
		m.SetCol(i, p.pos)
	}
	return m
}

// Velocities returns a Dim×N copy of all velocities.
func (e *Ensemble) Velocities() *mat.Dense {
	m := mat.NewDense(e.dim, len(e.particles), nil)
	for i, p := range e.particles {
		m.SetCol(i, p.vel)
	}
	return m
}

// SetPositions writes column i of p into particle i.
func (e *Ensemble) SetPositions(p mat.Matrix) error {
	if err := e.checkShape(p); err != nil {
		return err
	}
	for i, part := range e.particles {
		mat.Col(part.pos, i, p)
	}
	return nil
}

// SetVelocities writes column i of v into particle i.
func (e *Ensemble) SetVelocities(v mat.Matrix) error {
	if err := e.checkShape(v); err != nil {
		return err
	}
	for i, part := range e.particles {
		mat.Col(part.vel, i, v)
	}
	return nil
}

func (e *Ensemble) checkShape(m mat.Matrix) error {
	r, c := m.Dims()
	if r != e.dim || c != len(e.particles) {
		return fmt.Errorf("%w: got %d×%d, want %d×%d", ErrDimensionMismatch, r, c, e.dim, len(e.particles))
	}
	return nil
}

// Advance moves the ensemble forward by dt with its integrator, refreshes
// the energies and saves a state once every SaveEach calls.
func (e *Ensemble) Advance(dt float64) error {
	if !positiveFinite(dt) {
		return fmt.Errorf("%w: got %g", ErrInvalidStep, dt)
	}
	if err := e.integrator.Step(e, dt); err != nil {
		return &StepError{Step: e.steps, Time: e.t, Wrapped: err}
	}

	e.t += dt
	e.UpdateEnergies()
	e.steps++
	e.counter++

	if e.counter == e.saveEach {
		if e.recorder != nil {
			if err := e.SaveState(); err != nil {
				return &StepError{Step: e.steps, Time: e.t, Wrapped: err}
			}
		}
		e.counter = 0
	}
	return nil
}

func (e *Ensemble) warnNonFinite() {
	level.Warn(e.logger).Log("msg", "non-finite state", "t", e.t, "step", e.steps, "softening", e.eps)
}

func positiveFinite(x float64) bool {
	return x > 0 && !math.IsInf(x, 0)
}
