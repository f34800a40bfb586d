package cluster

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/cluster/internal/snapshot"
)

// MassSource draws particle masses.
type MassSource interface {
	Mass(mean float64) float64
}

// PositionSource draws initial positions inside a sphere of the given radius.
type PositionSource interface {
	SphericalPosition(radius float64) []float64
}

// Sources holds the separately seeded streams an ensemble is built from.
type Sources struct {
	Masses    MassSource
	Positions PositionSource
}

// System is the bulk state an integrator operates on. Matrices are Dim×N
// with column i belonging to particle i.
type System interface {
	Positions() *mat.Dense
	Velocities() *mat.Dense
	SetPositions(p mat.Matrix) error
	SetVelocities(v mat.Matrix) error
	Accelerations() *mat.Dense
}

// Integrator advances a System by one fixed time step.
type Integrator interface {
	Name() string
	Step(sys System, dt float64) error
}

// Recorder receives saved states in order of increasing time.
type Recorder interface {
	Record(rec snapshot.Record) error
	Close() error
}

// HeaderWriter is implemented by recorders that store run metadata.
type HeaderWriter interface {
	WriteHeader(h snapshot.Header) error
}

// Summary aggregates the energetics of the current state.
type Summary struct {
	Time       float64
	Kinetic    float64
	Potential  float64
	Total      float64
	BoundTotal float64
	Bound      int
	N          int
	Finite     bool
}

// BoundFraction returns the share of bound particles.
func (s Summary) BoundFraction() float64 {
	if s.N == 0 {
		return 0
	}
	return float64(s.Bound) / float64(s.N)
}
