package integrators

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/cluster/internal/cluster"
)

// Leapfrog is the kick-drift-kick scheme. It is second order and
// symplectic: over long runs its energy error stays bounded where RK4
// drifts.
type Leapfrog struct {
	scratch
	vHalf *mat.Dense
	newP  *mat.Dense
	newV  *mat.Dense
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Name() string { return "leapfrog" }

func (l *Leapfrog) Step(sys cluster.System, dt float64) error {
	p0 := sys.Positions()
	if l.resize(p0.Dims()) {
		rows, cols := p0.Dims()
		l.vHalf = mat.NewDense(rows, cols, nil)
		l.newP = mat.NewDense(rows, cols, nil)
		l.newV = mat.NewDense(rows, cols, nil)
	}

	halfDt := 0.5 * dt
	axpy(l.vHalf, sys.Velocities(), halfDt, sys.Accelerations())

	axpy(l.newP, p0, dt, l.vHalf)
	if err := sys.SetPositions(l.newP); err != nil {
		return err
	}

	axpy(l.newV, l.vHalf, halfDt, sys.Accelerations())
	return sys.SetVelocities(l.newV)
}
