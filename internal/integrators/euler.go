package integrators

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/cluster/internal/cluster"
)

// Euler is the explicit first-order scheme, kept as a baseline for
// convergence comparisons.
type Euler struct {
	scratch
	newP, newV *mat.Dense
}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(sys cluster.System, dt float64) error {
	p := sys.Positions()
	if e.resize(p.Dims()) {
		rows, cols := p.Dims()
		e.newP = mat.NewDense(rows, cols, nil)
		e.newV = mat.NewDense(rows, cols, nil)
	}

	a := sys.Accelerations()
	v := sys.Velocities()
	axpy(e.newP, p, dt, v)
	axpy(e.newV, v, dt, a)
	return install(sys, e.newP, e.newV)
}
