package integrators

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/cluster/internal/cluster"
)

// RK4 is the fourth-order Runge–Kutta scheme. Each stage installs its trial
// positions and velocities into the system so the acceleration oracle sees
// them; the stage velocities are read back from the installed state.
type RK4 struct {
	scratch
	trialP, trialV *mat.Dense
	newP, newV     *mat.Dense
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) ensureScratch(rows, cols int) {
	if r.resize(rows, cols) {
		r.trialP = mat.NewDense(rows, cols, nil)
		r.trialV = mat.NewDense(rows, cols, nil)
		r.newP = mat.NewDense(rows, cols, nil)
		r.newV = mat.NewDense(rows, cols, nil)
	}
}

func (r *RK4) Step(sys cluster.System, dt float64) error {
	pn := sys.Positions()
	r.ensureScratch(pn.Dims())

	aK1 := sys.Accelerations()
	vK1 := sys.Velocities()

	axpy(r.trialV, vK1, 0.5*dt, aK1)
	axpy(r.trialP, pn, 0.5*dt, vK1)
	if err := install(sys, r.trialP, r.trialV); err != nil {
		return err
	}

	aK2 := sys.Accelerations()
	vK2 := sys.Velocities()

	axpy(r.trialV, vK1, 0.5*dt, aK2)
	axpy(r.trialP, pn, 0.5*dt, vK2)
	if err := install(sys, r.trialP, r.trialV); err != nil {
		return err
	}

	aK3 := sys.Accelerations()
	vK3 := sys.Velocities()

	axpy(r.trialV, vK1, dt, aK3)
	axpy(r.trialP, pn, dt, vK3)
	if err := install(sys, r.trialP, r.trialV); err != nil {
		return err
	}

	aK4 := sys.Accelerations()
	vK4 := sys.Velocities()

	weighted(r.newV, vK1, dt/6, aK1, aK2, aK3, aK4)
	weighted(r.newP, pn, dt/6, vK1, vK2, vK3, vK4)
	return install(sys, r.newP, r.newV)
}
