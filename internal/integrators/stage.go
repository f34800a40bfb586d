// Package integrators provides fixed-step time integration schemes for a
// [cluster.System].
//
//   - [RK4]: fourth order, four acceleration evaluations per step
//   - [Leapfrog]: second order symplectic, two evaluations per step
//   - [Euler]: first order, one evaluation per step
//
// Integrators keep scratch matrices between calls but no simulation state;
// an instance must not be shared by concurrently advancing ensembles.
package integrators

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/cluster/internal/cluster"
)

// scratch tracks the shape the reusable buffers were sized for.
type scratch struct {
	rows, cols int
}

// resize reports whether buffers need to be (re)allocated for rows×cols.
func (s *scratch) resize(rows, cols int) bool {
	if s.rows == rows && s.cols == cols {
		return false
	}
	s.rows, s.cols = rows, cols
	return true
}

// axpy sets dst = x + alpha·y.
func axpy(dst *mat.Dense, x mat.Matrix, alpha float64, y mat.Matrix) {
	dst.Scale(alpha, y)
	dst.Add(x, dst)
}

// weighted sets dst = x + h·(k1 + 2·k2 + 2·k3 + k4).
func weighted(dst *mat.Dense, x mat.Matrix, h float64, k1, k2, k3, k4 mat.Matrix) {
	dst.Add(k2, k3)
	dst.Scale(2, dst)
	dst.Add(dst, k1)
	dst.Add(dst, k4)
	dst.Scale(h, dst)
	dst.Add(x, dst)
}

func install(sys cluster.System, p, v mat.Matrix) error {
	if err := sys.SetPositions(p); err != nil {
		return err
	}
	return sys.SetVelocities(v)
}
