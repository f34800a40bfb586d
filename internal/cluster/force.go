package cluster

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Accelerations returns the Dim×N gravitational accelerations of the current
// positions. For each particle
//
//	F_i = Σ_{j≠i} G·m_j·m_i·r_ij / ((|r_ij|² + ε²)·|r_ij|),  a_i = F_i / m_i
//
// where r_ij points from i to j. Each particle's sum is evaluated on its own,
// so the result depends only on the positions.
func (e *Ensemble) Accelerations() *mat.Dense {
	n := len(e.particles)
	a := mat.NewDense(e.dim, n, nil)
	for i, p := range e.particles {
		e.forceOn(i, e.force)
		floats.Scale(1/p.mass, e.force)
		a.SetCol(i, e.force)
	}
	return a
}

// Force returns the total force on particle i.
func (e *Ensemble) Force(i int) []float64 {
	f := make([]float64, e.dim)
	e.forceOn(i, f)
	return f
}

func (e *Ensemble) forceOn(i int, dst []float64) {
	for k := range dst {
		dst[k] = 0
	}
	eps2 := e.eps * e.eps
	pi := e.particles[i]
	for j, pj := range e.particles {
		if j == i {
			continue
		}
		floats.SubTo(e.rij, pj.pos, pi.pos)
		r := floats.Norm(e.rij, 2)
		floats.AddScaled(dst, e.g*pj.mass*pi.mass/((r*r+eps2)*r), e.rij)
	}
}
