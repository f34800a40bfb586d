package cluster

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// UpdateEnergies recomputes the cached energies of every particle.
//
// Kinetic energy is ½·m·|v|². The potential is the unsoftened pair sum
// Σ_{j≠i} −G·m_i·m_j/|r_ij|. A particle is bound when its kinetic plus
// potential energy is negative; the bound-only potential sums over bound
// partners and is zero for an unbound particle. Boundedness is decided for
// all particles before any bound-only sum is taken.
func (e *Ensemble) UpdateEnergies() {
	for i, p := range e.particles {
		p.SetKineticEnergy(0.5 * p.mass * p.speed2())
		e.pe[i] = e.potentialOn(i, false)
	}
	for i, p := range e.particles {
		e.bound[i] = p.kinetic+e.pe[i] < 0
	}
	for i, p := range e.particles {
		peBound := 0.0
		if e.bound[i] {
			peBound = e.potentialOn(i, true)
		}
		p.SetPotentialEnergy(e.pe[i], peBound)
	}

	finite := e.finite()
	if !finite && !e.nonFinite {
		e.warnNonFinite()
	}
	e.nonFinite = !finite
}

func (e *Ensemble) potentialOn(i int, boundOnly bool) float64 {
	pi := e.particles[i]
	potential := 0.0
	for j, pj := range e.particles {
		if j == i || (boundOnly && !e.bound[j]) {
			continue
		}
		floats.SubTo(e.rij, pj.pos, pi.pos)
		potential += -e.g * pj.mass * pi.mass / floats.Norm(e.rij, 2)
	}
	return potential
}

// KineticEnergy is the summed kinetic energy of all particles.
func (e *Ensemble) KineticEnergy() float64 {
	ke := 0.0
	for _, p := range e.particles {
		ke += p.kinetic
	}
	return ke
}

// PotentialEnergy is the summed per-particle potential. Every pair appears
// twice in it.
func (e *Ensemble) PotentialEnergy() float64 {
	pe := 0.0
	for _, p := range e.particles {
		pe += p.potential
	}
	return pe
}

// TotalEnergy returns KE_total + ½·PE_total; the half undoes the double
// counting of each pair.
func (e *Ensemble) TotalEnergy() float64 {
	return e.KineticEnergy() + 0.5*e.PotentialEnergy()
}

// BoundEnergy is the total energy of the bound subsystem: kinetic energy of
// bound particles plus half their bound-only potentials.
func (e *Ensemble) BoundEnergy() float64 {
	ke, pe := 0.0, 0.0
	for _, p := range e.particles {
		if !p.IsBound() {
			continue
		}
		ke += p.kinetic
		pe += p.potentialBound
	}
	return ke + 0.5*pe
}

// BoundCount returns the number of bound particles.
func (e *Ensemble) BoundCount() int {
	n := 0
	for _, p := range e.particles {
		if p.IsBound() {
			n++
		}
	}
	return n
}

// Summary returns the aggregate energetics of the current state.
func (e *Ensemble) Summary() Summary {
	ke, pe := e.KineticEnergy(), e.PotentialEnergy()
	return Summary{
		Time:       e.t,
		Kinetic:    ke,
		Potential:  0.5 * pe,
		Total:      ke + 0.5*pe,
		BoundTotal: e.BoundEnergy(),
		Bound:      e.BoundCount(),
		N:          len(e.particles),
		Finite:     !e.nonFinite,
	}
}

func (e *Ensemble) finite() bool {
	for _, p := range e.particles {
		if !finiteSlice(p.pos) || !finiteSlice(p.vel) {
			return false
		}
		if !finiteValue(p.kinetic) || !finiteValue(p.potential) || !finiteValue(p.potentialBound) {
			return false
		}
	}
	return true
}

func finiteSlice(v []float64) bool {
	for _, x := range v {
		if !finiteValue(x) {
			return false
		}
	}
	return true
}

func finiteValue(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
