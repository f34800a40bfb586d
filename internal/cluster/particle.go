package cluster

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Particle is one body of the cluster. Its identity and mass never change;
// position and velocity are rewritten by integrators and the energies by the
// ensemble's energy pass.
type Particle struct {
	id   int
	mass float64
	pos  []float64
	vel  []float64

	kinetic        float64
	potential      float64
	potentialBound float64
}

func NewParticle(id int, mass float64, pos, vel []float64) (*Particle, error) {
	if !(mass > 0) || math.IsInf(mass, 0) {
		return nil, fmt.Errorf("%w: particle %d has mass %g", ErrNonPositiveMass, id, mass)
	}
	if len(pos) == 0 || len(pos) != len(vel) {
		return nil, fmt.Errorf("%w: particle %d position has %d components, velocity %d",
			ErrDimensionMismatch, id, len(pos), len(vel))
	}
	p := &Particle{
		id:   id,
		mass: mass,
		pos:  make([]float64, len(pos)),
		vel:  make([]float64, len(vel)),
	}
	copy(p.pos, pos)
	copy(p.vel, vel)
	return p, nil
}

func (p *Particle) ID() int             { return p.id }
func (p *Particle) Mass() float64       { return p.mass }
func (p *Particle) Dim() int            { return len(p.pos) }
func (p *Particle) Position() []float64 { return clone(p.pos) }
func (p *Particle) Velocity() []float64 { return clone(p.vel) }

func (p *Particle) KineticEnergy() float64 { return p.kinetic }

// PotentialEnergy is the potential from every other particle.
func (p *Particle) PotentialEnergy() float64 { return p.potential }

// BoundPotentialEnergy is the potential from bound partners only; zero when
// the particle itself is unbound.
func (p *Particle) BoundPotentialEnergy() float64 { return p.potentialBound }

// SetPosition copies pos into the particle. Only the length is checked.
func (p *Particle) SetPosition(pos []float64) {
	if len(pos) != len(p.pos) {
		panic(ErrDimensionMismatch)
	}
	copy(p.pos, pos)
}

func (p *Particle) SetVelocity(vel []float64) {
	if len(vel) != len(p.vel) {
		panic(ErrDimensionMismatch)
	}
	copy(p.vel, vel)
}

func (p *Particle) SetKineticEnergy(ke float64) {
	p.kinetic = ke
}

// SetPotentialEnergy sets the total and bound-only potentials together.
func (p *Particle) SetPotentialEnergy(total, bound float64) {
	p.potential = total
	p.potentialBound = bound
}

// DistanceTo returns other.Position() - p.Position().
func (p *Particle) DistanceTo(other *Particle) []float64 {
	r := make([]float64, len(p.pos))
	floats.SubTo(r, other.pos, p.pos)
	return r
}

// IsBound reports whether kinetic plus potential energy is negative.
func (p *Particle) IsBound() bool {
	return p.kinetic+p.potential < 0
}

// speed2 returns |v|².
func (p *Particle) speed2() float64 {
	return floats.Dot(p.vel, p.vel)
}

func clone(v []float64) []float64 {
	c := make([]float64, len(v))
	copy(c, v)
	return c
}
