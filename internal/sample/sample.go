// Package sample draws the initial conditions of a cluster.
//
// Every [Generator] owns its own seeded stream, so a mass generator and a
// position generator seeded separately never interfere with each other:
//
//	masses := sample.New(seed)
//	positions := sample.New(seed + 1)
//	m := masses.Mass(10)
//	r := positions.SphericalPosition(20)
package sample

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/cluster/internal/constants"
)

// MassDeviation is the standard deviation of every sampled mass.
const MassDeviation = 1.0

type Generator struct {
	seed uint64
	src  rand.Source
	rnd  *rand.Rand
}

func New(seed uint64) *Generator {
	src := rand.NewSource(seed)
	return &Generator{
		seed: seed,
		src:  src,
		rnd:  rand.New(src),
	}
}

func (g *Generator) Seed() uint64 { return g.seed }

// Normal draws from a normal distribution with the given mean and deviation.
func (g *Generator) Normal(mean, deviation float64) float64 {
	return distuv.Normal{Mu: mean, Sigma: deviation, Src: g.src}.Rand()
}

func (g *Generator) NormalStandard() float64 {
	return g.Normal(0, 1)
}

// Uniform draws from [a, b).
func (g *Generator) Uniform(a, b float64) float64 {
	return distuv.Uniform{Min: a, Max: b, Src: g.src}.Rand()
}

// UniformStandard draws from [0, 1).
func (g *Generator) UniformStandard() float64 {
	return g.rnd.Float64()
}

// Mass draws a particle mass around mean with unit deviation.
func (g *Generator) Mass(mean float64) float64 {
	return g.Normal(mean, MassDeviation)
}

// SphericalPosition returns a Cartesian point distributed uniformly by volume
// inside a sphere of radius R.
//
// The radius uses the cube root of the uniform draw; r = R·u would crowd the
// points toward the center.
func (g *Generator) SphericalPosition(R float64) []float64 {
	u := g.UniformStandard()
	v := g.UniformStandard()
	w := g.UniformStandard()

	phi := 2 * constants.Pi * w
	theta := math.Acos(1 - 2*v)
	r := R * math.Cbrt(u)

	sinTheta := math.Sin(theta)
	return []float64{
		r * sinTheta * math.Cos(phi),
		r * sinTheta * math.Sin(phi),
		r * math.Cos(theta),
	}
}
