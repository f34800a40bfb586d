// Package snapshot defines the persisted state stream of a cluster run.
//
// A stream starts with a meta block and continues with one line per saved
// state:
//
//	*********META********
//	R0=20
//	N=2
//	epsilon=0.15
//	saveEach=1
//	********/META********
//	t=0 E=-12.5 (x=1 y=0 z=0 kinetic=0 potential=-12.5 potential_bound=-12.5 bound=True)(...)
//
// The field order inside each particle group is fixed: position components,
// kinetic energy, potential energy, bound-only potential energy, bound flag.
package snapshot

const (
	metaOpen  = "*********META********"
	metaClose = "********/META********"
)

// Header describes the run that produced a stream.
type Header struct {
	R0         float64
	N          int
	Dim        int
	Epsilon    float64
	SaveEach   int
	G          float64
	Integrator string
}

// Particle is the saved state of a single body.
type Particle struct {
	Position       []float64
	Kinetic        float64
	Potential      float64
	PotentialBound float64
	Bound          bool
}

// Record is one saved state of the whole ensemble.
type Record struct {
	Time      float64
	Energy    float64
	Particles []Particle
}

// BoundCount returns the number of bound particles in the record.
func (r Record) BoundCount() int {
	n := 0
	for _, p := range r.Particles {
		if p.Bound {
			n++
		}
	}
	return n
}

// axisName returns the key used for position component i.
func axisName(i int) string {
	switch i {
	case 0:
		return "x"
	case 1:
		return "y"
	case 2:
		return "z"
	}
	return "x" + itoa(i)
}
