package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/cluster/internal/snapshot"
)

var (
	ErrEmptyRecord = errors.New("analysis: record has no finite particle positions")

	// ErrZeroExtent is returned when every particle sits at the centroid, so
	// no shell has a volume.
	ErrZeroExtent = errors.New("analysis: all particles sit at the centroid")
)

// Profile is a radial number-density profile about the mean position.
type Profile struct {
	Center  []float64
	Edges   []float64
	Counts  []float64
	Density []float64
}

// Centroid returns the mean position of the finite particles in rec.
func Centroid(rec snapshot.Record) ([]float64, error) {
	pos := finitePositions(rec)
	if len(pos) == 0 {
		return nil, ErrEmptyRecord
	}
	dim := len(pos[0])
	center := make([]float64, dim)
	axis := make([]float64, len(pos))
	for k := 0; k < dim; k++ {
		for i, p := range pos {
			axis[i] = p[k]
		}
		center[k] = stat.Mean(axis, nil)
	}
	return center, nil
}

// Radii returns the sorted distances of the finite particles from center.
func Radii(rec snapshot.Record, center []float64) []float64 {
	pos := finitePositions(rec)
	r := make([]float64, len(pos))
	for i, p := range pos {
		r[i] = floats.Distance(p, center, 2)
	}
	sort.Float64s(r)
	return r
}

// RadialProfile bins particle distances from the centroid into bins equal
// shells out to the farthest particle and divides by shell volume.
func RadialProfile(rec snapshot.Record, bins int) (*Profile, error) {
	if bins < 1 {
		return nil, fmt.Errorf("analysis: need at least one bin, got %d", bins)
	}
	center, err := Centroid(rec)
	if err != nil {
		return nil, err
	}
	r := Radii(rec, center)
	if r[len(r)-1] == 0 {
		return nil, ErrZeroExtent
	}

	edges := make([]float64, bins+1)
	floats.Span(edges, 0, r[len(r)-1])
	// the outermost particle must fall inside the last bin
	edges[bins] = math.Nextafter(edges[bins], math.Inf(1))

	counts := stat.Histogram(nil, edges, r, nil)

	dim := len(center)
	density := make([]float64, bins)
	for i := range density {
		vol := ballVolume(dim, edges[i+1]) - ballVolume(dim, edges[i])
		if vol > 0 {
			density[i] = counts[i] / vol
		}
	}

	return &Profile{
		Center:  center,
		Edges:   edges,
		Counts:  counts,
		Density: density,
	}, nil
}

// LagrangianRadius returns the radius about the centroid enclosing the
// given fraction of particles.
func LagrangianRadius(rec snapshot.Record, fraction float64) (float64, error) {
	if !(fraction > 0 && fraction <= 1) {
		return 0, fmt.Errorf("analysis: fraction must be in (0, 1], got %g", fraction)
	}
	center, err := Centroid(rec)
	if err != nil {
		return 0, err
	}
	return stat.Quantile(fraction, stat.Empirical, Radii(rec, center), nil), nil
}

// ballVolume is the volume of a dim-dimensional ball of radius r.
func ballVolume(dim int, r float64) float64 {
	d := float64(dim)
	return math.Pow(math.Pi, d/2) / math.Gamma(d/2+1) * math.Pow(r, d)
}

func finitePositions(rec snapshot.Record) [][]float64 {
	out := make([][]float64, 0, len(rec.Particles))
	for _, p := range rec.Particles {
		ok := len(p.Position) > 0
		for _, x := range p.Position {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, p.Position)
		}
	}
	return out
}
