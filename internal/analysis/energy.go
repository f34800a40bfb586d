package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/cluster/internal/snapshot"
)

// EnergySeries extracts the time and total energy of every record.
func EnergySeries(records []snapshot.Record) (times, energies []float64) {
	times = make([]float64, len(records))
	energies = make([]float64, len(records))
	for i, r := range records {
		times[i] = r.Time
		energies[i] = r.Energy
	}
	return times, energies
}

// BoundFractionSeries returns the share of bound particles in every record.
func BoundFractionSeries(records []snapshot.Record) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		if len(r.Particles) > 0 {
			out[i] = float64(r.BoundCount()) / float64(len(r.Particles))
		}
	}
	return out
}

// RelativeDrift returns |E_i - E_0| / |E_0| for every energy. A zero
// reference energy gives zero drift throughout.
func RelativeDrift(energies []float64) []float64 {
	out := make([]float64, len(energies))
	if len(energies) == 0 || energies[0] == 0 {
		return out
	}
	e0 := math.Abs(energies[0])
	for i, e := range energies {
		out[i] = math.Abs(e-energies[0]) / e0
	}
	return out
}

type EnergyStats struct {
	Initial    float64
	Final      float64
	MaxDrift   float64
	FinalDrift float64
	MeanDrift  float64
	StdDrift   float64
	// DriftRate is the least-squares slope of the relative drift against
	// time.
	DriftRate float64
}

func EnergyStatistics(times, energies []float64) EnergyStats {
	var s EnergyStats
	if len(energies) == 0 {
		return s
	}
	drift := RelativeDrift(energies)

	s.Initial = energies[0]
	s.Final = energies[len(energies)-1]
	s.FinalDrift = drift[len(drift)-1]
	for _, d := range drift {
		s.MaxDrift = math.Max(s.MaxDrift, d)
	}
	if len(drift) > 1 {
		s.MeanDrift, s.StdDrift = stat.MeanStdDev(drift, nil)
	} else {
		s.MeanDrift = drift[0]
	}
	if len(times) == len(drift) && len(times) > 1 {
		_, s.DriftRate = stat.LinearRegression(times, drift, nil, false)
	}
	return s
}
