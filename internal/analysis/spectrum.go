package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

// EnergySpectrum returns the amplitude spectrum of the energy series about
// its mean, one value per frequency bin k/(n·Δt) for k = 0..n/2. The bounded
// error of a symplectic scheme shows up as peaks at orbital frequencies.
func EnergySpectrum(energies []float64) []float64 {
	n := len(energies)
	if n < 2 {
		return nil
	}
	mean := stat.Mean(energies, nil)
	seq := make([]float64, n)
	for i, e := range energies {
		seq[i] = e - mean
	}

	coeff := fft.FFTReal(seq)
	ps := make([]float64, n/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(coeff[i])
	}
	return ps
}

// DominantFrequency returns the strongest non-zero frequency of the
// spectrum of a series sampled every dt.
func DominantFrequency(spectrum []float64, n int, dt float64) float64 {
	maxPower, maxIdx := 0.0, 0
	for i := 1; i < len(spectrum); i++ {
		if spectrum[i] > maxPower {
			maxPower = spectrum[i]
			maxIdx = i
		}
	}
	if n == 0 || dt == 0 {
		return 0
	}
	return float64(maxIdx) / (float64(n) * dt)
}
