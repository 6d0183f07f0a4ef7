// Package dsp provides the spectrum diagnostics used by the acquisition
// monitor. Input samples are already normalized to full scale 1.0, so dBFS
// values come straight from the FFT magnitudes.
package dsp

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// FFTShift returns the FFT output shifted so that DC is centered.
func FFTShift(data []complex128) []complex128 {
	n := len(data)
	if n == 0 {
		return []complex128{}
	}
	half := n / 2
	shifted := append(data[half:], data[:half]...)
	return shifted
}

// Spectrum performs a Hamming-windowed FFT on normalized complex samples
// and returns the DC-centered bins together with their magnitude in dBFS.
func Spectrum(samples []complex64) ([]complex128, []float64) {
	if len(samples) == 0 {
		return []complex128{}, []float64{}
	}
	win := Hamming(len(samples))
	windowed := ApplyWindow(samples, win)
	bins := fourier.NewCmplxFFT(len(samples)).Coefficients(nil, windowed)
	sumWin := 0.0
	for _, v := range win {
		sumWin += v
	}
	for i := range bins {
		bins[i] /= complex(sumWin, 0)
	}
	shifted := FFTShift(bins)
	dbfs := make([]float64, len(shifted))
	for i, v := range shifted {
		mag := cmplx.Abs(v)
		if mag == 0 {
			dbfs[i] = math.Inf(-1)
			continue
		}
		dbfs[i] = 20 * math.Log10(mag)
	}
	return shifted, dbfs
}

// Peak locates the strongest bin of a spectrum and converts its index to a
// frequency offset from the center, given the sample rate the block was
// captured at.
func Peak(dbfs []float64, sampleRate float64) (offsetHz float64, level float64) {
	if len(dbfs) == 0 {
		return 0, math.Inf(-1)
	}
	maxIdx := 0
	level = math.Inf(-1)
	for i, v := range dbfs {
		if v > level {
			level = v
			maxIdx = i
		}
	}
	binWidth := sampleRate / float64(len(dbfs))
	offsetHz = (float64(maxIdx) - float64(len(dbfs)/2)) * binWidth
	return offsetHz, level
}
