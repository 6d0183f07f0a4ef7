package dsp

import (
	"math"
	"testing"
)

func TestSpectrumPeakLocation(t *testing.T) {
	n := 8
	data := make([]complex64, n)
	for i := 0; i < n; i++ {
		phase := 2 * math.Pi * float64(i) / float64(n)
		data[i] = complex64(complex(math.Cos(phase), math.Sin(phase)))
	}
	bins, db := Spectrum(data)
	if len(bins) != n || len(db) != n {
		t.Fatalf("unexpected lengths %d %d", len(bins), len(db))
	}
	maxIdx := 0
	maxMag := math.Inf(-1)
	for i, v := range bins {
		mag := real(v)*real(v) + imag(v)*imag(v)
		if mag > maxMag {
			maxMag = mag
			maxIdx = i
		}
	}
	if expected := n/2 + 1; maxIdx != expected {
		t.Fatalf("expected peak at %d got %d", expected, maxIdx)
	}
	for _, v := range db {
		if math.IsNaN(v) {
			t.Fatalf("dbfs contains NaN")
		}
	}
}

func TestSpectrumEmptyInput(t *testing.T) {
	bins, db := Spectrum(nil)
	if len(bins) != 0 || len(db) != 0 {
		t.Fatalf("expected empty outputs")
	}
}

func TestFFTShift(t *testing.T) {
	in := []complex128{0, 1, 2, 3}
	out := FFTShift(in)
	expected := []complex128{2, 3, 0, 1}
	for i := range expected {
		if out[i] != expected[i] {
			t.Fatalf("index %d expected %v got %v", i, expected[i], out[i])
		}
	}
}

func TestPeak(t *testing.T) {
	db := []float64{-80, -80, -3, -80}
	offset, level := Peak(db, 4000)
	if level != -3 {
		t.Fatalf("expected level -3, got %v", level)
	}
	if offset != 0 {
		// index 2 of 4 bins is the centered DC bin
		t.Fatalf("expected DC offset, got %v", offset)
	}

	db = []float64{-80, -80, -80, -3}
	offset, _ = Peak(db, 4000)
	if offset != 1000 {
		t.Fatalf("expected +1000 Hz, got %v", offset)
	}

	if _, level := Peak(nil, 4000); !math.IsInf(level, -1) {
		t.Fatalf("expected -Inf for empty spectrum")
	}
}
