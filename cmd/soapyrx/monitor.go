package main

import (
	"context"
	"sync"
	"time"

	"github.com/rjboer/soapyrx/internal/dsp"
	"github.com/rjboer/soapyrx/internal/logging"
)

// spectrumMonitor keeps the most recent samples from the capture path and
// periodically logs the strongest spectral peak. It never blocks the
// consumer: feed copies into a fixed window under a mutex.
type spectrumMonitor struct {
	mu         sync.Mutex
	window     []complex64
	filled     int
	sampleRate float64
	log        logging.Logger
}

func newSpectrumMonitor(fftSize int, sampleRate float64, log logging.Logger) *spectrumMonitor {
	return &spectrumMonitor{
		window:     make([]complex64, fftSize),
		sampleRate: sampleRate,
		log:        log,
	}
}

// feed shifts samples into the analysis window, keeping the newest fftSize.
func (m *spectrumMonitor) feed(samples []complex64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	size := len(m.window)
	if len(samples) >= size {
		copy(m.window, samples[len(samples)-size:])
		m.filled = size
		return
	}
	keep := size - len(samples)
	copy(m.window, m.window[size-keep:])
	copy(m.window[keep:], samples)
	if m.filled += len(samples); m.filled > size {
		m.filled = size
	}
}

func (m *spectrumMonitor) snapshot() []complex64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.filled < len(m.window) {
		return nil
	}
	out := make([]complex64, len(m.window))
	copy(out, m.window)
	return out
}

// Run reports the spectral peak at each tick until the context ends.
func (m *spectrumMonitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.report()
		}
	}
}

func (m *spectrumMonitor) report() {
	block := m.snapshot()
	if block == nil {
		return
	}
	_, dbfs := dsp.Spectrum(block)
	offset, level := dsp.Peak(dbfs, m.sampleRate)
	m.log.Info("spectrum peak",
		logging.Field{Key: "offsetHz", Value: offset},
		logging.Field{Key: "dBFS", Value: level},
	)
}
