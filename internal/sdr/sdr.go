// Package sdr is the seam between the acquisition core and the SoapySDR
// hardware abstraction layer. The Device and RXStream interfaces cover
// exactly the RX surface the core consumes; the hardware-backed variant
// lives in soapy.go and a scriptable fake in mock.go.
package sdr

import "time"

// Device is an opened radio device. It is exclusively owned by one input
// instance from Open until Close and must not be used afterwards.
type Device interface {
	// SetSampleRate sets the RX sample rate in Hz.
	SetSampleRate(rate float64) error
	// SetFrequency tunes the RX center frequency in Hz.
	SetFrequency(freq float64) error
	// SetFrequencyCorrection applies a frequency correction in ppm.
	SetFrequencyCorrection(ppm float64) error

	HasDCOffsetMode() bool
	SetDCOffsetMode(automatic bool) error

	SetGain(db float64) error
	SetGainElement(name string, db float64) error
	GainElement(name string) float64
	HasGainMode() bool
	SetGainMode(automatic bool) error

	SetAntenna(name string) error
	Antenna() string

	WriteSetting(key, value string) error
	ReadSetting(key string) string

	// NativeStreamFormat returns the device's preferred RX format name and
	// its reported full-scale value.
	NativeStreamFormat() (format string, fullScale float64)
	// StreamFormats lists every RX format the device supports, in
	// device-reported order.
	StreamFormats() []string
	// FormatSize reports the device's byte width for one complex sample of
	// the given format.
	FormatSize(format string) int

	// OpenRXStream creates an RX stream delivering raw samples in the given
	// format. The stream must be deactivated and closed before the device.
	OpenRXStream(format string) (RXStream, error)

	// Close releases the device. The handle is invalid afterwards.
	Close() error
}

// RXStream is an active RX stream owned by the streaming engine.
type RXStream interface {
	// MTU returns the maximum number of samples one Read can deliver.
	MTU() int
	Activate() error
	Deactivate() error
	Close() error
	// Read blocks up to timeout for raw samples, filling buf with the
	// little-endian interleaved I/Q bytes of at most maxElems samples, and
	// returns the number of samples read.
	Read(buf []byte, maxElems int, timeout time.Duration) (int, error)
}
