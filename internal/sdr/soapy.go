package sdr

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/pothosware/go-soapy-sdr/pkg/device"

	"github.com/rjboer/soapyrx/internal/sample"
)

// Enumerate lists available SoapySDR devices and their metadata. Failures
// surface as an empty list; enumeration is diagnostic only.
func Enumerate() []map[string]string {
	return device.Enumerate(nil)
}

// Open makes the SoapySDR device matching the kwargs selector, e.g.
// "driver=rtlsdr,serial=00000001".
func Open(selector string) (Device, error) {
	dev, err := device.Make(ParseKwargs(selector).Map())
	if err != nil {
		return nil, fmt.Errorf("could not open SoapySDR device: %w", err)
	}
	return &soapyDevice{dev: dev}, nil
}

type soapyDevice struct {
	dev *device.SDRDevice
}

const rxChannel = 0

func (d *soapyDevice) SetSampleRate(rate float64) error {
	return d.dev.SetSampleRate(device.DirectionRX, rxChannel, rate)
}

func (d *soapyDevice) SetFrequency(freq float64) error {
	return d.dev.SetFrequency(device.DirectionRX, rxChannel, freq, nil)
}

func (d *soapyDevice) SetFrequencyCorrection(ppm float64) error {
	return d.dev.SetFrequencyCorrection(device.DirectionRX, rxChannel, ppm)
}

func (d *soapyDevice) HasDCOffsetMode() bool {
	return d.dev.HasDCOffsetMode(device.DirectionRX, rxChannel)
}

func (d *soapyDevice) SetDCOffsetMode(automatic bool) error {
	return d.dev.SetDCOffsetMode(device.DirectionRX, rxChannel, automatic)
}

func (d *soapyDevice) SetGain(db float64) error {
	return d.dev.SetGain(device.DirectionRX, rxChannel, db)
}

func (d *soapyDevice) SetGainElement(name string, db float64) error {
	return d.dev.SetGainElement(device.DirectionRX, rxChannel, name, db)
}

func (d *soapyDevice) GainElement(name string) float64 {
	return d.dev.GetGainElement(device.DirectionRX, rxChannel, name)
}

func (d *soapyDevice) HasGainMode() bool {
	return d.dev.HasGainMode(device.DirectionRX, rxChannel)
}

func (d *soapyDevice) SetGainMode(automatic bool) error {
	return d.dev.SetGainMode(device.DirectionRX, rxChannel, automatic)
}

func (d *soapyDevice) SetAntenna(name string) error {
	return d.dev.SetAntennas(device.DirectionRX, rxChannel, name)
}

func (d *soapyDevice) Antenna() string {
	return d.dev.GetAntennas(device.DirectionRX, rxChannel)
}

func (d *soapyDevice) WriteSetting(key, value string) error {
	return d.dev.WriteSetting(key, value)
}

func (d *soapyDevice) ReadSetting(key string) string {
	return d.dev.ReadSetting(key)
}

func (d *soapyDevice) NativeStreamFormat() (string, float64) {
	return d.dev.GetNativeStreamFormat(device.DirectionRX, rxChannel)
}

func (d *soapyDevice) StreamFormats() []string {
	return d.dev.GetStreamFormats(device.DirectionRX, rxChannel)
}

func (d *soapyDevice) FormatSize(format string) int {
	return sample.SoapySize(format)
}

func (d *soapyDevice) Close() error {
	return d.dev.Unmake()
}

// OpenRXStream sets up a typed stream for the negotiated format. The
// binding exposes one stream type per element encoding, so the adapter owns
// the typed read buffer and serializes it into the caller's byte buffer.
func (d *soapyDevice) OpenRXStream(format string) (RXStream, error) {
	channels := []uint{rxChannel}
	s := &soapyStream{format: format}
	var err error
	switch format {
	case "CU8":
		s.cu8, err = d.dev.SetupSDRStreamCU8(device.DirectionRX, channels, nil)
	case "CS8":
		s.cs8, err = d.dev.SetupSDRStreamCS8(device.DirectionRX, channels, nil)
	case "CS16":
		s.cs16, err = d.dev.SetupSDRStreamCS16(device.DirectionRX, channels, nil)
	case "CF32":
		s.cf32, err = d.dev.SetupSDRStreamCF32(device.DirectionRX, channels, nil)
	default:
		return nil, fmt.Errorf("unsupported stream format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("could not set up %s stream: %w", format, err)
	}
	return s, nil
}

// soapyStream wraps whichever typed stream the negotiated format required.
// Exactly one of the stream pointers is set.
type soapyStream struct {
	format string
	cu8    *device.SDRStreamCU8
	cs8    *device.SDRStreamCS8
	cs16   *device.SDRStreamCS16
	cf32   *device.SDRStreamCF32

	u8Buf  [][]uint8
	s8Buf  [][]int8
	s16Buf [][]int16
	f32Buf [][]float32
}

func (s *soapyStream) MTU() int {
	switch {
	case s.cu8 != nil:
		return int(s.cu8.GetMTU())
	case s.cs8 != nil:
		return int(s.cs8.GetMTU())
	case s.cs16 != nil:
		return int(s.cs16.GetMTU())
	case s.cf32 != nil:
		return int(s.cf32.GetMTU())
	}
	return 0
}

func (s *soapyStream) Activate() error {
	switch {
	case s.cu8 != nil:
		return s.cu8.Activate(0, 0, 0)
	case s.cs8 != nil:
		return s.cs8.Activate(0, 0, 0)
	case s.cs16 != nil:
		return s.cs16.Activate(0, 0, 0)
	case s.cf32 != nil:
		return s.cf32.Activate(0, 0, 0)
	}
	return fmt.Errorf("no stream")
}

func (s *soapyStream) Deactivate() error {
	switch {
	case s.cu8 != nil:
		return s.cu8.Deactivate(0, 0)
	case s.cs8 != nil:
		return s.cs8.Deactivate(0, 0)
	case s.cs16 != nil:
		return s.cs16.Deactivate(0, 0)
	case s.cf32 != nil:
		return s.cf32.Deactivate(0, 0)
	}
	return fmt.Errorf("no stream")
}

func (s *soapyStream) Close() error {
	switch {
	case s.cu8 != nil:
		return s.cu8.Close()
	case s.cs8 != nil:
		return s.cs8.Close()
	case s.cs16 != nil:
		return s.cs16.Close()
	case s.cf32 != nil:
		return s.cf32.Close()
	}
	return fmt.Errorf("no stream")
}

func (s *soapyStream) Read(buf []byte, maxElems int, timeout time.Duration) (int, error) {
	flags := make([]int, 1)
	timeoutUs := uint(timeout.Microseconds())
	switch {
	case s.cu8 != nil:
		if len(s.u8Buf) == 0 {
			s.u8Buf = [][]uint8{make([]uint8, 2*maxElems)}
		}
		_, n, err := s.cu8.Read(s.u8Buf, uint(maxElems), flags, timeoutUs)
		if err != nil {
			return 0, err
		}
		copy(buf, s.u8Buf[0][:2*n])
		return int(n), nil
	case s.cs8 != nil:
		if len(s.s8Buf) == 0 {
			s.s8Buf = [][]int8{make([]int8, 2*maxElems)}
		}
		_, n, err := s.cs8.Read(s.s8Buf, uint(maxElems), flags, timeoutUs)
		if err != nil {
			return 0, err
		}
		for i := uint(0); i < 2*n; i++ {
			buf[i] = byte(s.s8Buf[0][i])
		}
		return int(n), nil
	case s.cs16 != nil:
		if len(s.s16Buf) == 0 {
			s.s16Buf = [][]int16{make([]int16, 2*maxElems)}
		}
		_, n, err := s.cs16.Read(s.s16Buf, uint(maxElems), flags, timeoutUs)
		if err != nil {
			return 0, err
		}
		for i := uint(0); i < 2*n; i++ {
			binary.LittleEndian.PutUint16(buf[2*i:], uint16(s.s16Buf[0][i]))
		}
		return int(n), nil
	case s.cf32 != nil:
		if len(s.f32Buf) == 0 {
			s.f32Buf = [][]float32{make([]float32, 2*maxElems)}
		}
		_, n, err := s.cf32.Read(s.f32Buf, uint(maxElems), flags, timeoutUs)
		if err != nil {
			return 0, err
		}
		for i := uint(0); i < 2*n; i++ {
			binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(s.f32Buf[0][i]))
		}
		return int(n), nil
	}
	return 0, fmt.Errorf("no stream")
}
