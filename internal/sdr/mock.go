package sdr

import (
	"fmt"
	"time"

	"github.com/rjboer/soapyrx/internal/sample"
)

// MockDevice is a scriptable Device for tests and offline runs. Operations
// succeed unless their name appears in FailOps; every call is appended to
// Calls in order.
type MockDevice struct {
	FailOps map[string]bool

	Native          string
	NativeFullScale float64
	Formats         []string
	// Sizes overrides the byte width the device reports per format. Formats
	// not listed fall back to the SoapySDR grammar.
	Sizes map[string]int

	SupportsDCOffset bool
	SupportsAutoGain bool
	AntennaName      string
	Settings         map[string]string
	// SettingReadback overrides what ReadSetting returns, to fake devices
	// that mangle a written value.
	SettingReadback map[string]string

	Gains  map[string]float64
	Stream *MockRXStream

	Calls  []string
	closed int
}

// NewMockDevice returns a mock reporting a healthy CS16 device.
func NewMockDevice() *MockDevice {
	return &MockDevice{
		Native:           "CS16",
		NativeFullScale:  32768,
		Formats:          []string{"CS16", "CU8", "CF32"},
		SupportsDCOffset: true,
		SupportsAutoGain: true,
		Settings:         map[string]string{},
		Gains:            map[string]float64{},
		Stream:           &MockRXStream{MTUSamples: 1024},
	}
}

func (m *MockDevice) call(op string) error {
	m.Calls = append(m.Calls, op)
	if m.FailOps[op] {
		return fmt.Errorf("%s failed: mock error", op)
	}
	return nil
}

func (m *MockDevice) SetSampleRate(rate float64) error { return m.call("setSampleRate") }
func (m *MockDevice) SetFrequency(freq float64) error  { return m.call("setFrequency") }
func (m *MockDevice) SetFrequencyCorrection(ppm float64) error {
	return m.call("setFrequencyCorrection")
}

func (m *MockDevice) HasDCOffsetMode() bool { return m.SupportsDCOffset }
func (m *MockDevice) SetDCOffsetMode(automatic bool) error {
	return m.call("setDCOffsetMode")
}

func (m *MockDevice) SetGain(db float64) error {
	if err := m.call("setGain"); err != nil {
		return err
	}
	m.Gains["overall"] = db
	return nil
}

func (m *MockDevice) SetGainElement(name string, db float64) error {
	if err := m.call("setGainElement:" + name); err != nil {
		return err
	}
	m.Gains[name] = db
	return nil
}

func (m *MockDevice) GainElement(name string) float64 {
	m.Calls = append(m.Calls, "getGainElement:"+name)
	return m.Gains[name]
}

func (m *MockDevice) HasGainMode() bool { return m.SupportsAutoGain }
func (m *MockDevice) SetGainMode(automatic bool) error {
	return m.call("setGainMode")
}

func (m *MockDevice) SetAntenna(name string) error {
	if err := m.call("setAntenna"); err != nil {
		return err
	}
	m.AntennaName = name
	return nil
}

func (m *MockDevice) Antenna() string { return m.AntennaName }

func (m *MockDevice) WriteSetting(key, value string) error {
	if err := m.call("writeSetting:" + key); err != nil {
		return err
	}
	m.Settings[key] = value
	return nil
}

func (m *MockDevice) ReadSetting(key string) string {
	m.Calls = append(m.Calls, "readSetting:"+key)
	if v, ok := m.SettingReadback[key]; ok {
		return v
	}
	return m.Settings[key]
}

func (m *MockDevice) NativeStreamFormat() (string, float64) {
	return m.Native, m.NativeFullScale
}

func (m *MockDevice) StreamFormats() []string { return m.Formats }

func (m *MockDevice) FormatSize(format string) int {
	if m.Sizes != nil {
		if s, ok := m.Sizes[format]; ok {
			return s
		}
	}
	return sample.SoapySize(format)
}

func (m *MockDevice) OpenRXStream(format string) (RXStream, error) {
	if err := m.call("setupStream"); err != nil {
		return nil, err
	}
	m.Stream.Format = format
	return m.Stream, nil
}

func (m *MockDevice) Close() error {
	m.closed++
	return m.call("unmake")
}

// CloseCount reports how many times the device was released.
func (m *MockDevice) CloseCount() int { return m.closed }

// ReadResult scripts one MockRXStream.Read outcome: either an error or a
// raw byte payload holding Elems samples.
type ReadResult struct {
	Raw   []byte
	Elems int
	Err   error
}

// MockRXStream replays a scripted sequence of read results. Once the script
// is exhausted every further read idles for ReadDelay and returns zero
// samples, so engine tests can keep the loop spinning until cancellation
// without disturbing the scripted counts.
type MockRXStream struct {
	Format      string
	MTUSamples  int
	Script      []ReadResult  // consumed front to back
	ReadDelay   time.Duration // simulated blocking time per read
	ActivateErr error

	Activated   int
	Deactivated int
	Closed      int
	reads       int
}

func (s *MockRXStream) MTU() int { return s.MTUSamples }

func (s *MockRXStream) Activate() error {
	s.Activated++
	return s.ActivateErr
}

func (s *MockRXStream) Deactivate() error {
	s.Deactivated++
	return nil
}

func (s *MockRXStream) Close() error {
	s.Closed++
	return nil
}

func (s *MockRXStream) Read(buf []byte, maxElems int, timeout time.Duration) (int, error) {
	if s.ReadDelay > 0 {
		time.Sleep(s.ReadDelay)
	}
	if s.reads >= len(s.Script) {
		return 0, nil
	}
	r := s.Script[s.reads]
	s.reads++
	if r.Err != nil {
		return 0, r.Err
	}
	copy(buf, r.Raw)
	return r.Elems, nil
}
