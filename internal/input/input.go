// Package input implements the SDR acquisition front end: it opens and
// configures a SoapySDR device, negotiates a raw sample encoding, and runs
// the streaming engine that feeds normalized complex samples into the
// shared ring buffer.
package input

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rjboer/soapyrx/internal/logging"
	"github.com/rjboer/soapyrx/internal/ring"
	"github.com/rjboer/soapyrx/internal/sample"
	"github.com/rjboer/soapyrx/internal/sdr"
	"github.com/rjboer/soapyrx/internal/telemetry"
)

// AutoGain is the Config.Gain sentinel requesting automatic gain mode.
const AutoGain = -100.0

// Config carries the externally supplied acquisition parameters. It is
// read-only for the lifetime of the input instance.
type Config struct {
	// Device is the SoapySDR kwargs selector, e.g. "driver=rtlsdr".
	Device string
	// SampleRate is the RX sample rate in Hz.
	SampleRate float64
	// CenterFreq is the tuned center frequency in Hz.
	CenterFreq float64
	// FreqOffset is added to CenterFreq when tuning (e.g. to dodge the DC
	// spike); downstream stages shift it back out.
	FreqOffset float64
	// CorrectionPPM is the frequency correction in parts per million.
	CorrectionPPM float64
	// Gain is the overall RX gain in dB, or AutoGain.
	Gain float64
	// GainElements optionally sets per-element gains instead of Gain, as a
	// "name1=value1,name2=value2" list. Takes precedence over Gain.
	GainElements string
	// Antenna optionally selects a named antenna.
	Antenna string
	// DeviceSettings optionally writes vendor settings, as a
	// "name1=value1,name2=value2" list.
	DeviceSettings string
	// BufSamples sizes the read buffers when the device does not report a
	// stream MTU.
	BufSamples int
}

// Capabilities is derived once during Init and read-only afterwards.
type Capabilities struct {
	// MaxTransferUnit is the most samples one stream read can deliver and
	// the size of the engine's working buffers.
	MaxTransferUnit int
	// BytesPerSample is the raw byte width of one complex sample.
	BytesPerSample int
	// FullScale is the raw magnitude corresponding to 100% input range.
	FullScale float64
	// Format is the negotiated semantic sample format.
	Format sample.Format
}

// Input is one acquisition instance: sole owner of its device and stream
// handles and sole producer on its ring buffer.
type Input struct {
	cfg   Config
	log   logging.Logger
	out   *ring.Ring
	stats *telemetry.StreamStats

	open      func(selector string) (sdr.Device, error)
	enumerate func() []map[string]string

	dev    sdr.Device
	stream sdr.RXStream
	desc   sample.Descriptor
	caps   Capabilities

	running   atomic.Bool
	drainOnce sync.Once
}

// Option adjusts an Input at construction time.
type Option func(*Input)

// WithLogger replaces the default logger.
func WithLogger(l logging.Logger) Option {
	return func(in *Input) {
		if l != nil {
			in.log = l
		}
	}
}

// WithOpener replaces the device opener (tests inject mocks here).
func WithOpener(open func(string) (sdr.Device, error)) Option {
	return func(in *Input) { in.open = open }
}

// WithEnumerator replaces the device enumerator.
func WithEnumerator(enum func() []map[string]string) Option {
	return func(in *Input) { in.enumerate = enum }
}

// WithStats attaches an externally owned stats collector.
func WithStats(s *telemetry.StreamStats) Option {
	return func(in *Input) {
		if s != nil {
			in.stats = s
		}
	}
}

// New creates an input producing into out. The instance is inert until
// Init succeeds and Run is started.
func New(cfg Config, out *ring.Ring, opts ...Option) *Input {
	in := &Input{
		cfg:       cfg,
		out:       out,
		log:       logging.Default(),
		stats:     telemetry.NewStreamStats(),
		open:      sdr.Open,
		enumerate: sdr.Enumerate,
	}
	for _, opt := range opts {
		opt(in)
	}
	in.log = in.log.With(logging.Field{Key: "device", Value: cfg.Device})
	return in
}

// Init opens and configures the device, negotiates the sample format, sets
// up the RX stream and derives the runtime capabilities. Any failure
// releases whatever was acquired and aborts input startup.
func (in *Input) Init() error {
	in.logDeviceSearch()

	dev, err := in.open(in.cfg.Device)
	if err != nil {
		return fmt.Errorf("%s: %w", in.cfg.Device, err)
	}
	in.dev = dev

	if err := in.configure(); err != nil {
		in.releaseHandles()
		return err
	}

	desc, soapyFormat, err := in.negotiateFormat()
	if err != nil {
		in.releaseHandles()
		return err
	}
	in.desc = desc

	stream, err := dev.OpenRXStream(soapyFormat)
	if err != nil {
		in.releaseHandles()
		return fmt.Errorf("%s: could not set up stream: %w", in.cfg.Device, err)
	}
	in.stream = stream

	mtu := stream.MTU()
	if mtu <= 0 {
		mtu = in.cfg.BufSamples
	}
	if mtu <= 0 {
		mtu = defaultReadSamples
	}
	in.caps = Capabilities{
		MaxTransferUnit: mtu,
		BytesPerSample:  desc.BytesPerSample,
		FullScale:       desc.FullScale,
		Format:          desc.Format,
	}
	return nil
}

// Capabilities returns the runtime capabilities derived by Init.
func (in *Input) Capabilities() Capabilities { return in.caps }

// Running reports whether the streaming engine is active.
func (in *Input) Running() bool { return in.running.Load() }

// Stats returns the stream counters fed by the engine.
func (in *Input) Stats() *telemetry.StreamStats { return in.stats }

// logDeviceSearch lists every visible device and its metadata. Diagnostic
// only: failures yield an empty list and never abort initialization.
func (in *Input) logDeviceSearch() {
	for i, info := range in.enumerate() {
		keys := make([]string, 0, len(info))
		for k := range info {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]logging.Field, 0, len(keys)+1)
		fields = append(fields, logging.Field{Key: "index", Value: i})
		for _, k := range keys {
			fields = append(fields, logging.Field{Key: k, Value: info[k]})
		}
		in.log.Info("found device", fields...)
	}
}

// releaseHandles tears down whatever Init acquired, in stream-before-device
// order. Only used on the failed-initialization path; the running engine
// releases through drain instead.
func (in *Input) releaseHandles() {
	if in.stream != nil {
		_ = in.stream.Deactivate()
		_ = in.stream.Close()
		in.stream = nil
	}
	if in.dev != nil {
		_ = in.dev.Close()
		in.dev = nil
	}
}
