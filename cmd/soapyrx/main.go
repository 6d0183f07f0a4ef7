// Command soapyrx captures RX samples from a SoapySDR device and writes
// them as interleaved little-endian complex float32 to a file or stdout.
package main

import (
	"bufio"
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rjboer/soapyrx/internal/input"
	"github.com/rjboer/soapyrx/internal/logging"
	"github.com/rjboer/soapyrx/internal/ring"
	"github.com/rjboer/soapyrx/internal/telemetry"
)

const ringCapacity = 1 << 18

func main() {
	var (
		cliCfgFile  = flag.String("c", "", "configuration file to load parameters from")
		cliDevice   = flag.String("device", "", "SoapySDR device selector, e.g. driver=rtlsdr")
		cliRate     = flag.String("rate", "", "sample rate in Hz (K/M/G suffixes accepted)")
		cliFreq     = flag.String("freq", "", "center frequency in Hz (K/M/G suffixes accepted)")
		cliGain     = flag.Float64("gain", input.AutoGain, "RX gain in dB (omit for automatic gain)")
		cliOut      = flag.String("out", "", "output file for cf32 samples (default stdout)")
		cliLogLevel = flag.String("loglevel", "", "log level: debug, info, warn, error")
	)
	flag.Parse()

	cfg, err := getConfig(*cliCfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to read configuration: %s\n", err)
		os.Exit(1)
	}
	applyFlagOverrides(cfg, *cliDevice, *cliRate, *cliFreq, *cliGain, *cliOut, *cliLogLevel)

	log, err := buildLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log configuration: %s\n", err)
		os.Exit(1)
	}
	logging.SetDefault(log)

	inCfg, err := cfg.inputConfig()
	if err != nil {
		log.Error("invalid radio configuration", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	sink, closeSink, err := openSink(cfg.Output.File)
	if err != nil {
		log.Error("unable to open output", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
	defer closeSink()

	out, err := ring.New(ringCapacity)
	if err != nil {
		log.Error("unable to create sample buffer", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	in := input.New(inCfg, out, input.WithLogger(log))
	if err := in.Init(); err != nil {
		log.Error("device initialization failed", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handleSignals(cancel, log)

	if addr := cfg.Telemetry.ListenAddr; addr != "" {
		go telemetry.NewWebServer(addr, in.Stats()).Start(ctx)
	}
	if cfg.Telemetry.ReportInterval > 0 {
		reporter := telemetry.NewStdoutReporter(log, in.Stats())
		go reporter.Run(ctx, time.Duration(cfg.Telemetry.ReportInterval)*time.Second)
	}

	var feed func([]complex64)
	if cfg.Monitor.SpectrumInterval > 0 && cfg.Monitor.FftSize > 0 {
		monitor := newSpectrumMonitor(cfg.Monitor.FftSize, inCfg.SampleRate, log)
		feed = monitor.feed
		go monitor.Run(ctx, time.Duration(cfg.Monitor.SpectrumInterval)*time.Second)
	}

	go in.Run(ctx, cancel)

	caps := in.Capabilities()
	log.Info("capture started",
		logging.Field{Key: "format", Value: caps.Format.String()},
		logging.Field{Key: "mtu", Value: caps.MaxTransferUnit},
	)

	written, err := pump(out, sink, caps.MaxTransferUnit, feed)
	cancel()
	if err != nil {
		log.Error("output write failed", logging.Field{Key: "error", Value: err.Error()})
	}

	snap := in.Stats().Snapshot()
	log.Info("capture finished",
		logging.Field{Key: "samples", Value: written},
		logging.Field{Key: "blocks", Value: snap.Blocks},
		logging.Field{Key: "readErrors", Value: snap.ReadErrors},
	)
	if err != nil {
		os.Exit(1)
	}
}

func applyFlagOverrides(cfg *config, device, rate, freq string, gain float64, out, logLevel string) {
	if device != "" {
		cfg.Radio.Device = device
	}
	if rate != "" {
		cfg.Radio.SampleRate = rate
	}
	if freq != "" {
		cfg.Radio.Freq = freq
	}
	if gain != input.AutoGain {
		cfg.Radio.Gain = gain
	}
	if out != "" {
		cfg.Output.File = out
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
}

func buildLogger(cfg *config) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	return logging.New(level, format, os.Stderr), nil
}

func openSink(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func handleSignals(cancel context.CancelFunc, log logging.Logger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("shutting down", logging.Field{Key: "signal", Value: sig.String()})
		cancel()
	}()
}

// pump drains the ring into the sink until the producer closes it, encoding
// each sample as two little-endian float32 values. A non-nil feed receives
// each block for spectrum monitoring. Returns the number of samples written.
func pump(out *ring.Ring, sink io.Writer, chunk int, feed func([]complex64)) (uint64, error) {
	if chunk <= 0 {
		chunk = 4096
	}
	w := bufio.NewWriter(sink)
	samples := make([]complex64, chunk)
	raw := make([]byte, chunk*8)

	var written uint64
	for {
		n, ok := out.Consume(samples)
		if n > 0 && feed != nil {
			feed(samples[:n])
		}
		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint32(raw[i*8:], math.Float32bits(real(samples[i])))
			binary.LittleEndian.PutUint32(raw[i*8+4:], math.Float32bits(imag(samples[i])))
		}
		if n > 0 {
			if _, err := w.Write(raw[:n*8]); err != nil {
				return written, err
			}
			written += uint64(n)
		}
		if !ok {
			break
		}
	}
	return written, w.Flush()
}
