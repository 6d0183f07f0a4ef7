package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/rjboer/soapyrx/internal/input"
)

const (
	configFileEnvVar  = "SOAPYRX_CONFIG_FILE"
	configFileDefault = "/etc/soapyrx/conf.ini"
)

var errNoConfigFound = errors.New("unable to find valid configuration file")

// config mirrors the INI layout. Section and key names derive from the
// field names through the title-underscore mapper, e.g. Radio.SampleRate
// reads [radio] sample_rate.
type config struct {
	Radio struct {
		Device         string
		SampleRate     string
		Freq           string
		FreqOffset     string
		Correction     float64
		Gain           float64
		GainElements   string
		Antenna        string
		DeviceSettings string
		BufSamples     int
	}
	Output struct {
		File string
	}
	Telemetry struct {
		ListenAddr     string
		ReportInterval int
	}
	Monitor struct {
		SpectrumInterval int
		FftSize          int
	}
	Log struct {
		Level  string
		Format string
	}
}

func getConfigFileLocation(cliFlag string) string {
	if cliFlag != "" {
		return cliFlag
	}
	if envFile := os.Getenv(configFileEnvVar); envFile != "" {
		return envFile
	}
	return configFileDefault
}

func getDefaults() config {
	var cfg config
	cfg.Radio.SampleRate = "2.048M"
	cfg.Radio.Gain = input.AutoGain
	cfg.Telemetry.ReportInterval = 10
	cfg.Monitor.FftSize = 1024
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

// getConfig loads the INI file on top of the defaults. A missing file is an
// error only when the operator named one explicitly; the default location is
// optional.
func getConfig(cliFlag string) (*config, error) {
	cfg := getDefaults()

	location := getConfigFileLocation(cliFlag)
	if err := ini.MapToWithMapper(&cfg, ini.TitleUnderscore, location); err != nil {
		if os.IsNotExist(err) {
			if cliFlag == "" && os.Getenv(configFileEnvVar) == "" {
				return &cfg, nil
			}
			return nil, errNoConfigFound
		}
		return nil, err
	}

	return &cfg, nil
}

// freqHz parses a frequency or rate value with an optional K/M/G suffix.
func freqHz(s string) (float64, error) {
	val := strings.ToUpper(strings.TrimSpace(s))
	if val == "" {
		return 0, fmt.Errorf("empty frequency value")
	}

	mult := 1.0
	switch {
	case strings.HasSuffix(val, "K"):
		mult = 1e3
		val = strings.TrimSuffix(val, "K")
	case strings.HasSuffix(val, "M"):
		mult = 1e6
		val = strings.TrimSuffix(val, "M")
	case strings.HasSuffix(val, "G"):
		mult = 1e9
		val = strings.TrimSuffix(val, "G")
	}

	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frequency %q: %w", s, err)
	}
	return f * mult, nil
}

// inputConfig converts the file/flag values into acquisition parameters.
func (c *config) inputConfig() (input.Config, error) {
	rate, err := freqHz(c.Radio.SampleRate)
	if err != nil {
		return input.Config{}, fmt.Errorf("sample_rate: %w", err)
	}

	var freq float64
	if c.Radio.Freq != "" {
		if freq, err = freqHz(c.Radio.Freq); err != nil {
			return input.Config{}, fmt.Errorf("freq: %w", err)
		}
	}

	var offset float64
	if c.Radio.FreqOffset != "" {
		if offset, err = freqHz(c.Radio.FreqOffset); err != nil {
			return input.Config{}, fmt.Errorf("freq_offset: %w", err)
		}
	}

	return input.Config{
		Device:         c.Radio.Device,
		SampleRate:     rate,
		CenterFreq:     freq,
		FreqOffset:     offset,
		CorrectionPPM:  c.Radio.Correction,
		Gain:           c.Radio.Gain,
		GainElements:   c.Radio.GainElements,
		Antenna:        c.Radio.Antenna,
		DeviceSettings: c.Radio.DeviceSettings,
		BufSamples:     c.Radio.BufSamples,
	}, nil
}
