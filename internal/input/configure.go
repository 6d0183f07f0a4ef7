package input

import (
	"fmt"
	"strconv"

	"github.com/rjboer/soapyrx/internal/logging"
	"github.com/rjboer/soapyrx/internal/sdr"
)

// configure applies the RF parameters as an ordered sequence of fallible
// steps. Every failure aborts initialization except the two skippable
// steps: DC-offset compensation (skipped when unsupported) and antenna
// selection (skipped when not requested).
func (in *Input) configure() error {
	cfg, dev := in.cfg, in.dev

	if err := dev.SetSampleRate(cfg.SampleRate); err != nil {
		return fmt.Errorf("%s: setSampleRate failed: %w", cfg.Device, err)
	}
	freq := cfg.CenterFreq + cfg.FreqOffset
	if err := dev.SetFrequency(freq); err != nil {
		return fmt.Errorf("%s: setFrequency failed: %w", cfg.Device, err)
	}
	in.log.Info("center frequency set", logging.Field{Key: "khz", Value: freq / 1e3})

	if err := dev.SetFrequencyCorrection(cfg.CorrectionPPM); err != nil {
		return fmt.Errorf("%s: setFrequencyCorrection failed: %w", cfg.Device, err)
	}
	in.log.Info("frequency correction set", logging.Field{Key: "ppm", Value: cfg.CorrectionPPM})

	if dev.HasDCOffsetMode() {
		if err := dev.SetDCOffsetMode(true); err != nil {
			return fmt.Errorf("%s: setDCOffsetMode failed: %w", cfg.Device, err)
		}
	}

	if err := in.configureGain(); err != nil {
		return err
	}

	if cfg.Antenna != "" {
		if err := dev.SetAntenna(cfg.Antenna); err != nil {
			return fmt.Errorf("could not select antenna %s: %w", cfg.Antenna, err)
		}
	}
	in.log.Info("using antenna", logging.Field{Key: "antenna", Value: dev.Antenna()})

	if cfg.DeviceSettings != "" {
		if err := in.applyDeviceSettings(); err != nil {
			return err
		}
	}
	return nil
}

// configureGain applies exactly one gain policy branch, in precedence
// order: per-element mapping, then scalar gain, then automatic gain.
func (in *Input) configureGain() error {
	cfg, dev := in.cfg, in.dev

	switch {
	case cfg.GainElements != "":
		gains := sdr.ParseKwargs(cfg.GainElements)
		if len(gains) == 0 {
			return fmt.Errorf("%s: unable to parse gains string %q, must be a sequence of 'name1=value1,name2=value2,...'",
				cfg.Device, cfg.GainElements)
		}
		for _, kv := range gains {
			db, _ := strconv.ParseFloat(kv.Value, 64)
			_ = dev.SetGainElement(kv.Key, db)
			in.log.Info("gain element set",
				logging.Field{Key: "element", Value: kv.Key},
				logging.Field{Key: "db", Value: dev.GainElement(kv.Key)})
		}
	case cfg.Gain != AutoGain:
		if err := dev.SetGain(cfg.Gain); err != nil {
			return fmt.Errorf("%s: could not set gain: %w", cfg.Device, err)
		}
		in.log.Info("gain set", logging.Field{Key: "db", Value: cfg.Gain})
	default:
		if !dev.HasGainMode() {
			return fmt.Errorf("%s: device does not support auto gain, please specify gain manually", cfg.Device)
		}
		if err := dev.SetGainMode(true); err != nil {
			return fmt.Errorf("%s: could not enable auto gain: %w", cfg.Device, err)
		}
		in.log.Info("auto gain enabled")
	}
	return nil
}

// applyDeviceSettings writes each vendor setting and reads it back. A
// read-back mismatch is logged as failed but does not abort initialization;
// an unparsable settings string does.
func (in *Input) applyDeviceSettings() error {
	cfg, dev := in.cfg, in.dev

	settings := sdr.ParseKwargs(cfg.DeviceSettings)
	if len(settings) == 0 {
		return fmt.Errorf("%s: unable to parse device settings %q (must be a sequence of 'name1=value1,name2=value2,...')",
			cfg.Device, cfg.DeviceSettings)
	}
	for _, kv := range settings {
		if err := dev.WriteSetting(kv.Key, kv.Value); err != nil {
			in.log.Warn("writeSetting failed",
				logging.Field{Key: "setting", Value: kv.Key},
				logging.Field{Key: "error", Value: err})
		}
		readBack := dev.ReadSetting(kv.Key)
		status := "done"
		if readBack != kv.Value {
			status = "failed"
		}
		in.log.Info("device setting",
			logging.Field{Key: "setting", Value: kv.Key},
			logging.Field{Key: "value", Value: readBack},
			logging.Field{Key: "status", Value: status})
	}
	return nil
}
