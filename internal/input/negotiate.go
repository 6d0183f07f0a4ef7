package input

import (
	"fmt"

	"github.com/rjboer/soapyrx/internal/logging"
	"github.com/rjboer/soapyrx/internal/sample"
)

// negotiateFormat finds a raw sample encoding usable by both the device and
// the converter set. The device's native format is preferred (no extra
// conversion pass on the device side) and is accepted only when its
// semantic tag is known, its device-reported byte width matches the
// canonical width for that tag, and its reported full-scale value is
// positive. Otherwise the first acceptable entry of the device's format
// list wins, with the full-scale value taken from the canonical table
// because the device does not report one for non-native formats.
func (in *Input) negotiateFormat() (sample.Descriptor, string, error) {
	dev := in.dev

	native, fullScale := dev.NativeStreamFormat()
	if tag, ok := sample.FromSoapy(native); ok &&
		dev.FormatSize(native) == tag.Size() && fullScale > 0 {
		desc := sample.Descriptor{
			Format:         tag,
			BytesPerSample: tag.Size(),
			FullScale:      fullScale,
		}
		if err := desc.Validate(); err != nil {
			return sample.Descriptor{}, "", fmt.Errorf("%s: %w", in.cfg.Device, err)
		}
		in.log.Info("using native sample format",
			logging.Field{Key: "format", Value: native},
			logging.Field{Key: "full_scale", Value: fullScale})
		return desc, native, nil
	}

	formats := dev.StreamFormats()
	if len(formats) == 0 {
		return sample.Descriptor{}, "", fmt.Errorf("%s: failed to read supported sample formats", in.cfg.Device)
	}
	for _, f := range formats {
		tag, ok := sample.FromSoapy(f)
		if !ok || dev.FormatSize(f) != tag.Size() {
			continue
		}
		desc := sample.Descriptor{
			Format:         tag,
			BytesPerSample: tag.Size(),
			FullScale:      tag.FullScale(),
		}
		if err := desc.Validate(); err != nil {
			return sample.Descriptor{}, "", fmt.Errorf("%s: %w", in.cfg.Device, err)
		}
		in.log.Info("using non-native sample format",
			logging.Field{Key: "format", Value: f},
			logging.Field{Key: "assumed_full_scale", Value: tag.FullScale()})
		return desc, f, nil
	}
	return sample.Descriptor{}, "", fmt.Errorf("%s: could not find a suitable sample format, unable to use this device", in.cfg.Device)
}
