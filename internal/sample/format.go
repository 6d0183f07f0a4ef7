// Package sample defines the canonical complex-sample representation shared
// by every acquisition backend and the converters from raw device encodings.
package sample

import "fmt"

// Format identifies a raw complex sample encoding as produced by a device.
type Format int

const (
	FormatUndef Format = iota
	FormatCU8          // complex unsigned 8-bit
	FormatCS8          // complex signed 8-bit
	FormatCS16         // complex signed 16-bit, little-endian
	FormatCF32         // complex 32-bit float, little-endian
)

func (f Format) String() string {
	switch f {
	case FormatCU8:
		return "CU8"
	case FormatCS8:
		return "CS8"
	case FormatCS16:
		return "CS16"
	case FormatCF32:
		return "CF32"
	default:
		return "undefined"
	}
}

// FromSoapy maps a SoapySDR format name to a known Format tag.
func FromSoapy(name string) (Format, bool) {
	switch name {
	case "CU8":
		return FormatCU8, true
	case "CS8":
		return FormatCS8, true
	case "CS16":
		return FormatCS16, true
	case "CF32":
		return FormatCF32, true
	default:
		return FormatUndef, false
	}
}

// Size returns the canonical byte width of one complex sample in this format.
func (f Format) Size() int {
	switch f {
	case FormatCU8, FormatCS8:
		return 2
	case FormatCS16:
		return 4
	case FormatCF32:
		return 8
	default:
		return 0
	}
}

// FullScale returns the canonical full-scale magnitude assumed for this
// format when the device does not report one.
func (f Format) FullScale() float64 {
	switch f {
	case FormatCU8:
		return 127.5
	case FormatCS8:
		return 128.0
	case FormatCS16:
		return 32768.0
	case FormatCF32:
		return 1.0
	default:
		return 0
	}
}

// SoapySize computes the byte width of one sample from a SoapySDR format
// name with the same rule as SoapySDR_formatToSize: digits accumulate the
// per-component bit count, a 'C' marks the format complex and doubles it,
// and the total is divided by 8. Returns 0 for names without a bit count.
func SoapySize(name string) int {
	bits := 0
	isComplex := false
	for _, ch := range name {
		if ch == 'C' {
			isComplex = true
		}
		if ch >= '0' && ch <= '9' {
			bits = bits*10 + int(ch-'0')
		}
	}
	if isComplex {
		bits *= 2
	}
	return bits / 8
}

// Descriptor ties a negotiated format to the byte width and full-scale value
// the streaming engine must honor.
type Descriptor struct {
	Format         Format
	BytesPerSample int
	FullScale      float64
}

// Validate checks the descriptor invariants: the byte width must match the
// canonical width of the format and the full-scale value must be positive.
func (d Descriptor) Validate() error {
	if d.Format == FormatUndef {
		return fmt.Errorf("undefined sample format")
	}
	if want := d.Format.Size(); d.BytesPerSample != want {
		return fmt.Errorf("format %s: byte width %d does not match canonical width %d",
			d.Format, d.BytesPerSample, want)
	}
	if d.FullScale <= 0 {
		return fmt.Errorf("format %s: full-scale value %g is not positive", d.Format, d.FullScale)
	}
	return nil
}
