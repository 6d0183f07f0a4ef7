package sample

import (
	"encoding/binary"
	"math"
)

// Convert decodes raw interleaved I/Q bytes into normalized complex64
// samples according to the descriptor and returns the number of samples
// written. Raw data is little-endian. The output magnitude is raw value
// divided by the descriptor's full-scale, so a full-scale input maps to 1.0.
// len(out) bounds the conversion; excess raw bytes are ignored.
func Convert(d Descriptor, raw []byte, out []complex64) int {
	if d.BytesPerSample <= 0 || d.FullScale <= 0 {
		return 0
	}
	n := len(raw) / d.BytesPerSample
	if n > len(out) {
		n = len(out)
	}
	scale := float32(1.0 / d.FullScale)
	switch d.Format {
	case FormatCU8:
		for i := 0; i < n; i++ {
			re := (float32(raw[2*i]) - 127.5) * scale
			im := (float32(raw[2*i+1]) - 127.5) * scale
			out[i] = complex(re, im)
		}
	case FormatCS8:
		for i := 0; i < n; i++ {
			re := float32(int8(raw[2*i])) * scale
			im := float32(int8(raw[2*i+1])) * scale
			out[i] = complex(re, im)
		}
	case FormatCS16:
		for i := 0; i < n; i++ {
			re := float32(int16(binary.LittleEndian.Uint16(raw[4*i:]))) * scale
			im := float32(int16(binary.LittleEndian.Uint16(raw[4*i+2:]))) * scale
			out[i] = complex(re, im)
		}
	case FormatCF32:
		for i := 0; i < n; i++ {
			re := math.Float32frombits(binary.LittleEndian.Uint32(raw[8*i:])) * scale
			im := math.Float32frombits(binary.LittleEndian.Uint32(raw[8*i+4:])) * scale
			out[i] = complex(re, im)
		}
	default:
		return 0
	}
	return n
}
