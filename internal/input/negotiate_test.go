package input

import (
	"strings"
	"testing"

	"github.com/rjboer/soapyrx/internal/sample"
	"github.com/rjboer/soapyrx/internal/sdr"
)

func TestNegotiationPrefersNativeFormat(t *testing.T) {
	// A 12-bit ADC behind CS16: device reports a non-canonical full scale.
	dev := sdr.NewMockDevice()
	dev.Native = "CS16"
	dev.NativeFullScale = 2048
	in, _, _ := newTestInput(t, Config{Gain: AutoGain}, dev)
	if err := in.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	caps := in.Capabilities()
	if caps.Format != sample.FormatCS16 {
		t.Fatalf("expected CS16, got %v", caps.Format)
	}
	if caps.FullScale != 2048 {
		t.Fatalf("native full scale must come from the device, got %v", caps.FullScale)
	}
	if caps.BytesPerSample != 4 {
		t.Fatalf("unexpected byte width %d", caps.BytesPerSample)
	}
}

func TestNegotiationRejectsNativeWidthMismatch(t *testing.T) {
	// Native CS16 claims a 2-byte width; the format list holds one
	// acceptable entry at index 2.
	dev := sdr.NewMockDevice()
	dev.Native = "CS16"
	dev.NativeFullScale = 32768
	dev.Sizes = map[string]int{"CS16": 2}
	dev.Formats = []string{"CS12", "CS16", "CU8"}
	in, _, _ := newTestInput(t, Config{Gain: AutoGain}, dev)
	if err := in.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	caps := in.Capabilities()
	if caps.Format != sample.FormatCU8 {
		t.Fatalf("expected fallback to CU8, got %v", caps.Format)
	}
	if caps.FullScale != sample.FormatCU8.FullScale() {
		t.Fatalf("fallback full scale must come from the canonical table, got %v", caps.FullScale)
	}
}

func TestNegotiationRejectsNonPositiveNativeFullScale(t *testing.T) {
	dev := sdr.NewMockDevice()
	dev.Native = "CS16"
	dev.NativeFullScale = 0
	dev.Formats = []string{"CS16"}
	in, _, _ := newTestInput(t, Config{Gain: AutoGain}, dev)
	if err := in.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	caps := in.Capabilities()
	if caps.FullScale != sample.FormatCS16.FullScale() {
		t.Fatalf("expected canonical full scale after rejecting native, got %v", caps.FullScale)
	}
	if caps.FullScale <= 0 {
		t.Fatalf("negotiated full scale must be positive")
	}
}

func TestNegotiationUnknownNativeFallsBackToList(t *testing.T) {
	dev := sdr.NewMockDevice()
	dev.Native = "CS12"
	dev.NativeFullScale = 2047
	dev.Formats = []string{"CS12", "CF32"}
	in, _, _ := newTestInput(t, Config{Gain: AutoGain}, dev)
	if err := in.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if got := in.Capabilities().Format; got != sample.FormatCF32 {
		t.Fatalf("expected CF32, got %v", got)
	}
}

func TestNegotiationFailsWithoutUsableFormat(t *testing.T) {
	dev := sdr.NewMockDevice()
	dev.Native = "CS12"
	dev.Formats = []string{"CS12", "CF64"}
	in, _, _ := newTestInput(t, Config{Device: "driver=weird", Gain: AutoGain}, dev)
	err := in.Init()
	if err == nil {
		t.Fatalf("expected negotiation failure")
	}
	if !strings.Contains(err.Error(), "driver=weird") {
		t.Fatalf("error must identify the device: %v", err)
	}
	if countCalls(dev, "setupStream") != 0 {
		t.Fatalf("no stream may be opened after failed negotiation")
	}
	if dev.CloseCount() != 1 {
		t.Fatalf("device must be released after failed negotiation")
	}
}

func TestNegotiatedDescriptorIsValid(t *testing.T) {
	for _, native := range []string{"CS16", "CU8", "CS8", "CF32", "CS12"} {
		dev := sdr.NewMockDevice()
		dev.Native = native
		dev.NativeFullScale = 32768
		dev.Formats = []string{native, "CF32"}
		in, _, _ := newTestInput(t, Config{Gain: AutoGain}, dev)
		if err := in.Init(); err != nil {
			t.Fatalf("native %s: init failed: %v", native, err)
		}
		if err := in.desc.Validate(); err != nil {
			t.Fatalf("native %s: negotiated descriptor invalid: %v", native, err)
		}
	}
}

func TestNegotiationFailsWhenFormatListEmpty(t *testing.T) {
	dev := sdr.NewMockDevice()
	dev.Native = "CS12"
	dev.Formats = nil
	in, _, _ := newTestInput(t, Config{Gain: AutoGain}, dev)
	if err := in.Init(); err == nil {
		t.Fatalf("expected failure when the device reports no formats")
	}
}
