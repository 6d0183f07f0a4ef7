package main

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/rjboer/soapyrx/internal/ring"
)

func TestPumpWritesLittleEndianCF32(t *testing.T) {
	out, err := ring.New(16)
	if err != nil {
		t.Fatalf("ring: %v", err)
	}
	out.Produce([]complex64{complex(0.5, -0.5), complex(0.25, 0)})
	out.Close()

	var sink bytes.Buffer
	written, err := pump(out, &sink, 4, nil)
	if err != nil {
		t.Fatalf("pump: %v", err)
	}
	if written != 2 {
		t.Fatalf("expected 2 samples written, got %d", written)
	}
	if sink.Len() != 16 {
		t.Fatalf("expected 16 bytes, got %d", sink.Len())
	}

	raw := sink.Bytes()
	want := []float32{0.5, -0.5, 0.25, 0}
	for i, w := range want {
		got := math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		if got != w {
			t.Fatalf("value %d: expected %v got %v", i, w, got)
		}
	}
}

func TestPumpEmptyClosedRing(t *testing.T) {
	out, err := ring.New(4)
	if err != nil {
		t.Fatalf("ring: %v", err)
	}
	out.Close()

	var sink bytes.Buffer
	written, err := pump(out, &sink, 0, nil)
	if err != nil {
		t.Fatalf("pump: %v", err)
	}
	if written != 0 || sink.Len() != 0 {
		t.Fatalf("expected no output, got %d samples %d bytes", written, sink.Len())
	}
}
