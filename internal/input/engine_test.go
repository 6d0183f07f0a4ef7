package input

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/rjboer/soapyrx/internal/logging"
	"github.com/rjboer/soapyrx/internal/sdr"
)

func cs16Block(samples []int16) sdr.ReadResult {
	raw := make([]byte, 2*len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint16(raw[2*i:], uint16(v))
	}
	return sdr.ReadResult{Raw: raw, Elems: len(samples) / 2}
}

func TestEngineTransientErrorsThenPush(t *testing.T) {
	dev := sdr.NewMockDevice()
	readErr := errors.New("readStream failed: timeout")
	dev.Stream = &sdr.MockRXStream{
		MTUSamples: 256,
		ReadDelay:  time.Millisecond,
		Script: []sdr.ReadResult{
			{Err: readErr},
			{Err: readErr},
			{Err: readErr},
			cs16Block([]int16{16384, -16384, 8192, 0}), // two samples
		},
	}
	in, capture, out := newTestInput(t, Config{Gain: AutoGain}, dev)
	if err := in.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		in.Run(ctx, cancel)
		close(done)
	}()

	dst := make([]complex64, 4)
	n, ok := out.Consume(dst)
	if !ok || n != 2 {
		t.Fatalf("expected 2 samples, got n=%d ok=%v", n, ok)
	}
	if dst[0] != complex64(complex(0.5, -0.5)) || dst[1] != complex64(complex(0.25, 0)) {
		t.Fatalf("unexpected converted samples %v", dst[:2])
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("engine did not drain after cancellation")
	}

	if got := capture.CountLevel(logging.Warn); got != 3 {
		t.Fatalf("expected exactly 3 transient-error logs, got %d", got)
	}
	if snap := in.Stats().Snapshot(); snap.ReadErrors != 3 || snap.Samples != 2 {
		t.Fatalf("unexpected stats %+v", snap)
	}
}

func TestEngineDrainsExactlyOnceOnCancel(t *testing.T) {
	dev := sdr.NewMockDevice()
	dev.Stream.ReadDelay = time.Millisecond
	in, _, out := newTestInput(t, Config{Gain: AutoGain}, dev)
	if err := in.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		in.Run(ctx, cancel)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	if dev.Stream.Deactivated != 1 || dev.Stream.Closed != 1 {
		t.Fatalf("stream teardown counts: deactivated=%d closed=%d", dev.Stream.Deactivated, dev.Stream.Closed)
	}
	if dev.CloseCount() != 1 {
		t.Fatalf("device released %d times, want 1", dev.CloseCount())
	}
	if in.Running() {
		t.Fatalf("instance still marked running after drain")
	}

	// A second drain attempt must be a no-op.
	in.drain()
	if dev.Stream.Closed != 1 || dev.CloseCount() != 1 {
		t.Fatalf("drain ran twice")
	}

	// End-of-stream was signaled to the consumer.
	if _, ok := out.Consume(make([]complex64, 1)); ok {
		t.Fatalf("expected closed ring after drain")
	}
}

func TestEngineActivationFailureEscalates(t *testing.T) {
	dev := sdr.NewMockDevice()
	dev.Stream.ActivateErr = errors.New("activateStream failed")
	in, capture, out := newTestInput(t, Config{Gain: AutoGain}, dev)
	if err := in.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	in.Run(ctx, cancel)

	if ctx.Err() == nil {
		t.Fatalf("activation failure must trigger process-wide cancellation")
	}
	if capture.CountLevel(logging.Error) == 0 {
		t.Fatalf("activation failure must be logged as an error")
	}
	if dev.Stream.Deactivated != 1 || dev.Stream.Closed != 1 || dev.CloseCount() != 1 {
		t.Fatalf("drain sequence incomplete after activation failure")
	}
	if _, ok := out.Consume(make([]complex64, 1)); ok {
		t.Fatalf("consumer must see end-of-stream after activation failure")
	}
}

func TestEngineErrorReadsNeverAdvanceRing(t *testing.T) {
	dev := sdr.NewMockDevice()
	readErr := errors.New("readStream failed: overflow")
	dev.Stream = &sdr.MockRXStream{
		MTUSamples: 64,
		ReadDelay:  time.Millisecond,
		Script:     []sdr.ReadResult{{Err: readErr}, {Err: readErr}},
	}
	in, _, out := newTestInput(t, Config{Gain: AutoGain}, dev)
	if err := in.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		in.Run(ctx, cancel)
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)
	if out.Len() != 0 {
		t.Fatalf("error reads must not advance the ring, got %d buffered", out.Len())
	}
	cancel()
	<-done
}
