package input

import (
	"context"
	"time"

	"github.com/rjboer/soapyrx/internal/logging"
	"github.com/rjboer/soapyrx/internal/sample"
)

const (
	// readTimeout bounds one blocking stream read; cancellation is observed
	// between reads, so it also bounds shutdown latency.
	readTimeout = time.Second
	// settleDelay lets hardware buffers fill between activation and the
	// first read.
	settleDelay = 100 * time.Millisecond
	// defaultReadSamples sizes the working buffers when neither the device
	// nor the configuration provides a transfer unit.
	defaultReadSamples = 32768
)

// Run executes the acquisition loop until ctx is canceled, then drains.
// It is the engine's dedicated goroutine entry point; no other goroutine
// may touch the device or stream while it runs. cancel is the process-wide
// cancellation: a stream activation failure escalates through it, since a
// dead radio stream has no degraded mode.
func (in *Input) Run(ctx context.Context, cancel context.CancelFunc) {
	defer in.drain()

	raw := make([]byte, in.caps.MaxTransferUnit*in.caps.BytesPerSample)
	conv := make([]complex64, in.caps.MaxTransferUnit)

	if err := in.stream.Activate(); err != nil {
		in.log.Error("failed to activate stream", logging.Field{Key: "error", Value: err})
		if cancel != nil {
			cancel()
		}
		return
	}
	in.running.Store(true)
	time.Sleep(settleDelay)

	for ctx.Err() == nil {
		n, err := in.stream.Read(raw, in.caps.MaxTransferUnit, readTimeout)
		if err != nil {
			// Transient by policy: log and keep reading. No backoff and no
			// error cap; the read timeout is the only pacing.
			in.log.Warn("readStream failed", logging.Field{Key: "error", Value: err})
			in.stats.ReadError()
			continue
		}
		m := sample.Convert(in.desc, raw[:n*in.caps.BytesPerSample], conv)
		in.out.Produce(conv[:m])
		in.stats.Block(m)
	}
}

// drain tears the instance down exactly once, regardless of how the loop
// exited: deactivate and close the stream, release the device, signal
// end-of-stream to the consumer, and mark the instance not running.
func (in *Input) drain() {
	in.drainOnce.Do(func() {
		in.log.Debug("shutdown ordered, signaling consumer shutdown")
		if in.stream != nil {
			_ = in.stream.Deactivate()
			_ = in.stream.Close()
			in.stream = nil
		}
		if in.dev != nil {
			_ = in.dev.Close()
			in.dev = nil
		}
		in.out.Close()
		in.running.Store(false)
	})
}
