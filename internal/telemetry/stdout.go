package telemetry

import (
	"context"
	"time"

	"github.com/rjboer/soapyrx/internal/logging"
)

// StdoutReporter periodically logs a stats snapshot.
type StdoutReporter struct {
	logger logging.Logger
	stats  *StreamStats
}

// NewStdoutReporter builds a reporter over the provided stats.
func NewStdoutReporter(logger logging.Logger, stats *StreamStats) StdoutReporter {
	if logger == nil {
		logger = logging.Default()
	}
	return StdoutReporter{logger: logger, stats: stats}
}

// Run logs one line per interval until ctx is canceled.
func (r StdoutReporter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Report()
		}
	}
}

// Report logs the current snapshot once.
func (r StdoutReporter) Report() {
	snap := r.stats.Snapshot()
	r.logger.Info("stream stats",
		logging.Field{Key: "subsystem", Value: "telemetry"},
		logging.Field{Key: "blocks", Value: snap.Blocks},
		logging.Field{Key: "samples", Value: snap.Samples},
		logging.Field{Key: "read_errors", Value: snap.ReadErrors},
		logging.Field{Key: "last_block", Value: snap.LastBlock},
	)
}
