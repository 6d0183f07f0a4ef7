// Package telemetry collects acquisition counters and exposes them to
// stdout reporting and a small HTTP endpoint.
package telemetry

import (
	"sync/atomic"
	"time"
)

// StreamStats counts what the streaming engine has produced. All methods
// are safe to call from the acquisition goroutine while readers snapshot
// concurrently.
type StreamStats struct {
	blocks     atomic.Uint64
	samples    atomic.Uint64
	readErrors atomic.Uint64
	lastBlock  atomic.Int64
	started    time.Time
}

// NewStreamStats returns an empty collector stamped with the current time.
func NewStreamStats() *StreamStats {
	return &StreamStats{started: time.Now()}
}

// Block records one converted block of n samples pushed downstream.
func (s *StreamStats) Block(n int) {
	s.blocks.Add(1)
	s.samples.Add(uint64(n))
	s.lastBlock.Store(int64(n))
}

// ReadError records one transient stream read failure.
func (s *StreamStats) ReadError() {
	s.readErrors.Add(1)
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Blocks     uint64        `json:"blocks"`
	Samples    uint64        `json:"samples"`
	ReadErrors uint64        `json:"readErrors"`
	LastBlock  int64         `json:"lastBlock"`
	Uptime     time.Duration `json:"uptimeNs"`
}

// Snapshot returns the current counter values.
func (s *StreamStats) Snapshot() Snapshot {
	return Snapshot{
		Blocks:     s.blocks.Load(),
		Samples:    s.samples.Load(),
		ReadErrors: s.readErrors.Load(),
		LastBlock:  s.lastBlock.Load(),
		Uptime:     time.Since(s.started),
	}
}
