package observability

import (
	"sync/atomic"
	"time"
)

// WorkerStats are in-process counters served on the worker's /stats endpoint.
type WorkerStats struct {
	received atomic.Uint64
	applied  atomic.Uint64
	skipped  atomic.Uint64
	dropped  atomic.Uint64
	retried  atomic.Uint64

	durationCount atomic.Uint64
	durationTotal atomic.Int64
	durationMax   atomic.Int64
}

func NewWorkerStats() *WorkerStats {
	return &WorkerStats{}
}

func (m *WorkerStats) IncReceived() { m.received.Add(1) }
func (m *WorkerStats) IncApplied()  { m.applied.Add(1) }
func (m *WorkerStats) IncSkipped()  { m.skipped.Add(1) }
func (m *WorkerStats) IncDropped()  { m.dropped.Add(1) }
func (m *WorkerStats) IncRetried()  { m.retried.Add(1) }

func (m *WorkerStats) ObserveDuration(d time.Duration) {
	ns := d.Nanoseconds()
	m.durationCount.Add(1)
	m.durationTotal.Add(ns)

	for {
		curr := m.durationMax.Load()

		if ns <= curr {
			return
		}

		if m.durationMax.CompareAndSwap(curr, ns) {
			return
		}
	}
}

type WorkerStatsSnapshot struct {
	Received        uint64        `json:"received"`
	Applied         uint64        `json:"applied"`
	Skipped         uint64        `json:"skipped"`
	Dropped         uint64        `json:"dropped"`
	Retried         uint64        `json:"retried"`
	AverageDuration time.Duration `json:"averageDurationNs"`
	MaxDuration     time.Duration `json:"maxDurationNs"`
}

func (m *WorkerStats) Snapshot() WorkerStatsSnapshot {
	count := m.durationCount.Load()
	total := m.durationTotal.Load()

	var avg time.Duration

	if count > 0 {
		avg = time.Duration(total / int64(count))
	}

	return WorkerStatsSnapshot{
		Received:        m.received.Load(),
		Applied:         m.applied.Load(),
		Skipped:         m.skipped.Load(),
		Dropped:         m.dropped.Load(),
		Retried:         m.retried.Load(),
		AverageDuration: avg,
		MaxDuration:     time.Duration(m.durationMax.Load()),
	}
}
