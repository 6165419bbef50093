package game

import (
	"sync"
	"time"
)

// Metrics is the process-wide recovery counter set. It is created once at
// startup and only ever reset by operator action outside this package.
type Metrics struct {
	mu         sync.Mutex
	total      int
	successful int
	failed     int
	avgMillis  float64
}

type MetricsSnapshot struct {
	TotalRecoveries      int
	SuccessfulRecoveries int
	FailedRecoveries     int
	AverageRecoveryTime  time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Record(success bool, took time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total++
	if success {
		m.successful++
	} else {
		m.failed++
	}
	sample := float64(took.Milliseconds())
	m.avgMillis = (m.avgMillis*float64(m.total-1) + sample) / float64(m.total)
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MetricsSnapshot{
		TotalRecoveries:      m.total,
		SuccessfulRecoveries: m.successful,
		FailedRecoveries:     m.failed,
		AverageRecoveryTime:  time.Duration(m.avgMillis) * time.Millisecond,
	}
}
