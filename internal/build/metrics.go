package build

import (
	"sync"
	"time"
)

// Metrics accumulates pass outcomes across the lifetime of a watch session.
// It is safe for concurrent use.
type Metrics struct {
	mu sync.RWMutex

	total      int64
	succeeded  int64
	failed     int64
	totalTime  time.Duration
	lastPassID string
	lastError  error
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	TotalPasses      int64
	SuccessfulPasses int64
	FailedPasses     int64
	TotalDuration    time.Duration
	AverageDuration  time.Duration
	LastPassID       string
	LastError        error
}

// NewMetrics returns empty metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Record adds the outcome of one pass. result may be nil.
func (m *Metrics) Record(result *Result, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total++
	if result != nil {
		m.totalTime += result.Duration
		m.lastPassID = result.PassID
	}
	m.lastError = err
	if err != nil {
		m.failed++
	} else {
		m.succeeded++
	}
}

// Snapshot returns the current totals.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := MetricsSnapshot{
		TotalPasses:      m.total,
		SuccessfulPasses: m.succeeded,
		FailedPasses:     m.failed,
		TotalDuration:    m.totalTime,
		LastPassID:       m.lastPassID,
		LastError:        m.lastError,
	}
	if m.total > 0 {
		s.AverageDuration = m.totalTime / time.Duration(m.total)
	}
	return s
}

// SuccessRate returns the share of successful passes as a percentage.
func (s MetricsSnapshot) SuccessRate() float64 {
	if s.TotalPasses == 0 {
		return 0
	}
	return float64(s.SuccessfulPasses) / float64(s.TotalPasses) * 100
}
