// Package monitoring tracks prediction latency against the per-frame
// budget. The game polls every frame, so a slow prediction is a dropped
// visualization, not just a slow response.
package monitoring

import (
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LatencyMonitor aggregates per-prediction timings. Alerts when a
// prediction blows the frame budget, with a cooldown so a sustained stall
// does not flood the log.
type LatencyMonitor struct {
	mu            sync.RWMutex
	budget        time.Duration
	count         int64
	overBudget    int64
	total         time.Duration
	peak          time.Duration
	lastAlert     time.Time
	alertCooldown time.Duration
	logger        zerolog.Logger
}

// Stats is a read-only snapshot of the monitor
type Stats struct {
	Count      int64         `json:"count"`
	OverBudget int64         `json:"overBudget"`
	AverageUS  int64         `json:"averageUs"`
	PeakUS     int64         `json:"peakUs"`
	Goroutines int           `json:"goroutines"`
	Budget     time.Duration `json:"-"`
}

// NewLatencyMonitor creates a monitor with the given frame budget
func NewLatencyMonitor(budget time.Duration, logger zerolog.Logger) *LatencyMonitor {
	return &LatencyMonitor{
		budget:        budget,
		alertCooldown: 10 * time.Second,
		logger:        logger.With().Str("component", "monitoring").Logger(),
	}
}

// Observe records one prediction's duration
func (m *LatencyMonitor) Observe(d time.Duration) {
	m.mu.Lock()
	m.count++
	m.total += d
	if d > m.peak {
		m.peak = d
	}
	alert := false
	if d > m.budget {
		m.overBudget++
		if time.Since(m.lastAlert) > m.alertCooldown {
			m.lastAlert = time.Now()
			alert = true
		}
	}
	m.mu.Unlock()

	if alert {
		m.logger.Warn().
			Dur("duration", d).
			Dur("budget", m.budget).
			Msg("Prediction exceeded frame budget")
	}
}

// Snapshot returns current aggregate stats
func (m *LatencyMonitor) Snapshot() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var avg time.Duration
	if m.count > 0 {
		avg = m.total / time.Duration(m.count)
	}
	return Stats{
		Count:      m.count,
		OverBudget: m.overBudget,
		AverageUS:  avg.Microseconds(),
		PeakUS:     m.peak.Microseconds(),
		Goroutines: runtime.NumGoroutine(),
		Budget:     m.budget,
	}
}
