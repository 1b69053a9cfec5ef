package monitoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/flapcast/flapcast/internal/testutil"
)

func TestObserveAggregates(t *testing.T) {
	m := NewLatencyMonitor(16*time.Millisecond, testutil.NopLogger())

	m.Observe(2 * time.Millisecond)
	m.Observe(4 * time.Millisecond)
	m.Observe(30 * time.Millisecond)

	stats := m.Snapshot()
	assert.Equal(t, int64(3), stats.Count)
	assert.Equal(t, int64(1), stats.OverBudget)
	assert.Equal(t, int64(12000), stats.AverageUS)
	assert.Equal(t, int64(30000), stats.PeakUS)
	assert.Positive(t, stats.Goroutines)
}

func TestObserveEmptySnapshot(t *testing.T) {
	m := NewLatencyMonitor(16*time.Millisecond, testutil.NopLogger())

	stats := m.Snapshot()
	assert.Zero(t, stats.Count)
	assert.Zero(t, stats.AverageUS)
	assert.Zero(t, stats.PeakUS)
}

func TestObserveConcurrent(t *testing.T) {
	m := NewLatencyMonitor(16*time.Millisecond, testutil.NopLogger())

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				m.Observe(time.Millisecond)
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	assert.Equal(t, int64(800), m.Snapshot().Count)
}
