package performance

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerAggregatesOperations(t *testing.T) {
	tracker := NewTracker(nil)

	for i := 0; i < 3; i++ {
		m := tracker.StartOperation("editor:insert", "s1")
		if i == 2 {
			m.SetError(errors.New("element not found"))
		}
		m.Complete()
		m.Complete()
	}
	m := tracker.StartOperation("export:markup", "s1")
	m.AddMetadata("status", 200)
	m.Complete()

	ops := tracker.Operations()
	require.Len(t, ops, 2)
	assert.Equal(t, "editor:insert", ops[0].Operation)
	assert.Equal(t, int64(3), ops[0].Count)
	assert.Equal(t, int64(1), ops[0].Failures)
	assert.Equal(t, "export:markup", ops[1].Operation)
	assert.Equal(t, int64(1), ops[1].Count)

	recent := tracker.GetRecentMetrics(time.Minute)
	require.Len(t, recent, 4)
	assert.Equal(t, "element not found", recent[2].Error)
	assert.Equal(t, 200, recent[3].Metadata["status"])

	stats := tracker.GetOverallStats()
	assert.Equal(t, int64(4), stats["operations"])
	assert.Equal(t, int64(1), stats["failures"])
	assert.Equal(t, 0, stats["activeOperations"])
}

func TestTrackerKeepsBoundedHistory(t *testing.T) {
	tracker := NewTracker(&TrackerConfig{MaxRecent: 2, SlowThreshold: time.Second})
	for _, op := range []string{"a", "b", "c"} {
		tracker.StartOperation(op, "").Complete()
	}

	recent := tracker.GetRecentMetrics(time.Minute)
	require.Len(t, recent, 2)
	assert.Equal(t, "b", recent[0].Operation)
	assert.Equal(t, "c", recent[1].Operation)
	assert.Len(t, tracker.Operations(), 3, "aggregates outlive the recent window")
}

func TestTrackerHealth(t *testing.T) {
	t.Run("idle", func(t *testing.T) {
		assert.Equal(t, HealthGood, NewTracker(nil).Health(time.Minute))
	})

	t.Run("failures", func(t *testing.T) {
		tracker := NewTracker(nil)
		for i := 0; i < 10; i++ {
			m := tracker.StartOperation("editor:update", "")
			if i == 0 {
				m.SetSuccess(false)
			}
			m.Complete()
		}
		assert.Equal(t, HealthDegraded, tracker.Health(time.Minute))

		for i := 0; i < 3; i++ {
			m := tracker.StartOperation("editor:update", "")
			m.SetError(errors.New("boom"))
			m.Complete()
		}
		assert.Equal(t, HealthPoor, tracker.Health(time.Minute))
	})

	t.Run("slow", func(t *testing.T) {
		tracker := NewTracker(&TrackerConfig{MaxRecent: 10, SlowThreshold: -1})
		tracker.StartOperation("export:markup", "").Complete()
		assert.Equal(t, HealthPoor, tracker.Health(time.Minute))
		assert.Equal(t, int64(1), tracker.Operations()[0].Slow)
	})
}

func TestOperationStatsAverage(t *testing.T) {
	assert.Zero(t, OperationStats{}.Average())
	assert.Equal(t, 2*time.Second, OperationStats{Count: 3, Total: 6 * time.Second}.Average())
}
