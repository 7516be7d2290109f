// Package performance records request and editor operation timings so the
// health endpoint can report them.
package performance

import (
	"time"
)

// Marker is a single timed operation
type Marker struct {
	Operation string         `json:"operation"` // e.g. "editor:insert", "export:markup"
	SessionID string         `json:"sessionId,omitempty"`
	StartTime time.Time      `json:"startTime"`
	EndTime   time.Time      `json:"endTime"`
	Duration  time.Duration  `json:"duration"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Completed bool           `json:"completed"`

	tracker *Tracker
}

// Complete stops the clock and hands the marker to its tracker. Later calls
// are ignored.
func (m *Marker) Complete() {
	if m.Completed {
		return
	}
	m.EndTime = time.Now()
	m.Duration = m.EndTime.Sub(m.StartTime)
	m.Completed = true
	if m.tracker != nil {
		m.tracker.record(m)
	}
}

// SetSuccess marks the operation as successful or failed
func (m *Marker) SetSuccess(success bool) {
	m.Success = success
}

// SetError records err and marks the operation failed
func (m *Marker) SetError(err error) {
	if err != nil {
		m.Error = err.Error()
		m.Success = false
	}
}

// AddMetadata adds key-value metadata to the marker
func (m *Marker) AddMetadata(key string, value any) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	m.Metadata[key] = value
}

// OperationStats aggregates every completed marker of one operation
type OperationStats struct {
	Operation string        `json:"operation"`
	Count     int64         `json:"count"`
	Failures  int64         `json:"failures"`
	Slow      int64         `json:"slow"`
	Total     time.Duration `json:"total"`
	Max       time.Duration `json:"max"`
	Last      time.Time     `json:"last"`
}

// Average returns the mean duration
func (s OperationStats) Average() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// HealthStatus summarizes recent failures and slowness
type HealthStatus string

const (
	HealthGood     HealthStatus = "good"
	HealthDegraded HealthStatus = "degraded"
	HealthPoor     HealthStatus = "poor"
)
