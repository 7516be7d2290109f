package performance

import (
	"sort"
	"sync"
	"time"
)

// TrackerConfig contains configuration options for the performance tracker
type TrackerConfig struct {
	MaxRecent     int           `json:"maxRecent"`     // completed markers kept for inspection
	SlowThreshold time.Duration `json:"slowThreshold"` // operations slower than this count as slow
}

// DefaultTrackerConfig returns a sensible default configuration
func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		MaxRecent:     500,
		SlowThreshold: 500 * time.Millisecond,
	}
}

// Tracker aggregates operation timings. It is safe for concurrent use.
type Tracker struct {
	stats   map[string]*OperationStats
	recent  []Marker
	active  int
	mu      sync.RWMutex
	started time.Time
	config  *TrackerConfig
}

// NewTracker creates a new performance tracker with the given configuration
func NewTracker(config *TrackerConfig) *Tracker {
	if config == nil {
		config = DefaultTrackerConfig()
	}
	return &Tracker{
		stats:   make(map[string]*OperationStats),
		started: time.Now(),
		config:  config,
	}
}

// StartOperation begins timing operation. Success is assumed until SetError.
func (t *Tracker) StartOperation(operation, sessionID string) *Marker {
	t.mu.Lock()
	t.active++
	t.mu.Unlock()
	return &Marker{
		Operation: operation,
		SessionID: sessionID,
		StartTime: time.Now(),
		Success:   true,
		tracker:   t,
	}
}

func (t *Tracker) record(m *Marker) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active--
	s, ok := t.stats[m.Operation]
	if !ok {
		s = &OperationStats{Operation: m.Operation}
		t.stats[m.Operation] = s
	}
	s.Count++
	s.Total += m.Duration
	s.Last = m.EndTime
	if m.Duration > s.Max {
		s.Max = m.Duration
	}
	if !m.Success {
		s.Failures++
	}
	if m.Duration > t.config.SlowThreshold {
		s.Slow++
	}

	snapshot := *m
	snapshot.tracker = nil
	t.recent = append(t.recent, snapshot)
	if over := len(t.recent) - t.config.MaxRecent; over > 0 {
		t.recent = append([]Marker(nil), t.recent[over:]...)
	}
}

// Operations returns per-operation aggregates sorted by name
func (t *Tracker) Operations() []OperationStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]OperationStats, 0, len(t.stats))
	for _, s := range t.stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out
}

// GetRecentMetrics returns completed markers that ended within the window
func (t *Tracker) GetRecentMetrics(within time.Duration) []Marker {
	cutoff := time.Now().Add(-within)
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []Marker
	for _, m := range t.recent {
		if m.EndTime.After(cutoff) {
			out = append(out, m)
		}
	}
	return out
}

// Health grades the recent window by failure and slow ratios
func (t *Tracker) Health(within time.Duration) HealthStatus {
	recent := t.GetRecentMetrics(within)
	if len(recent) == 0 {
		return HealthGood
	}
	var failed, slow int
	for _, m := range recent {
		if !m.Success {
			failed++
		}
		if m.Duration > t.config.SlowThreshold {
			slow++
		}
	}
	failRatio := float64(failed) / float64(len(recent))
	slowRatio := float64(slow) / float64(len(recent))
	switch {
	case failRatio > 0.25 || slowRatio > 0.5:
		return HealthPoor
	case failRatio > 0.05 || slowRatio > 0.1:
		return HealthDegraded
	default:
		return HealthGood
	}
}

// GetOverallStats returns a summary for the health endpoint
func (t *Tracker) GetOverallStats() map[string]any {
	ops := t.Operations()
	var count, failures int64
	for _, s := range ops {
		count += s.Count
		failures += s.Failures
	}
	t.mu.RLock()
	active := t.active
	t.mu.RUnlock()
	return map[string]any{
		"uptime":           time.Since(t.started).String(),
		"operations":       count,
		"failures":         failures,
		"activeOperations": active,
		"health":           t.Health(5 * time.Minute),
	}
}
