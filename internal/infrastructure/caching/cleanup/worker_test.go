package cleanup

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/caching/types"
)

type countingStore struct {
	mu      sync.Mutex
	name    string
	pending int
	ttls    []time.Duration
}

func (s *countingStore) PurgeExpired(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ttls = append(s.ttls, ttl)
	n := s.pending
	s.pending = 0
	return n
}

func (s *countingStore) Stats(ttl time.Duration) types.CacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.CacheStats{Name: s.name, Entries: s.pending + 1, Expired: s.pending, TTL: ttl}
}

func (s *countingStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ttls)
}

func TestRunOncePurgesEveryTarget(t *testing.T) {
	sessions := &countingStore{name: "sessions", pending: 2}
	renders := &countingStore{name: "renders", pending: 5}
	w := NewWorker(&Config{CleanupInterval: time.Minute}, nil, nil,
		Target{Store: sessions, TTL: time.Hour},
		Target{Store: renders, TTL: 10 * time.Minute},
	)

	assert.Equal(t, 7, w.RunOnce(context.Background()))
	assert.Equal(t, []time.Duration{time.Hour}, sessions.ttls)
	assert.Equal(t, []time.Duration{10 * time.Minute}, renders.ttls)
	assert.Zero(t, w.RunOnce(context.Background()))
}

func TestRunOnceStopsWhenCancelled(t *testing.T) {
	store := &countingStore{name: "sessions", pending: 3}
	w := NewWorker(&Config{CleanupInterval: time.Minute}, nil, nil, Target{Store: store, TTL: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Zero(t, w.RunOnce(ctx))
	assert.Zero(t, store.calls())
}

func TestVerboseRunPrintsReport(t *testing.T) {
	var out bytes.Buffer
	store := &countingStore{name: "renders", pending: 4}
	w := NewWorker(&Config{CleanupInterval: time.Minute, VerboseReporting: true}, nil, NewReporter(&out),
		Target{Store: store, TTL: time.Minute})

	w.RunOnce(context.Background())

	report := out.String()
	assert.Contains(t, report, "PERIODIC CACHE CLEANUP")
	assert.Contains(t, report, "renders")
	assert.Contains(t, report, "4 EXPIRED")
}

func TestStartTicksUntilCancelled(t *testing.T) {
	store := &countingStore{name: "sessions"}
	w := NewWorker(&Config{CleanupInterval: 5 * time.Millisecond}, nil, nil, Target{Store: store, TTL: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.calls() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
