package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/caching/interfaces"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/caching/types"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/observability/logging"
)

// Target is an expirable store with its own time to live
type Target struct {
	Store interfaces.Expirer
	TTL   time.Duration
}

// Worker expires idle editor sessions and stale renders in the background
type Worker struct {
	targets  []Target
	config   *Config
	logger   *logging.ChanneledLogger
	reporter *Reporter
}

// NewWorker creates a new cleanup worker with injected configuration
func NewWorker(config *Config, logger *logging.ChanneledLogger, reporter *Reporter, targets ...Target) *Worker {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Worker{
		targets:  targets,
		config:   config,
		logger:   logger,
		reporter: reporter,
	}
}

// Start runs the cleanup loop until ctx is cancelled
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.config.CleanupInterval)
	defer ticker.Stop()

	w.logger.Cache().Info("Cleanup worker started",
		"interval", w.config.CleanupInterval,
		"verbose", w.config.VerboseReporting)

	for {
		select {
		case <-ctx.Done():
			w.logger.Cache().Info("Cleanup worker stopping")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce purges every target once and returns the number of entries removed
func (w *Worker) RunOnce(ctx context.Context) int {
	start := time.Now()

	if w.config.VerboseReporting && w.reporter != nil {
		stats := make([]types.CacheStats, 0, len(w.targets))
		for _, t := range w.targets {
			stats = append(stats, t.Store.Stats(t.TTL))
		}
		w.reporter.LogStage("PERIODIC CACHE CLEANUP")
		fmt.Fprint(w.reporter.out, w.reporter.GenerateReport(stats))
	}

	total := 0
	for _, t := range w.targets {
		select {
		case <-ctx.Done():
			return total
		default:
			total += t.Store.PurgeExpired(t.TTL)
		}
	}

	if total > 0 || w.config.VerboseReporting {
		w.logger.Cache().Info("Cleanup finished",
			"removed", total,
			"targets", len(w.targets),
			"duration", time.Since(start))
	}
	return total
}
