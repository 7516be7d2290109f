// Package interfaces defines the cache contracts used by services and workers
package interfaces

import (
	"time"

	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/caching/types"
)

// RenderCache stores rendered markup keyed by session revision
type RenderCache interface {
	GetRender(sessionID string, revision int64, variant types.RenderVariant) (string, bool)
	SetRender(sessionID string, revision int64, variant types.RenderVariant, html string)
	InvalidateSession(sessionID string)
}

// Expirer is anything the cleanup worker can purge periodically
type Expirer interface {
	// PurgeExpired removes entries idle for longer than ttl and returns how many
	PurgeExpired(ttl time.Duration) int
	Stats(ttl time.Duration) types.CacheStats
}
