// Package stores provides concrete cache store implementations
package stores

import (
	"strconv"
	"sync"
	"time"

	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/caching/types"
)

// RendersStore caches rendered markup per session. Entries are keyed by
// revision, so a mutation makes every older entry unreachable.
type RendersStore struct {
	sessionCaches map[string]*types.SessionRenderCache
	mu            sync.RWMutex
	ttl           time.Duration
	now           func() time.Time
}

// NewRendersStore creates a render cache whose entries live for ttl
func NewRendersStore(ttl time.Duration) *RendersStore {
	return &RendersStore{
		sessionCaches: make(map[string]*types.SessionRenderCache),
		ttl:           ttl,
		now:           time.Now,
	}
}

func (rs *RendersStore) getSessionCache(sessionID string) (*types.SessionRenderCache, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	cache, exists := rs.sessionCaches[sessionID]
	return cache, exists
}

func (rs *RendersStore) ensureSessionCache(sessionID string) *types.SessionRenderCache {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	cache, exists := rs.sessionCaches[sessionID]
	if !exists {
		cache = &types.SessionRenderCache{Chunks: make(map[string]*types.RenderChunk)}
		rs.sessionCaches[sessionID] = cache
	}
	return cache
}

// BuildChunkKey creates a unique key for a revision and variant
func (rs *RendersStore) BuildChunkKey(revision int64, variant types.RenderVariant) string {
	key := strconv.FormatInt(revision, 10) + ":" + variant.Mode + ":" + variant.Viewport
	if variant.SelectedID != "" {
		key += ":sel-" + variant.SelectedID
	}
	if variant.Options != "" {
		key += ":opt-" + variant.Options
	}
	return key
}

// GetRender retrieves a cached render that has not expired
func (rs *RendersStore) GetRender(sessionID string, revision int64, variant types.RenderVariant) (string, bool) {
	cache, exists := rs.getSessionCache(sessionID)
	if !exists {
		return "", false
	}

	cache.Mu.RLock()
	defer cache.Mu.RUnlock()

	chunk, exists := cache.Chunks[rs.BuildChunkKey(revision, variant)]
	if !exists {
		return "", false
	}
	if rs.ttl > 0 && rs.now().Sub(chunk.LastUpdated) > rs.ttl {
		return "", false
	}
	return chunk.HTML, true
}

// SetRender stores a render and drops entries of older revisions
func (rs *RendersStore) SetRender(sessionID string, revision int64, variant types.RenderVariant, html string) {
	cache := rs.ensureSessionCache(sessionID)

	cache.Mu.Lock()
	defer cache.Mu.Unlock()

	for key, chunk := range cache.Chunks {
		if chunk.Revision < revision {
			delete(cache.Chunks, key)
		}
	}
	cache.Chunks[rs.BuildChunkKey(revision, variant)] = &types.RenderChunk{
		HTML:        html,
		SessionID:   sessionID,
		Revision:    revision,
		Variant:     variant,
		LastUpdated: rs.now().UTC(),
	}
}

// InvalidateSession forgets every render of a session
func (rs *RendersStore) InvalidateSession(sessionID string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	delete(rs.sessionCaches, sessionID)
}

// PurgeExpired removes renders older than ttl and empty session caches
func (rs *RendersStore) PurgeExpired(ttl time.Duration) int {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	removed := 0
	now := rs.now()
	for sessionID, cache := range rs.sessionCaches {
		cache.Mu.Lock()
		for key, chunk := range cache.Chunks {
			if now.Sub(chunk.LastUpdated) > ttl {
				delete(cache.Chunks, key)
				removed++
			}
		}
		empty := len(cache.Chunks) == 0
		cache.Mu.Unlock()
		if empty {
			delete(rs.sessionCaches, sessionID)
		}
	}
	return removed
}

// Stats returns cache status for reporting
func (rs *RendersStore) Stats(ttl time.Duration) types.CacheStats {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	stats := types.CacheStats{Name: "renders", TTL: ttl}
	now := rs.now()
	for _, cache := range rs.sessionCaches {
		cache.Mu.RLock()
		for _, chunk := range cache.Chunks {
			stats.Entries++
			if now.Sub(chunk.LastUpdated) > ttl {
				stats.Expired++
			}
		}
		cache.Mu.RUnlock()
	}
	return stats
}
