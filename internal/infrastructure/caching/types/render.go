// Package types holds the cache entry types shared by stores and workers
package types

import (
	"sync"
	"time"
)

// RenderVariant distinguishes renders of the same revision
type RenderVariant struct {
	Mode       string `json:"mode"`
	Viewport   string `json:"viewport"`
	SelectedID string `json:"selectedId,omitempty"`
	// Options is a stable digest of export options
	Options string `json:"options,omitempty"`
}

// RenderChunk is one cached render of a session's tree
type RenderChunk struct {
	HTML        string        `json:"html"`
	SessionID   string        `json:"sessionId"`
	Revision    int64         `json:"revision"`
	Variant     RenderVariant `json:"variant"`
	LastUpdated time.Time     `json:"lastUpdated"`
}

// SessionRenderCache holds the renders of one editor session
type SessionRenderCache struct {
	Chunks map[string]*RenderChunk // "revision:variant" -> chunk
	Mu     sync.RWMutex
}

// CacheStats summarizes a store for reporting
type CacheStats struct {
	Name    string        `json:"name"`
	Entries int           `json:"entries"`
	Expired int           `json:"expired"`
	TTL     time.Duration `json:"ttl"`
}
