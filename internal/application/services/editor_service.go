// Package services provides application-level orchestration services
package services

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/rendering"
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/widgets"
	domainservices "github.com/AtRiskMedia/blockbuilder-go/internal/domain/services"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/caching/interfaces"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/caching/types"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/markup"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/security"
	"github.com/AtRiskMedia/blockbuilder-go/internal/presentation/templates"
)

var (
	ErrSessionNotFound  = errors.New("editor session not found")
	ErrTooManySessions  = errors.New("too many open editor sessions")
	ErrInvalidSelection = errors.New("selected element not found")
	ErrInvalidInput     = errors.New("invalid input")
)

// EditorConfig tunes session behaviour
type EditorConfig struct {
	HistoryLimit    int
	MaxSessions     int
	ContentWidth    int
	SanitizeRawHTML bool
}

// EditorSession is one open document. Its mutex serializes every operation on
// the session and is never held while rendering or doing I/O.
type EditorSession struct {
	ID string

	mu           sync.Mutex
	tree         document.Tree
	title        string
	styles       document.GlobalStyles
	selectedID   string
	viewport     document.Viewport
	history      *domainservices.History
	revision     int64
	documentID   string
	created      time.Time
	lastActivity time.Time
}

// SessionSnapshot is a consistent read of a session's state
type SessionSnapshot struct {
	ID           string                `json:"id"`
	DocumentID   string                `json:"documentId,omitempty"`
	Title        string                `json:"title"`
	Elements     document.Tree         `json:"elements"`
	GlobalStyles document.GlobalStyles `json:"globalStyles"`
	SelectedID   string                `json:"selectedId,omitempty"`
	Viewport     document.Viewport     `json:"viewport"`
	Revision     int64                 `json:"revision"`
	CanUndo      bool                  `json:"canUndo"`
	CanRedo      bool                  `json:"canRedo"`
	Created      time.Time             `json:"created"`
	LastActivity time.Time             `json:"lastActivity"`
}

// Document returns the snapshot as a document value
func (s *SessionSnapshot) Document() document.Document {
	return document.Document{Title: s.Title, GlobalStyles: s.GlobalStyles, Elements: s.Elements}
}

// MutationResult reports the outcome of a mutation. A rejected mutation has
// Changed=false and the revision the session still holds.
type MutationResult struct {
	Changed   bool   `json:"changed"`
	Revision  int64  `json:"revision"`
	ElementID string `json:"elementId,omitempty"`
}

// DropRequest describes a drag ending over a target. Either ElementID (an
// existing node being moved) or NewType (a palette item) must be set. When
// Position is empty it is classified from Pointer and Target.
type DropRequest struct {
	ElementID string               `json:"elementId,omitempty"`
	NewType   document.ElementType `json:"newType,omitempty"`
	TargetID  string               `json:"targetId"`
	Position  string               `json:"position,omitempty"`
	Pointer   domainservices.Point `json:"pointer"`
	Target    domainservices.Rect  `json:"target"`
	Axis      domainservices.Axis  `json:"axis,omitempty"`
}

// ImportMode selects whether imported elements replace or extend the tree
type ImportMode string

const (
	ImportReplace ImportMode = "replace"
	ImportAppend  ImportMode = "append"
)

// EditorService owns editor sessions and applies every editor operation
type EditorService struct {
	registry  *widgets.Registry
	trees     *domainservices.TreeService
	integrity *domainservices.DocumentIntegrityService
	renderer  *templates.Renderer
	importer  *markup.Importer
	cache     interfaces.RenderCache
	publisher messaging.Publisher
	logger    *logging.ChanneledLogger
	config    EditorConfig

	sessions map[string]*EditorSession
	mu       sync.RWMutex
	now      func() time.Time
}

// NewEditorService creates an editor service. cache and publisher may be nil.
func NewEditorService(
	registry *widgets.Registry,
	renderer *templates.Renderer,
	importer *markup.Importer,
	cache interfaces.RenderCache,
	publisher messaging.Publisher,
	logger *logging.ChanneledLogger,
	config EditorConfig,
) *EditorService {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	return &EditorService{
		registry:  registry,
		trees:     domainservices.NewTreeService(registry),
		integrity: domainservices.NewDocumentIntegrityService(registry),
		renderer:  renderer,
		importer:  importer,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
		config:    config,
		sessions:  make(map[string]*EditorSession),
		now:       time.Now,
	}
}

// Registry returns the widget registry sessions are validated against
func (s *EditorService) Registry() *widgets.Registry {
	return s.registry
}

// Integrity returns the serialized document validator
func (s *EditorService) Integrity() *domainservices.DocumentIntegrityService {
	return s.integrity
}

// =============================================================================
// Session lifecycle
// =============================================================================

// CreateSession opens a session over doc; a nil doc starts blank
func (s *EditorService) CreateSession(doc *document.Document, documentID string) (*SessionSnapshot, error) {
	defaults := document.DefaultGlobalStyles(s.config.ContentWidth)
	var tree document.Tree
	styles := defaults
	title := ""
	if doc != nil {
		if err := s.trees.Validate(doc.Elements); err != nil {
			return nil, fmt.Errorf("failed to open document: %w", err)
		}
		tree = doc.Elements
		styles = doc.GlobalStyles.WithDefaults(defaults)
		title = doc.Title
	}
	if tree == nil {
		tree = document.Tree{}
	}

	now := s.now().UTC()
	sess := &EditorSession{
		ID:           security.GenerateULID(),
		tree:         tree,
		title:        title,
		styles:       styles,
		viewport:     document.ViewportDesktop,
		history:      domainservices.NewHistory(s.config.HistoryLimit),
		documentID:   documentID,
		created:      now,
		lastActivity: now,
	}

	s.mu.Lock()
	if s.config.MaxSessions > 0 && len(s.sessions) >= s.config.MaxSessions {
		s.mu.Unlock()
		return nil, ErrTooManySessions
	}
	s.sessions[sess.ID] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	s.logger.Editor().Info("Editor session created",
		"sessionId", sess.ID,
		"documentId", documentID,
		"elements", tree.Count(),
		"openSessions", count)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(), nil
}

// GetSession returns the current state of a session
func (s *EditorService) GetSession(sessionID string) (*SessionSnapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(), nil
}

// CloseSession forgets a session and disconnects its preview clients
func (s *EditorService) CloseSession(sessionID string) error {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	if s.cache != nil {
		s.cache.InvalidateSession(sessionID)
	}
	s.publisher.CloseSession(sessionID)
	s.logger.Editor().Info("Editor session closed", "sessionId", sessionID)
	return nil
}

// ListSessions returns a snapshot of every open session, newest first
func (s *EditorService) ListSessions() []*SessionSnapshot {
	s.mu.RLock()
	open := make([]*EditorSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.RUnlock()

	out := make([]*SessionSnapshot, 0, len(open))
	for _, sess := range open {
		sess.mu.Lock()
		out = append(out, sess.snapshot())
		sess.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.After(out[j].Created) })
	return out
}

// LinkDocument records the stored document a session saves to
func (s *EditorService) LinkDocument(sessionID, documentID string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	sess.documentID = documentID
	sess.mu.Unlock()
	return nil
}

// SetTitle renames the session's document
func (s *EditorService) SetTitle(sessionID, title string) (MutationResult, error) {
	return s.apply(sessionID, "set-title", false, func(sess *EditorSession) (bool, string, error) {
		title = strings.TrimSpace(title)
		if title == sess.title {
			return false, "", nil
		}
		sess.title = title
		return true, "", nil
	})
}

// PurgeExpired closes sessions idle for longer than ttl
func (s *EditorService) PurgeExpired(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)
	var expired []string

	s.mu.Lock()
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastActivity.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			expired = append(expired, id)
		}
	}
	s.mu.Unlock()

	for _, id := range expired {
		if s.cache != nil {
			s.cache.InvalidateSession(id)
		}
		s.publisher.CloseSession(id)
		s.logger.Editor().Info("Editor session expired", "sessionId", id)
	}
	return len(expired)
}

// Stats reports open and idle sessions for the cleanup reporter
func (s *EditorService) Stats(ttl time.Duration) types.CacheStats {
	cutoff := s.now().Add(-ttl)
	stats := types.CacheStats{Name: "sessions", TTL: ttl}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions {
		stats.Entries++
		sess.mu.Lock()
		if sess.lastActivity.Before(cutoff) {
			stats.Expired++
		}
		sess.mu.Unlock()
	}
	return stats
}

func (s *EditorService) session(sessionID string) (*EditorSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return sess, nil
}

// snapshot must be called with sess.mu held
func (sess *EditorSession) snapshot() *SessionSnapshot {
	return &SessionSnapshot{
		ID:           sess.ID,
		DocumentID:   sess.documentID,
		Title:        sess.title,
		Elements:     sess.tree,
		GlobalStyles: sess.styles,
		SelectedID:   sess.selectedID,
		Viewport:     sess.viewport,
		Revision:     sess.revision,
		CanUndo:      sess.history.CanUndo(),
		CanRedo:      sess.history.CanRedo(),
		Created:      sess.created,
		LastActivity: sess.lastActivity,
	}
}

// =============================================================================
// Mutation plumbing
// =============================================================================

// errUnchanged tells mutate that fn succeeded without changing the tree
var errUnchanged = errors.New("tree unchanged")

// mutate runs a tree operation under the session lock. On success the prior
// tree goes to history, the revision advances and a selection whose node is
// gone is cleared. On error or errUnchanged nothing changes.
func (s *EditorService) mutate(sessionID, op string, fn func(sess *EditorSession) (document.Tree, string, error)) (MutationResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return MutationResult{}, err
	}
	start := time.Now()

	sess.mu.Lock()
	sess.lastActivity = s.now().UTC()
	next, elementID, err := fn(sess)
	if errors.Is(err, errUnchanged) {
		result := MutationResult{Revision: sess.revision, ElementID: elementID}
		sess.mu.Unlock()
		return result, nil
	}
	if err != nil {
		result := MutationResult{Revision: sess.revision}
		sess.mu.Unlock()
		s.logger.Editor().Debug("Mutation rejected",
			"sessionId", sessionID, "op", op, "error", err.Error(), "duration", time.Since(start))
		return result, err
	}
	sess.history.Record(sess.tree)
	sess.tree = next
	sess.revision++
	sess.dropStaleSelection()
	result := MutationResult{Changed: true, Revision: sess.revision, ElementID: elementID}
	snap := sess.snapshot()
	sess.mu.Unlock()

	s.logger.Editor().Debug("Mutation applied",
		"sessionId", sessionID, "op", op, "revision", result.Revision, "duration", time.Since(start))
	s.notify(snap)
	return result, nil
}

// apply runs a non-history change under the session lock. fn reports whether
// anything changed; the revision only advances when it did.
func (s *EditorService) apply(sessionID, op string, touchesHistory bool, fn func(sess *EditorSession) (bool, string, error)) (MutationResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return MutationResult{}, err
	}

	sess.mu.Lock()
	sess.lastActivity = s.now().UTC()
	changed, elementID, err := fn(sess)
	if err != nil || !changed {
		result := MutationResult{Revision: sess.revision}
		sess.mu.Unlock()
		return result, err
	}
	sess.revision++
	if touchesHistory {
		sess.dropStaleSelection()
	}
	result := MutationResult{Changed: true, Revision: sess.revision, ElementID: elementID}
	snap := sess.snapshot()
	sess.mu.Unlock()

	s.logger.Editor().Debug("Session updated", "sessionId", sessionID, "op", op, "revision", result.Revision)
	s.notify(snap)
	return result, nil
}

// dropStaleSelection must be called with sess.mu held
func (sess *EditorSession) dropStaleSelection() {
	if sess.selectedID == "" {
		return
	}
	if _, ok := sess.tree.Find(sess.selectedID); !ok {
		sess.selectedID = ""
	}
}

// notify pushes fresh editing markup to preview clients, if any
func (s *EditorService) notify(snap *SessionSnapshot) {
	if s.publisher.ConnectionCount(snap.ID) == 0 {
		return
	}
	html, err := s.renderEditing(snap)
	if err != nil && !templates.IsRegistryOnly(err) {
		s.logger.Preview().Error("Failed to render preview", "sessionId", snap.ID, "error", err.Error())
		return
	}
	s.publisher.Publish(messaging.PreviewMessage{
		Type:       messaging.MessageRender,
		SessionID:  snap.ID,
		Revision:   snap.Revision,
		Viewport:   string(snap.Viewport),
		SelectedID: snap.SelectedID,
		HTML:       html,
		CanUndo:    snap.CanUndo,
		CanRedo:    snap.CanRedo,
	})
}

// =============================================================================
// Tree operations
// =============================================================================

// Insert places a copy of node (with its subtree) under parentID at index.
// The copy always gets fresh ids, so ids of deleted elements never come back.
func (s *EditorService) Insert(sessionID, parentID string, node *document.ElementNode, index int) (MutationResult, error) {
	return s.mutate(sessionID, "insert", func(sess *EditorSession) (document.Tree, string, error) {
		if node == nil {
			return nil, "", fmt.Errorf("%w: no element given", document.ErrNodeNotFound)
		}
		if _, ok := s.registry.Get(node.Type); !ok {
			return nil, "", fmt.Errorf("%w: %q", document.ErrUnknownType, node.Type)
		}
		clone := node.CloneWithNewIDs()
		next, err := s.trees.Insert(sess.tree, parentID, clone, index)
		return next, clone.ID, err
	})
}

// InsertNew creates a default element of type t and inserts it. The new
// element becomes the selection.
func (s *EditorService) InsertNew(sessionID string, t document.ElementType, parentID string, index int) (MutationResult, error) {
	return s.mutate(sessionID, "insert-new", func(sess *EditorSession) (document.Tree, string, error) {
		node, err := s.registry.CreateDefaultElement(t)
		if err != nil {
			return nil, "", err
		}
		next, err := s.trees.Insert(sess.tree, parentID, node, index)
		if err != nil {
			return nil, "", err
		}
		sess.selectedID = node.ID
		return next, node.ID, nil
	})
}

// Update merges partial settings into an element. A merge that leaves the
// settings as they were is not recorded.
func (s *EditorService) Update(sessionID, elementID string, partial map[string]any) (MutationResult, error) {
	return s.mutate(sessionID, "update", func(sess *EditorSession) (document.Tree, string, error) {
		next, err := s.trees.Update(sess.tree, elementID, partial)
		if err != nil {
			return nil, "", err
		}
		before, _ := sess.tree.Find(elementID)
		after, _ := next.Find(elementID)
		if after.Settings.Equal(before.Settings) {
			return nil, elementID, errUnchanged
		}
		return next, elementID, nil
	})
}

// Delete removes an element and its subtree. The selection is cleared when it
// pointed into the removed subtree.
func (s *EditorService) Delete(sessionID, elementID string) (MutationResult, error) {
	return s.mutate(sessionID, "delete", func(sess *EditorSession) (document.Tree, string, error) {
		next, err := s.trees.Delete(sess.tree, elementID)
		return next, elementID, err
	})
}

// Duplicate copies an element right after itself and selects the copy
func (s *EditorService) Duplicate(sessionID, elementID string) (MutationResult, error) {
	return s.mutate(sessionID, "duplicate", func(sess *EditorSession) (document.Tree, string, error) {
		next, newID, err := s.trees.Duplicate(sess.tree, elementID)
		if err != nil {
			return nil, "", err
		}
		sess.selectedID = newID
		return next, newID, nil
	})
}

// Move reparents an element
func (s *EditorService) Move(sessionID, elementID, newParentID string, index int) (MutationResult, error) {
	return s.mutate(sessionID, "move", func(sess *EditorSession) (document.Tree, string, error) {
		next, err := s.trees.Move(sess.tree, elementID, newParentID, index)
		return next, elementID, err
	})
}

// Drop resolves a drag ending over a target into a move or an insert
func (s *EditorService) Drop(sessionID string, req DropRequest) (MutationResult, error) {
	if req.ElementID == "" && req.NewType == "" {
		return MutationResult{}, fmt.Errorf("%w: drop needs an element or a new type", ErrInvalidInput)
	}
	return s.mutate(sessionID, "drop", func(sess *EditorSession) (document.Tree, string, error) {
		target, ok := sess.tree.Find(req.TargetID)
		if !ok {
			return nil, "", fmt.Errorf("%w: %s", document.ErrNodeNotFound, req.TargetID)
		}

		var position domainservices.DropPosition
		if req.Position != "" {
			p, err := domainservices.ParseDropPosition(req.Position)
			if err != nil {
				return nil, "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			position = p
		} else {
			axis := req.Axis
			if axis == "" {
				axis = domainservices.AxisVertical
			}
			position = domainservices.ClassifyDrop(req.Pointer, req.Target, s.registry.IsContainer(target.Type), axis)
		}

		parentID, index, err := domainservices.ResolveDrop(sess.tree, req.TargetID, position)
		if err != nil {
			return nil, "", err
		}

		if req.ElementID != "" {
			next, err := s.trees.Move(sess.tree, req.ElementID, parentID, index)
			return next, req.ElementID, err
		}
		node, err := s.registry.CreateDefaultElement(req.NewType)
		if err != nil {
			return nil, "", err
		}
		next, err := s.trees.Insert(sess.tree, parentID, node, index)
		if err != nil {
			return nil, "", err
		}
		sess.selectedID = node.ID
		return next, node.ID, nil
	})
}

// Undo restores the previous tree
func (s *EditorService) Undo(sessionID string) (MutationResult, error) {
	return s.apply(sessionID, "undo", true, func(sess *EditorSession) (bool, string, error) {
		prev, ok := sess.history.Undo(sess.tree)
		if ok {
			sess.tree = prev
		}
		return ok, "", nil
	})
}

// Redo reapplies the last undone tree
func (s *EditorService) Redo(sessionID string) (MutationResult, error) {
	return s.apply(sessionID, "redo", true, func(sess *EditorSession) (bool, string, error) {
		next, ok := sess.history.Redo(sess.tree)
		if ok {
			sess.tree = next
		}
		return ok, "", nil
	})
}

// Select sets the selected element; an empty id clears the selection
func (s *EditorService) Select(sessionID, elementID string) (MutationResult, error) {
	return s.apply(sessionID, "select", false, func(sess *EditorSession) (bool, string, error) {
		if elementID != "" {
			if _, ok := sess.tree.Find(elementID); !ok {
				return false, "", fmt.Errorf("%w: %s", ErrInvalidSelection, elementID)
			}
		}
		if sess.selectedID == elementID {
			return false, elementID, nil
		}
		sess.selectedID = elementID
		return true, elementID, nil
	})
}

// SetViewport switches the viewport the session previews. It never touches
// history.
func (s *EditorService) SetViewport(sessionID string, vp document.Viewport) (MutationResult, error) {
	if !vp.IsValid() {
		return MutationResult{}, fmt.Errorf("%w: unknown viewport %q", ErrInvalidInput, vp)
	}
	return s.apply(sessionID, "set-viewport", false, func(sess *EditorSession) (bool, string, error) {
		if sess.viewport == vp {
			return false, "", nil
		}
		sess.viewport = vp
		return true, "", nil
	})
}

// SetGlobalStyles replaces the document wide styles; empty fields keep defaults
func (s *EditorService) SetGlobalStyles(sessionID string, styles document.GlobalStyles) (MutationResult, error) {
	defaults := document.DefaultGlobalStyles(s.config.ContentWidth)
	return s.apply(sessionID, "set-styles", false, func(sess *EditorSession) (bool, string, error) {
		next := styles.WithDefaults(defaults)
		if next == sess.styles {
			return false, "", nil
		}
		sess.styles = next
		return true, "", nil
	})
}

// =============================================================================
// Import and export
// =============================================================================

// ImportMarkup parses markup into elements and replaces or extends the tree
func (s *EditorService) ImportMarkup(sessionID, html string, mode ImportMode) (MutationResult, error) {
	start := time.Now()
	res := s.importer.ParseDocument(html)
	result, err := s.mutate(sessionID, "import-markup", func(sess *EditorSession) (document.Tree, string, error) {
		if mode == ImportAppend {
			next := sess.tree
			for _, node := range res.Elements {
				var err error
				next, err = s.trees.Insert(next, document.RootID, node, document.AppendIndex)
				if err != nil {
					return nil, "", fmt.Errorf("failed to append imported element: %w", err)
				}
			}
			return next, "", nil
		}
		if err := s.trees.Validate(res.Elements); err != nil {
			return nil, "", fmt.Errorf("failed to import markup: %w", err)
		}
		if res.Title != "" {
			sess.title = res.Title
		}
		if res.Preheader != "" {
			sess.styles.Preheader = res.Preheader
		}
		sess.selectedID = ""
		return res.Elements, "", nil
	})
	if err == nil {
		s.logger.Import().Info("Markup imported",
			"sessionId", sessionID,
			"mode", mode,
			"bytes", len(html),
			"elements", res.Elements.Count(),
			"duration", time.Since(start))
	}
	return result, err
}

// ImportJSON validates a serialized document and replaces the session's
// content with it. Invalid documents never reach the tree.
func (s *EditorService) ImportJSON(sessionID string, data []byte) (MutationResult, error) {
	doc, err := s.integrity.Decode(data)
	if err != nil {
		s.logger.Import().Warn("Rejected serialized document", "sessionId", sessionID, "error", err.Error())
		return MutationResult{}, err
	}
	defaults := document.DefaultGlobalStyles(s.config.ContentWidth)
	return s.mutate(sessionID, "import-json", func(sess *EditorSession) (document.Tree, string, error) {
		sess.title = doc.Title
		sess.styles = doc.GlobalStyles.WithDefaults(defaults)
		sess.selectedID = ""
		return doc.Elements, "", nil
	})
}

// ExportMarkup renders the session as clean standalone markup
func (s *EditorService) ExportMarkup(sessionID string, vp document.Viewport, opts templates.ExportOptions) (string, error) {
	snap, err := s.GetSession(sessionID)
	if err != nil {
		return "", err
	}
	if !vp.IsValid() {
		vp = document.ViewportDesktop
	}
	if opts.Title == "" {
		opts.Title = snap.Title
	}
	if s.config.SanitizeRawHTML {
		opts.SanitizeRawHTML = true
	}

	variant := types.RenderVariant{
		Mode:     string(rendering.ModeClean),
		Viewport: string(vp),
		Options:  exportDigest(opts),
	}
	if html, ok := s.cachedRender(snap, variant); ok {
		return html, nil
	}
	html, err := s.renderer.Export(snap.Elements, snap.GlobalStyles, vp, opts)
	if err != nil {
		return "", err
	}
	s.storeRender(snap, variant, html)
	return html, nil
}

// ExportJSON serializes the session's document
func (s *EditorService) ExportJSON(sessionID string) ([]byte, error) {
	snap, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.integrity.Encode(snap.Document())
}

// RenderForEditing renders the instrumented editing surface for the
// session's viewport and selection. A registry error alongside markup means
// some nodes have unknown types; the markup is still usable.
func (s *EditorService) RenderForEditing(sessionID string) (string, error) {
	snap, err := s.GetSession(sessionID)
	if err != nil {
		return "", err
	}
	return s.renderEditing(snap)
}

func (s *EditorService) renderEditing(snap *SessionSnapshot) (string, error) {
	variant := types.RenderVariant{
		Mode:       string(rendering.ModeInstrumented),
		Viewport:   string(snap.Viewport),
		SelectedID: snap.SelectedID,
	}
	if html, ok := s.cachedRender(snap, variant); ok {
		return html, nil
	}
	html, err := s.renderer.RenderForEditing(snap.Elements, snap.GlobalStyles, snap.Viewport, snap.SelectedID)
	if err != nil && !templates.IsRegistryOnly(err) {
		return "", err
	}
	if err == nil {
		s.storeRender(snap, variant, html)
	}
	return html, err
}

func (s *EditorService) cachedRender(snap *SessionSnapshot, variant types.RenderVariant) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	html, ok := s.cache.GetRender(snap.ID, snap.Revision, variant)
	s.logger.LogCacheOperation("get", snap.ID+":"+variant.Mode, ok, 0)
	return html, ok
}

func (s *EditorService) storeRender(snap *SessionSnapshot, variant types.RenderVariant, html string) {
	if s.cache != nil {
		s.cache.SetRender(snap.ID, snap.Revision, variant, html)
	}
}

// exportDigest is a stable key for export options
func exportDigest(opts templates.ExportOptions) string {
	var sb strings.Builder
	sb.WriteString(opts.Title)
	fmt.Fprintf(&sb, "|%t|%t", opts.FragmentOnly, opts.SanitizeRawHTML)
	keys := make([]string, 0, len(opts.LinkTracking))
	for k := range opts.LinkTracking {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "|%s=%s", k, opts.LinkTracking[k])
	}
	sum := sha1.Sum([]byte(sb.String()))
	return hex.EncodeToString(sum[:8])
}
