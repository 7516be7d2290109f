package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	domainservices "github.com/AtRiskMedia/blockbuilder-go/internal/domain/services"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/caching/stores"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/markup"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/blockbuilder-go/internal/presentation/templates"
	"github.com/AtRiskMedia/blockbuilder-go/internal/presentation/templates/elements"
)

type recordingPublisher struct {
	mu        sync.Mutex
	listeners int
	messages  []messaging.PreviewMessage
	closed    []string
}

func (p *recordingPublisher) Publish(msg messaging.PreviewMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
}

func (p *recordingPublisher) CloseSession(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = append(p.closed, sessionID)
}

func (p *recordingPublisher) ConnectionCount(string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.listeners
}

func newEditorService(cfg EditorConfig, publisher messaging.Publisher, cache *stores.RendersStore) *EditorService {
	registry := elements.DefaultRegistry()
	svc := NewEditorService(
		registry,
		templates.NewRenderer(registry, nil),
		markup.NewImporter(registry, nil),
		nil,
		publisher,
		nil,
		cfg,
	)
	if cache != nil {
		svc.cache = cache
	}
	return svc
}

func openSession(t *testing.T, svc *EditorService) string {
	t.Helper()
	snap, err := svc.CreateSession(nil, "")
	require.NoError(t, err)
	return snap.ID
}

func sessionState(t *testing.T, svc *EditorService, id string) *SessionSnapshot {
	t.Helper()
	snap, err := svc.GetSession(id)
	require.NoError(t, err)
	return snap
}

func TestCreateBlankSession(t *testing.T) {
	svc := newEditorService(EditorConfig{ContentWidth: 640}, nil, nil)

	snap, err := svc.CreateSession(nil, "doc-1")
	require.NoError(t, err)

	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, "doc-1", snap.DocumentID)
	assert.Empty(t, snap.Elements)
	assert.Equal(t, document.ViewportDesktop, snap.Viewport)
	assert.Equal(t, document.DefaultGlobalStyles(640), snap.GlobalStyles)
	assert.Zero(t, snap.Revision)
	assert.False(t, snap.CanUndo)
	assert.False(t, snap.CanRedo)
}

func TestCreateSessionRejectsInvalidDocument(t *testing.T) {
	svc := newEditorService(EditorConfig{}, nil, nil)
	doc := &document.Document{Elements: document.Tree{
		{ID: "a", Type: document.TypeText, Settings: document.Settings{}},
		{ID: "a", Type: document.TypeText, Settings: document.Settings{}},
	}}

	_, err := svc.CreateSession(doc, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, document.ErrDuplicateID)
	assert.Empty(t, svc.ListSessions())
}

func TestSessionLimit(t *testing.T) {
	svc := newEditorService(EditorConfig{MaxSessions: 1}, nil, nil)
	first := openSession(t, svc)

	_, err := svc.CreateSession(nil, "")
	assert.ErrorIs(t, err, ErrTooManySessions)

	require.NoError(t, svc.CloseSession(first))
	_, err = svc.CreateSession(nil, "")
	assert.NoError(t, err)
}

func TestInsertNewSelectsElement(t *testing.T) {
	svc := newEditorService(EditorConfig{}, nil, nil)
	id := openSession(t, svc)

	res, err := svc.InsertNew(id, document.TypeHeading, document.RootID, document.AppendIndex)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, int64(1), res.Revision)

	snap := sessionState(t, svc, id)
	require.Len(t, snap.Elements, 1)
	assert.Equal(t, res.ElementID, snap.Elements[0].ID)
	assert.Equal(t, res.ElementID, snap.SelectedID)
	assert.True(t, snap.CanUndo)
}

func TestRejectedMutationLeavesSessionUntouched(t *testing.T) {
	svc := newEditorService(EditorConfig{}, nil, nil)
	id := openSession(t, svc)
	inserted, err := svc.InsertNew(id, document.TypeText, document.RootID, document.AppendIndex)
	require.NoError(t, err)
	before := sessionState(t, svc, id)

	res, err := svc.InsertNew(id, document.TypeHeading, inserted.ElementID, document.AppendIndex)
	require.Error(t, err)
	assert.True(t, document.IsStructural(err))
	assert.False(t, res.Changed)
	assert.Equal(t, before.Revision, res.Revision)

	after := sessionState(t, svc, id)
	assert.Equal(t, before.Elements, after.Elements)
	assert.Equal(t, before.Revision, after.Revision)
	assert.Equal(t, before.SelectedID, after.SelectedID)
}

func TestDeletingSelectedElementClearsSelection(t *testing.T) {
	svc := newEditorService(EditorConfig{}, nil, nil)
	id := openSession(t, svc)
	cols, err := svc.InsertNew(id, document.TypeTwoColumns, document.RootID, document.AppendIndex)
	require.NoError(t, err)

	column := sessionState(t, svc, id).Elements[0].Children[0]
	text, err := svc.InsertNew(id, document.TypeText, column.ID, document.AppendIndex)
	require.NoError(t, err)
	require.Equal(t, text.ElementID, sessionState(t, svc, id).SelectedID)

	_, err = svc.Delete(id, cols.ElementID)
	require.NoError(t, err)

	snap := sessionState(t, svc, id)
	assert.Empty(t, snap.Elements)
	assert.Empty(t, snap.SelectedID)
}

func TestInsertNeverReusesDeletedIDs(t *testing.T) {
	svc := newEditorService(EditorConfig{}, nil, nil)
	id := openSession(t, svc)

	given := &document.ElementNode{ID: "client-id", Type: document.TypeText, Settings: document.Settings{"content": "hi"}}
	first, err := svc.Insert(id, document.RootID, given, document.AppendIndex)
	require.NoError(t, err)
	assert.NotEqual(t, "client-id", first.ElementID, "client ids are replaced")

	_, err = svc.Delete(id, first.ElementID)
	require.NoError(t, err)

	again := &document.ElementNode{ID: first.ElementID, Type: document.TypeText, Settings: document.Settings{"content": "back"}}
	second, err := svc.Insert(id, document.RootID, again, document.AppendIndex)
	require.NoError(t, err)
	assert.NotEqual(t, first.ElementID, second.ElementID)

	snap := sessionState(t, svc, id)
	require.Len(t, snap.Elements, 1)
	assert.Equal(t, second.ElementID, snap.Elements[0].ID)
	_, found := snap.Elements.Find(first.ElementID)
	assert.False(t, found, "deleted id stays retired")
	assert.Equal(t, first.ElementID, again.ID, "caller's node is not modified")
}

func TestInsertRejectsInvalidSettings(t *testing.T) {
	svc := newEditorService(EditorConfig{}, nil, nil)
	id := openSession(t, svc)

	node := document.NewElement(document.TypeText, document.Settings{
		"fontSize": document.ResponsiveValue{document.ViewportMobile: 12.0},
	})
	res, err := svc.Insert(id, document.RootID, node, document.AppendIndex)
	var schemaErr *document.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.ErrorIs(t, err, document.ErrInvalidResponsive)
	assert.False(t, res.Changed)
	assert.Empty(t, sessionState(t, svc, id).Elements)
}

func TestNoOpUpdateIsNotRecorded(t *testing.T) {
	svc := newEditorService(EditorConfig{}, nil, nil)
	id := openSession(t, svc)
	heading, err := svc.InsertNew(id, document.TypeHeading, document.RootID, document.AppendIndex)
	require.NoError(t, err)
	_, err = svc.Update(id, heading.ElementID, map[string]any{"text": "Hello"})
	require.NoError(t, err)
	before := sessionState(t, svc, id)

	cases := []struct {
		name    string
		partial map[string]any
	}{
		{"empty partial", map[string]any{}},
		{"nil partial", nil},
		{"same value", map[string]any{"text": "Hello"}},
		{"removing a missing key", map[string]any{"nope": nil}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := svc.Update(id, heading.ElementID, tc.partial)
			require.NoError(t, err)
			assert.False(t, res.Changed)
			assert.Equal(t, before.Revision, res.Revision)
			assert.Equal(t, heading.ElementID, res.ElementID)
		})
	}

	_, err = svc.Undo(id)
	require.NoError(t, err)
	text, _ := sessionState(t, svc, id).Elements.Find(heading.ElementID)
	assert.NotEqual(t, "Hello", text.Settings["text"], "one undo reverts the real edit")
}

func TestColumnsKeepTheirSlots(t *testing.T) {
	svc := newEditorService(EditorConfig{}, nil, nil)
	id := openSession(t, svc)
	_, err := svc.InsertNew(id, document.TypeTwoColumns, document.RootID, document.AppendIndex)
	require.NoError(t, err)
	column := sessionState(t, svc, id).Elements[0].Children[0]
	before := sessionState(t, svc, id).Revision

	_, err = svc.Delete(id, column.ID)
	assert.ErrorIs(t, err, document.ErrChildNotAllowed)
	_, err = svc.Duplicate(id, column.ID)
	assert.ErrorIs(t, err, document.ErrChildNotAllowed)

	snap := sessionState(t, svc, id)
	assert.Len(t, snap.Elements[0].Children, 2)
	assert.Equal(t, before, snap.Revision)
}

func TestUndoRedo(t *testing.T) {
	svc := newEditorService(EditorConfig{}, nil, nil)
	id := openSession(t, svc)

	res, err := svc.Undo(id)
	require.NoError(t, err)
	assert.False(t, res.Changed, "nothing to undo")

	_, err = svc.InsertNew(id, document.TypeHeading, document.RootID, document.AppendIndex)
	require.NoError(t, err)
	second, err := svc.InsertNew(id, document.TypeText, document.RootID, document.AppendIndex)
	require.NoError(t, err)

	res, err = svc.Undo(id)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	snap := sessionState(t, svc, id)
	require.Len(t, snap.Elements, 1)
	assert.Empty(t, snap.SelectedID, "undone element can no longer be selected")
	assert.True(t, snap.CanRedo)

	res, err = svc.Redo(id)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	snap = sessionState(t, svc, id)
	require.Len(t, snap.Elements, 2)
	assert.Equal(t, second.ElementID, snap.Elements[1].ID)
	assert.False(t, snap.CanRedo)

	_, err = svc.Undo(id)
	require.NoError(t, err)
	_, err = svc.InsertNew(id, document.TypeDivider, document.RootID, document.AppendIndex)
	require.NoError(t, err)
	assert.False(t, sessionState(t, svc, id).CanRedo, "a new mutation drops the redo stack")
}

func TestHistoryLimit(t *testing.T) {
	svc := newEditorService(EditorConfig{HistoryLimit: 2}, nil, nil)
	id := openSession(t, svc)
	for i := 0; i < 4; i++ {
		_, err := svc.InsertNew(id, document.TypeText, document.RootID, document.AppendIndex)
		require.NoError(t, err)
	}

	undone := 0
	for {
		res, err := svc.Undo(id)
		require.NoError(t, err)
		if !res.Changed {
			break
		}
		undone++
	}
	assert.Equal(t, 2, undone)
	assert.Len(t, sessionState(t, svc, id).Elements, 2)
}

func TestSelectAndViewportStayOutOfHistory(t *testing.T) {
	svc := newEditorService(EditorConfig{}, nil, nil)
	id := openSession(t, svc)
	text, err := svc.InsertNew(id, document.TypeText, document.RootID, document.AppendIndex)
	require.NoError(t, err)
	_, err = svc.Undo(id)
	require.NoError(t, err)
	_, err = svc.Redo(id)
	require.NoError(t, err)

	res, err := svc.Select(id, "missing")
	assert.ErrorIs(t, err, ErrInvalidSelection)
	assert.False(t, res.Changed)

	res, err = svc.Select(id, text.ElementID)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	res, err = svc.Select(id, text.ElementID)
	require.NoError(t, err)
	assert.False(t, res.Changed, "selecting the same element again is a no-op")

	res, err = svc.SetViewport(id, document.ViewportMobile)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	res, err = svc.SetViewport(id, document.ViewportMobile)
	require.NoError(t, err)
	assert.False(t, res.Changed)

	_, err = svc.SetViewport(id, document.Viewport("watch"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	snap := sessionState(t, svc, id)
	assert.Equal(t, document.ViewportMobile, snap.Viewport)
	assert.True(t, snap.CanUndo)
	assert.False(t, snap.CanRedo, "selection and viewport changes never touch history")
}

func TestUpdateMergesSettings(t *testing.T) {
	svc := newEditorService(EditorConfig{}, nil, nil)
	id := openSession(t, svc)
	heading, err := svc.InsertNew(id, document.TypeHeading, document.RootID, document.AppendIndex)
	require.NoError(t, err)

	_, err = svc.Update(id, heading.ElementID, map[string]any{
		"text":     "Spring sale",
		"fontSize": map[string]any{"desktop": 30.0, "mobile": 20.0},
	})
	require.NoError(t, err)

	node, ok := sessionState(t, svc, id).Elements.Find(heading.ElementID)
	require.True(t, ok)
	assert.Equal(t, "Spring sale", node.Settings.String("text", document.ViewportDesktop, ""))

	_, err = svc.Update(id, heading.ElementID, map[string]any{"fontSize": map[string]any{"mobile": 20.0}})
	assert.ErrorIs(t, err, document.ErrInvalidResponsive)
}

func TestDuplicateSelectsCopy(t *testing.T) {
	svc := newEditorService(EditorConfig{}, nil, nil)
	id := openSession(t, svc)
	button, err := svc.InsertNew(id, document.TypeButton, document.RootID, document.AppendIndex)
	require.NoError(t, err)

	dup, err := svc.Duplicate(id, button.ElementID)
	require.NoError(t, err)

	snap := sessionState(t, svc, id)
	require.Len(t, snap.Elements, 2)
	assert.NotEqual(t, button.ElementID, dup.ElementID)
	assert.Equal(t, dup.ElementID, snap.Elements[1].ID)
	assert.Equal(t, dup.ElementID, snap.SelectedID)
}

func TestDrop(t *testing.T) {
	svc := newEditorService(EditorConfig{}, nil, nil)
	id := openSession(t, svc)
	heading, err := svc.InsertNew(id, document.TypeHeading, document.RootID, document.AppendIndex)
	require.NoError(t, err)
	_, err = svc.InsertNew(id, document.TypeTwoColumns, document.RootID, document.AppendIndex)
	require.NoError(t, err)
	column := sessionState(t, svc, id).Elements[1].Children[1]

	t.Run("palette item inside a column", func(t *testing.T) {
		res, err := svc.Drop(id, DropRequest{NewType: document.TypeText, TargetID: column.ID, Position: "inside"})
		require.NoError(t, err)

		snap := sessionState(t, svc, id)
		col, ok := snap.Elements.Find(column.ID)
		require.True(t, ok)
		require.Len(t, col.Children, 1)
		assert.Equal(t, res.ElementID, col.Children[0].ID)
		assert.Equal(t, res.ElementID, snap.SelectedID)
	})

	t.Run("classified from the pointer", func(t *testing.T) {
		text := sessionState(t, svc, id).Elements[1].Children[1].Children[0]
		_, err := svc.Drop(id, DropRequest{
			ElementID: text.ID,
			TargetID:  heading.ElementID,
			Pointer:   domainservices.Point{X: 10, Y: 5},
			Target:    domainservices.Rect{Width: 100, Height: 40},
		})
		require.NoError(t, err)

		snap := sessionState(t, svc, id)
		require.Len(t, snap.Elements, 3)
		assert.Equal(t, text.ID, snap.Elements[0].ID)
		assert.Empty(t, snap.Elements[2].Children[1].Children)
	})

	t.Run("rejections", func(t *testing.T) {
		before := sessionState(t, svc, id)

		_, err := svc.Drop(id, DropRequest{TargetID: heading.ElementID})
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = svc.Drop(id, DropRequest{NewType: document.TypeText, TargetID: heading.ElementID, Position: "above"})
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = svc.Drop(id, DropRequest{NewType: document.TypeText, TargetID: "nope", Position: "after"})
		assert.ErrorIs(t, err, document.ErrNodeNotFound)

		_, err = svc.Drop(id, DropRequest{NewType: document.TypeText, TargetID: heading.ElementID, Position: "inside"})
		assert.ErrorIs(t, err, document.ErrNotContainer)

		assert.Equal(t, before.Revision, sessionState(t, svc, id).Revision)
	})
}

func TestImportMarkupModes(t *testing.T) {
	svc := newEditorService(EditorConfig{}, nil, nil)
	id := openSession(t, svc)
	_, err := svc.InsertNew(id, document.TypeDivider, document.RootID, document.AppendIndex)
	require.NoError(t, err)

	_, err = svc.ImportMarkup(id, `<h2>Welcome</h2><p>Thanks for joining.</p>`, ImportAppend)
	require.NoError(t, err)
	snap := sessionState(t, svc, id)
	assert.Equal(t, []document.ElementType{document.TypeDivider, document.TypeHeading, document.TypeText}, elementTypes(snap.Elements))
	assert.NotEmpty(t, snap.SelectedID, "append keeps the selection")

	_, err = svc.ImportMarkup(id, `<html><head><title>Digest</title></head><body><p>Only</p></body></html>`, ImportReplace)
	require.NoError(t, err)
	snap = sessionState(t, svc, id)
	assert.Equal(t, []document.ElementType{document.TypeText}, elementTypes(snap.Elements))
	assert.Equal(t, "Digest", snap.Title)
	assert.Empty(t, snap.SelectedID)

	_, err = svc.Undo(id)
	require.NoError(t, err)
	assert.Len(t, sessionState(t, svc, id).Elements, 3, "import is one undo step")
}

func TestImportJSON(t *testing.T) {
	svc := newEditorService(EditorConfig{}, nil, nil)
	id := openSession(t, svc)

	_, err := svc.ImportJSON(id, []byte(`{"version":1,"elements":[{"id":"x","type":"marquee","settings":{}}]}`))
	var schemaErr *document.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Zero(t, sessionState(t, svc, id).Revision)

	_, err = svc.ImportJSON(id, []byte(`{"version":1,"title":"Imported","elements":[{"id":"t1","type":"text","settings":{"text":"hi"}}]}`))
	require.NoError(t, err)
	snap := sessionState(t, svc, id)
	assert.Equal(t, "Imported", snap.Title)
	require.Len(t, snap.Elements, 1)
	assert.Equal(t, "t1", snap.Elements[0].ID)
	assert.Equal(t, document.DefaultGlobalStyles(0).FontFamily, snap.GlobalStyles.FontFamily)
}

func TestExportJSONRoundTrips(t *testing.T) {
	svc := newEditorService(EditorConfig{}, nil, nil)
	id := openSession(t, svc)
	_, err := svc.SetTitle(id, "  Weekly  ")
	require.NoError(t, err)
	_, err = svc.InsertNew(id, document.TypeTwoColumns, document.RootID, document.AppendIndex)
	require.NoError(t, err)

	data, err := svc.ExportJSON(id)
	require.NoError(t, err)

	other := openSession(t, svc)
	_, err = svc.ImportJSON(other, data)
	require.NoError(t, err)

	assert.Equal(t, "Weekly", sessionState(t, svc, other).Title)
	reexported, err := svc.ExportJSON(other)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(reexported))
}

func TestExportMarkupUsesRevisionCache(t *testing.T) {
	cache := stores.NewRendersStore(time.Minute)
	svc := newEditorService(EditorConfig{}, nil, cache)
	id := openSession(t, svc)
	_, err := svc.InsertNew(id, document.TypeHeading, document.RootID, document.AppendIndex)
	require.NoError(t, err)

	first, err := svc.ExportMarkup(id, document.ViewportDesktop, templates.ExportOptions{})
	require.NoError(t, err)
	again, err := svc.ExportMarkup(id, document.ViewportDesktop, templates.ExportOptions{})
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, 1, cache.Stats(time.Minute).Entries)

	_, err = svc.ExportMarkup(id, document.ViewportMobile, templates.ExportOptions{FragmentOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Stats(time.Minute).Entries)

	_, err = svc.InsertNew(id, document.TypeText, document.RootID, document.AppendIndex)
	require.NoError(t, err)
	updated, err := svc.ExportMarkup(id, document.ViewportDesktop, templates.ExportOptions{})
	require.NoError(t, err)
	assert.NotEqual(t, first, updated)
	assert.Equal(t, 1, cache.Stats(time.Minute).Entries, "older revisions are dropped")

	require.NoError(t, svc.CloseSession(id))
	assert.Zero(t, cache.Stats(time.Minute).Entries)
}

func TestExportDigestIsOrderIndependent(t *testing.T) {
	a := exportDigest(templates.ExportOptions{LinkTracking: map[string]string{"utm_source": "x", "utm_medium": "y"}})
	b := exportDigest(templates.ExportOptions{LinkTracking: map[string]string{"utm_medium": "y", "utm_source": "x"}})
	c := exportDigest(templates.ExportOptions{FragmentOnly: true})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestMutationsNotifyPreviewClients(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := newEditorService(EditorConfig{}, publisher, nil)
	id := openSession(t, svc)

	_, err := svc.InsertNew(id, document.TypeText, document.RootID, document.AppendIndex)
	require.NoError(t, err)
	assert.Empty(t, publisher.messages, "no clients, no render")

	publisher.listeners = 1
	res, err := svc.InsertNew(id, document.TypeButton, document.RootID, document.AppendIndex)
	require.NoError(t, err)

	require.Len(t, publisher.messages, 1)
	msg := publisher.messages[0]
	assert.Equal(t, messaging.MessageRender, msg.Type)
	assert.Equal(t, id, msg.SessionID)
	assert.Equal(t, res.Revision, msg.Revision)
	assert.Equal(t, res.ElementID, msg.SelectedID)
	assert.Contains(t, msg.HTML, templates.AttrID+`="`+res.ElementID+`"`)
	assert.True(t, msg.CanUndo)

	_, err = svc.Select(id, "missing")
	require.Error(t, err)
	assert.Len(t, publisher.messages, 1, "rejected operations publish nothing")

	require.NoError(t, svc.CloseSession(id))
	assert.Equal(t, []string{id}, publisher.closed)
}

func TestRenderForEditingReportsUnknownTypes(t *testing.T) {
	svc := newEditorService(EditorConfig{}, nil, nil)
	id := openSession(t, svc)
	svc.sessions[id].tree = document.Tree{
		{ID: "ghost", Type: "carousel", Settings: document.Settings{}},
		{ID: "t1", Type: document.TypeText, Settings: document.Settings{"content": "still here"}},
	}

	html, err := svc.RenderForEditing(id)
	require.Error(t, err)
	assert.True(t, templates.IsRegistryOnly(err))
	assert.Contains(t, html, "still here")
}

func TestSessionLookupAndExpiry(t *testing.T) {
	svc := newEditorService(EditorConfig{}, &recordingPublisher{}, nil)
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	idle := openSession(t, svc)
	clock = clock.Add(30 * time.Minute)
	active := openSession(t, svc)

	_, err := svc.GetSession("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, svc.CloseSession("missing"), ErrSessionNotFound)

	sessions := svc.ListSessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, active, sessions[0].ID, "newest first")

	clock = clock.Add(45 * time.Minute)
	stats := svc.Stats(time.Hour)
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, 1, stats.Expired)

	assert.Equal(t, 1, svc.PurgeExpired(time.Hour))
	_, err = svc.GetSession(idle)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.GetSession(active)
	assert.NoError(t, err)
}

func TestConcurrentMutationsSerialize(t *testing.T) {
	svc := newEditorService(EditorConfig{HistoryLimit: 200}, nil, nil)
	id := openSession(t, svc)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.InsertNew(id, document.TypeText, document.RootID, document.AppendIndex)
			assert.NoError(t, err)
			_, err = svc.RenderForEditing(id)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap := sessionState(t, svc, id)
	assert.Equal(t, int64(workers), snap.Revision)
	assert.Len(t, snap.Elements, workers)
	assert.NoError(t, domainservices.NewTreeService(svc.Registry()).Validate(snap.Elements))
}

func elementTypes(nodes []*document.ElementNode) []document.ElementType {
	out := make([]document.ElementType, len(nodes))
	for i, n := range nodes {
		out[i] = n.Type
	}
	return out
}
