package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/email"
)

type fakeMailer struct {
	sent []email.Message
	err  error
}

func (m *fakeMailer) SendTestEmail(msg email.Message) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, msg)
	return "msg-1", nil
}

func deliverySession(t *testing.T) (*EditorService, string) {
	t.Helper()
	editor := newEditorService(EditorConfig{}, nil, nil)
	id := openSession(t, editor)
	button, err := editor.InsertNew(id, document.TypeButton, document.RootID, document.AppendIndex)
	require.NoError(t, err)
	_, err = editor.Update(id, button.ElementID, map[string]any{"href": "https://shop.test/sale"})
	require.NoError(t, err)
	_, err = editor.SetTitle(id, "Spring sale")
	require.NoError(t, err)
	return editor, id
}

func TestSendTest(t *testing.T) {
	editor, id := deliverySession(t)
	mailer := &fakeMailer{}
	svc := NewDeliveryService(editor, mailer, nil)

	msgID, err := svc.SendTest(id, TestSendRequest{
		To:           []string{"qa@example.com"},
		LinkTracking: map[string]string{"utm_source": "test"},
	})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", msgID)

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, []string{"qa@example.com"}, msg.To)
	assert.Equal(t, "[Test] Spring sale", msg.Subject)
	assert.Contains(t, msg.HTML, "<!DOCTYPE html>")
	assert.Contains(t, msg.HTML, "https://shop.test/sale?utm_source=test")
	assert.NotContains(t, msg.HTML, "data-bb-")
}

func TestSendTestRejections(t *testing.T) {
	editor, id := deliverySession(t)

	_, err := NewDeliveryService(editor, nil, nil).SendTest(id, TestSendRequest{To: []string{"qa@example.com"}})
	assert.ErrorIs(t, err, ErrEmailNotConfigured)

	svc := NewDeliveryService(editor, &fakeMailer{}, nil)
	_, err = svc.SendTest(id, TestSendRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.SendTest(id, TestSendRequest{To: []string{"not an address"}})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.SendTest("missing", TestSendRequest{To: []string{"qa@example.com"}})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	failing := errors.New("provider down")
	_, err = NewDeliveryService(editor, &fakeMailer{err: failing}, nil).SendTest(id, TestSendRequest{To: []string{"qa@example.com"}})
	assert.ErrorIs(t, err, failing)
}

func TestSendTestSubjectFallback(t *testing.T) {
	editor := newEditorService(EditorConfig{}, nil, nil)
	id := openSession(t, editor)
	mailer := &fakeMailer{}
	svc := NewDeliveryService(editor, mailer, nil)

	_, err := svc.SendTest(id, TestSendRequest{To: []string{"qa@example.com"}, Viewport: "mobile"})
	require.NoError(t, err)
	_, err = svc.SendTest(id, TestSendRequest{To: []string{"qa@example.com"}, Subject: "  Custom  "})
	require.NoError(t, err)

	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "[Test] Test send", mailer.sent[0].Subject)
	assert.Equal(t, "[Test] Custom", mailer.sent[1].Subject)
}
