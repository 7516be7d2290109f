package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/email"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/blockbuilder-go/internal/presentation/templates"
)

var ErrEmailNotConfigured = errors.New("email delivery is not configured")

// TestSendRequest asks for an exported session to be mailed to a few inboxes
type TestSendRequest struct {
	To           []string          `json:"to"`
	Subject      string            `json:"subject"`
	Viewport     string            `json:"viewport"`
	LinkTracking map[string]string `json:"linkTracking"`
}

// DeliveryService exports a session and sends it as a test email
type DeliveryService struct {
	editor *EditorService
	mailer email.Service
	logger *logging.ChanneledLogger
}

// NewDeliveryService creates a delivery service. A nil mailer disables sending.
func NewDeliveryService(editor *EditorService, mailer email.Service, logger *logging.ChanneledLogger) *DeliveryService {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &DeliveryService{editor: editor, mailer: mailer, logger: logger}
}

// SendTest exports the session in clean mode and mails it. It returns the
// provider's message id.
func (s *DeliveryService) SendTest(sessionID string, req TestSendRequest) (string, error) {
	if s.mailer == nil {
		return "", ErrEmailNotConfigured
	}
	if err := email.ValidateRecipients(req.To); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	start := time.Now()

	snap, err := s.editor.GetSession(sessionID)
	if err != nil {
		return "", err
	}
	vp, err := document.ParseViewport(req.Viewport)
	if err != nil {
		vp = document.ViewportDesktop
	}
	html, err := s.editor.ExportMarkup(sessionID, vp, templates.ExportOptions{LinkTracking: req.LinkTracking})
	if err != nil {
		return "", fmt.Errorf("failed to export session %s: %w", sessionID, err)
	}

	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = snap.Title
	}
	if subject == "" {
		subject = "Test send"
	}

	id, err := s.mailer.SendTestEmail(email.Message{To: req.To, Subject: "[Test] " + subject, HTML: html})
	if err != nil {
		s.logger.Email().Error("Test send failed", "sessionId", sessionID, "error", err.Error())
		return "", err
	}

	s.logger.Email().Info("Test send delivered",
		"sessionId", sessionID,
		"recipients", len(req.To),
		"messageId", id,
		"duration", time.Since(start))
	return id, nil
}
