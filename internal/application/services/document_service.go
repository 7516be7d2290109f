package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/gosimple/slug"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/repositories"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/security"
)

var ErrDocumentNotFound = errors.New("document not found")

// DocumentService saves editor sessions as stored documents and reopens them
type DocumentService struct {
	repo   repositories.DocumentRepository
	editor *EditorService
	logger *logging.ChanneledLogger
	now    func() time.Time
}

// NewDocumentService creates a new document service
func NewDocumentService(repo repositories.DocumentRepository, editor *EditorService, logger *logging.ChanneledLogger) *DocumentService {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &DocumentService{
		repo:   repo,
		editor: editor,
		logger: logger,
		now:    time.Now,
	}
}

// SaveSession stores the session's document. The first save creates a stored
// document and links it to the session; later saves update it.
func (s *DocumentService) SaveSession(sessionID string) (*document.StoredDocument, error) {
	start := time.Now()
	snap, err := s.editor.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()

	if snap.DocumentID != "" {
		existing, err := s.repo.FindByID(snap.DocumentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load document %s: %w", snap.DocumentID, err)
		}
		if existing != nil {
			existing.Document = snap.Document()
			existing.Changed = &now
			if err := s.repo.Update(existing); err != nil {
				return nil, fmt.Errorf("failed to save session %s: %w", sessionID, err)
			}
			s.logger.Database().Info("Document saved",
				"documentId", existing.ID, "sessionId", sessionID, "duration", time.Since(start))
			return existing, nil
		}
	}

	slugValue, err := s.uniqueSlug(snap.Title)
	if err != nil {
		return nil, err
	}
	stored := &document.StoredDocument{
		ID:       security.GenerateULID(),
		Slug:     slugValue,
		Document: snap.Document(),
		Created:  now,
	}
	if err := s.repo.Store(stored); err != nil {
		return nil, fmt.Errorf("failed to save session %s: %w", sessionID, err)
	}
	if err := s.editor.LinkDocument(sessionID, stored.ID); err != nil {
		return nil, err
	}

	s.logger.Database().Info("Document created",
		"documentId", stored.ID, "slug", stored.Slug, "sessionId", sessionID, "duration", time.Since(start))
	return stored, nil
}

// OpenSession starts an editor session on a stored document
func (s *DocumentService) OpenSession(documentID string) (*SessionSnapshot, error) {
	stored, err := s.Get(documentID)
	if err != nil {
		return nil, err
	}
	return s.editor.CreateSession(&stored.Document, stored.ID)
}

// Get returns a stored document by id or slug
func (s *DocumentService) Get(idOrSlug string) (*document.StoredDocument, error) {
	if idOrSlug == "" {
		return nil, fmt.Errorf("document ID cannot be empty")
	}

	var stored *document.StoredDocument
	var err error
	if security.IsULID(idOrSlug) {
		stored, err = s.repo.FindByID(idOrSlug)
	} else {
		stored, err = s.repo.FindBySlug(idOrSlug)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", idOrSlug, err)
	}
	if stored == nil {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, idOrSlug)
	}
	return stored, nil
}

// List returns the summaries of every stored document
func (s *DocumentService) List() ([]document.DocumentSummary, error) {
	summaries, err := s.repo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return summaries, nil
}

// Delete removes a stored document. Open sessions keep their content.
func (s *DocumentService) Delete(documentID string) error {
	if _, err := s.Get(documentID); err != nil {
		return err
	}
	if err := s.repo.Delete(documentID); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", documentID, err)
	}
	s.logger.Database().Info("Document deleted", "documentId", documentID)
	return nil
}

// uniqueSlug derives a slug from title, suffixing -2, -3... on collision
func (s *DocumentService) uniqueSlug(title string) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "untitled"
	}
	candidate := base
	for i := 2; ; i++ {
		existing, err := s.repo.FindBySlug(candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug %s: %w", candidate, err)
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
