// Package repositories defines the repository interfaces for saved documents.
// These repositories abstract the data persistence details, ensuring the core
// application is clean and decoupled from the database.
package repositories

import (
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
)

type DocumentRepository interface {
	FindByID(id string) (*document.StoredDocument, error)
	FindBySlug(slug string) (*document.StoredDocument, error)
	FindAll() ([]document.DocumentSummary, error)
	Store(doc *document.StoredDocument) error
	Update(doc *document.StoredDocument) error
	Delete(id string) error
}

type MediaRepository interface {
	Store(file *document.MediaFile) error
	FindByID(id string) (*document.MediaFile, error)
}
