// Package document provides the SQL repositories for saved documents and
// uploaded media
package document

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/observability/logging"
)

// slowQueryThreshold marks queries worth a slow-query log line
const slowQueryThreshold = 200 * time.Millisecond

type DocumentRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

func NewDocumentRepository(db *sql.DB, logger *logging.ChanneledLogger) *DocumentRepository {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

// FindByID returns nil, nil when no document has the id
func (r *DocumentRepository) FindByID(id string) (*document.StoredDocument, error) {
	query := `SELECT id, slug, payload, created, changed FROM documents WHERE id = ?`
	return r.loadOne(query, id)
}

// FindBySlug returns nil, nil when no document has the slug
func (r *DocumentRepository) FindBySlug(slug string) (*document.StoredDocument, error) {
	query := `SELECT id, slug, payload, created, changed FROM documents WHERE slug = ?`
	return r.loadOne(query, slug)
}

// FindAll lists every saved document, most recently changed first
func (r *DocumentRepository) FindAll() ([]document.DocumentSummary, error) {
	start := time.Now()
	query := `SELECT id, slug, payload, created, changed FROM documents
              ORDER BY COALESCE(changed, created) DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	summaries := []document.DocumentSummary{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, doc.Summary())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	r.logSlow("documents.FindAll", start)
	return summaries, nil
}

func (r *DocumentRepository) Store(doc *document.StoredDocument) error {
	payload, err := json.Marshal(doc.Document.Serialize())
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	query := `INSERT INTO documents (id, title, slug, version, payload, created, changed) VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.Exec(query, doc.ID, doc.Document.Title, doc.Slug, document.SerializedVersion,
		string(payload), formatTime(doc.Created), formatNullTime(doc.Changed))
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	r.logger.Database().Debug("Document stored", "documentId", doc.ID, "slug", doc.Slug, "bytes", len(payload))
	return nil
}

func (r *DocumentRepository) Update(doc *document.StoredDocument) error {
	payload, err := json.Marshal(doc.Document.Serialize())
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	query := `UPDATE documents SET title = ?, slug = ?, version = ?, payload = ?, changed = ? WHERE id = ?`

	res, err := r.db.Exec(query, doc.Document.Title, doc.Slug, document.SerializedVersion,
		string(payload), formatNullTime(doc.Changed), doc.ID)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to update document: %s not found", doc.ID)
	}

	r.logger.Database().Debug("Document updated", "documentId", doc.ID, "bytes", len(payload))
	return nil
}

func (r *DocumentRepository) Delete(id string) error {
	query := `DELETE FROM documents WHERE id = ?`

	_, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	r.logger.Database().Debug("Document deleted", "documentId", id)
	return nil
}

func (r *DocumentRepository) loadOne(query string, arg string) (*document.StoredDocument, error) {
	start := time.Now()
	rows, err := r.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	doc, err := scanDocument(rows)
	if err != nil {
		return nil, err
	}

	r.logSlow("documents.FindOne", start)
	return doc, nil
}

func (r *DocumentRepository) logSlow(query string, start time.Time) {
	if d := time.Since(start); d > slowQueryThreshold {
		r.logger.LogSlowQuery(query, d)
	}
}

func scanDocument(rows *sql.Rows) (*document.StoredDocument, error) {
	var doc document.StoredDocument
	var payload, createdStr string
	var changed sql.NullString

	if err := rows.Scan(&doc.ID, &doc.Slug, &payload, &createdStr, &changed); err != nil {
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}

	var serialized document.SerializedDocument
	if err := json.Unmarshal([]byte(payload), &serialized); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document %s: %w", doc.ID, err)
	}
	doc.Document = document.Document{
		Title:        serialized.Title,
		GlobalStyles: serialized.GlobalStyles,
		Elements:     serialized.Elements,
	}
	if doc.Document.Elements == nil {
		doc.Document.Elements = document.Tree{}
	}

	doc.Created = parseTime(createdStr)
	if changed.Valid {
		t := parseTime(changed.String)
		doc.Changed = &t
	}
	return &doc, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
