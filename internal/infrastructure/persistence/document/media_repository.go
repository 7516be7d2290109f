package document

import (
	"database/sql"
	"fmt"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
)

type MediaRepository struct {
	db *sql.DB
}

func NewMediaRepository(db *sql.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

func (r *MediaRepository) Store(file *document.MediaFile) error {
	query := `INSERT INTO files (id, filename, alt_description, url, src_set, width, height, created) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	var srcSet sql.NullString
	if file.SrcSet != "" {
		srcSet = sql.NullString{String: file.SrcSet, Valid: true}
	}

	_, err := r.db.Exec(query, file.ID, file.Filename, file.AltDescription, file.URL,
		srcSet, file.Width, file.Height, formatTime(file.Created))
	if err != nil {
		return fmt.Errorf("failed to insert file: %w", err)
	}
	return nil
}

// FindByID returns nil, nil when no file has the id
func (r *MediaRepository) FindByID(id string) (*document.MediaFile, error) {
	query := `SELECT id, filename, alt_description, url, src_set, width, height, created FROM files WHERE id = ?`

	row := r.db.QueryRow(query, id)

	var file document.MediaFile
	var srcSet sql.NullString
	var createdStr string

	err := row.Scan(&file.ID, &file.Filename, &file.AltDescription, &file.URL,
		&srcSet, &file.Width, &file.Height, &createdStr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan file: %w", err)
	}

	if srcSet.Valid {
		file.SrcSet = srcSet.String
	}
	file.Created = parseTime(createdStr)
	return &file, nil
}
