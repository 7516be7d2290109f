package document

import "time"

// StoredDocument is a saved document together with its catalog metadata
type StoredDocument struct {
	ID       string     `json:"id"`
	Slug     string     `json:"slug"`
	Document Document   `json:"document"`
	Created  time.Time  `json:"created"`
	Changed  *time.Time `json:"changed,omitempty"`
}

// DocumentSummary is the listing form of a stored document
type DocumentSummary struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Slug     string     `json:"slug"`
	Elements int        `json:"elements"`
	Created  time.Time  `json:"created"`
	Changed  *time.Time `json:"changed,omitempty"`
}

// Summary returns the listing form of d
func (d *StoredDocument) Summary() DocumentSummary {
	return DocumentSummary{
		ID:       d.ID,
		Title:    d.Document.Title,
		Slug:     d.Slug,
		Elements: d.Document.Elements.Count(),
		Created:  d.Created,
		Changed:  d.Changed,
	}
}
