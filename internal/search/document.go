// Package search provides full-text search over posts using Bleve.
package search

import (
	"strconv"

	"golang.org/x/text/unicode/norm"

	"github.com/inkpost/inkpost-server/internal/domain"
)

// PostDocument is the indexed form of a post. Tag names and section text are
// denormalized so one query covers everything a reader sees.
type PostDocument struct {
	ID       string
	OwnerID  int64
	Title    string
	Detail   string
	Tags     []string
	Sections []string
	Visible  bool
}

// NewPostDocument builds a document from a post with its tags and sections loaded.
// Text is NFKC-normalized so composed and decomposed forms match.
func NewPostDocument(p *domain.Post) *PostDocument {
	doc := &PostDocument{
		ID:      DocID(p.ID),
		OwnerID: p.OwnerID,
		Title:   norm.NFKC.String(p.Title),
		Visible: p.Visible,
	}
	if p.Detail != nil {
		doc.Detail = norm.NFKC.String(*p.Detail)
	}
	for _, t := range p.Tags {
		doc.Tags = append(doc.Tags, norm.NFKC.String(t.Name))
	}
	for _, s := range p.Sections {
		text := s.Header
		if s.Description != nil {
			text += " " + *s.Description
		}
		doc.Sections = append(doc.Sections, norm.NFKC.String(text))
	}
	return doc
}

// DocID converts a post ID to an index document ID.
func DocID(postID int64) string {
	return strconv.FormatInt(postID, 10)
}

// ToMap converts the document to the field names used by the mapping.
func (d *PostDocument) ToMap() map[string]any {
	m := map[string]any{
		"type":     "post",
		"owner_id": strconv.FormatInt(d.OwnerID, 10),
		"title":    d.Title,
		"visible":  d.Visible,
	}
	if d.Detail != "" {
		m["detail"] = d.Detail
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if len(d.Sections) > 0 {
		m["sections"] = d.Sections
	}
	return m
}
