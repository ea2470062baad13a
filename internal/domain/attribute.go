package domain

import "time"

// Tag is a label scoped to its owner. Two owners may each have a tag with the
// same name.
type Tag struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Owner implements Owned.
func (t *Tag) Owner() int64 { return t.OwnerID }

// Section is an owned content block with a header, an optional description
// and an optional image stored relative to the images directory.
type Section struct {
	ID            int64     `json:"id"`
	OwnerID       int64     `json:"owner_id"`
	Header        string    `json:"header"`
	Description   *string   `json:"description,omitempty"`
	Image         string    `json:"image,omitempty"`
	ImageBlurHash string    `json:"image_blur_hash,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Owner implements Owned.
func (s *Section) Owner() int64 { return s.OwnerID }

// CleanDescription maps an empty description to nil so a cleared section
// is stored and matched as NULL.
func CleanDescription(description *string) *string {
	if description == nil || *description == "" {
		return nil
	}
	return description
}
