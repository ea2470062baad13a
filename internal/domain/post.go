package domain

import "time"

// Post is a blog entry. Tags, Sections and Likes are filled in by the post
// service when a full representation is requested.
type Post struct {
	ID         int64     `json:"id"`
	OwnerID    int64     `json:"owner_id"`
	Title      string    `json:"title"`
	Detail     *string   `json:"detail,omitempty"`
	Featured   bool      `json:"featured"`
	VisitCount int64     `json:"visit_count"`
	Visible    bool      `json:"visible"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Tags     []*Tag     `json:"tags,omitempty"`
	Sections []*Section `json:"sections,omitempty"`
	Likes    []int64    `json:"likes,omitempty"`
}

// Owner implements Owned.
func (p *Post) Owner() int64 { return p.OwnerID }

// VisibleTo reports whether userID may read the post. Hidden posts are
// readable only by their owner.
func (p *Post) VisibleTo(userID int64) bool {
	return p.Visible || OwnedBy(p, userID)
}

// LikedBy reports whether userID is among the post's likes.
func (p *Post) LikedBy(userID int64) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
