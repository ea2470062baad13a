package domain

import "time"

// Comment belongs to a post.
type Comment struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	PostID    int64     `json:"post_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Owner implements Owned.
func (c *Comment) Owner() int64 { return c.OwnerID }

// Reply belongs to a comment.
type Reply struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	CommentID int64     `json:"comment_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Owner implements Owned.
func (r *Reply) Owner() int64 { return r.OwnerID }
