package dto

import (
	"time"

	"github.com/inkpost/inkpost-server/internal/domain"
)

// CommentRequest is the body for creating or editing a comment or reply.
type CommentRequest struct {
	_    struct{} `json:"-" additionalProperties:"true"`
	Body string   `json:"body" doc:"Comment text (1-5000 chars)"`
}

// Comment is a comment as returned by the API.
type Comment struct {
	ID        int64     `json:"id" doc:"Comment ID"`
	OwnerID   int64     `json:"owner_id" doc:"Author"`
	PostID    int64     `json:"post_id" doc:"Post the comment belongs to"`
	Body      string    `json:"body" doc:"Comment text"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last edit time"`
}

// Reply is a reply as returned by the API.
type Reply struct {
	ID        int64     `json:"id" doc:"Reply ID"`
	OwnerID   int64     `json:"owner_id" doc:"Author"`
	CommentID int64     `json:"comment_id" doc:"Comment the reply answers"`
	Body      string    `json:"body" doc:"Reply text"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last edit time"`
}

// NewComment converts a domain comment.
func NewComment(c *domain.Comment) Comment {
	return Comment{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		PostID:    c.PostID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// NewComments converts comments, returning an empty slice for none.
func NewComments(comments []*domain.Comment) []Comment {
	out := make([]Comment, 0, len(comments))
	for _, c := range comments {
		out = append(out, NewComment(c))
	}
	return out
}

// NewReply converts a domain reply.
func NewReply(r *domain.Reply) Reply {
	return Reply{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		CommentID: r.CommentID,
		Body:      r.Body,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// NewReplies converts replies, returning an empty slice for none.
func NewReplies(replies []*domain.Reply) []Reply {
	out := make([]Reply, 0, len(replies))
	for _, r := range replies {
		out = append(out, NewReply(r))
	}
	return out
}
