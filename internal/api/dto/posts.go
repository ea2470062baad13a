package dto

import (
	"strconv"
	"time"

	"github.com/inkpost/inkpost-server/internal/domain"
)

// TagInput names a tag to attach to a post. Read-only fields echoed back from
// a detail response, owner included, are ignored.
type TagInput struct {
	_    struct{} `json:"-" additionalProperties:"true"`
	Name string   `json:"name" doc:"Tag name, created for the caller when new"`
}

// SectionInput describes a section to attach to a post. Unknown fields are
// ignored as for TagInput.
type SectionInput struct {
	_           struct{} `json:"-" additionalProperties:"true"`
	Header      string   `json:"header" doc:"Section header"`
	Description *string  `json:"description,omitempty" doc:"Section description"`
}

// PostRequest is the body of create, replace and partial update.
// Owner fields in the payload are ignored.
type PostRequest struct {
	_        struct{}        `json:"-" additionalProperties:"true"`
	Title    *string         `json:"title,omitempty" doc:"Post title, required on create and replace"`
	Detail   *string         `json:"detail,omitempty" doc:"Post body"`
	Featured *bool           `json:"featured,omitempty" doc:"Whether the post is featured"`
	Visible  *bool           `json:"visible,omitempty" doc:"Whether non-owners can read the post"`
	Tags     *[]TagInput     `json:"tags,omitempty" doc:"Desired tag set; omit to keep, empty to clear"`
	Sections *[]SectionInput `json:"sections,omitempty" doc:"Desired section set; omit to keep, empty to clear"`
}

// Tag is a tag as returned by the API.
type Tag struct {
	ID        int64     `json:"id" doc:"Tag ID"`
	OwnerID   int64     `json:"owner_id" doc:"Owning user"`
	Name      string    `json:"name" doc:"Tag name"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

// Section is a section as returned by the API.
type Section struct {
	ID            int64     `json:"id" doc:"Section ID"`
	OwnerID       int64     `json:"owner_id" doc:"Owning user"`
	Header        string    `json:"header" doc:"Section header"`
	Description   *string   `json:"description,omitempty" doc:"Section description"`
	ImageURL      string    `json:"image_url,omitempty" doc:"URL of the section image"`
	ImageBlurHash string    `json:"image_blurhash,omitempty" doc:"BlurHash placeholder for the image"`
	CreatedAt     time.Time `json:"created_at" doc:"Creation time"`
}

// PostDetail is the full representation of a single post.
type PostDetail struct {
	ID         int64     `json:"id" doc:"Post ID"`
	OwnerID    int64     `json:"owner_id" doc:"Owning user"`
	Title      string    `json:"title" doc:"Post title"`
	Detail     *string   `json:"detail,omitempty" doc:"Post body"`
	Featured   bool      `json:"featured" doc:"Whether the post is featured"`
	VisitCount int64     `json:"visit_count" doc:"Reads by users other than the owner"`
	Visible    bool      `json:"visible" doc:"Whether non-owners can read the post"`
	CreatedAt  time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt  time.Time `json:"updated_at" doc:"Last modification time"`
	Tags       []Tag     `json:"tags" doc:"Attached tags"`
	Sections   []Section `json:"sections" doc:"Attached sections"`
	Likes      []int64   `json:"likes" doc:"IDs of users who like the post"`
	LikedByMe  bool      `json:"liked_by_me" doc:"Whether the caller likes the post"`
}

// PostSummary is a post in a list.
type PostSummary struct {
	ID         int64     `json:"id" doc:"Post ID"`
	OwnerID    int64     `json:"owner_id" doc:"Owning user"`
	Title      string    `json:"title" doc:"Post title"`
	Detail     *string   `json:"detail,omitempty" doc:"Post body"`
	Featured   bool      `json:"featured" doc:"Whether the post is featured"`
	VisitCount int64     `json:"visit_count" doc:"Reads by users other than the owner"`
	Visible    bool      `json:"visible" doc:"Whether non-owners can read the post"`
	CreatedAt  time.Time `json:"created_at" doc:"Creation time"`
	Tags       []Tag     `json:"tags" doc:"Attached tags"`
	LikeCount  int       `json:"like_count" doc:"Number of likes"`
}

// LikeResponse reports a post's like state after a toggle.
type LikeResponse struct {
	ID    int64 `json:"id" doc:"Post ID"`
	Liked bool  `json:"liked" doc:"Whether the caller now likes the post"`
	Likes int   `json:"likes" doc:"Total likes"`
}

// NewTag converts a domain tag.
func NewTag(t *domain.Tag) Tag {
	return Tag{ID: t.ID, OwnerID: t.OwnerID, Name: t.Name, CreatedAt: t.CreatedAt}
}

// NewTags converts tags, returning an empty slice for none.
func NewTags(tags []*domain.Tag) []Tag {
	out := make([]Tag, 0, len(tags))
	for _, t := range tags {
		out = append(out, NewTag(t))
	}
	return out
}

// SectionImageURL is where a section's image is served.
func SectionImageURL(sectionID int64) string {
	return "/api/v1/sections/" + strconv.FormatInt(sectionID, 10) + "/image"
}

// NewSection converts a domain section.
func NewSection(s *domain.Section) Section {
	out := Section{
		ID:            s.ID,
		OwnerID:       s.OwnerID,
		Header:        s.Header,
		Description:   s.Description,
		ImageBlurHash: s.ImageBlurHash,
		CreatedAt:     s.CreatedAt,
	}
	if s.Image != "" {
		out.ImageURL = SectionImageURL(s.ID)
	}
	return out
}

// NewSections converts sections, returning an empty slice for none.
func NewSections(sections []*domain.Section) []Section {
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		out = append(out, NewSection(s))
	}
	return out
}

// NewPostDetail converts a post whose tags, sections and likes are loaded,
// as seen by viewerID (0 for anonymous).
func NewPostDetail(p *domain.Post, viewerID int64) PostDetail {
	likes := p.Likes
	if likes == nil {
		likes = []int64{}
	}
	return PostDetail{
		ID:         p.ID,
		OwnerID:    p.OwnerID,
		Title:      p.Title,
		Detail:     p.Detail,
		Featured:   p.Featured,
		VisitCount: p.VisitCount,
		Visible:    p.Visible,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
		Tags:       NewTags(p.Tags),
		Sections:   NewSections(p.Sections),
		Likes:      likes,
		LikedByMe:  p.LikedBy(viewerID),
	}
}

// NewPostSummary converts a listed post.
func NewPostSummary(p *domain.Post, likeCount int) PostSummary {
	return PostSummary{
		ID:         p.ID,
		OwnerID:    p.OwnerID,
		Title:      p.Title,
		Detail:     p.Detail,
		Featured:   p.Featured,
		VisitCount: p.VisitCount,
		Visible:    p.Visible,
		CreatedAt:  p.CreatedAt,
		Tags:       NewTags(p.Tags),
		LikeCount:  likeCount,
	}
}
