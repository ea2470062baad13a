// Package store defines the persistence interface for the Inkpost server.
//
// The store is plain persistence: it assigns IDs and timestamps and keeps
// referential integrity, but performs no ownership checks. Those live in the
// service layer.
package store

import (
	"context"

	"github.com/inkpost/inkpost-server/internal/domain"
)

// Store defines every persistence operation.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// RunInTx runs fn against a store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	// Calling RunInTx on a transaction-bound store reuses that transaction.
	RunInTx(ctx context.Context, fn func(tx Store) error) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error

	// Posts
	CreatePost(ctx context.Context, post *domain.Post) error
	GetPost(ctx context.Context, id int64) (*domain.Post, error)
	ListPosts(ctx context.Context, filter PostFilter) ([]*domain.Post, error)
	UpdatePost(ctx context.Context, post *domain.Post) error
	IncrementPostVisits(ctx context.Context, id int64) (int64, error)
	DeletePost(ctx context.Context, id int64) error

	// Tags
	CreateTag(ctx context.Context, tag *domain.Tag) error
	GetTag(ctx context.Context, id int64) (*domain.Tag, error)
	FindOrCreateTag(ctx context.Context, ownerID int64, name string) (*domain.Tag, bool, error)
	ListTags(ctx context.Context, filter AttributeFilter) ([]*domain.Tag, error)
	UpdateTag(ctx context.Context, tag *domain.Tag) error
	DeleteTag(ctx context.Context, id int64) error

	// Sections
	CreateSection(ctx context.Context, section *domain.Section) error
	GetSection(ctx context.Context, id int64) (*domain.Section, error)
	FindOrCreateSection(ctx context.Context, ownerID int64, header string, description *string) (*domain.Section, bool, error)
	ListSections(ctx context.Context, filter AttributeFilter) ([]*domain.Section, error)
	UpdateSection(ctx context.Context, section *domain.Section) error
	DeleteSection(ctx context.Context, id int64) error

	// Post associations
	GetPostTags(ctx context.Context, postID int64) ([]*domain.Tag, error)
	GetTagsForPosts(ctx context.Context, postIDs []int64) (map[int64][]*domain.Tag, error)
	SetPostTags(ctx context.Context, postID int64, tagIDs []int64) error
	GetPostSections(ctx context.Context, postID int64) ([]*domain.Section, error)
	SetPostSections(ctx context.Context, postID int64, sectionIDs []int64) error

	// Likes
	HasLiked(ctx context.Context, postID, userID int64) (bool, error)
	AddLike(ctx context.Context, postID, userID int64) error
	RemoveLike(ctx context.Context, postID, userID int64) error
	GetPostLikes(ctx context.Context, postID int64) ([]int64, error)
	CountLikesForPosts(ctx context.Context, postIDs []int64) (map[int64]int, error)

	// Comments
	CreateComment(ctx context.Context, comment *domain.Comment) error
	GetComment(ctx context.Context, id int64) (*domain.Comment, error)
	ListComments(ctx context.Context, postID int64) ([]*domain.Comment, error)
	UpdateComment(ctx context.Context, comment *domain.Comment) error
	DeleteComment(ctx context.Context, id int64) error

	// Replies
	CreateReply(ctx context.Context, reply *domain.Reply) error
	GetReply(ctx context.Context, id int64) (*domain.Reply, error)
	ListReplies(ctx context.Context, commentID int64) ([]*domain.Reply, error)
	UpdateReply(ctx context.Context, reply *domain.Reply) error
	DeleteReply(ctx context.Context, id int64) error
}

// PostFilter narrows ListPosts. Zero values mean "no restriction".
type PostFilter struct {
	// OwnerID restricts to one owner's posts.
	OwnerID int64
	// VisibleOnly drops hidden posts.
	VisibleOnly bool
	// TagIDs keeps posts carrying at least one of the tags.
	TagIDs []int64
	// SectionIDs keeps posts carrying at least one of the sections.
	SectionIDs []int64
	// IDs restricts to the given posts when non-nil; an empty non-nil slice
	// matches nothing.
	IDs []int64
}

// AttributeFilter narrows ListTags and ListSections.
type AttributeFilter struct {
	OwnerID int64
	// AssignedOnly keeps entries referenced by at least one post.
	AssignedOnly bool
}
