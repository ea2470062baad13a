package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inkpost/inkpost-server/internal/domain"
	"github.com/inkpost/inkpost-server/internal/store"
	"github.com/inkpost/inkpost-server/internal/validation"
)

// TagService manages the caller's tags. Tags are created only through post
// reconciliation, never directly.
type TagService struct {
	store     store.Store
	search    *SearchService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store store.Store, search *SearchService, validator *validation.Validator, logger *slog.Logger) *TagService {
	return &TagService{
		store:     store,
		search:    search,
		validator: validator,
		logger:    logger,
	}
}

// UpdateTagRequest renames a tag.
type UpdateTagRequest struct {
	Name *string `json:"name,omitempty" validate:"omitnil,notblank,max=255"`
}

// List returns the user's tags, name descending. With assignedOnly set only
// tags attached to at least one post are returned.
func (s *TagService) List(ctx context.Context, userID int64, assignedOnly bool) ([]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx, store.AttributeFilter{OwnerID: userID, AssignedOnly: assignedOnly})
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// Update renames a tag owned by userID.
func (s *TagService) Update(ctx context.Context, userID, tagID int64, req UpdateTagRequest) (tag *domain.Tag, err error) {
	ctx, span := startSpan(ctx, "TagService.Update", userID)
	defer func() { endSpan(span, err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	t, err := s.store.GetTag(ctx, tagID)
	if tag, err = requireOwner(t, err, userID, "tag"); err != nil {
		return nil, err
	}
	if req.Name == nil {
		return tag, nil
	}

	tag.Name = *req.Name
	if err := s.store.UpdateTag(ctx, tag); err != nil {
		return nil, notFoundOr(err, "tag")
	}

	s.search.ReindexPosts(ctx, s.postsWithTag(ctx, tagID))
	s.logger.Info("tag updated", "tag_id", tagID, "owner_id", userID)
	return tag, nil
}

// Delete removes a tag owned by userID. Posts keep existing without it.
func (s *TagService) Delete(ctx context.Context, userID, tagID int64) (err error) {
	ctx, span := startSpan(ctx, "TagService.Delete", userID)
	defer func() { endSpan(span, err) }()

	t, err := s.store.GetTag(ctx, tagID)
	if _, err := requireOwner(t, err, userID, "tag"); err != nil {
		return err
	}

	affected := s.postsWithTag(ctx, tagID)
	if err := s.store.DeleteTag(ctx, tagID); err != nil {
		return notFoundOr(err, "tag")
	}

	s.search.ReindexPosts(ctx, affected)
	s.logger.Info("tag deleted", "tag_id", tagID, "owner_id", userID, "posts", len(affected))
	return nil
}

func (s *TagService) postsWithTag(ctx context.Context, tagID int64) []int64 {
	if !s.search.Enabled() {
		return nil
	}
	posts, err := s.store.ListPosts(ctx, store.PostFilter{TagIDs: []int64{tagID}})
	if err != nil {
		s.logger.Warn("failed to list posts for tag", "tag_id", tagID, "error", err)
		return nil
	}
	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}
