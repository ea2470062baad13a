package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inkpost/inkpost-server/internal/domain"
	domainerrors "github.com/inkpost/inkpost-server/internal/errors"
	"github.com/inkpost/inkpost-server/internal/metrics"
	"github.com/inkpost/inkpost-server/internal/search"
	"github.com/inkpost/inkpost-server/internal/store"
	"github.com/inkpost/inkpost-server/internal/validation"
)

// PostService manages posts, their tag and section sets, and likes.
type PostService struct {
	store     store.Store
	search    *SearchService
	metrics   *metrics.Metrics
	validator *validation.Validator
	logger    *slog.Logger
}

// NewPostService creates a new post service. search and metrics may be nil.
func NewPostService(
	store store.Store,
	search *SearchService,
	metrics *metrics.Metrics,
	validator *validation.Validator,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		store:     store,
		search:    search,
		metrics:   metrics,
		validator: validator,
		logger:    logger,
	}
}

// CreatePostRequest contains the fields of a new post. Nil Tags or Sections
// leave the post without any; owner and counters are assigned by the server.
type CreatePostRequest struct {
	Title    string          `json:"title" validate:"required,notblank,max=255"`
	Detail   *string         `json:"detail,omitempty" validate:"omitnil,max=2000"`
	Featured *bool           `json:"featured,omitempty"`
	Visible  *bool           `json:"visible,omitempty"`
	Tags     *[]TagInput     `json:"tags,omitempty" validate:"omitnil,dive"`
	Sections *[]SectionInput `json:"sections,omitempty" validate:"omitnil,dive"`
}

// UpdatePostRequest changes a post. Nil fields are left alone; a non-nil
// empty Tags or Sections clears that set.
type UpdatePostRequest struct {
	Title    *string         `json:"title,omitempty" validate:"omitnil,notblank,max=255"`
	Detail   *string         `json:"detail,omitempty" validate:"omitnil,max=2000"`
	Featured *bool           `json:"featured,omitempty"`
	Visible  *bool           `json:"visible,omitempty"`
	Tags     *[]TagInput     `json:"tags,omitempty" validate:"omitnil,dive"`
	Sections *[]SectionInput `json:"sections,omitempty" validate:"omitnil,dive"`
}

// ListPostsQuery narrows List. Empty fields apply no restriction.
type ListPostsQuery struct {
	TagIDs     []int64
	SectionIDs []int64
	Search     string
}

// PostSummary is a post in a list: its tags and like count, without sections.
type PostSummary struct {
	Post      *domain.Post
	LikeCount int
}

// LikeResult is the state of a post's likes after a toggle.
type LikeResult struct {
	PostID int64 `json:"id"`
	Liked  bool  `json:"liked"`
	Likes  int   `json:"likes"`
}

// List returns posts newest first. Anonymous callers (viewerID 0) see every
// visible post; signed-in callers see their own posts, hidden ones included.
func (s *PostService) List(ctx context.Context, viewerID int64, q ListPostsQuery) (summaries []*PostSummary, err error) {
	ctx, span := startSpan(ctx, "PostService.List", viewerID)
	defer func() { endSpan(span, err) }()

	filter := store.PostFilter{TagIDs: q.TagIDs, SectionIDs: q.SectionIDs}
	if viewerID == 0 {
		filter.VisibleOnly = true
	} else {
		filter.OwnerID = viewerID
	}

	if q.Search != "" {
		if !s.search.Enabled() {
			return nil, domainerrors.Validation("full-text search is disabled on this server")
		}
		ids, err := s.search.Search(ctx, search.SearchParams{
			Query:       q.Search,
			OwnerID:     filter.OwnerID,
			VisibleOnly: filter.VisibleOnly,
		})
		if err != nil {
			return nil, fmt.Errorf("search posts: %w", err)
		}
		filter.IDs = ids
	}

	posts, err := s.store.ListPosts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	tags, err := s.store.GetTagsForPosts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	likes, err := s.store.CountLikesForPosts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}

	summaries = make([]*PostSummary, len(posts))
	for i, p := range posts {
		p.Tags = tags[p.ID]
		if p.Tags == nil {
			p.Tags = []*domain.Tag{}
		}
		summaries[i] = &PostSummary{Post: p, LikeCount: likes[p.ID]}
	}
	return summaries, nil
}

// Get returns a post with its tags, sections and likes. A read by anyone but
// the owner counts as a visit.
func (s *PostService) Get(ctx context.Context, viewerID, postID int64) (post *domain.Post, err error) {
	ctx, span := startSpan(ctx, "PostService.Get", viewerID)
	defer func() { endSpan(span, err) }()

	post, err = s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, notFoundOr(err, "post")
	}
	if !post.VisibleTo(viewerID) {
		return nil, domainerrors.NotFound("post not found")
	}

	if !domain.OwnedBy(post, viewerID) {
		count, err := s.store.IncrementPostVisits(ctx, postID)
		if err != nil {
			return nil, notFoundOr(err, "post")
		}
		post.VisitCount = count
	}

	if err := s.loadDetail(ctx, s.store, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Create creates a post owned by userID and attaches the requested tags and
// sections, creating any the user does not have yet.
func (s *PostService) Create(ctx context.Context, userID int64, req CreatePostRequest) (post *domain.Post, err error) {
	ctx, span := startSpan(ctx, "PostService.Create", userID)
	defer func() { endSpan(span, err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	post = &domain.Post{
		OwnerID:  userID,
		Title:    req.Title,
		Detail:   req.Detail,
		Featured: req.Featured != nil && *req.Featured,
		Visible:  req.Visible == nil || *req.Visible,
	}

	err = s.store.RunInTx(ctx, func(tx store.Store) error {
		if err := tx.CreatePost(ctx, post); err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		r := s.reconciler(tx, userID)
		if req.Tags != nil {
			if _, err := r.tags(ctx, post.ID, *req.Tags); err != nil {
				return err
			}
		}
		if req.Sections != nil {
			if _, err := r.sections(ctx, post.ID, *req.Sections); err != nil {
				return err
			}
		}
		return s.loadDetail(ctx, tx, post)
	})
	if err != nil {
		return nil, err
	}

	s.search.IndexPost(post)
	s.metrics.PostCreated()
	s.logger.Info("post created",
		"post_id", post.ID,
		"owner_id", userID,
		"tags", len(post.Tags),
		"sections", len(post.Sections),
	)
	return post, nil
}

// Update changes a post owned by userID. With replace set (PUT) the title is
// mandatory; otherwise (PATCH) every field is optional. Tags are reconciled
// first, then sections, then scalar fields, all in one transaction.
func (s *PostService) Update(ctx context.Context, userID, postID int64, req UpdatePostRequest, replace bool) (post *domain.Post, err error) {
	ctx, span := startSpan(ctx, "PostService.Update", userID)
	defer func() { endSpan(span, err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if replace && req.Title == nil {
		return nil, domainerrors.ValidationWithDetails("validation failed: title", map[string]string{"title": "is required"})
	}

	err = s.store.RunInTx(ctx, func(tx store.Store) error {
		p, err := tx.GetPost(ctx, postID)
		if post, err = requireOwner(p, err, userID, "post"); err != nil {
			return err
		}

		r := s.reconciler(tx, userID)
		if req.Tags != nil {
			if _, err := r.tags(ctx, post.ID, *req.Tags); err != nil {
				return err
			}
		}
		if req.Sections != nil {
			if _, err := r.sections(ctx, post.ID, *req.Sections); err != nil {
				return err
			}
		}

		if req.Title != nil {
			post.Title = *req.Title
		}
		if req.Detail != nil {
			post.Detail = req.Detail
		}
		if req.Featured != nil {
			post.Featured = *req.Featured
		}
		if req.Visible != nil {
			post.Visible = *req.Visible
		}
		if err := tx.UpdatePost(ctx, post); err != nil {
			return fmt.Errorf("update post: %w", err)
		}

		return s.loadDetail(ctx, tx, post)
	})
	if err != nil {
		return nil, err
	}

	s.search.IndexPost(post)
	s.logger.Info("post updated",
		"post_id", post.ID,
		"owner_id", userID,
		"replace", replace,
		"tags_changed", req.Tags != nil,
		"sections_changed", req.Sections != nil,
	)
	return post, nil
}

// Delete removes a post owned by userID along with its comments and replies.
func (s *PostService) Delete(ctx context.Context, userID, postID int64) (err error) {
	ctx, span := startSpan(ctx, "PostService.Delete", userID)
	defer func() { endSpan(span, err) }()

	err = s.store.RunInTx(ctx, func(tx store.Store) error {
		p, err := tx.GetPost(ctx, postID)
		if _, err := requireOwner(p, err, userID, "post"); err != nil {
			return err
		}
		if err := tx.DeletePost(ctx, postID); err != nil {
			return notFoundOr(err, "post")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.search.RemovePost(postID)
	s.logger.Info("post deleted", "post_id", postID, "owner_id", userID)
	return nil
}

// ToggleLike likes the post for userID, or removes the like when one exists.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID int64) (result *LikeResult, err error) {
	ctx, span := startSpan(ctx, "PostService.ToggleLike", userID)
	defer func() { endSpan(span, err) }()

	result = &LikeResult{PostID: postID}
	err = s.store.RunInTx(ctx, func(tx store.Store) error {
		post, err := tx.GetPost(ctx, postID)
		if err != nil {
			return notFoundOr(err, "post")
		}
		if !post.VisibleTo(userID) {
			return domainerrors.NotFound("post not found")
		}

		liked, err := tx.HasLiked(ctx, postID, userID)
		if err != nil {
			return fmt.Errorf("check like: %w", err)
		}
		if liked {
			err = tx.RemoveLike(ctx, postID, userID)
		} else {
			err = tx.AddLike(ctx, postID, userID)
		}
		if err != nil {
			return fmt.Errorf("toggle like: %w", err)
		}
		result.Liked = !liked

		likes, err := tx.GetPostLikes(ctx, postID)
		if err != nil {
			return fmt.Errorf("load likes: %w", err)
		}
		result.Likes = len(likes)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.LikeToggled(result.Liked)
	s.logger.Info("post like toggled", "post_id", postID, "user_id", userID, "liked", result.Liked)
	return result, nil
}

func (s *PostService) reconciler(tx store.Store, ownerID int64) *reconciler {
	return &reconciler{tx: tx, ownerID: ownerID, metrics: s.metrics, logger: s.logger}
}

// loadDetail fills tags, sections and likes from st.
func (s *PostService) loadDetail(ctx context.Context, st store.Store, post *domain.Post) error {
	if err := loadAttributes(ctx, st, post); err != nil {
		return err
	}
	likes, err := st.GetPostLikes(ctx, post.ID)
	if err != nil {
		return fmt.Errorf("load likes: %w", err)
	}
	post.Likes = likes
	return nil
}
