package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inkpost/inkpost-server/internal/domain"
	domainerrors "github.com/inkpost/inkpost-server/internal/errors"
	"github.com/inkpost/inkpost-server/internal/store"
	"github.com/inkpost/inkpost-server/internal/validation"
)

// CommentRequest is the body of a comment or reply.
type CommentRequest struct {
	Body string `json:"body" validate:"required,notblank,max=5000"`
}

// CommentService manages comments on posts. Comments are readable by anyone
// who can read the post; only their author may change them.
type CommentService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCommentService creates a new comment service.
func NewCommentService(store store.Store, validator *validation.Validator, logger *slog.Logger) *CommentService {
	return &CommentService{store: store, validator: validator, logger: logger}
}

// List returns the post's comments, newest first.
func (s *CommentService) List(ctx context.Context, viewerID, postID int64) ([]*domain.Comment, error) {
	if _, err := readablePost(ctx, s.store, viewerID, postID); err != nil {
		return nil, err
	}
	comments, err := s.store.ListComments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Create adds a comment by userID to a post the user can read.
func (s *CommentService) Create(ctx context.Context, userID, postID int64, req CommentRequest) (comment *domain.Comment, err error) {
	ctx, span := startSpan(ctx, "CommentService.Create", userID)
	defer func() { endSpan(span, err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := readablePost(ctx, s.store, userID, postID); err != nil {
		return nil, err
	}

	comment = &domain.Comment{OwnerID: userID, PostID: postID, Body: req.Body}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, notFoundOr(err, "post")
	}

	s.logger.Info("comment created", "comment_id", comment.ID, "post_id", postID, "owner_id", userID)
	return comment, nil
}

// Update changes the body of a comment owned by userID.
func (s *CommentService) Update(ctx context.Context, userID, postID, commentID int64, req CommentRequest) (comment *domain.Comment, err error) {
	ctx, span := startSpan(ctx, "CommentService.Update", userID)
	defer func() { endSpan(span, err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if comment, err = s.owned(ctx, userID, postID, commentID); err != nil {
		return nil, err
	}

	comment.Body = req.Body
	if err := s.store.UpdateComment(ctx, comment); err != nil {
		return nil, notFoundOr(err, "comment")
	}

	s.logger.Info("comment updated", "comment_id", commentID, "owner_id", userID)
	return comment, nil
}

// Delete removes a comment owned by userID together with its replies.
func (s *CommentService) Delete(ctx context.Context, userID, postID, commentID int64) (err error) {
	ctx, span := startSpan(ctx, "CommentService.Delete", userID)
	defer func() { endSpan(span, err) }()

	if _, err := s.owned(ctx, userID, postID, commentID); err != nil {
		return err
	}
	if err := s.store.DeleteComment(ctx, commentID); err != nil {
		return notFoundOr(err, "comment")
	}

	s.logger.Info("comment deleted", "comment_id", commentID, "owner_id", userID)
	return nil
}

// owned loads a comment that belongs to postID and is owned by userID.
func (s *CommentService) owned(ctx context.Context, userID, postID, commentID int64) (*domain.Comment, error) {
	c, err := s.store.GetComment(ctx, commentID)
	comment, err := requireOwner(c, err, userID, "comment")
	if err != nil {
		return nil, err
	}
	if comment.PostID != postID {
		return nil, domainerrors.NotFound("comment not found")
	}
	return comment, nil
}

// ReplyService manages replies to comments.
type ReplyService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewReplyService creates a new reply service.
func NewReplyService(store store.Store, validator *validation.Validator, logger *slog.Logger) *ReplyService {
	return &ReplyService{store: store, validator: validator, logger: logger}
}

// List returns the comment's replies, newest first.
func (s *ReplyService) List(ctx context.Context, viewerID, commentID int64) ([]*domain.Reply, error) {
	if _, err := readableComment(ctx, s.store, viewerID, commentID); err != nil {
		return nil, err
	}
	replies, err := s.store.ListReplies(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	return replies, nil
}

// Create adds a reply by userID to a comment on a post the user can read.
func (s *ReplyService) Create(ctx context.Context, userID, commentID int64, req CommentRequest) (reply *domain.Reply, err error) {
	ctx, span := startSpan(ctx, "ReplyService.Create", userID)
	defer func() { endSpan(span, err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := readableComment(ctx, s.store, userID, commentID); err != nil {
		return nil, err
	}

	reply = &domain.Reply{OwnerID: userID, CommentID: commentID, Body: req.Body}
	if err := s.store.CreateReply(ctx, reply); err != nil {
		return nil, notFoundOr(err, "comment")
	}

	s.logger.Info("reply created", "reply_id", reply.ID, "comment_id", commentID, "owner_id", userID)
	return reply, nil
}

// Update changes the body of a reply owned by userID.
func (s *ReplyService) Update(ctx context.Context, userID, commentID, replyID int64, req CommentRequest) (reply *domain.Reply, err error) {
	ctx, span := startSpan(ctx, "ReplyService.Update", userID)
	defer func() { endSpan(span, err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if reply, err = s.owned(ctx, userID, commentID, replyID); err != nil {
		return nil, err
	}

	reply.Body = req.Body
	if err := s.store.UpdateReply(ctx, reply); err != nil {
		return nil, notFoundOr(err, "reply")
	}

	s.logger.Info("reply updated", "reply_id", replyID, "owner_id", userID)
	return reply, nil
}

// Delete removes a reply owned by userID.
func (s *ReplyService) Delete(ctx context.Context, userID, commentID, replyID int64) (err error) {
	ctx, span := startSpan(ctx, "ReplyService.Delete", userID)
	defer func() { endSpan(span, err) }()

	if _, err := s.owned(ctx, userID, commentID, replyID); err != nil {
		return err
	}
	if err := s.store.DeleteReply(ctx, replyID); err != nil {
		return notFoundOr(err, "reply")
	}

	s.logger.Info("reply deleted", "reply_id", replyID, "owner_id", userID)
	return nil
}

func (s *ReplyService) owned(ctx context.Context, userID, commentID, replyID int64) (*domain.Reply, error) {
	r, err := s.store.GetReply(ctx, replyID)
	reply, err := requireOwner(r, err, userID, "reply")
	if err != nil {
		return nil, err
	}
	if reply.CommentID != commentID {
		return nil, domainerrors.NotFound("reply not found")
	}
	return reply, nil
}

// readablePost loads a post the viewer may read.
func readablePost(ctx context.Context, st store.Store, viewerID, postID int64) (*domain.Post, error) {
	post, err := st.GetPost(ctx, postID)
	if err != nil {
		return nil, notFoundOr(err, "post")
	}
	if !post.VisibleTo(viewerID) {
		return nil, domainerrors.NotFound("post not found")
	}
	return post, nil
}

// readableComment loads a comment whose post the viewer may read.
func readableComment(ctx context.Context, st store.Store, viewerID, commentID int64) (*domain.Comment, error) {
	comment, err := st.GetComment(ctx, commentID)
	if err != nil {
		return nil, notFoundOr(err, "comment")
	}
	if _, err := readablePost(ctx, st, viewerID, comment.PostID); err != nil {
		return nil, domainerrors.NotFound("comment not found")
	}
	return comment, nil
}
