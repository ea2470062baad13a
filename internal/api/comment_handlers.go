package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkpost/inkpost-server/internal/api/dto"
	"github.com/inkpost/inkpost-server/internal/service"
)

func (s *Server) registerCommentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listComments",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/{id}/comments",
		Summary:     "List comments",
		Description: "Returns a readable post's comments, oldest first",
		Tags:        []string{"Comments"},
	}, s.handleListComments)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createComment",
		Method:        http.MethodPost,
		Path:          "/api/v1/posts/{id}/comments",
		Summary:       "Create comment",
		Description:   "Comments on a readable post",
		Tags:          []string{"Comments"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateComment",
		Method:      http.MethodPatch,
		Path:        "/api/v1/posts/{id}/comments/{commentID}",
		Summary:     "Edit comment",
		Description: "Changes the body of the caller's comment",
		Tags:        []string{"Comments"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateComment)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteComment",
		Method:        http.MethodDelete,
		Path:          "/api/v1/posts/{id}/comments/{commentID}",
		Summary:       "Delete comment",
		Description:   "Deletes the caller's comment and its replies",
		Tags:          []string{"Comments"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteComment)
}

func (s *Server) registerReplyRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listReplies",
		Method:      http.MethodGet,
		Path:        "/api/v1/comments/{commentID}/replies",
		Summary:     "List replies",
		Description: "Returns a comment's replies, oldest first",
		Tags:        []string{"Replies"},
	}, s.handleListReplies)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createReply",
		Method:        http.MethodPost,
		Path:          "/api/v1/comments/{commentID}/replies",
		Summary:       "Create reply",
		Description:   "Replies to a comment on a readable post",
		Tags:          []string{"Replies"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateReply)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateReply",
		Method:      http.MethodPatch,
		Path:        "/api/v1/comments/{commentID}/replies/{id}",
		Summary:     "Edit reply",
		Description: "Changes the body of the caller's reply",
		Tags:        []string{"Replies"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateReply)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteReply",
		Method:        http.MethodDelete,
		Path:          "/api/v1/comments/{commentID}/replies/{id}",
		Summary:       "Delete reply",
		Description:   "Deletes the caller's reply",
		Tags:          []string{"Replies"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteReply)
}

// CommentsInput addresses a post's comment list.
type CommentsInput struct {
	Authorization string `header:"Authorization"`
	PostID        int64  `path:"id" doc:"Post ID"`
}

// CreateCommentInput wraps a new comment for huma.
type CreateCommentInput struct {
	Authorization string `header:"Authorization"`
	PostID        int64  `path:"id" doc:"Post ID"`
	Body          dto.CommentRequest
}

// CommentInput addresses a single comment.
type CommentInput struct {
	Authorization string `header:"Authorization"`
	PostID        int64  `path:"id" doc:"Post ID"`
	CommentID     int64  `path:"commentID" doc:"Comment ID"`
}

// UpdateCommentInput wraps a comment edit for huma.
type UpdateCommentInput struct {
	Authorization string `header:"Authorization"`
	PostID        int64  `path:"id" doc:"Post ID"`
	CommentID     int64  `path:"commentID" doc:"Comment ID"`
	Body          dto.CommentRequest
}

// CommentListOutput wraps a comment list for huma.
type CommentListOutput struct {
	Body []dto.Comment
}

// CommentOutput wraps a comment for huma.
type CommentOutput struct {
	Body dto.Comment
}

func (s *Server) handleListComments(ctx context.Context, input *CommentsInput) (*CommentListOutput, error) {
	viewerID, err := s.optionalUser(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	comments, err := s.services.Comments.List(ctx, viewerID, input.PostID)
	if err != nil {
		return nil, err
	}
	return &CommentListOutput{Body: dto.NewComments(comments)}, nil
}

func (s *Server) handleCreateComment(ctx context.Context, input *CreateCommentInput) (*CommentOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	comment, err := s.services.Comments.Create(ctx, userID, input.PostID, service.CommentRequest{Body: input.Body.Body})
	if err != nil {
		return nil, err
	}
	return &CommentOutput{Body: dto.NewComment(comment)}, nil
}

func (s *Server) handleUpdateComment(ctx context.Context, input *UpdateCommentInput) (*CommentOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	comment, err := s.services.Comments.Update(ctx, userID, input.PostID, input.CommentID, service.CommentRequest{Body: input.Body.Body})
	if err != nil {
		return nil, err
	}
	return &CommentOutput{Body: dto.NewComment(comment)}, nil
}

func (s *Server) handleDeleteComment(ctx context.Context, input *CommentInput) (*struct{}, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Comments.Delete(ctx, userID, input.PostID, input.CommentID); err != nil {
		return nil, err
	}
	return nil, nil
}

// RepliesInput addresses a comment's reply list.
type RepliesInput struct {
	Authorization string `header:"Authorization"`
	CommentID     int64  `path:"commentID" doc:"Comment ID"`
}

// CreateReplyInput wraps a new reply for huma.
type CreateReplyInput struct {
	Authorization string `header:"Authorization"`
	CommentID     int64  `path:"commentID" doc:"Comment ID"`
	Body          dto.CommentRequest
}

// ReplyInput addresses a single reply.
type ReplyInput struct {
	Authorization string `header:"Authorization"`
	CommentID     int64  `path:"commentID" doc:"Comment ID"`
	ID            int64  `path:"id" doc:"Reply ID"`
}

// UpdateReplyInput wraps a reply edit for huma.
type UpdateReplyInput struct {
	Authorization string `header:"Authorization"`
	CommentID     int64  `path:"commentID" doc:"Comment ID"`
	ID            int64  `path:"id" doc:"Reply ID"`
	Body          dto.CommentRequest
}

// ReplyListOutput wraps a reply list for huma.
type ReplyListOutput struct {
	Body []dto.Reply
}

// ReplyOutput wraps a reply for huma.
type ReplyOutput struct {
	Body dto.Reply
}

func (s *Server) handleListReplies(ctx context.Context, input *RepliesInput) (*ReplyListOutput, error) {
	viewerID, err := s.optionalUser(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	replies, err := s.services.Replies.List(ctx, viewerID, input.CommentID)
	if err != nil {
		return nil, err
	}
	return &ReplyListOutput{Body: dto.NewReplies(replies)}, nil
}

func (s *Server) handleCreateReply(ctx context.Context, input *CreateReplyInput) (*ReplyOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	reply, err := s.services.Replies.Create(ctx, userID, input.CommentID, service.CommentRequest{Body: input.Body.Body})
	if err != nil {
		return nil, err
	}
	return &ReplyOutput{Body: dto.NewReply(reply)}, nil
}

func (s *Server) handleUpdateReply(ctx context.Context, input *UpdateReplyInput) (*ReplyOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	reply, err := s.services.Replies.Update(ctx, userID, input.CommentID, input.ID, service.CommentRequest{Body: input.Body.Body})
	if err != nil {
		return nil, err
	}
	return &ReplyOutput{Body: dto.NewReply(reply)}, nil
}

func (s *Server) handleDeleteReply(ctx context.Context, input *ReplyInput) (*struct{}, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Replies.Delete(ctx, userID, input.CommentID, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
