package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkpost/inkpost-server/internal/api/dto"
	domainerrors "github.com/inkpost/inkpost-server/internal/errors"
	"github.com/inkpost/inkpost-server/internal/id"
	"github.com/inkpost/inkpost-server/internal/service"
)

func (s *Server) registerPostRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPosts",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts",
		Summary:     "List posts",
		Description: "Anonymous callers see every visible post; signed-in callers see their own posts, hidden ones included",
		Tags:        []string{"Posts"},
	}, s.handleListPosts)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createPost",
		Method:        http.MethodPost,
		Path:          "/api/v1/posts",
		Summary:       "Create post",
		Description:   "Creates a post owned by the caller, attaching the given tags and sections",
		Tags:          []string{"Posts"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreatePost)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPost",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/{id}",
		Summary:     "Get post",
		Description: "Returns a post with tags, sections and likes. Reads by non-owners count as visits.",
		Tags:        []string{"Posts"},
	}, s.handleGetPost)

	huma.Register(s.api, huma.Operation{
		OperationID: "replacePost",
		Method:      http.MethodPut,
		Path:        "/api/v1/posts/{id}",
		Summary:     "Replace post",
		Description: "Replaces a post's fields. Title is required; omitted tags or sections are kept.",
		Tags:        []string{"Posts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReplacePost)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePost",
		Method:      http.MethodPatch,
		Path:        "/api/v1/posts/{id}",
		Summary:     "Update post",
		Description: "Changes only the fields present in the body",
		Tags:        []string{"Posts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdatePost)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deletePost",
		Method:        http.MethodDelete,
		Path:          "/api/v1/posts/{id}",
		Summary:       "Delete post",
		Description:   "Deletes a post with its comments, replies and likes",
		Tags:          []string{"Posts"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleDeletePost)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleLike",
		Method:      http.MethodPost,
		Path:        "/api/v1/posts/{id}/like-post",
		Summary:     "Toggle like",
		Description: "Likes the post, or removes the caller's like if present",
		Tags:        []string{"Posts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleLike)
}

// ListPostsInput holds the list filters.
type ListPostsInput struct {
	Authorization string `header:"Authorization"`
	Tags          string `query:"tags" doc:"Comma-separated tag IDs; a post matches if it has any of them"`
	Sections      string `query:"sections" doc:"Comma-separated section IDs; a post matches if it has any of them"`
	Search        string `query:"search" doc:"Full-text query over title, detail, tags and sections"`
}

// PostInput addresses a single post.
type PostInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Post ID"`
}

// CreatePostInput wraps the create request for huma.
type CreatePostInput struct {
	Authorization string `header:"Authorization"`
	Body          dto.PostRequest
}

// UpdatePostInput wraps replace and partial update requests for huma.
type UpdatePostInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Post ID"`
	Body          dto.PostRequest
}

// PostListOutput wraps a post list for huma.
type PostListOutput struct {
	Body []dto.PostSummary
}

// PostOutput wraps a post detail for huma.
type PostOutput struct {
	Body dto.PostDetail
}

// LikeOutput wraps a like toggle result for huma.
type LikeOutput struct {
	Body dto.LikeResponse
}

func (s *Server) handleListPosts(ctx context.Context, input *ListPostsInput) (*PostListOutput, error) {
	viewerID, err := s.optionalUser(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	tagIDs, err := id.ParseList(input.Tags)
	if err != nil {
		return nil, domainerrors.ValidationWithDetails("invalid filter", map[string]string{"tags": err.Error()})
	}
	sectionIDs, err := id.ParseList(input.Sections)
	if err != nil {
		return nil, domainerrors.ValidationWithDetails("invalid filter", map[string]string{"sections": err.Error()})
	}

	summaries, err := s.services.Posts.List(ctx, viewerID, service.ListPostsQuery{
		TagIDs:     tagIDs,
		SectionIDs: sectionIDs,
		Search:     input.Search,
	})
	if err != nil {
		return nil, err
	}

	out := make([]dto.PostSummary, 0, len(summaries))
	for _, sum := range summaries {
		out = append(out, dto.NewPostSummary(sum.Post, sum.LikeCount))
	}
	return &PostListOutput{Body: out}, nil
}

func (s *Server) handleCreatePost(ctx context.Context, input *CreatePostInput) (*PostOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	body := input.Body
	req := service.CreatePostRequest{
		Detail:   body.Detail,
		Featured: body.Featured,
		Visible:  body.Visible,
		Tags:     tagInputs(body.Tags),
		Sections: sectionInputs(body.Sections),
	}
	if body.Title != nil {
		req.Title = *body.Title
	}

	post, err := s.services.Posts.Create(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: dto.NewPostDetail(post, userID)}, nil
}

func (s *Server) handleGetPost(ctx context.Context, input *PostInput) (*PostOutput, error) {
	viewerID, err := s.optionalUser(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	post, err := s.services.Posts.Get(ctx, viewerID, input.ID)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: dto.NewPostDetail(post, viewerID)}, nil
}

func (s *Server) handleReplacePost(ctx context.Context, input *UpdatePostInput) (*PostOutput, error) {
	return s.updatePost(ctx, input, true)
}

func (s *Server) handleUpdatePost(ctx context.Context, input *UpdatePostInput) (*PostOutput, error) {
	return s.updatePost(ctx, input, false)
}

func (s *Server) updatePost(ctx context.Context, input *UpdatePostInput, replace bool) (*PostOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	body := input.Body
	post, err := s.services.Posts.Update(ctx, userID, input.ID, service.UpdatePostRequest{
		Title:    body.Title,
		Detail:   body.Detail,
		Featured: body.Featured,
		Visible:  body.Visible,
		Tags:     tagInputs(body.Tags),
		Sections: sectionInputs(body.Sections),
	}, replace)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: dto.NewPostDetail(post, userID)}, nil
}

func (s *Server) handleDeletePost(ctx context.Context, input *PostInput) (*struct{}, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Posts.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleToggleLike(ctx context.Context, input *PostInput) (*LikeOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Posts.ToggleLike(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &LikeOutput{Body: dto.LikeResponse{ID: result.PostID, Liked: result.Liked, Likes: result.Likes}}, nil
}

// tagInputs keeps the difference between an omitted list (nil) and an
// empty one.
func tagInputs(in *[]dto.TagInput) *[]service.TagInput {
	if in == nil {
		return nil
	}
	out := make([]service.TagInput, len(*in))
	for i, t := range *in {
		out[i] = service.TagInput{Name: t.Name}
	}
	return &out
}

func sectionInputs(in *[]dto.SectionInput) *[]service.SectionInput {
	if in == nil {
		return nil
	}
	out := make([]service.SectionInput, len(*in))
	for i, sec := range *in {
		out[i] = service.SectionInput{Header: sec.Header, Description: sec.Description}
	}
	return &out
}
