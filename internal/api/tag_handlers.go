package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkpost/inkpost-server/internal/api/dto"
	domainerrors "github.com/inkpost/inkpost-server/internal/errors"
	"github.com/inkpost/inkpost-server/internal/service"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns the caller's tags, optionally only those attached to a post",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "replaceTag",
		Method:      http.MethodPut,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Replace tag",
		Description: "Renames a tag. The name is required.",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReplaceTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateTag",
		Method:      http.MethodPatch,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Update tag",
		Description: "Renames a tag if a name is given",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateTag)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteTag",
		Method:        http.MethodDelete,
		Path:          "/api/v1/tags/{id}",
		Summary:       "Delete tag",
		Description:   "Deletes a tag; posts keep existing without it",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteTag)
}

// ListCatalogInput lists an owner-scoped catalog (tags or sections).
type ListCatalogInput struct {
	Authorization string `header:"Authorization"`
	AssignedOnly  int    `query:"assigned_only" minimum:"0" maximum:"1" default:"0" doc:"1 returns only entries attached to at least one post"`
}

// TagInput addresses a single tag.
type TagInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Tag ID"`
}

// TagRequest is the body of a tag update.
type TagRequest struct {
	_    struct{} `json:"-" additionalProperties:"true"`
	Name *string  `json:"name,omitempty" doc:"New tag name"`
}

// UpdateTagInput wraps a tag update for huma.
type UpdateTagInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Tag ID"`
	Body          TagRequest
}

// TagListOutput wraps a tag list for huma.
type TagListOutput struct {
	Body []dto.Tag
}

// TagOutput wraps a tag for huma.
type TagOutput struct {
	Body dto.Tag
}

func (s *Server) handleListTags(ctx context.Context, input *ListCatalogInput) (*TagListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	tags, err := s.services.Tags.List(ctx, userID, input.AssignedOnly == 1)
	if err != nil {
		return nil, err
	}
	return &TagListOutput{Body: dto.NewTags(tags)}, nil
}

func (s *Server) handleReplaceTag(ctx context.Context, input *UpdateTagInput) (*TagOutput, error) {
	return s.updateTag(ctx, input, true)
}

func (s *Server) handleUpdateTag(ctx context.Context, input *UpdateTagInput) (*TagOutput, error) {
	return s.updateTag(ctx, input, false)
}

func (s *Server) updateTag(ctx context.Context, input *UpdateTagInput, replace bool) (*TagOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}
	if replace && input.Body.Name == nil {
		return nil, requiredField("name")
	}

	tag, err := s.services.Tags.Update(ctx, userID, input.ID, service.UpdateTagRequest{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: dto.NewTag(tag)}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *TagInput) (*struct{}, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Tags.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

// requiredField is the error for a field that replace (PUT) needs.
func requiredField(field string) error {
	return domainerrors.ValidationWithDetails("validation failed: "+field, map[string]string{field: "is required"})
}
