package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/inkpost/inkpost-server/internal/api/dto"
	domainerrors "github.com/inkpost/inkpost-server/internal/errors"
	"github.com/inkpost/inkpost-server/internal/http/response"
	"github.com/inkpost/inkpost-server/internal/service"
)

func (s *Server) registerSectionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listSections",
		Method:      http.MethodGet,
		Path:        "/api/v1/sections",
		Summary:     "List sections",
		Description: "Returns the caller's sections, optionally only those attached to a post",
		Tags:        []string{"Sections"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListSections)

	huma.Register(s.api, huma.Operation{
		OperationID: "replaceSection",
		Method:      http.MethodPut,
		Path:        "/api/v1/sections/{id}",
		Summary:     "Replace section",
		Description: "Replaces a section's header and description. The header is required.",
		Tags:        []string{"Sections"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReplaceSection)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateSection",
		Method:      http.MethodPatch,
		Path:        "/api/v1/sections/{id}",
		Summary:     "Update section",
		Description: "Changes the given fields; an empty description clears it",
		Tags:        []string{"Sections"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateSection)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteSection",
		Method:        http.MethodDelete,
		Path:          "/api/v1/sections/{id}",
		Summary:       "Delete section",
		Description:   "Deletes a section and its image; posts keep existing without it",
		Tags:          []string{"Sections"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteSection)

	// Huma doesn't easily support multipart forms or raw image bodies.
	s.router.Post("/api/v1/sections/{id}/upload-image", s.handleUploadSectionImage)
	s.router.Get("/api/v1/sections/{id}/image", s.handleGetSectionImage)
}

// SectionInput addresses a single section.
type SectionInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Section ID"`
}

// SectionRequest is the body of a section update.
type SectionRequest struct {
	_           struct{} `json:"-" additionalProperties:"true"`
	Header      *string  `json:"header,omitempty" doc:"New header"`
	Description *string  `json:"description,omitempty" doc:"New description; empty clears it"`
}

// UpdateSectionInput wraps a section update for huma.
type UpdateSectionInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Section ID"`
	Body          SectionRequest
}

// SectionListOutput wraps a section list for huma.
type SectionListOutput struct {
	Body []dto.Section
}

// SectionOutput wraps a section for huma.
type SectionOutput struct {
	Body dto.Section
}

func (s *Server) handleListSections(ctx context.Context, input *ListCatalogInput) (*SectionListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	sections, err := s.services.Sections.List(ctx, userID, input.AssignedOnly == 1)
	if err != nil {
		return nil, err
	}
	return &SectionListOutput{Body: dto.NewSections(sections)}, nil
}

func (s *Server) handleReplaceSection(ctx context.Context, input *UpdateSectionInput) (*SectionOutput, error) {
	return s.updateSection(ctx, input, true)
}

func (s *Server) handleUpdateSection(ctx context.Context, input *UpdateSectionInput) (*SectionOutput, error) {
	return s.updateSection(ctx, input, false)
}

func (s *Server) updateSection(ctx context.Context, input *UpdateSectionInput, replace bool) (*SectionOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}
	if replace && input.Body.Header == nil {
		return nil, requiredField("header")
	}

	section, err := s.services.Sections.Update(ctx, userID, input.ID, service.UpdateSectionRequest{
		Header:      input.Body.Header,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, err
	}
	return &SectionOutput{Body: dto.NewSection(section)}, nil
}

func (s *Server) handleDeleteSection(ctx context.Context, input *SectionInput) (*struct{}, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Sections.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

// handleUploadSectionImage stores the multipart "image" file as the section's
// image and returns the updated section.
func (s *Server) handleUploadSectionImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := s.authenticateRequest(ctx, r.Header.Get("Authorization"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	sectionID, ok := pathID(r)
	if !ok {
		response.NotFound(w, "section not found", s.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxImageBytes+multipartOverhead)

	file, _, err := r.FormFile(sectionImageField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, domainerrors.CodeValidation, "image too large", map[string]string{sectionImageField: "exceeds the upload limit"}, s.logger)
			return
		}
		response.BadRequest(w, "multipart field \"image\" is required", s.logger)
		return
	}
	defer file.Close()

	// One byte past the limit is enough for the service to reject it.
	data, err := io.ReadAll(io.LimitReader(file, s.config.MaxImageBytes+1))
	if err != nil {
		response.BadRequest(w, "failed to read uploaded image", s.logger)
		return
	}

	section, err := s.services.Sections.UploadImage(ctx, userID, sectionID, data)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, dto.NewSection(section), s.logger)
}

// handleGetSectionImage serves a section's image bytes. Section images are
// part of public post details, so no authentication applies.
func (s *Server) handleGetSectionImage(w http.ResponseWriter, r *http.Request) {
	sectionID, ok := pathID(r)
	if !ok {
		response.NotFound(w, "section not found", s.logger)
		return
	}

	img, err := s.services.Sections.Image(r.Context(), sectionID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Cache-Control", CacheOneDay)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img.Data); err != nil {
		s.logger.Debug("failed to write section image", "section_id", sectionID, "error", err)
	}
}

// pathID reads the {id} URL parameter of a chi route.
func pathID(r *http.Request) (int64, bool) {
	n, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
