package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inkpost/inkpost-server/internal/domain"
	domainerrors "github.com/inkpost/inkpost-server/internal/errors"
	"github.com/inkpost/inkpost-server/internal/media/images"
	"github.com/inkpost/inkpost-server/internal/store"
	"github.com/inkpost/inkpost-server/internal/validation"
)

// SectionService manages the caller's sections and their images.
type SectionService struct {
	store         store.Store
	images        *images.Storage
	search        *SearchService
	validator     *validation.Validator
	maxImageBytes int64
	logger        *slog.Logger
}

// NewSectionService creates a new section service.
func NewSectionService(
	store store.Store,
	images *images.Storage,
	search *SearchService,
	validator *validation.Validator,
	maxImageBytes int64,
	logger *slog.Logger,
) *SectionService {
	return &SectionService{
		store:         store,
		images:        images,
		search:        search,
		validator:     validator,
		maxImageBytes: maxImageBytes,
		logger:        logger,
	}
}

// UpdateSectionRequest changes a section. An empty Description clears it.
type UpdateSectionRequest struct {
	Header      *string `json:"header,omitempty" validate:"omitnil,notblank,max=255"`
	Description *string `json:"description,omitempty" validate:"omitnil,max=2000"`
}

// SectionImage is a stored section image ready to be served.
type SectionImage struct {
	Data        []byte
	ContentType string
}

// List returns the user's sections, header descending.
func (s *SectionService) List(ctx context.Context, userID int64, assignedOnly bool) ([]*domain.Section, error) {
	sections, err := s.store.ListSections(ctx, store.AttributeFilter{OwnerID: userID, AssignedOnly: assignedOnly})
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// Update changes a section owned by userID.
func (s *SectionService) Update(ctx context.Context, userID, sectionID int64, req UpdateSectionRequest) (section *domain.Section, err error) {
	ctx, span := startSpan(ctx, "SectionService.Update", userID)
	defer func() { endSpan(span, err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	sec, err := s.store.GetSection(ctx, sectionID)
	if section, err = requireOwner(sec, err, userID, "section"); err != nil {
		return nil, err
	}

	if req.Header != nil {
		section.Header = *req.Header
	}
	if req.Description != nil {
		section.Description = domain.CleanDescription(req.Description)
	}
	if err := s.store.UpdateSection(ctx, section); err != nil {
		return nil, notFoundOr(err, "section")
	}

	s.search.ReindexPosts(ctx, s.postsWithSection(ctx, sectionID))
	s.logger.Info("section updated", "section_id", sectionID, "owner_id", userID)
	return section, nil
}

// Delete removes a section owned by userID and its image file.
func (s *SectionService) Delete(ctx context.Context, userID, sectionID int64) (err error) {
	ctx, span := startSpan(ctx, "SectionService.Delete", userID)
	defer func() { endSpan(span, err) }()

	sec, err := s.store.GetSection(ctx, sectionID)
	section, err := requireOwner(sec, err, userID, "section")
	if err != nil {
		return err
	}

	affected := s.postsWithSection(ctx, sectionID)
	if err := s.store.DeleteSection(ctx, sectionID); err != nil {
		return notFoundOr(err, "section")
	}
	s.removeImage(section.Image)

	s.search.ReindexPosts(ctx, affected)
	s.logger.Info("section deleted", "section_id", sectionID, "owner_id", userID, "posts", len(affected))
	return nil
}

// UploadImage validates data as a JPEG, PNG, GIF or WebP image, stores it as
// the section's image and computes its BlurHash. The previous image file is
// removed once the section points at the new one.
func (s *SectionService) UploadImage(ctx context.Context, userID, sectionID int64, data []byte) (section *domain.Section, err error) {
	ctx, span := startSpan(ctx, "SectionService.UploadImage", userID)
	defer func() { endSpan(span, err) }()

	sec, err := s.store.GetSection(ctx, sectionID)
	if section, err = requireOwner(sec, err, userID, "section"); err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, domainerrors.ValidationWithDetails("validation failed: image", map[string]string{"image": "is required"})
	}
	if s.maxImageBytes > 0 && int64(len(data)) > s.maxImageBytes {
		return nil, domainerrors.ValidationWithDetails("validation failed: image",
			map[string]string{"image": fmt.Sprintf("must not exceed %d bytes", s.maxImageBytes)})
	}

	format, err := images.Detect(data)
	if err != nil {
		return nil, domainerrors.ValidationWithDetails("validation failed: image", map[string]string{"image": err.Error()})
	}
	blurHash, err := images.ComputeBlurHash(data)
	if err != nil {
		return nil, domainerrors.ValidationWithDetails("validation failed: image", map[string]string{"image": err.Error()})
	}

	name, err := s.images.Save(data, format)
	if err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}

	previous := section.Image
	section.Image = name
	section.ImageBlurHash = blurHash
	if err := s.store.UpdateSection(ctx, section); err != nil {
		s.removeImage(name)
		return nil, notFoundOr(err, "section")
	}
	if previous != "" && previous != name {
		s.removeImage(previous)
	}

	s.logger.Info("section image uploaded",
		"section_id", sectionID,
		"owner_id", userID,
		"format", string(format),
		"bytes", len(data),
	)
	return section, nil
}

// Image resolves a section's stored image. Section images appear in public
// post details, so no ownership check applies.
func (s *SectionService) Image(ctx context.Context, sectionID int64) (*SectionImage, error) {
	section, err := s.store.GetSection(ctx, sectionID)
	if err != nil {
		return nil, notFoundOr(err, "section")
	}
	if section.Image == "" {
		return nil, domainerrors.NotFound("section has no image")
	}

	data, err := s.images.Get(section.Image)
	if errors.Is(err, images.ErrNotFound) {
		return nil, domainerrors.NotFound("section has no image")
	}
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	format, err := images.Detect(data)
	if err != nil {
		return nil, fmt.Errorf("detect stored image: %w", err)
	}

	return &SectionImage{Data: data, ContentType: format.ContentType()}, nil
}

func (s *SectionService) removeImage(name string) {
	if name == "" {
		return
	}
	if err := s.images.Delete(name); err != nil {
		s.logger.Warn("failed to delete section image", "image", name, "error", err)
	}
}

func (s *SectionService) postsWithSection(ctx context.Context, sectionID int64) []int64 {
	if !s.search.Enabled() {
		return nil
	}
	posts, err := s.store.ListPosts(ctx, store.PostFilter{SectionIDs: []int64{sectionID}})
	if err != nil {
		s.logger.Warn("failed to list posts for section", "section_id", sectionID, "error", err)
		return nil
	}
	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}
