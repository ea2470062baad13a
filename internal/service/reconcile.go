package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inkpost/inkpost-server/internal/domain"
	"github.com/inkpost/inkpost-server/internal/metrics"
	"github.com/inkpost/inkpost-server/internal/store"
)

// TagInput identifies a tag by value.
type TagInput struct {
	Name string `json:"name" validate:"required,notblank,max=255"`
}

// SectionInput identifies a section by value. A section is reused only when
// both header and description match exactly.
type SectionInput struct {
	Header      string  `json:"header" validate:"required,notblank,max=255"`
	Description *string `json:"description,omitempty" validate:"omitnil,max=2000"`
}

// reconciler resolves desired tags and sections to entities owned by the
// acting user and replaces a post's association set with them. It must be
// called with a transaction-bound store.
type reconciler struct {
	tx      store.Store
	ownerID int64
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// tags replaces the post's tags. Duplicate names collapse into one
// association; an empty list clears the set.
func (r *reconciler) tags(ctx context.Context, postID int64, desired []TagInput) ([]*domain.Tag, error) {
	resolved := make([]*domain.Tag, 0, len(desired))
	ids := make([]int64, 0, len(desired))
	seen := make(map[int64]bool, len(desired))

	for _, in := range desired {
		tag, created, err := r.tx.FindOrCreateTag(ctx, r.ownerID, in.Name)
		if err != nil {
			return nil, fmt.Errorf("resolve tag %q: %w", in.Name, err)
		}
		r.metrics.Reconciled("tag", created)
		if seen[tag.ID] {
			continue
		}
		seen[tag.ID] = true
		resolved = append(resolved, tag)
		ids = append(ids, tag.ID)
	}

	if err := r.tx.SetPostTags(ctx, postID, ids); err != nil {
		return nil, fmt.Errorf("set post tags: %w", err)
	}

	r.logger.Debug("post tags reconciled", "post_id", postID, "owner_id", r.ownerID, "tags", len(ids))
	return resolved, nil
}

// sections replaces the post's sections with the same rules as tags.
func (r *reconciler) sections(ctx context.Context, postID int64, desired []SectionInput) ([]*domain.Section, error) {
	resolved := make([]*domain.Section, 0, len(desired))
	ids := make([]int64, 0, len(desired))
	seen := make(map[int64]bool, len(desired))

	for _, in := range desired {
		section, created, err := r.tx.FindOrCreateSection(ctx, r.ownerID, in.Header, in.Description)
		if err != nil {
			return nil, fmt.Errorf("resolve section %q: %w", in.Header, err)
		}
		r.metrics.Reconciled("section", created)
		if seen[section.ID] {
			continue
		}
		seen[section.ID] = true
		resolved = append(resolved, section)
		ids = append(ids, section.ID)
	}

	if err := r.tx.SetPostSections(ctx, postID, ids); err != nil {
		return nil, fmt.Errorf("set post sections: %w", err)
	}

	r.logger.Debug("post sections reconciled", "post_id", postID, "owner_id", r.ownerID, "sections", len(ids))
	return resolved, nil
}
