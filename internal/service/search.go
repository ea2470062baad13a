package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inkpost/inkpost-server/internal/domain"
	"github.com/inkpost/inkpost-server/internal/search"
	"github.com/inkpost/inkpost-server/internal/store"
)

// SearchService keeps the post search index in step with the store.
// A nil index disables search: indexing becomes a no-op and Search fails.
//
// Index writes happen after the store transaction commits and are best
// effort. A failed write is logged and repaired by the next update of the
// post or by a rebuild.
type SearchService struct {
	store  store.Store
	index  *search.SearchIndex
	logger *slog.Logger
}

// NewSearchService creates a search service over index, which may be nil.
func NewSearchService(store store.Store, index *search.SearchIndex, logger *slog.Logger) *SearchService {
	return &SearchService{store: store, index: index, logger: logger}
}

// Enabled reports whether a search index is attached.
func (s *SearchService) Enabled() bool {
	return s != nil && s.index != nil
}

// Search returns the IDs of posts matching text that params allow.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) ([]int64, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("search index is disabled")
	}
	return s.index.SearchPosts(ctx, params)
}

// DocumentCount reports how many posts the index holds.
func (s *SearchService) DocumentCount() (uint64, error) {
	if !s.Enabled() {
		return 0, fmt.Errorf("search index is disabled")
	}
	return s.index.DocumentCount()
}

// IndexPost indexes a post whose tags and sections are loaded.
func (s *SearchService) IndexPost(post *domain.Post) {
	if !s.Enabled() {
		return
	}
	if err := s.index.IndexPost(search.NewPostDocument(post)); err != nil {
		s.logger.Warn("failed to index post", "post_id", post.ID, "error", err)
	}
}

// RemovePost drops a post from the index.
func (s *SearchService) RemovePost(postID int64) {
	if !s.Enabled() {
		return
	}
	if err := s.index.DeletePost(postID); err != nil {
		s.logger.Warn("failed to remove post from index", "post_id", postID, "error", err)
	}
}

// ReindexPosts reloads and indexes the given posts. Posts deleted in the
// meantime are removed from the index.
func (s *SearchService) ReindexPosts(ctx context.Context, postIDs []int64) {
	if !s.Enabled() || len(postIDs) == 0 {
		return
	}
	posts, err := s.store.ListPosts(ctx, store.PostFilter{IDs: postIDs})
	if err != nil {
		s.logger.Warn("failed to load posts for reindex", "count", len(postIDs), "error", err)
		return
	}

	found := make(map[int64]bool, len(posts))
	for _, p := range posts {
		found[p.ID] = true
		if err := loadAttributes(ctx, s.store, p); err != nil {
			s.logger.Warn("failed to load post attributes for reindex", "post_id", p.ID, "error", err)
			continue
		}
		s.IndexPost(p)
	}
	for _, id := range postIDs {
		if !found[id] {
			s.RemovePost(id)
		}
	}
}

// Rebuild indexes every post from scratch.
func (s *SearchService) Rebuild(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}

	posts, err := s.store.ListPosts(ctx, store.PostFilter{})
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}

	docs := make([]*search.PostDocument, 0, len(posts))
	for _, p := range posts {
		if err := loadAttributes(ctx, s.store, p); err != nil {
			return fmt.Errorf("load post %d: %w", p.ID, err)
		}
		docs = append(docs, search.NewPostDocument(p))
	}

	if err := s.index.Rebuild(); err != nil {
		return err
	}
	if err := s.index.IndexPosts(docs); err != nil {
		return fmt.Errorf("index posts: %w", err)
	}

	s.logger.Info("search index rebuilt", "posts", len(docs))
	return nil
}

// loadAttributes fills the post's tags and sections.
func loadAttributes(ctx context.Context, st store.Store, p *domain.Post) error {
	tags, err := st.GetPostTags(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	sections, err := st.GetPostSections(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("load sections: %w", err)
	}
	p.Tags, p.Sections = tags, sections
	return nil
}
