package service

import (
	"context"
	"crypto/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inkpost/inkpost-server/internal/auth"
	"github.com/inkpost/inkpost-server/internal/domain"
	"github.com/inkpost/inkpost-server/internal/logger"
	"github.com/inkpost/inkpost-server/internal/media/images"
	"github.com/inkpost/inkpost-server/internal/metrics"
	"github.com/inkpost/inkpost-server/internal/search"
	"github.com/inkpost/inkpost-server/internal/store/sqlite"
	"github.com/inkpost/inkpost-server/internal/validation"
)

// testEnv wires every service against a temporary database and an
// in-memory search index.
type testEnv struct {
	store    *sqlite.Store
	metrics  *metrics.Metrics
	auth     *AuthService
	posts    *PostService
	tags     *TagService
	sections *SectionService
	comments *CommentService
	replies  *ReplyService
	search   *SearchService
	images   *images.Storage
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	log := logger.Discard()

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	idx, _, err := search.NewSearchIndex(search.Options{InMemory: true, Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	imgs, err := images.NewStorage(filepath.Join(dir, "images"), "sections")
	require.NoError(t, err)

	key := make([]byte, auth.KeySize)
	_, err = rand.Read(key)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Hour)
	require.NoError(t, err)

	v := validation.New()
	m := metrics.New()
	searchSvc := NewSearchService(st, idx, log)

	return &testEnv{
		store:    st,
		metrics:  m,
		auth:     NewAuthService(st, tokens, v, log),
		posts:    NewPostService(st, searchSvc, m, v, log),
		tags:     NewTagService(st, searchSvc, v, log),
		sections: NewSectionService(st, imgs, searchSvc, v, 1<<20, log),
		comments: NewCommentService(st, v, log),
		replies:  NewReplyService(st, v, log),
		search:   searchSvc,
		images:   imgs,
	}
}

// user registers an account and returns its ID.
func (e *testEnv) user(t *testing.T, email string) int64 {
	t.Helper()
	u, err := e.auth.Register(context.Background(), RegisterRequest{Email: email, Password: "correct horse", Name: email})
	require.NoError(t, err)
	return u.ID
}

// post creates a post with the given tag names.
func (e *testEnv) post(t *testing.T, ownerID int64, title string, tags ...string) *domain.Post {
	t.Helper()
	req := CreatePostRequest{Title: title}
	if len(tags) > 0 {
		req.Tags = tagInputs(tags...)
	}
	p, err := e.posts.Create(context.Background(), ownerID, req)
	require.NoError(t, err)
	return p
}

func tagInputs(names ...string) *[]TagInput {
	in := make([]TagInput, len(names))
	for i, n := range names {
		in[i] = TagInput{Name: n}
	}
	return &in
}

func tagNames(tags []*domain.Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}

func ptr[T any](v T) *T { return &v }
