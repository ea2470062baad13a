package api

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/inkpost/inkpost-server/internal/auth"
	"github.com/inkpost/inkpost-server/internal/logger"
	"github.com/inkpost/inkpost-server/internal/media/images"
	"github.com/inkpost/inkpost-server/internal/metrics"
	"github.com/inkpost/inkpost-server/internal/ratelimit"
	"github.com/inkpost/inkpost-server/internal/search"
	"github.com/inkpost/inkpost-server/internal/service"
	"github.com/inkpost/inkpost-server/internal/store/sqlite"
	"github.com/inkpost/inkpost-server/internal/validation"
)

// testEnvelope mirrors the success and error envelope for decoding.
type testEnvelope[T any] struct {
	Version int               `json:"v"`
	Success bool              `json:"success"`
	Data    T                 `json:"data"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

type testConfig struct {
	search      bool
	limiter     *ratelimit.KeyedRateLimiter
	corsOrigins []string
}

type testOption func(*testConfig)

func withoutSearch() testOption {
	return func(c *testConfig) { c.search = false }
}

func withAuthRateLimit(perMinute, burst int) testOption {
	return func(c *testConfig) { c.limiter = ratelimit.New(perMinute, burst, time.Minute) }
}

func withCORS(origins ...string) testOption {
	return func(c *testConfig) { c.corsOrigins = origins }
}

type testServer struct {
	server  *Server
	api     humatest.TestAPI
	store   *sqlite.Store
	metrics *metrics.Metrics
}

func setupTestServer(t *testing.T, opts ...testOption) *testServer {
	t.Helper()
	cfg := testConfig{search: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.limiter != nil {
		t.Cleanup(cfg.limiter.Stop)
	}

	dir := t.TempDir()
	log := logger.Discard()

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	var idx *search.SearchIndex
	if cfg.search {
		idx, _, err = search.NewSearchIndex(search.Options{InMemory: true, Logger: log})
		require.NoError(t, err)
		t.Cleanup(func() { _ = idx.Close() })
	}

	imgs, err := images.NewStorage(filepath.Join(dir, "images"), "sections")
	require.NoError(t, err)

	key := make([]byte, auth.KeySize)
	_, err = rand.Read(key)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Hour)
	require.NoError(t, err)

	v := validation.New()
	m := metrics.New()
	searchSvc := service.NewSearchService(st, idx, log)
	services := &Services{
		Auth:     service.NewAuthService(st, tokens, v, log),
		Posts:    service.NewPostService(st, searchSvc, m, v, log),
		Tags:     service.NewTagService(st, searchSvc, v, log),
		Sections: service.NewSectionService(st, imgs, searchSvc, v, 1<<20, log),
		Comments: service.NewCommentService(st, v, log),
		Replies:  service.NewReplyService(st, v, log),
		Search:   searchSvc,
	}

	s := NewServer(st, services, m, cfg.limiter, Config{
		Version:       "test",
		CORSOrigins:   cfg.corsOrigins,
		MaxImageBytes: 1 << 20,
	}, log)

	return &testServer{
		server:  s,
		api:     humatest.Wrap(t, s.API()),
		store:   st,
		metrics: m,
	}
}

// createUserWithToken registers an account and logs it in.
func (ts *testServer) createUserWithToken(t *testing.T, email string) (userID int64, header string) {
	t.Helper()
	resp := ts.api.Post("/api/v1/users", map[string]any{
		"email":    email,
		"password": "correct horse",
		"name":     "Tester",
	})
	require.Equal(t, 201, resp.Code, resp.Body.String())

	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    email,
		"password": "correct horse",
	})
	require.Equal(t, 200, resp.Code, resp.Body.String())

	env := decodeEnvelope[map[string]any](t, resp)
	user := env.Data["user"].(map[string]any)
	return int64(user["id"].(float64)), "Authorization: Bearer " + env.Data["token"].(string)
}

// createPost creates a post through the API and returns its ID.
func (ts *testServer) createPost(t *testing.T, header string, body map[string]any) int64 {
	t.Helper()
	resp := ts.api.Post("/api/v1/posts", header, body)
	require.Equal(t, 201, resp.Code, resp.Body.String())
	return decodeEnvelope[postBody](t, resp).Data.ID
}

type postBody struct {
	ID       int64            `json:"id"`
	OwnerID  int64            `json:"owner_id"`
	Title    string           `json:"title"`
	Visible  bool             `json:"visible"`
	Tags     []map[string]any `json:"tags"`
	Sections []map[string]any `json:"sections"`
	Likes    []int64          `json:"likes"`
}

func (p postBody) tagNames() []string {
	names := make([]string, len(p.Tags))
	for i, tag := range p.Tags {
		names[i] = tag["name"].(string)
	}
	return names
}

func decodeEnvelope[T any](t *testing.T, resp *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	require.Equal(t, EnvelopeVersion, env.Version)
	return env
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
