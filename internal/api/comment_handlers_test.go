package api

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComments_Lifecycle(t *testing.T) {
	ts := setupTestServer(t)
	_, author := ts.createUserWithToken(t, "author@example.com")
	_, reader := ts.createUserWithToken(t, "reader@example.com")
	postID := ts.createPost(t, author, map[string]any{"title": "Discuss"})
	listURL := fmt.Sprintf("/api/v1/posts/%d/comments", postID)

	resp := ts.api.Post(listURL, reader, map[string]any{"body": "Nice post"})
	require.Equal(t, 201, resp.Code, resp.Body.String())
	comment := decodeEnvelope[map[string]any](t, resp).Data
	commentURL := fmt.Sprintf("%s/%d", listURL, int64(comment["id"].(float64)))

	// Anyone can read comments on a visible post.
	list := decodeEnvelope[[]map[string]any](t, ts.api.Get(listURL)).Data
	require.Len(t, list, 1)
	assert.Equal(t, "Nice post", list[0]["body"])

	// The post owner cannot edit someone else's comment.
	assert.Equal(t, 404, ts.api.Patch(commentURL, author, map[string]any{"body": "edited"}).Code)

	resp = ts.api.Patch(commentURL, reader, map[string]any{"body": "Very nice post"})
	require.Equal(t, 200, resp.Code, resp.Body.String())
	assert.Equal(t, "Very nice post", decodeEnvelope[map[string]any](t, resp).Data["body"])

	assert.Equal(t, 204, ts.api.Delete(commentURL, reader).Code)
	assert.Empty(t, decodeEnvelope[[]map[string]any](t, ts.api.Get(listURL)).Data)
}

func TestComments_Validation(t *testing.T) {
	ts := setupTestServer(t)
	_, header := ts.createUserWithToken(t, "author@example.com")
	postID := ts.createPost(t, header, map[string]any{"title": "Discuss"})
	url := fmt.Sprintf("/api/v1/posts/%d/comments", postID)

	assert.Equal(t, 400, ts.api.Post(url, header, map[string]any{"body": "  "}).Code)
	assert.Equal(t, 400, ts.api.Post(url, header, map[string]any{"body": strings.Repeat("x", 5001)}).Code)
	assert.Equal(t, 401, ts.api.Post(url, map[string]any{"body": "anonymous"}).Code)
}

func TestComments_HiddenPostNotFound(t *testing.T) {
	ts := setupTestServer(t)
	_, owner := ts.createUserWithToken(t, "owner@example.com")
	_, other := ts.createUserWithToken(t, "other@example.com")
	postID := ts.createPost(t, owner, map[string]any{"title": "Draft", "visible": false})
	url := fmt.Sprintf("/api/v1/posts/%d/comments", postID)

	assert.Equal(t, 404, ts.api.Get(url).Code)
	assert.Equal(t, 404, ts.api.Post(url, other, map[string]any{"body": "sneaky"}).Code)
	assert.Equal(t, 201, ts.api.Post(url, owner, map[string]any{"body": "note to self"}).Code)
}

func TestReplies_Lifecycle(t *testing.T) {
	ts := setupTestServer(t)
	_, author := ts.createUserWithToken(t, "author@example.com")
	_, reader := ts.createUserWithToken(t, "reader@example.com")
	postID := ts.createPost(t, author, map[string]any{"title": "Discuss"})

	resp := ts.api.Post(fmt.Sprintf("/api/v1/posts/%d/comments", postID), reader, map[string]any{"body": "Question?"})
	require.Equal(t, 201, resp.Code, resp.Body.String())
	commentID := int64(decodeEnvelope[map[string]any](t, resp).Data["id"].(float64))
	listURL := fmt.Sprintf("/api/v1/comments/%d/replies", commentID)

	resp = ts.api.Post(listURL, author, map[string]any{"body": "Answer."})
	require.Equal(t, 201, resp.Code, resp.Body.String())
	reply := decodeEnvelope[map[string]any](t, resp).Data
	assert.Equal(t, float64(commentID), reply["comment_id"])
	replyURL := fmt.Sprintf("%s/%d", listURL, int64(reply["id"].(float64)))

	list := decodeEnvelope[[]map[string]any](t, ts.api.Get(listURL)).Data
	require.Len(t, list, 1)

	assert.Equal(t, 404, ts.api.Patch(replyURL, reader, map[string]any{"body": "not mine"}).Code)
	resp = ts.api.Patch(replyURL, author, map[string]any{"body": "Better answer."})
	require.Equal(t, 200, resp.Code, resp.Body.String())

	assert.Equal(t, 404, ts.api.Delete(replyURL, reader).Code)
	assert.Equal(t, 204, ts.api.Delete(replyURL, author).Code)
	assert.Equal(t, 404, ts.api.Get(fmt.Sprintf("/api/v1/comments/%d/replies", 9999)).Code)
}
