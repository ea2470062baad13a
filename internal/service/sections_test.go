package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/inkpost/inkpost-server/internal/errors"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 12))
	for x := 0; x < 16; x++ {
		for y := 0; y < 12; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 20), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func sectionFor(t *testing.T, env *testEnv, ownerID int64) int64 {
	t.Helper()
	post, err := env.posts.Create(context.Background(), ownerID, CreatePostRequest{
		Title:    "With section",
		Sections: &[]SectionInput{{Header: "Intro"}},
	})
	require.NoError(t, err)
	return post.Sections[0].ID
}

func TestSectionService_UploadImage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ann := env.user(t, "ann@example.com")
	id := sectionFor(t, env, ann)
	data := pngBytes(t)

	section, err := env.sections.UploadImage(ctx, ann, id, data)
	require.NoError(t, err)
	assert.Regexp(t, `^sections/[0-9a-f-]{36}\.png$`, section.Image)
	assert.NotEmpty(t, section.ImageBlurHash)

	img, err := env.sections.Image(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, data, img.Data)

	// a second upload replaces the file
	first := section.Image
	section, err = env.sections.UploadImage(ctx, ann, id, data)
	require.NoError(t, err)
	assert.NotEqual(t, first, section.Image)
	oldPath, err := env.images.Path(first)
	require.NoError(t, err)
	_, err = os.Stat(oldPath)
	assert.True(t, os.IsNotExist(err))
}

func TestSectionService_UploadImageRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ann := env.user(t, "ann@example.com")
	bob := env.user(t, "bob@example.com")
	id := sectionFor(t, env, ann)

	_, err := env.sections.UploadImage(ctx, ann, id, []byte("definitely not an image"))
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	_, err = env.sections.UploadImage(ctx, ann, id, nil)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	_, err = env.sections.UploadImage(ctx, ann, id, make([]byte, 2<<20))
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	_, err = env.sections.UploadImage(ctx, bob, id, pngBytes(t))
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	_, err = env.sections.Image(ctx, id)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestSectionService_ClearedDescriptionMatchesPostInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ann := env.user(t, "ann@example.com")

	post, err := env.posts.Create(ctx, ann, CreatePostRequest{
		Title:    "Described",
		Sections: &[]SectionInput{{Header: "Intro", Description: ptr("draft")}},
	})
	require.NoError(t, err)
	id := post.Sections[0].ID

	_, err = env.sections.Update(ctx, ann, id, UpdateSectionRequest{Description: ptr("")})
	require.NoError(t, err)

	again, err := env.posts.Create(ctx, ann, CreatePostRequest{
		Title:    "Cleared",
		Sections: &[]SectionInput{{Header: "Intro", Description: ptr("")}},
	})
	require.NoError(t, err)
	require.Len(t, again.Sections, 1)
	assert.Equal(t, id, again.Sections[0].ID)
	assert.Nil(t, again.Sections[0].Description)

	sections, err := env.sections.List(ctx, ann, false)
	require.NoError(t, err)
	assert.Len(t, sections, 1)
}

func TestSectionService_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ann := env.user(t, "ann@example.com")
	bob := env.user(t, "bob@example.com")
	id := sectionFor(t, env, ann)

	section, err := env.sections.Update(ctx, ann, id, UpdateSectionRequest{Description: ptr("now described")})
	require.NoError(t, err)
	assert.Equal(t, "Intro", section.Header)
	require.NotNil(t, section.Description)
	assert.Equal(t, "now described", *section.Description)

	section, err = env.sections.Update(ctx, ann, id, UpdateSectionRequest{Description: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, section.Description)

	_, err = env.sections.Update(ctx, bob, id, UpdateSectionRequest{Header: ptr("Mine now")})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
	assert.True(t, domainerrors.Is(env.sections.Delete(ctx, bob, id), domainerrors.ErrNotFound))

	_, err = env.sections.UploadImage(ctx, ann, id, pngBytes(t))
	require.NoError(t, err)
	stored, err := env.store.GetSection(ctx, id)
	require.NoError(t, err)
	path, err := env.images.Path(stored.Image)
	require.NoError(t, err)

	require.NoError(t, env.sections.Delete(ctx, ann, id))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	sections, err := env.sections.List(ctx, ann, false)
	require.NoError(t, err)
	assert.Empty(t, sections)
}

func TestTagService_AssignedOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ann := env.user(t, "ann@example.com")

	env.post(t, ann, "One", "shared", "solo")
	env.post(t, ann, "Two", "shared")
	orphan := env.post(t, ann, "Three", "orphan")
	_, err := env.posts.Update(ctx, ann, orphan.ID, UpdatePostRequest{Tags: &[]TagInput{}}, false)
	require.NoError(t, err)

	all, err := env.tags.List(ctx, ann, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"solo", "shared", "orphan"}, tagNames(all))

	assigned, err := env.tags.List(ctx, ann, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"solo", "shared"}, tagNames(assigned))
}

func TestTagService_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ann := env.user(t, "ann@example.com")
	bob := env.user(t, "bob@example.com")
	post := env.post(t, ann, "Tagged", "old")
	tagID := post.Tags[0].ID

	_, err := env.tags.Update(ctx, bob, tagID, UpdateTagRequest{Name: ptr("hijack")})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	_, err = env.tags.Update(ctx, ann, tagID, UpdateTagRequest{Name: ptr(" ")})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	tag, err := env.tags.Update(ctx, ann, tagID, UpdateTagRequest{Name: ptr("new")})
	require.NoError(t, err)
	assert.Equal(t, "new", tag.Name)

	require.NoError(t, env.tags.Delete(ctx, ann, tagID))

	got, err := env.posts.Get(ctx, ann, post.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}
