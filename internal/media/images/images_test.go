package images

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(32, 24), nil))
	return buf.Bytes()
}

func encodeGIF(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, testImage(16, 16), nil))
	return buf.Bytes()
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"png", encodePNG(t, 8, 8), FormatPNG},
		{"jpeg", encodeJPEG(t), FormatJPEG},
		{"gif", encodeGIF(t), FormatGIF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetect_Rejects(t *testing.T) {
	pngData := encodePNG(t, 8, 8)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("definitely not an image, just some words")},
		{"truncated png", pngData[:12]},
		{"webp magic without body", []byte("RIFF\x00\x00\x00\x00WEBPVP8 ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Detect(tt.data)
			assert.True(t, errors.Is(err, ErrUnsupported), "got %v", err)
		})
	}
}

func TestSniff_WebP(t *testing.T) {
	assert.Equal(t, FormatWebP, sniff([]byte("RIFF\x10\x00\x00\x00WEBPVP8L")))
	assert.Equal(t, Format(""), sniff([]byte("RIFF\x10\x00\x00\x00WAVEfmt ")))
}

func TestFormat_ExtAndContentType(t *testing.T) {
	assert.Equal(t, ".jpg", FormatJPEG.Ext())
	assert.Equal(t, ".webp", FormatWebP.Ext())
	assert.Equal(t, "image/png", FormatPNG.ContentType())
}

func TestComputeBlurHash(t *testing.T) {
	hash, err := ComputeBlurHash(encodePNG(t, 300, 120))
	require.NoError(t, err)
	// 4x3 components encode to 1 + 1 + 4 + 2*(4*3-1) characters.
	assert.Len(t, hash, 28)

	small, err := ComputeBlurHash(encodePNG(t, 10, 10))
	require.NoError(t, err)
	assert.Len(t, small, 28)

	_, err = ComputeBlurHash([]byte("nope"))
	assert.Error(t, err)
}

func TestThumbnail_Bounds(t *testing.T) {
	wide := thumbnail(testImage(640, 100))
	assert.Equal(t, 64, wide.Bounds().Dx())
	assert.Equal(t, 10, wide.Bounds().Dy())

	tall := thumbnail(testImage(10, 2000))
	assert.Equal(t, 1, tall.Bounds().Dx())
	assert.Equal(t, 64, tall.Bounds().Dy())
}

func TestStorage(t *testing.T) {
	root := t.TempDir()
	storage, err := NewStorage(root, "sections")
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(root, "sections"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	data := encodePNG(t, 4, 4)
	name, err := storage.Save(data, FormatPNG)
	require.NoError(t, err)
	assert.Regexp(t, `^sections/[0-9a-f-]{36}\.png$`, name)

	got, err := storage.Get(name)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	entries, err := os.ReadDir(filepath.Join(root, "sections"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be gone")

	require.NoError(t, storage.Delete(name))
	_, err = storage.Get(name)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, storage.Delete(name), "deleting twice is fine")
}

func TestStorage_RejectsForeignNames(t *testing.T) {
	storage, err := NewStorage(t.TempDir(), "sections")
	require.NoError(t, err)

	for _, name := range []string{"../auth.key", "sections/../../etc/passwd", "covers/a.png", "sections/", "sections/.upload-1"} {
		_, err := storage.Path(name)
		assert.Error(t, err, name)
	}
}

func TestNewStorage_Validation(t *testing.T) {
	_, err := NewStorage("", "sections")
	assert.ErrorContains(t, err, "base path cannot be empty")

	_, err = NewStorage(t.TempDir(), "a/b")
	assert.Error(t, err)
}

func TestStorage_SaveEmpty(t *testing.T) {
	storage, err := NewStorage(t.TempDir(), "sections")
	require.NoError(t, err)

	_, err = storage.Save(nil, FormatPNG)
	assert.Error(t, err)
}
