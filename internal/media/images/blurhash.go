package images

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"

	"github.com/bbrks/go-blurhash"
)

// blurHashSize bounds the thumbnail the hash is computed from. The hash is a
// low-frequency summary, so a 64px thumbnail gives the same result as the
// full image in a fraction of the time.
const blurHashSize = 64

// ComputeBlurHash decodes data and returns a 4x3 component BlurHash.
func ComputeBlurHash(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	hash, err := blurhash.Encode(4, 3, thumbnail(img))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// thumbnail scales img with nearest-neighbor sampling so its longer side is
// at most blurHashSize.
func thumbnail(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= blurHashSize && h <= blurHashSize {
		return img
	}

	dw, dh := blurHashSize, blurHashSize
	if w > h {
		dh = max(1, h*blurHashSize/w)
	} else {
		dw = max(1, w*blurHashSize/h)
	}

	src := image.NewRGBA(b)
	draw.Draw(src, b, img, b.Min, draw.Src)

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := range dh {
		sy := b.Min.Y + y*h/dh
		for x := range dw {
			sx := b.Min.X + x*w/dw
			dst.Set(x, y, src.At(sx, sy))
		}
	}
	return dst
}
