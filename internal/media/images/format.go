// Package images validates, stores and summarizes uploaded section images.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	_ "golang.org/x/image/webp" // Register WebP decoder
)

// ErrUnsupported is returned for payloads that are not a decodable JPEG, PNG,
// GIF or WebP image.
var ErrUnsupported = errors.New("unsupported image format: expected JPEG, PNG, GIF or WebP")

// Format is a supported image encoding.
type Format string

// Supported formats.
const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatGIF  Format = "gif"
	FormatWebP Format = "webp"
)

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// ContentType returns the MIME type.
func (f Format) ContentType() string {
	return "image/" + string(f)
}

// sniff checks magic bytes. Returns "" when nothing matches.
func sniff(data []byte) Format {
	switch {
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return FormatJPEG
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}):
		return FormatPNG
	case len(data) >= 6 && (bytes.Equal(data[:6], []byte("GIF87a")) || bytes.Equal(data[:6], []byte("GIF89a"))):
		return FormatGIF
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return FormatWebP
	}
	return ""
}

// Detect identifies the format from magic bytes and confirms that the header
// decodes. A renamed text file or a truncated header yields ErrUnsupported.
func Detect(data []byte) (Format, error) {
	format := sniff(data)
	if format == "" {
		return "", ErrUnsupported
	}

	cfg, decoded, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if Format(decoded) != format || cfg.Width == 0 || cfg.Height == 0 {
		return "", ErrUnsupported
	}
	return format, nil
}
