// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging normalizes uploaded images for the gallery and blog:
// decoding data URIs, applying EXIF orientation and producing thumbnails.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

// Supported image MIME types.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// Defaults for a Processor created with zero values.
const (
	DefaultMaxBytes        = 5 << 20
	DefaultThumbnailWidth  = 400
	DefaultThumbnailHeight = 300
	DefaultQuality         = 85
)

var (
	// ErrNotDataURI is returned when the input is not a base64 data URI.
	ErrNotDataURI = errors.New("not a base64 data URI")
	// ErrUnsupportedFormat is returned for anything but JPEG, PNG, GIF or WebP.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrTooLarge is returned when the decoded image exceeds the size limit.
	ErrTooLarge = errors.New("image too large")
)

// Result is a normalized image and its thumbnail, both as data URIs.
type Result struct {
	DataURI   string
	Thumbnail string
	MimeType  string
	Width     int
	Height    int
	Size      int64
}

// Processor handles image processing operations using pure Go libraries.
type Processor struct {
	MaxBytes        int
	ThumbnailWidth  int
	ThumbnailHeight int
	Quality         int
}

// NewProcessor creates a processor with default limits.
func NewProcessor() *Processor {
	return &Processor{
		MaxBytes:        DefaultMaxBytes,
		ThumbnailWidth:  DefaultThumbnailWidth,
		ThumbnailHeight: DefaultThumbnailHeight,
		Quality:         DefaultQuality,
	}
}

// DecodeDataURI splits a "data:<mime>;base64,<payload>" string into its
// MIME type and bytes.
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, ErrNotDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrNotDataURI
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, ErrNotDataURI
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decoding base64 payload: %w", err)
	}
	return mimeType, data, nil
}

// EncodeDataURI builds a base64 data URI.
func EncodeDataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// IsDataURI reports whether s looks like an inline image.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:image/")
}

// ProcessDataURI decodes an uploaded data URI and processes it.
func (p *Processor) ProcessDataURI(uri string) (*Result, error) {
	_, data, err := DecodeDataURI(uri)
	if err != nil {
		return nil, err
	}
	return p.Process(bytes.NewReader(data))
}

// Process reads an image, applies its EXIF orientation, re-encodes it
// without metadata and builds a thumbnail that fits the configured box.
func (p *Processor) Process(r io.Reader) (*Result, error) {
	limit := p.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if len(data) > limit {
		return nil, ErrTooLarge
	}

	format := detectFormat(data)
	if format == "" {
		return nil, ErrUnsupportedFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	// Read EXIF orientation and auto-rotate
	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	quality := p.Quality
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	// Encode without EXIF (pure Go encoders don't preserve EXIF metadata)
	processed, err := encodeImage(img, format, quality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	outFormat := outputFormat(format)

	thumb, err := encodeImage(p.thumbnail(img), outFormat, quality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	bounds := img.Bounds()
	mimeType := formatToMimeType(outFormat)
	return &Result{
		DataURI:   EncodeDataURI(mimeType, processed),
		Thumbnail: EncodeDataURI(mimeType, thumb),
		MimeType:  mimeType,
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		Size:      int64(len(processed)),
	}, nil
}

// thumbnail fits img inside the thumbnail box. Images already inside the
// box are returned unchanged.
func (p *Processor) thumbnail(img image.Image) image.Image {
	w, h := p.ThumbnailWidth, p.ThumbnailHeight
	if w <= 0 {
		w = DefaultThumbnailWidth
	}
	if h <= 0 {
		h = DefaultThumbnailHeight
	}

	bounds := img.Bounds()
	if bounds.Dx() <= w && bounds.Dy() <= h {
		return img
	}
	return imaging.Fit(img, w, h, imaging.Lanczos)
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation maps EXIF orientations 2-8 onto flips and rotations.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// outputFormat returns the format images are re-encoded to. WebP has no
// pure Go encoder and is written as JPEG.
func outputFormat(format string) string {
	if format == "webp" {
		return "jpeg"
	}
	return format
}

func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// Explicitly reject TIFF (CVE-2023-36308 in disintegration/imaging)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

func formatToMimeType(format string) string {
	switch format {
	case "png":
		return MimeTypePNG
	case "gif":
		return MimeTypeGIF
	case "webp":
		return MimeTypeWebP
	default:
		return MimeTypeJPEG
	}
}
