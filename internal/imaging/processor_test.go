// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

// createTestImage creates a simple test image with the given dimensions.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, createTestImage(width, height)); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeDataURI(t *testing.T) {
	data := []byte("hello")
	uri := EncodeDataURI("image/png", data)

	mimeType, got, err := DecodeDataURI(uri)
	if err != nil {
		t.Fatalf("DecodeDataURI: %v", err)
	}
	if mimeType != "image/png" {
		t.Errorf("mime = %q, want image/png", mimeType)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("data = %q, want %q", got, data)
	}
}

func TestDecodeDataURI_Invalid(t *testing.T) {
	tests := []string{
		"",
		"https://example.com/a.png",
		"data:image/png,plain",
		"data:image/png;base64",
	}

	for _, uri := range tests {
		t.Run(uri, func(t *testing.T) {
			if _, _, err := DecodeDataURI(uri); !errors.Is(err, ErrNotDataURI) {
				t.Errorf("DecodeDataURI(%q) error = %v, want ErrNotDataURI", uri, err)
			}
		})
	}

	if _, _, err := DecodeDataURI("data:image/png;base64,!!!"); err == nil {
		t.Error("DecodeDataURI with bad base64 should fail")
	}
}

func TestIsDataURI(t *testing.T) {
	if !IsDataURI("data:image/jpeg;base64,AAAA") {
		t.Error("IsDataURI(jpeg) = false")
	}
	if IsDataURI("/uploads/a.jpg") {
		t.Error("IsDataURI(path) = true")
	}
}

func TestProcess_Thumbnail(t *testing.T) {
	p := NewProcessor()

	res, err := p.ProcessDataURI(EncodeDataURI(MimeTypePNG, pngBytes(t, 800, 400)))
	if err != nil {
		t.Fatalf("ProcessDataURI: %v", err)
	}

	if res.Width != 800 || res.Height != 400 {
		t.Errorf("size = %dx%d, want 800x400", res.Width, res.Height)
	}
	if res.MimeType != MimeTypePNG {
		t.Errorf("MimeType = %q, want %q", res.MimeType, MimeTypePNG)
	}
	if !strings.HasPrefix(res.DataURI, "data:image/png;base64,") {
		t.Errorf("DataURI prefix = %q", res.DataURI[:30])
	}

	_, thumbData, err := DecodeDataURI(res.Thumbnail)
	if err != nil {
		t.Fatalf("thumbnail: %v", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(thumbData))
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if cfg.Width != 400 || cfg.Height != 200 {
		t.Errorf("thumbnail = %dx%d, want 400x200", cfg.Width, cfg.Height)
	}
}

func TestProcess_SmallImageKeepsSize(t *testing.T) {
	p := NewProcessor()

	res, err := p.Process(bytes.NewReader(pngBytes(t, 40, 30)))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	_, thumbData, _ := DecodeDataURI(res.Thumbnail)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(thumbData))
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if cfg.Width != 40 || cfg.Height != 30 {
		t.Errorf("thumbnail = %dx%d, want 40x30", cfg.Width, cfg.Height)
	}
}

func TestProcess_Rejects(t *testing.T) {
	p := &Processor{MaxBytes: 64}

	if _, err := p.Process(bytes.NewReader(pngBytes(t, 50, 50))); !errors.Is(err, ErrTooLarge) {
		t.Errorf("oversized error = %v, want ErrTooLarge", err)
	}

	p.MaxBytes = 0
	if _, err := p.Process(strings.NewReader("plain text, not an image")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("text error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg magic bytes", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "jpeg"},
		{"png magic bytes", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "png"},
		{"gif magic bytes", []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61}, "gif"},
		{"unknown", []byte{0x00, 0x01, 0x02, 0x03}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFormat(tt.data); got != tt.want {
				t.Errorf("detectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatToMimeType(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"jpeg", MimeTypeJPEG},
		{"png", MimeTypePNG},
		{"gif", MimeTypeGIF},
		{"webp", MimeTypeWebP},
		{outputFormat("webp"), MimeTypeJPEG},
	}

	for _, tt := range tests {
		if got := formatToMimeType(tt.format); got != tt.want {
			t.Errorf("formatToMimeType(%q) = %v, want %v", tt.format, got, tt.want)
		}
	}
}

func TestApplyOrientation(t *testing.T) {
	img := createTestImage(10, 20)

	for orientation := 0; orientation <= 9; orientation++ {
		got := applyOrientation(img, orientation)
		if got == nil {
			t.Fatalf("applyOrientation(%d) returned nil", orientation)
		}
		b := got.Bounds()
		rotated := orientation >= 5 && orientation <= 8
		if rotated && (b.Dx() != 20 || b.Dy() != 10) {
			t.Errorf("orientation %d: size %dx%d, want 20x10", orientation, b.Dx(), b.Dy())
		}
		if !rotated && (b.Dx() != 10 || b.Dy() != 20) {
			t.Errorf("orientation %d: size %dx%d, want 10x20", orientation, b.Dx(), b.Dy())
		}
	}
}
