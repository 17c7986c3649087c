package images

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"
)

func testImage(t *testing.T, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func encodePNG(buf *bytes.Buffer, img image.Image) error { return png.Encode(buf, img) }

func encodeBMP(buf *bytes.Buffer, img image.Image) error { return bmp.Encode(buf, img) }

func TestInspect(t *testing.T) {
	info, err := Inspect(testImage(t, encodePNG))
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if info.MIME != "image/png" || info.Width != 4 || info.Height != 3 {
		t.Errorf("Expected image/png 4x3, got %s %dx%d", info.MIME, info.Width, info.Height)
	}

	info, err = Inspect(testImage(t, encodeBMP))
	if err != nil {
		t.Fatalf("Inspect bmp failed: %v", err)
	}
	if info.MIME != "image/bmp" {
		t.Errorf("Expected image/bmp, got %s", info.MIME)
	}
}

func TestInspectRejectsNonImages(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("hello, this is not a picture")},
		{"truncated png", testImage(t, encodePNG)[:10]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Inspect(tt.data); !errors.Is(err, ErrNotImage) {
				t.Errorf("Expected ErrNotImage, got %v", err)
			}
		})
	}
}

func TestForPDF(t *testing.T) {
	pngData := testImage(t, encodePNG)
	data, typ, err := ForPDF(pngData, "image/png")
	if err != nil || typ != "PNG" || !bytes.Equal(data, pngData) {
		t.Errorf("Expected PNG passthrough, got %s, %v", typ, err)
	}

	data, typ, err = ForPDF(testImage(t, encodeBMP), "image/bmp")
	if err != nil {
		t.Fatalf("ForPDF bmp failed: %v", err)
	}
	if typ != "PNG" {
		t.Errorf("Expected PNG re-encode, got %s", typ)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("Expected valid PNG output: %v", err)
	}
}
