// Package images validates uploaded pictures and converts them into a form
// the PDF writer can embed.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"net/http"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var ErrNotImage = errors.New("not a decodable image")

// Info describes a decoded upload
type Info struct {
	MIME   string
	Format string
	Width  int
	Height int
}

// Inspect checks that data is an image in one of the registered formats and
// reports its dimensions.
func Inspect(data []byte) (Info, error) {
	if len(data) == 0 {
		return Info{}, fmt.Errorf("%w: empty file", ErrNotImage)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Info{}, fmt.Errorf("%w: %dx%d", ErrNotImage, cfg.Width, cfg.Height)
	}

	return Info{
		MIME:   mimeFor(format, data),
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

func mimeFor(format string, data []byte) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "webp":
		return "image/webp"
	default:
		return http.DetectContentType(data)
	}
}

// ForPDF returns image bytes and the FPDF image type ("JPG", "PNG" or
// "GIF"). Formats the PDF writer cannot embed directly are re-encoded as PNG.
func ForPDF(data []byte, mime string) ([]byte, string, error) {
	switch mime {
	case "image/jpeg":
		return data, "JPG", nil
	case "image/png":
		return data, "PNG", nil
	case "image/gif":
		return data, "GIF", nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("failed to re-encode image: %w", err)
	}
	return buf.Bytes(), "PNG", nil
}
