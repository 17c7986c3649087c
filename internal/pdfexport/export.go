// Package pdfexport writes booklets as a single landscape Letter sheet that
// folds into a book. Catalog books always print on the 8-page sheet; editor
// scenes print on the grid of their own template.
package pdfexport

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/booklet/internal/models"
)

// ErrPDFGeneration wraps every failure while producing PDF bytes.
var ErrPDFGeneration = errors.New("PDF generation failed")

// Exporter produces PDF bytes. The zero value is not usable; call New.
type Exporter struct {
	newCanvas func() Canvas
}

// New returns an Exporter drawing with FPDF.
func New() *Exporter {
	return &Exporter{newCanvas: NewPDFCanvas}
}

// NewWithCanvas returns an Exporter drawing onto canvases made by fn.
func NewWithCanvas(fn func() Canvas) *Exporter {
	return &Exporter{newCanvas: fn}
}

// Book renders a catalog book onto the 8-page print sheet.
func (e *Exporter) Book(book BookText) ([]byte, error) {
	return e.generate(func(cv Canvas) error {
		drawPlacements(cv, LayoutBook(book, cv))
		return nil
	})
}

// Scene renders the placed elements of an editor scene.
func (e *Exporter) Scene(s *models.Scene) ([]byte, error) {
	return e.generate(func(cv Canvas) error {
		return drawScene(cv, s)
	})
}

// generate buffers the whole document so nothing is returned, or written,
// unless generation succeeded.
func (e *Exporter) generate(draw func(Canvas) error) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			data = nil
			err = fmt.Errorf("%w: %v", ErrPDFGeneration, r)
		}
	}()

	cv := e.newCanvas()
	if err := draw(cv); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPDFGeneration, err)
	}
	var buf bytes.Buffer
	if err := cv.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPDFGeneration, err)
	}
	return buf.Bytes(), nil
}

// Filename is the download name for a book: its key with a .pdf suffix.
func Filename(key string) string {
	key = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return '-'
		}
		return r
	}, key)
	if key == "" {
		key = "booklet"
	}
	return key + ".pdf"
}

// WriteFile stores data at path through a temporary file in the same
// directory, so an interrupted write never leaves a partial PDF behind.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".booklet-*.pdf")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set PDF permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move PDF into place: %w", err)
	}
	return nil
}
