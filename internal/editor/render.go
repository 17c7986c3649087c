// Package editor builds and edits booklet scenes: the page grid for a
// template, the text seeded from a book or from textN parameters, and the
// add-text / add-image / select-page operations of the editor view.
package editor

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/booklet/internal/catalog"
	"github.com/lehigh-university-libraries/booklet/internal/layout"
	"github.com/lehigh-university-libraries/booklet/internal/manipulate"
	"github.com/lehigh-university-libraries/booklet/internal/models"
)

// DefaultCellSize is the nominal size of a page cell in the editor view.
// Element positions are stored against it.
var DefaultCellSize = models.Size{Width: 240, Height: 300}

const (
	seededTextWidth = 0.9 // fraction of the cell width
	addedTextWidth  = 0.8
	imageWidth      = 100.0
	placeholderText = "Edit me..."
)

// Books resolves book keys to catalog books.
type Books interface {
	Lookup(key string) (*catalog.Book, bool)
}

// Params selects what Render draws.
type Params struct {
	Template string
	Book     string
	// Overrides maps page names to text; used only when Book is empty.
	Overrides map[string]string
}

// ParseParams reads template, book and text1..textN from a query string.
func ParseParams(q url.Values) Params {
	p := Params{
		Template: q.Get("template"),
		Book:     q.Get("book"),
	}
	if p.Template == "" {
		p.Template = layout.DefaultTemplate
	}
	tpl := layout.Resolve(p.Template)
	for n := 1; n <= tpl.MaxOverrides(); n++ {
		text := q.Get("text" + strconv.Itoa(n))
		if text == "" {
			continue
		}
		page, _ := tpl.OverridePage(n)
		if p.Overrides == nil {
			p.Overrides = make(map[string]string)
		}
		p.Overrides[page] = text
	}
	return p
}

// Query encodes the params back into query form.
func (p Params) Query() url.Values {
	q := url.Values{}
	q.Set("template", p.Template)
	if p.Book != "" {
		q.Set("book", p.Book)
		return q
	}
	tpl := layout.Resolve(p.Template)
	for n := 1; n <= tpl.MaxOverrides(); n++ {
		page, _ := tpl.OverridePage(n)
		if text, ok := p.Overrides[page]; ok {
			q.Set("text"+strconv.Itoa(n), text)
		}
	}
	return q
}

// textFor returns the seeded text of a slot, "" when the page shows its label.
func (p Params) textFor(slot layout.Slot, book *catalog.Book) string {
	if p.Book != "" {
		return book.PageText(slot.Role.Key())
	}
	return p.Overrides[slot.Page]
}

// Render builds a fresh scene. Unknown templates fall back to the default
// layout and unknown books leave every page with its label.
func Render(p Params, books Books, cellSize models.Size) *models.Scene {
	tpl := layout.Resolve(p.Template)

	var book *catalog.Book
	if p.Book != "" && books != nil {
		book, _ = books.Lookup(p.Book)
	}

	scene := &models.Scene{
		ID:        uuid.NewString(),
		Template:  tpl.ID,
		Book:      p.Book,
		Rows:      tpl.Rows,
		Cols:      tpl.Cols,
		CellSize:  cellSize,
		Cells:     make([]*models.PageCell, 0, len(tpl.Slots)),
		CreatedAt: time.Now(),
	}

	for i, slot := range tpl.Slots {
		cell := &models.PageCell{
			Page:     slot.Page,
			Row:      slot.Row,
			Col:      slot.Col,
			Rotation: int(slot.Rotation),
			Active:   i == 0,
			Elements: []*models.Element{},
		}
		if text := p.textFor(slot, book); text != "" {
			el := &models.Element{
				ID:       newElementID(),
				Kind:     models.KindText,
				Width:    cellSize.Width * seededTextWidth,
				Rotation: cell.Rotation,
				Editable: true,
				Align:    "center",
				Text:     text,
			}
			manipulate.Wrap(el, cellSize)
			cell.Elements = append(cell.Elements, el)
		} else {
			cell.Label = slot.Page
		}
		scene.Cells = append(scene.Cells, cell)
	}

	return scene
}

func newElementID() string {
	return fmt.Sprintf("el_%s", uuid.NewString()[:8])
}
