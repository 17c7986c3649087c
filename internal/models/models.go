package models

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// ElementKind distinguishes text boxes from images
type ElementKind string

const (
	KindText  ElementKind = "text"
	KindImage ElementKind = "image"
)

// Size is a width and height in CSS pixels
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Element is a text box or image placed on a page cell. Left/Top locate the
// element center relative to the cell's top-left corner; a zero Height means
// the height follows the content.
type Element struct {
	ID       string      `json:"id"`
	Kind     ElementKind `json:"kind"`
	Left     float64     `json:"left"`
	Top      float64     `json:"top"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Rotation int         `json:"rotation"`
	Editable bool        `json:"editable"`
	Align    string      `json:"align,omitempty"`

	Text string `json:"text,omitempty"`

	ImageData   []byte `json:"-"`
	ImageType   string `json:"image_type,omitempty"` // MIME type
	ImageWidth  int    `json:"image_width,omitempty"`
	ImageHeight int    `json:"image_height,omitempty"`
}

// DataURL returns the image as a data: URL for the editor view
func (e *Element) DataURL() string {
	if e.Kind != KindImage || len(e.ImageData) == 0 {
		return ""
	}
	return "data:" + e.ImageType + ";base64," + base64.StdEncoding.EncodeToString(e.ImageData)
}

// MarshalJSON adds the image data URL as "src"
func (e *Element) MarshalJSON() ([]byte, error) {
	type element Element
	return json.Marshal(struct {
		*element
		Src string `json:"src,omitempty"`
	}{(*element)(e), e.DataURL()})
}

// Clone returns a copy of the element. Image bytes are shared, they are
// never modified after upload.
func (e *Element) Clone() *Element {
	c := *e
	return &c
}

// PageCell is one logical page in the grid
type PageCell struct {
	Page     string     `json:"page"`
	Row      int        `json:"row"`
	Col      int        `json:"col"`
	Rotation int        `json:"rotation"`
	Active   bool       `json:"active"`
	Label    string     `json:"label,omitempty"` // page-number label shown when the page has no text
	Elements []*Element `json:"elements"`
}

// Scene is the editor state for one booklet
type Scene struct {
	ID        string      `json:"id"`
	Template  string      `json:"template"`
	Book      string      `json:"book,omitempty"`
	Rows      int         `json:"rows"`
	Cols      int         `json:"cols"`
	CellSize  Size        `json:"cell_size"`
	Cells     []*PageCell `json:"cells"`
	CreatedAt time.Time   `json:"created_at"`
}

// ActiveIndex returns the index of the active cell, or -1
func (s *Scene) ActiveIndex() int {
	for i, c := range s.Cells {
		if c.Active {
			return i
		}
	}
	return -1
}

// Element finds an element and the cell that owns it
func (s *Scene) Element(id string) (*PageCell, *Element) {
	for _, c := range s.Cells {
		for _, e := range c.Elements {
			if e.ID == id {
				return c, e
			}
		}
	}
	return nil, nil
}

// Clone returns a deep copy, safe to hand out while the original keeps changing
func (s *Scene) Clone() *Scene {
	out := *s
	out.Cells = make([]*PageCell, len(s.Cells))
	for i, c := range s.Cells {
		cell := *c
		cell.Elements = make([]*Element, len(c.Elements))
		for j, e := range c.Elements {
			cell.Elements[j] = e.Clone()
		}
		out.Cells[i] = &cell
	}
	return &out
}
