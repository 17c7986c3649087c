package pdfexport

import "io"

// Face is a standard PDF font with the AFM vertical metrics used to size
// text boxes. Metrics are in 1/1000 em.
type Face struct {
	Family    string
	Style     string
	Ascender  float64
	Descender float64
}

var (
	TimesBold = Face{Family: "Times", Style: "B", Ascender: 683, Descender: -217}
	Helvetica = Face{Family: "Helvetica", Style: "", Ascender: 718, Descender: -207}
)

// Height returns the ascender-to-descender height at size.
func (f Face) Height(size float64) float64 {
	return (f.Ascender - f.Descender) / 1000 * size
}

// Ascent returns the baseline-to-ascender distance at size.
func (f Face) Ascent(size float64) float64 {
	return f.Ascender / 1000 * size
}

// Measurer measures text in the current font.
type Measurer interface {
	SetFont(face Face, size float64)
	TextWidth(text string) float64
}

// Canvas is the drawing surface of one landscape sheet. Coordinates are PDF
// user space in points: origin at the bottom-left, y growing upward. Text
// is placed by its baseline start.
type Canvas interface {
	Measurer
	Text(x, y float64, text string)
	// Image draws with (x, y) as the bottom-left corner of the picture.
	Image(data []byte, mime string, x, y, w, h float64) error
	// Rotate runs draw with the coordinate system turned counter-clockwise
	// by angle degrees around (x, y).
	Rotate(angle, x, y float64, draw func())
	Output(w io.Writer) error
}
