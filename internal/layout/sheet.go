package layout

// PaperSize is a sheet size in points (1" = 72pt).
type PaperSize struct {
	Name   string
	Width  float64
	Height float64
}

var Letter = PaperSize{Name: "Letter", Width: 8.5 * 72, Height: 11 * 72}

// Landscape returns the size with width and height ordered for landscape.
func (p PaperSize) Landscape() PaperSize {
	if p.Width < p.Height {
		p.Width, p.Height = p.Height, p.Width
	}
	return p
}

// Rect is an axis-aligned rectangle in PDF user space: origin at the
// bottom-left of the sheet, y growing upward.
type Rect struct {
	X, Y, W, H float64
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Sheet divides a paper size into a template's grid.
type Sheet struct {
	Paper PaperSize
	Rows  int
	Cols  int
}

// NewSheet lays the template grid over a landscape Letter sheet.
func NewSheet(t *Template) Sheet {
	return Sheet{Paper: Letter.Landscape(), Rows: t.Rows, Cols: t.Cols}
}

// CellSize returns the width and height of one grid cell.
func (s Sheet) CellSize() (float64, float64) {
	return s.Paper.Width / float64(s.Cols), s.Paper.Height / float64(s.Rows)
}

// Cell returns the rectangle of the cell at row, col. Row 0 is the top row.
func (s Sheet) Cell(row, col int) Rect {
	w, h := s.CellSize()
	return Rect{
		X: float64(col) * w,
		Y: float64(s.Rows-1-row) * h,
		W: w,
		H: h,
	}
}

// SlotRect returns the cell rectangle of a slot.
func (s Sheet) SlotRect(slot Slot) Rect {
	return s.Cell(slot.Row, slot.Col)
}
