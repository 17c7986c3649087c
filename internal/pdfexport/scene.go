package pdfexport

import (
	"github.com/lehigh-university-libraries/booklet/internal/layout"
	"github.com/lehigh-university-libraries/booklet/internal/models"
)

const (
	// font size of editor text boxes, in CSS pixels
	sceneFontPx       = 16.0
	sceneLeadingRatio = 1.25
)

// drawScene prints every placed element of a scene. Cells follow the scene
// template's grid; element positions and sizes are scaled from the editor's
// cell size to the printed cell. Elements on inverted cells are turned
// around their own center, as the editor shows them. Page-number labels are
// editor chrome and are not printed.
func drawScene(cv Canvas, s *models.Scene) error {
	tpl := layout.Resolve(s.Template)
	sheet := layout.NewSheet(tpl)

	for _, cell := range s.Cells {
		slot, ok := tpl.Slot(cell.Page)
		if !ok {
			continue
		}
		rect := sheet.SlotRect(slot)
		sx, sy := 1.0, 1.0
		if s.CellSize.Width > 0 && s.CellSize.Height > 0 {
			sx = rect.W / s.CellSize.Width
			sy = rect.H / s.CellSize.Height
		}

		for _, el := range cell.Elements {
			cx := rect.X + el.Left*sx
			cy := rect.Y + rect.H - el.Top*sy

			var err error
			draw := func() {
				switch el.Kind {
				case models.KindText:
					drawTextElement(cv, el, cx, cy, sx, sy)
				case models.KindImage:
					err = drawImageElement(cv, el, cx, cy, sx, sy)
				}
			}
			if el.Rotation == int(layout.Inverted) {
				cv.Rotate(float64(layout.Inverted), cx, cy, draw)
			} else {
				draw()
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func drawTextElement(cv Canvas, el *models.Element, cx, cy, sx, sy float64) {
	size := sceneFontPx * sy
	leading := size * sceneLeadingRatio
	w := el.Width * sx

	cv.SetFont(Helvetica, size)
	lines := wrapLines(cv, el.Text, w)

	h := el.Height * sy
	if h <= 0 {
		h = float64(len(lines)) * leading
	}
	top := cy + h/2
	for i, line := range lines {
		x := cx - w/2
		if el.Align == "center" {
			x = cx - cv.TextWidth(line)/2
		}
		cv.Text(x, top-Helvetica.Ascent(size)-float64(i)*leading, line)
	}
}

func drawImageElement(cv Canvas, el *models.Element, cx, cy, sx, sy float64) error {
	w := el.Width * sx
	h := el.Height * sy
	if h <= 0 {
		// auto height keeps the picture's aspect ratio
		h = w
		if el.ImageWidth > 0 && el.ImageHeight > 0 {
			h = w * float64(el.ImageHeight) / float64(el.ImageWidth)
		}
	}
	return cv.Image(el.ImageData, el.ImageType, cx-w/2, cy-h/2, w, h)
}
