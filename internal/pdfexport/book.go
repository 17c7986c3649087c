package pdfexport

import (
	"strings"

	"github.com/lehigh-university-libraries/booklet/internal/layout"
)

const (
	headingSize    = 24.0
	headingLeading = headingSize * 1.2
	storySize      = 12.0
	storyLeading   = 15.0
	storyMargin    = 20.0 // from the reading-bottom edge of the cell
	textInset      = 40.0 // cell width minus wrap width
)

// BookText supplies the text of a book field (Cover, Story1.., TheEnd).
type BookText interface {
	PageText(name string) string
}

// Line is one laid-out line of text, positioned by its baseline start.
type Line struct {
	Text string
	X    float64
	Y    float64
}

// Placement is the text of one slot on the printed sheet.
type Placement struct {
	Page     string
	Role     layout.Role
	Face     Face
	Size     float64
	Rotation layout.Rotation
	Lines    []Line
}

// LayoutBook positions the text of every slot of the print sheet. Missing
// fields fall back to the role's default text.
func LayoutBook(book BookText, m Measurer) []Placement {
	tpl := layout.PrintSheet()
	sheet := layout.NewSheet(tpl)

	placements := make([]Placement, 0, len(tpl.Slots))
	for _, slot := range tpl.Slots {
		text := ""
		if book != nil {
			text = book.PageText(slot.Role.Key())
		}
		if strings.TrimSpace(text) == "" {
			text = slot.Role.Fallback()
		}
		placements = append(placements, placeSlot(m, slot, sheet.SlotRect(slot), text))
	}
	return placements
}

// placeSlot lays out text in one cell. Upright cells read bottom-up in page
// space; inverted cells are turned 180° so every x mirrors around the cell
// center and every y is measured from the opposite edge. Story text sits on
// the reading-bottom margin and grows toward the reading top; titles and
// endings are centered both ways.
func placeSlot(m Measurer, slot layout.Slot, cell layout.Rect, text string) Placement {
	p := Placement{
		Page:     slot.Page,
		Role:     slot.Role,
		Face:     TimesBold,
		Size:     headingSize,
		Rotation: slot.Rotation,
	}
	leading := headingLeading
	if slot.Role.IsStory() {
		p.Face = Helvetica
		p.Size = storySize
		leading = storyLeading
	}

	m.SetFont(p.Face, p.Size)
	lines := wrapLines(m, text, cell.W-textInset)
	n := float64(len(lines))

	// page-space direction of "down" in reading order
	down := -1.0
	if slot.Rotation == layout.Inverted {
		down = 1.0
	}

	cx, cy := cell.Center()
	var first float64
	if slot.Role.IsStory() {
		anchor := cell.Y + storyMargin
		if slot.Rotation == layout.Inverted {
			anchor = cell.Y + cell.H - storyMargin
		}
		first = anchor - down*(n-1)*leading
	} else {
		h := p.Face.Height(p.Size)
		first = cy + down*h/2 - down*(n-1)*leading/2
	}

	for i, line := range lines {
		w := m.TextWidth(line)
		p.Lines = append(p.Lines, Line{
			Text: line,
			X:    cx + down*w/2,
			Y:    first + down*float64(i)*leading,
		})
	}
	return p
}

// drawPlacements renders laid-out text, turning inverted lines around their
// own baseline start.
func drawPlacements(cv Canvas, placements []Placement) {
	for _, p := range placements {
		cv.SetFont(p.Face, p.Size)
		for _, line := range p.Lines {
			if p.Rotation == layout.Inverted {
				cv.Rotate(float64(layout.Inverted), line.X, line.Y, func() {
					cv.Text(line.X, line.Y, line.Text)
				})
				continue
			}
			cv.Text(line.X, line.Y, line.Text)
		}
	}
}

// wrapLines breaks text into lines no wider than maxWidth. Explicit
// newlines start a new line; a single word wider than maxWidth gets a line
// of its own.
func wrapLines(m Measurer, text string, maxWidth float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		current := words[0]
		for _, w := range words[1:] {
			candidate := current + " " + w
			if m.TextWidth(candidate) > maxWidth {
				lines = append(lines, current)
				current = w
				continue
			}
			current = candidate
		}
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}
