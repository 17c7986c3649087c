// Package layout holds the booklet templates: the order of logical pages on
// the printed sheet, the rotation of each slot, and the text role each slot
// plays. The editor and the PDF exporter both read from here so the screen
// and the printout cannot disagree about which pages are upside down.
package layout

import (
	"errors"
	"fmt"
)

// Template identifiers accepted in the `template` query parameter.
const (
	EightPage = "8-page"
	FourPage  = "4-page"

	DefaultTemplate = EightPage
)

// ErrUnknownTemplate is returned by Lookup for identifiers that name no template.
var ErrUnknownTemplate = errors.New("unknown template")

// Rotation is the orientation of a slot on the printed sheet, in degrees.
type Rotation int

const (
	Upright  Rotation = 0
	Inverted Rotation = 180
)

// Slot is one logical page placed in the template grid.
type Slot struct {
	Page     string
	Row      int
	Col      int
	Rotation Rotation
	Role     Role
}

// Template is a fixed booklet layout.
type Template struct {
	ID    string
	Rows  int
	Cols  int
	Slots []Slot

	// textN query parameter -> page name
	overridePage func(n int) string
}

var eightPage = newTemplate(EightPage, 2, 4, []Slot{
	{Page: "Page 5", Rotation: Inverted, Role: Story(4)},
	{Page: "Page 6", Rotation: Inverted, Role: Story(5)},
	{Page: "Page 7", Rotation: Inverted, Role: Story(6)},
	{Page: "Back Cover", Rotation: Inverted, Role: Ending()},
	{Page: "Page 4", Rotation: Upright, Role: Story(3)},
	{Page: "Page 3", Rotation: Upright, Role: Story(2)},
	{Page: "Page 2", Rotation: Upright, Role: Story(1)},
	{Page: "Page 1", Rotation: Upright, Role: Title()},
}, func(n int) string {
	switch n {
	case 1:
		return "Cover"
	case 8:
		return "Back Cover"
	default:
		return fmt.Sprintf("Page %d", n-1)
	}
})

var fourPage = newTemplate(FourPage, 2, 2, []Slot{
	{Page: "Page 4", Rotation: Inverted, Role: Ending()},
	{Page: "Cover", Rotation: Upright, Role: Title()},
	{Page: "Page 2", Rotation: Upright, Role: Story(1)},
	{Page: "Page 3", Rotation: Upright, Role: Story(2)},
}, func(n int) string {
	if n == 1 {
		return "Cover"
	}
	return fmt.Sprintf("Page %d", n)
})

var templates = map[string]*Template{
	EightPage: eightPage,
	FourPage:  fourPage,
}

func init() {
	for _, t := range templates {
		if err := t.Validate(); err != nil {
			panic(err)
		}
	}
}

func newTemplate(id string, rows, cols int, slots []Slot, overridePage func(int) string) *Template {
	for i := range slots {
		slots[i].Row = i / cols
		slots[i].Col = i % cols
	}
	return &Template{ID: id, Rows: rows, Cols: cols, Slots: slots, overridePage: overridePage}
}

// Lookup returns the template registered under id.
func Lookup(id string) (*Template, error) {
	t, ok := templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
	}
	return t, nil
}

// Resolve returns the template for id, falling back to the default template.
func Resolve(id string) *Template {
	if t, err := Lookup(id); err == nil {
		return t
	}
	return templates[DefaultTemplate]
}

// IDs lists the known template identifiers in a stable order.
func IDs() []string {
	return []string{EightPage, FourPage}
}

// PrintSheet is the physical sheet used for catalog book exports. It is
// always the 8-page layout regardless of which template the editor shows.
func PrintSheet() *Template {
	return eightPage
}

// Slot returns the slot holding the named page.
func (t *Template) Slot(page string) (Slot, bool) {
	for _, s := range t.Slots {
		if s.Page == page {
			return s, true
		}
	}
	return Slot{}, false
}

// RotationOf returns the rotation of the named page, Upright when the page
// is not part of the template.
func (t *Template) RotationOf(page string) Rotation {
	s, ok := t.Slot(page)
	if !ok {
		return Upright
	}
	return s.Rotation
}

// MaxOverrides is the highest N accepted as a textN parameter.
func (t *Template) MaxOverrides() int {
	return len(t.Slots)
}

// OverridePage maps the textN parameter number to the page name it fills.
func (t *Template) OverridePage(n int) (string, bool) {
	if n < 1 || n > t.MaxOverrides() {
		return "", false
	}
	return t.overridePage(n), true
}

// Validate checks that every slot has a rotation entry and occupies exactly
// one grid cell.
func (t *Template) Validate() error {
	if len(t.Slots) != t.Rows*t.Cols {
		return fmt.Errorf("template %s: %d slots for a %dx%d grid", t.ID, len(t.Slots), t.Rows, t.Cols)
	}
	seenPage := make(map[string]bool, len(t.Slots))
	seenCell := make(map[[2]int]bool, len(t.Slots))
	for _, s := range t.Slots {
		if s.Rotation != Upright && s.Rotation != Inverted {
			return fmt.Errorf("template %s: page %q has rotation %d", t.ID, s.Page, s.Rotation)
		}
		if seenPage[s.Page] {
			return fmt.Errorf("template %s: duplicate page %q", t.ID, s.Page)
		}
		cell := [2]int{s.Row, s.Col}
		if seenCell[cell] || s.Row >= t.Rows || s.Col >= t.Cols {
			return fmt.Errorf("template %s: page %q has invalid cell %v", t.ID, s.Page, cell)
		}
		seenPage[s.Page] = true
		seenCell[cell] = true
	}
	return nil
}
