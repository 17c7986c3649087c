package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lehigh-university-libraries/booklet/internal/images"
	"github.com/lehigh-university-libraries/booklet/internal/manipulate"
	"github.com/lehigh-university-libraries/booklet/internal/models"
)

var (
	ErrNoCell          = errors.New("page cell not found")
	ErrElementNotFound = errors.New("element not found")
	ErrNotEditable     = errors.New("element is not editable text")
)

// Editor is one open booklet: its scene plus the gesture state of the
// element manipulator. All methods are safe for concurrent use.
type Editor struct {
	mu       sync.Mutex
	scene    *models.Scene
	params   Params
	books    Books
	gestures *manipulate.Manipulator
}

// New renders a scene for p and wraps it in an Editor.
func New(p Params, books Books, cellSize models.Size) *Editor {
	return &Editor{
		scene:    Render(p, books, cellSize),
		params:   p,
		books:    books,
		gestures: manipulate.New(),
	}
}

// ID returns the scene id.
func (e *Editor) ID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene.ID
}

// Params returns the parameters the scene was rendered from.
func (e *Editor) Params() Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// Snapshot returns a copy of the scene.
func (e *Editor) Snapshot() *models.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene.Clone()
}

// Rerender replaces the whole scene with a fresh render of p, keeping the id.
func (e *Editor) Rerender(p Params) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.scene.ID
	e.gestures.End()
	e.scene = Render(p, e.books, e.scene.CellSize)
	e.scene.ID = id
	e.params = p
}

// Activate makes cell i the only active cell. Out-of-range indices are ignored.
func (e *Editor) Activate(i int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.scene.Cells) {
		return false
	}
	for j, c := range e.scene.Cells {
		c.Active = j == i
	}
	return true
}

// targetCell returns the active cell, activating the first cell when none
// is active. It returns nil for a scene without cells.
func (e *Editor) targetCell() *models.PageCell {
	if i := e.scene.ActiveIndex(); i >= 0 {
		return e.scene.Cells[i]
	}
	if len(e.scene.Cells) == 0 {
		return nil
	}
	cell := e.scene.Cells[0]
	cell.Active = true
	return cell
}

// AddText places an editable "Edit me..." text box in the active cell.
// It returns nil when there is no cell to add to.
func (e *Editor) AddText() *models.Element {
	e.mu.Lock()
	defer e.mu.Unlock()

	cell := e.targetCell()
	if cell == nil {
		return nil
	}
	el := &models.Element{
		ID:       newElementID(),
		Kind:     models.KindText,
		Width:    e.scene.CellSize.Width * addedTextWidth,
		Rotation: cell.Rotation,
		Editable: true,
		Text:     placeholderText,
	}
	manipulate.Wrap(el, e.scene.CellSize)
	cell.Elements = append(cell.Elements, el)
	return el.Clone()
}

// AddImage places an uploaded image in the active cell. Empty or non-image
// data leaves the scene unchanged and returns images.ErrNotImage.
func (e *Editor) AddImage(data []byte) (*models.Element, error) {
	info, err := images.Inspect(data)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	cell := e.targetCell()
	if cell == nil {
		return nil, ErrNoCell
	}
	el := &models.Element{
		ID:          newElementID(),
		Kind:        models.KindImage,
		Width:       imageWidth,
		Rotation:    cell.Rotation,
		ImageData:   data,
		ImageType:   info.MIME,
		ImageWidth:  info.Width,
		ImageHeight: info.Height,
	}
	manipulate.Wrap(el, e.scene.CellSize)
	cell.Elements = append(cell.Elements, el)
	slog.Debug("Image placed", "scene_id", e.scene.ID, "page", cell.Page, "type", info.MIME, "width", info.Width, "height", info.Height)
	return el.Clone(), nil
}

// SetText replaces the text of an editable text element.
func (e *Editor) SetText(id, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, el := e.scene.Element(id)
	if el == nil {
		return fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	if el.Kind != models.KindText || !el.Editable {
		return fmt.Errorf("%w: %s", ErrNotEditable, id)
	}
	el.Text = text
	return nil
}

// Remove deletes an element from its cell.
func (e *Editor) Remove(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cell, el := e.scene.Element(id)
	if el == nil {
		return fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	e.gestures.Forget(el)
	for i, c := range cell.Elements {
		if c == el {
			cell.Elements = append(cell.Elements[:i], cell.Elements[i+1:]...)
			break
		}
	}
	return nil
}

// Press starts a drag or resize on an element.
func (e *Editor) Press(id string, p manipulate.Point, target manipulate.Target, measured models.Size) (manipulate.Mode, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, el := e.scene.Element(id)
	if el == nil {
		return "", fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	s, err := e.gestures.Press(el, p, target, measured)
	if err != nil {
		return "", err
	}
	return s.Mode, nil
}

// Move feeds a pointer move to the active gesture and returns the updated element.
func (e *Editor) Move(p manipulate.Point) (*models.Element, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.gestures.Move(p); err != nil {
		return nil, err
	}
	return e.gestures.Active().Element.Clone(), nil
}

// Release ends the active gesture.
func (e *Editor) Release() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gestures.End()
}
