// Package manipulate moves and resizes placed elements from pointer input.
//
// An element is first wrapped into a positioning container centered in its
// cell. A Manipulator then owns at most one gesture Session: pressing the
// content starts a drag, pressing the resize handle starts a resize, and
// every pointer move applies the raw pixel delta. Elements are not clamped
// to their cell.
package manipulate

import (
	"errors"

	"github.com/lehigh-university-libraries/booklet/internal/models"
)

const (
	// DefaultWidth is used when the wrapped element has no width of its own.
	DefaultWidth = 150.0
	// DefaultAutoHeight seeds a resize of an auto-height element when the
	// client did not report a measured height.
	DefaultAutoHeight = 30.0
	// MinSize keeps a resized container from collapsing to nothing.
	MinSize = 1.0
)

var (
	ErrEditableTarget = errors.New("press landed on editable text")
	ErrNoSession      = errors.New("no active gesture")
)

// Point is a pointer position in CSS pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Target is the part of the container a press landed on.
type Target string

const (
	TargetContent   Target = "content"
	TargetEditable  Target = "editable"
	TargetContainer Target = "container"
	TargetHandle    Target = "handle"
)

// Mode is the kind of gesture in progress.
type Mode string

const (
	ModeDrag   Mode = "drag"
	ModeResize Mode = "resize"
)

// Wrap centers el in a cell of the given size and gives it a container
// width. Height stays as-is, zero meaning auto.
func Wrap(el *models.Element, cell models.Size) {
	el.Left = cell.Width / 2
	el.Top = cell.Height / 2
	if el.Width <= 0 {
		el.Width = DefaultWidth
	}
	if el.Height < 0 {
		el.Height = 0
	}
}

// Session is one drag or resize gesture.
type Session struct {
	Mode    Mode
	Element *models.Element

	last   Point // drag: previous pointer position
	origin Point // resize: press position
	startW float64
	startH float64
}

func (s *Session) move(p Point) {
	switch s.Mode {
	case ModeDrag:
		s.Element.Left += p.X - s.last.X
		s.Element.Top += p.Y - s.last.Y
		s.last = p
	case ModeResize:
		s.Element.Width = max(MinSize, s.startW+p.X-s.origin.X)
		s.Element.Height = max(MinSize, s.startH+p.Y-s.origin.Y)
	}
}

// Manipulator tracks the single active gesture of one scene.
type Manipulator struct {
	session *Session
}

func New() *Manipulator {
	return &Manipulator{}
}

// Active returns the gesture in progress, or nil.
func (m *Manipulator) Active() *Session {
	return m.session
}

// Press dispatches a pointer press on el. A press on the resize handle
// starts a resize and never a drag; a press on editable text is left to
// text selection and returns ErrEditableTarget.
func (m *Manipulator) Press(el *models.Element, p Point, target Target, measured models.Size) (*Session, error) {
	switch target {
	case TargetHandle:
		return m.BeginResize(el, p, measured), nil
	case TargetEditable:
		return nil, ErrEditableTarget
	default:
		return m.BeginDrag(el, p), nil
	}
}

// BeginDrag starts dragging el from pointer position p, replacing any
// gesture already in progress.
func (m *Manipulator) BeginDrag(el *models.Element, p Point) *Session {
	m.session = &Session{Mode: ModeDrag, Element: el, last: p}
	return m.session
}

// BeginResize starts resizing el from pointer position p. measured carries
// the rendered container size when the client knows it; otherwise the model
// size is used, with DefaultAutoHeight standing in for an auto height.
func (m *Manipulator) BeginResize(el *models.Element, p Point, measured models.Size) *Session {
	w, h := measured.Width, measured.Height
	if w <= 0 {
		w = el.Width
	}
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = el.Height
	}
	if h <= 0 {
		h = DefaultAutoHeight
	}
	m.session = &Session{Mode: ModeResize, Element: el, origin: p, startW: w, startH: h}
	return m.session
}

// Move applies a pointer move to the active gesture.
func (m *Manipulator) Move(p Point) error {
	if m.session == nil {
		return ErrNoSession
	}
	m.session.move(p)
	return nil
}

// End releases the active gesture. It reports whether one was active.
func (m *Manipulator) End() bool {
	active := m.session != nil
	m.session = nil
	return active
}

// Forget ends the gesture if it manipulates el, used when el is removed.
func (m *Manipulator) Forget(el *models.Element) {
	if m.session != nil && m.session.Element == el {
		m.session = nil
	}
}
