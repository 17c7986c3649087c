package layout

import "fmt"

// RoleKind selects typography and fallback text for a slot.
type RoleKind int

const (
	RoleTitle RoleKind = iota
	RoleStory
	RoleEnding
)

// Role is the part of a book a slot prints.
type Role struct {
	Kind RoleKind
	// Index is the 1-based story page number for RoleStory.
	Index int
}

func Title() Role { return Role{Kind: RoleTitle} }

func Ending() Role { return Role{Kind: RoleEnding} }

func Story(n int) Role { return Role{Kind: RoleStory, Index: n} }

// IsStory reports whether the role prints story body text.
func (r Role) IsStory() bool { return r.Kind == RoleStory }

// Key is the book field the role reads: Cover, StoryN or TheEnd.
func (r Role) Key() string {
	switch r.Kind {
	case RoleTitle:
		return "Cover"
	case RoleEnding:
		return "TheEnd"
	default:
		return fmt.Sprintf("Story%d", r.Index)
	}
}

// Fallback is printed when the book has no text for the role.
func (r Role) Fallback() string {
	switch r.Kind {
	case RoleTitle:
		return "Title Page"
	case RoleEnding:
		return "The End!"
	default:
		return fmt.Sprintf("Story Page %d", r.Index)
	}
}
