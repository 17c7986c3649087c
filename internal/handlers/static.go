package handlers

import (
	"net/http"
)

// HandleStatic serves the editor's embedded script and stylesheet.
func (h *Handler) HandleStatic() http.Handler {
	return http.StripPrefix("/static/", http.FileServerFS(h.static))
}
