package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/booklet/internal/catalog"
	"github.com/lehigh-university-libraries/booklet/internal/layout"
	"github.com/lehigh-university-libraries/booklet/internal/models"
	"github.com/lehigh-university-libraries/booklet/internal/pdfexport"
)

type editorPage struct {
	Scene     *models.Scene
	Templates []string
	Catalog   *catalog.Catalog
}

// HandleEditorPage opens a new scene for the query's template, book and
// textN values and renders the editor around it.
func (h *Handler) HandleEditorPage(w http.ResponseWriter, r *http.Request) {
	ed := h.newScene(r)
	h.render(w, "editor.gohtml", editorPage{
		Scene:     ed.Snapshot(),
		Templates: layout.IDs(),
		Catalog:   h.catalog,
	})
}

func (h *Handler) HandleCatalogPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, "catalog.gohtml", h.catalog)
}

func (h *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.catalog)
}

// HandleBookPDF serves /books/{key}.pdf.
func (h *Handler) HandleBookPDF(w http.ResponseWriter, r *http.Request) {
	key, ok := strings.CutSuffix(r.PathValue("file"), ".pdf")
	if !ok {
		http.NotFound(w, r)
		return
	}
	book, err := h.catalog.Book(key)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusNotFound)
		return
	}

	data, err := h.exporter.Book(book)
	if err != nil {
		slog.Error("Failed to export book", "book", key, "err", err)
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
		return
	}
	h.writePDF(w, pdfexport.Filename(key), data)
}
