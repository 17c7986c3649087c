package handlers

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/booklet/internal/catalog"
	"github.com/lehigh-university-libraries/booklet/internal/editor"
	"github.com/lehigh-university-libraries/booklet/internal/models"
	"github.com/lehigh-university-libraries/booklet/internal/pdfexport"
	"github.com/lehigh-university-libraries/booklet/internal/storage"
)

// DefaultUploadLimit caps image uploads at 10 MiB.
const DefaultUploadLimit = 10 << 20

//go:embed templates/*.gohtml
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

type Handler struct {
	scenes      *storage.Store[*editor.Editor]
	catalog     *catalog.Catalog
	exporter    *pdfexport.Exporter
	views       *template.Template
	static      fs.FS
	uploadLimit int64
}

// Config wires a Handler. Zero fields get defaults: the embedded catalog,
// an FPDF exporter and DefaultUploadLimit.
type Config struct {
	Catalog     *catalog.Catalog
	Exporter    *pdfexport.Exporter
	UploadLimit int64
}

func New(cfg Config) (*Handler, error) {
	if cfg.Catalog == nil {
		c, err := catalog.Default()
		if err != nil {
			return nil, err
		}
		cfg.Catalog = c
	}
	if cfg.Exporter == nil {
		cfg.Exporter = pdfexport.New()
	}
	if cfg.UploadLimit <= 0 {
		cfg.UploadLimit = DefaultUploadLimit
	}

	views, err := template.New("").Funcs(template.FuncMap{
		// uploads are decoded before they are stored, so their data URLs are trusted
		"imageSrc": func(el *models.Element) template.URL { return template.URL(el.DataURL()) },
	}).ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to open static files: %w", err)
	}

	return &Handler{
		scenes:      storage.New[*editor.Editor](),
		catalog:     cfg.Catalog,
		exporter:    cfg.Exporter,
		views:       views,
		static:      static,
		uploadLimit: cfg.UploadLimit,
	}, nil
}

// Scenes exposes the scene store, for expiry from the serve loop.
func (h *Handler) Scenes() *storage.Store[*editor.Editor] {
	return h.scenes
}

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.HandleEditorPage)
	mux.HandleFunc("GET /catalog", h.HandleCatalogPage)
	mux.HandleFunc("GET /api/catalog", h.HandleCatalog)
	mux.HandleFunc("GET /books/{file}", h.HandleBookPDF)

	mux.HandleFunc("GET /api/scenes", h.HandleScenes)
	mux.HandleFunc("POST /api/scenes", h.HandleCreateScene)
	mux.HandleFunc("GET /api/scenes/{id}", h.HandleSceneDetail)
	mux.HandleFunc("DELETE /api/scenes/{id}", h.HandleDeleteScene)
	mux.HandleFunc("POST /api/scenes/{id}/render", h.HandleRerender)
	mux.HandleFunc("POST /api/scenes/{id}/activate", h.HandleActivate)
	mux.HandleFunc("POST /api/scenes/{id}/text", h.HandleAddText)
	mux.HandleFunc("POST /api/scenes/{id}/images", h.HandleUpload)
	mux.HandleFunc("PUT /api/scenes/{id}/elements/{eid}", h.HandleUpdateElement)
	mux.HandleFunc("DELETE /api/scenes/{id}/elements/{eid}", h.HandleDeleteElement)
	mux.HandleFunc("POST /api/scenes/{id}/gestures", h.HandleGestureBegin)
	mux.HandleFunc("POST /api/scenes/{id}/gestures/move", h.HandleGestureMove)
	mux.HandleFunc("POST /api/scenes/{id}/gestures/end", h.HandleGestureEnd)
	mux.HandleFunc("GET /api/scenes/{id}/pdf", h.HandleScenePDF)

	mux.Handle("GET /static/", h.HandleStatic())
	mux.HandleFunc("GET /healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	return mux
}

// ChangeResponse reports whether an editor operation changed the scene.
type ChangeResponse struct {
	Changed bool            `json:"changed"`
	Element *models.Element `json:"element,omitempty"`
	Scene   *models.Scene   `json:"scene"`
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(append(body, '\n')); err != nil {
		slog.Error("Unable to write JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message, "status", code)
	http.Error(w, message, code)
}

// writePDF sends a finished document as a download.
func (h *Handler) writePDF(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("Unable to write PDF response", "filename", filename, "err", err)
	}
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.views.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("Unable to render template", "template", name, "err", err)
	}
}

// Scene helpers
func (h *Handler) getSceneOrError(w http.ResponseWriter, r *http.Request) (*editor.Editor, bool) {
	id := r.PathValue("id")
	ed, exists := h.scenes.Get(id)
	if !exists {
		h.writeError(w, fmt.Sprintf("%v: %s", storage.ErrSceneNotFound, id), http.StatusNotFound)
		return nil, false
	}
	return ed, true
}

func (h *Handler) newScene(r *http.Request) *editor.Editor {
	p := editor.ParseParams(r.URL.Query())
	ed := editor.New(p, h.catalog, editor.DefaultCellSize)
	h.scenes.Set(ed.ID(), ed)
	slog.Info("Scene created", "scene_id", ed.ID(), "template", p.Template, "book", p.Book)
	return ed
}
