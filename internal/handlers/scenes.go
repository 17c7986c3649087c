package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/booklet/internal/editor"
	"github.com/lehigh-university-libraries/booklet/internal/manipulate"
	"github.com/lehigh-university-libraries/booklet/internal/models"
	"github.com/lehigh-university-libraries/booklet/internal/pdfexport"
)

// SceneSummary is the listing entry of an open scene.
type SceneSummary struct {
	ID       string `json:"id"`
	Template string `json:"template"`
	Book     string `json:"book,omitempty"`
}

func (h *Handler) HandleScenes(w http.ResponseWriter, r *http.Request) {
	scenes := h.scenes.GetAll()
	list := make([]SceneSummary, 0, len(scenes))
	for _, id := range h.scenes.IDs() {
		ed, ok := scenes[id]
		if !ok {
			continue
		}
		p := ed.Params()
		list = append(list, SceneSummary{ID: id, Template: p.Template, Book: p.Book})
	}
	h.writeJSON(w, list)
}

func (h *Handler) HandleCreateScene(w http.ResponseWriter, r *http.Request) {
	ed := h.newScene(r)
	h.writeJSONStatus(w, http.StatusCreated, ed.Snapshot())
}

func (h *Handler) HandleSceneDetail(w http.ResponseWriter, r *http.Request) {
	ed, ok := h.getSceneOrError(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, ed.Snapshot())
}

func (h *Handler) HandleDeleteScene(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.getSceneOrError(w, r); !ok {
		return
	}
	h.scenes.Delete(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// HandleRerender replaces the scene with a fresh render of the query's
// template, book and textN values. Added elements are dropped.
func (h *Handler) HandleRerender(w http.ResponseWriter, r *http.Request) {
	ed, ok := h.getSceneOrError(w, r)
	if !ok {
		return
	}
	ed.Rerender(editor.ParseParams(r.URL.Query()))
	h.writeJSON(w, ChangeResponse{Changed: true, Scene: ed.Snapshot()})
}

func (h *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	ed, ok := h.getSceneOrError(w, r)
	if !ok {
		return
	}
	var request struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	changed := ed.Activate(request.Index)
	h.writeJSON(w, ChangeResponse{Changed: changed, Scene: ed.Snapshot()})
}

func (h *Handler) HandleAddText(w http.ResponseWriter, r *http.Request) {
	ed, ok := h.getSceneOrError(w, r)
	if !ok {
		return
	}
	el := ed.AddText()
	h.writeJSON(w, ChangeResponse{Changed: el != nil, Element: el, Scene: ed.Snapshot()})
}

func (h *Handler) HandleUpdateElement(w http.ResponseWriter, r *http.Request) {
	ed, ok := h.getSceneOrError(w, r)
	if !ok {
		return
	}
	var request struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	err := ed.SetText(r.PathValue("eid"), request.Text)
	switch {
	case errors.Is(err, editor.ErrElementNotFound):
		h.writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, editor.ErrNotEditable):
		h.writeError(w, err.Error(), http.StatusConflict)
	case err != nil:
		h.writeError(w, err.Error(), http.StatusInternalServerError)
	default:
		h.writeJSON(w, ChangeResponse{Changed: true, Scene: ed.Snapshot()})
	}
}

func (h *Handler) HandleDeleteElement(w http.ResponseWriter, r *http.Request) {
	ed, ok := h.getSceneOrError(w, r)
	if !ok {
		return
	}
	if err := ed.Remove(r.PathValue("eid")); err != nil {
		h.writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	h.writeJSON(w, ChangeResponse{Changed: true, Scene: ed.Snapshot()})
}

// GestureRequest is a pointer event forwarded by the editor page.
type GestureRequest struct {
	ElementID string            `json:"element_id"`
	Target    manipulate.Target `json:"target"`
	X         float64           `json:"x"`
	Y         float64           `json:"y"`
	Measured  models.Size       `json:"measured"`
}

type GestureResponse struct {
	Started bool            `json:"started"`
	Mode    manipulate.Mode `json:"mode,omitempty"`
	Ended   bool            `json:"ended,omitempty"`
	Element *models.Element `json:"element,omitempty"`
}

func (h *Handler) HandleGestureBegin(w http.ResponseWriter, r *http.Request) {
	ed, ok := h.getSceneOrError(w, r)
	if !ok {
		return
	}
	var request GestureRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if request.Target == "" {
		request.Target = manipulate.TargetContent
	}

	mode, err := ed.Press(request.ElementID, manipulate.Point{X: request.X, Y: request.Y}, request.Target, request.Measured)
	switch {
	case errors.Is(err, manipulate.ErrEditableTarget):
		// presses on editable text place the caret instead
		h.writeJSON(w, GestureResponse{Started: false})
	case errors.Is(err, editor.ErrElementNotFound):
		h.writeError(w, err.Error(), http.StatusNotFound)
	case err != nil:
		h.writeError(w, err.Error(), http.StatusBadRequest)
	default:
		h.writeJSON(w, GestureResponse{Started: true, Mode: mode})
	}
}

func (h *Handler) HandleGestureMove(w http.ResponseWriter, r *http.Request) {
	ed, ok := h.getSceneOrError(w, r)
	if !ok {
		return
	}
	var request GestureRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	el, err := ed.Move(manipulate.Point{X: request.X, Y: request.Y})
	if errors.Is(err, manipulate.ErrNoSession) {
		h.writeError(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, GestureResponse{Started: true, Element: el})
}

func (h *Handler) HandleGestureEnd(w http.ResponseWriter, r *http.Request) {
	ed, ok := h.getSceneOrError(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, GestureResponse{Ended: ed.Release()})
}

// HandleScenePDF prints the scene's placed elements.
func (h *Handler) HandleScenePDF(w http.ResponseWriter, r *http.Request) {
	ed, ok := h.getSceneOrError(w, r)
	if !ok {
		return
	}
	scene := ed.Snapshot()
	data, err := h.exporter.Scene(scene)
	if err != nil {
		slog.Error("Failed to print scene", "scene_id", scene.ID, "err", err)
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
		return
	}
	h.writePDF(w, pdfexport.Filename(scene.Book), data)
}
