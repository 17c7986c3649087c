package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/booklet/internal/images"
)

// HandleUpload places an uploaded picture on the active page. A request
// without a file, or with a file that is not an image, leaves the scene
// unchanged and reports changed=false.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ed, ok := h.getSceneOrError(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.uploadLimit+1<<20)
	if err := r.ParseMultipartForm(h.uploadLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			h.writeError(w, "Failed to parse upload: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		slog.Debug("Upload without file", "scene_id", ed.ID(), "err", err)
		h.writeJSON(w, ChangeResponse{Changed: false, Scene: ed.Snapshot()})
		return
	}
	defer file.Close()

	if header.Size > h.uploadLimit {
		h.writeError(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, h.uploadLimit+1))
	if err != nil {
		h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return
	}
	if int64(len(data)) > h.uploadLimit {
		h.writeError(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}

	el, err := ed.AddImage(data)
	if errors.Is(err, images.ErrNotImage) {
		slog.Info("Ignoring non-image upload", "scene_id", ed.ID(), "filename", header.Filename, "err", err)
		h.writeJSON(w, ChangeResponse{Changed: false, Scene: ed.Snapshot()})
		return
	}
	if err != nil {
		h.writeError(w, "Failed to place image: "+err.Error(), http.StatusInternalServerError)
		return
	}

	slog.Info("Image uploaded", "scene_id", ed.ID(), "filename", header.Filename, "bytes", len(data))
	h.writeJSON(w, ChangeResponse{Changed: true, Element: el, Scene: ed.Snapshot()})
}
