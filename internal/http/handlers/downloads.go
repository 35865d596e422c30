package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lulatiAI/ai-image-backend/internal/store"
)

// Download handles GET /v1/downloads/{id}. Entries are served repeatedly
// until they expire.
func (a *App) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "download id required")
		return
	}
	entry, err := a.Store.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "download not found or expired")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load download")
		return
	}
	w.Header().Set("Content-Type", entry.MIME)
	w.Header().Set("Content-Disposition", "attachment; filename="+attachmentName(entry.MIME))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(entry.Data)
}
