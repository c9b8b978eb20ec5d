package api

import (
	"context"
	"net/http"

	"github.com/inourx99/Englishcompition/internal/domain/projection"
)

// GalleryDependencies defines the interface for gallery reads.
type GalleryDependencies interface {
	Gallery(ctx context.Context) []projection.GalleryItem
}

// GalleryHandler handles gallery requests.
type GalleryHandler struct {
	deps GalleryDependencies
}

// NewGalleryHandler creates a new gallery handler.
func NewGalleryHandler(deps GalleryDependencies) *GalleryHandler {
	return &GalleryHandler{deps: deps}
}

// HandleGetGallery handles GET /gallery.
func (h *GalleryHandler) HandleGetGallery(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Gallery(r.Context()))
}
