// Package site serves the embedded scoreboard page.
package site

import (
	"net/http"
)

// Register attaches the scoreboard page to mux at /.
func Register(mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("GET /", NewRootHandler())
}

// RootHandler serves the embedded static files. Unknown paths are 404.
type RootHandler struct {
	files http.Handler
}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{files: http.FileServer(FS())}
}

// ServeHTTP serves GET / and the page assets.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	h.files.ServeHTTP(w, r)
}
