package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Pages are served at / and form actions under /app/*.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	mux.HandleFunc("GET /{$}", h.MapPage)
	mux.HandleFunc("GET /app/markers/{id}/card", h.MarkerCard)

	mux.HandleFunc("POST /login", requireCSRF(h.Login))
	mux.HandleFunc("POST /logout", requireCSRF(h.Logout))
	mux.HandleFunc("POST /app/locations/new", requireCSRF(h.NewLocation))
	mux.HandleFunc("POST /app/markers/{id}/leave", requireCSRF(h.MarkerLeave))
	mux.HandleFunc("POST /app/markers/{id}/activate", requireCSRF(h.MarkerActivate))
	mux.HandleFunc("POST /app/draft", limitBody(maxFormBytes, requireCSRF(h.Draft)))
	mux.HandleFunc("POST /app/draft/delete/confirm", requireCSRF(h.ConfirmDelete))
	mux.HandleFunc("POST /app/draft/delete/cancel", requireCSRF(h.CancelDelete))
}
