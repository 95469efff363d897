package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/mytravellog/internal/domain/model"
	"github.com/ericfisherdev/mytravellog/internal/domain/port/driven"
)

// Snapshot is the read side of the location cache.
type Snapshot interface {
	Refresh(ctx context.Context) error
	Current() []model.Location
}

// SessionState reports whether a session token is held.
type SessionState interface {
	IsAuthenticated(ctx context.Context) bool
}

// Handler is the HTTP driving adapter that serves the JSON API.
type Handler struct {
	cache   Snapshot
	session SessionState
	metrics http.Handler
	logger  *slog.Logger
}

// NewHandler creates a Handler. metrics may be nil, in which case /metrics
// is not registered.
func NewHandler(cache Snapshot, session SessionState, metrics http.Handler, logger *slog.Logger) *Handler {
	return &Handler{
		cache:   cache,
		session: session,
		metrics: metrics,
		logger:  logger,
	}
}

// RegisterAPIRoutes registers the JSON API on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/session", h.Session)
	mux.HandleFunc("GET /api/v1/locations", h.ListLocations)
	mux.HandleFunc("POST /api/v1/locations/refresh", h.RefreshLocations)

	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics)
	}
}

// ApplyMiddleware wraps next with logging and recovery middleware.
func ApplyMiddleware(next http.Handler, logger *slog.Logger) http.Handler {
	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, next)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// NewServeMux creates an http.Handler with the API routes registered and
// wrapped with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h)
	return ApplyMiddleware(mux, logger)
}

// ListLocations returns the cached snapshot without contacting the store.
func (h *Handler) ListLocations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toLocationResponses(h.cache.Current()))
}

// RefreshLocations reloads the cache from the store and returns the new snapshot.
func (h *Handler) RefreshLocations(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Refresh(r.Context()); err != nil {
		h.logger.Error("failed to refresh locations", "error", err)
		writeError(w, statusFor(err), driven.UserMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, toLocationResponses(h.cache.Current()))
}

// Session reports whether a session token is held.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SessionResponse{
		Authenticated: h.session.IsAuthenticated(r.Context()),
	})
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// statusFor maps a store error kind onto the status returned to API callers.
func statusFor(err error) int {
	switch {
	case errors.Is(err, driven.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, driven.ErrAuthentication), errors.Is(err, driven.ErrAuthorization):
		return http.StatusUnauthorized
	case errors.Is(err, driven.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, driven.ErrNetwork):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
