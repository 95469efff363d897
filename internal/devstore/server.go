package devstore

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ericfisherdev/mytravellog/internal/domain/model"
)

// Options configures a Server.
type Options struct {
	AdminUsername string
	AdminPassword string
	JWTSecret     string
	UploadDir     string
	Logger        *slog.Logger

	// Now overrides the clock used for tokens and record ordering.
	Now func() time.Time
}

// Server exposes a Store over the location store's HTTP API.
type Server struct {
	store     *Store
	auth      *issuer
	uploadDir string
	logger    *slog.Logger
}

// NewServer creates a Server with an empty Store.
func NewServer(opts Options) *Server {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store := NewStore()
	store.now = now

	return &Server{
		store: store,
		auth: &issuer{
			username: opts.AdminUsername,
			password: opts.AdminPassword,
			secret:   []byte(opts.JWTSecret),
			now:      now,
		},
		uploadDir: opts.UploadDir,
		logger:    logger,
	}
}

// Store returns the backing Store, for seeding in tests.
func (s *Server) Store() *Store {
	return s.store
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "If-None-Match"},
		ExposedHeaders: []string{"ETag"},
		MaxAge:         300,
	}))

	r.Post("/login", s.handleLogin)
	r.Get("/locations", s.handleList)
	r.Get("/locations/{id}", s.handleGet)
	r.Get("/uploads/{filename}", s.handleServeUpload)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Post("/locations", s.handleCreate)
		r.Put("/locations/{id}", s.handleReplace)
		r.Delete("/locations/{id}", s.handleDelete)
		r.Post("/upload", s.handleUpload)
	})

	return r
}

// locationBody is the record shape on the wire.
type locationBody struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	City        string   `json:"city"`
	Country     string   `json:"country"`
	X           *float64 `json:"x"`
	Y           *float64 `json:"y"`
	Description *string  `json:"description"`
	ImageURL    *string  `json:"image_url"`
	VisitedAt   *string  `json:"visited_at"`
}

func toBody(loc model.Location) locationBody {
	x, y := loc.X, loc.Y
	b := locationBody{
		ID:          loc.ID,
		Title:       loc.Title,
		City:        loc.City,
		Country:     loc.Country,
		X:           &x,
		Y:           &y,
		Description: loc.Description,
		ImageURL:    loc.ImageURL,
	}
	if loc.VisitedAt != nil {
		v := loc.VisitedAt.Format(time.RFC3339)
		b.VisitedAt = &v
	}
	return b
}

func (b locationBody) location() (model.Location, error) {
	if b.X == nil || b.Y == nil {
		return model.Location{}, errors.New("x and y are required")
	}
	loc := model.Location{
		Title:       b.Title,
		City:        b.City,
		Country:     b.Country,
		X:           *b.X,
		Y:           *b.Y,
		Description: b.Description,
		ImageURL:    b.ImageURL,
	}
	if v := model.OptionalString(b.VisitedAt); v != nil {
		t, err := time.Parse(time.RFC3339, *v)
		if err != nil {
			t, err = time.Parse(model.DateLayout, *v)
		}
		if err != nil {
			return model.Location{}, errors.New("visited_at must be an RFC 3339 timestamp or a YYYY-MM-DD date")
		}
		loc.VisitedAt = &t
	}
	return loc, nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	token, err := s.auth.login(req.Username, req.Password)
	if errors.Is(err, errBadCredentials) {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("issuing token", "error", err)
		writeMessage(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	locs, version := s.store.List()
	tag := etag(version)

	w.Header().Set("ETag", tag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == tag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	out := make([]locationBody, len(locs))
	for i, l := range locs {
		out[i] = toBody(l)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	loc, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toBody(loc))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	loc, ok := s.decodeLocation(w, r)
	if !ok {
		return
	}

	created, err := s.store.Create(loc)
	if err != nil {
		writeMessage(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toBody(created))
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	loc, ok := s.decodeLocation(w, r)
	if !ok {
		return
	}

	updated, err := s.store.Replace(chi.URLParam(r, "id"), loc)
	switch {
	case errors.Is(err, errNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeMessage(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeJSON(w, http.StatusOK, toBody(updated))
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(chi.URLParam(r, "id")); err != nil {
		writeMessage(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes+1<<20)

	file, _, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "could not read upload")
		return
	}

	name, err := saveImage(s.uploadDir, data)
	switch {
	case errors.Is(err, errTooLarge):
		writeMessage(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	case errors.Is(err, errNotAnImage):
		writeMessage(w, http.StatusUnsupportedMediaType, err.Error())
		return
	case errors.Is(err, errTooManyPixels):
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("saving upload", "error", err)
		writeMessage(w, http.StatusInternalServerError, "could not store upload")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"image_url": "/uploads/" + name})
}

func (s *Server) handleServeUpload(w http.ResponseWriter, r *http.Request) {
	p, contentType, err := uploadPath(s.uploadDir, chi.URLParam(r, "filename"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		writeMessage(w, http.StatusNotFound, "upload not found")
		return
	}
	if err != nil {
		s.logger.Error("reading upload", "path", p, "error", err)
		writeMessage(w, http.StatusInternalServerError, "could not read upload")
		return
	}

	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}

func (s *Server) decodeLocation(w http.ResponseWriter, r *http.Request) (model.Location, bool) {
	var body locationBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return model.Location{}, false
	}
	loc, err := body.location()
	if err != nil {
		writeMessage(w, http.StatusUnprocessableEntity, err.Error())
		return model.Location{}, false
	}
	return loc, true
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := s.auth.verify(r.Header.Get("Authorization"))
		switch {
		case errors.Is(err, errForbidden):
			writeMessage(w, http.StatusForbidden, err.Error())
		case err != nil:
			writeMessage(w, http.StatusUnauthorized, strings.SplitN(err.Error(), ":", 2)[0])
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("devstore request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
