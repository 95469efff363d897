// Package web implements the HTML map UI driving adapter using templ components.
package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ericfisherdev/mytravellog/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/mytravellog/internal/adapter/driving/web/templates/components"
	"github.com/ericfisherdev/mytravellog/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/mytravellog/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/mytravellog/internal/application"
	"github.com/ericfisherdev/mytravellog/internal/domain/model"
	"github.com/ericfisherdev/mytravellog/internal/domain/port/driven"
	"github.com/ericfisherdev/mytravellog/internal/mapview"
)

// Viewport size used when the request does not carry one.
const (
	defaultWidth  = 1024
	defaultHeight = 640
	minDimension  = 256
	maxDimension  = 4096
)

// maxFormBytes bounds a draft form post, image included.
const maxFormBytes = 6 << 20

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	guard    *application.SessionGuard
	cache    *application.LocationCache
	edit     *application.EditSession
	renderer *mapview.Renderer
	resolve  func(string) string
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. resolve turns
// a stored image reference into a URL the browser can load.
func NewHandler(
	guard *application.SessionGuard,
	cache *application.LocationCache,
	edit *application.EditSession,
	renderer *mapview.Renderer,
	resolve func(string) string,
	logger *slog.Logger,
) *Handler {
	if resolve == nil {
		resolve = func(s string) string { return s }
	}
	return &Handler{
		guard:    guard,
		cache:    cache,
		edit:     edit,
		renderer: renderer,
		resolve:  resolve,
		logger:   logger,
	}
}

// MapPage renders the full map page for the requested viewport.
func (h *Handler) MapPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	v := parseViewport(r)
	token := ensureCSRFToken(w, r)
	flash := takeFlash(w, r)

	if err := h.cache.Refresh(ctx); err != nil && flash == "" {
		flash = driven.UserMessage(err)
	}

	snap := h.edit.Snapshot()
	if snap.Draft == nil && snap.Notice != "" {
		if flash == "" {
			flash = snap.Notice
		}
		h.edit.DismissNotice()
	}

	selected := ""
	if snap.Draft != nil {
		selected = snap.Draft.ID
	}

	query := viewQuery(v)
	page := vm.MapPageViewModel{
		Authenticated: h.guard.IsAuthenticated(ctx),
		CSRFToken:     token,
		Flash:         flash,
		Width:         v.Width,
		Height:        v.Height,
		Zoom:          v.Zoom,
		ViewQuery:     query,
		Tiles:         toTileViewModels(h.renderer.Tiles(v)),
		Markers:       toMarkerViewModels(h.renderer.Markers(v, v.Width, v.Height, selected), query),
		Form:          toDraftFormViewModel(snap, h.resolve),
	}
	navigation(&page, v)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Layout("My Travel Log", pages.MapPage(page)).Render(ctx, w); err != nil {
		h.logger.Error("failed to render map page", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// MarkerCard renders the hover card for a marker, positioned for the
// viewport in the query string.
func (h *Handler) MarkerCard(w http.ResponseWriter, r *http.Request) {
	card, ok := h.renderer.Enter(r.PathValue("id"), parseViewport(r))
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := components.DetailCard(toCardViewModel(card, h.resolve)).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render card", "id", card.Location.ID, "error", err)
	}
}

// MarkerLeave hides the hover card.
func (h *Handler) MarkerLeave(w http.ResponseWriter, r *http.Request) {
	h.renderer.Leave(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// MarkerActivate opens the clicked record for editing. For anonymous
// visitors this changes nothing.
func (h *Handler) MarkerActivate(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.renderer.Activate(r.Context(), r.PathValue("id")); !ok {
		setFlash(w, driven.UserMessage(&driven.StoreError{Kind: driven.ErrNotFound}))
	}
	h.backToMap(w, r)
}

// Login exchanges the posted credentials for a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	err := h.guard.Login(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		setFlash(w, driven.UserMessage(err))
	}
	h.backToMap(w, r)
}

// Logout discards the session token and any draft in progress.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.guard.Logout(r.Context()); err != nil {
		h.logger.Error("logout failed", "error", err)
		setFlash(w, "Logout failed. Please try again.")
	}
	h.edit.Cancel()
	h.backToMap(w, r)
}

// NewLocation opens an empty draft.
func (h *Handler) NewLocation(w http.ResponseWriter, r *http.Request) {
	if !h.edit.AddRequested(r.Context()) {
		setFlash(w, "Log in to add locations.")
	}
	h.backToMap(w, r)
}

// Draft handles every button of the edit form. The posted fields are
// applied to the draft first so nothing typed is lost.
func (h *Handler) Draft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseMultipartForm(maxFormBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		setFlash(w, "The form could not be read. Is the image larger than 5 MB?")
		h.backToMap(w, r)
		return
	}

	action := r.FormValue("action")
	if action == "cancel" {
		h.edit.Cancel()
		h.backToMap(w, r)
		return
	}

	if err := h.edit.UpdateDraft(draftFields(r)); err != nil {
		h.flashError(w, err)
		h.backToMap(w, r)
		return
	}

	var err error
	switch action {
	case "stage":
		err = h.stageImage(r)
	case "unstage":
		err = h.edit.ClearStagedImage()
	case "upload":
		err = h.edit.UploadImage(ctx)
	case "delete":
		err = h.edit.RequestDelete()
	default:
		if err = h.edit.Submit(ctx); err == nil {
			setFlash(w, "Location saved.")
		}
	}
	if err != nil {
		h.flashError(w, err)
	}

	h.backToMap(w, r)
}

// ConfirmDelete deletes the record under edit after the user confirmed.
func (h *Handler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.edit.ConfirmDelete(r.Context()); err != nil {
		h.flashError(w, err)
	} else {
		setFlash(w, "Location deleted.")
	}
	h.backToMap(w, r)
}

// CancelDelete keeps the record under edit.
func (h *Handler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	h.edit.CancelDelete()
	h.backToMap(w, r)
}

func (h *Handler) stageImage(r *http.Request) error {
	file, header, err := r.FormFile("image")
	if err != nil {
		return errNoImageChosen
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	return h.edit.StageImage(header.Filename, data)
}

var errNoImageChosen = errors.New("choose an image file first")

// flashError surfaces errors the draft form cannot show itself. Store
// failures are already recorded as the controller's notice.
func (h *Handler) flashError(w http.ResponseWriter, err error) {
	var se *driven.StoreError
	if errors.As(err, &se) {
		return
	}

	switch {
	case errors.Is(err, application.ErrNoDraft):
		setFlash(w, "Nothing is being edited.")
	case errors.Is(err, application.ErrNothingStaged), errors.Is(err, errNoImageChosen):
		setFlash(w, "Choose an image file first.")
	case errors.Is(err, application.ErrDeleteNotAllowed):
		setFlash(w, "Only saved locations can be deleted.")
	default:
		h.logger.Error("draft action failed", "error", err)
		setFlash(w, driven.UserMessage(err))
	}
}

func (h *Handler) backToMap(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, mapHref(parseViewport(r)), http.StatusSeeOther)
}

// limitBody caps the request body before anything parses the form.
func limitBody(n int64, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, n)
		next(w, r)
	}
}

func draftFields(r *http.Request) model.DraftFields {
	return model.DraftFields{
		Title:       r.FormValue("title"),
		City:        r.FormValue("city"),
		Country:     r.FormValue("country"),
		X:           r.FormValue("x"),
		Y:           r.FormValue("y"),
		Description: r.FormValue("description"),
		ImageURL:    r.FormValue("image_url"),
		VisitedAt:   r.FormValue("visited_at"),
	}
}

// parseViewport reads the view from the URL query, falling back to the
// default world view for anything missing or malformed.
func parseViewport(r *http.Request) mapview.Viewport {
	q := r.URL.Query()
	def := mapview.DefaultViewport(defaultWidth, defaultHeight)

	lng := queryFloat(q.Get("lon"), def.CenterLng)
	lat := queryFloat(q.Get("lat"), def.CenterLat)
	zoom := queryInt(q.Get("z"), def.Zoom)
	width := clampDimension(queryInt(q.Get("w"), defaultWidth))
	height := clampDimension(queryInt(q.Get("h"), defaultHeight))

	return mapview.NewViewport(lng, lat, zoom, width, height)
}

func queryFloat(s string, def float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

func queryInt(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func clampDimension(v int) int {
	return max(minDimension, min(maxDimension, v))
}
