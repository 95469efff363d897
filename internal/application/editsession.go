package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/mytravellog/internal/domain/model"
	"github.com/ericfisherdev/mytravellog/internal/domain/port/driven"
)

// EditState is the controller's top-level mode.
type EditState int

const (
	StateIdle EditState = iota
	StateEditingNew
	StateEditingExisting
)

func (s EditState) String() string {
	switch s {
	case StateEditingNew:
		return "editing_new"
	case StateEditingExisting:
		return "editing_existing"
	default:
		return "idle"
	}
}

var (
	// ErrNoDraft is returned by draft operations while the controller is idle.
	ErrNoDraft = errors.New("no location is being edited")

	// ErrNothingStaged is returned by UploadImage when no file was staged.
	ErrNothingStaged = errors.New("no image has been selected")

	// ErrDeleteNotAllowed is returned when delete is requested or confirmed
	// outside of an existing-record edit, or confirmed without a request.
	ErrDeleteNotAllowed = errors.New("delete requires an existing location and confirmation")
)

// errImageNotUploaded rejects a submit while a staged file is pending.
var errImageNotUploaded = &driven.StoreError{
	Kind:    driven.ErrValidation,
	Message: "Upload the selected image before saving, or remove it.",
}

// Session is the part of the SessionGuard the controller depends on.
type Session interface {
	IsAuthenticated(ctx context.Context) bool
	Invalidate(ctx context.Context)
}

// Refresher reloads the location cache.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// EditSnapshot is a point-in-time copy of the controller state for rendering.
type EditSnapshot struct {
	State            EditState
	Draft            *model.Draft
	FieldErrors      model.FieldErrors
	ConfirmingDelete bool
	Notice           string
}

// EditSession is the state machine behind every mutation. Events are
// serialized; each one runs to completion before the next is accepted.
type EditSession struct {
	session Session
	store   driven.LocationStore
	cache   Refresher
	logger  *slog.Logger

	mu               sync.Mutex
	state            EditState
	draft            *model.Draft
	fieldErrors      model.FieldErrors
	confirmingDelete bool
	notice           string
}

// NewEditSession creates an idle controller.
func NewEditSession(session Session, store driven.LocationStore, cache Refresher) *EditSession {
	return &EditSession{
		session: session,
		store:   store,
		cache:   cache,
		logger:  slog.Default(),
	}
}

// AddRequested opens an empty draft. It is a no-op for anonymous visitors
// and reports whether the state changed.
func (e *EditSession) AddRequested(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.session.IsAuthenticated(ctx) {
		return false
	}
	e.open(StateEditingNew, &model.Draft{})
	return true
}

// MarkerActivated opens a draft of loc, discarding any draft in progress.
// It is a no-op for anonymous visitors.
func (e *EditSession) MarkerActivated(ctx context.Context, loc model.Location) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.session.IsAuthenticated(ctx) {
		return false
	}
	d := model.NewDraftFromLocation(loc)
	e.open(StateEditingExisting, &d)
	return true
}

// UpdateDraft replaces the draft's editable fields.
func (e *EditSession) UpdateDraft(fields model.DraftFields) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft == nil {
		return ErrNoDraft
	}
	e.draft.Apply(fields)
	return nil
}

// StageImage records a local file on the draft. Nothing is sent.
func (e *EditSession) StageImage(filename string, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft == nil {
		return ErrNoDraft
	}
	e.draft.Staged = &model.StagedImage{Filename: filename, Data: data}
	e.notice = ""
	return nil
}

// ClearStagedImage drops a staged file without uploading it.
func (e *EditSession) ClearStagedImage() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft == nil {
		return ErrNoDraft
	}
	e.draft.Staged = nil
	return nil
}

// UploadImage sends the staged file and stores the returned reference in
// the draft's image URL.
func (e *EditSession) UploadImage(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft == nil {
		return ErrNoDraft
	}
	if e.draft.Staged == nil {
		return ErrNothingStaged
	}

	staged := e.draft.Staged
	ref, err := e.store.UploadImage(ctx, staged.Filename, staged.Data)
	if err != nil {
		return e.react(ctx, err)
	}

	e.draft.ImageURL = ref
	e.draft.Staged = nil
	e.notice = ""
	e.logger.Info("image uploaded", "filename", staged.Filename, "ref", ref)
	return nil
}

// Submit creates or updates the record described by the draft, then
// refreshes the cache and returns to idle.
func (e *EditSession) Submit(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft == nil {
		return ErrNoDraft
	}
	if e.draft.HasPendingUpload() {
		return e.react(ctx, errImageNotUploaded)
	}

	loc, err := e.draft.Location()
	if err != nil {
		return e.react(ctx, driven.NewValidationError(err))
	}

	if e.state == StateEditingNew {
		_, err = e.store.Create(ctx, loc)
	} else {
		_, err = e.store.Update(ctx, e.draft.ID, loc)
	}
	if err != nil {
		return e.react(ctx, err)
	}

	e.reset()
	e.refresh(ctx)
	return nil
}

// Cancel discards the draft.
func (e *EditSession) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

// RequestDelete asks for confirmation before deleting the edited record.
func (e *EditSession) RequestDelete() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateEditingExisting {
		return ErrDeleteNotAllowed
	}
	e.confirmingDelete = true
	return nil
}

// CancelDelete withdraws a pending delete request and keeps editing.
func (e *EditSession) CancelDelete() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.confirmingDelete = false
}

// ConfirmDelete removes the edited record after RequestDelete.
func (e *EditSession) ConfirmDelete(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateEditingExisting || !e.confirmingDelete {
		return ErrDeleteNotAllowed
	}

	id := e.draft.ID
	if err := e.store.Delete(ctx, id); err != nil {
		e.confirmingDelete = false
		return e.react(ctx, err)
	}

	e.logger.Info("location removed", "id", id)
	e.reset()
	e.refresh(ctx)
	return nil
}

// Snapshot returns a copy of the current state.
func (e *EditSession) Snapshot() EditSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := EditSnapshot{
		State:            e.state,
		ConfirmingDelete: e.confirmingDelete,
		Notice:           e.notice,
	}
	if e.draft != nil {
		d := *e.draft
		snap.Draft = &d
	}
	if len(e.fieldErrors) > 0 {
		snap.FieldErrors = append(model.FieldErrors(nil), e.fieldErrors...)
	}
	return snap
}

// DismissNotice clears the last user-facing message.
func (e *EditSession) DismissNotice() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notice = ""
}

func (e *EditSession) open(state EditState, d *model.Draft) {
	e.state = state
	e.draft = d
	e.fieldErrors = nil
	e.confirmingDelete = false
	e.notice = ""
}

func (e *EditSession) reset() {
	e.open(StateIdle, nil)
}

// react applies the error-kind reactions and records the user message.
// Callers hold e.mu.
func (e *EditSession) react(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, driven.ErrAuthorization):
		e.session.Invalidate(ctx)
		e.reset()
	case errors.Is(err, driven.ErrNotFound):
		e.reset()
		e.refresh(ctx)
	case errors.Is(err, driven.ErrValidation):
		var fe model.FieldErrors
		if errors.As(err, &fe) {
			e.fieldErrors = fe
		} else {
			e.fieldErrors = nil
		}
	}

	e.notice = driven.UserMessage(err)
	e.logger.Warn("edit action failed", "state", e.state.String(), "error", err)
	return err
}

// refresh reloads the cache after a mutation. On failure the previous
// collection stays and the notice tells the user it may be stale.
// Callers hold e.mu.
func (e *EditSession) refresh(ctx context.Context) {
	if err := e.cache.Refresh(ctx); err != nil {
		e.logger.Warn("refresh after mutation failed", "error", err)
		e.notice = driven.UserMessage(err)
	}
}
