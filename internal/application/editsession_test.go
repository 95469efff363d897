package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/mytravellog/internal/application"
	"github.com/ericfisherdev/mytravellog/internal/domain/model"
	"github.com/ericfisherdev/mytravellog/internal/domain/port/driven"
)

type editHarness struct {
	session *stubSession
	store   *fakeStore
	cache   *application.LocationCache
	edit    *application.EditSession
}

func newEditHarness(t *testing.T, authenticated bool, records ...model.Location) *editHarness {
	t.Helper()
	store := newFakeStore(records...)
	cache := application.NewLocationCache(store)
	require.NoError(t, cache.Refresh(context.Background()))

	session := &stubSession{authenticated: authenticated}
	return &editHarness{
		session: session,
		store:   store,
		cache:   cache,
		edit:    application.NewEditSession(session, store, cache),
	}
}

func kyotoFields() model.DraftFields {
	return model.DraftFields{
		Title:     "Kyoto",
		City:      "Kyoto",
		Country:   "Japan",
		X:         "135.77",
		Y:         "35.01",
		VisitedAt: "2024-04-02",
	}
}

func TestEditSession_CreateKyoto(t *testing.T) {
	h := newEditHarness(t, true)
	ctx := context.Background()

	require.True(t, h.edit.AddRequested(ctx))
	assert.Equal(t, application.StateEditingNew, h.edit.Snapshot().State)

	require.NoError(t, h.edit.UpdateDraft(kyotoFields()))
	require.NoError(t, h.edit.Submit(ctx))

	snap := h.edit.Snapshot()
	assert.Equal(t, application.StateIdle, snap.State)
	assert.Nil(t, snap.Draft)

	current := h.cache.Current()
	require.Len(t, current, 1)
	assert.Equal(t, "Kyoto", current[0].Title)
	assert.InDelta(t, 135.77, current[0].X, 1e-9)
	assert.Equal(t, 1, h.store.count("create"))
}

func TestEditSession_DeleteFirstOfTwo(t *testing.T) {
	first, second := loc("a", "First"), loc("b", "Second")
	h := newEditHarness(t, true, first, second)
	ctx := context.Background()

	require.True(t, h.edit.MarkerActivated(ctx, first))
	require.NoError(t, h.edit.RequestDelete())
	assert.True(t, h.edit.Snapshot().ConfirmingDelete)
	require.NoError(t, h.edit.ConfirmDelete(ctx))

	assert.Equal(t, application.StateIdle, h.edit.Snapshot().State)
	current := h.cache.Current()
	require.Len(t, current, 1)
	assert.Equal(t, "b", current[0].ID)
}

func TestEditSession_DeleteNeedsConfirmation(t *testing.T) {
	h := newEditHarness(t, true, loc("a", "A"))
	ctx := context.Background()

	require.True(t, h.edit.MarkerActivated(ctx, loc("a", "A")))
	assert.ErrorIs(t, h.edit.ConfirmDelete(ctx), application.ErrDeleteNotAllowed)
	assert.Zero(t, h.store.count("delete"))

	require.NoError(t, h.edit.RequestDelete())
	h.edit.CancelDelete()
	assert.ErrorIs(t, h.edit.ConfirmDelete(ctx), application.ErrDeleteNotAllowed)
	assert.Equal(t, application.StateEditingExisting, h.edit.Snapshot().State)
}

func TestEditSession_DeleteNotAllowedForNewDraft(t *testing.T) {
	h := newEditHarness(t, true)
	require.True(t, h.edit.AddRequested(context.Background()))
	assert.ErrorIs(t, h.edit.RequestDelete(), application.ErrDeleteNotAllowed)
}

func TestEditSession_AnonymousIsNoop(t *testing.T) {
	h := newEditHarness(t, false, loc("a", "A"))
	ctx := context.Background()
	before := h.store.total()

	assert.False(t, h.edit.MarkerActivated(ctx, loc("a", "A")))
	assert.False(t, h.edit.AddRequested(ctx))

	assert.Equal(t, application.StateIdle, h.edit.Snapshot().State)
	assert.Equal(t, before, h.store.total())
}

func TestEditSession_StagedImageRejectsSubmitLocally(t *testing.T) {
	h := newEditHarness(t, true)
	ctx := context.Background()

	require.True(t, h.edit.AddRequested(ctx))
	require.NoError(t, h.edit.UpdateDraft(kyotoFields()))
	require.NoError(t, h.edit.StageImage("photo.jpg", []byte{0xff, 0xd8}))
	before := h.store.total()

	err := h.edit.Submit(ctx)
	require.ErrorIs(t, err, driven.ErrValidation)
	assert.Equal(t, before, h.store.total(), "no network call")

	snap := h.edit.Snapshot()
	assert.Equal(t, application.StateEditingNew, snap.State)
	require.NotNil(t, snap.Draft)
	assert.True(t, snap.Draft.HasPendingUpload())
	assert.NotEmpty(t, snap.Notice)
}

func TestEditSession_UploadThenSubmit(t *testing.T) {
	h := newEditHarness(t, true)
	ctx := context.Background()

	require.True(t, h.edit.AddRequested(ctx))
	require.NoError(t, h.edit.UpdateDraft(kyotoFields()))
	require.NoError(t, h.edit.StageImage("photo.png", []byte("png")))
	require.NoError(t, h.edit.UploadImage(ctx))

	snap := h.edit.Snapshot()
	require.NotNil(t, snap.Draft)
	assert.Equal(t, "/uploads/fixed.png", snap.Draft.ImageURL)
	assert.False(t, snap.Draft.HasPendingUpload())

	require.NoError(t, h.edit.Submit(ctx))
	current := h.cache.Current()
	require.Len(t, current, 1)
	require.NotNil(t, current[0].ImageURL)
	assert.Equal(t, "/uploads/fixed.png", *current[0].ImageURL)
}

func TestEditSession_UploadWithoutStagedFile(t *testing.T) {
	h := newEditHarness(t, true)
	require.True(t, h.edit.AddRequested(context.Background()))
	assert.ErrorIs(t, h.edit.UploadImage(context.Background()), application.ErrNothingStaged)
}

func TestEditSession_ValidationKeepsDraft(t *testing.T) {
	h := newEditHarness(t, true)
	ctx := context.Background()

	require.True(t, h.edit.AddRequested(ctx))
	fields := kyotoFields()
	fields.Title = "  "
	fields.Y = "91"
	require.NoError(t, h.edit.UpdateDraft(fields))

	err := h.edit.Submit(ctx)
	require.ErrorIs(t, err, driven.ErrValidation)
	assert.Zero(t, h.store.count("create"))

	snap := h.edit.Snapshot()
	assert.Equal(t, application.StateEditingNew, snap.State)
	require.NotNil(t, snap.Draft)
	assert.Equal(t, "91", snap.Draft.Y)
	assert.Len(t, snap.FieldErrors, 2)
}

func TestEditSession_AuthorizationFailureInvalidatesSession(t *testing.T) {
	h := newEditHarness(t, true, loc("a", "A"))
	ctx := context.Background()
	h.store.updateErr = &driven.StoreError{Kind: driven.ErrAuthorization, Status: 401}

	require.True(t, h.edit.MarkerActivated(ctx, loc("a", "A")))
	err := h.edit.Submit(ctx)

	require.ErrorIs(t, err, driven.ErrAuthorization)
	assert.Equal(t, 1, h.session.invalidated)
	assert.Equal(t, application.StateIdle, h.edit.Snapshot().State)
}

func TestEditSession_NotFoundRefreshesAndReturnsIdle(t *testing.T) {
	h := newEditHarness(t, true, loc("a", "A"))
	ctx := context.Background()

	require.True(t, h.edit.MarkerActivated(ctx, loc("a", "A")))
	// Someone else removed the record meanwhile.
	h.store.records = nil
	listsBefore := h.store.count("list")

	err := h.edit.Submit(ctx)
	require.ErrorIs(t, err, driven.ErrNotFound)
	assert.Equal(t, application.StateIdle, h.edit.Snapshot().State)
	assert.Equal(t, listsBefore+1, h.store.count("list"))
	assert.Empty(t, h.cache.Current())
}

func TestEditSession_NetworkFailureKeepsDraft(t *testing.T) {
	h := newEditHarness(t, true)
	ctx := context.Background()
	h.store.createErr = &driven.StoreError{Kind: driven.ErrNetwork, Err: errors.New("timeout")}

	require.True(t, h.edit.AddRequested(ctx))
	require.NoError(t, h.edit.UpdateDraft(kyotoFields()))

	require.ErrorIs(t, h.edit.Submit(ctx), driven.ErrNetwork)

	snap := h.edit.Snapshot()
	assert.Equal(t, application.StateEditingNew, snap.State)
	require.NotNil(t, snap.Draft)
	assert.Equal(t, "Kyoto", snap.Draft.Title)
	assert.Equal(t, driven.UserMessage(h.store.createErr), snap.Notice)
}

func TestEditSession_RefreshFailureAfterSaveSetsNotice(t *testing.T) {
	h := newEditHarness(t, true, loc("a", "A"))
	ctx := context.Background()

	require.True(t, h.edit.AddRequested(ctx))
	require.NoError(t, h.edit.UpdateDraft(kyotoFields()))
	h.store.listErr = &driven.StoreError{Kind: driven.ErrNetwork, Err: errors.New("connection reset")}

	require.NoError(t, h.edit.Submit(ctx))

	snap := h.edit.Snapshot()
	assert.Equal(t, application.StateIdle, snap.State)
	assert.Equal(t, driven.UserMessage(h.store.listErr), snap.Notice)
	assert.NotEmpty(t, snap.Notice)
	assert.Equal(t, 1, h.store.count("create"))
	assert.Len(t, h.cache.Current(), 1, "previous collection kept")
}

func TestEditSession_RefreshFailureAfterDeleteSetsNotice(t *testing.T) {
	h := newEditHarness(t, true, loc("a", "A"), loc("b", "B"))
	ctx := context.Background()

	require.True(t, h.edit.MarkerActivated(ctx, loc("a", "A")))
	require.NoError(t, h.edit.RequestDelete())
	h.store.listErr = &driven.StoreError{Kind: driven.ErrNetwork, Err: errors.New("connection reset")}

	require.NoError(t, h.edit.ConfirmDelete(ctx))

	snap := h.edit.Snapshot()
	assert.Equal(t, application.StateIdle, snap.State)
	assert.Equal(t, driven.UserMessage(h.store.listErr), snap.Notice)
}

func TestEditSession_ActivatingAnotherMarkerDiscardsDraft(t *testing.T) {
	a, b := loc("a", "A"), loc("b", "B")
	h := newEditHarness(t, true, a, b)
	ctx := context.Background()

	require.True(t, h.edit.MarkerActivated(ctx, a))
	fields := model.NewDraftFromLocation(a).Fields()
	fields.Title = "edited"
	require.NoError(t, h.edit.UpdateDraft(fields))

	require.True(t, h.edit.MarkerActivated(ctx, b))
	snap := h.edit.Snapshot()
	require.NotNil(t, snap.Draft)
	assert.Equal(t, "b", snap.Draft.ID)
	assert.Equal(t, "B", snap.Draft.Title)
}

func TestEditSession_CancelReturnsIdle(t *testing.T) {
	h := newEditHarness(t, true)
	require.True(t, h.edit.AddRequested(context.Background()))
	h.edit.Cancel()

	assert.Equal(t, application.StateIdle, h.edit.Snapshot().State)
	assert.ErrorIs(t, h.edit.UpdateDraft(kyotoFields()), application.ErrNoDraft)
	assert.ErrorIs(t, h.edit.Submit(context.Background()), application.ErrNoDraft)
}

func TestEditSession_UpdateExisting(t *testing.T) {
	a := loc("a", "A")
	h := newEditHarness(t, true, a)
	ctx := context.Background()

	require.True(t, h.edit.MarkerActivated(ctx, a))
	fields := model.NewDraftFromLocation(a).Fields()
	fields.Description = "  rainy  "
	require.NoError(t, h.edit.UpdateDraft(fields))
	require.NoError(t, h.edit.Submit(ctx))

	got, ok := h.cache.Find("a")
	require.True(t, ok)
	require.NotNil(t, got.Description)
	assert.Equal(t, "rainy", *got.Description)
	assert.Equal(t, 1, h.store.count("update"))
}
