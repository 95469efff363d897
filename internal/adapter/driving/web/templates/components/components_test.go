package components

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vm "github.com/ericfisherdev/mytravellog/internal/adapter/driving/web/viewmodel"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, c.Render(context.Background(), &sb))
	return sb.String()
}

func TestDetailCard_EscapesTextAndKeepsSanitizedDescription(t *testing.T) {
	html := render(t, DetailCard(vm.CardViewModel{
		ID:              "loc-1",
		Title:           `<script>alert("x")</script>`,
		Place:           "Kyoto, Japan",
		DescriptionHTML: "<p><strong>Fushimi Inari</strong></p>",
		VisitedAt:       "2 Apr 2024",
		ImageURL:        "http://127.0.0.1:8081/uploads/a.png",
		Left:            120,
		Top:             45,
	}))

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, `data-id="loc-1"`)
	assert.Contains(t, html, "left:120px;top:45px")
	assert.Contains(t, html, "<strong>Fushimi Inari</strong>")
	assert.Contains(t, html, "Visited 2 Apr 2024")
	assert.Contains(t, html, `src="http://127.0.0.1:8081/uploads/a.png"`)
}

func TestDetailCard_OmitsEmptyOptionalParts(t *testing.T) {
	html := render(t, DetailCard(vm.CardViewModel{ID: "loc-2", Title: "Lisbon", Place: "Lisbon, Portugal"}))

	assert.Contains(t, html, "<h3>Lisbon</h3>")
	assert.NotContains(t, html, `class="description"`)
	assert.NotContains(t, html, "Visited")
	assert.NotContains(t, html, "<img")
}

func TestDetailCard_NeutralizesScriptImageURL(t *testing.T) {
	html := render(t, DetailCard(vm.CardViewModel{ID: "loc-3", Title: "Bad", ImageURL: "javascript:alert(1)"}))

	assert.NotContains(t, html, "javascript:")
}

func TestActionForm_CarriesTokenAndAction(t *testing.T) {
	html := render(t, ActionForm("/logout?lon=0&lat=0", "Log out", "", "tok-123"))

	assert.Contains(t, html, `action="/logout?lon=0&amp;lat=0"`)
	assert.Contains(t, html, `name="`+CSRFFieldName+`" value="tok-123"`)
	assert.Contains(t, html, ">Log out</button>")
}

func TestDraftForm_NewRecord(t *testing.T) {
	html := render(t, DraftForm(vm.DraftFormViewModel{
		IsNew:   true,
		Heading: "Add location",
		Title:   "Nowhere",
		X:       "200",
		FieldErrors: map[string]string{
			"x": "x (longitude) must be between -180 and 180",
		},
	}, "lon=0&lat=0&z=2", "tok"))

	assert.Contains(t, html, "<h2>Add location</h2>")
	assert.Contains(t, html, `name="title" type="text" value="Nowhere" required`)
	assert.Contains(t, html, `name="x" type="number" value="200" step="any" required`)
	assert.Contains(t, html, `name="visited_at" type="date" value=""></label>`)
	assert.Contains(t, html, `<span class="field-error">x (longitude) must be between -180 and 180</span>`)
	assert.Contains(t, html, `action="/app/draft?lon=0&amp;lat=0&amp;z=2"`)
	assert.Contains(t, html, `value="stage"`)
	assert.NotContains(t, html, `value="delete"`)
	assert.NotContains(t, html, `class="confirm"`)
}

func TestDraftForm_ExistingRecordWithStagedFile(t *testing.T) {
	html := render(t, DraftForm(vm.DraftFormViewModel{
		Heading:        "Edit location",
		Notice:         "Upload failed.",
		StagedFilename: "temple.jpg",
		ImagePreview:   "http://127.0.0.1:8081/uploads/old.png",
	}, "", "tok"))

	assert.Contains(t, html, `<p class="notice" role="alert">Upload failed.</p>`)
	assert.Contains(t, html, "Selected: temple.jpg (not uploaded yet)")
	assert.Contains(t, html, `value="upload"`)
	assert.NotContains(t, html, `type="file"`)
	assert.Contains(t, html, `class="preview"`)
	assert.Contains(t, html, `value="delete"`)
}

func TestDraftForm_ConfirmingDelete(t *testing.T) {
	html := render(t, DraftForm(vm.DraftFormViewModel{Heading: "Edit location", ConfirmingDelete: true}, "z=3", "tok"))

	assert.NotContains(t, html, `value="delete"`)
	assert.Contains(t, html, "Delete this location permanently?")
	assert.Contains(t, html, `action="/app/draft/delete/confirm?z=3"`)
	assert.Contains(t, html, `action="/app/draft/delete/cancel?z=3"`)
	assert.Contains(t, html, `class="danger">Yes, delete</button>`)
}
