package web

import (
	"math"
	"net/url"
	"strconv"

	vm "github.com/ericfisherdev/mytravellog/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/mytravellog/internal/application"
	"github.com/ericfisherdev/mytravellog/internal/domain/model"
	"github.com/ericfisherdev/mytravellog/internal/mapview"
)

// panStep is the fraction of the viewport moved by one pan control.
const panStep = 0.5

func toTileViewModels(tiles []mapview.PlacedTile) []vm.TileViewModel {
	out := make([]vm.TileViewModel, len(tiles))
	for i, t := range tiles {
		out[i] = vm.TileViewModel{URL: t.URL, Left: px(t.Left), Top: px(t.Top)}
	}
	return out
}

func toMarkerViewModels(markers []mapview.Marker, view string) []vm.MarkerViewModel {
	out := make([]vm.MarkerViewModel, 0, len(markers))
	for _, m := range markers {
		if !m.InView {
			continue
		}
		id := url.PathEscape(m.Location.ID)
		out = append(out, vm.MarkerViewModel{
			ID:          m.Location.ID,
			Title:       m.Location.Title,
			Left:        px(m.Point.X),
			Top:         px(m.Point.Y),
			Selected:    m.Selected,
			ActivateURL: "/app/markers/" + id + "/activate?" + view,
			CardURL:     "/app/markers/" + id + "/card?" + view,
			LeaveURL:    "/app/markers/" + id + "/leave",
		})
	}
	return out
}

func toCardViewModel(card mapview.Card, resolve func(string) string) vm.CardViewModel {
	l := card.Location
	c := vm.CardViewModel{
		ID:              l.ID,
		Title:           l.Title,
		Place:           l.Place(),
		DescriptionHTML: RenderMarkdown(model.Deref(l.Description)),
		Left:            px(card.Anchor.X),
		Top:             px(card.Anchor.Y),
	}
	if l.VisitedAt != nil {
		c.VisitedAt = l.VisitedAt.Format("2 Jan 2006")
	}
	if l.ImageURL != nil {
		c.ImageURL = resolve(*l.ImageURL)
	}
	return c
}

func toDraftFormViewModel(snap application.EditSnapshot, resolve func(string) string) *vm.DraftFormViewModel {
	if snap.Draft == nil {
		return nil
	}
	d := snap.Draft

	form := &vm.DraftFormViewModel{
		IsNew:            snap.State == application.StateEditingNew,
		Title:            d.Title,
		City:             d.City,
		Country:          d.Country,
		X:                d.X,
		Y:                d.Y,
		Description:      d.Description,
		ImageURL:         d.ImageURL,
		VisitedAt:        d.VisitedAt,
		ConfirmingDelete: snap.ConfirmingDelete,
		Notice:           snap.Notice,
		FieldErrors:      make(map[string]string, len(snap.FieldErrors)),
	}
	if form.IsNew {
		form.Heading = "Add location"
	} else {
		form.Heading = "Edit location"
	}
	if d.ImageURL != "" {
		form.ImagePreview = resolve(d.ImageURL)
	}
	if d.Staged != nil {
		form.StagedFilename = d.Staged.Filename
	}
	for _, fe := range snap.FieldErrors {
		form.FieldErrors[fe.Field] = fe.Message
	}
	return form
}

// viewQuery encodes a viewport as the query string carried by every link
// and form so the map stays where the user left it.
func viewQuery(v mapview.Viewport) string {
	q := url.Values{}
	q.Set("lon", strconv.FormatFloat(v.CenterLng, 'f', 5, 64))
	q.Set("lat", strconv.FormatFloat(v.CenterLat, 'f', 5, 64))
	q.Set("z", strconv.Itoa(v.Zoom))
	q.Set("w", strconv.Itoa(v.Width))
	q.Set("h", strconv.Itoa(v.Height))
	return q.Encode()
}

func mapHref(v mapview.Viewport) string {
	return "/?" + viewQuery(v)
}

func navigation(page *vm.MapPageViewModel, v mapview.Viewport) {
	if v.Zoom < mapview.MaxZoom {
		page.ZoomIn = mapHref(v.WithZoom(v.Zoom + 1))
	}
	if v.Zoom > mapview.MinZoom {
		page.ZoomOut = mapHref(v.WithZoom(v.Zoom - 1))
	}
	dx := float64(v.Width) * panStep
	dy := float64(v.Height) * panStep
	page.PanNorth = mapHref(v.Pan(0, -dy))
	page.PanSouth = mapHref(v.Pan(0, dy))
	page.PanEast = mapHref(v.Pan(dx, 0))
	page.PanWest = mapHref(v.Pan(-dx, 0))
}

func px(f float64) int {
	return int(math.Round(f))
}
