package mapview

import (
	"context"
	"sync"

	"github.com/ericfisherdev/mytravellog/internal/domain/model"
)

// Marker geometry in pixels. The card anchor sits this far above the point
// so the card clears the pin.
const (
	MarkerHeight = 41
	CardGap      = 8
)

// Snapshotter supplies the current cache snapshot.
type Snapshotter interface {
	Current() []model.Location
}

// Marker is one record placed on the viewport.
type Marker struct {
	Location model.Location
	Point    Point
	InView   bool
	Selected bool
}

// Card is the hover detail card for a marker, anchored above its point.
type Card struct {
	Location model.Location
	Anchor   Point
}

// PlacedTile is a tile together with its top-left pixel in the viewport.
type PlacedTile struct {
	TileRef
	Left, Top float64
}

// Renderer derives markers, hover cards and tiles from the cache on every
// call. Its only state is which marker is hovered.
type Renderer struct {
	cache      Snapshotter
	tiles      TileSource
	onActivate func(context.Context, model.Location)

	mu      sync.Mutex
	hovered string
}

// NewRenderer creates a Renderer. onActivate receives the full record when a
// marker is activated; it may be nil.
func NewRenderer(cache Snapshotter, tiles TileSource, onActivate func(context.Context, model.Location)) *Renderer {
	return &Renderer{cache: cache, tiles: tiles, onActivate: onActivate}
}

// Markers projects every cached record. selectedID marks the record being
// edited, if any.
func (r *Renderer) Markers(p Projector, width, height int, selectedID string) []Marker {
	locs := r.cache.Current()
	out := make([]Marker, 0, len(locs))
	for _, l := range locs {
		pt := p.Project(l.X, l.Y)
		out = append(out, Marker{
			Location: l,
			Point:    pt,
			InView:   pt.X >= 0 && pt.Y >= 0 && pt.X <= float64(width) && pt.Y <= float64(height),
			Selected: selectedID != "" && l.ID == selectedID,
		})
	}
	return out
}

// Enter shows the card for record id. The anchor is recomputed through the
// projector each time so a panned or zoomed map never shows a stale card.
func (r *Renderer) Enter(id string, p Projector) (Card, bool) {
	loc, ok := r.find(id)
	if !ok {
		return Card{}, false
	}

	r.mu.Lock()
	r.hovered = id
	r.mu.Unlock()

	pt := p.Project(loc.X, loc.Y)
	return Card{
		Location: loc,
		Anchor:   Point{X: pt.X, Y: pt.Y - MarkerHeight - CardGap},
	}, true
}

// Leave hides the card for id if it is the one showing.
func (r *Renderer) Leave(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hovered == id {
		r.hovered = ""
	}
}

// Hovered returns the id whose card is showing, or "".
func (r *Renderer) Hovered() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hovered
}

// Activate reports the full record for id to the activation callback. It
// changes nothing itself.
func (r *Renderer) Activate(ctx context.Context, id string) (model.Location, bool) {
	loc, ok := r.find(id)
	if !ok {
		return model.Location{}, false
	}
	if r.onActivate != nil {
		r.onActivate(ctx, loc)
	}
	return loc, true
}

// Tiles returns the tiles covering v with their pixel offsets.
func (r *Renderer) Tiles(v Viewport) []PlacedTile {
	refs := r.tiles.Tiles(v.Bounds(), v.Zoom)
	ox, oy := v.origin()

	out := make([]PlacedTile, len(refs))
	for i, t := range refs {
		out[i] = PlacedTile{
			TileRef: t,
			Left:    float64(t.X*TileSize) - ox,
			Top:     float64(t.Y*TileSize) - oy,
		}
	}
	return out
}

func (r *Renderer) find(id string) (model.Location, bool) {
	for _, l := range r.cache.Current() {
		if l.ID == id {
			return l, true
		}
	}
	return model.Location{}, false
}
