// Package mapview projects the location cache onto a slippy map: Web
// Mercator pixel projection, tile coverage, markers and hover cards.
package mapview

import (
	"math"
)

// TileSize is the edge length of a map tile in pixels.
const TileSize = 256

// MaxLatitude is the latitude limit of the Web Mercator projection.
const MaxLatitude = 85.05112878

// Zoom limits accepted by NewViewport.
const (
	MinZoom = 0
	MaxZoom = 19
)

// Initial view shown before the user pans or zooms.
const (
	DefaultCenterLng = 0.0
	DefaultCenterLat = 20.0
	DefaultZoom      = 2
)

// Point is a position in viewport pixels, origin top-left.
type Point struct {
	X, Y float64
}

// Projector maps geographic coordinates to viewport pixels and back.
// Longitude is the record's x and latitude its y.
type Projector interface {
	Project(lng, lat float64) Point
	Unproject(p Point) (lng, lat float64)
}

// Bounds is a geographic rectangle in degrees.
type Bounds struct {
	West, South, East, North float64
}

// Viewport is a Web Mercator view of the world centered on a coordinate.
type Viewport struct {
	CenterLng float64
	CenterLat float64
	Zoom      int
	Width     int
	Height    int
}

// Compile-time interface satisfaction check.
var _ Projector = Viewport{}

// NewViewport clamps its arguments into the valid range.
func NewViewport(centerLng, centerLat float64, zoom, width, height int) Viewport {
	return Viewport{
		CenterLng: clamp(centerLng, -180, 180),
		CenterLat: clamp(centerLat, -MaxLatitude, MaxLatitude),
		Zoom:      int(clamp(float64(zoom), MinZoom, MaxZoom)),
		Width:     max(width, 1),
		Height:    max(height, 1),
	}
}

// DefaultViewport is the initial world view.
func DefaultViewport(width, height int) Viewport {
	return NewViewport(DefaultCenterLng, DefaultCenterLat, DefaultZoom, width, height)
}

// WorldSize is the pixel width of the whole world at the viewport's zoom.
func (v Viewport) WorldSize() float64 {
	return float64(TileSize) * math.Exp2(float64(v.Zoom))
}

// Project returns the viewport pixel of (lng, lat).
func (v Viewport) Project(lng, lat float64) Point {
	wx, wy := v.world(lng, lat)
	ox, oy := v.origin()
	return Point{X: wx - ox, Y: wy - oy}
}

// Unproject returns the coordinate under viewport pixel p.
func (v Viewport) Unproject(p Point) (float64, float64) {
	ox, oy := v.origin()
	size := v.WorldSize()

	wx := p.X + ox
	wy := p.Y + oy

	lng := wx/size*360 - 180
	n := math.Pi - 2*math.Pi*wy/size
	lat := 180 / math.Pi * math.Atan(math.Sinh(n))

	return clamp(lng, -180, 180), clamp(lat, -MaxLatitude, MaxLatitude)
}

// Bounds returns the geographic extent of the viewport.
func (v Viewport) Bounds() Bounds {
	west, north := v.Unproject(Point{X: 0, Y: 0})
	east, south := v.Unproject(Point{X: float64(v.Width), Y: float64(v.Height)})
	return Bounds{West: west, South: south, East: east, North: north}
}

// Pan returns a viewport whose center moved by (dx, dy) pixels.
func (v Viewport) Pan(dx, dy float64) Viewport {
	lng, lat := v.Unproject(Point{X: float64(v.Width)/2 + dx, Y: float64(v.Height)/2 + dy})
	return NewViewport(lng, lat, v.Zoom, v.Width, v.Height)
}

// WithZoom returns the same view at another zoom level.
func (v Viewport) WithZoom(zoom int) Viewport {
	return NewViewport(v.CenterLng, v.CenterLat, zoom, v.Width, v.Height)
}

// world returns the absolute world pixel of (lng, lat) at the viewport zoom.
func (v Viewport) world(lng, lat float64) (float64, float64) {
	size := v.WorldSize()
	lat = clamp(lat, -MaxLatitude, MaxLatitude)
	lng = clamp(lng, -180, 180)

	x := (lng + 180) / 360 * size
	sin := math.Sin(lat * math.Pi / 180)
	y := (0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)) * size
	return x, y
}

// origin is the world pixel at the viewport's top-left corner.
func (v Viewport) origin() (float64, float64) {
	cx, cy := v.world(v.CenterLng, v.CenterLat)
	return cx - float64(v.Width)/2, cy - float64(v.Height)/2
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
