package mapview

import (
	"math"
	"strconv"
	"strings"
)

// DefaultTileURL is the OpenStreetMap standard tile layer.
const DefaultTileURL = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"

// TileRef identifies one slippy-map tile and where to fetch it.
type TileRef struct {
	Z, X, Y int
	URL     string
}

// TileSource resolves the tiles covering a geographic range at a zoom level.
type TileSource interface {
	Tiles(b Bounds, zoom int) []TileRef
}

// TemplateSource builds tile URLs from a template containing {z}, {x}, {y}
// and optionally {s} for a subdomain.
type TemplateSource struct {
	Template   string
	Subdomains []string
}

// Compile-time interface satisfaction check.
var _ TileSource = TemplateSource{}

// NewTemplateSource returns a source for template, falling back to the
// OpenStreetMap layer when template is empty.
func NewTemplateSource(template string) TemplateSource {
	if strings.TrimSpace(template) == "" {
		template = DefaultTileURL
	}
	return TemplateSource{Template: template, Subdomains: []string{"a", "b", "c"}}
}

// Tiles returns the tiles intersecting b, row by row from the north-west.
func (s TemplateSource) Tiles(b Bounds, zoom int) []TileRef {
	minX, maxX := tileX(b.West, zoom), tileX(b.East, zoom)
	minY, maxY := tileY(b.North, zoom), tileY(b.South, zoom)

	refs := make([]TileRef, 0, (maxX-minX+1)*(maxY-minY+1))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			refs = append(refs, TileRef{Z: zoom, X: x, Y: y, URL: s.URL(zoom, x, y)})
		}
	}
	return refs
}

// URL expands the template for one tile.
func (s TemplateSource) URL(z, x, y int) string {
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(z),
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
		"{s}", s.subdomain(x+y),
	)
	return r.Replace(s.Template)
}

func (s TemplateSource) subdomain(i int) string {
	if len(s.Subdomains) == 0 {
		return ""
	}
	return s.Subdomains[i%len(s.Subdomains)]
}

func tileX(lng float64, zoom int) int {
	n := math.Exp2(float64(zoom))
	x := int(math.Floor((clamp(lng, -180, 180) + 180) / 360 * n))
	return clampInt(x, 0, int(n)-1)
}

func tileY(lat float64, zoom int) int {
	n := math.Exp2(float64(zoom))
	rad := clamp(lat, -MaxLatitude, MaxLatitude) * math.Pi / 180
	y := int(math.Floor((1 - math.Asinh(math.Tan(rad))/math.Pi) / 2 * n))
	return clampInt(y, 0, int(n)-1)
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
