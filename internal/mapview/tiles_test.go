package mapview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateSource_DefaultsToOSM(t *testing.T) {
	s := NewTemplateSource("  ")
	assert.Equal(t, "https://tile.openstreetmap.org/3/4/2.png", s.URL(3, 4, 2))
}

func TestTemplateSource_Subdomains(t *testing.T) {
	s := NewTemplateSource("https://{s}.tiles.example/{z}/{x}/{y}.png")
	assert.Equal(t, "https://a.tiles.example/1/0/0.png", s.URL(1, 0, 0))
	assert.Equal(t, "https://b.tiles.example/1/1/0.png", s.URL(1, 1, 0))
}

func TestTemplateSource_WholeWorldAtZoomOne(t *testing.T) {
	s := NewTemplateSource("")
	tiles := s.Tiles(Bounds{West: -180, South: -MaxLatitude, East: 180, North: MaxLatitude}, 1)

	require.Len(t, tiles, 4)
	assert.Equal(t, TileRef{Z: 1, X: 0, Y: 0, URL: "https://tile.openstreetmap.org/1/0/0.png"}, tiles[0])
	assert.Equal(t, 1, tiles[3].X)
	assert.Equal(t, 1, tiles[3].Y)
}

func TestTemplateSource_SmallRange(t *testing.T) {
	s := NewTemplateSource("")
	// Central London at zoom 10 sits inside tile 511/340.
	tiles := s.Tiles(Bounds{West: -0.13, South: 51.50, East: -0.12, North: 51.51}, 10)

	require.Len(t, tiles, 1)
	assert.Equal(t, 511, tiles[0].X)
	assert.Equal(t, 340, tiles[0].Y)
}

func TestRenderer_TilesCoverViewport(t *testing.T) {
	v := NewViewport(0, 0, 2, 512, 512)
	r := NewRenderer(staticCache{}, NewTemplateSource(""), nil)

	tiles := r.Tiles(v)
	require.NotEmpty(t, tiles)

	// The top-left tile starts at or before the viewport's corner.
	assert.LessOrEqual(t, tiles[0].Left, 0.0)
	assert.LessOrEqual(t, tiles[0].Top, 0.0)
	last := tiles[len(tiles)-1]
	assert.GreaterOrEqual(t, last.Left+TileSize, 512.0)
	assert.GreaterOrEqual(t, last.Top+TileSize, 512.0)
}
