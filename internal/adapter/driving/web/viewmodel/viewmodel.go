// Package viewmodel defines presentation-ready structs for the map UI
// components. View models decouple rendering from domain model types.
package viewmodel

// MapPageViewModel holds everything the map page renders.
type MapPageViewModel struct {
	Authenticated bool
	CSRFToken     string
	Flash         string

	Width, Height int
	Zoom          int
	ViewQuery     string // lon/lat/z/w/h query string for the current view.

	ZoomIn, ZoomOut                      string // hrefs; empty when at the limit.
	PanNorth, PanSouth, PanEast, PanWest string

	Tiles   []TileViewModel
	Markers []MarkerViewModel
	Form    *DraftFormViewModel
}

// TileViewModel is one positioned tile image.
type TileViewModel struct {
	URL       string
	Left, Top int
}

// MarkerViewModel is one positioned marker.
type MarkerViewModel struct {
	ID          string
	Title       string
	Left, Top   int
	Selected    bool
	ActivateURL string
	CardURL     string
	LeaveURL    string
}

// CardViewModel holds the hover detail card content.
type CardViewModel struct {
	ID              string
	Title           string
	Place           string
	DescriptionHTML string // sanitized HTML
	VisitedAt       string // "2 Jan 2006", empty when unknown
	ImageURL        string
	Left, Top       int
}

// DraftFormViewModel holds the edit sidebar state.
type DraftFormViewModel struct {
	IsNew            bool
	Heading          string
	Title            string
	City             string
	Country          string
	X                string
	Y                string
	Description      string
	ImageURL         string
	ImagePreview     string // resolved absolute URL for ImageURL
	VisitedAt        string
	StagedFilename   string
	ConfirmingDelete bool
	Notice           string
	FieldErrors      map[string]string
}
