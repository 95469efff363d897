package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the form representation of VisitedAt.
const DateLayout = "2006-01-02"

// StagedImage is a local file selected for upload but not yet sent.
type StagedImage struct {
	Filename string
	Data     []byte
}

// Draft is the in-progress form state for a create or an update. Every
// attribute is kept as the raw input string; ID is empty for a new record.
type Draft struct {
	ID          string
	Title       string
	City        string
	Country     string
	X           string
	Y           string
	Description string
	ImageURL    string
	VisitedAt   string

	Staged *StagedImage
}

// DraftFields is the user-editable part of a draft as submitted by a form.
type DraftFields struct {
	Title       string
	City        string
	Country     string
	X           string
	Y           string
	Description string
	ImageURL    string
	VisitedAt   string
}

// NewDraftFromLocation pre-fills a draft with the attributes of an existing record.
func NewDraftFromLocation(l Location) Draft {
	d := Draft{
		ID:          l.ID,
		Title:       l.Title,
		City:        l.City,
		Country:     l.Country,
		X:           strconv.FormatFloat(l.X, 'f', -1, 64),
		Y:           strconv.FormatFloat(l.Y, 'f', -1, 64),
		Description: Deref(l.Description),
		ImageURL:    Deref(l.ImageURL),
	}
	if l.VisitedAt != nil {
		d.VisitedAt = l.VisitedAt.Format(DateLayout)
	}
	return d
}

// IsNew reports whether the draft has no backing record.
func (d Draft) IsNew() bool {
	return d.ID == ""
}

// HasPendingUpload reports whether a file is staged but has not been uploaded.
func (d Draft) HasPendingUpload() bool {
	return d.Staged != nil
}

// Fields returns the editable attributes of the draft.
func (d Draft) Fields() DraftFields {
	return DraftFields{
		Title:       d.Title,
		City:        d.City,
		Country:     d.Country,
		X:           d.X,
		Y:           d.Y,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		VisitedAt:   d.VisitedAt,
	}
}

// Apply overwrites the editable attributes with f. The staged image and the
// backing identifier are left alone.
func (d *Draft) Apply(f DraftFields) {
	d.Title = f.Title
	d.City = f.City
	d.Country = f.Country
	d.X = f.X
	d.Y = f.Y
	d.Description = f.Description
	d.ImageURL = f.ImageURL
	d.VisitedAt = f.VisitedAt
}

// Location converts the raw draft into a normalized, validated record.
// Numeric and date parse failures are reported as FieldErrors alongside any
// invariant violations.
func (d Draft) Location() (Location, error) {
	var errs FieldErrors

	x, err := parseCoordinate(d.X)
	if err != nil {
		errs = append(errs, FieldError{Field: "x", Message: "x (longitude) " + err.Error()})
	}
	y, err := parseCoordinate(d.Y)
	if err != nil {
		errs = append(errs, FieldError{Field: "y", Message: "y (latitude) " + err.Error()})
	}

	loc := Location{
		ID:          d.ID,
		Title:       d.Title,
		City:        d.City,
		Country:     d.Country,
		X:           x,
		Y:           y,
		Description: StringPtr(d.Description),
		ImageURL:    StringPtr(d.ImageURL),
	}

	if v := strings.TrimSpace(d.VisitedAt); v != "" {
		t, err := time.Parse(DateLayout, v)
		if err != nil {
			errs = append(errs, FieldError{Field: "visited_at", Message: fmt.Sprintf("visited_at %q is not a YYYY-MM-DD date", v)})
		} else {
			loc.VisitedAt = &t
		}
	}

	loc = loc.Normalized()
	if verr := loc.Validate(); verr != nil {
		if fe, ok := verr.(FieldErrors); ok {
			// Range messages are redundant for coordinates that failed to parse.
			for _, e := range fe {
				if errs.has(e.Field) {
					continue
				}
				errs = append(errs, e)
			}
		} else {
			return Location{}, verr
		}
	}

	if len(errs) > 0 {
		return Location{}, errs
	}
	return loc, nil
}

func (fe FieldErrors) has(field string) bool {
	for _, e := range fe {
		if e.Field == field {
			return true
		}
	}
	return false
}

func parseCoordinate(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	return v, nil
}
