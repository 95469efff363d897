package model

import (
	"strings"
	"time"
)

// Coordinate domains for a location record.
const (
	MinLongitude = -180.0
	MaxLongitude = 180.0
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
)

// Location is a visited place recorded in the travel log. X is the longitude
// and Y the latitude. Optional fields are nil when no value is present; an
// empty string is never used to mean "not provided".
type Location struct {
	ID          string
	Title       string     `validate:"required,max=200"`
	City        string     `validate:"required,max=120"`
	Country     string     `validate:"required,max=120"`
	X           float64    `validate:"gte=-180,lte=180"`
	Y           float64    `validate:"gte=-90,lte=90"`
	Description *string    `validate:"omitempty,max=5000"`
	ImageURL    *string    `validate:"omitempty,max=2048"`
	VisitedAt   *time.Time // Date precision, UTC midnight.
}

// Normalized returns a copy with text trimmed, empty optional values
// collapsed to nil and VisitedAt truncated to its calendar date.
func (l Location) Normalized() Location {
	out := l
	out.Title = strings.TrimSpace(l.Title)
	out.City = strings.TrimSpace(l.City)
	out.Country = strings.TrimSpace(l.Country)
	out.Description = OptionalString(l.Description)
	out.ImageURL = OptionalString(l.ImageURL)
	if l.VisitedAt != nil {
		d := DateOf(*l.VisitedAt)
		out.VisitedAt = &d
	}
	return out
}

// Place returns the "city, country" label shown on detail cards.
func (l Location) Place() string {
	return l.City + ", " + l.Country
}

// OptionalString trims s and returns nil when nothing remains.
func OptionalString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// StringPtr returns a pointer to s, or nil for the empty string.
func StringPtr(s string) *string {
	return OptionalString(&s)
}

// DateOf truncates t to midnight UTC of its calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Deref returns the pointed-to string or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
