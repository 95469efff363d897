package storeapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/mytravellog/internal/domain/model"
)

// locationJSON is the store's record shape. Coordinates arrive either as JSON
// numbers or as numeric strings; a null or missing coordinate is rejected by
// fromWire.
type locationJSON struct {
	ID          string      `json:"id,omitempty"`
	Title       string      `json:"title"`
	City        string      `json:"city"`
	Country     string      `json:"country"`
	X           *coordinate `json:"x"`
	Y           *coordinate `json:"y"`
	Description *string     `json:"description"`
	ImageURL    *string     `json:"image_url"`
	VisitedAt   *string     `json:"visited_at"`
}

type coordinate float64

func (c *coordinate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("coordinate %q: %w", s, err)
		}
		*c = coordinate(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = coordinate(v)
	return nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type uploadResponse struct {
	ImageURL string `json:"image_url"`
}

// errorBody covers both error shapes a store may use.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func toWire(loc model.Location) locationJSON {
	loc = loc.Normalized()
	x, y := coordinate(loc.X), coordinate(loc.Y)
	out := locationJSON{
		Title:       loc.Title,
		City:        loc.City,
		Country:     loc.Country,
		X:           &x,
		Y:           &y,
		Description: loc.Description,
		ImageURL:    loc.ImageURL,
	}
	if loc.VisitedAt != nil {
		s := loc.VisitedAt.UTC().Format(time.RFC3339)
		out.VisitedAt = &s
	}
	return out
}

// fromWire converts a decoded record. A record without both coordinates or
// with a visited_at that is neither RFC 3339 nor a bare date is malformed.
func fromWire(in locationJSON) (model.Location, error) {
	if in.X == nil || in.Y == nil {
		return model.Location{}, fmt.Errorf("record %q: missing coordinate", in.ID)
	}
	visited, err := parseVisitedAt(in.VisitedAt)
	if err != nil {
		return model.Location{}, fmt.Errorf("record %q: %w", in.ID, err)
	}

	loc := model.Location{
		ID:          in.ID,
		Title:       in.Title,
		City:        in.City,
		Country:     in.Country,
		X:           float64(*in.X),
		Y:           float64(*in.Y),
		Description: in.Description,
		ImageURL:    in.ImageURL,
		VisitedAt:   visited,
	}
	return loc.Normalized(), nil
}

// parseVisitedAt accepts RFC 3339 timestamps and bare dates. Null and blank
// values mean absent.
func parseVisitedAt(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, model.DateLayout} {
		if t, err := time.Parse(layout, v); err == nil {
			d := model.DateOf(t)
			return &d, nil
		}
	}
	return nil, fmt.Errorf("visited_at %q is not a date", v)
}
