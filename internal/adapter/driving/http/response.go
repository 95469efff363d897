package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/mytravellog/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// LocationResponse is the JSON representation of a location record. Optional
// fields are null when absent.
type LocationResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	City        string  `json:"city"`
	Country     string  `json:"country"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	VisitedAt   *string `json:"visited_at"`
}

// SessionResponse is the JSON body of GET /api/v1/session.
type SessionResponse struct {
	Authenticated bool `json:"authenticated"`
}

// HealthResponse is the JSON representation of a health check.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func toLocationResponse(loc model.Location) LocationResponse {
	resp := LocationResponse{
		ID:          loc.ID,
		Title:       loc.Title,
		City:        loc.City,
		Country:     loc.Country,
		X:           loc.X,
		Y:           loc.Y,
		Description: loc.Description,
		ImageURL:    loc.ImageURL,
	}
	if loc.VisitedAt != nil {
		d := loc.VisitedAt.Format(model.DateLayout)
		resp.VisitedAt = &d
	}
	return resp
}

func toLocationResponses(locs []model.Location) []LocationResponse {
	resp := make([]LocationResponse, 0, len(locs))
	for _, loc := range locs {
		resp = append(resp, toLocationResponse(loc))
	}
	return resp
}
