package httphandler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httphandler "github.com/ericfisherdev/mytravellog/internal/adapter/driving/http"
	"github.com/ericfisherdev/mytravellog/internal/domain/model"
	"github.com/ericfisherdev/mytravellog/internal/domain/port/driven"
	"github.com/ericfisherdev/mytravellog/internal/observability"
)

// --- Mock implementations ---

type mockCache struct {
	current    []model.Location
	next       []model.Location
	refreshErr error
	refreshes  int
}

func (m *mockCache) Refresh(_ context.Context) error {
	m.refreshes++
	if m.refreshErr != nil {
		return m.refreshErr
	}
	m.current = m.next
	return nil
}

func (m *mockCache) Current() []model.Location {
	out := make([]model.Location, len(m.current))
	copy(out, m.current)
	return out
}

type mockSession struct {
	authenticated bool
}

func (m *mockSession) IsAuthenticated(_ context.Context) bool { return m.authenticated }

// --- Test helpers ---

var testDate = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func setupMux(cache *mockCache, session *mockSession) http.Handler {
	h := httphandler.NewHandler(cache, session, nil, slog.Default())
	return httphandler.NewServeMux(h, slog.Default())
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	err := json.NewDecoder(rec.Body).Decode(v)
	require.NoError(t, err)
}

func sampleLocations() []model.Location {
	return []model.Location{
		{
			ID:          "a1",
			Title:       "Harbour walk",
			City:        "Lisbon",
			Country:     "Portugal",
			X:           -9.14,
			Y:           38.72,
			Description: model.StringPtr("Tram 28 at dawn"),
			VisitedAt:   &testDate,
		},
		{ID: "b2", Title: "Old town", City: "Kraków", Country: "Poland", X: 19.94, Y: 50.06},
	}
}

// --- Tests ---

func TestListLocations(t *testing.T) {
	tests := []struct {
		name    string
		cache   *mockCache
		wantLen int
		check   func(t *testing.T, first map[string]any)
	}{
		{
			name:    "empty snapshot is an empty array",
			cache:   &mockCache{},
			wantLen: 0,
		},
		{
			name:    "snapshot records",
			cache:   &mockCache{current: sampleLocations()},
			wantLen: 2,
			check: func(t *testing.T, first map[string]any) {
				assert.Equal(t, "a1", first["id"])
				assert.Equal(t, "Lisbon", first["city"])
				assert.InDelta(t, -9.14, first["x"], 1e-9)
				assert.InDelta(t, 38.72, first["y"], 1e-9)
				assert.Equal(t, "Tram 28 at dawn", first["description"])
				assert.Nil(t, first["image_url"])
				assert.Equal(t, "2024-05-01", first["visited_at"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := setupMux(tt.cache, &mockSession{})
			req := httptest.NewRequest(http.MethodGet, "/api/v1/locations", nil)
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)

			var resp []map[string]any
			decodeJSON(t, rec, &resp)
			require.NotNil(t, resp)
			assert.Len(t, resp, tt.wantLen)
			if tt.check != nil && len(resp) > 0 {
				tt.check(t, resp[0])
			}
			assert.Zero(t, tt.cache.refreshes, "listing must not contact the store")
		})
	}
}

func TestRefreshLocations(t *testing.T) {
	tests := []struct {
		name       string
		refreshErr error
		wantStatus int
		wantLen    int
		wantError  string
	}{
		{
			name:       "replaces snapshot",
			wantStatus: http.StatusOK,
			wantLen:    2,
		},
		{
			name:       "network failure keeps previous snapshot",
			refreshErr: &driven.StoreError{Kind: driven.ErrNetwork, Err: errors.New("dial tcp: refused")},
			wantStatus: http.StatusBadGateway,
			wantError:  "The location store could not be reached. Please try again.",
		},
		{
			name:       "store message surfaces verbatim",
			refreshErr: &driven.StoreError{Kind: driven.ErrAuthorization, Message: "Token expired"},
			wantStatus: http.StatusUnauthorized,
			wantError:  "Token expired",
		},
		{
			name:       "unknown failure",
			refreshErr: errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Something went wrong. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			previous := sampleLocations()[1:]
			cache := &mockCache{current: previous, next: sampleLocations(), refreshErr: tt.refreshErr}
			mux := setupMux(cache, &mockSession{})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/locations/refresh", nil)
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, 1, cache.refreshes)

			if tt.wantError != "" {
				var resp map[string]string
				decodeJSON(t, rec, &resp)
				assert.Equal(t, tt.wantError, resp["error"])
				assert.Equal(t, previous, cache.Current())
				return
			}

			var resp []map[string]any
			decodeJSON(t, rec, &resp)
			assert.Len(t, resp, tt.wantLen)
		})
	}
}

func TestSession(t *testing.T) {
	for _, authenticated := range []bool{true, false} {
		mux := setupMux(&mockCache{}, &mockSession{authenticated: authenticated})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]bool
		decodeJSON(t, rec, &resp)
		assert.Equal(t, authenticated, resp["authenticated"])
	}
}

func TestHealth(t *testing.T) {
	mux := setupMux(&mockCache{}, &mockSession{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "ok", resp["status"])
	assert.NotEmpty(t, resp["time"])
}

func TestMetricsEndpoint(t *testing.T) {
	collector := observability.NewCollector("mytravellog")
	collector.ObserveRefresh(3, nil)

	h := httphandler.NewHandler(&mockCache{}, &mockSession{}, collector.Handler(), slog.Default())
	mux := httphandler.NewServeMux(h, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mytravellog_cache_refreshes_total")
}

func TestMetricsNotRegisteredWithoutCollector(t *testing.T) {
	mux := setupMux(&mockCache{}, &mockSession{})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApplyMiddleware_RecoversPanic(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /boom", func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	})
	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp map[string]string
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "internal server error", resp["error"])
}

func TestApplyMiddleware_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /teapot", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})
	handler := httphandler.ApplyMiddleware(mux, logger)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teapot", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	// Health probes log at debug and are filtered out at info.
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "http request", entry["msg"])
	assert.Equal(t, "/teapot", entry["path"])
	assert.EqualValues(t, http.StatusTeapot, entry["status"])
	assert.EqualValues(t, len("short and stout"), entry["bytes"])
}
