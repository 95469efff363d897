// Package storeapi implements the LocationStore and Authenticator ports
// against the remote location store's HTTP API.
package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/ericfisherdev/mytravellog/internal/domain/model"
	"github.com/ericfisherdev/mytravellog/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.LocationStore = (*Client)(nil)

// Client implements driven.LocationStore. The bearer token is pulled from
// the injected TokenSource on every request.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  driven.TokenSource
	logger  *slog.Logger
}

// NewClient creates a Client for the store at baseURL. tokens may be nil, in
// which case every request is sent without credentials.
func NewClient(baseURL string, httpClient *http.Client, tokens driven.TokenSource) (*Client, error) {
	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL: u,
		http:    httpClient,
		tokens:  tokens,
		logger:  slog.Default(),
	}, nil
}

// List returns the whole collection. The request always revalidates any
// cached copy so a refresh never serves stale data.
func (c *Client) List(ctx context.Context) ([]model.Location, error) {
	var body []locationJSON
	if err := c.do(ctx, http.MethodGet, "/locations", nil, "", &body); err != nil {
		return nil, err
	}

	out := make([]model.Location, 0, len(body))
	for _, l := range body {
		loc, err := c.decode(http.MethodGet, "/locations", l)
		if err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	return out, nil
}

// Get returns a single record.
func (c *Client) Get(ctx context.Context, id string) (model.Location, error) {
	p := "/locations/" + url.PathEscape(id)
	var body locationJSON
	if err := c.do(ctx, http.MethodGet, p, nil, "", &body); err != nil {
		return model.Location{}, err
	}
	return c.decode(http.MethodGet, p, body)
}

// Create validates loc locally and, if valid, asks the store to persist it.
func (c *Client) Create(ctx context.Context, loc model.Location) (model.Location, error) {
	payload, err := encodeValid(loc)
	if err != nil {
		return model.Location{}, err
	}

	var body locationJSON
	if err := c.do(ctx, http.MethodPost, "/locations", payload, "application/json", &body); err != nil {
		return model.Location{}, err
	}

	created, err := c.decode(http.MethodPost, "/locations", body)
	if err != nil {
		return model.Location{}, err
	}
	c.logger.Info("location created", "id", created.ID, "title", created.Title)
	return created, nil
}

// Update sends every attribute of loc as the new state of record id.
func (c *Client) Update(ctx context.Context, id string, loc model.Location) (model.Location, error) {
	payload, err := encodeValid(loc)
	if err != nil {
		return model.Location{}, err
	}

	p := "/locations/" + url.PathEscape(id)
	var body locationJSON
	if err := c.do(ctx, http.MethodPut, p, payload, "application/json", &body); err != nil {
		return model.Location{}, err
	}

	updated, err := c.decode(http.MethodPut, p, body)
	if err != nil {
		return model.Location{}, err
	}
	if updated.ID == "" {
		updated.ID = id
	}
	c.logger.Info("location updated", "id", id)
	return updated, nil
}

// Delete removes record id.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/locations/"+url.PathEscape(id), nil, "", nil); err != nil {
		return err
	}
	c.logger.Info("location deleted", "id", id)
	return nil
}

// UploadImage posts data as the multipart field "file" and returns the
// reference URL reported by the store.
func (c *Client) UploadImage(ctx context.Context, filename string, data []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", path.Base(filename))
	if err != nil {
		return "", fmt.Errorf("creating multipart part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("writing multipart part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("closing multipart writer: %w", err)
	}

	var body uploadResponse
	if err := c.do(ctx, http.MethodPost, "/upload", &buf, mw.FormDataContentType(), &body); err != nil {
		return "", err
	}
	if body.ImageURL == "" {
		return "", &driven.StoreError{Kind: driven.ErrNetwork, Message: "The store did not return an image reference."}
	}
	return body.ImageURL, nil
}

// ResolveURL turns a store-relative reference such as "/uploads/x.png" into
// an absolute URL. Absolute references are returned unchanged.
func (c *Client) ResolveURL(ref string) string {
	u, err := url.Parse(ref)
	if err != nil || u.IsAbs() {
		return ref
	}
	return c.baseURL.ResolveReference(u).String()
}

func (c *Client) do(ctx context.Context, method, p string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(p), body)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", method, p, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if method == http.MethodGet {
		req.Header.Set("Cache-Control", "max-age=0")
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			c.logger.Warn("session token unreadable, sending request anonymously", "method", method, "path", p, "error", err)
			token = ""
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("store request failed", "method", method, "path", p, "error", err)
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := statusError(resp)
		c.logger.Warn("store rejected request", "method", method, "path", p, "status", resp.StatusCode, "message", se.Message)
		return se
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return transportError(fmt.Errorf("decoding %s %s response: %w", method, p, err))
	}
	return nil
}

// decode converts a response record, reporting a malformed one the same way
// as an undecodable body.
func (c *Client) decode(method, p string, in locationJSON) (model.Location, error) {
	loc, err := fromWire(in)
	if err != nil {
		c.logger.Warn("store returned malformed record", "method", method, "path", p, "error", err)
		return model.Location{}, transportError(fmt.Errorf("decoding %s %s response: %w", method, p, err))
	}
	return loc, nil
}

func (c *Client) endpoint(p string) string {
	return strings.TrimRight(c.baseURL.String(), "/") + p
}

func encodeValid(loc model.Location) (io.Reader, error) {
	loc = loc.Normalized()
	if err := loc.Validate(); err != nil {
		return nil, driven.NewValidationError(err)
	}

	raw, err := json.Marshal(toWire(loc))
	if err != nil {
		return nil, fmt.Errorf("encoding location: %w", err)
	}
	return bytes.NewReader(raw), nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing store URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("store URL %q must use http or https", raw)
	}
	return u, nil
}
