package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ericfisherdev/mytravellog/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Authenticator = (*Authenticator)(nil)

// Authenticator implements driven.Authenticator against POST /login.
type Authenticator struct {
	endpoint string
	http     *http.Client
}

// NewAuthenticator creates an Authenticator for the store at baseURL.
func NewAuthenticator(baseURL string, httpClient *http.Client) (*Authenticator, error) {
	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Authenticator{
		endpoint: strings.TrimRight(u.String(), "/") + "/login",
		http:     httpClient,
	}, nil
}

// Login exchanges credentials for a token. Every failure, including a
// transport failure, is reported as ErrAuthentication.
func (a *Authenticator) Login(ctx context.Context, username, password string) (string, error) {
	raw, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return "", fmt.Errorf("encoding login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("building login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return "", &driven.StoreError{
			Kind:    driven.ErrAuthentication,
			Message: "The location store could not be reached. Please try again.",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		se := statusError(resp)
		return "", &driven.StoreError{
			Kind:    driven.ErrAuthentication,
			Message: se.Message,
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("login responded %d", resp.StatusCode),
		}
	}

	var body loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", &driven.StoreError{Kind: driven.ErrAuthentication, Err: fmt.Errorf("decoding login response: %w", err)}
	}
	if body.Token == "" {
		return "", &driven.StoreError{Kind: driven.ErrAuthentication, Err: errors.New("login response carried no token")}
	}
	return body.Token, nil
}
