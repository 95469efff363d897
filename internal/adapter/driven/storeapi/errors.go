package storeapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/ericfisherdev/mytravellog/internal/domain/port/driven"
)

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// statusError maps a non-2xx response to the error taxonomy. The store's own
// message is kept verbatim when the body carries one.
func statusError(resp *http.Response) *driven.StoreError {
	msg := readErrorMessage(resp.Body)

	var kind error
	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge,
		http.StatusUnsupportedMediaType:
		kind = driven.ErrValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = driven.ErrAuthorization
	case http.StatusNotFound:
		kind = driven.ErrNotFound
	default:
		kind = driven.ErrNetwork
	}

	return &driven.StoreError{Kind: kind, Message: msg, Status: resp.StatusCode}
}

// transportError wraps a failed round trip, including timeouts, context
// cancellation and an open circuit breaker.
func transportError(err error) *driven.StoreError {
	return &driven.StoreError{Kind: driven.ErrNetwork, Err: err}
}

func readErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if eb.Error != "" {
			return eb.Error
		}
		return ""
	}

	// Plain-text bodies are surfaced as long as they are short enough to read.
	text := strings.TrimSpace(string(raw))
	if len(text) > 300 || strings.HasPrefix(text, "<") {
		return ""
	}
	return text
}
