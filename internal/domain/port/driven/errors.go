package driven

import (
	"errors"
	"fmt"
)

// Failure kinds reported by the location store and the authentication
// collaborator. Callers match them with errors.Is.
var (
	// ErrValidation indicates the payload was rejected, either locally before
	// sending or by the store.
	ErrValidation = errors.New("validation failed")

	// ErrAuthentication indicates a login attempt did not yield a token.
	ErrAuthentication = errors.New("authentication failed")

	// ErrAuthorization indicates the store rejected the bearer token on a gated call.
	ErrAuthorization = errors.New("not authorized")

	// ErrNotFound indicates the referenced location no longer exists.
	ErrNotFound = errors.New("location not found")

	// ErrNetwork indicates a transport-level failure, including timeouts.
	ErrNetwork = errors.New("network failure")
)

// StoreError carries a failure kind together with the message to show the
// user. Message is the store's own wording when the store supplied one.
type StoreError struct {
	Kind    error
	Message string
	Status  int // HTTP status when the failure came from a response; 0 otherwise.
	Err     error
}

func (e *StoreError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return e.Kind.Error()
}

// Unwrap exposes both the kind and the underlying cause.
func (e *StoreError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewValidationError wraps a local validation failure so it matches ErrValidation.
func NewValidationError(err error) *StoreError {
	return &StoreError{Kind: ErrValidation, Message: err.Error(), Err: err}
}

// UserMessage returns the text to surface for err: the store message when
// present, otherwise a generic notice for the failure kind.
func UserMessage(err error) string {
	var se *StoreError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}

	switch {
	case errors.Is(err, ErrAuthentication):
		return "Login failed. Please check your credentials."
	case errors.Is(err, ErrAuthorization):
		return "Your session has expired. Please log in again."
	case errors.Is(err, ErrNotFound):
		return "That location no longer exists. The map has been refreshed."
	case errors.Is(err, ErrNetwork):
		return "The location store could not be reached. Please try again."
	case errors.Is(err, ErrValidation):
		return "The location could not be saved. Please check the form."
	default:
		return "Something went wrong. Please try again."
	}
}
