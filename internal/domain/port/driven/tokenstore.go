package driven

import (
	"context"
	"errors"
)

// ErrEncryptionKeyInvalid is returned when the configured secret key cannot
// seal or open the stored token.
var ErrEncryptionKeyInvalid = errors.New("token encryption key is invalid: check MYTRAVELLOG_SECRET_KEY")

// TokenStore defines the driven port for the durable session token slot.
// There is exactly one slot; Get returns ("", nil) when it is empty.
type TokenStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
