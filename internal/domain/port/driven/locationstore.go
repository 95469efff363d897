package driven

import (
	"context"

	"github.com/ericfisherdev/mytravellog/internal/domain/model"
)

// LocationLister is the read side needed to refresh the location cache.
type LocationLister interface {
	List(ctx context.Context) ([]model.Location, error)
}

// LocationStore defines the driven port for the remote location collection.
// Every method fails with a *StoreError whose Kind is one of the sentinels in
// this package.
type LocationStore interface {
	LocationLister

	// Get returns one record or fails with ErrNotFound.
	Get(ctx context.Context, id string) (model.Location, error)

	// Create validates loc, sends it, and returns the stored record carrying
	// the store-assigned identifier.
	Create(ctx context.Context, loc model.Location) (model.Location, error)

	// Update replaces every attribute of record id with loc. It fails with
	// ErrNotFound if id no longer exists.
	Update(ctx context.Context, id string, loc model.Location) (model.Location, error)

	// Delete permanently removes record id, failing with ErrNotFound if it is gone.
	Delete(ctx context.Context, id string) error

	// UploadImage stores raw image bytes and returns a reference usable as
	// the record's image URL.
	UploadImage(ctx context.Context, filename string, data []byte) (string, error)
}

// Authenticator exchanges credentials for an opaque bearer token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// TokenSource yields the bearer token to attach to store requests. An empty
// token means the request goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}
