package application

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/mytravellog/internal/domain/model"
	"github.com/ericfisherdev/mytravellog/internal/domain/port/driven"
)

// RefreshObserver is told about every completed refresh that was applied or
// failed. Superseded refreshes are not reported.
type RefreshObserver func(records int, err error)

// LocationCache holds the client-side snapshot of the collection. It is only
// ever replaced wholesale by Refresh; nothing mutates it optimistically.
type LocationCache struct {
	lister driven.LocationLister
	logger *slog.Logger

	mu       sync.RWMutex
	snapshot []model.Location
	started  uint64 // sequence of the most recently started refresh
	observer RefreshObserver
}

// NewLocationCache creates an empty cache fed by lister.
func NewLocationCache(lister driven.LocationLister) *LocationCache {
	return &LocationCache{
		lister:   lister,
		logger:   slog.Default(),
		snapshot: []model.Location{},
	}
}

// SetObserver installs a hook called after each refresh.
func (c *LocationCache) SetObserver(fn RefreshObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = fn
}

// Refresh replaces the snapshot with the store's current collection. When
// refreshes overlap, only the most recently started one is applied. A failed
// refresh keeps the previous snapshot and returns the store error unchanged.
func (c *LocationCache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.started++
	seq := c.started
	c.mu.Unlock()

	locs, err := c.lister.List(ctx)

	c.mu.Lock()
	superseded := seq != c.started
	if err == nil && !superseded {
		c.snapshot = locs
		if c.snapshot == nil {
			c.snapshot = []model.Location{}
		}
	}
	observer := c.observer
	c.mu.Unlock()

	if superseded {
		c.logger.Debug("discarding superseded refresh", "seq", seq, "error", err)
		return err
	}

	if observer != nil {
		observer(len(locs), err)
	}
	if err != nil {
		c.logger.Warn("cache refresh failed, keeping previous snapshot", "error", err)
		return err
	}

	c.logger.Debug("cache refreshed", "records", len(locs))
	return nil
}

// Current returns a copy of the snapshot.
func (c *LocationCache) Current() []model.Location {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Location, len(c.snapshot))
	copy(out, c.snapshot)
	return out
}

// Find returns the cached record with the given identifier.
func (c *LocationCache) Find(id string) (model.Location, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, l := range c.snapshot {
		if l.ID == id {
			return l, true
		}
	}
	return model.Location{}, false
}
