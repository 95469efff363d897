// Package devstore is an in-memory implementation of the location store's
// HTTP API. It backs local development runs and the client integration tests.
package devstore

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/mytravellog/internal/domain/model"
)

var errNotFound = errors.New("location not found")

type record struct {
	loc       model.Location
	createdAt time.Time
}

// Store holds the collection. Every mutation bumps the version used as the
// collection ETag.
type Store struct {
	mu      sync.RWMutex
	records map[string]record
	version uint64
	now     func() time.Time
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{records: make(map[string]record), now: time.Now}
}

// List returns all records, newest first.
func (s *Store) List() ([]model.Location, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]record, 0, len(s.records))
	for _, r := range s.records {
		recs = append(recs, r)
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].createdAt.Equal(recs[j].createdAt) {
			return recs[i].loc.ID > recs[j].loc.ID
		}
		return recs[i].createdAt.After(recs[j].createdAt)
	})

	out := make([]model.Location, len(recs))
	for i, r := range recs {
		out[i] = r.loc
	}
	return out, s.version
}

// Get returns record id.
func (s *Store) Get(id string) (model.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return model.Location{}, errNotFound
	}
	return r.loc, nil
}

// Create assigns a fresh identifier and stores loc.
func (s *Store) Create(loc model.Location) (model.Location, error) {
	loc = loc.Normalized()
	if err := loc.Validate(); err != nil {
		return model.Location{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	loc.ID = uuid.NewString()
	s.records[loc.ID] = record{loc: loc, createdAt: s.now()}
	s.version++
	return loc, nil
}

// Replace overwrites every attribute of record id.
func (s *Store) Replace(id string, loc model.Location) (model.Location, error) {
	loc = loc.Normalized()
	if err := loc.Validate(); err != nil {
		return model.Location{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return model.Location{}, errNotFound
	}
	loc.ID = id
	r.loc = loc
	s.records[id] = r
	s.version++
	return loc, nil
}

// Delete removes record id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return errNotFound
	}
	delete(s.records, id)
	s.version++
	return nil
}

func etag(version uint64) string {
	return fmt.Sprintf(`"v%d"`, version)
}
