package application_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/ericfisherdev/mytravellog/internal/domain/model"
	"github.com/ericfisherdev/mytravellog/internal/domain/port/driven"
)

// --- Authenticator mock ---

type mockAuthenticator struct {
	username, password, token string
	err                       error
	calls                     int
}

func (m *mockAuthenticator) Login(_ context.Context, username, password string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	if username != m.username || password != m.password {
		return "", &driven.StoreError{Kind: driven.ErrAuthentication, Message: "invalid username or password"}
	}
	return m.token, nil
}

// --- TokenStore mock ---

type memTokenStore struct {
	mu    sync.Mutex
	value string
}

func (m *memTokenStore) Get(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, nil
}

func (m *memTokenStore) Set(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = token
	return nil
}

func (m *memTokenStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = ""
	return nil
}

// --- Session mock ---

type stubSession struct {
	authenticated bool
	invalidated   int
}

func (s *stubSession) IsAuthenticated(context.Context) bool { return s.authenticated }

func (s *stubSession) Invalidate(context.Context) {
	s.invalidated++
	s.authenticated = false
}

// --- LocationStore mock ---

// fakeStore keeps records in memory and counts every call so tests can
// assert that no network request was made.
type fakeStore struct {
	mu      sync.Mutex
	records []model.Location
	nextID  int

	calls map[string]int

	listErr   error
	createErr error
	updateErr error
	deleteErr error
	uploadErr error
	uploadRef string
}

func newFakeStore(records ...model.Location) *fakeStore {
	return &fakeStore{records: records, calls: map[string]int{}, uploadRef: "/uploads/fixed.png"}
}

func (f *fakeStore) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeStore) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeStore) List(context.Context) ([]model.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["list"]++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.Location(nil), f.records...), nil
}

func (f *fakeStore) Get(_ context.Context, id string) (model.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["get"]++
	for _, r := range f.records {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Location{}, &driven.StoreError{Kind: driven.ErrNotFound}
}

func (f *fakeStore) Create(_ context.Context, loc model.Location) (model.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["create"]++
	if f.createErr != nil {
		return model.Location{}, f.createErr
	}
	f.nextID++
	loc.ID = fmt.Sprintf("id-%d", f.nextID)
	f.records = append(f.records, loc)
	return loc, nil
}

func (f *fakeStore) Update(_ context.Context, id string, loc model.Location) (model.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["update"]++
	if f.updateErr != nil {
		return model.Location{}, f.updateErr
	}
	for i, r := range f.records {
		if r.ID == id {
			loc.ID = id
			f.records[i] = loc
			return loc, nil
		}
	}
	return model.Location{}, &driven.StoreError{Kind: driven.ErrNotFound}
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["delete"]++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, r := range f.records {
		if r.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return &driven.StoreError{Kind: driven.ErrNotFound}
}

func (f *fakeStore) UploadImage(context.Context, string, []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["upload"]++
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return f.uploadRef, nil
}
