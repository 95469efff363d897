package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/mytravellog/internal/application"
	"github.com/ericfisherdev/mytravellog/internal/domain/model"
	"github.com/ericfisherdev/mytravellog/internal/domain/port/driven"
)

func loc(id, title string) model.Location {
	return model.Location{ID: id, Title: title, City: "City", Country: "Country", X: 10, Y: 20}
}

func TestLocationCache_RefreshReplacesSnapshot(t *testing.T) {
	store := newFakeStore(loc("a", "A"), loc("b", "B"))
	cache := application.NewLocationCache(store)

	assert.Empty(t, cache.Current())
	require.NoError(t, cache.Refresh(context.Background()))
	assert.Len(t, cache.Current(), 2)

	store.records = []model.Location{loc("c", "C")}
	require.NoError(t, cache.Refresh(context.Background()))

	current := cache.Current()
	require.Len(t, current, 1)
	assert.Equal(t, "c", current[0].ID)

	found, ok := cache.Find("c")
	assert.True(t, ok)
	assert.Equal(t, "C", found.Title)

	_, ok = cache.Find("a")
	assert.False(t, ok)
}

func TestLocationCache_FailedRefreshKeepsSnapshot(t *testing.T) {
	store := newFakeStore(loc("a", "A"))
	cache := application.NewLocationCache(store)
	require.NoError(t, cache.Refresh(context.Background()))

	storeErr := &driven.StoreError{Kind: driven.ErrNetwork, Err: errors.New("dial tcp: refused")}
	store.listErr = storeErr

	err := cache.Refresh(context.Background())
	assert.Same(t, storeErr, err, "store error is returned unmodified")
	assert.Len(t, cache.Current(), 1)
}

func TestLocationCache_CurrentIsACopy(t *testing.T) {
	cache := application.NewLocationCache(newFakeStore(loc("a", "A")))
	require.NoError(t, cache.Refresh(context.Background()))

	snap := cache.Current()
	snap[0].Title = "mutated"

	assert.Equal(t, "A", cache.Current()[0].Title)
}

func TestLocationCache_ObserverSeesOutcome(t *testing.T) {
	store := newFakeStore(loc("a", "A"), loc("b", "B"))
	cache := application.NewLocationCache(store)

	var gotRecords int
	var gotErr error
	cache.SetObserver(func(records int, err error) {
		gotRecords, gotErr = records, err
	})

	require.NoError(t, cache.Refresh(context.Background()))
	assert.Equal(t, 2, gotRecords)
	assert.NoError(t, gotErr)

	store.listErr = errors.New("boom")
	_ = cache.Refresh(context.Background())
	assert.Error(t, gotErr)
}

// gatedLister blocks each List call until released, returning the records
// it was configured with at call time.
type gatedLister struct {
	mu      sync.Mutex
	calls   int
	gates   []chan struct{}
	results [][]model.Location
	entered chan int
}

func (g *gatedLister) List(context.Context) ([]model.Location, error) {
	g.mu.Lock()
	n := g.calls
	g.calls++
	gate := g.gates[n]
	result := g.results[n]
	g.mu.Unlock()

	g.entered <- n
	<-gate
	return result, nil
}

func TestLocationCache_LatestStartedRefreshWins(t *testing.T) {
	lister := &gatedLister{
		gates:   []chan struct{}{make(chan struct{}), make(chan struct{})},
		results: [][]model.Location{{loc("old", "Old")}, {loc("new", "New")}},
		entered: make(chan int, 2),
	}
	cache := application.NewLocationCache(lister)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = cache.Refresh(context.Background()) }()
	<-lister.entered
	go func() { defer wg.Done(); _ = cache.Refresh(context.Background()) }()
	<-lister.entered

	// The newer refresh completes first, then the older one arrives late.
	close(lister.gates[1])
	close(lister.gates[0])
	wg.Wait()

	current := cache.Current()
	require.Len(t, current, 1)
	assert.Equal(t, "new", current[0].ID)
}
