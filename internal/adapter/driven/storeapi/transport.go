package storeapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/sony/gobreaker"

	"github.com/ericfisherdev/mytravellog/internal/observability"
)

// errServerFailure marks a 5xx response as a breaker failure. The response
// itself is still handed back to the caller.
var errServerFailure = errors.New("store server error")

// TransportOptions configures NewHTTPClient.
type TransportOptions struct {
	Timeout time.Duration
	Metrics *observability.Collector
	Logger  *slog.Logger

	// Base is the innermost round tripper; http.DefaultTransport when nil.
	Base http.RoundTripper
}

// NewHTTPClient builds the http.Client shared by the Client and the
// Authenticator. The transport stack, outermost first:
//  1. metrics (request count and latency per method)
//  2. gobreaker (fails fast while the store is down, never retries)
//  3. httpcache (ETag revalidation of GET responses)
func NewHTTPClient(opts TransportOptions) *http.Client {
	base := opts.Base
	if base == nil {
		base = http.DefaultTransport
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cache := httpcache.NewMemoryCacheTransport()
	cache.Transport = base

	breaker := newBreakerTransport(cache, opts.Metrics, logger)

	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: &metricsTransport{next: breaker, metrics: opts.Metrics},
	}
}

type breakerTransport struct {
	next http.RoundTripper
	cb   *gobreaker.CircuitBreaker
}

func newBreakerTransport(next http.RoundTripper, metrics *observability.Collector, logger *slog.Logger) *breakerTransport {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "location-store",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("store circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			metrics.SetBreakerState(int(to))
		},
	})
	return &breakerTransport{next: next, cb: cb}
}

func (t *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	_, err := t.cb.Execute(func() (any, error) {
		r, err := t.next.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		resp = r
		if r.StatusCode >= http.StatusInternalServerError {
			return nil, errServerFailure
		}
		return nil, nil
	})

	if resp != nil {
		return resp, nil
	}
	return nil, err
}

type metricsTransport struct {
	next    http.RoundTripper
	metrics *observability.Collector
}

func (t *metricsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)

	outcome := "network"
	if err == nil {
		outcome = http.StatusText(resp.StatusCode)
		if resp.Header.Get(httpcache.XFromCache) != "" {
			outcome = "revalidated"
		}
	}
	t.metrics.ObserveStoreRequest(req.Method, outcome, time.Since(start))

	return resp, err
}
