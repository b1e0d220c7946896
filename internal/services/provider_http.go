package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"dojohub/internal/logging"
	"dojohub/internal/metrics"
)

const (
	providerTimeout      = 15 * time.Second
	providerMaxBody      = 1 << 20
	providerTripFailures = 5
)

// providerStatusError is a non-2xx answer from a payment provider.
type providerStatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *providerStatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d: %s", e.Provider, e.Code, e.Body)
}

// providerHTTP sends provider requests through a circuit breaker. Client
// errors (4xx) do not count towards tripping it.
type providerHTTP struct {
	name string
	http *http.Client
	cb   *gobreaker.CircuitBreaker[[]byte]
}

func newProviderHTTP(name string, client *http.Client) *providerHTTP {
	if client == nil {
		client = &http.Client{Timeout: providerTimeout}
	}
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= providerTripFailures
		},
		IsSuccessful: func(err error) bool {
			var statusErr *providerStatusError
			if errors.As(err, &statusErr) {
				return statusErr.Code < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("provider circuit breaker state change")
		},
	})
	return &providerHTTP{name: name, http: client, cb: cb}
}

// do executes req and returns the body of a 2xx response. Every failure wraps
// ErrProvider.
func (p *providerHTTP) do(ctx context.Context, req *http.Request) ([]byte, error) {
	body, err := p.cb.Execute(func() ([]byte, error) {
		resp, err := p.http.Do(req.WithContext(ctx))
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, providerMaxBody))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &providerStatusError{Provider: p.name, Code: resp.StatusCode, Body: truncate(string(data), 200)}
		}
		return data, nil
	})

	switch {
	case err == nil:
		metrics.RecordProviderRequest(p.name, "success")
		return body, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordProviderRequest(p.name, "rejected")
		return nil, fmt.Errorf("%w: %s unavailable: %v", ErrProvider, p.name, err)
	default:
		metrics.RecordProviderRequest(p.name, "failure")
		return nil, fmt.Errorf("%w: %s: %v", ErrProvider, p.name, err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
