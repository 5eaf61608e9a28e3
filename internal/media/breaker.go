package media

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tbourn/go-church-backend/internal/observability"
)

// BreakerStore guards a Store with a circuit breaker so that an unavailable
// bucket fails requests fast instead of tying up handlers until timeouts.
//
// Opens when at least 60% of 10 or more calls in a one-minute window failed;
// probes again after 30s with up to 3 requests.
type BreakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerStore wraps next. name labels the breaker's metrics.
func NewBreakerStore(name string, next Store) *BreakerStore {
	observability.BreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		// A missing object or a cancelled request says nothing about the
		// backend's health.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrObjectNotFound) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("image store circuit breaker state change")
			observability.BreakerState.WithLabelValues(name).Set(stateValue(to))
			observability.BreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
	return &BreakerStore{next: next, cb: cb}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Put forwards to the wrapped store unless the breaker is open.
func (b *BreakerStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Put(ctx, key, body, contentType)
	})
	return err
}

// Delete forwards to the wrapped store unless the breaker is open.
func (b *BreakerStore) Delete(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Delete(ctx, key)
	})
	return err
}

// URL delegates without consulting the breaker.
func (b *BreakerStore) URL(key string) string { return b.next.URL(key) }

// State reports the breaker state.
func (b *BreakerStore) State() gobreaker.State { return b.cb.State() }

// IsUnavailable reports whether err came from an open or saturated breaker.
func IsUnavailable(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
