package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/santican/clinic-intake/internal/domain/patient"
	"github.com/santican/clinic-intake/pkg/circuitbreaker"
)

// Resilient wraps the remote store with a circuit breaker and the local
// cache. Writes go remote-first and are mirrored into the cache regardless of
// the remote outcome, so the front desk keeps its own copy even during an
// outage; the remote error is still reported. Reads fall back to the cache
// when the remote store is unreachable.
type Resilient struct {
	remote  Store
	cache   *Cache
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger

	// onFallback is invoked whenever a read is served from the cache.
	onFallback func()
}

// NewResilient creates the breaker-wrapped store.
func NewResilient(remote Store, cache *Cache, breaker *circuitbreaker.CircuitBreaker, logger *zap.Logger) *Resilient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resilient{remote: remote, cache: cache, breaker: breaker, logger: logger}
}

// OnFallback registers a hook called when a read falls back to the cache,
// used to feed the fallback metric.
func (r *Resilient) OnFallback(fn func()) { r.onFallback = fn }

// Cache exposes the local mirror for components that read it directly.
func (r *Resilient) Cache() *Cache { return r.cache }

// Add writes the record remote-first through the breaker, then mirrors it to
// the cache unconditionally. The remote error, if any, is returned after the
// mirror attempt.
func (r *Resilient) Add(ctx context.Context, rec *patient.Record) (string, error) {
	_, remoteErr := r.breaker.Execute(ctx, func() (any, error) {
		return r.remote.Add(ctx, rec)
	})
	if circuitbreaker.IsRejection(remoteErr) {
		remoteErr = fmt.Errorf("%w: %v", ErrStoreUnavailable, remoteErr)
	}

	if cacheErr := r.cache.Append(rec); cacheErr != nil {
		r.logger.Error("cache mirror failed", zap.String("id", rec.ID), zap.Error(cacheErr))
		if remoteErr == nil {
			// Remote copy exists; a failed mirror only degrades the
			// self-service view.
			return rec.ID, nil
		}
	}

	if remoteErr != nil {
		return "", remoteErr
	}
	return rec.ID, nil
}

// GetAll returns the full remote record set, or the cached mirror when the
// remote store is unreachable. fromCache tells the caller which copy it got.
func (r *Resilient) GetAll(ctx context.Context) (records []patient.Record, fromCache bool, err error) {
	result, err := r.breaker.ExecuteWithFallback(ctx,
		func() (any, error) {
			return r.remote.GetAll(ctx)
		},
		func(cause error) (any, error) {
			if r.onFallback != nil {
				r.onFallback()
			}
			fromCache = true
			return r.cache.Load()
		})
	if err != nil {
		return nil, fromCache, err
	}
	return result.([]patient.Record), fromCache, nil
}

// DeleteByID removes the record from the remote store through the breaker and
// always removes it from the cache. A record missing remotely but present in
// the cache is still a successful delete of the cached copy.
func (r *Resilient) DeleteByID(ctx context.Context, id string) error {
	_, remoteErr := r.breaker.Execute(ctx, func() (any, error) {
		return nil, r.remote.DeleteByID(ctx, id)
	})
	if errors.Is(remoteErr, ErrNotFound) {
		remoteErr = nil
	}
	if circuitbreaker.IsRejection(remoteErr) {
		remoteErr = fmt.Errorf("%w: %v", ErrStoreUnavailable, remoteErr)
	}

	if cacheErr := r.cache.RemoveByID(id); cacheErr != nil {
		r.logger.Error("cache removal failed", zap.String("id", id), zap.Error(cacheErr))
		if remoteErr == nil {
			return cacheErr
		}
	}
	return remoteErr
}
