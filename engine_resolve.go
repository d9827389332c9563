package brixauth

import (
	"context"
	"time"

	"github.com/Paurakh977/BRIXA-sub000/jwt"
)

// Resolve describes the resolve operation and its observable behavior.
//
// Given verified access claims it returns the authoritative server-side
// identity. The cache answers when it holds a fresh entry whose role
// matches the claimed role; a role mismatch means an administrative change
// happened after the token was signed, so the entry is discarded and the
// Credential Store is re-read. The store's role wins over the token's in
// the returned identity. Fails with [ErrTokenInvalid] on malformed claims,
// [ErrUserNotFound] when the subject no longer exists, and
// [ErrAccountInactive] when the account has been deactivated; the inactive
// path also removes any cache entry so no stale identity survives the
// deactivation.
func (e *Engine) Resolve(ctx context.Context, claims *jwt.Claims) (*Identity, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	if claims == nil || claims.Subject == "" || claims.Email == "" || claims.Role == "" {
		return nil, ErrTokenInvalid
	}
	userID := claims.Subject

	var start time.Time
	if e.metrics != nil && e.metrics.LatencyEnabled() {
		start = time.Now()
	}

	if entry, ok := e.cache.Get(userID); ok {
		if entry.Identity.Role != claims.Role {
			// Claimed role diverged from the cached identity: an admin
			// mutation raced the token. Drop the entry and fall through
			// to the store read below.
			e.cache.Invalidate(userID)
			e.metricInc(MetricCacheStale)
			e.metricInc(MetricCacheInvalidated)
			// The forced store re-read below is accounted as a miss.
			e.metricInc(MetricCacheMiss)
			e.emitAudit(ctx, auditEventStaleCacheDetected, true, userID, nil, func() map[string]string {
				return map[string]string{
					"claimed_role": claims.Role,
					"cached_role":  entry.Identity.Role,
				}
			})
		} else if !entry.Identity.IsActive {
			e.cache.Invalidate(userID)
			e.metricInc(MetricResolveInactive)
			return nil, ErrAccountInactive
		} else {
			e.metricInc(MetricCacheHit)
			e.observeResolveLatency(start)
			identity := entry.Identity
			return &identity, nil
		}
	} else {
		e.metricInc(MetricCacheMiss)
	}

	fresh, err := e.store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if fresh == nil {
		e.metricInc(MetricResolveNotFound)
		return nil, ErrUserNotFound
	}

	if !fresh.IsActive {
		e.cache.Invalidate(userID)
		e.metricInc(MetricResolveInactive)
		return nil, ErrAccountInactive
	}

	e.cache.Set(userID, *fresh)
	e.observeResolveLatency(start)

	identity := *fresh
	return &identity, nil
}

func (e *Engine) observeResolveLatency(start time.Time) {
	if e.metrics == nil || !e.metrics.LatencyEnabled() || start.IsZero() {
		return
	}
	e.metrics.Observe(MetricResolveLatency, time.Since(start))
}
