package brixauth

import (
	"context"
	"errors"
	"log"

	"github.com/Paurakh977/BRIXA-sub000/cache"
	"github.com/Paurakh977/BRIXA-sub000/internal/rate"
	"github.com/Paurakh977/BRIXA-sub000/jwt"
	"github.com/Paurakh977/BRIXA-sub000/password"
)

// Engine defines a public type used by brixauth APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	store        CredentialStore
	cache        *cache.IdentityCache
	jwtManager   *jwt.Manager
	passwordHash *password.Hasher
	rateLimiter  *rate.Limiter
	audit        *auditDispatcher
	metrics      *Metrics
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.cache != nil {
		e.cache.Close()
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// Cache exposes the engine's identity cache so admin mutation paths
// outside the engine can honor the invalidate-after-write contract.
func (e *Engine) Cache() *cache.IdentityCache {
	if e == nil {
		return nil
	}
	return e.cache
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// IssueSession describes the issuesession operation and its observable behavior.
//
// It first invalidates any cache entry for userID, then re-reads the
// identity from the Credential Store (never the cache) so the signed claims
// reflect the latest role and active flag. Fails with [ErrUserNotFound]
// when the user no longer exists and [ErrAccountInactive] when the account
// is deactivated; both abort issuance with no tokens produced. On success
// the cache is deliberately left empty for this user: one extra miss on the
// next resolution is the price of guaranteed-fresh claims.
func (e *Engine) IssueSession(ctx context.Context, userID string) (*SessionTokens, error) {
	if e == nil || e.jwtManager == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	if userID == "" {
		return nil, ErrUserNotFound
	}

	e.cache.Invalidate(userID)
	e.metricInc(MetricCacheInvalidated)

	user, err := e.store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		e.emitAudit(ctx, auditEventSessionIssued, false, userID, ErrUserNotFound, nil)
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		e.emitAudit(ctx, auditEventSessionIssued, false, userID, ErrAccountInactive, nil)
		return nil, ErrAccountInactive
	}

	access, err := e.jwtManager.CreateAccess(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := e.jwtManager.CreateRefresh(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricSessionIssued)
	e.emitAudit(ctx, auditEventSessionIssued, true, user.ID, nil, nil)

	return &SessionTokens{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, email, plaintext string) (*LoginResult, error) {
	if e == nil || e.passwordHash == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	ip := clientIPFromContext(ctx)

	if e.rateLimiter != nil {
		if err := e.rateLimiter.CheckLogin(ctx, email, ip); err != nil {
			e.metricInc(MetricLoginRateLimited)
			e.emitAudit(ctx, auditEventLoginRateLimited, false, "", ErrLoginRateLimited, func() map[string]string {
				return map[string]string{"email": email}
			})
			return nil, ErrLoginRateLimited
		}
	}
	if email == "" || plaintext == "" {
		return nil, e.failLogin(ctx, email, ip, "empty_credentials")
	}

	cred, err := e.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, e.failLogin(ctx, email, ip, "user_not_found")
	}

	ok, err := e.passwordHash.Verify(plaintext, cred.PasswordHash)
	if err != nil || !ok {
		return nil, e.failLogin(ctx, email, ip, "password_mismatch")
	}
	plaintext = ""

	if !cred.IsActive {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, cred.ID, ErrAccountInactive, func() map[string]string {
			return map[string]string{"email": email, "reason": "account_inactive"}
		})
		return nil, ErrAccountInactive
	}

	tokens, err := e.IssueSession(ctx, cred.ID)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, cred.ID, err, func() map[string]string {
			return map[string]string{"email": email, "reason": "issue_failed"}
		})
		return nil, err
	}

	if e.rateLimiter != nil {
		// Counter reset is best-effort and must not block a successful login.
		if err := e.rateLimiter.ResetLogin(ctx, email, ip); err != nil {
			log.Print("brixauth: login limiter reset failed")
		}
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, cred.ID, nil, func() map[string]string {
		return map[string]string{"email": email}
	})

	return &LoginResult{
		SessionTokens: *tokens,
		User:          cred.Identity,
	}, nil
}

func (e *Engine) failLogin(ctx context.Context, email, ip, reason string) error {
	if e.rateLimiter != nil {
		if err := e.rateLimiter.IncrementLogin(ctx, email, ip); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				e.metricInc(MetricLoginRateLimited)
				e.emitAudit(ctx, auditEventLoginRateLimited, false, "", ErrLoginRateLimited, func() map[string]string {
					return map[string]string{"email": email}
				})
				return ErrLoginRateLimited
			}
			log.Print("brixauth: login limiter increment failed")
		}
	}
	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, auditEventLoginFailure, false, "", ErrInvalidCredentials, func() map[string]string {
		return map[string]string{"email": email, "reason": reason}
	})
	return ErrInvalidCredentials
}

// Logout describes the logout operation and its observable behavior.
//
// It invalidates the user's cache entry; cookie clearing is the transport
// layer's half of the contract, via [Engine.ClearSessionCookies].
func (e *Engine) Logout(ctx context.Context, userID string) {
	if e == nil || e.cache == nil {
		return
	}
	e.cache.Invalidate(userID)
	e.metricInc(MetricLogout)
	e.metricInc(MetricCacheInvalidated)
	e.emitAudit(ctx, auditEventLogout, true, userID, nil, nil)
}

// VerifyAccess parses and verifies an access token against the access
// secret. Failures collapse to [ErrTokenInvalid].
func (e *Engine) VerifyAccess(tokenStr string) (*jwt.Claims, error) {
	if e == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}
	claims, err := e.jwtManager.ParseAccess(tokenStr)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
