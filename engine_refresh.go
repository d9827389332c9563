package brixauth

import (
	"context"
)

// Refresh describes the refresh operation and its observable behavior.
//
// The refresh token is verified against the refresh secret; any parse or
// signature failure collapses to [ErrRefreshInvalid] so callers cannot
// distinguish a forged token from an expired one. A valid token leads into
// [Engine.IssueSession], which re-reads the store and so propagates
// [ErrUserNotFound] and [ErrAccountInactive] for accounts that were
// removed or deactivated since the refresh token was signed.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*SessionTokens, error) {
	if e == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.jwtManager.ParseRefresh(refreshToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, "", ErrRefreshInvalid, nil)
		return nil, ErrRefreshInvalid
	}
	userID := claims.Subject
	if userID == "" {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, "", ErrRefreshInvalid, nil)
		return nil, ErrRefreshInvalid
	}

	if e.rateLimiter != nil {
		if err := e.rateLimiter.CheckRefresh(ctx, userID); err != nil {
			e.metricInc(MetricRefreshRateLimited)
			e.emitAudit(ctx, auditEventRefreshRateLimited, false, userID, ErrRefreshRateLimited, nil)
			return nil, ErrRefreshRateLimited
		}
	}

	tokens, err := e.IssueSession(ctx, userID)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, userID, err, nil)
		return nil, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, userID, nil, nil)
	return tokens, nil
}
