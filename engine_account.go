package brixauth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Paurakh977/BRIXA-sub000/password"
	"github.com/google/uuid"
)

// Register describes the register operation and its observable behavior.
//
// Register may return an error when input validation, dependency calls, or security checks fail.
// Register does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Register(ctx context.Context, input RegisterInput) (*Identity, error) {
	if e == nil || e.store == nil || e.passwordHash == nil {
		return nil, ErrEngineNotReady
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidCredentials
	}

	hash, err := e.passwordHash.Hash(input.Password)
	if err != nil {
		if errors.Is(err, password.ErrPolicy) {
			return nil, ErrPasswordPolicy
		}
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = e.config.Account.DefaultRole
	}

	now := time.Now().UTC()
	cred := Credential{
		Identity: Identity{
			ID:         uuid.NewString(),
			Email:      email,
			Role:       role,
			IsActive:   true,
			IsVerified: false,
			FirstName:  strings.TrimSpace(input.FirstName),
			LastName:   strings.TrimSpace(input.LastName),
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		PasswordHash: hash,
	}

	created, err := e.store.Create(ctx, cred)
	if err != nil {
		e.emitAudit(ctx, auditEventAccountCreated, false, "", err, func() map[string]string {
			return map[string]string{"email": email}
		})
		return nil, err
	}

	e.metricInc(MetricAccountCreated)
	e.emitAudit(ctx, auditEventAccountCreated, true, created.ID, nil, func() map[string]string {
		return map[string]string{"email": email, "role": role}
	})

	identity := *created
	return &identity, nil
}

// SetRole describes the setrole operation and its observable behavior.
//
// The store write happens first, then the cache entry for the user is
// removed. Readers that race the write either see the old entry before the
// invalidation or miss and re-read the new role; outstanding tokens signed
// with the old role are caught by the staleness check in [Engine.Resolve].
func (e *Engine) SetRole(ctx context.Context, userID, role string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if role == "" {
		return ErrInvalidRole
	}
	if err := e.mutate(ctx, userID, UpdateFields{Role: &role}); err != nil {
		e.emitAudit(ctx, auditEventRoleChanged, false, userID, err, nil)
		return err
	}
	e.metricInc(MetricRoleChanged)
	e.emitAudit(ctx, auditEventRoleChanged, true, userID, nil, func() map[string]string {
		return map[string]string{"role": role}
	})
	return nil
}

// SetActive describes the setactive operation and its observable behavior.
//
// Deactivation relies on the same write-then-invalidate ordering as
// [Engine.SetRole]; the next resolution for the user misses the cache,
// reads the inactive row and fails with [ErrAccountInactive].
func (e *Engine) SetActive(ctx context.Context, userID string, active bool) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if err := e.mutate(ctx, userID, UpdateFields{IsActive: &active}); err != nil {
		e.emitAudit(ctx, auditEventStatusChanged, false, userID, err, nil)
		return err
	}
	e.metricInc(MetricStatusChanged)
	e.emitAudit(ctx, auditEventStatusChanged, true, userID, nil, func() map[string]string {
		if active {
			return map[string]string{"active": "true"}
		}
		return map[string]string{"active": "false"}
	})
	return nil
}

// MarkVerified describes the markverified operation and its observable behavior.
//
// MarkVerified may return an error when input validation, dependency calls, or security checks fail.
// MarkVerified does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MarkVerified(ctx context.Context, userID string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	verified := true
	if err := e.mutate(ctx, userID, UpdateFields{IsVerified: &verified}); err != nil {
		e.emitAudit(ctx, auditEventAccountVerified, false, userID, err, nil)
		return err
	}
	e.emitAudit(ctx, auditEventAccountVerified, true, userID, nil, nil)
	return nil
}

// ChangePassword describes the changepassword operation and its observable behavior.
//
// ChangePassword may return an error when input validation, dependency calls, or security checks fail.
// ChangePassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ChangePassword(ctx context.Context, userID, current, next string) error {
	if e == nil || e.store == nil || e.passwordHash == nil {
		return ErrEngineNotReady
	}
	user, err := e.store.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	// FindByID never carries the hash; the email lookup is the one read
	// allowed to see it.
	cred, err := e.store.FindByEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	if cred == nil {
		return ErrUserNotFound
	}

	ok, err := e.passwordHash.Verify(current, cred.PasswordHash)
	if err != nil || !ok {
		e.emitAudit(ctx, auditEventPasswordRejected, false, userID, ErrInvalidCredentials, nil)
		return ErrInvalidCredentials
	}

	hash, err := e.passwordHash.Hash(next)
	if err != nil {
		if errors.Is(err, password.ErrPolicy) {
			err = ErrPasswordPolicy
		}
		e.emitAudit(ctx, auditEventPasswordRejected, false, userID, err, nil)
		return err
	}

	if err := e.mutate(ctx, userID, UpdateFields{PasswordHash: &hash}); err != nil {
		e.emitAudit(ctx, auditEventPasswordChanged, false, userID, err, nil)
		return err
	}
	e.metricInc(MetricPasswordChanged)
	e.emitAudit(ctx, auditEventPasswordChanged, true, userID, nil, nil)
	return nil
}

// mutate applies the store update and then removes the user's cache entry.
// The ordering is the consistency contract: invalidating before the write
// would let a concurrent read repopulate the cache with the old row.
func (e *Engine) mutate(ctx context.Context, userID string, fields UpdateFields) error {
	if userID == "" {
		return ErrUserNotFound
	}
	if _, err := e.store.Update(ctx, userID, fields); err != nil {
		return err
	}
	e.cache.Invalidate(userID)
	e.metricInc(MetricCacheInvalidated)
	return nil
}
