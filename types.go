package brixauth

import (
	"context"

	"github.com/Paurakh977/BRIXA-sub000/cache"
)

// Identity is the authoritative user snapshot served to handlers. The
// Credential Store is its source of truth; the cache only ever holds copies.
//
// The struct deliberately has no password hash field: the only operation
// allowed to see the hash is credential lookup by email during login.
type Identity = cache.Identity

// Credential is the login-path record returned by
// [CredentialStore.FindByEmail]. It is the single place the password hash
// crosses the storage boundary.
type Credential struct {
	Identity
	PasswordHash string
}

// CountFilter narrows [CredentialStore.Count]. Zero values match everything.
type CountFilter struct {
	Role   string
	Active *bool
}

// UpdateFields is a partial update for [CredentialStore.Update]. Nil fields
// are left untouched.
type UpdateFields struct {
	Role         *string
	IsActive     *bool
	IsVerified   *bool
	PasswordHash *string
	FirstName    *string
	LastName     *string
}

// CredentialStore is the interface callers must implement to integrate
// brixauth with their user database. Lookups return (nil, nil) when no such
// user exists; errors are reserved for store failures.
//
// FindByID must never return the password hash. FindByEmail is the only
// hash-bearing read and exists solely for the login path.
type CredentialStore interface {
	FindByID(ctx context.Context, id string) (*Identity, error)
	FindByEmail(ctx context.Context, email string) (*Credential, error)
	Count(ctx context.Context, filter CountFilter) (int64, error)
	Update(ctx context.Context, id string, fields UpdateFields) (*Identity, error)
	Create(ctx context.Context, cred Credential) (*Identity, error)
}

// SessionTokens is returned by [Engine.IssueSession], [Engine.Login], and
// [Engine.Refresh]: two independently signed capabilities with independent
// secrets and expiries.
type SessionTokens struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult is returned by [Engine.Login].
type LoginResult struct {
	SessionTokens
	User Identity
}

// RegisterInput is the input for [Engine.Register]. Role is optional and
// defaults to [AccountConfig.DefaultRole].
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}
