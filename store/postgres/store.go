package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	brixauth "github.com/Paurakh977/BRIXA-sub000"
)

const uniqueViolation = "23505"

// identityColumns is every column FindByID reads. password_hash is
// deliberately absent; only FindByEmail may see it.
const identityColumns = "id, email, role, is_active, is_verified, first_name, last_name, created_at, updated_at"

// Store implements [brixauth.CredentialStore] on PostgreSQL.
type Store struct {
	db     Querier
	logger *slog.Logger
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(db Querier, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:     db,
		logger: logger.With("component", "credential_store"),
	}
}

// FindByID describes the findbyid operation and its observable behavior.
//
// A missing row is (nil, nil), never an error; an error means the store
// itself failed.
func (s *Store) FindByID(ctx context.Context, id string) (*brixauth.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM users WHERE id = $1`

	var identity brixauth.Identity
	err := s.db.QueryRow(ctx, query, id).Scan(
		&identity.ID,
		&identity.Email,
		&identity.Role,
		&identity.IsActive,
		&identity.IsVerified,
		&identity.FirstName,
		&identity.LastName,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &identity, nil
}

// FindByEmail describes the findbyemail operation and its observable behavior.
//
// This is the single hash-bearing read; it exists for the login path and
// for current-password checks.
func (s *Store) FindByEmail(ctx context.Context, email string) (*brixauth.Credential, error) {
	query := `SELECT ` + identityColumns + `, password_hash FROM users WHERE email = $1`

	var cred brixauth.Credential
	err := s.db.QueryRow(ctx, query, strings.ToLower(email)).Scan(
		&cred.ID,
		&cred.Email,
		&cred.Role,
		&cred.IsActive,
		&cred.IsVerified,
		&cred.FirstName,
		&cred.LastName,
		&cred.CreatedAt,
		&cred.UpdatedAt,
		&cred.PasswordHash,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &cred, nil
}

// Count describes the count operation and its observable behavior.
//
// Count does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) Count(ctx context.Context, filter brixauth.CountFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM users`
	var conds []string
	var args []interface{}

	if filter.Role != "" {
		args = append(args, filter.Role)
		conds = append(conds, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conds = append(conds, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	var count int64
	if err := s.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// Update describes the update operation and its observable behavior.
//
// Nil fields in the partial update are left untouched. A missing row is
// reported as [brixauth.ErrUserNotFound].
func (s *Store) Update(ctx context.Context, id string, fields brixauth.UpdateFields) (*brixauth.Identity, error) {
	var sets []string
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if fields.Role != nil {
		add("role", *fields.Role)
	}
	if fields.IsActive != nil {
		add("is_active", *fields.IsActive)
	}
	if fields.IsVerified != nil {
		add("is_verified", *fields.IsVerified)
	}
	if fields.PasswordHash != nil {
		add("password_hash", *fields.PasswordHash)
	}
	if fields.FirstName != nil {
		add("first_name", *fields.FirstName)
	}
	if fields.LastName != nil {
		add("last_name", *fields.LastName)
	}
	if len(sets) == 0 {
		return s.findOrNotFound(ctx, id)
	}

	add("updated_at", time.Now().UTC())
	args = append(args, id)

	query := fmt.Sprintf(
		`UPDATE users SET %s WHERE id = $%d RETURNING `+identityColumns,
		strings.Join(sets, ", "), len(args),
	)

	var identity brixauth.Identity
	err := s.db.QueryRow(ctx, query, args...).Scan(
		&identity.ID,
		&identity.Email,
		&identity.Role,
		&identity.IsActive,
		&identity.IsVerified,
		&identity.FirstName,
		&identity.LastName,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, brixauth.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &identity, nil
}

// Create describes the create operation and its observable behavior.
//
// A duplicate email surfaces as [brixauth.ErrAccountExists].
func (s *Store) Create(ctx context.Context, cred brixauth.Credential) (*brixauth.Identity, error) {
	query := `
		INSERT INTO users (
			id, email, password_hash, role, is_active, is_verified,
			first_name, last_name, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + identityColumns

	var identity brixauth.Identity
	err := s.db.QueryRow(ctx, query,
		cred.ID,
		strings.ToLower(cred.Email),
		cred.PasswordHash,
		cred.Role,
		cred.IsActive,
		cred.IsVerified,
		cred.FirstName,
		cred.LastName,
		cred.CreatedAt,
		cred.UpdatedAt,
	).Scan(
		&identity.ID,
		&identity.Email,
		&identity.Role,
		&identity.IsActive,
		&identity.IsVerified,
		&identity.FirstName,
		&identity.LastName,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, brixauth.ErrAccountExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user created", "user_id", identity.ID)
	return &identity, nil
}

func (s *Store) findOrNotFound(ctx context.Context, id string) (*brixauth.Identity, error) {
	identity, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, brixauth.ErrUserNotFound
	}
	return identity, nil
}
