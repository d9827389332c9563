package postgres

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	brixauth "github.com/Paurakh977/BRIXA-sub000"
)

func newTestStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()

	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)

	return New(mockDB, slog.Default()), mockDB
}

func identityRow(id, email, role string, active bool) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "email", "role", "is_active", "is_verified",
		"first_name", "last_name", "created_at", "updated_at",
	}).AddRow(id, email, role, active, false, "Alice", "Doe", now, now)
}

func TestFindByID(t *testing.T) {
	store, mockDB := newTestStore(t)

	mockDB.ExpectQuery("SELECT (.+) FROM users WHERE id =").
		WithArgs("u1").
		WillReturnRows(identityRow("u1", "alice@example.com", "CLIENT", true))

	identity, err := store.FindByID(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, "u1", identity.ID)
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.True(t, identity.IsActive)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestFindByIDMissingRowIsNilNil(t *testing.T) {
	store, mockDB := newTestStore(t)

	mockDB.ExpectQuery("SELECT (.+) FROM users WHERE id =").
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "email", "role", "is_active", "is_verified",
			"first_name", "last_name", "created_at", "updated_at",
		}))

	identity, err := store.FindByID(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, identity)
}

func TestFindByEmailCarriesHash(t *testing.T) {
	store, mockDB := newTestStore(t)
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "email", "role", "is_active", "is_verified",
		"first_name", "last_name", "created_at", "updated_at", "password_hash",
	}).AddRow("u1", "alice@example.com", "CLIENT", true, false, "Alice", "Doe", now, now, "$2a$04$hash")

	mockDB.ExpectQuery("SELECT (.+), password_hash FROM users WHERE email =").
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	cred, err := store.FindByEmail(context.Background(), "Alice@Example.com")
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, "$2a$04$hash", cred.PasswordHash)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestUpdateUnknownUser(t *testing.T) {
	store, mockDB := newTestStore(t)
	role := "ADMIN"

	mockDB.ExpectQuery("UPDATE users SET").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "email", "role", "is_active", "is_verified",
			"first_name", "last_name", "created_at", "updated_at",
		}))

	_, err := store.Update(context.Background(), "ghost", brixauth.UpdateFields{Role: &role})
	assert.ErrorIs(t, err, brixauth.ErrUserNotFound)
}

func TestUpdateRole(t *testing.T) {
	store, mockDB := newTestStore(t)
	role := "ADMIN"

	mockDB.ExpectQuery("UPDATE users SET role =").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(identityRow("u1", "alice@example.com", "ADMIN", true))

	identity, err := store.Update(context.Background(), "u1", brixauth.UpdateFields{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", identity.Role)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestCreateDuplicateEmail(t *testing.T) {
	store, mockDB := newTestStore(t)

	mockDB.ExpectQuery("INSERT INTO users").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	now := time.Now()
	_, err := store.Create(context.Background(), brixauth.Credential{
		Identity: brixauth.Identity{
			ID: "u1", Email: "alice@example.com", Role: "CLIENT",
			IsActive: true, CreatedAt: now, UpdatedAt: now,
		},
		PasswordHash: "$2a$04$hash",
	})
	assert.ErrorIs(t, err, brixauth.ErrAccountExists)
}

func TestCreateReturnsIdentity(t *testing.T) {
	store, mockDB := newTestStore(t)

	mockDB.ExpectQuery("INSERT INTO users").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnRows(identityRow("u1", "alice@example.com", "CLIENT", true))

	now := time.Now()
	identity, err := store.Create(context.Background(), brixauth.Credential{
		Identity: brixauth.Identity{
			ID: "u1", Email: "Alice@Example.com", Role: "CLIENT",
			IsActive: true, CreatedAt: now, UpdatedAt: now,
		},
		PasswordHash: "$2a$04$hash",
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.ID)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestCountWithFilter(t *testing.T) {
	store, mockDB := newTestStore(t)
	active := true

	mockDB.ExpectQuery("SELECT COUNT(.+) FROM users WHERE role = (.+) AND is_active =").
		WithArgs("CLIENT", true).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(7)))

	count, err := store.Count(context.Background(), brixauth.CountFilter{Role: "CLIENT", Active: &active})
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestStoreErrorPropagates(t *testing.T) {
	store, mockDB := newTestStore(t)

	mockDB.ExpectQuery("SELECT (.+) FROM users WHERE id =").
		WithArgs("u1").
		WillReturnError(errors.New("connection refused"))

	_, err := store.FindByID(context.Background(), "u1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, brixauth.ErrUserNotFound)
}
