/*
Package identity exchanges verified phone credentials for user accounts.

This file defines the user repository: lookup-or-create of the account a phone
number belongs to. Accounts are keyed by phone number; the first sign-in
creates the row, later sign-ins refresh last_login_at.
*/
package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// User is an account row.
type User struct {
	ID          uuid.UUID
	PhoneNumber string
	CreatedAt   time.Time
	LastLoginAt time.Time
}

// UserRepository resolves phone numbers to accounts.
type UserRepository interface {
	// FindOrCreateByPhone returns the account for phoneNumber, creating it
	// on first sign-in. Existing accounts get last_login_at refreshed.
	FindOrCreateByPhone(ctx context.Context, phoneNumber string) (*User, error)
}

// PostgresRepository implements UserRepository on the users table.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed user repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindOrCreateByPhone upserts the account in a single statement so concurrent
// first sign-ins for the same number cannot race into duplicate rows.
func (r *PostgresRepository) FindOrCreateByPhone(ctx context.Context, phoneNumber string) (*User, error) {
	user := User{PhoneNumber: phoneNumber}

	row := r.db.QueryRow(ctx, `INSERT INTO users (id, phone_number, created_at, last_login_at)
        VALUES ($1, $2, now(), now())
        ON CONFLICT (phone_number) DO UPDATE SET last_login_at = now()
        RETURNING id, created_at, last_login_at`,
		uuid.New(), phoneNumber)
	if err := row.Scan(&user.ID, &user.CreatedAt, &user.LastLoginAt); err != nil {
		return nil, fmt.Errorf("failed to find or create user: %w", err)
	}
	return &user, nil
}

// MemoryRepository is an in-memory UserRepository for tests and local runs.
type MemoryRepository struct {
	mu    sync.Mutex
	users map[string]*User
}

// NewMemoryRepository builds an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*User)}
}

// FindOrCreateByPhone implements UserRepository.
func (r *MemoryRepository) FindOrCreateByPhone(_ context.Context, phoneNumber string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[phoneNumber]; ok {
		user.LastLoginAt = time.Now()
		copied := *user
		return &copied, nil
	}

	now := time.Now()
	user := &User{
		ID:          uuid.New(),
		PhoneNumber: phoneNumber,
		CreatedAt:   now,
		LastLoginAt: now,
	}
	r.users[phoneNumber] = user
	copied := *user
	return &copied, nil
}
