package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on top of PostgreSQL. The profile record
// lives in user_profiles keyed by user_id, which corresponds to the
// users/{userId} key of the Store contract.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a Postgres-backed profile store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Put overwrites the full profile record for user.UserID.
func (s *PostgresStore) Put(ctx context.Context, user ChatUser) error {
	userID, err := uuid.Parse(user.UserID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `INSERT INTO user_profiles (user_id, username, updated_at)
        VALUES ($1, $2, now())
        ON CONFLICT (user_id) DO UPDATE SET username = EXCLUDED.username, updated_at = now()`,
		userID, user.Username)
	return err
}

// Get retrieves the profile record for userID.
func (s *PostgresStore) Get(ctx context.Context, userID string) (*ChatUser, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}

	var user ChatUser
	row := s.db.QueryRow(ctx, `SELECT user_id, username FROM user_profiles WHERE user_id = $1`, id)
	var storedID uuid.UUID
	if err := row.Scan(&storedID, &user.Username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	user.UserID = storedID.String()
	return &user, nil
}

// SetAvatar upserts the avatar object key without touching the profile record.
func (s *PostgresStore) SetAvatar(ctx context.Context, userID, avatarKey string) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `INSERT INTO user_profiles (user_id, avatar_key, updated_at)
        VALUES ($1, $2, now())
        ON CONFLICT (user_id) DO UPDATE SET avatar_key = EXCLUDED.avatar_key, updated_at = now()`,
		id, avatarKey)
	return err
}

// GetAvatar returns the stored avatar key, empty when the user has none.
func (s *PostgresStore) GetAvatar(ctx context.Context, userID string) (string, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return "", err
	}

	var key string
	row := s.db.QueryRow(ctx, `SELECT avatar_key FROM user_profiles WHERE user_id = $1`, id)
	if err := row.Scan(&key); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return key, nil
}
