/*
Package profile implements the session-to-profile hand-off.

This file declares the Store interface profiles are persisted through, and the
Service that applies the save semantics: wholesale overwrite, last write wins,
no partial-field merge.
*/
package profile

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no profile record exists for a user.
var ErrNotFound = errors.New("profile not found")

// Store persists profile records keyed under the users/ namespace.
type Store interface {
	// Put overwrites the full record for user.UserID with exactly
	// (UserID, Username). Last write wins; there is no merge and no
	// concurrency check.
	Put(ctx context.Context, user ChatUser) error

	// Get retrieves the record for userID, or ErrNotFound.
	Get(ctx context.Context, userID string) (*ChatUser, error)

	// SetAvatar records the storage key of the user's avatar. Kept separate
	// from Put so the profile record itself stays exactly (UserID, Username).
	SetAvatar(ctx context.Context, userID, avatarKey string) error

	// GetAvatar returns the avatar storage key, empty if none is set.
	GetAvatar(ctx context.Context, userID string) (string, error)
}

// Service exposes the profile operations consumed by the presentation layer.
type Service struct {
	store Store
}

// NewService constructs a profile Service on top of the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Save persists the user's profile record. The record is overwritten
// wholesale; a transport or permission failure is reported as *SaveError and
// leaves the caller's record untouched for retry.
func (s *Service) Save(ctx context.Context, user ChatUser) error {
	if user.UserID == "" {
		return ErrIdentityMissing
	}

	if err := s.store.Put(ctx, user); err != nil {
		return &SaveError{Cause: err}
	}
	return nil
}

// Load fetches the stored profile for userID. A user who has never saved gets
// a fresh record with an empty username rather than an error.
func (s *Service) Load(ctx context.Context, userID string) (*ChatUser, error) {
	if userID == "" {
		return nil, ErrIdentityMissing
	}

	user, err := s.store.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return &ChatUser{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SetAvatar stores the avatar object key for userID.
func (s *Service) SetAvatar(ctx context.Context, userID, avatarKey string) error {
	if userID == "" {
		return ErrIdentityMissing
	}
	return s.store.SetAvatar(ctx, userID, avatarKey)
}

// Avatar returns the avatar object key for userID, empty if unset.
func (s *Service) Avatar(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", ErrIdentityMissing
	}
	return s.store.GetAvatar(ctx, userID)
}
