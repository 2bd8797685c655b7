/*
Package profile implements the hand-off from an authenticated identity to an
editable user profile and its persistence.

A ChatUser is materialized from the identity produced by the verification flow,
edited locally, and saved wholesale to a Store keyed under the users/ namespace.
*/
package profile

import (
	"errors"
	"fmt"

	"chatterbox/internal/app/verify"
)

// KeyPrefix is the namespace under which profile records are stored.
const KeyPrefix = "users/"

// ChatUser is the editable profile of an authenticated user. It is exactly the
// record persisted by Save: the stable user ID and the display name.
type ChatUser struct {
	// UserID is the stable identifier assigned by the identity store.
	// Immutable and never empty once the user exists.
	UserID string `json:"userId"`

	// Username is the mutable display name. Empty until the user sets one.
	Username string `json:"username"`
}

// Key returns the storage key for a user's profile record.
func Key(userID string) string {
	return KeyPrefix + userID
}

// ErrIdentityMissing is returned when a profile is materialized without an
// authenticated identity.
var ErrIdentityMissing = errors.New("authenticated identity is missing")

// SaveError reports a failed profile write. The in-memory record is left
// unchanged so the caller may retry without re-entering data.
type SaveError struct {
	Cause error
}

// Error implements the error interface.
func (e *SaveError) Error() string {
	return fmt.Sprintf("profile save failed: %v", e.Cause)
}

// Unwrap returns the underlying cause.
func (e *SaveError) Unwrap() error {
	return e.Cause
}

// Materialize constructs a ChatUser from an authenticated identity. The
// username starts empty; the user sets it on the profile screen.
//
// A nil identity or one without a stable ID yields ErrIdentityMissing rather
// than a profile with no primary key.
func Materialize(identity *verify.Identity) (*ChatUser, error) {
	if identity == nil || identity.ID == "" {
		return nil, ErrIdentityMissing
	}

	return &ChatUser{
		UserID:   identity.ID,
		Username: "",
	}, nil
}

// EditUsername replaces the display name. Purely local; nothing is persisted
// until Save.
func (u *ChatUser) EditUsername(name string) {
	u.Username = name
}
