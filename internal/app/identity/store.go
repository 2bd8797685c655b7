/*
Package identity exchanges verified phone credentials for user accounts.

This file defines the Store, the verify.IdentityStore implementation: it checks
the entered code against its dispatch record and resolves the proven phone
number to an account through the user repository.
*/
package identity

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"chatterbox/internal/app/otp"
	"chatterbox/internal/app/verify"
	"chatterbox/internal/pkg/logx"
)

// CodeChecker validates an entered one-time code against its dispatch record.
// Satisfied by *otp.CodeStore.
type CodeChecker interface {
	// Check returns the phone number the code proves ownership of. A match
	// consumes the record.
	Check(ctx context.Context, verificationID, code string) (string, error)
}

// Store implements verify.IdentityStore: it validates the credential against
// the code store and resolves the proven phone number to an account.
type Store struct {
	codes  CodeChecker
	users  UserRepository
	logger zerolog.Logger
}

// NewStore builds an identity Store.
func NewStore(codes CodeChecker, users UserRepository) *Store {
	return &Store{
		codes:  codes,
		users:  users,
		logger: logx.Logger().With().Str("component", "IdentityStore").Logger(),
	}
}

// SignIn validates cred and returns the identity it proves. Credential
// failures come back as *verify.AuthError; InvalidCredential is set when the
// entered code was wrong, clear when the record was missing, expired, or the
// lookup itself failed.
func (s *Store) SignIn(ctx context.Context, cred verify.Credential) (*verify.Identity, error) {
	phoneNumber := cred.PhoneNumber

	if !cred.AutoVerified {
		phone, err := s.codes.Check(ctx, cred.VerificationID, cred.Code)
		if err != nil {
			return nil, classifyCheckError(err)
		}
		phoneNumber = phone
	}

	if phoneNumber == "" {
		return nil, &verify.AuthError{Cause: errors.New("credential carries no phone number")}
	}

	user, err := s.users.FindOrCreateByPhone(ctx, phoneNumber)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to resolve account for verified phone.")
		return nil, &verify.AuthError{Cause: err}
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("Sign-in succeeded.")
	return &verify.Identity{ID: user.ID.String(), PhoneNumber: user.PhoneNumber}, nil
}

// classifyCheckError maps code-store failures onto the sign-in error
// contract. A wrong code is an invalid credential; a missing or invalidated
// record is a rejected one.
func classifyCheckError(err error) error {
	switch {
	case errors.Is(err, otp.ErrCodeMismatch), errors.Is(err, otp.ErrTooManyAttempts):
		return &verify.AuthError{InvalidCredential: true, Cause: err}
	default:
		return &verify.AuthError{Cause: err}
	}
}
