/*
Package verify implements the phone-verification flow.

This file declares the external collaborator interfaces (Provider, IdentityStore)
and the value types exchanged with them. Implementations are injected into the
Flow at construction time so tests can substitute doubles.
*/
package verify

import "context"

// Credential is the proof of phone ownership presented to the IdentityStore.
// It is built either from a dispatched code (VerificationID + Code) or resolved
// automatically by the provider, in which case AutoVerified is set and the
// phone number is carried directly.
type Credential struct {
	// VerificationID identifies the code record the provider issued.
	VerificationID string

	// Code is the one-time code the user entered.
	Code string

	// PhoneNumber is set on auto-verified credentials only.
	PhoneNumber string

	// AutoVerified marks a credential the provider resolved without explicit
	// code entry.
	AutoVerified bool
}

// CodeSent carries the tokens returned by the provider once a code has been
// dispatched to the phone.
type CodeSent struct {
	// VerificationID is the opaque token identifying this code dispatch.
	VerificationID string

	// ResendToken allows re-triggering delivery for the same attempt.
	ResendToken string
}

// Outcome is the tagged result of a dispatch request. Exactly one of Auto or
// Sent is non-nil; dispatch failures are reported through the error return
// instead.
type Outcome struct {
	// Auto is set when the provider resolved a credential itself, without
	// code entry (for example a pre-verified test number).
	Auto *Credential

	// Sent is set when a code was dispatched and the user must enter it.
	Sent *CodeSent
}

// Identity is the authenticated identity returned by the IdentityStore.
type Identity struct {
	// ID is the stable user identifier. Never empty.
	ID string `json:"id"`

	// PhoneNumber is the verified phone number in E.164 format.
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// Provider dispatches one-time codes to phone numbers. A single Dispatch call
// resolves to exactly one outcome: auto-verified, code sent, or an error.
type Provider interface {
	// Dispatch requests delivery of a one-time code to phoneNumber. The
	// context carries the dispatch deadline owned by the caller.
	Dispatch(ctx context.Context, phoneNumber string) (*Outcome, error)

	// Resend re-triggers delivery for an earlier dispatch identified by its
	// resend token.
	Resend(ctx context.Context, resendToken string) error
}

// IdentityStore exchanges a credential for an authenticated identity.
type IdentityStore interface {
	// SignIn validates the credential and returns the identity it proves.
	// Invalid or stale credentials are reported as *AuthError.
	SignIn(ctx context.Context, cred Credential) (*Identity, error)
}
