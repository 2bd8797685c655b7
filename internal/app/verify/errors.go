/*
Package verify implements the phone-verification flow.

This file defines the discriminated error values the flow surfaces to callers.
Each maps to a distinct user-facing notification category at the handler layer.
*/
package verify

import (
	"errors"
	"fmt"
)

// Dispatch failure reasons carried by VerificationError.
const (
	// ReasonInvalidNumber means the provider rejected the phone number.
	ReasonInvalidNumber = "invalid_number"

	// ReasonQuotaExceeded means the provider refused to send more codes.
	ReasonQuotaExceeded = "quota_exceeded"

	// ReasonTimeout means the dispatch request did not resolve within the
	// configured deadline.
	ReasonTimeout = "timeout"

	// ReasonSendFailed means the underlying SMS delivery failed.
	ReasonSendFailed = "send_failed"

	// ReasonInternal covers provider-side failures with no better category.
	ReasonInternal = "internal"
)

// VerificationError reports a dispatch-time failure. The flow stays in
// StateEnterPhone when one is returned.
type VerificationError struct {
	Reason string
	Cause  error
}

// Error implements the error interface.
func (e *VerificationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("verification failed (%s): %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("verification failed (%s)", e.Reason)
}

// Unwrap returns the underlying cause.
func (e *VerificationError) Unwrap() error {
	return e.Cause
}

// NewVerificationError builds a VerificationError with the given reason and
// optional cause.
func NewVerificationError(reason string, cause error) *VerificationError {
	return &VerificationError{Reason: reason, Cause: cause}
}

// AuthError reports a sign-in failure. InvalidCredential distinguishes a wrong
// code from a stale or otherwise unusable credential. The flow is forced back
// to StateEnterPhone whenever one is returned.
type AuthError struct {
	InvalidCredential bool
	Cause             error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	kind := "credential rejected"
	if e.InvalidCredential {
		kind = "invalid credential"
	}
	if e.Cause != nil {
		return fmt.Sprintf("sign-in failed: %s: %v", kind, e.Cause)
	}
	return fmt.Sprintf("sign-in failed: %s", kind)
}

// Unwrap returns the underlying cause.
func (e *AuthError) Unwrap() error {
	return e.Cause
}

var (
	// ErrSuperseded means an asynchronous outcome arrived after the flow had
	// already moved past the request that produced it. No state was mutated.
	ErrSuperseded = errors.New("verification outcome superseded")

	// ErrNotEnterPhone means an operation required the flow to be waiting for
	// a phone number.
	ErrNotEnterPhone = errors.New("flow is not awaiting a phone number")

	// ErrNotAwaitingCode means an operation required a dispatched code.
	ErrNotAwaitingCode = errors.New("flow is not awaiting a code")

	// ErrEmptyPhoneNumber means the submitted phone number was empty.
	ErrEmptyPhoneNumber = errors.New("phone number is empty")

	// ErrEmptyCode means the submitted one-time code was empty.
	ErrEmptyCode = errors.New("code is empty")
)
