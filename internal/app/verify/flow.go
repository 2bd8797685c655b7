/*
Package verify implements the phone-verification flow.

This file defines the Flow: the state machine for a single login attempt. A Flow
is owned by one login attempt and serializes its transitions behind a mutex; a
generation counter tags every outstanding provider interaction so an outcome
that resolves after the flow has moved on is discarded instead of applied.
*/
package verify

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	// DefaultDispatchTimeout bounds a single code-dispatch request.
	DefaultDispatchTimeout = 60 * time.Second

	// DefaultIdleTTL is how long a flow may sit untouched before the Manager
	// evicts it.
	DefaultIdleTTL = 10 * time.Minute
)

// Options configures a Flow.
type Options struct {
	// DispatchTimeout bounds each Dispatch/Resend call. Zero means
	// DefaultDispatchTimeout.
	DispatchTimeout time.Duration
}

// Flow is the verification state machine for one login attempt.
//
// All exported methods are safe for concurrent use, but a flow represents a
// single user session: callers are expected to issue one operation at a time.
// Overlapping operations are resolved by the generation counter; the superseded
// one returns ErrSuperseded without mutating state.
type Flow struct {
	provider Provider
	ids      IdentityStore
	timeout  time.Duration

	mu             sync.Mutex
	state          State
	generation     uint64
	phoneNumber    string
	verificationID string
	resendToken    string
	identity       *Identity
	lastActive     time.Time
}

// SubmitResult reports the transition caused by a phone-number submission.
type SubmitResult struct {
	// State is the flow state after the outcome was applied: StateAwaitingCode
	// when a code was sent, StateAuthenticated when the provider auto-verified.
	State State

	// Identity is set only when State is StateAuthenticated.
	Identity *Identity
}

// NewFlow constructs a Flow in StateEnterPhone with the given collaborators.
func NewFlow(provider Provider, ids IdentityStore, opts Options) *Flow {
	timeout := opts.DispatchTimeout
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}

	return &Flow{
		provider:   provider,
		ids:        ids,
		timeout:    timeout,
		state:      StateEnterPhone,
		lastActive: time.Now(),
	}
}

// SubmitPhoneNumber requests dispatch of a one-time code to phoneNumber and
// applies the outcome.
//
// Outcomes: a CodeSent outcome transitions the flow to StateAwaitingCode and
// stores the verification and resend tokens; an auto-verified outcome signs in
// immediately without visiting StateAwaitingCode; a dispatch failure leaves the
// flow in StateEnterPhone and is returned as *VerificationError.
//
// A newer SubmitPhoneNumber or Reset supersedes this call: if the outcome
// resolves after the flow has moved on it is discarded and ErrSuperseded is
// returned.
func (f *Flow) SubmitPhoneNumber(ctx context.Context, phoneNumber string) (*SubmitResult, error) {
	if phoneNumber == "" {
		return nil, ErrEmptyPhoneNumber
	}

	f.mu.Lock()
	if f.state != StateEnterPhone {
		f.mu.Unlock()
		return nil, ErrNotEnterPhone
	}
	f.generation++
	gen := f.generation
	f.phoneNumber = phoneNumber
	f.lastActive = time.Now()
	f.mu.Unlock()

	dctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	outcome, err := f.provider.Dispatch(dctx, phoneNumber)
	if err != nil {
		verr := asVerificationError(err)

		f.mu.Lock()
		defer f.mu.Unlock()
		if gen != f.generation {
			return nil, ErrSuperseded
		}
		// Remain in StateEnterPhone; the attempt is over.
		f.phoneNumber = ""
		f.lastActive = time.Now()
		return nil, verr
	}

	switch {
	case outcome != nil && outcome.Sent != nil:
		f.mu.Lock()
		defer f.mu.Unlock()
		if gen != f.generation {
			return nil, ErrSuperseded
		}
		f.state = StateAwaitingCode
		f.verificationID = outcome.Sent.VerificationID
		f.resendToken = outcome.Sent.ResendToken
		f.lastActive = time.Now()
		return &SubmitResult{State: StateAwaitingCode}, nil

	case outcome != nil && outcome.Auto != nil:
		return f.signIn(ctx, gen, *outcome.Auto)

	default:
		f.mu.Lock()
		defer f.mu.Unlock()
		if gen != f.generation {
			return nil, ErrSuperseded
		}
		f.phoneNumber = ""
		return nil, NewVerificationError(ReasonInternal, errors.New("provider returned no outcome"))
	}
}

// SubmitCode builds a credential from the stored verification token and the
// entered code, then signs in. The flow must be in StateAwaitingCode.
//
// A wrong or stale code forces the flow back to StateEnterPhone and is
// returned as *AuthError; retrying requires a fresh phone submission.
func (f *Flow) SubmitCode(ctx context.Context, code string) (*Identity, error) {
	if code == "" {
		return nil, ErrEmptyCode
	}

	f.mu.Lock()
	if f.state != StateAwaitingCode {
		f.mu.Unlock()
		return nil, ErrNotAwaitingCode
	}
	gen := f.generation
	cred := Credential{VerificationID: f.verificationID, Code: code}
	f.lastActive = time.Now()
	f.mu.Unlock()

	res, err := f.signIn(ctx, gen, cred)
	if err != nil {
		return nil, err
	}
	return res.Identity, nil
}

// ResendCode re-triggers code delivery for the current attempt using the
// stored resend token. The flow must be in StateAwaitingCode; state is
// unchanged either way.
func (f *Flow) ResendCode(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StateAwaitingCode {
		f.mu.Unlock()
		return ErrNotAwaitingCode
	}
	token := f.resendToken
	f.lastActive = time.Now()
	f.mu.Unlock()

	dctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if err := f.provider.Resend(dctx, token); err != nil {
		return asVerificationError(err)
	}
	return nil
}

// Reset unconditionally returns the flow to StateEnterPhone, discarding the
// phone number and any verification tokens. The generation bump ensures any
// outcome still in flight is discarded when it resolves.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.generation++
	f.state = StateEnterPhone
	f.phoneNumber = ""
	f.verificationID = ""
	f.resendToken = ""
	f.identity = nil
	f.lastActive = time.Now()
}

// signIn exchanges the credential for an identity and applies the transition,
// unless the captured generation has been superseded in the meantime.
func (f *Flow) signIn(ctx context.Context, gen uint64, cred Credential) (*SubmitResult, error) {
	id, err := f.ids.SignIn(ctx, cred)

	f.mu.Lock()
	defer f.mu.Unlock()

	if gen != f.generation {
		return nil, ErrSuperseded
	}

	if err != nil {
		// Any sign-in failure, wrong code included, restarts the whole flow.
		f.resetLocked()

		var aerr *AuthError
		if errors.As(err, &aerr) {
			return nil, aerr
		}
		return nil, &AuthError{Cause: err}
	}

	// Authenticated is terminal: the bump makes any duplicate sign-in still
	// in flight resolve to ErrSuperseded instead of resetting the flow.
	f.generation++
	f.state = StateAuthenticated
	f.identity = id
	f.lastActive = time.Now()
	return &SubmitResult{State: StateAuthenticated, Identity: id}, nil
}

func (f *Flow) resetLocked() {
	f.generation++
	f.state = StateEnterPhone
	f.phoneNumber = ""
	f.verificationID = ""
	f.resendToken = ""
	f.identity = nil
	f.lastActive = time.Now()
}

// State returns the current flow state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Identity returns the authenticated identity, or nil before authentication.
func (f *Flow) Identity() *Identity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.identity
}

// PhoneNumber returns the phone number of the current attempt.
func (f *Flow) PhoneNumber() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phoneNumber
}

// VerificationID returns the verification token of the current attempt, empty
// unless a code has been dispatched.
func (f *Flow) VerificationID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verificationID
}

// ResendToken returns the resend token of the current attempt.
func (f *Flow) ResendToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resendToken
}

// idleSince reports whether the flow has been untouched since the cutoff.
// Used by the Manager's eviction loop.
func (f *Flow) idleSince(cutoff time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastActive.Before(cutoff)
}

// asVerificationError normalizes provider failures into *VerificationError,
// classifying context deadline expiry as a timeout.
func asVerificationError(err error) *VerificationError {
	var verr *VerificationError
	if errors.As(err, &verr) {
		return verr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewVerificationError(ReasonTimeout, err)
	}
	return NewVerificationError(ReasonSendFailed, err)
}
