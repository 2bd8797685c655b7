/*
Package verify implements the phone-verification flow that drives a login attempt
from phone-number entry, through one-time-code entry, to an authenticated identity.

The flow is a small state machine (Flow) that talks to two injected collaborators:
a Provider, which dispatches one-time codes out-of-band, and an IdentityStore,
which exchanges a credential for an authenticated identity. The Manager tracks all
in-flight flows for the server and evicts the ones that go idle.
*/
package verify

// State identifies the position of a login attempt within the verification flow.
type State int

const (
	// StateEnterPhone is the initial state: waiting for a phone number.
	StateEnterPhone State = iota

	// StateAwaitingCode means a one-time code has been dispatched and the flow
	// is waiting for the user to enter it.
	StateAwaitingCode

	// StateAuthenticated is the terminal state: the credential was exchanged
	// for an identity.
	StateAuthenticated
)

// String returns the wire/debug name of the state.
func (s State) String() string {
	switch s {
	case StateEnterPhone:
		return "enter_phone"
	case StateAwaitingCode:
		return "awaiting_code"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}
