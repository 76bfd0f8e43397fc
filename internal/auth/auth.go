// Package auth provides credential state management for Metabase profiles.
package auth

// State tracks where a profile's credential sits in its validation
// lifecycle.
type State int

const (
	// StateUnauthenticated means no credential has been validated yet.
	StateUnauthenticated State = iota
	// StateValidating means an identity check is in flight.
	StateValidating
	// StateAuthenticated means the server accepted the credential.
	StateAuthenticated
	// StateInvalidated means the server rejected a previously held
	// credential; the stored copy is being cleared.
	StateInvalidated
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateValidating:
		return "validating"
	case StateAuthenticated:
		return "authenticated"
	case StateInvalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}
