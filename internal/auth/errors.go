// Package auth provides credential state management for Metabase profiles.
package auth

import "fmt"

// MissingCredentialError means neither an API key nor a stored session was
// available; no network call was attempted.
type MissingCredentialError struct {
	Profile string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("no credential available for profile %q", e.Profile)
}

// Hint implements the hint interface used by the root error printer.
func (e *MissingCredentialError) Hint() string {
	return "pass --api-key, export MBR_API_KEY, or log in with 'mbr auth login'"
}

// UnauthorizedError means the server rejected the credential it was given.
// Mode records which kind of credential failed so the remediation text can
// point at the right place.
type UnauthorizedError struct {
	Mode    string
	Message string
}

func (e *UnauthorizedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("authentication rejected: %s", e.Message)
	}
	return "authentication rejected by the server"
}

// Hint implements the hint interface used by the root error printer.
func (e *UnauthorizedError) Hint() string {
	switch e.Mode {
	case "api-key":
		return "the API key was rejected; check --api-key or MBR_API_KEY"
	case "session":
		return "the stored session was cleared; log in again with 'mbr auth login'"
	case "login":
		return "check the username and password and try again"
	default:
		return "re-authenticate with 'mbr auth login' or provide a valid API key"
	}
}

// TimeoutError means the server did not answer the auth request in time.
// Stored credentials are always left untouched on this path.
type TimeoutError struct {
	URL string
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out contacting %s", e.URL)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// Hint implements the hint interface used by the root error printer.
func (e *TimeoutError) Hint() string {
	return "the server did not respond in time; stored credentials were left untouched, retry when it is reachable"
}

// AuthRequiredError surfaces a mid-operation 401: the credential worked
// well enough to start but the server rejected it, and any stored session
// has been invalidated.
type AuthRequiredError struct {
	Profile string
}

func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf("authentication required for profile %q", e.Profile)
}

// Hint implements the hint interface used by the root error printer.
func (e *AuthRequiredError) Hint() string {
	return "log in again with 'mbr auth login' or provide a fresh API key"
}
