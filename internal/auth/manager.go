// Package auth provides credential state management for Metabase profiles.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/mbrcli/mbr/internal/api"
	"github.com/mbrcli/mbr/internal/keyring"
)

// Manager derives, validates, and clears the credential of one profile.
// It owns the state transitions; the API client it wraps carries whatever
// credential the manager last loaded.
type Manager struct {
	client  *api.Client
	store   keyring.Store
	profile string
	state   State
}

// NewManager creates a Manager for profile, using store for persisted
// session tokens.
func NewManager(client *api.Client, store keyring.Store, profile string) *Manager {
	return &Manager{
		client:  client,
		store:   store,
		profile: profile,
		state:   StateUnauthenticated,
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	return m.state
}

// Profile returns the profile name the manager operates on.
func (m *Manager) Profile() string {
	return m.profile
}

// Credential returns the credential currently loaded on the client, or nil.
func (m *Manager) Credential() api.Credential {
	return m.client.Credential()
}

// LoadCredential attaches the best available credential to the client: a
// resolved API key wins, otherwise the profile's stored session token.
// Returns the credential chosen, or nil when there is none.
func (m *Manager) LoadCredential(apiKey string) api.Credential {
	if apiKey != "" {
		cred := api.APIKey(apiKey)
		m.client.SetCredential(cred)
		return cred
	}

	token, err := m.store.Get(m.profile)
	if err != nil || token == "" {
		m.client.SetCredential(nil)
		return nil
	}

	cred := api.SessionToken(token)
	m.client.SetCredential(cred)
	return cred
}

// Validate checks the loaded credential against the identity endpoint.
// With no credential it fails immediately without touching the network.
// A 401 runs the invalidate path; a timeout leaves everything untouched.
func (m *Manager) Validate(ctx context.Context) (*api.User, error) {
	cred := m.client.Credential()
	if cred == nil {
		m.state = StateUnauthenticated
		return nil, &MissingCredentialError{Profile: m.profile}
	}

	m.state = StateValidating
	user, err := m.client.CurrentUser(ctx)
	if err != nil {
		if api.IsTimeout(err) {
			m.state = StateUnauthenticated
			return nil, &TimeoutError{URL: m.client.BaseURL(), Err: err}
		}
		if api.IsUnauthorized(err) {
			m.state = StateInvalidated
			if invErr := m.Invalidate(); invErr != nil {
				return nil, fmt.Errorf("failed to clear rejected credential: %w", invErr)
			}
			return nil, &UnauthorizedError{Mode: cred.Kind()}
		}
		m.state = StateUnauthenticated
		return nil, err
	}

	m.state = StateAuthenticated
	return user, nil
}

// Invalidate drops the in-memory credential and deletes any persisted
// session token for the profile. A missing keyring entry is success, so
// repeated calls are safe.
func (m *Manager) Invalidate() error {
	m.client.SetCredential(nil)
	if err := m.store.Delete(m.profile); err != nil {
		return err
	}
	m.state = StateUnauthenticated
	return nil
}

// Login exchanges a username and password for a session token, persists it
// under the profile, and adopts it for subsequent requests.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	m.state = StateValidating
	token, err := m.client.Login(ctx, username, password)
	if err != nil {
		m.state = StateUnauthenticated
		if api.IsTimeout(err) {
			return &TimeoutError{URL: m.client.BaseURL(), Err: err}
		}
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 {
			return &UnauthorizedError{Mode: "login", Message: statusErr.Message}
		}
		return err
	}

	if err := m.store.Set(m.profile, token); err != nil {
		m.state = StateUnauthenticated
		return fmt.Errorf("failed to store session token: %w", err)
	}

	m.client.SetCredential(api.SessionToken(token))
	m.state = StateAuthenticated
	return nil
}

// HasStoredSession reports whether the profile has a persisted session
// token.
func (m *Manager) HasStoredSession() bool {
	token, err := m.store.Get(m.profile)
	return err == nil && token != ""
}

// EndSession deletes the server-side session backing the stored token.
// Without a stored session it does nothing. Failures are returned for the
// caller to treat as warnings; local state is untouched either way.
func (m *Manager) EndSession(ctx context.Context) error {
	token, err := m.store.Get(m.profile)
	if err != nil || token == "" {
		return nil
	}

	m.client.SetCredential(api.SessionToken(token))
	return m.client.Logout(ctx)
}
