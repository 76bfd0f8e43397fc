// Package profile resolves named server profiles and tracks their
// stored sessions.
package profile

// HasSession reports whether a session token is stored for the profile.
func (m *Manager) HasSession(name string) bool {
	token, err := m.store.Get(name)
	return err == nil && token != ""
}

// ClearSession removes the stored session token for the profile. The
// underlying stores treat a missing entry as success, so clearing an
// already-clear profile is a no-op.
func (m *Manager) ClearSession(name string) error {
	return m.store.Delete(name)
}
