// Package profile resolves named server profiles and tracks their
// stored sessions.
package profile

import (
	"fmt"
	"sort"

	"github.com/mbrcli/mbr/internal/config"
	"github.com/mbrcli/mbr/internal/keyring"
)

// Manager reads profiles from the config store and their sessions from
// the keyring. It never writes the config store.
type Manager struct {
	cfg    *config.Config
	store  keyring.Store
	active string
}

// NewManager creates a Manager over cfg with active as the profile
// selected for this invocation.
func NewManager(cfg *config.Config, store keyring.Store, active string) *Manager {
	return &Manager{
		cfg:    cfg,
		store:  store,
		active: active,
	}
}

// ActiveName returns the profile name selected for this invocation.
func (m *Manager) ActiveName() string {
	return m.active
}

// Active returns the active profile. When no record is stored under the
// name, the in-memory default record is substituted and stored is false.
func (m *Manager) Active() (Profile, bool) {
	record, stored := m.cfg.GetProfile(m.active)
	if !stored {
		record = config.DefaultProfile()
	}
	return Profile{Name: m.active, Record: record}, stored
}

// Get returns the stored profile with the given name.
func (m *Manager) Get(name string) (Profile, error) {
	record, ok := m.cfg.GetProfile(name)
	if !ok {
		return Profile{}, fmt.Errorf("profile %q is not configured", name)
	}
	return Profile{Name: name, Record: record}, nil
}

// List returns all stored profiles in name order, flagged with whether
// each is the active one and has a stored session. The active profile
// appears even when it has no stored record yet.
func (m *Manager) List() []Info {
	names := m.cfg.ProfileNames()
	if _, stored := m.cfg.GetProfile(m.active); !stored {
		names = append(names, m.active)
		sort.Strings(names)
	}

	infos := make([]Info, 0, len(names))
	for _, name := range names {
		record, stored := m.cfg.GetProfile(name)
		if !stored {
			record = config.DefaultProfile()
		}
		infos = append(infos, Info{
			Name:     name,
			URL:      record.URL,
			Email:    record.Email,
			Current:  name == m.active,
			LoggedIn: m.HasSession(name),
		})
	}
	return infos
}

// GetStatus returns comprehensive status information for a profile,
// substituting the default record when nothing is stored under the name.
func (m *Manager) GetStatus(name string) *Status {
	record, stored := m.cfg.GetProfile(name)
	if !stored {
		record = config.DefaultProfile()
	}
	return &Status{
		Name:          name,
		URL:           record.URL,
		Email:         record.Email,
		Stored:        stored,
		Active:        name == m.active,
		SessionStored: m.HasSession(name),
	}
}
