// Package profile resolves named server profiles and tracks their
// stored sessions.
package profile

import (
	"fmt"

	"github.com/mbrcli/mbr/internal/config"
)

// Profile pairs a profile name with its stored record. The record may be
// the substituted default when nothing is persisted under the name.
type Profile struct {
	Name   string
	Record config.Profile
}

// Validate checks that the record is usable for remote calls.
func (p Profile) Validate() error {
	if err := config.ValidateURL(p.Record.URL); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return nil
}
