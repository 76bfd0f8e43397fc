// Package profile resolves named server profiles and tracks their
// stored sessions.
package profile

// Info represents one profile row for listing and display.
type Info struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Email    string `json:"email,omitempty"`
	Current  bool   `json:"current"`
	LoggedIn bool   `json:"logged_in"`
}

// Status represents comprehensive status information for one profile.
type Status struct {
	Name          string `json:"name"`
	URL           string `json:"url"`
	Email         string `json:"email,omitempty"`
	Stored        bool   `json:"stored"`
	Active        bool   `json:"active"`
	SessionStored bool   `json:"session_stored"`
}
