package utils

import "testing"

func TestContainsAny(t *testing.T) {
	tests := []struct {
		name       string
		s          string
		substrings []string
		want       bool
	}{
		{"match first", "secret service unavailable", []string{"secret service", "dbus"}, true},
		{"match later", "org.freedesktop.DBus error", []string{"secret service", "dbus"}, true},
		{"case insensitive", "Access DENIED by user", []string{"denied"}, true},
		{"no match", "connection refused", []string{"denied", "keychain"}, false},
		{"empty substrings", "anything", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsAny(tt.s, tt.substrings...); got != tt.want {
				t.Errorf("ContainsAny(%q, %v) = %v, want %v", tt.s, tt.substrings, got, tt.want)
			}
		})
	}
}
