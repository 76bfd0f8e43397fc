// Package api provides Metabase server interaction utilities.
package api

import "net/http"

// Credential authenticates requests to the Metabase API.
type Credential interface {
	// apply attaches the credential's auth header to req.
	apply(req *http.Request)
	// Kind returns a short label for status displays.
	Kind() string
	// Secret returns the raw credential material.
	Secret() string
}

// APIKey authenticates with a static key in the x-api-key header.
type APIKey string

func (k APIKey) apply(req *http.Request) {
	req.Header.Set("x-api-key", string(k))
}

// Kind implements Credential.
func (k APIKey) Kind() string { return "api-key" }

// Secret implements Credential.
func (k APIKey) Secret() string { return string(k) }

// SessionToken authenticates with a login session in the
// X-Metabase-Session header.
type SessionToken string

func (t SessionToken) apply(req *http.Request) {
	req.Header.Set("X-Metabase-Session", string(t))
}

// Kind implements Credential.
func (t SessionToken) Kind() string { return "session" }

// Secret implements Credential.
func (t SessionToken) Secret() string { return string(t) }
