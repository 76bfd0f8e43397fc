// Package api provides Metabase server interaction utilities.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mbrcli/mbr/internal/version"
)

const (
	// defaultTimeout bounds every request except query execution.
	defaultTimeout = 30 * time.Second
	// queryTimeout bounds card executions and ad-hoc dataset queries.
	queryTimeout = 60 * time.Second
)

// Client talks to a single Metabase server. A credential, when present, is
// attached to every request; endpoints that work unauthenticated (login,
// health) ignore its absence.
type Client struct {
	baseURL     string
	cred        Credential
	httpClient  *http.Client
	queryClient *http.Client
}

// New creates a client for the server at baseURL. cred may be nil for
// unauthenticated use.
func New(baseURL string, cred Credential) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		cred:        cred,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		queryClient: &http.Client{Timeout: queryTimeout},
	}
}

// BaseURL returns the normalized server URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetCredential replaces the credential used for subsequent requests.
func (c *Client) SetCredential(cred Credential) {
	c.cred = cred
}

// Credential returns the credential attached to requests, or nil.
func (c *Client) Credential() Credential {
	return c.cred
}

// newRequest builds a request for path relative to the server root. A
// non-nil body is marshaled as JSON.
func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "mbr/"+version.Version)
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cred != nil {
		c.cred.apply(req)
	}

	return req, nil
}

// do executes req and decodes a success response into out (skipped when out
// is nil). Non-2xx responses become a *StatusError carrying the server's
// message. Cell values decode through json.Number so large integers survive.
func (c *Client) do(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			StatusCode: resp.StatusCode,
			Endpoint:   req.URL.Path,
			Message:    errorMessage(body),
		}
	}

	if out == nil {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", req.URL.Path, err)
	}

	return nil
}
