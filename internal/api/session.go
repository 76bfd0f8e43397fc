// Package api provides Metabase server interaction utilities.
package api

import (
	"context"
	"fmt"
	"net/http"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID string `json:"id"`
}

// Login exchanges a username and password for a session token. The client's
// credential is left untouched; callers decide whether to adopt the token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/session", loginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return "", err
	}

	var resp loginResponse
	if err := c.do(c.httpClient, req, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("login response does not contain a session token")
	}

	return resp.ID, nil
}

// Logout deletes the server-side session for the current credential.
func (c *Client) Logout(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/session", nil)
	if err != nil {
		return err
	}

	return c.do(c.httpClient, req, nil)
}

// CurrentUser fetches the account the current credential authenticates as.
// A 401 here is the canonical signal that the credential is invalid.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/user/current", nil)
	if err != nil {
		return nil, err
	}

	var user User
	if err := c.do(c.httpClient, req, &user); err != nil {
		return nil, err
	}

	return &user, nil
}
