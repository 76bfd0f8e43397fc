// Package api provides Metabase server interaction utilities.
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListCards returns the saved questions visible to the credential,
// optionally restricted to one collection. The endpoint returns the full
// set; search and limit filtering happen client-side.
func (c *Client) ListCards(ctx context.Context, collection string) ([]Card, error) {
	query := url.Values{}
	query.Set("f", "all")
	if collection != "" {
		query.Set("collection", collection)
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/api/card?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var cards []Card
	if err := c.do(c.httpClient, req, &cards); err != nil {
		return nil, err
	}

	return cards, nil
}

// GetCard fetches one saved question, including its declared parameters.
func (c *Client) GetCard(ctx context.Context, id int) (*Card, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/api/card/%d", id), nil)
	if err != nil {
		return nil, err
	}

	var card Card
	if err := c.do(c.httpClient, req, &card); err != nil {
		if IsNotFound(err) {
			return nil, &StatusError{
				StatusCode: http.StatusNotFound,
				Endpoint:   fmt.Sprintf("/api/card/%d", id),
				Message:    fmt.Sprintf("question %d not found", id),
			}
		}
		return nil, err
	}

	return &card, nil
}

type executeRequest struct {
	Parameters []ParameterBinding `json:"parameters"`
}

// ExecuteCard runs a saved question with the given parameter bindings and
// returns its result set. Execution uses the extended query timeout.
func (c *Client) ExecuteCard(ctx context.Context, id int, params []ParameterBinding) (*QueryResponse, error) {
	endpoint := fmt.Sprintf("/api/card/%d/query", id)

	var body any
	if len(params) > 0 {
		body = executeRequest{Parameters: params}
	}

	req, err := c.newRequest(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}

	var resp QueryResponse
	if err := c.do(c.queryClient, req, &resp); err != nil {
		if IsNotFound(err) {
			return nil, &StatusError{
				StatusCode: http.StatusNotFound,
				Endpoint:   endpoint,
				Message:    fmt.Sprintf("question %d not found", id),
			}
		}
		return nil, err
	}

	return &resp, nil
}
