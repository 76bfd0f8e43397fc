// Package api provides Metabase server interaction utilities.
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListCollections returns all non-archived collections.
func (c *Client) ListCollections(ctx context.Context) ([]Collection, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/collection", nil)
	if err != nil {
		return nil, err
	}

	var collections []Collection
	if err := c.do(c.httpClient, req, &collections); err != nil {
		return nil, err
	}

	active := collections[:0]
	for _, col := range collections {
		if !col.Archived {
			active = append(active, col)
		}
	}

	return active, nil
}

type databaseListResponse struct {
	Data []Database `json:"data"`
}

// ListDatabases returns the configured data sources. The endpoint wraps the
// list in a data envelope.
func (c *Client) ListDatabases(ctx context.Context) ([]Database, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/database", nil)
	if err != nil {
		return nil, err
	}

	var resp databaseListResponse
	if err := c.do(c.httpClient, req, &resp); err != nil {
		return nil, err
	}

	return resp.Data, nil
}

// ListSchemas returns the schema names of one database.
func (c *Client) ListSchemas(ctx context.Context, databaseID int) ([]string, error) {
	endpoint := fmt.Sprintf("/api/database/%d/schemas", databaseID)

	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var schemas []string
	if err := c.do(c.httpClient, req, &schemas); err != nil {
		if IsNotFound(err) {
			return nil, &StatusError{
				StatusCode: http.StatusNotFound,
				Endpoint:   endpoint,
				Message:    fmt.Sprintf("database %d not found", databaseID),
			}
		}
		return nil, err
	}

	return schemas, nil
}

// ListTables returns the tables within one schema of a database.
func (c *Client) ListTables(ctx context.Context, databaseID int, schema string) ([]Table, error) {
	endpoint := fmt.Sprintf("/api/database/%d/schema/%s", databaseID, url.PathEscape(schema))

	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var tables []Table
	if err := c.do(c.httpClient, req, &tables); err != nil {
		if IsNotFound(err) {
			return nil, &StatusError{
				StatusCode: http.StatusNotFound,
				Endpoint:   endpoint,
				Message:    fmt.Sprintf("schema %q not found in database %d", schema, databaseID),
			}
		}
		return nil, err
	}

	return tables, nil
}

// RunDataset executes an ad-hoc query that selects up to limit rows from
// one table. Uses the extended query timeout.
func (c *Client) RunDataset(ctx context.Context, databaseID, tableID, limit int) (*QueryResponse, error) {
	payload := map[string]any{
		"database": databaseID,
		"type":     "query",
		"query": map[string]any{
			"source-table": tableID,
			"limit":        limit,
		},
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/dataset", payload)
	if err != nil {
		return nil, err
	}

	var resp QueryResponse
	if err := c.do(c.queryClient, req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}
