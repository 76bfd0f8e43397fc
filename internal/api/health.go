// Package api provides Metabase server interaction utilities.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// healthTimeout keeps reachability probes snappy; a slow health endpoint is
// itself a finding.
const healthTimeout = 5 * time.Second

// HealthStatus represents the health of a Metabase server.
type HealthStatus struct {
	Status  string
	Message string
}

// Healthy reports whether the probe found a serving instance.
func (s *HealthStatus) Healthy() bool {
	return s.Status == "healthy"
}

// CheckHealth probes the unauthenticated health endpoint. It never returns
// an error; unreachable servers are reported through the status.
func (c *Client) CheckHealth(ctx context.Context) *HealthStatus {
	status := &HealthStatus{}

	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		status.Status = "error"
		status.Message = fmt.Sprintf("invalid URL: %v", err)
		return status
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		status.Status = "error"
		status.Message = fmt.Sprintf("connection failed: %v", err)
		return status
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		status.Status = "healthy"
		status.Message = "server is up"
	case http.StatusServiceUnavailable:
		status.Status = "unavailable"
		status.Message = "server is starting or unhealthy"
	default:
		status.Status = "unknown"
		status.Message = fmt.Sprintf("unexpected status: %d", resp.StatusCode)
	}

	return status
}
