package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// analyzeResponse is the subset of the service response the smoke run reads.
type analyzeResponse struct {
	Success            bool   `json:"success"`
	Error              string `json:"error"`
	RateLimitRemaining *struct {
		Daily   int `json:"daily"`
		Monthly int `json:"monthly"`
	} `json:"rateLimitRemaining"`
}

// HTTPClient wraps http.Client with the service's auth header.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	token   string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(cfg *Config) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
	}
}

// analyze submits one image reference. remaining is -1 when not reported.
func (c *HTTPClient) analyze(ctx context.Context, tenant, image string) (Result, int, string) {
	payload, _ := json.Marshal(map[string]string{"imageReference": image, "tenantId": tenant})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/whiteboard/analyze", bytes.NewReader(payload))
	if err != nil {
		return ResultFailed, -1, err.Error()
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return ResultFailed, -1, err.Error()
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK:
		var out analyzeResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return ResultFailed, -1, fmt.Sprintf("undecodable body: %v", err)
		}
		remaining := -1
		if out.RateLimitRemaining != nil {
			remaining = out.RateLimitRemaining.Daily
		}
		if out.Success {
			return ResultSuccess, remaining, ""
		}
		return ResultSoft, remaining, out.Error
	case resp.StatusCode == http.StatusTooManyRequests:
		return ResultQuota, -1, string(body)
	case resp.StatusCode < http.StatusInternalServerError:
		return ResultRejected, -1, string(body)
	default:
		return ResultFailed, -1, string(body)
	}
}

// metrics fetches the service's Prometheus exposition.
func (c *HTTPClient) metrics(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("healthz returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	return string(body), err
}
