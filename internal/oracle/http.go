package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// httpClient implements Client against an HTTP JSON classification endpoint.
type httpClient struct {
	client   *http.Client
	endpoint string
	apiKey   string
	model    string
}

// newHTTPClient creates a transport for the configured endpoint.
func newHTTPClient(cfg Config) (Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("oracle endpoint is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &httpClient{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// ClassifyBatch posts one batch prompt and parses the reply.
func (c *httpClient) ClassifyBatch(ctx context.Context, prompt string) (BatchResponse, error) {
	requestBody := map[string]any{
		"model":  c.model,
		"prompt": prompt,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return BatchResponse{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(string(jsonBody)))
	if err != nil {
		return BatchResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return BatchResponse{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return BatchResponse{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return BatchResponse{}, fmt.Errorf("oracle error (status %d): %s", resp.StatusCode, string(body))
	}

	return parseBatchResponse(string(body))
}
