// Package platform is a typed client for the product platform API: the
// backend that owns templates, provider connections, and the research
// and video pipelines.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a platform API client
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new platform API client
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// request performs an HTTP request to the platform API
func (c *Client) request(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Error == "" {
			return fmt.Errorf("HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("API error: %s", errResp.Error)
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// Health checks platform health
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.request(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetConnection gets the connection state for a provider
func (c *Client) GetConnection(ctx context.Context, provider string) (*Connection, error) {
	var resp Connection
	if err := c.request(ctx, http.MethodGet, "/api/v1/connections/"+provider, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Disconnect removes a provider connection
func (c *Client) Disconnect(ctx context.Context, provider string) error {
	return c.request(ctx, http.MethodDelete, "/api/v1/connections/"+provider, nil, nil)
}

// ListTemplates lists templates
func (c *Client) ListTemplates(ctx context.Context) (*TemplateListResponse, error) {
	var resp TemplateListResponse
	if err := c.request(ctx, http.MethodGet, "/api/v1/templates", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTemplate gets a template by ID
func (c *Client) GetTemplate(ctx context.Context, id string) (*Template, error) {
	var resp Template
	if err := c.request(ctx, http.MethodGet, "/api/v1/templates/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateTemplate creates a template
func (c *Client) CreateTemplate(ctx context.Context, req *TemplateCreateRequest) (*Template, error) {
	var resp Template
	if err := c.request(ctx, http.MethodPost, "/api/v1/templates", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteTemplate deletes a template
func (c *Client) DeleteTemplate(ctx context.Context, id string) error {
	return c.request(ctx, http.MethodDelete, "/api/v1/templates/"+id, nil, nil)
}

// UpdateTemplate applies a partial update to a template
func (c *Client) UpdateTemplate(ctx context.Context, id string, req *TemplateUpdateRequest) (*Template, error) {
	var resp Template
	if err := c.request(ctx, http.MethodPatch, "/api/v1/templates/"+id, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetDesignSource persists a template's design source. A nil descriptor
// stores JSON null, which selects the builtin renderer.
func (c *Client) SetDesignSource(ctx context.Context, templateID string, descriptor json.RawMessage) (*Template, error) {
	if len(descriptor) == 0 {
		descriptor = json.RawMessage("null")
	}
	req := &TemplateUpdateRequest{DesignSource: &descriptor}
	return c.UpdateTemplate(ctx, templateID, req)
}

// TriggerResearch starts a research run
func (c *Client) TriggerResearch(ctx context.Context, req *ResearchTriggerRequest) (*ResearchRun, error) {
	var resp ResearchRun
	if err := c.request(ctx, http.MethodPost, "/api/v1/research/runs", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetResearchRun gets a research run by ID
func (c *Client) GetResearchRun(ctx context.Context, id string) (*ResearchRun, error) {
	var resp ResearchRun
	if err := c.request(ctx, http.MethodGet, "/api/v1/research/runs/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateVideo starts a video generation job
func (c *Client) GenerateVideo(ctx context.Context, req *VideoGenerateRequest) (*VideoJob, error) {
	var resp VideoJob
	if err := c.request(ctx, http.MethodPost, "/api/v1/video/jobs", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetVideoJob gets a video generation job by ID
func (c *Client) GetVideoJob(ctx context.Context, id string) (*VideoJob, error) {
	var resp VideoJob
	if err := c.request(ctx, http.MethodGet, "/api/v1/video/jobs/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
