package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/crafthq/designbind/internal/metrics"
)

const canvaAPI = "https://api.canva.com/rest/v1"

// canvaMaxPages caps brand-template pagination.
const canvaMaxPages = 10

// Canva lists brand templates and their autofill dataset fields through
// the Canva Connect API. Targets are brand templates; slots are the
// dataset fields, whose names double as their identifiers.
type Canva struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// NewCanva creates a Canva source.
func NewCanva(tokens TokenSource) *Canva {
	return &Canva{
		baseURL: canvaAPI,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Canva) Provider() Provider {
	return ProviderCanva
}

func (c *Canva) IsConnected(ctx context.Context) (bool, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return false, err
	}
	return token != "", nil
}

// ListTargets lists the organization's brand templates. Canva needs no
// locator; the account's templates are the browsable universe.
func (c *Canva) ListTargets(ctx context.Context, locator string) ([]Target, error) {
	targets := []Target{}
	continuation := ""

	for page := 0; page < canvaMaxPages; page++ {
		path := "/brand-templates?ownership=owned"
		if continuation != "" {
			path += "&continuation=" + url.QueryEscape(continuation)
		}

		var resp canvaTemplateList
		if err := c.get(ctx, path, &resp); err != nil {
			return nil, err
		}

		for _, item := range resp.Items {
			title := item.Title
			if title == "" {
				title = "Untitled"
			}
			targets = append(targets, Target{
				ID:           item.ID,
				Name:         title,
				ThumbnailURL: item.Thumbnail.URL,
			})
		}

		continuation = resp.Continuation
		if continuation == "" {
			break
		}
	}
	return targets, nil
}

// ListSlots returns the autofill dataset fields of a brand template.
// The API reports the dataset as a map, so fields are sorted by name
// for a stable, deterministic order.
func (c *Canva) ListSlots(ctx context.Context, targetID string) ([]DesignSlot, error) {
	var resp canvaDataset
	if err := c.get(ctx, "/brand-templates/"+url.PathEscape(targetID)+"/dataset", &resp); err != nil {
		return nil, err
	}

	slots := []DesignSlot{}
	for name := range resp.Dataset {
		slots = append(slots, DesignSlot{ID: name, Name: name})
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Name < slots[j].Name })
	return slots, nil
}

// get performs an authenticated GET against the Canva Connect API.
func (c *Canva) get(ctx context.Context, path string, result any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return notConnectedError(ProviderCanva)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncProviderRequest(string(ProviderCanva), "get", "error")
		return upstreamError(ProviderCanva, "get", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		metrics.IncProviderRequest(string(ProviderCanva), "get", "not_connected")
		return notConnectedError(ProviderCanva)
	case resp.StatusCode >= 400:
		metrics.IncProviderRequest(string(ProviderCanva), "get", "error")
		return upstreamError(ProviderCanva, "get", fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		metrics.IncProviderRequest(string(ProviderCanva), "get", "error")
		return upstreamError(ProviderCanva, "decode", err)
	}
	metrics.IncProviderRequest(string(ProviderCanva), "get", "ok")
	return nil
}

// Canva API response shapes (the subset this service reads)

type canvaTemplateList struct {
	Items        []canvaTemplate `json:"items"`
	Continuation string          `json:"continuation,omitempty"`
}

type canvaTemplate struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Thumbnail struct {
		URL string `json:"url"`
	} `json:"thumbnail"`
}

type canvaDataset struct {
	Dataset map[string]struct {
		Type string `json:"type"`
	} `json:"dataset"`
}
