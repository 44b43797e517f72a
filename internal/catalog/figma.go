package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/crafthq/designbind/internal/metrics"
)

const figmaAPI = "https://api.figma.com/v1"

// figmaLocatorPattern matches Figma file and design URLs and captures
// the file key.
var figmaLocatorPattern = regexp.MustCompile(`figma\.com/(?:file|design)/([A-Za-z0-9]+)`)

// Figma reads files, frames and text layers through the Figma REST API.
// Targets are top-level frames; slots are the TEXT nodes under a frame.
type Figma struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// NewFigma creates a Figma source.
func NewFigma(tokens TokenSource) *Figma {
	return &Figma{
		baseURL: figmaAPI,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (f *Figma) Provider() Provider {
	return ProviderFigma
}

// ParseFigmaLocator extracts the file key from a figma.com file or
// design URL.
func ParseFigmaLocator(locator string) (string, error) {
	m := figmaLocatorPattern.FindStringSubmatch(locator)
	if m == nil {
		return "", fmt.Errorf("%w: %q is not a Figma file URL", ErrInvalidLocator, locator)
	}
	return m[1], nil
}

// figmaTargetID joins a file key and node ID into a self-locating
// target identifier. Node IDs contain ':' but never '/'.
func figmaTargetID(fileKey, nodeID string) string {
	return fileKey + "/" + nodeID
}

func splitFigmaTargetID(targetID string) (fileKey, nodeID string, err error) {
	fileKey, nodeID, ok := strings.Cut(targetID, "/")
	if !ok || fileKey == "" || nodeID == "" {
		return "", "", fmt.Errorf("%w: malformed figma target id %q", ErrInvalidLocator, targetID)
	}
	return fileKey, nodeID, nil
}

func (f *Figma) IsConnected(ctx context.Context) (bool, error) {
	token, err := f.tokens.Token(ctx)
	if err != nil {
		return false, err
	}
	return token != "", nil
}

// ListTargets returns every top-level frame of the file, grouped by page
// via Target.Page.
func (f *Figma) ListTargets(ctx context.Context, locator string) ([]Target, error) {
	fileKey, err := ParseFigmaLocator(locator)
	if err != nil {
		return nil, err
	}

	var file figmaFile
	path := "/files/" + fileKey + "?depth=2"
	if err := f.get(ctx, path, &file); err != nil {
		return nil, err
	}

	targets := []Target{}
	for _, page := range file.Document.Children {
		for _, child := range page.Children {
			switch child.Type {
			case "FRAME", "COMPONENT", "COMPONENT_SET":
				targets = append(targets, Target{
					ID:   figmaTargetID(fileKey, child.ID),
					Name: child.Name,
					Page: page.Name,
				})
			}
		}
	}
	return targets, nil
}

// ListSlots returns every TEXT node under the frame, in document order.
// The node's current characters are passed along as the sample hint.
func (f *Figma) ListSlots(ctx context.Context, targetID string) ([]DesignSlot, error) {
	fileKey, nodeID, err := splitFigmaTargetID(targetID)
	if err != nil {
		return nil, err
	}

	var resp figmaNodesResponse
	path := "/files/" + fileKey + "/nodes?ids=" + url.QueryEscape(nodeID)
	if err := f.get(ctx, path, &resp); err != nil {
		return nil, err
	}

	slots := []DesignSlot{}
	for _, node := range resp.Nodes {
		if node.Document != nil {
			collectTextNodes(node.Document, &slots)
		}
	}
	return slots, nil
}

// collectTextNodes walks the node tree depth-first appending TEXT nodes.
func collectTextNodes(node *figmaNode, slots *[]DesignSlot) {
	if node.Type == "TEXT" {
		*slots = append(*slots, DesignSlot{
			ID:     node.ID,
			Name:   node.Name,
			Sample: node.Characters,
		})
	}
	for _, child := range node.Children {
		collectTextNodes(child, slots)
	}
}

// get performs an authenticated GET against the Figma API.
func (f *Figma) get(ctx context.Context, path string, result any) error {
	token, err := f.tokens.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return notConnectedError(ProviderFigma)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Figma-Token", token)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		metrics.IncProviderRequest(string(ProviderFigma), "get", "error")
		return upstreamError(ProviderFigma, "get", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		metrics.IncProviderRequest(string(ProviderFigma), "get", "not_connected")
		return notConnectedError(ProviderFigma)
	case resp.StatusCode >= 400:
		metrics.IncProviderRequest(string(ProviderFigma), "get", "error")
		return upstreamError(ProviderFigma, "get", fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		metrics.IncProviderRequest(string(ProviderFigma), "get", "error")
		return upstreamError(ProviderFigma, "decode", err)
	}
	metrics.IncProviderRequest(string(ProviderFigma), "get", "ok")
	return nil
}

// Figma API response shapes (the subset this service reads)

type figmaFile struct {
	Name     string        `json:"name"`
	Document figmaDocument `json:"document"`
}

type figmaDocument struct {
	Children []figmaPage `json:"children"`
}

type figmaPage struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Children []figmaNode `json:"children"`
}

type figmaNode struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Type       string       `json:"type"`
	Characters string       `json:"characters,omitempty"`
	Children   []*figmaNode `json:"children,omitempty"`
}

type figmaNodesResponse struct {
	Nodes map[string]struct {
		Document *figmaNode `json:"document"`
	} `json:"nodes"`
}
