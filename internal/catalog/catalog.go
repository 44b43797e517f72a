package catalog

import (
	"context"
	"fmt"
)

// Provider identifies a design catalog backend.
type Provider string

const (
	ProviderBuiltin Provider = "builtin"
	ProviderFigma   Provider = "figma"
	ProviderCanva   Provider = "canva"
)

// ParseProvider validates a provider name from external input.
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderBuiltin, ProviderFigma, ProviderCanva:
		return Provider(s), nil
	default:
		return "", fmt.Errorf("unknown provider %q", s)
	}
}

// Target is a selectable design inside a provider: a Figma frame or a
// Canva brand template. Figma target IDs are "fileKey/nodeID" so a saved
// target can be re-resolved without the original file URL.
type Target struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Page         string `json:"page,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// DesignSlot is one fillable location reported by a provider for a
// selected target. Slots are fetched fresh on every (re)selection and
// never persisted; Sample is a display hint only.
type DesignSlot struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Sample string `json:"sample,omitempty"`
}

// Source is the uniform contract over the heterogeneous providers.
// Implementations perform outbound reads only and never mutate
// provider state.
type Source interface {
	Provider() Provider

	// IsConnected reports whether usable credentials exist. Builtin is
	// always connected.
	IsConnected(ctx context.Context) (bool, error)

	// ListTargets lists selectable designs. The locator is only
	// meaningful for Figma (a file URL); Canva and builtin ignore it.
	ListTargets(ctx context.Context, locator string) ([]Target, error)

	// ListSlots lists the fillable slots of a target. An empty result
	// is a valid state, not an error.
	ListSlots(ctx context.Context, targetID string) ([]DesignSlot, error)
}

// Registry resolves providers to their Source implementations.
type Registry struct {
	sources map[Provider]Source
}

// NewRegistry builds a registry over the given sources.
func NewRegistry(sources ...Source) *Registry {
	m := make(map[Provider]Source, len(sources))
	for _, s := range sources {
		m[s.Provider()] = s
	}
	return &Registry{sources: m}
}

// Source returns the adapter for a provider.
func (r *Registry) Source(p Provider) (Source, error) {
	switch p {
	case ProviderBuiltin, ProviderFigma, ProviderCanva:
		s, ok := r.sources[p]
		if !ok {
			return nil, fmt.Errorf("provider %q not configured", p)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", p)
	}
}

// Providers returns the registered providers.
func (r *Registry) Providers() []Provider {
	out := make([]Provider, 0, len(r.sources))
	for _, p := range []Provider{ProviderBuiltin, ProviderFigma, ProviderCanva} {
		if _, ok := r.sources[p]; ok {
			out = append(out, p)
		}
	}
	return out
}
