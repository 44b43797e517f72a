package catalog

import "context"

// TokenSource supplies a live access token for a provider. Implementations
// typically read the org's stored connection from the platform API and
// refresh it when needed.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed-token source, used for personal access tokens
// configured locally and in tests. An empty token means not connected.
type StaticToken string

func (t StaticToken) Token(ctx context.Context) (string, error) {
	return string(t), nil
}
